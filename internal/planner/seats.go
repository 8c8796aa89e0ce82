package planner

import "github.com/table-planner/backend/internal/models"

// AssignGuestToSeat seats a guest, first removing it from any seat it
// already holds. Whoever sat at the target seat becomes unassigned.
func (p *Planner) AssignGuestToSeat(tableID string, seat int, guestID string) bool {
	return p.edit(OpAssignSeat, func(doc *models.Document, record func()) bool {
		st := validSeat(doc, tableID, seat)
		if st == nil {
			return false
		}
		if g, _ := doc.FindGuest(guestID); g == nil {
			return false
		}
		record()
		assign(doc, st, seat, guestID)
		return true
	})
}

// UnassignSeat frees a seat. It does nothing if the seat is already free.
func (p *Planner) UnassignSeat(tableID string, seat int) bool {
	return p.edit(OpUnassignSeat, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(tableID)
		if t == nil || t.Seating() == nil {
			return false
		}
		st := t.Seating()
		if _, ok := st.Assignments[seat]; !ok {
			return false
		}
		record()
		delete(st.Assignments, seat)
		return true
	})
}

// MoveGuestToSeat seats a guest the way a drop onto a seat does: when the
// target is held by someone else and the guest already had a seat, the
// two swap places. The swap is a single undo step.
func (p *Planner) MoveGuestToSeat(guestID, tableID string, seat int) bool {
	return p.edit(OpMoveGuest, func(doc *models.Document, record func()) bool {
		st := validSeat(doc, tableID, seat)
		if st == nil {
			return false
		}
		if g, _ := doc.FindGuest(guestID); g == nil {
			return false
		}
		occupant := st.Assignments[seat]
		if occupant == guestID {
			return false
		}
		from, seated := doc.SeatOf(guestID)

		record()
		assign(doc, st, seat, guestID)
		if occupant != "" && seated {
			if fromTable, _ := doc.FindTable(from.TableID); fromTable != nil {
				assign(doc, fromTable.Seating(), from.Seat, occupant)
			}
		}
		return true
	})
}

// validSeat returns the seating of tableID when seat is within range.
func validSeat(doc *models.Document, tableID string, seat int) *models.Seating {
	t, _ := doc.FindTable(tableID)
	if t == nil {
		return nil
	}
	st := t.Seating()
	if st == nil || seat < 0 || seat >= st.Seats {
		return nil
	}
	return st
}

// assign clears guestID from every table, then seats it at st[seat].
func assign(doc *models.Document, st *models.Seating, seat int, guestID string) {
	unseat(doc, guestID)
	if st.Assignments == nil {
		st.Assignments = models.Assignments{}
	}
	st.Assignments[seat] = guestID
}

// unseat removes every assignment referencing guestID.
func unseat(doc *models.Document, guestID string) {
	for _, t := range doc.Tables {
		st := t.Seating()
		if st == nil {
			continue
		}
		for k, g := range st.Assignments {
			if g == guestID {
				delete(st.Assignments, k)
			}
		}
	}
}
