package planner

import (
	"math"
	"sort"
	"strings"

	"github.com/table-planner/backend/internal/models"
)

// AddCircleTable adds a round table with the next free numeric label at
// the default position and makes it the sole selection.
func (p *Planner) AddCircleTable() string {
	return p.addTable("t_", func(label string) models.Shape {
		return &models.Circle{
			Seating: models.Seating{Label: label, Seats: models.DefaultSeats, Assignments: models.Assignments{}},
			Radius:  models.DefaultRadius,
		}
	})
}

// AddRectTable adds a rectangular table seated on both long sides.
func (p *Planner) AddRectTable() string {
	return p.addTable("t_", func(label string) models.Shape {
		return &models.Rect{
			Seating:      models.Seating{Label: label, Seats: models.DefaultSeats, Assignments: models.Assignments{}},
			Width:        models.DefaultRectWidth,
			Height:       models.DefaultRectHeight,
			OneSide:      models.SideTop,
			OddExtraSide: models.SideTop,
		}
	})
}

// AddSeparator adds an unlabeled divider.
func (p *Planner) AddSeparator() string {
	return p.addTable("s_", func(string) models.Shape {
		return &models.Separator{Width: models.DefaultSeparatorWidth, Height: models.DefaultSeparatorHeight}
	})
}

func (p *Planner) addTable(prefix string, build func(label string) models.Shape) string {
	var id string
	p.edit(OpAddTable, func(doc *models.Document, record func()) bool {
		record()
		id = p.uniqueID(prefix)
		t := &models.Table{ID: id, X: models.DefaultX, Y: models.DefaultY, Shape: build(nextLabel(doc.Labels("")))}
		if st := t.Seating(); st != nil {
			size := t.PhysicalSizeFromCanvas(doc.UI.PixelsPerMeter)
			st.Size = &size
			st.SizeTiedToCanvas = true
		}
		doc.Tables = append(doc.Tables, t)
		doc.UI.SetSelection([]string{id})
		return true
	})
	return id
}

// RemoveTable deletes one table and drops it from the selection. Callers
// confirm deletion of occupied tables beforehand.
func (p *Planner) RemoveTable(id string) bool {
	return p.RemoveTables([]string{id})
}

// RemoveTables deletes every listed table as one undo step. Unknown ids
// are ignored.
func (p *Planner) RemoveTables(ids []string) bool {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	return p.edit(OpRemoveTable, func(doc *models.Document, record func()) bool {
		kept := make([]*models.Table, 0, len(doc.Tables))
		for _, t := range doc.Tables {
			if _, ok := drop[t.ID]; !ok {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(doc.Tables) {
			return false
		}
		record()
		doc.Tables = kept
		for id := range drop {
			doc.UI.Deselect(id)
		}
		return true
	})
}

// TablesWithAssignments returns the ids among ids whose tables seat at
// least one guest, for deletion confirmation.
func (p *Planner) TablesWithAssignments(ids []string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	for _, id := range ids {
		t, _ := p.doc.FindTable(id)
		if t == nil {
			continue
		}
		if st := t.Seating(); st != nil && st.Assignments.Occupied() > 0 {
			out = append(out, id)
		}
	}
	return out
}

// CommitTableLabel sets a trimmed label, resolving collisions with other
// tables. An empty label keeps the current one.
func (p *Planner) CommitTableLabel(id, raw string) bool {
	want := strings.TrimSpace(raw)
	if want == "" {
		return false
	}
	return p.edit(OpRelabel, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil || t.Seating() == nil {
			return false
		}
		label := resolveLabel(want, doc.Labels(id))
		if label == t.Seating().Label {
			return false
		}
		record()
		t.Seating().Label = label
		return true
	})
}

// MoveTable places one table at x, y.
func (p *Planner) MoveTable(id string, x, y float64) bool {
	if !finite(x, y) {
		return false
	}
	return p.edit(OpMoveTable, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil {
			return false
		}
		record()
		t.X, t.Y = x, y
		return true
	})
}

// UpdateTableRadius resizes a round table, clamped to the radius limits.
func (p *Planner) UpdateTableRadius(id string, radius float64) bool {
	if !finite(radius) {
		return false
	}
	return p.edit(OpResize, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil {
			return false
		}
		c, ok := t.Shape.(*models.Circle)
		if !ok {
			return false
		}
		record()
		c.Radius = models.ClampRadius(radius)
		syncSize(t, doc.UI.PixelsPerMeter)
		return true
	})
}

// UpdateTableDimensions resizes a rect table or separator, clamped per variant.
func (p *Planner) UpdateTableDimensions(id string, width, height float64) bool {
	if !finite(width, height) {
		return false
	}
	return p.edit(OpResize, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil {
			return false
		}
		w, h := models.ClampDimensions(t.Kind(), width, height)
		switch s := t.Shape.(type) {
		case *models.Rect:
			record()
			s.Width, s.Height = w, h
		case *models.Separator:
			record()
			s.Width, s.Height = w, h
		default:
			return false
		}
		syncSize(t, doc.UI.PixelsPerMeter)
		return true
	})
}

// UpdateTableSizeProperty sets the physical size in meters and derives the
// canvas geometry from it. Round tables use the width as diameter.
func (p *Planner) UpdateTableSizeProperty(id string, width, height float64) bool {
	if !finite(width, height) {
		return false
	}
	width = math.Max(width, models.MinPhysicalSize)
	height = math.Max(height, models.MinPhysicalSize)
	return p.edit(OpPhysicalSize, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil || t.Seating() == nil {
			return false
		}
		record()
		ppm := doc.UI.PixelsPerMeter
		t.Seating().Size = &models.Size{Width: width, Height: height}
		switch s := t.Shape.(type) {
		case *models.Circle:
			s.Radius = models.ClampRadius(width * ppm / 2)
		case *models.Rect:
			s.Width, s.Height = models.ClampDimensions(models.KindRect, width*ppm, height*ppm)
		}
		return true
	})
}

// ToggleSizeTiedToCanvas flips whether the physical size follows the
// canvas geometry. Tying re-derives the size immediately.
func (p *Planner) ToggleSizeTiedToCanvas(id string) bool {
	return p.edit(OpTieSize, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil || t.Seating() == nil {
			return false
		}
		record()
		st := t.Seating()
		st.SizeTiedToCanvas = !st.SizeTiedToCanvas
		syncSize(t, doc.UI.PixelsPerMeter)
		return true
	})
}

// SetPixelsPerMeter changes the canvas scale and re-derives the size of
// every tied table.
func (p *Planner) SetPixelsPerMeter(ratio float64) bool {
	if !finite(ratio) || ratio < models.MinPixelsPerMeter || ratio > models.MaxPixelsPerMeter {
		return false
	}
	return p.edit(OpPixelsPerMeter, func(doc *models.Document, record func()) bool {
		if doc.UI.PixelsPerMeter == ratio {
			return false
		}
		record()
		doc.UI.PixelsPerMeter = ratio
		for _, t := range doc.Tables {
			syncSize(t, ratio)
		}
		return true
	})
}

// syncSize recomputes the physical size of a tied table.
func syncSize(t *models.Table, pixelsPerMeter float64) {
	st := t.Seating()
	if st == nil || !st.SizeTiedToCanvas {
		return
	}
	size := t.PhysicalSizeFromCanvas(pixelsPerMeter)
	st.Size = &size
}

// LostSeat is an assignment that a seat reduction would clear.
type LostSeat struct {
	Seat    int    `json:"seat"`
	GuestID string `json:"guestId"`
}

// ConfirmFunc decides whether a destructive change may proceed. It runs
// while the planner is locked and must not call back into it.
type ConfirmFunc func(lost []LostSeat) bool

// PreviewSeatReduction lists the assignments SetTableSeats(id, seats)
// would clear.
func (p *Planner) PreviewSeatReduction(id string, seats int) []LostSeat {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, _ := p.doc.FindTable(id)
	if t == nil || t.Seating() == nil {
		return nil
	}
	return lostSeats(t.Seating().Assignments, clampSeats(seats))
}

// SetTableSeats changes the seat count, clamped to [1, 32]. When seated
// guests would lose their seats, confirm decides; declining leaves the
// table and the undo history exactly as they were. A nil confirm declines.
// It reports whether the table now has the requested count.
func (p *Planner) SetTableSeats(id string, seats int, confirm ConfirmFunc) bool {
	n := clampSeats(seats)
	result := false
	p.edit(OpSeats, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil || t.Seating() == nil {
			return false
		}
		st := t.Seating()
		if n == st.Seats {
			result = true
			return false
		}
		lost := lostSeats(st.Assignments, n)
		if len(lost) > 0 && (confirm == nil || !confirm(lost)) {
			return false
		}
		record()
		for _, l := range lost {
			delete(st.Assignments, l.Seat)
		}
		st.Seats = n
		result = true
		return true
	})
	return result
}

func clampSeats(n int) int {
	if n < models.MinSeats {
		return models.MinSeats
	}
	if n > models.MaxSeats {
		return models.MaxSeats
	}
	return n
}

func lostSeats(a models.Assignments, seats int) []LostSeat {
	var out []LostSeat
	for seat, g := range a {
		if seat >= seats && g != "" {
			out = append(out, LostSeat{Seat: seat, GuestID: g})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// SetRectOneSided toggles one-sided seating on a rect table.
func (p *Planner) SetRectOneSided(id string, oneSided bool) bool {
	return p.editRect(id, func(r *models.Rect) bool {
		if r.RectOneSided == oneSided {
			return false
		}
		r.RectOneSided = oneSided
		return true
	})
}

// SetRectOneSide sets the seating side of a one-sided rect table.
func (p *Planner) SetRectOneSide(id string, side models.Side) bool {
	if !side.Valid() {
		return false
	}
	return p.editRect(id, func(r *models.Rect) bool {
		if r.OneSide == side {
			return false
		}
		r.OneSide = side
		return true
	})
}

// SetRectOddExtraSide sets the side receiving the extra seat of an odd count.
func (p *Planner) SetRectOddExtraSide(id string, side models.Side) bool {
	if !side.Valid() {
		return false
	}
	return p.editRect(id, func(r *models.Rect) bool {
		if r.OddExtraSide == side {
			return false
		}
		r.OddExtraSide = side
		return true
	})
}

// editRect applies fn to a rect table. fn must only report true after
// deciding to change r, and must not change it otherwise.
func (p *Planner) editRect(id string, fn func(r *models.Rect) bool) bool {
	return p.edit(OpRectSides, func(doc *models.Document, record func()) bool {
		t, _ := doc.FindTable(id)
		if t == nil {
			return false
		}
		r, ok := t.Shape.(*models.Rect)
		if !ok {
			return false
		}
		trial := *r
		if !fn(&trial) {
			return false
		}
		record()
		fn(r)
		return true
	})
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
