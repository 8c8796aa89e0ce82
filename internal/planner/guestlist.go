package planner

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/table-planner/backend/internal/models"
)

// GuestEntry is one row of the guest list.
type GuestEntry struct {
	Guest      *models.Guest   `json:"guest"`
	Seat       *models.SeatRef `json:"seat,omitempty"`
	TableLabel string          `json:"tableLabel,omitempty"`
}

// GuestList returns the guests ordered by the current sort mode, filtered
// by the unassigned-only flag and the search text.
func (p *Planner) GuestList() []GuestEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	seats := make(map[string]GuestEntry, len(p.doc.Guests))
	for _, t := range p.doc.Tables {
		st := t.Seating()
		if st == nil {
			continue
		}
		for seat, g := range st.Assignments {
			if g != "" {
				seats[g] = GuestEntry{Seat: &models.SeatRef{TableID: t.ID, Seat: seat}, TableLabel: st.Label}
			}
		}
	}

	out := make([]GuestEntry, 0, len(p.doc.Guests))
	for _, g := range p.doc.Guests {
		e := seats[g.ID]
		e.Guest = g.Clone()
		out = append(out, e)
	}
	sortGuests(out, p.doc.UI.GuestSort)

	ui := p.doc.UI
	search := strings.ToLower(strings.TrimSpace(ui.GuestSearch))
	filtered := out[:0]
	for _, e := range out {
		if ui.GuestUnassignedOnly && e.Seat != nil {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Guest.Name), search) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

func sortGuests(list []GuestEntry, mode string) {
	byName := func(a, b GuestEntry) bool { return lessName(a.Guest.Name, b.Guest.Name) }
	var less func(a, b GuestEntry) bool

	switch mode {
	case models.SortName:
		less = byName
	case models.SortColor:
		less = func(a, b GuestEntry) bool {
			ha, hb := hue(a.Guest.Color), hue(b.Guest.Color)
			if ha != hb {
				return ha < hb
			}
			return byName(a, b)
		}
	case models.SortChildFirst:
		less = func(a, b GuestEntry) bool {
			if a.Guest.IsChild != b.Guest.IsChild {
				return a.Guest.IsChild
			}
			return byName(a, b)
		}
	case models.SortTableSeat:
		less = func(a, b GuestEntry) bool {
			switch {
			case a.Seat == nil && b.Seat == nil:
				return byName(a, b)
			case a.Seat == nil:
				return false
			case b.Seat == nil:
				return true
			}
			na, nb := tableNumber(a.TableLabel), tableNumber(b.TableLabel)
			if na != nb {
				return na < nb
			}
			return a.Seat.Seat < b.Seat.Seat
		}
	case models.SortAssignedFirst:
		less = func(a, b GuestEntry) bool {
			if (a.Seat != nil) != (b.Seat != nil) {
				return a.Seat != nil
			}
			return byName(a, b)
		}
	default:
		less = func(a, b GuestEntry) bool {
			if (a.Seat != nil) != (b.Seat != nil) {
				return a.Seat == nil
			}
			return byName(a, b)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// tableNumber orders labels numerically; non-numeric labels sort last.
func tableNumber(label string) int {
	digits := label
	for i, r := range label {
		if r < '0' || r > '9' {
			digits = label[:i]
			break
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n == 0 {
		return math.MaxInt32
	}
	return n
}

// hue returns the HSL hue in degrees of a #rrggbb color; malformed colors
// count as black.
func hue(hex string) float64 {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0
	}
	r := float64(v>>16&0xff) / 255
	g := float64(v>>8&0xff) / 255
	b := float64(v&0xff) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	d := maxC - minC
	if d == 0 {
		return 0
	}
	var h float64
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60
}
