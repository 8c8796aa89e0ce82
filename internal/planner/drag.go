package planner

import (
	"math"

	"github.com/table-planner/backend/internal/models"
)

type point struct{ x, y float64 }

// Drag is an in-progress move of the selected tables. Every MoveTo
// translates the whole group by the primary table's displacement, so the
// group stays rigid whatever snapping does. The drag is one undo step.
type Drag struct {
	p       *Planner
	primary string
	origins map[string]point
	done    bool
}

// StartDrag begins dragging from primaryID. An unselected primary table
// becomes the sole selection first. A drag still open is ended.
func (p *Planner) StartDrag(primaryID string) (*Drag, bool) {
	var d *Drag
	p.edit(OpSelection, func(doc *models.Document, _ func()) bool {
		if t, _ := doc.FindTable(primaryID); t == nil {
			return false
		}
		changed := false
		if !doc.UI.IsSelected(primaryID) {
			doc.UI.SetSelection([]string{primaryID})
			changed = true
		}
		d = &Drag{p: p, primary: primaryID, origins: make(map[string]point)}
		for _, id := range doc.UI.SelectedTableIDs {
			if t, _ := doc.FindTable(id); t != nil {
				d.origins[id] = point{t.X, t.Y}
			}
		}
		p.history.Begin(doc)
		p.drag = d
		return changed
	})
	return d, d != nil
}

// Primary returns the id of the table under the pointer.
func (d *Drag) Primary() string {
	return d.primary
}

// MoveTo moves the primary table to x, y (snapped to the grid when
// snapping is on) and every other dragged table by the same delta.
func (d *Drag) MoveTo(x, y float64) bool {
	if !finite(x, y) {
		return false
	}
	return d.p.edit(OpDrag, func(doc *models.Document, _ func()) bool {
		if d.done {
			return false
		}
		origin, ok := d.origins[d.primary]
		if !ok {
			return false
		}
		if doc.UI.Snap {
			x, y = snap(x, doc.UI.Grid), snap(y, doc.UI.Grid)
		}
		dx, dy := x-origin.x, y-origin.y
		moved := false
		for id, o := range d.origins {
			if t, _ := doc.FindTable(id); t != nil {
				t.X, t.Y = o.x+dx, o.y+dy
				moved = true
			}
		}
		return moved
	})
}

// End closes the drag's history group. Further moves are ignored.
func (d *Drag) End() {
	d.p.mu.Lock()
	d.endLocked()
	d.p.mu.Unlock()
}

// Active reports whether the drag still accepts moves.
func (d *Drag) Active() bool {
	d.p.mu.Lock()
	defer d.p.mu.Unlock()
	return !d.done
}

func (d *Drag) endLocked() {
	if d.done {
		return
	}
	d.done = true
	d.p.history.End()
	if d.p.drag == d {
		d.p.drag = nil
	}
}

func (p *Planner) endDragLocked() {
	if p.drag != nil {
		p.drag.endLocked()
	}
}

// NudgeSelection moves every selected table by dx, dy, snapping each to
// the grid when snapping is on.
func (p *Planner) NudgeSelection(dx, dy float64) bool {
	if !finite(dx, dy) || (dx == 0 && dy == 0) {
		return false
	}
	return p.edit(OpNudge, func(doc *models.Document, record func()) bool {
		var tables []*models.Table
		for _, id := range doc.UI.SelectedTableIDs {
			if t, _ := doc.FindTable(id); t != nil {
				tables = append(tables, t)
			}
		}
		if len(tables) == 0 {
			return false
		}
		record()
		for _, t := range tables {
			t.X, t.Y = t.X+dx, t.Y+dy
			if doc.UI.Snap {
				t.X, t.Y = snap(t.X, doc.UI.Grid), snap(t.Y, doc.UI.Grid)
			}
		}
		return true
	})
}

func snap(v float64, grid int) float64 {
	if grid <= 0 {
		return v
	}
	g := float64(grid)
	return math.Round(v/g) * g
}
