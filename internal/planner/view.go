package planner

import (
	"strings"

	"github.com/table-planner/backend/internal/models"
)

// Selection and view settings are saved and announced like any change but
// do not add undo steps of their own.

// SelectTable makes id the sole selection.
func (p *Planner) SelectTable(id string) bool {
	return p.SelectTables([]string{id})
}

// SelectTables replaces the selection with the known tables among ids.
func (p *Planner) SelectTables(ids []string) bool {
	return p.edit(OpSelection, func(doc *models.Document, _ func()) bool {
		sel := make([]string, 0, len(ids))
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			if t, _ := doc.FindTable(id); t != nil {
				sel = append(sel, id)
				seen[id] = struct{}{}
			}
		}
		if len(sel) == 0 && len(ids) > 0 {
			return false
		}
		doc.UI.SetSelection(sel)
		return true
	})
}

// SelectAll selects every table.
func (p *Planner) SelectAll() bool {
	return p.edit(OpSelection, func(doc *models.Document, _ func()) bool {
		ids := make([]string, len(doc.Tables))
		for i, t := range doc.Tables {
			ids[i] = t.ID
		}
		doc.UI.SetSelection(ids)
		return true
	})
}

// AddToSelection adds a table to the selection.
func (p *Planner) AddToSelection(id string) bool {
	return p.edit(OpSelection, func(doc *models.Document, _ func()) bool {
		if t, _ := doc.FindTable(id); t == nil || doc.UI.IsSelected(id) {
			return false
		}
		doc.UI.SetSelection(append(doc.UI.SelectedTableIDs, id))
		return true
	})
}

// RemoveFromSelection drops a table from the selection.
func (p *Planner) RemoveFromSelection(id string) bool {
	return p.edit(OpSelection, func(doc *models.Document, _ func()) bool {
		return doc.UI.Deselect(id)
	})
}

// ClearSelection empties the selection.
func (p *Planner) ClearSelection() bool {
	return p.edit(OpSelection, func(doc *models.Document, _ func()) bool {
		if len(doc.UI.SelectedTableIDs) == 0 && doc.UI.SelectedTableID == nil {
			return false
		}
		doc.UI.SetSelection(nil)
		return true
	})
}

func (p *Planner) view(fn func(ui *models.UIState) bool) bool {
	return p.edit(OpView, func(doc *models.Document, _ func()) bool {
		return fn(&doc.UI)
	})
}

// SetZoom sets the zoom factor, clamped to [0.1, 5].
func (p *Planner) SetZoom(zoom float64) bool {
	if !finite(zoom) {
		return false
	}
	zoom = models.Clamp(zoom, models.MinZoom, models.MaxZoom)
	return p.view(func(ui *models.UIState) bool {
		if ui.Zoom == zoom {
			return false
		}
		ui.Zoom = zoom
		return true
	})
}

// SetPan sets the pan offset.
func (p *Planner) SetPan(x, y float64) bool {
	if !finite(x, y) {
		return false
	}
	return p.view(func(ui *models.UIState) bool {
		if ui.PanX == x && ui.PanY == y {
			return false
		}
		ui.PanX, ui.PanY = x, y
		return true
	})
}

// ResetView returns to zoom 1 with no pan.
func (p *Planner) ResetView() bool {
	return p.view(func(ui *models.UIState) bool {
		if ui.Zoom == 1 && ui.PanX == 0 && ui.PanY == 0 {
			return false
		}
		ui.Zoom, ui.PanX, ui.PanY = 1, 0, 0
		return true
	})
}

// SetSnap turns grid snapping on or off.
func (p *Planner) SetSnap(on bool) bool {
	return p.view(func(ui *models.UIState) bool {
		if ui.Snap == on {
			return false
		}
		ui.Snap = on
		return true
	})
}

// SetGridSize sets the grid spacing, clamped to [4, 64].
func (p *Planner) SetGridSize(size int) bool {
	if size < models.MinGrid {
		size = models.MinGrid
	}
	if size > models.MaxGrid {
		size = models.MaxGrid
	}
	return p.view(func(ui *models.UIState) bool {
		if ui.Grid == size {
			return false
		}
		ui.Grid = size
		return true
	})
}

// SetShowGrid shows or hides the grid.
func (p *Planner) SetShowGrid(show bool) bool {
	return p.view(func(ui *models.UIState) bool {
		if ui.ShowGrid == show {
			return false
		}
		ui.ShowGrid = show
		return true
	})
}

// SetGuestSort selects the guest list ordering.
func (p *Planner) SetGuestSort(mode string) bool {
	if !models.ValidSort(mode) {
		return false
	}
	return p.view(func(ui *models.UIState) bool {
		if ui.GuestSort == mode {
			return false
		}
		ui.GuestSort = mode
		return true
	})
}

// SetGuestUnassignedOnly toggles the unassigned-only guest filter.
func (p *Planner) SetGuestUnassignedOnly(on bool) bool {
	return p.view(func(ui *models.UIState) bool {
		if ui.GuestUnassignedOnly == on {
			return false
		}
		ui.GuestUnassignedOnly = on
		return true
	})
}

// SetGuestSearch sets the guest list search text.
func (p *Planner) SetGuestSearch(text string) bool {
	return p.view(func(ui *models.UIState) bool {
		if ui.GuestSearch == text {
			return false
		}
		ui.GuestSearch = text
		return true
	})
}

// SetLanguage sets the interface language code.
func (p *Planner) SetLanguage(lang string) bool {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return false
	}
	return p.view(func(ui *models.UIState) bool {
		if ui.Language == lang {
			return false
		}
		ui.Language = lang
		return true
	})
}

// SetSidebarCollapsed collapses or expands the sidebar.
func (p *Planner) SetSidebarCollapsed(collapsed bool) bool {
	return p.view(func(ui *models.UIState) bool {
		if ui.SidebarCollapsed == collapsed {
			return false
		}
		ui.SidebarCollapsed = collapsed
		return true
	})
}

// SetLegendCollapsed collapses or expands the color legend.
func (p *Planner) SetLegendCollapsed(collapsed bool) bool {
	return p.view(func(ui *models.UIState) bool {
		if ui.LegendCollapsed == collapsed {
			return false
		}
		ui.LegendCollapsed = collapsed
		return true
	})
}

// SetViewMode switches between the canvas and the seating chart.
func (p *Planner) SetViewMode(mode string) bool {
	if !models.ValidViewMode(mode) {
		return false
	}
	return p.view(func(ui *models.UIState) bool {
		if ui.ViewMode == mode {
			return false
		}
		ui.ViewMode = mode
		return true
	})
}
