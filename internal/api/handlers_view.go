// handlers_view.go - Selection and view setting handlers
package api

import (
	"math"

	"github.com/labstack/echo/v4"
	"github.com/table-planner/backend/internal/models"
	"github.com/table-planner/backend/internal/planner"
)

// ViewHandlerImpl implements the ViewHandler interface
type ViewHandlerImpl struct {
	plans PlanManager
}

// NewViewHandler creates a new view handler instance
func NewViewHandler(plans PlanManager) ViewHandler {
	return &ViewHandlerImpl{plans: plans}
}

// HandleSetSelection replaces the selection
func (h *ViewHandlerImpl) HandleSetSelection(c echo.Context) error {
	var req selectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.apply(c, func(p *planner.Planner) bool {
		return p.SelectTables(req.IDs)
	})
}

// HandleAddToSelection adds one table to the selection
func (h *ViewHandlerImpl) HandleAddToSelection(c echo.Context) error {
	var req selectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return NewValidationError("id")
	}
	return h.apply(c, func(p *planner.Planner) bool {
		return p.AddToSelection(req.ID)
	})
}

// HandleRemoveFromSelection removes one table from the selection
func (h *ViewHandlerImpl) HandleRemoveFromSelection(c echo.Context) error {
	var req selectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ID == "" {
		return NewValidationError("id")
	}
	return h.apply(c, func(p *planner.Planner) bool {
		return p.RemoveFromSelection(req.ID)
	})
}

// HandleSelectAll selects every table
func (h *ViewHandlerImpl) HandleSelectAll(c echo.Context) error {
	return h.apply(c, func(p *planner.Planner) bool {
		return p.SelectAll()
	})
}

// HandleClearSelection deselects everything
func (h *ViewHandlerImpl) HandleClearSelection(c echo.Context) error {
	return h.apply(c, func(p *planner.Planner) bool {
		return p.ClearSelection()
	})
}

// HandlePatchUI applies the given view settings. Unknown sort or view
// modes reject the whole request.
func (h *ViewHandlerImpl) HandlePatchUI(c echo.Context) error {
	var req uiPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.GuestSort != nil && !models.ValidSort(*req.GuestSort) {
		return NewValidationError("guestSort")
	}
	if req.ViewMode != nil && !models.ValidViewMode(*req.ViewMode) {
		return NewValidationError("viewMode")
	}

	return h.apply(c, func(p *planner.Planner) bool {
		changed := false
		set := func(ok bool) { changed = ok || changed }

		if req.Zoom != nil {
			set(p.SetZoom(*req.Zoom))
		}
		if req.PanX != nil || req.PanY != nil {
			ui := p.Document().UI
			x, y := ui.PanX, ui.PanY
			if req.PanX != nil {
				x = *req.PanX
			}
			if req.PanY != nil {
				y = *req.PanY
			}
			set(p.SetPan(x, y))
		}
		if req.Snap != nil {
			set(p.SetSnap(*req.Snap))
		}
		if req.Grid != nil {
			set(p.SetGridSize(*req.Grid))
		}
		if req.ShowGrid != nil {
			set(p.SetShowGrid(*req.ShowGrid))
		}
		if req.GuestSort != nil {
			set(p.SetGuestSort(*req.GuestSort))
		}
		if req.GuestUnassignedOnly != nil {
			set(p.SetGuestUnassignedOnly(*req.GuestUnassignedOnly))
		}
		if req.GuestSearch != nil {
			set(p.SetGuestSearch(*req.GuestSearch))
		}
		if req.Language != nil {
			set(p.SetLanguage(*req.Language))
		}
		if req.SidebarCollapsed != nil {
			set(p.SetSidebarCollapsed(*req.SidebarCollapsed))
		}
		if req.LegendCollapsed != nil {
			set(p.SetLegendCollapsed(*req.LegendCollapsed))
		}
		if req.ViewMode != nil {
			set(p.SetViewMode(*req.ViewMode))
		}
		return changed
	})
}

// HandleResetView returns to zoom 1 with no pan
func (h *ViewHandlerImpl) HandleResetView(c echo.Context) error {
	return h.apply(c, func(p *planner.Planner) bool {
		return p.ResetView()
	})
}

// HandleSetPixelsPerMeter changes the canvas scale
func (h *ViewHandlerImpl) HandleSetPixelsPerMeter(c echo.Context) error {
	var req pixelsPerMeterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if math.IsNaN(req.PixelsPerMeter) || req.PixelsPerMeter < models.MinPixelsPerMeter || req.PixelsPerMeter > models.MaxPixelsPerMeter {
		return NewValidationError("pixelsPerMeter")
	}
	return h.apply(c, func(p *planner.Planner) bool {
		return p.SetPixelsPerMeter(req.PixelsPerMeter)
	})
}

func (h *ViewHandlerImpl) apply(c echo.Context, fn func(p *planner.Planner) bool) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return respondMutation(c, p, fn(p))
}

// Request types

type selectionRequest struct {
	ID  string   `json:"id"`
	IDs []string `json:"ids"`
}

type uiPatchRequest struct {
	Zoom                *float64 `json:"zoom"`
	PanX                *float64 `json:"panX"`
	PanY                *float64 `json:"panY"`
	Snap                *bool    `json:"snap"`
	Grid                *int     `json:"grid"`
	ShowGrid            *bool    `json:"showGrid"`
	GuestSort           *string  `json:"guestSort"`
	GuestUnassignedOnly *bool    `json:"guestUnassignedOnly"`
	GuestSearch         *string  `json:"guestSearch"`
	Language            *string  `json:"language"`
	SidebarCollapsed    *bool    `json:"sidebarCollapsed"`
	LegendCollapsed     *bool    `json:"legendCollapsed"`
	ViewMode            *string  `json:"viewMode"`
}

type pixelsPerMeterRequest struct {
	PixelsPerMeter float64 `json:"pixelsPerMeter"`
}
