// handlers_tables.go - Table, seat and drag handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/table-planner/backend/internal/models"
	"github.com/table-planner/backend/internal/planner"
)

// TableHandlerImpl implements the TableHandler interface
type TableHandlerImpl struct {
	plans PlanManager
}

// NewTableHandler creates a new table handler instance
func NewTableHandler(plans PlanManager) TableHandler {
	return &TableHandlerImpl{plans: plans}
}

// HandleAddTable adds a circle, rect or separator with default geometry
func (h *TableHandlerImpl) HandleAddTable(c echo.Context) error {
	var req addTableRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}

	var id string
	switch models.TableKind(req.Kind) {
	case models.KindCircle:
		id = p.AddCircleTable()
	case models.KindRect:
		id = p.AddRectTable()
	case models.KindSeparator:
		id = p.AddSeparator()
	default:
		return NewValidationError("kind")
	}
	return respondWithID(c, p, http.StatusCreated, true, id)
}

// HandleDeleteTable removes one table. Tables with seated guests need
// ?confirm=true.
func (h *TableHandlerImpl) HandleDeleteTable(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	id, err := tableOf(c, p)
	if err != nil {
		return err
	}
	return h.removeTables(c, p, []string{id}, c.QueryParam("confirm") == "true")
}

// HandleDeleteTables removes several tables as one undo step
func (h *TableHandlerImpl) HandleDeleteTables(c echo.Context) error {
	var req deleteTablesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.IDs) == 0 {
		return NewValidationError("ids")
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return h.removeTables(c, p, req.IDs, req.Confirm)
}

func (h *TableHandlerImpl) removeTables(c echo.Context, p *planner.Planner, ids []string, confirm bool) error {
	if !confirm {
		if occupied := p.TablesWithAssignments(ids); len(occupied) > 0 {
			return NewConfirmationError("tables have seated guests", map[string]interface{}{
				"tables": occupied,
			})
		}
	}
	return respondMutation(c, p, p.RemoveTables(ids))
}

// HandleSetLabel commits a table label, resolving collisions
func (h *TableHandlerImpl) HandleSetLabel(c echo.Context) error {
	var req labelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.CommitTableLabel(id, req.Label)
	})
}

// HandleSetPosition moves a table
func (h *TableHandlerImpl) HandleSetPosition(c echo.Context) error {
	var req positionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.MoveTable(id, req.X, req.Y)
	})
}

// HandleSetRadius resizes a circle table
func (h *TableHandlerImpl) HandleSetRadius(c echo.Context) error {
	var req radiusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.UpdateTableRadius(id, req.Radius)
	})
}

// HandleSetDimensions resizes a rect table or separator
func (h *TableHandlerImpl) HandleSetDimensions(c echo.Context) error {
	var req dimensionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.UpdateTableDimensions(id, req.Width, req.Height)
	})
}

// HandleSetSize sets a table's physical size in meters
func (h *TableHandlerImpl) HandleSetSize(c echo.Context) error {
	var req dimensionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.UpdateTableSizeProperty(id, req.Width, req.Height)
	})
}

// HandleToggleSizeTie toggles whether the physical size follows the canvas
func (h *TableHandlerImpl) HandleToggleSizeTie(c echo.Context) error {
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.ToggleSizeTiedToCanvas(id)
	})
}

// HandleSetSeats changes the seat count. Dropping occupied seats answers
// 409 with the lost seats unless confirm is set.
func (h *TableHandlerImpl) HandleSetSeats(c echo.Context) error {
	var req seatsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	id, err := tableOf(c, p)
	if err != nil {
		return err
	}
	before := seatCount(p, id)

	var lost []planner.LostSeat
	ok := p.SetTableSeats(id, req.Seats, func(l []planner.LostSeat) bool {
		lost = l
		return req.Confirm
	})
	if !ok && len(lost) > 0 {
		return NewConfirmationError("seated guests would lose their seats", map[string]interface{}{
			"lostSeats": lost,
		})
	}
	return respondMutation(c, p, ok && seatCount(p, id) != before)
}

func seatCount(p *planner.Planner, id string) int {
	t, ok := p.Table(id)
	if !ok || t.Seating() == nil {
		return 0
	}
	return t.Seating().Seats
}

// HandleSetOneSided toggles one-sided seating of a rect table
func (h *TableHandlerImpl) HandleSetOneSided(c echo.Context) error {
	var req oneSidedRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.SetRectOneSided(id, req.OneSided)
	})
}

// HandleSetOneSide sets the seating side of a one-sided rect table
func (h *TableHandlerImpl) HandleSetOneSide(c echo.Context) error {
	var req sideRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if !req.Side.Valid() {
		return NewValidationError("side")
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.SetRectOneSide(id, req.Side)
	})
}

// HandleSetOddExtraSide sets the side that takes the odd seat
func (h *TableHandlerImpl) HandleSetOddExtraSide(c echo.Context) error {
	var req sideRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if !req.Side.Valid() {
		return NewValidationError("side")
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.SetRectOddExtraSide(id, req.Side)
	})
}

// HandleAssignSeat seats a guest at :seat
func (h *TableHandlerImpl) HandleAssignSeat(c echo.Context) error {
	var req assignSeatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	seat, err := seatParam(c)
	if err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	id, err := tableOf(c, p)
	if err != nil {
		return err
	}
	if _, ok := p.Guest(req.GuestID); !ok {
		return NewNotFoundError("guest", req.GuestID)
	}
	return respondMutation(c, p, p.AssignGuestToSeat(id, seat, req.GuestID))
}

// HandleUnassignSeat frees :seat
func (h *TableHandlerImpl) HandleUnassignSeat(c echo.Context) error {
	seat, err := seatParam(c)
	if err != nil {
		return err
	}
	return h.withTable(c, func(p *planner.Planner, id string) bool {
		return p.UnassignSeat(id, seat)
	})
}

// HandleMoveGuest drops a guest on a seat, swapping with its occupant
func (h *TableHandlerImpl) HandleMoveGuest(c echo.Context) error {
	var req moveGuestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	if _, ok := p.Guest(req.GuestID); !ok {
		return NewNotFoundError("guest", req.GuestID)
	}
	if _, ok := p.Table(req.TableID); !ok {
		return NewNotFoundError("table", req.TableID)
	}
	return respondMutation(c, p, p.MoveGuestToSeat(req.GuestID, req.TableID, req.Seat))
}

// HandleDragStart begins dragging the selection from a table
func (h *TableHandlerImpl) HandleDragStart(c echo.Context) error {
	var req dragStartRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	if _, ok := h.plans.StartDrag(p.ID(), req.TableID); !ok {
		return NewNotFoundError("table", req.TableID)
	}
	return respondMutation(c, p, false)
}

// HandleDragMove moves the dragged tables
func (h *TableHandlerImpl) HandleDragMove(c echo.Context) error {
	var req positionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	d, ok := h.plans.Drag(p.ID())
	if !ok {
		return NewConflictError("no drag in progress")
	}
	return respondMutation(c, p, d.MoveTo(req.X, req.Y))
}

// HandleDragEnd finishes the drag, closing its undo step
func (h *TableHandlerImpl) HandleDragEnd(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return respondMutation(c, p, h.plans.EndDrag(p.ID()))
}

// HandleNudge moves the selection by a step
func (h *TableHandlerImpl) HandleNudge(c echo.Context) error {
	var req nudgeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return respondMutation(c, p, p.NudgeSelection(req.DX, req.DY))
}

// withTable resolves the plan and :tableId before applying fn.
func (h *TableHandlerImpl) withTable(c echo.Context, fn func(p *planner.Planner, id string) bool) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	id, err := tableOf(c, p)
	if err != nil {
		return err
	}
	return respondMutation(c, p, fn(p, id))
}

// Request types

type addTableRequest struct {
	Kind string `json:"kind"`
}

type deleteTablesRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

type labelRequest struct {
	Label string `json:"label"`
}

type positionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type radiusRequest struct {
	Radius float64 `json:"radius"`
}

type dimensionsRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type seatsRequest struct {
	Seats   int  `json:"seats"`
	Confirm bool `json:"confirm"`
}

type oneSidedRequest struct {
	OneSided bool `json:"oneSided"`
}

type sideRequest struct {
	Side models.Side `json:"side"`
}

type assignSeatRequest struct {
	GuestID string `json:"guestId"`
}

type moveGuestRequest struct {
	GuestID string `json:"guestId"`
	TableID string `json:"tableId"`
	Seat    int    `json:"seat"`
}

type dragStartRequest struct {
	TableID string `json:"tableId"`
}

type nudgeRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}
