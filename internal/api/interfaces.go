// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/table-planner/backend/internal/planner"
	"github.com/table-planner/backend/internal/session"
)

// PlanHandler handles plan lifecycle, history and document transfer
type PlanHandler interface {
	HandleListPlans(c echo.Context) error
	HandleCreatePlan(c echo.Context) error
	HandleGetDocument(c echo.Context) error
	HandleDeletePlan(c echo.Context) error
	HandleGetStats(c echo.Context) error
	HandleGetGuestList(c echo.Context) error
	HandleUndo(c echo.Context) error
	HandleRedo(c echo.Context) error
	HandleBeginHistoryGroup(c echo.Context) error
	HandleEndHistoryGroup(c echo.Context) error
	HandleClearHistory(c echo.Context) error
	HandleImport(c echo.Context) error
	HandleExport(c echo.Context) error
	HandleImportMsgpack(c echo.Context) error
	HandleExportMsgpack(c echo.Context) error
}

// TableHandler handles table, seat and drag operations
type TableHandler interface {
	HandleAddTable(c echo.Context) error
	HandleDeleteTable(c echo.Context) error
	HandleDeleteTables(c echo.Context) error
	HandleSetLabel(c echo.Context) error
	HandleSetPosition(c echo.Context) error
	HandleSetRadius(c echo.Context) error
	HandleSetDimensions(c echo.Context) error
	HandleSetSize(c echo.Context) error
	HandleToggleSizeTie(c echo.Context) error
	HandleSetSeats(c echo.Context) error
	HandleSetOneSided(c echo.Context) error
	HandleSetOneSide(c echo.Context) error
	HandleSetOddExtraSide(c echo.Context) error
	HandleAssignSeat(c echo.Context) error
	HandleUnassignSeat(c echo.Context) error
	HandleMoveGuest(c echo.Context) error
	HandleDragStart(c echo.Context) error
	HandleDragMove(c echo.Context) error
	HandleDragEnd(c echo.Context) error
	HandleNudge(c echo.Context) error
}

// GuestHandler handles guest, picture and legend operations
type GuestHandler interface {
	HandleAddGuest(c echo.Context) error
	HandleUpdateGuest(c echo.Context) error
	HandleDeleteGuest(c echo.Context) error
	HandleSetPicture(c echo.Context) error
	HandleRemovePicture(c echo.Context) error
	HandleGetPicture(c echo.Context) error
	HandleImportCSV(c echo.Context) error
	HandleExportCSV(c echo.Context) error
	HandleSetLegend(c echo.Context) error
	HandleSetPictureFolder(c echo.Context) error
}

// ViewHandler handles selection and view settings
type ViewHandler interface {
	HandleSetSelection(c echo.Context) error
	HandleAddToSelection(c echo.Context) error
	HandleRemoveFromSelection(c echo.Context) error
	HandleSelectAll(c echo.Context) error
	HandleClearSelection(c echo.Context) error
	HandlePatchUI(c echo.Context) error
	HandleResetView(c echo.Context) error
	HandleSetPixelsPerMeter(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// PlanManager defines the interface for plan management
// This allows mocking in tests
type PlanManager interface {
	Open(ctx context.Context, planID string) (*planner.Planner, error)
	Create(ctx context.Context) (*planner.Planner, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, planID string) error
	StartDrag(planID, tableID string) (*planner.Drag, bool)
	Drag(planID string) (*planner.Drag, bool)
	EndDrag(planID string) bool
	Count() int
}

var _ PlanManager = (*session.Manager)(nil)
