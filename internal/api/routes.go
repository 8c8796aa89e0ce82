// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Plans       PlanManager
	Hub         *Hub
	PictureRoot string
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Plan   PlanHandler
	Table  TableHandler
	Guest  GuestHandler
	View   ViewHandler
	Hub    *Hub
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.Plans, 0)
	}
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.Plans),
		Plan:   NewPlanHandler(deps.Plans),
		Table:  NewTableHandler(deps.Plans),
		Guest:  NewGuestHandler(deps.Plans, deps.PictureRoot),
		View:   NewViewHandler(deps.Plans),
		Hub:    hub,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Plan collection
	e.GET("/api/plans", handlers.Plan.HandleListPlans)
	e.POST("/api/plans", handlers.Plan.HandleCreatePlan)

	plan := e.Group("/api/plans/:planId")
	plan.GET("", handlers.Plan.HandleGetDocument)
	plan.DELETE("", handlers.Plan.HandleDeletePlan)
	plan.GET("/stats", handlers.Plan.HandleGetStats)
	plan.GET("/guests", handlers.Plan.HandleGetGuestList)

	// History
	plan.POST("/undo", handlers.Plan.HandleUndo)
	plan.POST("/redo", handlers.Plan.HandleRedo)
	plan.POST("/history/begin", handlers.Plan.HandleBeginHistoryGroup)
	plan.POST("/history/end", handlers.Plan.HandleEndHistoryGroup)
	plan.DELETE("/history", handlers.Plan.HandleClearHistory)

	// Transfer
	plan.POST("/import", handlers.Plan.HandleImport)
	plan.GET("/export", handlers.Plan.HandleExport)
	plan.POST("/import/msgpack", handlers.Plan.HandleImportMsgpack)
	plan.GET("/export/msgpack", handlers.Plan.HandleExportMsgpack)

	// Tables
	plan.POST("/tables", handlers.Table.HandleAddTable)
	plan.POST("/tables/delete", handlers.Table.HandleDeleteTables)
	plan.DELETE("/tables/:tableId", handlers.Table.HandleDeleteTable)
	plan.PUT("/tables/:tableId/label", handlers.Table.HandleSetLabel)
	plan.PUT("/tables/:tableId/position", handlers.Table.HandleSetPosition)
	plan.PUT("/tables/:tableId/radius", handlers.Table.HandleSetRadius)
	plan.PUT("/tables/:tableId/dimensions", handlers.Table.HandleSetDimensions)
	plan.PUT("/tables/:tableId/size", handlers.Table.HandleSetSize)
	plan.POST("/tables/:tableId/size/tie", handlers.Table.HandleToggleSizeTie)
	plan.PUT("/tables/:tableId/seats", handlers.Table.HandleSetSeats)
	plan.PUT("/tables/:tableId/one-sided", handlers.Table.HandleSetOneSided)
	plan.PUT("/tables/:tableId/one-side", handlers.Table.HandleSetOneSide)
	plan.PUT("/tables/:tableId/odd-extra-side", handlers.Table.HandleSetOddExtraSide)

	// Seats
	plan.PUT("/tables/:tableId/seats/:seat", handlers.Table.HandleAssignSeat)
	plan.DELETE("/tables/:tableId/seats/:seat", handlers.Table.HandleUnassignSeat)
	plan.POST("/seats/move", handlers.Table.HandleMoveGuest)

	// Drag
	plan.POST("/drag/start", handlers.Table.HandleDragStart)
	plan.POST("/drag/move", handlers.Table.HandleDragMove)
	plan.POST("/drag/end", handlers.Table.HandleDragEnd)
	plan.POST("/selection/nudge", handlers.Table.HandleNudge)

	// Guests
	plan.POST("/guests", handlers.Guest.HandleAddGuest)
	plan.POST("/guests/csv", handlers.Guest.HandleImportCSV)
	plan.GET("/guests/csv", handlers.Guest.HandleExportCSV)
	plan.PATCH("/guests/:guestId", handlers.Guest.HandleUpdateGuest)
	plan.DELETE("/guests/:guestId", handlers.Guest.HandleDeleteGuest)
	plan.PUT("/guests/:guestId/picture", handlers.Guest.HandleSetPicture)
	plan.DELETE("/guests/:guestId/picture", handlers.Guest.HandleRemovePicture)
	plan.GET("/guests/:guestId/picture", handlers.Guest.HandleGetPicture)
	plan.PUT("/legend", handlers.Guest.HandleSetLegend)
	plan.PUT("/picture-folder", handlers.Guest.HandleSetPictureFolder)

	// Selection
	plan.PUT("/selection", handlers.View.HandleSetSelection)
	plan.POST("/selection/add", handlers.View.HandleAddToSelection)
	plan.POST("/selection/remove", handlers.View.HandleRemoveFromSelection)
	plan.POST("/selection/all", handlers.View.HandleSelectAll)
	plan.DELETE("/selection", handlers.View.HandleClearSelection)

	// View
	plan.PATCH("/ui", handlers.View.HandlePatchUI)
	plan.POST("/ui/reset-view", handlers.View.HandleResetView)
	plan.PUT("/pixels-per-meter", handlers.View.HandleSetPixelsPerMeter)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/plans/:planId/ws", handlers.Hub.HandleWebSocket)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
