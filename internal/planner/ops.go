package planner

// Operation names passed to listeners.
const (
	OpAddTable       = "addTable"
	OpRemoveTable    = "removeTable"
	OpRelabel        = "relabelTable"
	OpMoveTable      = "moveTable"
	OpDrag           = "dragTables"
	OpNudge          = "nudgeSelection"
	OpResize         = "resizeTable"
	OpPhysicalSize   = "setPhysicalSize"
	OpTieSize        = "toggleSizeTied"
	OpPixelsPerMeter = "setPixelsPerMeter"
	OpSeats          = "setTableSeats"
	OpRectSides      = "setRectSides"
	OpAssignSeat     = "assignSeat"
	OpUnassignSeat   = "unassignSeat"
	OpMoveGuest      = "moveGuest"
	OpAddGuest       = "addGuest"
	OpUpdateGuest    = "updateGuest"
	OpDeleteGuest    = "deleteGuest"
	OpImportGuests   = "importGuests"
	OpPicture        = "setPicture"
	OpLegend         = "setLegend"
	OpSelection      = "selection"
	OpView           = "view"
	OpUndo           = "undo"
	OpRedo           = "redo"
	OpImport         = "import"
	OpClearHistory   = "clearHistory"
)
