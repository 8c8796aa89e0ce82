package models

// View modes.
const (
	ViewCanvas       = "canvas"
	ViewSeatingChart = "seatingChart"
)

// Guest list sort modes.
const (
	SortUnassignedFirst = "unassignedFirst"
	SortAssignedFirst   = "assignedFirst"
	SortName            = "name"
	SortColor           = "color"
	SortChildFirst      = "childFirst"
	SortTableSeat       = "tableSeat"
)

// View limits and defaults.
const (
	MinZoom = 0.1
	MaxZoom = 5.0

	MinGrid     = 4
	MaxGrid     = 64
	DefaultGrid = 64

	DefaultPixelsPerMeter = 100.0
	MinPixelsPerMeter     = 10.0
	MaxPixelsPerMeter     = 1000.0

	DefaultLanguage = "bg"
)

// ValidSort reports whether mode is a known guest sort mode.
func ValidSort(mode string) bool {
	switch mode {
	case SortUnassignedFirst, SortAssignedFirst, SortName, SortColor, SortChildFirst, SortTableSeat:
		return true
	}
	return false
}

// ValidViewMode reports whether mode is a known view mode.
func ValidViewMode(mode string) bool {
	return mode == ViewCanvas || mode == ViewSeatingChart
}

// UIState is the persisted view and selection state.
//
// SelectedTableID is non-nil only when exactly one table is selected, and
// then equals the sole member of SelectedTableIDs.
type UIState struct {
	SelectedTableID     *string  `json:"selectedTableId"`
	SelectedTableIDs    []string `json:"selectedTableIds"`
	Zoom                float64  `json:"zoom"`
	PanX                float64  `json:"panX"`
	PanY                float64  `json:"panY"`
	GuestSort           string   `json:"guestSort"`
	GuestUnassignedOnly bool     `json:"guestUnassignedOnly"`
	GuestSearch         string   `json:"guestSearch"`
	Snap                bool     `json:"snap"`
	Grid                int      `json:"grid"`
	ShowGrid            bool     `json:"showGrid"`
	Language            string   `json:"language"`
	SidebarCollapsed    bool     `json:"sidebarCollapsed"`
	LegendCollapsed     bool     `json:"legendCollapsed"`
	PixelsPerMeter      float64  `json:"pixelsPerMeter"`
	ViewMode            string   `json:"viewMode"`
}

// DefaultUIState returns the view state of a fresh document.
func DefaultUIState() UIState {
	return UIState{
		SelectedTableIDs: []string{},
		Zoom:             1,
		GuestSort:        SortUnassignedFirst,
		Grid:             DefaultGrid,
		ShowGrid:         true,
		Language:         DefaultLanguage,
		PixelsPerMeter:   DefaultPixelsPerMeter,
		ViewMode:         ViewCanvas,
	}
}

// Clone returns a deep copy.
func (u UIState) Clone() UIState {
	out := u
	if u.SelectedTableID != nil {
		id := *u.SelectedTableID
		out.SelectedTableID = &id
	}
	out.SelectedTableIDs = append(make([]string, 0, len(u.SelectedTableIDs)), u.SelectedTableIDs...)
	return out
}

// SetSelection replaces the selection and keeps the single-id field in sync.
func (u *UIState) SetSelection(ids []string) {
	u.SelectedTableIDs = append(make([]string, 0, len(ids)), ids...)
	u.syncSingle()
}

func (u *UIState) syncSingle() {
	if len(u.SelectedTableIDs) == 1 {
		id := u.SelectedTableIDs[0]
		u.SelectedTableID = &id
		return
	}
	u.SelectedTableID = nil
}

// IsSelected reports whether id is part of the selection.
func (u *UIState) IsSelected(id string) bool {
	for _, s := range u.SelectedTableIDs {
		if s == id {
			return true
		}
	}
	return false
}

// Deselect removes id from the selection. It reports whether id was selected.
func (u *UIState) Deselect(id string) bool {
	for i, s := range u.SelectedTableIDs {
		if s == id {
			u.SelectedTableIDs = append(u.SelectedTableIDs[:i:i], u.SelectedTableIDs[i+1:]...)
			u.syncSingle()
			return true
		}
	}
	return false
}
