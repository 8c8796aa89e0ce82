package models

// Migrate upgrades doc in place to the current schema. It only fills in
// fields that are missing (zero-valued where zero is not a legal value) and
// never replaces a present value, so running it twice is a no-op.
func Migrate(doc *Document) *Document {
	if doc.Version < SchemaVersion {
		doc.Version = SchemaVersion
	}
	if doc.Guests == nil {
		doc.Guests = []*Guest{}
	}
	if doc.Tables == nil {
		doc.Tables = []*Table{}
	}
	if doc.ColorLegend == nil {
		doc.ColorLegend = map[string]string{}
	}

	migrateUI(&doc.UI)

	for _, t := range doc.Tables {
		migrateTable(t, doc.UI.PixelsPerMeter)
	}
	for _, g := range doc.Guests {
		if g.Color == "" {
			g.Color = DefaultGuestColor
		}
	}
	return doc
}

func migrateUI(ui *UIState) {
	if ui.SelectedTableIDs == nil {
		ui.SelectedTableIDs = []string{}
	}
	// Older documents only tracked the single selection.
	if ui.SelectedTableID != nil && len(ui.SelectedTableIDs) == 0 {
		ui.SelectedTableIDs = []string{*ui.SelectedTableID}
	}
	if ui.Zoom <= 0 {
		ui.Zoom = 1
	}
	if ui.Grid <= 0 {
		ui.Grid = DefaultGrid
	}
	if ui.GuestSort == "" {
		ui.GuestSort = SortUnassignedFirst
	}
	if ui.Language == "" {
		ui.Language = DefaultLanguage
	}
	if ui.PixelsPerMeter <= 0 {
		ui.PixelsPerMeter = DefaultPixelsPerMeter
	}
	if ui.ViewMode == "" {
		ui.ViewMode = ViewCanvas
	}
}

func migrateTable(t *Table, pixelsPerMeter float64) {
	if r, ok := t.Shape.(*Rect); ok {
		if r.OneSide == "" {
			r.OneSide = SideTop
		}
		if r.OddExtraSide == "" {
			r.OddExtraSide = SideTop
		}
	}
	st := t.Seating()
	if st == nil {
		return
	}
	if st.Assignments == nil {
		st.Assignments = Assignments{}
	}
	// The tie flag is a plain bool, so its default is set when decoding.
	if st.Size == nil {
		size := t.PhysicalSizeFromCanvas(pixelsPerMeter)
		st.Size = &size
	}
}
