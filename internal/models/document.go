package models

import "encoding/json"

// SchemaVersion is the current persisted document version.
const SchemaVersion = 2

// Document is the root aggregate of a seating plan. Only the fields with
// JSON tags are persisted; history and picture caches live with the
// planner that owns the document.
type Document struct {
	Version     int               `json:"version"`
	Guests      []*Guest          `json:"guests"`
	Tables      []*Table          `json:"tables"`
	UI          UIState           `json:"ui"`
	ColorLegend map[string]string `json:"colorLegend"`
}

// NewDocument returns an empty document with default view settings.
func NewDocument() *Document {
	return &Document{
		Version:     SchemaVersion,
		Guests:      []*Guest{},
		Tables:      []*Table{},
		UI:          DefaultUIState(),
		ColorLegend: map[string]string{},
	}
}

type documentAlias Document

// UnmarshalJSON decodes on top of default view settings so fields absent
// from older documents keep their defaults.
func (d *Document) UnmarshalJSON(data []byte) error {
	aux := documentAlias{UI: DefaultUIState()}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Document(aux)
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Version: d.Version,
		Guests:  CloneGuests(d.Guests),
		Tables:  CloneTables(d.Tables),
		UI:      d.UI.Clone(),
	}
	if d.ColorLegend != nil {
		out.ColorLegend = make(map[string]string, len(d.ColorLegend))
		for k, v := range d.ColorLegend {
			out.ColorLegend[k] = v
		}
	}
	return out
}

// CloneGuests deep-copies a guest list.
func CloneGuests(in []*Guest) []*Guest {
	out := make([]*Guest, len(in))
	for i, g := range in {
		out[i] = g.Clone()
	}
	return out
}

// CloneTables deep-copies a table list.
func CloneTables(in []*Table) []*Table {
	out := make([]*Table, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// FindTable returns the table with the given id.
func (d *Document) FindTable(id string) (*Table, int) {
	for i, t := range d.Tables {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

// FindGuest returns the guest with the given id.
func (d *Document) FindGuest(id string) (*Guest, int) {
	for i, g := range d.Guests {
		if g.ID == id {
			return g, i
		}
	}
	return nil, -1
}

// SeatRef locates one seat.
type SeatRef struct {
	TableID string `json:"tableId"`
	Seat    int    `json:"seat"`
}

// SeatOf returns the seat occupied by guestID, if any.
func (d *Document) SeatOf(guestID string) (SeatRef, bool) {
	for _, t := range d.Tables {
		st := t.Seating()
		if st == nil {
			continue
		}
		for seat, g := range st.Assignments {
			if g != "" && g == guestID {
				return SeatRef{TableID: t.ID, Seat: seat}, true
			}
		}
	}
	return SeatRef{}, false
}

// Labels returns the set of labels used by tables other than exceptID.
func (d *Document) Labels(exceptID string) map[string]struct{} {
	out := make(map[string]struct{}, len(d.Tables))
	for _, t := range d.Tables {
		if t.ID == exceptID {
			continue
		}
		if st := t.Seating(); st != nil {
			out[st.Label] = struct{}{}
		}
	}
	return out
}
