package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDocument = `{
	"version": 1,
	"guests": [{"id": "g1", "name": "Ana"}],
	"tables": [
		{"id": "t1", "type": "circle", "label": "1", "x": 100, "y": 120, "radius": 70, "seats": 8, "assignments": {"2": "g1"}},
		{"id": "t2", "type": "rect", "label": "2", "x": 300, "y": 120, "width": 200, "height": 100, "seats": 6},
		{"id": "s1", "type": "separator", "x": 10, "y": 10, "width": 120, "height": 20}
	],
	"ui": {"selectedTableId": "t2", "zoom": 1.5, "snap": true}
}`

func TestTableJSONVariants(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(legacyDocument), &doc))
	require.Len(t, doc.Tables, 3)

	circle, ok := doc.Tables[0].Shape.(*Circle)
	require.True(t, ok)
	assert.Equal(t, 70.0, circle.Radius)
	assert.Equal(t, "g1", circle.Assignments[2])

	rect, ok := doc.Tables[1].Shape.(*Rect)
	require.True(t, ok)
	assert.Equal(t, 200.0, rect.Width)
	assert.Equal(t, Side(""), rect.OneSide)

	_, ok = doc.Tables[2].Shape.(*Separator)
	require.True(t, ok)
	assert.Nil(t, doc.Tables[2].Seating())

	out, err := json.Marshal(doc.Tables[2])
	require.NoError(t, err)
	assert.NotContains(t, string(out), "label")
	assert.NotContains(t, string(out), "seats")

	out, err = json.Marshal(doc.Tables[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"assignments":{"2":"g1"}`)
	assert.Contains(t, string(out), `"type":"circle"`)
}

func TestTableUnknownType(t *testing.T) {
	var tbl Table
	err := json.Unmarshal([]byte(`{"id":"x","type":"hexagon"}`), &tbl)
	assert.Error(t, err)
}

func TestDocumentDecodeKeepsUIDefaults(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(legacyDocument), &doc))

	assert.True(t, doc.UI.ShowGrid, "absent showGrid defaults to true")
	assert.Equal(t, 1.5, doc.UI.Zoom)
	assert.True(t, doc.UI.Snap)
	assert.Equal(t, DefaultGrid, doc.UI.Grid)
}

func TestMigrateFillsDefaults(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(legacyDocument), &doc))
	Migrate(&doc)

	assert.Equal(t, SchemaVersion, doc.Version)
	assert.Equal(t, DefaultGuestColor, doc.Guests[0].Color)
	assert.False(t, doc.Guests[0].IsChild)
	assert.Nil(t, doc.Guests[0].Picture)
	assert.Equal(t, []string{"t2"}, doc.UI.SelectedTableIDs)
	assert.NotNil(t, doc.ColorLegend)

	rect := doc.Tables[1].Shape.(*Rect)
	assert.Equal(t, SideTop, rect.OneSide)
	assert.Equal(t, SideTop, rect.OddExtraSide)
	assert.False(t, rect.RectOneSided)
	require.NotNil(t, rect.Size)
	assert.InDelta(t, 2.0, rect.Size.Width, 1e-9)
	assert.InDelta(t, 1.0, rect.Size.Height, 1e-9)
	assert.True(t, rect.SizeTiedToCanvas)
	assert.NotNil(t, rect.Assignments)

	circle := doc.Tables[0].Shape.(*Circle)
	require.NotNil(t, circle.Size)
	assert.InDelta(t, 1.4, circle.Size.Width, 1e-9)
}

func TestMigrateKeepsPresentValues(t *testing.T) {
	doc := NewDocument()
	doc.UI.Language = "en"
	doc.UI.PixelsPerMeter = 50
	doc.Tables = append(doc.Tables, &Table{ID: "t1", Shape: &Rect{
		Seating:      Seating{Label: "A", Seats: 4, Size: &Size{Width: 3, Height: 1}},
		Width:        160,
		Height:       100,
		OneSide:      SideLeft,
		OddExtraSide: SideBottom,
	}})
	Migrate(doc)

	rect := doc.Tables[0].Shape.(*Rect)
	assert.Equal(t, SideLeft, rect.OneSide)
	assert.Equal(t, SideBottom, rect.OddExtraSide)
	assert.Equal(t, &Size{Width: 3, Height: 1}, rect.Size)
	assert.False(t, rect.SizeTiedToCanvas)
	assert.Equal(t, "en", doc.UI.Language)
	assert.Equal(t, 50.0, doc.UI.PixelsPerMeter)

	// An explicit false tie survives a missing size.
	var untied Document
	require.NoError(t, json.Unmarshal([]byte(`{"ui":{"pixelsPerMeter":100},"tables":[
		{"id":"c","type":"circle","label":"1","x":0,"y":0,"radius":70,"sizeTiedToCanvas":false}]}`), &untied))
	Migrate(&untied)
	circle := untied.Tables[0].Shape.(*Circle)
	require.NotNil(t, circle.Size)
	assert.InDelta(t, 1.4, circle.Size.Width, 1e-9)
	assert.False(t, circle.SizeTiedToCanvas)
}

func TestMigrateIdempotent(t *testing.T) {
	inputs := []string{
		legacyDocument,
		`{}`,
		`{"tables":[{"id":"c","type":"circle","label":"x","x":0,"y":0}]}`,
		`{"ui":{"zoom":0,"grid":0}}`,
	}
	for _, in := range inputs {
		var once Document
		require.NoError(t, json.Unmarshal([]byte(in), &once))
		Migrate(&once)

		twice := once.Clone()
		Migrate(twice)
		assert.Equal(t, &once, twice, in)
	}
}

func TestCloneIsDeep(t *testing.T) {
	pic := "file:ana.png"
	doc := NewDocument()
	doc.Guests = append(doc.Guests, &Guest{ID: "g1", Name: "Ana", Picture: &pic})
	doc.Tables = append(doc.Tables, &Table{ID: "t1", Shape: &Circle{
		Seating: Seating{Label: "1", Seats: 8, Assignments: Assignments{0: "g1"}, Size: &Size{1, 1}},
		Radius:  70,
	}})
	doc.UI.SetSelection([]string{"t1"})

	cp := doc.Clone()
	cp.Guests[0].Name = "Bob"
	*cp.Guests[0].Picture = "file:bob.png"
	cp.Tables[0].Seating().Assignments[1] = "g2"
	cp.Tables[0].Seating().Size.Width = 9
	cp.UI.SelectedTableIDs[0] = "zzz"

	assert.Equal(t, "Ana", doc.Guests[0].Name)
	assert.Equal(t, "file:ana.png", *doc.Guests[0].Picture)
	assert.Len(t, doc.Tables[0].Seating().Assignments, 1)
	assert.Equal(t, 1.0, doc.Tables[0].Seating().Size.Width)
	assert.Equal(t, "t1", doc.UI.SelectedTableIDs[0])
}

func TestSelectionSingleField(t *testing.T) {
	ui := DefaultUIState()
	ui.SetSelection([]string{"a", "b"})
	assert.Nil(t, ui.SelectedTableID)

	assert.True(t, ui.Deselect("a"))
	require.NotNil(t, ui.SelectedTableID)
	assert.Equal(t, "b", *ui.SelectedTableID)

	assert.False(t, ui.Deselect("a"))
	assert.True(t, ui.Deselect("b"))
	assert.Nil(t, ui.SelectedTableID)
	assert.Empty(t, ui.SelectedTableIDs)
}

func TestSideValid(t *testing.T) {
	for _, s := range []Side{SideTop, SideRight, SideBottom, SideLeft} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Side("middle").Valid())
	assert.False(t, Side("").Valid())
}
