package models

import (
	"encoding/json"
	"fmt"
)

// TableKind identifies the variant of a table.
type TableKind string

const (
	KindCircle    TableKind = "circle"
	KindRect      TableKind = "rect"
	KindSeparator TableKind = "separator"
)

// Side is one of the four cardinal sides of a rectangular table.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Valid reports whether s is one of the four cardinal values.
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideRight, SideBottom, SideLeft:
		return true
	}
	return false
}

// Geometry limits in canvas units.
const (
	MinRadius          = 40.0
	MaxRadius          = 220.0
	MinRectWidth       = 80.0
	MinRectHeight      = 60.0
	MinSeparatorWidth  = 40.0
	MinSeparatorHeight = 10.0
	MaxDimension       = 600.0

	MinSeats       = 1
	MaxSeats       = 32
	MaxImportSeats = 64
	DefaultSeats   = 8

	// MinPhysicalSize is the smallest physical size in meters.
	MinPhysicalSize = 0.1

	DefaultX               = 700.0
	DefaultY               = 450.0
	DefaultRadius          = 70.0
	DefaultRectWidth       = 160.0
	DefaultRectHeight      = 100.0
	DefaultSeparatorWidth  = 120.0
	DefaultSeparatorHeight = 20.0
)

// Size is the nominal physical footprint of a table in meters.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Assignments maps a seat index to the id of the guest sitting there.
// A missing key or an empty guest id means the seat is free.
type Assignments map[int]string

// Clone returns an independent copy.
func (a Assignments) Clone() Assignments {
	out := make(Assignments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Occupied returns the number of seats holding a guest.
func (a Assignments) Occupied() int {
	n := 0
	for _, g := range a {
		if g != "" {
			n++
		}
	}
	return n
}

// Seating holds the fields shared by the seat-bearing variants.
type Seating struct {
	Label            string
	Seats            int
	Assignments      Assignments
	Size             *Size
	SizeTiedToCanvas bool
}

func (s Seating) clone() Seating {
	out := s
	if s.Assignments != nil {
		out.Assignments = s.Assignments.Clone()
	}
	if s.Size != nil {
		sz := *s.Size
		out.Size = &sz
	}
	return out
}

// Shape is the variant payload of a Table: *Circle, *Rect or *Separator.
type Shape interface {
	Kind() TableKind
	cloneShape() Shape
}

// Circle is a round table.
type Circle struct {
	Seating
	Radius float64
}

// Rect is a rectangular table. When RectOneSided is set every seat is on
// OneSide; otherwise an odd seat count puts the extra seat on OddExtraSide.
type Rect struct {
	Seating
	Width        float64
	Height       float64
	RectOneSided bool
	OneSide      Side
	OddExtraSide Side
}

// Separator is an unlabeled divider without seats.
type Separator struct {
	Width  float64
	Height float64
}

func (*Circle) Kind() TableKind    { return KindCircle }
func (*Rect) Kind() TableKind      { return KindRect }
func (*Separator) Kind() TableKind { return KindSeparator }

func (c *Circle) cloneShape() Shape {
	out := *c
	out.Seating = c.Seating.clone()
	return &out
}

func (r *Rect) cloneShape() Shape {
	out := *r
	out.Seating = r.Seating.clone()
	return &out
}

func (s *Separator) cloneShape() Shape {
	out := *s
	return &out
}

// Table is an item placed on the canvas.
type Table struct {
	ID    string
	X     float64
	Y     float64
	Shape Shape
}

// Kind returns the variant of the table.
func (t *Table) Kind() TableKind {
	if t.Shape == nil {
		return ""
	}
	return t.Shape.Kind()
}

// Seating returns the seat data of a circle or rect table, nil for separators.
func (t *Table) Seating() *Seating {
	switch s := t.Shape.(type) {
	case *Circle:
		return &s.Seating
	case *Rect:
		return &s.Seating
	}
	return nil
}

// Label returns the table label, empty for separators.
func (t *Table) Label() string {
	if st := t.Seating(); st != nil {
		return st.Label
	}
	return ""
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := *t
	if t.Shape != nil {
		out.Shape = t.Shape.cloneShape()
	}
	return &out
}

// CanvasSize returns the canvas footprint (diameter for circles).
func (t *Table) CanvasSize() (float64, float64) {
	switch s := t.Shape.(type) {
	case *Circle:
		return s.Radius * 2, s.Radius * 2
	case *Rect:
		return s.Width, s.Height
	case *Separator:
		return s.Width, s.Height
	}
	return 0, 0
}

// PhysicalSizeFromCanvas converts the canvas footprint into meters.
func (t *Table) PhysicalSizeFromCanvas(pixelsPerMeter float64) Size {
	if pixelsPerMeter <= 0 {
		pixelsPerMeter = DefaultPixelsPerMeter
	}
	w, h := t.CanvasSize()
	return Size{Width: w / pixelsPerMeter, Height: h / pixelsPerMeter}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampRadius applies the circle radius limits.
func ClampRadius(r float64) float64 {
	return Clamp(r, MinRadius, MaxRadius)
}

// ClampDimensions applies the width/height limits of the given variant.
func ClampDimensions(kind TableKind, w, h float64) (float64, float64) {
	if kind == KindSeparator {
		return Clamp(w, MinSeparatorWidth, MaxDimension), Clamp(h, MinSeparatorHeight, MaxDimension)
	}
	return Clamp(w, MinRectWidth, MaxDimension), Clamp(h, MinRectHeight, MaxDimension)
}

// tableJSON is the union of every variant's wire fields. Pointer fields
// distinguish "absent" from zero so decoding keeps migration information.
type tableJSON struct {
	ID               string      `json:"id"`
	Type             TableKind   `json:"type"`
	Label            string      `json:"label,omitempty"`
	X                float64     `json:"x"`
	Y                float64     `json:"y"`
	Radius           *float64    `json:"radius,omitempty"`
	Width            *float64    `json:"width,omitempty"`
	Height           *float64    `json:"height,omitempty"`
	Seats            *int        `json:"seats,omitempty"`
	Assignments      Assignments `json:"assignments,omitempty"`
	RectOneSided     *bool       `json:"rectOneSided,omitempty"`
	OneSide          Side        `json:"oneSide,omitempty"`
	OddExtraSide     Side        `json:"oddExtraSide,omitempty"`
	Size             *Size       `json:"size,omitempty"`
	SizeTiedToCanvas *bool       `json:"sizeTiedToCanvas,omitempty"`
}

type circleJSON struct {
	ID               string      `json:"id"`
	Type             TableKind   `json:"type"`
	Label            string      `json:"label"`
	X                float64     `json:"x"`
	Y                float64     `json:"y"`
	Radius           float64     `json:"radius"`
	Seats            int         `json:"seats"`
	Assignments      Assignments `json:"assignments"`
	Size             *Size       `json:"size,omitempty"`
	SizeTiedToCanvas bool        `json:"sizeTiedToCanvas"`
}

type rectJSON struct {
	ID               string      `json:"id"`
	Type             TableKind   `json:"type"`
	Label            string      `json:"label"`
	X                float64     `json:"x"`
	Y                float64     `json:"y"`
	Width            float64     `json:"width"`
	Height           float64     `json:"height"`
	Seats            int         `json:"seats"`
	Assignments      Assignments `json:"assignments"`
	RectOneSided     bool        `json:"rectOneSided"`
	OneSide          Side        `json:"oneSide"`
	OddExtraSide     Side        `json:"oddExtraSide"`
	Size             *Size       `json:"size,omitempty"`
	SizeTiedToCanvas bool        `json:"sizeTiedToCanvas"`
}

type separatorJSON struct {
	ID     string    `json:"id"`
	Type   TableKind `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
}

// MarshalJSON writes the variant-specific wire shape.
func (t *Table) MarshalJSON() ([]byte, error) {
	switch s := t.Shape.(type) {
	case *Circle:
		return json.Marshal(circleJSON{
			ID: t.ID, Type: KindCircle, Label: s.Label, X: t.X, Y: t.Y,
			Radius: s.Radius, Seats: s.Seats, Assignments: nonNil(s.Assignments),
			Size: s.Size, SizeTiedToCanvas: s.SizeTiedToCanvas,
		})
	case *Rect:
		return json.Marshal(rectJSON{
			ID: t.ID, Type: KindRect, Label: s.Label, X: t.X, Y: t.Y,
			Width: s.Width, Height: s.Height, Seats: s.Seats, Assignments: nonNil(s.Assignments),
			RectOneSided: s.RectOneSided, OneSide: s.OneSide, OddExtraSide: s.OddExtraSide,
			Size: s.Size, SizeTiedToCanvas: s.SizeTiedToCanvas,
		})
	case *Separator:
		return json.Marshal(separatorJSON{
			ID: t.ID, Type: KindSeparator, X: t.X, Y: t.Y, Width: s.Width, Height: s.Height,
		})
	}
	return nil, fmt.Errorf("table %s has no shape", t.ID)
}

// UnmarshalJSON reads any variant. Missing optional fields are left for
// Migrate to fill.
func (t *Table) UnmarshalJSON(data []byte) error {
	var w tableJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.ID, t.X, t.Y = w.ID, w.X, w.Y

	seating := Seating{
		Label:       w.Label,
		Seats:       derefInt(w.Seats, DefaultSeats),
		Assignments: w.Assignments,
		Size:        w.Size,
	}
	// A table stored without a physical size gets one derived from its
	// geometry, which follows the canvas unless the record says otherwise.
	if w.SizeTiedToCanvas != nil {
		seating.SizeTiedToCanvas = *w.SizeTiedToCanvas
	} else {
		seating.SizeTiedToCanvas = w.Size == nil
	}

	switch w.Type {
	case KindCircle:
		t.Shape = &Circle{Seating: seating, Radius: derefFloat(w.Radius, DefaultRadius)}
	case KindRect:
		r := &Rect{
			Seating:      seating,
			Width:        derefFloat(w.Width, DefaultRectWidth),
			Height:       derefFloat(w.Height, DefaultRectHeight),
			OneSide:      w.OneSide,
			OddExtraSide: w.OddExtraSide,
		}
		if w.RectOneSided != nil {
			r.RectOneSided = *w.RectOneSided
		}
		t.Shape = r
	case KindSeparator:
		t.Shape = &Separator{
			Width:  derefFloat(w.Width, DefaultSeparatorWidth),
			Height: derefFloat(w.Height, DefaultSeparatorHeight),
		}
	default:
		return fmt.Errorf("unknown table type %q", w.Type)
	}
	return nil
}

func nonNil(a Assignments) Assignments {
	if a == nil {
		return Assignments{}
	}
	return a
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
