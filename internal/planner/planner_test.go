package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/table-planner/backend/internal/models"
)

type recordingStore struct {
	saves int
	last  *models.Document
	err   error
}

func (r *recordingStore) Save(_ context.Context, doc *models.Document) error {
	r.saves++
	r.last = doc.Clone()
	return r.err
}

func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newTestPlanner(t *testing.T) (*Planner, *recordingStore) {
	t.Helper()
	store := &recordingStore{}
	p := New("plan-test", nil, WithPersister(store), WithIDGenerator(sequentialIDs()))
	return p, store
}

func circle(t *testing.T, p *Planner, id string) *models.Circle {
	t.Helper()
	tbl, ok := p.Table(id)
	require.True(t, ok)
	c, ok := tbl.Shape.(*models.Circle)
	require.True(t, ok)
	return c
}

func assertUniqueSeats(t *testing.T, doc *models.Document) {
	t.Helper()
	seen := map[string]string{}
	for _, tbl := range doc.Tables {
		st := tbl.Seating()
		if st == nil {
			continue
		}
		for seat, g := range st.Assignments {
			if g == "" {
				continue
			}
			where := fmt.Sprintf("%s/%d", tbl.ID, seat)
			prev, dup := seen[g]
			require.False(t, dup, "guest %s seated at %s and %s", g, prev, where)
			seen[g] = where
		}
	}
}

func assertUniqueLabels(t *testing.T, doc *models.Document) {
	t.Helper()
	seen := map[string]bool{}
	for _, tbl := range doc.Tables {
		if tbl.Seating() == nil {
			continue
		}
		l := tbl.Label()
		require.False(t, seen[l], "duplicate label %q", l)
		seen[l] = true
	}
}

func TestAddTables(t *testing.T) {
	p, store := newTestPlanner(t)

	c := p.AddCircleTable()
	r := p.AddRectTable()
	s := p.AddSeparator()

	doc := p.Document()
	require.Len(t, doc.Tables, 3)
	assert.Equal(t, "1", doc.Tables[0].Label())
	assert.Equal(t, "2", doc.Tables[1].Label())
	assert.Nil(t, doc.Tables[2].Seating())

	assert.Equal(t, models.DefaultX, doc.Tables[0].X)
	assert.Equal(t, models.DefaultY, doc.Tables[0].Y)
	assert.Equal(t, models.DefaultRadius, circle(t, p, c).Radius)
	assert.Equal(t, models.DefaultSeats, circle(t, p, c).Seats)

	rect := doc.Tables[1].Shape.(*models.Rect)
	assert.Equal(t, models.DefaultRectWidth, rect.Width)
	assert.Equal(t, models.SideTop, rect.OneSide)
	assert.Equal(t, r, doc.Tables[1].ID)

	require.NotNil(t, doc.UI.SelectedTableID)
	assert.Equal(t, s, *doc.UI.SelectedTableID)
	assert.Equal(t, []string{s}, doc.UI.SelectedTableIDs)
	assert.Equal(t, 3, store.saves)
}

func TestNextLabelFillsGaps(t *testing.T) {
	p, _ := newTestPlanner(t)
	a := p.AddCircleTable()
	p.AddCircleTable()
	p.AddCircleTable()
	require.True(t, p.RemoveTable(a))

	id := p.AddCircleTable()
	tbl, _ := p.Table(id)
	assert.Equal(t, "1", tbl.Label())
}

func TestResolveLabelNumericForms(t *testing.T) {
	tests := []struct {
		want string
		used []string
		out  string
	}{
		{"0", []string{"0"}, "1"},
		{"007", []string{"007"}, "007-2"},
		{"7", []string{"7", "8"}, "9"},
		{"-1", []string{"-1", "0"}, "1"},
		{"1.5", []string{"1.5"}, "2.5"},
		{"-0", []string{"-0"}, "-0-2"},
		{"1e3", []string{"1e3"}, "1e3-2"},
	}
	for _, tt := range tests {
		used := map[string]struct{}{}
		for _, l := range tt.used {
			used[l] = struct{}{}
		}
		assert.Equal(t, tt.out, resolveLabel(tt.want, used), tt.want)
	}
}

func TestCommitTableLabel(t *testing.T) {
	p, _ := newTestPlanner(t)
	a := p.AddCircleTable()
	b := p.AddCircleTable()
	c := p.AddCircleTable()

	t.Run("suffix sequence continues", func(t *testing.T) {
		require.True(t, p.CommitTableLabel(a, "3"))
		tbl, _ := p.Table(a)
		assert.Equal(t, "4", tbl.Label(), "numeric label increments")

		require.True(t, p.CommitTableLabel(a, "3-2"))
		require.True(t, p.CommitTableLabel(b, "  3 "))
		tbl, _ = p.Table(b)
		assert.Equal(t, "3-3", tbl.Label())
	})

	t.Run("text label gets suffix", func(t *testing.T) {
		require.True(t, p.CommitTableLabel(a, "Family"))
		require.True(t, p.CommitTableLabel(b, "Family"))
		tbl, _ := p.Table(b)
		assert.Equal(t, "Family-2", tbl.Label())
		require.True(t, p.CommitTableLabel(c, "Family"))
		tbl, _ = p.Table(c)
		assert.Equal(t, "Family-3", tbl.Label())
	})

	t.Run("empty keeps label", func(t *testing.T) {
		assert.False(t, p.CommitTableLabel(a, "   "))
		tbl, _ := p.Table(a)
		assert.Equal(t, "Family", tbl.Label())
	})

	t.Run("separator has no label", func(t *testing.T) {
		s := p.AddSeparator()
		assert.False(t, p.CommitTableLabel(s, "X"))
	})

	assertUniqueLabels(t, p.Document())
}

func TestRelabelCollisionWithSuffixedLabel(t *testing.T) {
	doc := models.NewDocument()
	for i, label := range []string{"3", "3-2", "7"} {
		doc.Tables = append(doc.Tables, &models.Table{
			ID:    fmt.Sprintf("t%d", i),
			Shape: &models.Circle{Seating: models.Seating{Label: label, Seats: 8}, Radius: 70},
		})
	}
	p := New("p", doc)

	require.True(t, p.CommitTableLabel("t2", "3"))
	tbl, _ := p.Table("t2")
	assert.Equal(t, "3-3", tbl.Label())
}

func TestLabelUniquenessUnderRandomEdits(t *testing.T) {
	p, _ := newTestPlanner(t)
	rng := rand.New(rand.NewSource(7))
	var ids []string
	labels := []string{"1", "2", "3", "A", "A-2", "10", "B"}

	for i := 0; i < 200; i++ {
		if len(ids) < 3 || rng.Intn(4) == 0 {
			ids = append(ids, p.AddCircleTable())
		} else {
			p.CommitTableLabel(ids[rng.Intn(len(ids))], labels[rng.Intn(len(labels))])
		}
		assertUniqueLabels(t, p.Document())
	}
}

func TestAssignGuestToSeat(t *testing.T) {
	p, _ := newTestPlanner(t)
	t1 := p.AddCircleTable()
	t2 := p.AddCircleTable()
	ana, _ := p.AddGuest("Ana", "")
	bob, _ := p.AddGuest("Bob", "")

	require.True(t, p.AssignGuestToSeat(t1, 0, ana))
	require.True(t, p.AssignGuestToSeat(t2, 3, ana))
	assert.Empty(t, circle(t, p, t1).Assignments, "previous seat is cleared")
	assert.Equal(t, ana, circle(t, p, t2).Assignments[3])

	require.True(t, p.AssignGuestToSeat(t2, 3, bob))
	_, seated := p.SeatOf(ana)
	assert.False(t, seated, "displaced guest becomes unassigned")

	assert.False(t, p.AssignGuestToSeat(t2, 8, bob), "seat index out of range")
	assert.False(t, p.AssignGuestToSeat(t2, -1, bob))
	assert.False(t, p.AssignGuestToSeat("missing", 0, bob))
	assert.False(t, p.AssignGuestToSeat(t1, 0, "missing"))

	s := p.AddSeparator()
	assert.False(t, p.AssignGuestToSeat(s, 0, bob))
}

func TestAtMostOneSeatUnderRandomAssignments(t *testing.T) {
	p, _ := newTestPlanner(t)
	tables := []string{p.AddCircleTable(), p.AddRectTable(), p.AddCircleTable()}
	var guests []string
	for i := 0; i < 12; i++ {
		id, _ := p.AddGuest(fmt.Sprintf("Guest %d", i), "")
		guests = append(guests, id)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		tbl := tables[rng.Intn(len(tables))]
		g := guests[rng.Intn(len(guests))]
		if rng.Intn(3) == 0 {
			p.MoveGuestToSeat(g, tbl, rng.Intn(10))
		} else {
			p.AssignGuestToSeat(tbl, rng.Intn(10), g)
		}
		assertUniqueSeats(t, p.Document())
	}
}

func TestUnassignSeat(t *testing.T) {
	p, _ := newTestPlanner(t)
	tbl := p.AddCircleTable()
	g, _ := p.AddGuest("Ana", "")
	p.AssignGuestToSeat(tbl, 2, g)

	assert.False(t, p.UnassignSeat(tbl, 1))
	assert.True(t, p.UnassignSeat(tbl, 2))
	assert.Empty(t, circle(t, p, tbl).Assignments)
}

func TestMoveGuestToSeatSwaps(t *testing.T) {
	p, _ := newTestPlanner(t)
	tbl := p.AddCircleTable()
	ana, _ := p.AddGuest("Ana", "")
	bob, _ := p.AddGuest("Bob", "")
	p.AssignGuestToSeat(tbl, 0, ana)
	p.AssignGuestToSeat(tbl, 1, bob)
	before := p.Document()

	require.True(t, p.MoveGuestToSeat(ana, tbl, 1))
	a := circle(t, p, tbl).Assignments
	assert.Equal(t, bob, a[0])
	assert.Equal(t, ana, a[1])

	require.True(t, p.Undo())
	assert.Equal(t, before, p.Document(), "swap is one undo step")

	assert.False(t, p.MoveGuestToSeat(ana, tbl, 0), "already there")
}

func TestDeleteGuestSweepsAssignments(t *testing.T) {
	p, _ := newTestPlanner(t)
	tbl := p.AddCircleTable()
	g, _ := p.AddGuest("Ana", "")
	p.AssignGuestToSeat(tbl, 4, g)

	require.True(t, p.DeleteGuest(g))
	assert.Empty(t, circle(t, p, tbl).Assignments)
	assert.Empty(t, p.Document().Guests)
	assert.False(t, p.DeleteGuest(g))
}

func TestAddGuestValidation(t *testing.T) {
	p, store := newTestPlanner(t)

	_, ok := p.AddGuest("   ", "")
	assert.False(t, ok)
	assert.Zero(t, store.saves)
	assert.False(t, p.CanUndo())

	id, ok := p.AddGuest("  Ana ", "")
	require.True(t, ok)
	g, _ := p.Guest(id)
	assert.Equal(t, "Ana", g.Name)
	assert.Equal(t, models.DefaultGuestColor, g.Color)
	assert.False(t, g.IsChild)
}

func TestUpdateGuest(t *testing.T) {
	p, _ := newTestPlanner(t)
	id, _ := p.AddGuest("Ana", "")
	name, blank, color, child := "Anna", " ", "#ff0000", true

	require.True(t, p.UpdateGuest(id, GuestPatch{Name: &name, Color: &color, IsChild: &child}))
	g, _ := p.Guest(id)
	assert.Equal(t, "Anna", g.Name)
	assert.Equal(t, "#ff0000", g.Color)
	assert.True(t, g.IsChild)

	assert.False(t, p.UpdateGuest(id, GuestPatch{Name: &blank}))
	assert.False(t, p.UpdateGuest("nope", GuestPatch{Name: &name}))
}

func TestImportGuestsIsOneStep(t *testing.T) {
	p, _ := newTestPlanner(t)
	p.AddGuest("Ana", "")

	n := p.ImportGuests([]string{"Bob", "", "  ", "Ana", "Cid"})
	assert.Equal(t, 3, n)
	assert.Len(t, p.Document().Guests, 4, "no de-duplication")

	require.True(t, p.Undo())
	assert.Len(t, p.Document().Guests, 1)

	assert.Zero(t, p.ImportGuests([]string{" "}))
}

func TestUndoRedoRoundTrip(t *testing.T) {
	mutations := map[string]func(p *Planner, ids fixture){
		"add circle":   func(p *Planner, _ fixture) { p.AddCircleTable() },
		"remove table": func(p *Planner, f fixture) { p.RemoveTable(f.circle) },
		"relabel":      func(p *Planner, f fixture) { p.CommitTableLabel(f.circle, "Head") },
		"move":         func(p *Planner, f fixture) { p.MoveTable(f.rect, 10, 20) },
		"radius":       func(p *Planner, f fixture) { p.UpdateTableRadius(f.circle, 150) },
		"dimensions":   func(p *Planner, f fixture) { p.UpdateTableDimensions(f.rect, 300, 200) },
		"size":         func(p *Planner, f fixture) { p.UpdateTableSizeProperty(f.rect, 2, 1) },
		"tie":          func(p *Planner, f fixture) { p.ToggleSizeTiedToCanvas(f.circle) },
		"ppm":          func(p *Planner, _ fixture) { p.SetPixelsPerMeter(50) },
		"seats":        func(p *Planner, f fixture) { p.SetTableSeats(f.circle, 12, nil) },
		"one sided":    func(p *Planner, f fixture) { p.SetRectOneSided(f.rect, true) },
		"assign":       func(p *Planner, f fixture) { p.AssignGuestToSeat(f.rect, 2, f.guest) },
		"unassign":     func(p *Planner, f fixture) { p.UnassignSeat(f.circle, 0) },
		"delete guest": func(p *Planner, f fixture) { p.DeleteGuest(f.guest) },
		"picture":      func(p *Planner, f fixture) { p.SetGuestPicture(f.guest, "ana.png") },
		"nudge":        func(p *Planner, _ fixture) { p.NudgeSelection(5, 0) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p, f := newFixture(t)
			before := p.Document()

			mutate(p, f)
			after := p.Document()
			require.NotEqual(t, before, after)

			require.True(t, p.Undo())
			assert.Equal(t, before, p.Document())

			require.True(t, p.Redo())
			assert.Equal(t, after, p.Document())
		})
	}
}

type fixture struct {
	circle, rect, guest string
}

func newFixture(t *testing.T) (*Planner, fixture) {
	t.Helper()
	p, _ := newTestPlanner(t)
	f := fixture{circle: p.AddCircleTable(), rect: p.AddRectTable()}
	f.guest, _ = p.AddGuest("Ana", "#ff8800")
	p.AssignGuestToSeat(f.circle, 0, f.guest)
	return p, f
}

func TestGroupedHistoryIsAtomic(t *testing.T) {
	p, f := newFixture(t)
	before := p.Document()

	p.BeginHistoryGroup()
	p.MoveTable(f.circle, 1, 1)
	p.MoveTable(f.rect, 2, 2)
	p.AddGuest("Bob", "")
	p.CommitTableLabel(f.rect, "Head")
	p.EndHistoryGroup()

	require.True(t, p.Undo())
	assert.Equal(t, before, p.Document())
}

func TestHistoryCapAfterManyMutations(t *testing.T) {
	p, _ := newTestPlanner(t)
	for i := 0; i < HistoryLimit+1; i++ {
		_, ok := p.AddGuest(fmt.Sprintf("g%d", i), "")
		require.True(t, ok)
	}

	undone := 0
	for i := 0; i < HistoryLimit+1; i++ {
		if p.Undo() {
			undone++
		}
	}
	assert.Equal(t, HistoryLimit, undone)
	assert.Len(t, p.Document().Guests, 1, "oldest state was evicted")
}

func TestSetTableSeatsConfirmation(t *testing.T) {
	setup := func(t *testing.T) (*Planner, string) {
		p, _ := newTestPlanner(t)
		tbl := p.AddCircleTable()
		require.True(t, p.SetTableSeats(tbl, 5, nil))
		a, _ := p.AddGuest("Ana", "")
		b, _ := p.AddGuest("Bob", "")
		p.AssignGuestToSeat(tbl, 3, a)
		p.AssignGuestToSeat(tbl, 4, b)
		return p, tbl
	}

	t.Run("declined", func(t *testing.T) {
		p, tbl := setup(t)
		undoBefore, redoBefore := p.Stats().UndoDepth, p.Stats().RedoDepth
		var asked []LostSeat

		ok := p.SetTableSeats(tbl, 3, func(lost []LostSeat) bool {
			asked = lost
			return false
		})
		assert.False(t, ok)
		require.Len(t, asked, 2)
		assert.Equal(t, 3, asked[0].Seat)
		assert.Equal(t, 4, asked[1].Seat)

		c := circle(t, p, tbl)
		assert.Equal(t, 5, c.Seats)
		assert.Len(t, c.Assignments, 2)
		assert.Equal(t, undoBefore, p.Stats().UndoDepth, "no trace in history")
		assert.Equal(t, redoBefore, p.Stats().RedoDepth)

		assert.False(t, p.SetTableSeats(tbl, 3, nil), "nil confirm declines")
	})

	t.Run("accepted", func(t *testing.T) {
		p, tbl := setup(t)
		require.True(t, p.SetTableSeats(tbl, 3, func([]LostSeat) bool { return true }))
		c := circle(t, p, tbl)
		assert.Equal(t, 3, c.Seats)
		assert.Empty(t, c.Assignments)

		require.True(t, p.Undo())
		c = circle(t, p, tbl)
		assert.Equal(t, 5, c.Seats)
		assert.Len(t, c.Assignments, 2)
	})

	t.Run("clamped", func(t *testing.T) {
		p, tbl := setup(t)
		assert.True(t, p.SetTableSeats(tbl, 100, nil))
		assert.Equal(t, models.MaxSeats, circle(t, p, tbl).Seats)
		assert.True(t, p.SetTableSeats(tbl, models.MaxSeats, nil), "unchanged count succeeds")
	})

	t.Run("preview", func(t *testing.T) {
		p, tbl := setup(t)
		assert.Len(t, p.PreviewSeatReduction(tbl, 4), 1)
		assert.Empty(t, p.PreviewSeatReduction(tbl, 10))
	})
}

func TestRemoveTablesUpdatesSelection(t *testing.T) {
	p, _ := newTestPlanner(t)
	a := p.AddCircleTable()
	b := p.AddCircleTable()
	c := p.AddCircleTable()
	require.True(t, p.SelectTables([]string{a, b, c}))

	require.True(t, p.RemoveTables([]string{a, c, "ghost"}))
	doc := p.Document()
	assert.Len(t, doc.Tables, 1)
	assert.Equal(t, []string{b}, doc.UI.SelectedTableIDs)
	require.NotNil(t, doc.UI.SelectedTableID)
	assert.Equal(t, b, *doc.UI.SelectedTableID)

	require.True(t, p.Undo())
	assert.Len(t, p.Document().Tables, 3, "batch delete is one step")

	assert.False(t, p.RemoveTables([]string{"ghost"}))
}

func TestTablesWithAssignments(t *testing.T) {
	p, f := newFixture(t)
	assert.Equal(t, []string{f.circle}, p.TablesWithAssignments([]string{f.circle, f.rect, "x"}))
}

func TestResizeClampsAndSyncsSize(t *testing.T) {
	p, f := newFixture(t)

	require.True(t, p.UpdateTableRadius(f.circle, 500))
	c := circle(t, p, f.circle)
	assert.Equal(t, models.MaxRadius, c.Radius)
	require.NotNil(t, c.Size)
	assert.InDelta(t, 4.4, c.Size.Width, 1e-9)

	require.True(t, p.UpdateTableDimensions(f.rect, 10, 10000))
	tbl, _ := p.Table(f.rect)
	r := tbl.Shape.(*models.Rect)
	assert.Equal(t, models.MinRectWidth, r.Width)
	assert.Equal(t, models.MaxDimension, r.Height)

	s := p.AddSeparator()
	require.True(t, p.UpdateTableDimensions(s, 10, 1))
	tbl, _ = p.Table(s)
	sep := tbl.Shape.(*models.Separator)
	assert.Equal(t, models.MinSeparatorWidth, sep.Width)
	assert.Equal(t, models.MinSeparatorHeight, sep.Height)

	assert.False(t, p.UpdateTableRadius(f.rect, 100), "radius only applies to circles")
	assert.False(t, p.UpdateTableDimensions(f.circle, 100, 100))
}

func TestPhysicalSize(t *testing.T) {
	p, f := newFixture(t)

	require.True(t, p.UpdateTableSizeProperty(f.circle, 2, 2))
	c := circle(t, p, f.circle)
	assert.Equal(t, 100.0, c.Radius)
	assert.Equal(t, &models.Size{Width: 2, Height: 2}, c.Size)

	require.True(t, p.UpdateTableSizeProperty(f.rect, 0, 1.5))
	tbl, _ := p.Table(f.rect)
	r := tbl.Shape.(*models.Rect)
	assert.Equal(t, models.MinPhysicalSize, r.Size.Width)
	assert.Equal(t, models.MinRectWidth, r.Width)
	assert.Equal(t, 150.0, r.Height)

	// Untie the circle, then changing the scale leaves its size alone.
	require.True(t, p.ToggleSizeTiedToCanvas(f.circle))
	require.True(t, p.SetPixelsPerMeter(200))
	assert.Equal(t, 2.0, circle(t, p, f.circle).Size.Width)

	require.True(t, p.ToggleSizeTiedToCanvas(f.circle))
	assert.Equal(t, 1.0, circle(t, p, f.circle).Size.Width, "tying re-derives from canvas")

	assert.False(t, p.SetPixelsPerMeter(5))
	assert.False(t, p.SetPixelsPerMeter(2000))
}

func TestSetPixelsPerMeterResyncsTiedTables(t *testing.T) {
	p, f := newFixture(t)
	require.True(t, p.SetPixelsPerMeter(50))

	assert.InDelta(t, 2.8, circle(t, p, f.circle).Size.Width, 1e-9)
	tbl, _ := p.Table(f.rect)
	assert.InDelta(t, 3.2, tbl.Seating().Size.Width, 1e-9)
}

func TestRectSides(t *testing.T) {
	p, f := newFixture(t)

	assert.True(t, p.SetRectOneSide(f.rect, models.SideLeft))
	assert.False(t, p.SetRectOneSide(f.rect, models.Side("middle")))
	assert.False(t, p.SetRectOneSide(f.circle, models.SideLeft))
	assert.True(t, p.SetRectOddExtraSide(f.rect, models.SideBottom))
	assert.False(t, p.SetRectOddExtraSide(f.rect, models.SideBottom), "unchanged")
	assert.True(t, p.SetRectOneSided(f.rect, true))

	tbl, _ := p.Table(f.rect)
	r := tbl.Shape.(*models.Rect)
	assert.Equal(t, models.SideLeft, r.OneSide)
	assert.Equal(t, models.SideBottom, r.OddExtraSide)
	assert.True(t, r.RectOneSided)
}

func TestSelection(t *testing.T) {
	p, f := newFixture(t)
	undo := p.Stats().UndoDepth

	require.True(t, p.ClearSelection())
	assert.False(t, p.ClearSelection())

	require.True(t, p.AddToSelection(f.circle))
	doc := p.Document()
	require.NotNil(t, doc.UI.SelectedTableID)
	assert.Equal(t, f.circle, *doc.UI.SelectedTableID)

	require.True(t, p.AddToSelection(f.rect))
	doc = p.Document()
	assert.Nil(t, doc.UI.SelectedTableID)
	assert.Equal(t, []string{f.circle, f.rect}, doc.UI.SelectedTableIDs)

	require.True(t, p.RemoveFromSelection(f.circle))
	doc = p.Document()
	require.NotNil(t, doc.UI.SelectedTableID)
	assert.Equal(t, f.rect, *doc.UI.SelectedTableID)

	require.True(t, p.SelectAll())
	assert.Len(t, p.Document().UI.SelectedTableIDs, 2)
	assert.False(t, p.SelectTable("ghost"))

	assert.Equal(t, undo, p.Stats().UndoDepth, "selection adds no undo steps")
}

func TestViewSettings(t *testing.T) {
	p, store := newTestPlanner(t)

	assert.True(t, p.SetZoom(10))
	assert.True(t, p.SetPan(5, -5))
	assert.True(t, p.SetGridSize(1))
	assert.True(t, p.SetSnap(true))
	assert.True(t, p.SetShowGrid(false))
	assert.True(t, p.SetGuestSort(models.SortName))
	assert.False(t, p.SetGuestSort("random"))
	assert.True(t, p.SetGuestUnassignedOnly(true))
	assert.True(t, p.SetGuestSearch("an"))
	assert.True(t, p.SetLanguage("en"))
	assert.False(t, p.SetLanguage(""))
	assert.True(t, p.SetSidebarCollapsed(true))
	assert.True(t, p.SetLegendCollapsed(true))
	assert.True(t, p.SetViewMode(models.ViewSeatingChart))
	assert.False(t, p.SetViewMode("table"))

	ui := p.Document().UI
	assert.Equal(t, models.MaxZoom, ui.Zoom)
	assert.Equal(t, models.MinGrid, ui.Grid)
	assert.Equal(t, "en", ui.Language)
	assert.False(t, p.CanUndo())
	assert.Equal(t, 12, store.saves)

	assert.True(t, p.ResetView())
	ui = p.Document().UI
	assert.Equal(t, 1.0, ui.Zoom)
	assert.Zero(t, ui.PanX)
}

func TestDragMovesGroupRigidly(t *testing.T) {
	p, f := newFixture(t)
	p.MoveTable(f.circle, 100, 100)
	p.MoveTable(f.rect, 250, 130)
	p.SetSnap(true)
	p.SetGridSize(20)
	require.True(t, p.SelectTables([]string{f.circle, f.rect}))
	undo := p.Stats().UndoDepth

	d, ok := p.StartDrag(f.circle)
	require.True(t, ok)
	require.True(t, d.MoveTo(133, 107))
	require.True(t, d.MoveTo(147, 151))
	d.End()
	assert.False(t, d.MoveTo(0, 0), "ended drags ignore moves")

	c, _ := p.Table(f.circle)
	r, _ := p.Table(f.rect)
	assert.Equal(t, 140.0, c.X)
	assert.Equal(t, 160.0, c.Y)
	assert.Equal(t, 290.0, r.X, "same delta as the primary")
	assert.Equal(t, 190.0, r.Y)

	assert.Equal(t, undo+1, p.Stats().UndoDepth)
	require.True(t, p.Undo())
	c, _ = p.Table(f.circle)
	assert.Equal(t, 100.0, c.X)

	_, ok = p.StartDrag("ghost")
	assert.False(t, ok)
}

func TestDragSelectsUnselectedPrimary(t *testing.T) {
	p, f := newFixture(t)
	require.True(t, p.SelectTable(f.rect))

	d, ok := p.StartDrag(f.circle)
	require.True(t, ok)
	defer d.End()
	assert.Equal(t, []string{f.circle}, p.Document().UI.SelectedTableIDs)
}

func TestAbandonedDragEndsOnNextEdit(t *testing.T) {
	p, f := newFixture(t)
	d, ok := p.StartDrag(f.circle)
	require.True(t, ok)
	require.True(t, d.MoveTo(300, 300))

	_, ok = p.AddGuest("Bo", "")
	require.True(t, ok)
	_, ok = p.AddGuest("Cy", "")
	require.True(t, ok)
	assert.False(t, d.Active())
	assert.False(t, d.MoveTo(0, 0))

	require.True(t, p.Undo())
	assert.Len(t, p.Document().Guests, 2, "each guest is its own undo step")
	require.True(t, p.Undo())
	require.True(t, p.Undo())
	c, _ := p.Table(f.circle)
	assert.NotEqual(t, 300.0, c.X, "the drag is one step")

	d.End()
	past, _ := p.HistoryDepths()
	_, ok = p.AddGuest("Di", "")
	require.True(t, ok)
	after, _ := p.HistoryDepths()
	assert.Equal(t, past+1, after, "ending a closed drag does not unbalance grouping")
}

func TestNudgeSelection(t *testing.T) {
	p, f := newFixture(t)
	p.MoveTable(f.circle, 100, 100)
	p.SelectTable(f.circle)

	require.True(t, p.NudgeSelection(1, 0))
	c, _ := p.Table(f.circle)
	assert.Equal(t, 101.0, c.X)

	p.SetSnap(true)
	p.SetGridSize(10)
	require.True(t, p.NudgeSelection(10, -10))
	c, _ = p.Table(f.circle)
	assert.Equal(t, 110.0, c.X)
	assert.Equal(t, 90.0, c.Y)

	p.ClearSelection()
	assert.False(t, p.NudgeSelection(1, 1))
}

func TestGuestList(t *testing.T) {
	p, _ := newTestPlanner(t)
	t1 := p.AddCircleTable()
	t2 := p.AddCircleTable()
	cid, _ := p.AddGuest("cid", "#0000ff")
	ana, _ := p.AddGuest("Ana", "#ff0000")
	bob, _ := p.AddGuest("Bob", "#00ff00")
	dan, _ := p.AddGuest("Dan", "#ff0000")
	yes := true
	p.UpdateGuest(dan, GuestPatch{IsChild: &yes})
	p.AssignGuestToSeat(t2, 0, ana)
	p.AssignGuestToSeat(t1, 5, bob)

	ids := func() []string {
		var out []string
		for _, e := range p.GuestList() {
			out = append(out, e.Guest.ID)
		}
		return out
	}

	assert.Equal(t, []string{cid, dan, ana, bob}, ids(), "unassigned first by default")

	p.SetGuestSort(models.SortName)
	assert.Equal(t, []string{ana, bob, cid, dan}, ids())

	p.SetGuestSort(models.SortColor)
	assert.Equal(t, []string{ana, dan, bob, cid}, ids())

	p.SetGuestSort(models.SortChildFirst)
	assert.Equal(t, []string{dan, ana, bob, cid}, ids())

	p.SetGuestSort(models.SortTableSeat)
	assert.Equal(t, []string{bob, ana, cid, dan}, ids())

	p.SetGuestSort(models.SortAssignedFirst)
	assert.Equal(t, []string{ana, bob, cid, dan}, ids())

	p.SetGuestUnassignedOnly(true)
	assert.Equal(t, []string{cid, dan}, ids())

	p.SetGuestUnassignedOnly(false)
	p.SetGuestSearch("  A ")
	assert.Equal(t, []string{ana, dan}, ids())

	list := p.GuestList()
	require.NotNil(t, list[0].Seat)
	assert.Equal(t, "2", list[0].TableLabel)
}

func TestLegend(t *testing.T) {
	p, store := newTestPlanner(t)
	require.True(t, p.SetLegendLabel("#ff0000", " Family "))
	assert.Equal(t, "Family", p.Document().ColorLegend["#ff0000"])
	assert.False(t, p.SetLegendLabel("#ff0000", "Family"))
	require.True(t, p.SetLegendLabel("#ff0000", ""))
	assert.Empty(t, p.Document().ColorLegend)
	assert.False(t, p.SetLegendLabel("", "x"))
	assert.False(t, p.CanUndo())
	assert.Equal(t, 2, store.saves)
}

func TestPictures(t *testing.T) {
	p, f := newFixture(t)

	require.True(t, p.SetGuestPicture(f.guest, "people/ana.png"))
	path, ok := p.PicturePath(f.guest)
	require.True(t, ok)
	assert.Equal(t, "people/ana.png", path)

	p.SetPictureFolder("/srv/pictures")
	path, _ = p.PicturePath(f.guest)
	assert.Equal(t, "/srv/pictures/people/ana.png", path)

	require.True(t, p.RemovePictureFromGuest(f.guest))
	_, ok = p.PicturePath(f.guest)
	assert.False(t, ok)
	assert.False(t, p.RemovePictureFromGuest(f.guest))
}

func TestImportReplacesDocument(t *testing.T) {
	p, _ := newFixture(t)
	before := p.Document()

	in := models.NewDocument()
	in.Guests = append(in.Guests, &models.Guest{ID: "x", Name: "Xena"})
	in.ColorLegend["#000000"] = "Staff"
	require.True(t, p.Import(in))

	doc := p.Document()
	assert.Len(t, doc.Guests, 1)
	assert.Empty(t, doc.Tables)
	assert.Equal(t, models.DefaultGuestColor, doc.Guests[0].Color, "imported documents are migrated")
	assert.Equal(t, "Staff", doc.ColorLegend["#000000"])

	require.True(t, p.Undo())
	assert.Equal(t, before.Tables, p.Document().Tables)
	assert.False(t, p.Import(nil))
}

func TestSaveFailureDoesNotBlockEditing(t *testing.T) {
	p, store := newTestPlanner(t)
	store.err = errors.New("disk full")

	id := p.AddCircleTable()
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, store.saves)
	assert.Len(t, p.Document().Tables, 1)
}

func TestListenersAreNotified(t *testing.T) {
	p, _ := newTestPlanner(t)
	var ops []string
	p.Subscribe(func(op string) {
		ops = append(ops, op)
		p.Stats() // listeners run without the lock held
	})

	p.AddCircleTable()
	p.AddGuest("", "")
	p.Undo()

	assert.Equal(t, []string{OpAddTable, OpUndo}, ops)
}

func TestStats(t *testing.T) {
	p, _ := newFixture(t)
	p.AddSeparator()
	p.AddGuest("Bob", "")

	s := p.Stats()
	assert.Equal(t, 2, s.Tables)
	assert.Equal(t, 1, s.Separators)
	assert.Equal(t, 16, s.Seats)
	assert.Equal(t, 1, s.AssignedSeats)
	assert.Equal(t, 2, s.Guests)
	assert.Equal(t, 1, s.UnassignedGuests)
	assert.True(t, p.CanUndo())
	assert.False(t, p.CanRedo())
}

func TestClearHistory(t *testing.T) {
	p, store := newTestPlanner(t)
	p.AddCircleTable()
	p.AddCircleTable()
	p.Undo()
	saves := store.saves

	var ops []string
	p.Subscribe(func(op string) { ops = append(ops, op) })
	p.ClearHistory()

	past, future := p.HistoryDepths()
	assert.Zero(t, past)
	assert.Zero(t, future)
	assert.False(t, p.Undo())
	assert.Len(t, p.Document().Tables, 1)
	assert.Equal(t, saves, store.saves)
	assert.Equal(t, []string{OpClearHistory}, ops)
}
