package planner

import "github.com/table-planner/backend/internal/models"

// HistoryLimit bounds each of the undo and redo stacks.
const HistoryLimit = 50

// snapshot is the undoable part of a document.
type snapshot struct {
	guests []*models.Guest
	tables []*models.Table
	ui     models.UIState
}

func takeSnapshot(doc *models.Document) snapshot {
	return snapshot{
		guests: models.CloneGuests(doc.Guests),
		tables: models.CloneTables(doc.Tables),
		ui:     doc.UI.Clone(),
	}
}

// install hands the snapshot's data to doc. The snapshot must not be used
// afterwards.
func (s snapshot) install(doc *models.Document) {
	doc.Guests = s.guests
	doc.Tables = s.tables
	doc.UI = s.ui
}

// History is a linear undo/redo history of whole-document snapshots.
//
// Grouping is counted: Begin records one snapshot when the outermost group
// opens and suppresses further pushes until the matching End.
type History struct {
	past   []snapshot
	future []snapshot
	depth  int
	limit  int
}

// NewHistory returns a history holding at most limit entries per stack.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return &History{limit: limit}
}

// Suppressed reports whether a history group is open.
func (h *History) Suppressed() bool {
	return h.depth > 0
}

// Push records the pre-mutation state of doc and clears the redo stack.
// It does nothing while a group is open.
func (h *History) Push(doc *models.Document) {
	if h.Suppressed() {
		return
	}
	h.past = pushBounded(h.past, takeSnapshot(doc), h.limit)
	h.future = nil
}

// Begin opens a history group.
func (h *History) Begin(doc *models.Document) {
	h.Push(doc)
	h.depth++
}

// End closes a history group. Unbalanced calls are ignored.
func (h *History) End() {
	if h.depth > 0 {
		h.depth--
	}
}

// Undo restores the previous state into doc. It reports false when there
// is nothing to undo.
func (h *History) Undo(doc *models.Document) bool {
	if len(h.past) == 0 {
		return false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = pushBounded(h.future, takeSnapshot(doc), h.limit)
	prev.install(doc)
	return true
}

// Redo re-applies the next state into doc. It reports false when there is
// nothing to redo.
func (h *History) Redo(doc *models.Document) bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = pushBounded(h.past, takeSnapshot(doc), h.limit)
	next.install(doc)
	return true
}

// Depths returns the sizes of the undo and redo stacks.
func (h *History) Depths() (past, future int) {
	return len(h.past), len(h.future)
}

// Reset empties both stacks and closes any open group.
func (h *History) Reset() {
	h.past, h.future, h.depth = nil, nil, 0
}

// pushBounded appends s, evicting the oldest entries beyond limit.
func pushBounded(stack []snapshot, s snapshot, limit int) []snapshot {
	stack = append(stack, s)
	if over := len(stack) - limit; over > 0 {
		stack = append(stack[:0:0], stack[over:]...)
	}
	return stack
}
