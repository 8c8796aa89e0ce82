package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/table-planner/backend/internal/models"
)

// Persister stores a document after each committed change.
type Persister interface {
	Save(ctx context.Context, doc *models.Document) error
}

// Listener is told about every committed change, after the planner lock is
// released. op names the operation that produced it.
type Listener func(op string)

// Option configures a Planner.
type Option func(*Planner)

// WithPersister sets where the document is saved after every change.
func WithPersister(s Persister) Option {
	return func(p *Planner) { p.store = s }
}

// WithHistoryLimit overrides the undo/redo stack capacity.
func WithHistoryLimit(n int) Option {
	return func(p *Planner) { p.history = NewHistory(n) }
}

// WithIDGenerator replaces the random id source. gen receives the kind
// prefix ("t_", "s_" or "g_").
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(p *Planner) { p.newID = gen }
}

// WithSaveTimeout bounds each save call.
func WithSaveTimeout(d time.Duration) Option {
	return func(p *Planner) { p.saveTimeout = d }
}

// Planner owns one document and is the only way to change it. All methods
// are safe for concurrent use; mutations are serialized by a single lock.
//
// Mutations that fail validation do nothing and return false.
type Planner struct {
	mu          sync.Mutex
	id          string
	doc         *models.Document
	history     *History
	store       Persister
	listeners   []Listener
	newID       func(prefix string) string
	saveTimeout time.Duration
	drag        *Drag // open drag group, if any

	// Transient, never persisted.
	pictureFolder string
	pictureCache  map[string]string
}

// New returns a planner editing doc. A nil doc starts a fresh document.
func New(id string, doc *models.Document, opts ...Option) *Planner {
	if doc == nil {
		doc = models.NewDocument()
	}
	p := &Planner{
		id:           id,
		doc:          models.Migrate(doc),
		history:      NewHistory(HistoryLimit),
		newID:        randomID,
		saveTimeout:  5 * time.Second,
		pictureCache: make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func randomID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ID returns the plan id.
func (p *Planner) ID() string {
	return p.id
}

// Subscribe registers l for change notifications.
func (p *Planner) Subscribe(l Listener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
}

// edit runs fn with the document locked. fn validates its input, calls
// record before its first change, and reports whether it changed anything.
// Committed changes are saved and then announced to listeners.
//
// Any edit other than a drag move first closes an abandoned drag, so a drag
// that never ends cannot fold later changes into its undo step.
func (p *Planner) edit(op string, fn func(doc *models.Document, record func()) bool) bool {
	p.mu.Lock()
	if op != OpDrag {
		p.endDragLocked()
	}
	changed := fn(p.doc, func() { p.history.Push(p.doc) })
	var listeners []Listener
	if changed {
		p.saveLocked()
		listeners = append(listeners, p.listeners...)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l(op)
	}
	return changed
}

// saveLocked persists the document. Failures are logged and otherwise
// ignored so an unavailable store never blocks editing.
func (p *Planner) saveLocked() {
	if p.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()
	if err := p.store.Save(ctx, p.doc); err != nil {
		fmt.Printf("[Planner %s] save failed: %v\n", shortID(p.id), err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// uniqueID draws ids until one is unused in the document.
func (p *Planner) uniqueID(prefix string) string {
	for {
		id := p.newID(prefix)
		if t, _ := p.doc.FindTable(id); t != nil {
			continue
		}
		if g, _ := p.doc.FindGuest(id); g != nil {
			continue
		}
		return id
	}
}

// Document returns a deep copy of the current document.
func (p *Planner) Document() *models.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Clone()
}

// Table returns a copy of one table.
func (p *Planner) Table(id string) (*models.Table, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, _ := p.doc.FindTable(id)
	if t == nil {
		return nil, false
	}
	return t.Clone(), true
}

// Guest returns a copy of one guest.
func (p *Planner) Guest(id string) (*models.Guest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, _ := p.doc.FindGuest(id)
	if g == nil {
		return nil, false
	}
	return g.Clone(), true
}

// SeatOf returns where a guest is seated.
func (p *Planner) SeatOf(guestID string) (models.SeatRef, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.SeatOf(guestID)
}

// Stats summarizes a plan.
type Stats struct {
	Tables           int `json:"tables"`
	Separators       int `json:"separators"`
	Seats            int `json:"seats"`
	AssignedSeats    int `json:"assignedSeats"`
	Guests           int `json:"guests"`
	UnassignedGuests int `json:"unassignedGuests"`
	UndoDepth        int `json:"undoDepth"`
	RedoDepth        int `json:"redoDepth"`
}

// Stats returns counts over the current document.
func (p *Planner) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s Stats
	seated := make(map[string]struct{})
	for _, t := range p.doc.Tables {
		st := t.Seating()
		if st == nil {
			s.Separators++
			continue
		}
		s.Tables++
		s.Seats += st.Seats
		for _, g := range st.Assignments {
			if g != "" {
				s.AssignedSeats++
				seated[g] = struct{}{}
			}
		}
	}
	s.Guests = len(p.doc.Guests)
	for _, g := range p.doc.Guests {
		if _, ok := seated[g.ID]; !ok {
			s.UnassignedGuests++
		}
	}
	s.UndoDepth, s.RedoDepth = p.history.Depths()
	return s
}

// CanUndo reports whether an undo step is available.
func (p *Planner) CanUndo() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	past, _ := p.history.Depths()
	return past > 0
}

// CanRedo reports whether a redo step is available.
func (p *Planner) CanRedo() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, future := p.history.Depths()
	return future > 0
}

// Undo restores the state before the last recorded change.
func (p *Planner) Undo() bool {
	return p.edit(OpUndo, func(doc *models.Document, _ func()) bool {
		return p.history.Undo(doc)
	})
}

// Redo re-applies the last undone change.
func (p *Planner) Redo() bool {
	return p.edit(OpRedo, func(doc *models.Document, _ func()) bool {
		return p.history.Redo(doc)
	})
}

// HistoryDepths returns the sizes of the undo and redo stacks.
func (p *Planner) HistoryDepths() (past, future int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Depths()
}

// ClearHistory forgets every undo and redo step. The document is unchanged
// and is not saved; listeners are told so they can refresh undo controls.
func (p *Planner) ClearHistory() {
	p.mu.Lock()
	p.endDragLocked()
	p.history.Reset()
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l(OpClearHistory)
	}
}

// BeginHistoryGroup records the current state and folds every following
// change into one undo step until the matching EndHistoryGroup. Groups
// nest; only the outermost one records.
func (p *Planner) BeginHistoryGroup() {
	p.mu.Lock()
	p.endDragLocked()
	p.history.Begin(p.doc)
	p.mu.Unlock()
}

// EndHistoryGroup closes the innermost open group.
func (p *Planner) EndHistoryGroup() {
	p.mu.Lock()
	p.endDragLocked()
	p.history.End()
	p.mu.Unlock()
}

// Import replaces the whole document with doc after migrating it. The
// previous state stays reachable through Undo.
func (p *Planner) Import(doc *models.Document) bool {
	if doc == nil {
		return false
	}
	in := models.Migrate(doc.Clone())
	return p.edit(OpImport, func(cur *models.Document, record func()) bool {
		record()
		cur.Version = in.Version
		cur.Guests = in.Guests
		cur.Tables = in.Tables
		cur.UI = in.UI
		cur.ColorLegend = in.ColorLegend
		p.pictureCache = make(map[string]string)
		return true
	})
}
