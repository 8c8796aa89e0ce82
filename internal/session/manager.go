package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/table-planner/backend/internal/metrics"
	"github.com/table-planner/backend/internal/models"
	"github.com/table-planner/backend/internal/persistence"
	"github.com/table-planner/backend/internal/planner"
	"github.com/table-planner/backend/internal/storage"
)

// MaxPlans limits how many plans are held in memory at once
const MaxPlans = 32

// PlanMaxAge is how long an idle plan stays in memory
const PlanMaxAge = 30 * time.Minute

// PlanKeepAliveWindow is how long to keep plans that are actively being used
const PlanKeepAliveWindow = 5 * time.Minute

// ErrInvalidPlanID rejects plan ids that cannot be used as storage keys.
var ErrInvalidPlanID = errors.New("invalid plan id")

// ErrPlanNotFound is returned for plans that are neither open nor stored.
var ErrPlanNotFound = errors.New("plan not found")

var planIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ChangeFunc is told about every committed change of any open plan.
type ChangeFunc func(planID, op string)

// Options configures a Manager.
type Options struct {
	MaxPlans     int
	HistoryLimit int
	SaveTimeout  time.Duration
	// NewDocument builds the starting document of a new plan.
	NewDocument func() *models.Document
	// PictureRoot holds one picture folder per plan, named by plan id.
	PictureRoot string
}

// Manager keeps the open plans, loading them from the store on first use.
type Manager struct {
	plans    map[string]*PlanState
	mu       sync.RWMutex
	store    storage.Store
	opts     Options
	onChange []ChangeFunc
}

// PlanState holds an open plan and its per-plan transient state.
type PlanState struct {
	Planner      *planner.Planner
	Drag         *planner.Drag // active pointer drag, if any
	LastAccessed time.Time
}

// NewManager creates a plan manager over store.
func NewManager(store storage.Store, opts Options) *Manager {
	if opts.MaxPlans <= 0 {
		opts.MaxPlans = MaxPlans
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = planner.HistoryLimit
	}
	if opts.NewDocument == nil {
		opts.NewDocument = models.NewDocument
	}
	return &Manager{
		plans: make(map[string]*PlanState),
		store: store,
		opts:  opts,
	}
}

// OnChange registers fn for change notifications of every plan.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// ValidPlanID reports whether id can name a plan.
func ValidPlanID(id string) bool {
	return planIDRegex.MatchString(id)
}

// Open returns the planner of planID, loading it from the store (or
// starting an empty document) when it is not in memory.
func (m *Manager) Open(ctx context.Context, planID string) (*planner.Planner, error) {
	if !ValidPlanID(planID) {
		return nil, ErrInvalidPlanID
	}
	if p, ok := m.touch(planID); ok {
		return p, nil
	}

	adapter := persistence.NewAdapter(m.store, planID)
	adapter.NewDocument = m.opts.NewDocument
	doc := adapter.Load(ctx)

	m.evictIfNeeded()

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have opened it while we were loading.
	if state, ok := m.plans[planID]; ok {
		state.LastAccessed = time.Now()
		return state.Planner, nil
	}

	opts := []planner.Option{
		planner.WithPersister(adapter),
		planner.WithHistoryLimit(m.opts.HistoryLimit),
	}
	if m.opts.SaveTimeout > 0 {
		opts = append(opts, planner.WithSaveTimeout(m.opts.SaveTimeout))
	}
	p := planner.New(planID, doc, opts...)
	if m.opts.PictureRoot != "" {
		p.SetPictureFolder(filepath.Join(m.opts.PictureRoot, planID))
	}
	p.Subscribe(func(op string) { m.changed(p, op) })

	m.plans[planID] = &PlanState{Planner: p, LastAccessed: time.Now()}
	metrics.OpenPlans(len(m.plans))
	fmt.Printf("[Manager] Opened plan %s (%d tables, %d guests)\n", planID, len(doc.Tables), len(doc.Guests))
	return p, nil
}

// Create starts a new plan with a random id.
func (m *Manager) Create(ctx context.Context) (*planner.Planner, error) {
	return m.Open(ctx, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (m *Manager) changed(p *planner.Planner, op string) {
	metrics.Mutation(op)
	past, future := p.HistoryDepths()
	metrics.HistoryDepth(p.ID(), past, future)

	m.mu.RLock()
	fns := append([]ChangeFunc(nil), m.onChange...)
	m.mu.RUnlock()
	for _, fn := range fns {
		fn(p.ID(), op)
	}
}

// Get returns an open plan without loading it.
func (m *Manager) Get(planID string) (*planner.Planner, bool) {
	return m.touch(planID)
}

func (m *Manager) touch(planID string) (*planner.Planner, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.plans[planID]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state.Planner, true
}

// StartDrag begins a pointer drag on an open plan, ending any drag still
// in progress.
func (m *Manager) StartDrag(planID, tableID string) (*planner.Drag, bool) {
	m.mu.Lock()
	state, ok := m.plans[planID]
	var prev *planner.Drag
	if ok {
		prev, state.Drag = state.Drag, nil
	}
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	if prev != nil {
		prev.End()
	}

	d, ok := state.Planner.StartDrag(tableID)
	if !ok {
		return nil, false
	}
	m.mu.Lock()
	state.Drag = d
	m.mu.Unlock()
	return d, true
}

// Drag returns the drag in progress on a plan. A drag the planner closed
// because another edit arrived is no longer reported.
func (m *Manager) Drag(planID string) (*planner.Drag, bool) {
	m.mu.RLock()
	state, ok := m.plans[planID]
	var d *planner.Drag
	if ok {
		d = state.Drag
	}
	m.mu.RUnlock()

	if d == nil || !d.Active() {
		return nil, false
	}
	return d, true
}

// EndDrag finishes the drag in progress on a plan.
func (m *Manager) EndDrag(planID string) bool {
	m.mu.Lock()
	state, ok := m.plans[planID]
	var d *planner.Drag
	if ok {
		d, state.Drag = state.Drag, nil
	}
	m.mu.Unlock()

	if d == nil {
		return false
	}
	active := d.Active()
	d.End()
	return active
}

// List returns the ids of every stored or open plan, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.store.Keys(ctx, persistence.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}

	seen := make(map[string]struct{})
	for _, k := range keys {
		if id, ok := persistence.PlanID(k); ok && ValidPlanID(id) {
			seen[id] = struct{}{}
		}
	}
	m.mu.RLock()
	for id := range m.plans {
		seen[id] = struct{}{}
	}
	m.mu.RUnlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete closes a plan and removes it from the store.
func (m *Manager) Delete(ctx context.Context, planID string) error {
	if !ValidPlanID(planID) {
		return ErrInvalidPlanID
	}
	wasOpen := m.Close(planID)
	err := persistence.NewAdapter(m.store, planID).Delete(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		if wasOpen {
			return nil
		}
		return ErrPlanNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", planID, err)
	}
	return nil
}

// Close drops a plan from memory. Its stored document is kept.
func (m *Manager) Close(planID string) bool {
	m.mu.Lock()
	state, ok := m.plans[planID]
	if ok {
		delete(m.plans, planID)
		metrics.OpenPlans(len(m.plans))
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.release(planID, state)
	return true
}

func (m *Manager) release(planID string, state *PlanState) {
	if state.Drag != nil {
		state.Drag.End()
	}
	metrics.ForgetPlan(planID)
}

// Count returns the number of plans in memory.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plans)
}

// evictIfNeeded drops the least recently used idle plans when at capacity.
// Plans are saved on every change, so only their undo history is lost.
func (m *Manager) evictIfNeeded() {
	m.mu.Lock()
	if len(m.plans) < m.opts.MaxPlans {
		m.mu.Unlock()
		return
	}

	type candidate struct {
		id    string
		state *PlanState
	}
	var idle []candidate
	for id, state := range m.plans {
		if state.Drag == nil {
			idle = append(idle, candidate{id, state})
		}
	}
	sort.Slice(idle, func(i, j int) bool {
		return idle[i].state.LastAccessed.Before(idle[j].state.LastAccessed)
	})

	toFree := len(m.plans) - m.opts.MaxPlans + 1
	var evicted []candidate
	for _, c := range idle {
		if len(evicted) >= toFree {
			break
		}
		delete(m.plans, c.id)
		evicted = append(evicted, c)
	}
	metrics.OpenPlans(len(m.plans))
	m.mu.Unlock()

	for _, c := range evicted {
		m.release(c.id, c.state)
		fmt.Printf("[Manager] Evicted plan %s to free memory\n", c.id)
	}
}

// CleanupIdle drops plans not accessed within maxAge, keeping any used
// within PlanKeepAliveWindow.
func (m *Manager) CleanupIdle(maxAge time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-PlanKeepAliveWindow)

	m.mu.Lock()
	removed := make(map[string]*PlanState)
	for id, state := range m.plans {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.plans, id)
			removed[id] = state
		}
	}
	metrics.OpenPlans(len(m.plans))
	m.mu.Unlock()

	for id, state := range removed {
		m.release(id, state)
		fmt.Printf("[Manager] Closed idle plan %s (last accessed: %s ago)\n",
			id, time.Since(state.LastAccessed).Round(time.Second))
	}
	return len(removed)
}

// CloseAll drops every plan from memory.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	plans := m.plans
	m.plans = make(map[string]*PlanState)
	metrics.OpenPlans(0)
	m.mu.Unlock()

	for id, state := range plans {
		m.release(id, state)
	}
}
