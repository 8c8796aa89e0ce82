// Package persistence reads and writes plan documents through a storage.Store.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/table-planner/backend/internal/metrics"
	"github.com/table-planner/backend/internal/models"
	"github.com/table-planner/backend/internal/storage"
)

var tracer = otel.GetTracerProvider().Tracer("github.com/table-planner/backend/internal/persistence")

// StorageKey is the key of the default plan. Other plans append ":<id>".
const StorageKey = "tablePlanner:v1"

// DefaultPlanID is the plan stored under the bare StorageKey.
const DefaultPlanID = "default"

// Key returns the storage key of a plan.
func Key(planID string) string {
	if planID == "" || planID == DefaultPlanID {
		return StorageKey
	}
	return StorageKey + ":" + planID
}

// PlanID is the inverse of Key. ok is false for keys outside the namespace.
func PlanID(key string) (string, bool) {
	if key == StorageKey {
		return DefaultPlanID, true
	}
	if len(key) > len(StorageKey)+1 && key[:len(StorageKey)+1] == StorageKey+":" {
		return key[len(StorageKey)+1:], true
	}
	return "", false
}

// Adapter binds one plan to its storage key.
type Adapter struct {
	store storage.Store
	key   string
	// NewDocument builds the document returned when nothing usable is stored.
	NewDocument func() *models.Document
}

// NewAdapter returns an adapter for planID.
func NewAdapter(store storage.Store, planID string) *Adapter {
	return &Adapter{store: store, key: Key(planID), NewDocument: models.NewDocument}
}

// Key returns the storage key this adapter reads and writes.
func (a *Adapter) Key() string {
	return a.key
}

// Load returns the stored document, migrated to the current schema. It
// never fails: a missing, unreadable or corrupt record yields a default
// document. Session-scoped picture references are cleared.
func (a *Adapter) Load(ctx context.Context) *models.Document {
	ctx, span := tracer.Start(ctx, "LoadDocument")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", a.key))

	raw, err := a.store.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			span.RecordError(err)
			fmt.Printf("[Persistence] read %s failed, using defaults: %v\n", a.key, err)
			metrics.LoadFallback("read")
		}
		return models.Migrate(a.NewDocument())
	}

	doc, err := Decode(raw)
	if err != nil {
		span.RecordError(err)
		fmt.Printf("[Persistence] %s is corrupt, using defaults: %v\n", a.key, err)
		metrics.LoadFallback("corrupt")
		return models.Migrate(a.NewDocument())
	}
	return doc
}

// Save writes the persisted subset of doc.
func (a *Adapter) Save(ctx context.Context, doc *models.Document) error {
	ctx, span := tracer.Start(ctx, "SaveDocument")
	defer span.End()
	span.SetAttributes(attribute.String("storage.key", a.key))

	timer := metrics.SaveTimer()
	defer timer.ObserveDuration()

	raw, err := json.Marshal(doc)
	if err != nil {
		return a.saveFailed(span, fmt.Errorf("encode %s: %w", a.key, err))
	}
	span.SetAttributes(attribute.Int("document.bytes", len(raw)))
	if err := a.store.Put(ctx, a.key, raw); err != nil {
		return a.saveFailed(span, fmt.Errorf("write %s: %w", a.key, err))
	}
	return nil
}

func (a *Adapter) saveFailed(span trace.Span, err error) error {
	metrics.SaveFailed()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Delete removes the stored plan.
func (a *Adapter) Delete(ctx context.Context) error {
	return a.store.Delete(ctx, a.key)
}

// Decode parses a stored record and migrates it. A record whose root is
// not an object is rejected.
func Decode(raw []byte) (*models.Document, error) {
	var doc *models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is null")
	}
	doc.Guests = dropNil(doc.Guests)
	doc.Tables = dropNil(doc.Tables)
	models.Migrate(doc)
	for _, g := range doc.Guests {
		if g.HasTransientPicture() {
			g.Picture = nil
		}
	}
	return doc, nil
}

func dropNil[T any](in []*T) []*T {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
