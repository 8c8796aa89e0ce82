// Package exchange converts plan documents and guest lists to and from the
// external formats users import and export.
package exchange

import (
	"math"

	"github.com/table-planner/backend/internal/models"
)

// ValidationError rejects an imported document. Reason is shown to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid document: " + e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// Validate checks a generically decoded document (as produced by
// encoding/json into an any) and returns the first problem found.
func Validate(v any) error {
	root, ok := v.(map[string]any)
	if !ok {
		if _, isArray := v.([]any); isArray {
			return invalid("Missing tables or guests arrays")
		}
		return invalid("Root must be an object")
	}

	tables, ok := root["tables"].([]any)
	if !ok {
		return invalid("Missing tables or guests arrays")
	}
	guests, ok := root["guests"].([]any)
	if !ok {
		return invalid("Missing tables or guests arrays")
	}

	for _, entry := range tables {
		if err := validateTable(entry); err != nil {
			return err
		}
	}
	for _, entry := range guests {
		g, ok := entry.(map[string]any)
		if !ok || !truthy(g["id"]) {
			return invalid("Invalid guest entry")
		}
		if _, ok := g["name"].(string); !ok {
			return invalid("Invalid guest entry")
		}
	}
	return nil
}

func validateTable(entry any) error {
	if _, isArray := entry.([]any); isArray {
		return invalid("Table missing id")
	}
	t, ok := entry.(map[string]any)
	if !ok {
		return invalid("Invalid table entry")
	}
	if !truthy(t["id"]) {
		return invalid("Table missing id")
	}

	switch t["type"] {
	case string(models.KindSeparator):
		if !finite(t, "x", "y", "width", "height") {
			return invalid("Invalid separator geometry")
		}
	case string(models.KindCircle):
		if !truthy(t["label"]) {
			return invalid("Circle table missing label")
		}
		if !finite(t, "x", "y", "radius") {
			return invalid("Invalid circle table geometry")
		}
		if !validSeats(t["seats"]) {
			return invalid("Invalid seats count")
		}
	case string(models.KindRect):
		if !truthy(t["label"]) {
			return invalid("Rect table missing label")
		}
		if !finite(t, "x", "y", "width", "height") {
			return invalid("Invalid rect table geometry")
		}
		if !validSeats(t["seats"]) {
			return invalid("Invalid seats count")
		}
	default:
		return invalid("Unknown table type")
	}
	return nil
}

func finite(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		f, ok := obj[k].(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// validSeats accepts whole numbers in the import range.
func validSeats(v any) bool {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return false
	}
	return f >= models.MinSeats && f <= models.MaxImportSeats
}

// truthy mirrors the loose presence checks of the browser client: null,
// false, zero and the empty string count as missing.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	}
	return true
}
