package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/table-planner/backend/internal/models"
)

// DocumentDefaults are the starting view settings and legend of new plans.
// Zero values keep the built-in defaults.
type DocumentDefaults struct {
	Language       string            `yaml:"language"`
	Grid           int               `yaml:"grid"`
	Snap           *bool             `yaml:"snap"`
	ShowGrid       *bool             `yaml:"showGrid"`
	PixelsPerMeter float64           `yaml:"pixelsPerMeter"`
	GuestSort      string            `yaml:"guestSort"`
	ColorLegend    map[string]string `yaml:"colorLegend"`
}

// LoadDocumentDefaults reads the YAML defaults file. A missing file yields
// empty defaults.
func LoadDocumentDefaults(path string) (*DocumentDefaults, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &DocumentDefaults{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults file: %w", err)
	}

	var d DocumentDefaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse defaults file: %w", err)
	}
	if d.Grid != 0 && (d.Grid < models.MinGrid || d.Grid > models.MaxGrid) {
		return nil, fmt.Errorf("grid %d outside [%d, %d]", d.Grid, models.MinGrid, models.MaxGrid)
	}
	if d.PixelsPerMeter != 0 && (d.PixelsPerMeter < models.MinPixelsPerMeter || d.PixelsPerMeter > models.MaxPixelsPerMeter) {
		return nil, fmt.Errorf("pixelsPerMeter %g outside [%g, %g]", d.PixelsPerMeter, models.MinPixelsPerMeter, models.MaxPixelsPerMeter)
	}
	if d.GuestSort != "" && !models.ValidSort(d.GuestSort) {
		return nil, fmt.Errorf("unknown guestSort %q", d.GuestSort)
	}
	return &d, nil
}

// NewDocument returns an empty document with the defaults applied.
func (d *DocumentDefaults) NewDocument() *models.Document {
	doc := models.NewDocument()
	ui := &doc.UI
	if d.Language != "" {
		ui.Language = d.Language
	}
	if d.Grid != 0 {
		ui.Grid = d.Grid
	}
	if d.Snap != nil {
		ui.Snap = *d.Snap
	}
	if d.ShowGrid != nil {
		ui.ShowGrid = *d.ShowGrid
	}
	if d.PixelsPerMeter != 0 {
		ui.PixelsPerMeter = d.PixelsPerMeter
	}
	if d.GuestSort != "" {
		ui.GuestSort = d.GuestSort
	}
	for color, label := range d.ColorLegend {
		doc.ColorLegend[color] = label
	}
	return doc
}
