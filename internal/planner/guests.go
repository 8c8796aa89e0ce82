package planner

import (
	"path/filepath"
	"strings"

	"github.com/table-planner/backend/internal/models"
)

// AddGuest adds a guest with a trimmed, non-empty name. An empty color
// selects the default. It returns the new guest id.
func (p *Planner) AddGuest(name, color string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if color == "" {
		color = models.DefaultGuestColor
	}
	var id string
	ok := p.edit(OpAddGuest, func(doc *models.Document, record func()) bool {
		record()
		id = p.uniqueID("g_")
		doc.Guests = append(doc.Guests, &models.Guest{ID: id, Name: name, Color: color})
		return true
	})
	return id, ok
}

// GuestPatch holds the guest fields to change; nil fields are kept.
type GuestPatch struct {
	Name    *string `json:"name,omitempty"`
	Color   *string `json:"color,omitempty"`
	IsChild *bool   `json:"isChild,omitempty"`
}

// UpdateGuest merges patch into a guest. A blank name is ignored so a
// guest always keeps a name.
func (p *Planner) UpdateGuest(id string, patch GuestPatch) bool {
	return p.edit(OpUpdateGuest, func(doc *models.Document, record func()) bool {
		g, _ := doc.FindGuest(id)
		if g == nil {
			return false
		}
		next := *g
		if patch.Name != nil {
			if n := strings.TrimSpace(*patch.Name); n != "" {
				next.Name = n
			}
		}
		if patch.Color != nil && *patch.Color != "" {
			next.Color = *patch.Color
		}
		if patch.IsChild != nil {
			next.IsChild = *patch.IsChild
		}
		if next.Name == g.Name && next.Color == g.Color && next.IsChild == g.IsChild {
			return false
		}
		record()
		g.Name, g.Color, g.IsChild = next.Name, next.Color, next.IsChild
		return true
	})
}

// DeleteGuest removes a guest and every seat assignment referencing it.
func (p *Planner) DeleteGuest(id string) bool {
	return p.edit(OpDeleteGuest, func(doc *models.Document, record func()) bool {
		_, idx := doc.FindGuest(id)
		if idx < 0 {
			return false
		}
		record()
		doc.Guests = append(doc.Guests[:idx:idx], doc.Guests[idx+1:]...)
		unseat(doc, id)
		delete(p.pictureCache, id)
		return true
	})
}

// ImportGuests adds one guest per non-blank name with the default color,
// without de-duplication, as a single undo step. It returns the number of
// guests added.
func (p *Planner) ImportGuests(names []string) int {
	added := 0
	p.edit(OpImportGuests, func(doc *models.Document, record func()) bool {
		for _, raw := range names {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			if added == 0 {
				record()
			}
			doc.Guests = append(doc.Guests, &models.Guest{
				ID:    p.uniqueID("g_"),
				Name:  name,
				Color: models.DefaultGuestColor,
			})
			added++
		}
		return added > 0
	})
	return added
}

// SetGuestPicture points a guest at a picture reference.
func (p *Planner) SetGuestPicture(id, ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	return p.edit(OpPicture, func(doc *models.Document, record func()) bool {
		g, _ := doc.FindGuest(id)
		if g == nil {
			return false
		}
		record()
		g.Picture = &ref
		delete(p.pictureCache, id)
		return true
	})
}

// RemovePictureFromGuest clears a guest's picture.
func (p *Planner) RemovePictureFromGuest(id string) bool {
	return p.edit(OpPicture, func(doc *models.Document, record func()) bool {
		g, _ := doc.FindGuest(id)
		if g == nil || g.Picture == nil {
			return false
		}
		record()
		g.Picture = nil
		delete(p.pictureCache, id)
		return true
	})
}

// SetPictureFolder sets the folder relative picture references resolve
// against. The folder is session state and is never persisted.
func (p *Planner) SetPictureFolder(folder string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pictureFolder = folder
	p.pictureCache = make(map[string]string)
}

// PicturePath resolves a guest's picture reference against the picture
// folder. Absolute paths and URLs are returned as they are.
func (p *Planner) PicturePath(guestID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path, ok := p.pictureCache[guestID]; ok {
		return path, true
	}
	g, _ := p.doc.FindGuest(guestID)
	if g == nil || g.Picture == nil {
		return "", false
	}
	ref := *g.Picture
	path := ref
	if !filepath.IsAbs(ref) && !strings.Contains(ref, ":") && p.pictureFolder != "" {
		path = filepath.Join(p.pictureFolder, filepath.Clean("/"+ref))
	}
	p.pictureCache[guestID] = path
	return path, true
}

// SetLegendLabel names a color in the legend. An empty label removes the
// entry. The legend is not part of the undo history.
func (p *Planner) SetLegendLabel(color, label string) bool {
	color = strings.TrimSpace(color)
	if color == "" {
		return false
	}
	label = strings.TrimSpace(label)
	return p.edit(OpLegend, func(doc *models.Document, _ func()) bool {
		cur, ok := doc.ColorLegend[color]
		if label == "" {
			if !ok {
				return false
			}
			delete(doc.ColorLegend, color)
			return true
		}
		if ok && cur == label {
			return false
		}
		doc.ColorLegend[color] = label
		return true
	})
}
