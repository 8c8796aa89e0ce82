// handlers_guests.go - Guest, picture and legend handlers
package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/table-planner/backend/internal/exchange"
	"github.com/table-planner/backend/internal/planner"
)

// GuestHandlerImpl implements the GuestHandler interface
type GuestHandlerImpl struct {
	plans       PlanManager
	pictureRoot string
}

// NewGuestHandler creates a new guest handler instance. Pictures are only
// served from below pictureRoot.
func NewGuestHandler(plans PlanManager, pictureRoot string) GuestHandler {
	return &GuestHandlerImpl{
		plans:       plans,
		pictureRoot: pictureRoot,
	}
}

// HandleAddGuest adds a guest
func (h *GuestHandlerImpl) HandleAddGuest(c echo.Context) error {
	var req addGuestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	id, ok := p.AddGuest(req.Name, req.Color)
	if !ok {
		return NewValidationError("name")
	}
	return respondWithID(c, p, http.StatusCreated, true, id)
}

// HandleUpdateGuest merges the given fields into a guest
func (h *GuestHandlerImpl) HandleUpdateGuest(c echo.Context) error {
	var patch planner.GuestPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	return h.withGuest(c, func(p *planner.Planner, id string) bool {
		return p.UpdateGuest(id, patch)
	})
}

// HandleDeleteGuest removes a guest and frees its seat
func (h *GuestHandlerImpl) HandleDeleteGuest(c echo.Context) error {
	return h.withGuest(c, func(p *planner.Planner, id string) bool {
		return p.DeleteGuest(id)
	})
}

// HandleSetPicture points a guest at a picture
func (h *GuestHandlerImpl) HandleSetPicture(c echo.Context) error {
	var req pictureRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Picture) == "" {
		return NewValidationError("picture")
	}
	return h.withGuest(c, func(p *planner.Planner, id string) bool {
		return p.SetGuestPicture(id, req.Picture)
	})
}

// HandleRemovePicture clears a guest's picture
func (h *GuestHandlerImpl) HandleRemovePicture(c echo.Context) error {
	return h.withGuest(c, func(p *planner.Planner, id string) bool {
		return p.RemovePictureFromGuest(id)
	})
}

// HandleGetPicture serves a guest's picture file, or redirects to it when
// the reference is a URL
func (h *GuestHandlerImpl) HandleGetPicture(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	id, err := guestOf(c, p)
	if err != nil {
		return err
	}

	path, ok := p.PicturePath(id)
	if !ok {
		return NewNotFoundError("picture", id)
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return c.Redirect(http.StatusFound, path)
	}
	if !h.servable(path) {
		return NewNotFoundError("picture", id)
	}
	return c.File(path)
}

// servable reports whether path is a local file below the picture root.
func (h *GuestHandlerImpl) servable(path string) bool {
	if h.pictureRoot == "" || strings.Contains(path, ":") {
		return false
	}
	rel, err := filepath.Rel(h.pictureRoot, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// HandleSetPictureFolder selects the folder below the picture root that
// relative picture references resolve against
func (h *GuestHandlerImpl) HandleSetPictureFolder(c echo.Context) error {
	var req pictureFolderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if h.pictureRoot == "" {
		return NewServiceUnavailableError("picture directory is not configured")
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	folder := filepath.Join(h.pictureRoot, filepath.Clean("/"+req.Folder))
	p.SetPictureFolder(folder)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"folder": folder,
	})
}

// HandleImportCSV adds one guest per name of an uploaded CSV file
func (h *GuestHandlerImpl) HandleImportCSV(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}

	var body io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		file, err := c.FormFile("file")
		if err != nil {
			return NewValidationError("file")
		}
		src, err := file.Open()
		if err != nil {
			return NewInternalError("failed to open uploaded file", err)
		}
		defer src.Close()
		body = src
	}

	names, err := exchange.ParseGuestCSV(io.LimitReader(body, maxImportSize))
	if err != nil {
		return NewBadRequestError("failed to read CSV", err)
	}
	added := p.ImportGuests(names)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"added":   added,
		"canUndo": p.CanUndo(),
		"canRedo": p.CanRedo(),
	})
}

// HandleExportCSV downloads the guest names as CSV
func (h *GuestHandlerImpl) HandleExportCSV(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	guests := p.Document().Guests
	names := make([]string, len(guests))
	for i, g := range guests {
		names[i] = g.Name
	}

	setAttachment(c, p.ID()+"-guests.csv")
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return exchange.WriteGuestCSV(c.Response(), names)
}

// HandleSetLegend names a color; an empty label removes it
func (h *GuestHandlerImpl) HandleSetLegend(c echo.Context) error {
	var req legendRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Color) == "" {
		return NewValidationError("color")
	}
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return respondMutation(c, p, p.SetLegendLabel(req.Color, req.Label))
}

// withGuest resolves the plan and :guestId before applying fn.
func (h *GuestHandlerImpl) withGuest(c echo.Context, fn func(p *planner.Planner, id string) bool) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	id, err := guestOf(c, p)
	if err != nil {
		return err
	}
	return respondMutation(c, p, fn(p, id))
}

// Request types

type addGuestRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type pictureRequest struct {
	Picture string `json:"picture"`
}

type pictureFolderRequest struct {
	Folder string `json:"folder"`
}

type legendRequest struct {
	Color string `json:"color"`
	Label string `json:"label"`
}
