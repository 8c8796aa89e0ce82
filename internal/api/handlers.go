package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/table-planner/backend/internal/planner"
	"github.com/table-planner/backend/internal/session"
)

// mutationResponse is the body of every editing request.
type mutationResponse struct {
	Changed bool   `json:"changed"`
	ID      string `json:"id,omitempty"`
	CanUndo bool   `json:"canUndo"`
	CanRedo bool   `json:"canRedo"`
}

// openPlan resolves the :planId path parameter to an open planner.
func openPlan(c echo.Context, plans PlanManager) (*planner.Planner, error) {
	planID := c.Param("planId")
	p, err := plans.Open(c.Request().Context(), planID)
	if errors.Is(err, session.ErrInvalidPlanID) {
		return nil, NewValidationError("planId")
	}
	if err != nil {
		return nil, NewInternalError("failed to open plan", err)
	}
	return p, nil
}

// tableOf resolves :tableId on an open planner.
func tableOf(c echo.Context, p *planner.Planner) (string, error) {
	id := c.Param("tableId")
	if _, ok := p.Table(id); !ok {
		return "", NewNotFoundError("table", id)
	}
	return id, nil
}

// guestOf resolves :guestId on an open planner.
func guestOf(c echo.Context, p *planner.Planner) (string, error) {
	id := c.Param("guestId")
	if _, ok := p.Guest(id); !ok {
		return "", NewNotFoundError("guest", id)
	}
	return id, nil
}

func seatParam(c echo.Context) (int, error) {
	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		return 0, NewValidationError("seat")
	}
	return seat, nil
}

// bind decodes the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return nil
}

func respondMutation(c echo.Context, p *planner.Planner, changed bool) error {
	return respondWithID(c, p, http.StatusOK, changed, "")
}

func respondWithID(c echo.Context, p *planner.Planner, status int, changed bool, id string) error {
	return c.JSON(status, mutationResponse{
		Changed: changed,
		ID:      id,
		CanUndo: p.CanUndo(),
		CanRedo: p.CanRedo(),
	})
}
