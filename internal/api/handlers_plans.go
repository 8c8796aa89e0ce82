// handlers_plans.go - Plan lifecycle, history and transfer handlers
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/table-planner/backend/internal/exchange"
	"github.com/table-planner/backend/internal/models"
	"github.com/table-planner/backend/internal/session"
)

// maxImportSize bounds imported documents
const maxImportSize = 20 << 20

// PlanHandlerImpl implements the PlanHandler interface
type PlanHandlerImpl struct {
	plans PlanManager
}

// NewPlanHandler creates a new plan handler instance
func NewPlanHandler(plans PlanManager) PlanHandler {
	return &PlanHandlerImpl{plans: plans}
}

// HandleListPlans returns the ids of all stored and open plans
func (h *PlanHandlerImpl) HandleListPlans(c echo.Context) error {
	ids, err := h.plans.List(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list plans", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"plans": ids,
	})
}

// HandleCreatePlan starts a plan with a generated id
func (h *PlanHandlerImpl) HandleCreatePlan(c echo.Context) error {
	p, err := h.plans.Create(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to create plan", err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":       p.ID(),
		"document": p.Document(),
	})
}

// HandleGetDocument returns the plan's current document
func (h *PlanHandlerImpl) HandleGetDocument(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Document())
}

// HandleDeletePlan closes a plan and removes its stored document
func (h *PlanHandlerImpl) HandleDeletePlan(c echo.Context) error {
	planID := c.Param("planId")
	err := h.plans.Delete(c.Request().Context(), planID)
	switch {
	case errors.Is(err, session.ErrInvalidPlanID):
		return NewValidationError("planId")
	case errors.Is(err, session.ErrPlanNotFound):
		return NewNotFoundError("plan", planID)
	case err != nil:
		return NewInternalError("failed to delete plan", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetStats returns table, seat and guest counts
func (h *PlanHandlerImpl) HandleGetStats(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Stats())
}

// HandleGetGuestList returns the sorted and filtered guest list
func (h *PlanHandlerImpl) HandleGetGuestList(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"guests": p.GuestList(),
	})
}

// HandleUndo restores the previous snapshot
func (h *PlanHandlerImpl) HandleUndo(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return respondMutation(c, p, p.Undo())
}

// HandleRedo re-applies the last undone snapshot
func (h *PlanHandlerImpl) HandleRedo(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	return respondMutation(c, p, p.Redo())
}

// HandleBeginHistoryGroup starts collecting changes into one undo step.
// The group belongs to the plan, not the caller: every change from any
// client folds into it until a matching /history/end, and a begin without
// its end stays open until DELETE /history.
func (h *PlanHandlerImpl) HandleBeginHistoryGroup(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	p.BeginHistoryGroup()
	return respondMutation(c, p, false)
}

// HandleEndHistoryGroup closes the innermost history group
func (h *PlanHandlerImpl) HandleEndHistoryGroup(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	p.EndHistoryGroup()
	return respondMutation(c, p, false)
}

// HandleClearHistory drops the plan's undo and redo stacks
func (h *PlanHandlerImpl) HandleClearHistory(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	p.ClearHistory()
	return respondMutation(c, p, false)
}

// HandleImport replaces the document with an uploaded JSON export
func (h *PlanHandlerImpl) HandleImport(c echo.Context) error {
	return h.importWith(c, exchange.DecodeDocument)
}

// HandleImportMsgpack replaces the document with a MessagePack export
func (h *PlanHandlerImpl) HandleImportMsgpack(c echo.Context) error {
	return h.importWith(c, exchange.DecodeDocumentMsgpack)
}

func (h *PlanHandlerImpl) importWith(c echo.Context, decode func([]byte) (*models.Document, error)) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize))
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}
	if len(raw) == 0 {
		return NewValidationError("document")
	}

	doc, err := decode(raw)
	if err != nil {
		var invalid *exchange.ValidationError
		if errors.As(err, &invalid) {
			return NewInvalidDocumentError(invalid.Reason)
		}
		return NewBadRequestError("failed to parse document", err)
	}

	changed := p.Import(doc)
	fmt.Printf("[Plan %s] Imported document (%d tables, %d guests)\n", p.ID(), len(doc.Tables), len(doc.Guests))
	return respondMutation(c, p, changed)
}

// HandleExport downloads the document as indented JSON
func (h *PlanHandlerImpl) HandleExport(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	data, err := exchange.EncodeDocument(p.Document())
	if err != nil {
		return NewInternalError("failed to encode document", err)
	}
	setAttachment(c, p.ID()+".json")
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// HandleExportMsgpack downloads the document as MessagePack
func (h *PlanHandlerImpl) HandleExportMsgpack(c echo.Context) error {
	p, err := openPlan(c, h.plans)
	if err != nil {
		return err
	}
	data, err := exchange.EncodeDocumentMsgpack(p.Document())
	if err != nil {
		return NewInternalError("failed to encode document", err)
	}
	setAttachment(c, p.ID()+".msgpack")
	return c.Blob(http.StatusOK, echo.MIMEApplicationMsgpack, data)
}

func setAttachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "table-plan-"+name))
}
