package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// FeedbackHandler serves the customer feedback endpoints.
type FeedbackHandler struct {
	Feedback *repository.FeedbackRepo
}

// NewFeedbackHandler constructs a FeedbackHandler and panics if the
// repository is nil.
func NewFeedbackHandler(feedback *repository.FeedbackRepo) *FeedbackHandler {
	if feedback == nil {
		panic("nil repository passed to NewFeedbackHandler")
	}
	return &FeedbackHandler{Feedback: feedback}
}

// List handles GET /api/feedback.
func (h *FeedbackHandler) List(c echo.Context) error {
	page, limit := parsePagination(c, 10)
	items, total, err := h.Feedback.List(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondPage(c, items, total, page, limit)
}

// Create handles POST /api/feedback.
func (h *FeedbackHandler) Create(c echo.Context) error {
	var in repository.FeedbackInput
	if err := c.Bind(&in); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}
	id, err := h.Feedback.Create(c.Request().Context(), &in)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, map[string]interface{}{"feedback_id": id})
}

// Delete handles DELETE /api/feedback/:id.
func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondBadRequest(c, err.Error())
	}
	if err := h.Feedback.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, map[string]interface{}{"deleted": true})
}
