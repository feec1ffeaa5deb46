// Package handler defines the HTTP handlers. Every response uses the same
// envelope: {"success": true, "data": ...} on success and
// {"success": false, "message": ...} on failure, so clients branch on a
// single flag.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/repository"
)

// Pagination is the page metadata attached to list responses.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// respondData writes a success envelope.
func respondData(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, envelope{Success: true, Data: data})
}

// respondPage writes a success envelope with pagination metadata. The page
// count rounds up so a partial last page still counts.
func respondPage(c echo.Context, data interface{}, total, page, limit int) error {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: pages,
		},
	})
}

// respondError maps repository sentinel errors to HTTP statuses and writes
// a failure envelope. Unrecognized errors become a generic 500 so internal
// detail never leaks to clients.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, envelope{Success: false, Message: "resource not found"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, envelope{Success: false, Message: "duplicate resource"})
	case errors.Is(err, repository.ErrBadReference):
		return c.JSON(http.StatusUnprocessableEntity, envelope{Success: false, Message: "referenced resource does not exist"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, envelope{Success: false, Message: "internal server error"})
	}
}

// respondBadRequest writes a 400 failure envelope with the given message.
func respondBadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, envelope{Success: false, Message: msg})
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// nowUTC formats the current UTC time the way timestamps are stored.
func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

// parsePagination reads ?page and ?limit with defaults, clamping limit to
// 100 rows per page.
func parsePagination(c echo.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
