package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/microtosca/internal/document"
)

// validateDocument handles POST /api/v1/validate
//
// The document is checked without touching the served model.
func (s *Server) validateDocument(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Failed to read request body",
		})
	}

	result, err := s.validator.ValidateDocument(body, document.FormatJSON)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Validation error",
			Details: err.Error(),
		})
	}

	if result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusBadRequest, result)
}
