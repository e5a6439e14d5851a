package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"evalgo.org/microtosca/internal/document"
	"evalgo.org/microtosca/models"
)

// getModel handles GET /api/v1/model
func (s *Server) getModel(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return c.JSON(http.StatusOK, summarize(s.model))
}

// exportDocument handles GET /api/v1/model/document
//
// The document is JSON unless ?format=yaml is given or the Accept header
// asks for application/yaml.
func (s *Server) exportDocument(c echo.Context) error {
	format := document.FormatJSON
	if f := c.QueryParam("format"); f != "" {
		parsed, err := document.ParseFormat(f)
		if err != nil {
			return BadRequestError("Invalid format parameter", err.Error())
		}
		format = parsed
	} else if strings.Contains(c.Request().Header.Get("Accept"), "application/yaml") {
		format = document.FormatYAML
	}

	s.mu.RLock()
	doc := document.Export(s.model)
	s.mu.RUnlock()

	if format == document.FormatJSON {
		return c.JSON(http.StatusOK, doc)
	}

	data, err := document.Marshal(doc, format)
	if err != nil {
		return InternalError("Failed to encode document", err.Error())
	}
	return c.Blob(http.StatusOK, "application/yaml", data)
}

// replaceDocument handles PUT /api/v1/model/document
//
// The document is validated and built into a fresh model before the current
// one is swapped out, so a rejected document leaves the served model as it was.
func (s *Server) replaceDocument(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return BadRequestError("Failed to read request body", err.Error())
	}

	result, err := s.validator.ValidateDocument(body, document.FormatJSON)
	if err != nil {
		return InternalError("Validation error", err.Error())
	}
	if !result.Valid {
		return c.JSON(http.StatusUnprocessableEntity, InvalidDocumentResponse{
			Error:  "document is invalid",
			Errors: result.Errors,
		})
	}

	doc, err := document.Parse(body, document.FormatJSON)
	if err != nil {
		return BadRequestError("Invalid document", err.Error())
	}

	built, err := document.NewBuilder(true, s.logger).Build(doc)
	if err != nil {
		if errors.Is(err, models.ErrModel) {
			return ModelError(err)
		}
		return UnprocessableError("Failed to build model", err.Error())
	}

	s.mu.Lock()
	s.model = built.Model
	summary := summarize(s.model)
	s.mu.Unlock()

	s.logger.Printf("Model replaced: %s (%d nodes, %d interactions)", summary.Name, summary.Nodes, summary.Interactions)
	s.BroadcastGraphEvent(EventModelReplaced, summary)

	return c.JSON(http.StatusOK, ReplaceModelResponse{
		Model:    summary,
		Warnings: built.Warnings,
	})
}

// getPolicy handles GET /api/v1/policy
func (s *Server) getPolicy(c echo.Context) error {
	resp := PolicyResponse{
		Roles:   models.Roles(),
		Allowed: make(map[models.Role][]models.Role),
	}
	for _, r := range models.Roles() {
		targets := models.AllowedTargets(r)
		if targets == nil {
			targets = []models.Role{}
		}
		resp.Allowed[r] = targets
	}

	return c.JSON(http.StatusOK, resp)
}
