package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/microtosca/models"
)

// listInteractions handles GET /api/v1/interactions
func (s *Server) listInteractions(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return c.JSON(http.StatusOK, newInteractionsResponse(s.model.Interactions()))
}

// createInteraction handles POST /api/v1/interactions
func (s *Server) createInteraction(c echo.Context) error {
	req, err := bindInteraction(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	rel, err := s.model.AddInteraction(req.Source, req.Target, models.WithProperties(models.InteractionProperties{
		Timeout:          req.Timeout,
		CircuitBreaker:   req.CircuitBreaker,
		DynamicDiscovery: req.DynamicDiscovery,
	}))
	var resp InteractionResponse
	if err == nil {
		resp = newInteractionResponse(rel)
	}
	s.mu.Unlock()
	if err != nil {
		return ModelError(err)
	}

	s.BroadcastGraphEvent(EventInteractionAdded, resp)

	return c.JSON(http.StatusCreated, resp)
}

// deleteInteraction handles DELETE /api/v1/interactions
//
// The endpoints come from the JSON body or the source and target query
// parameters. When parallel interactions exist only the oldest is removed.
func (s *Server) deleteInteraction(c echo.Context) error {
	req, err := bindInteraction(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := s.model.Lookup(req.Source)
	if err != nil {
		return ModelError(err)
	}
	target, err := s.model.Lookup(req.Target)
	if err != nil {
		return ModelError(err)
	}

	for _, rel := range source.Interactions() {
		if rel.Target() != target {
			continue
		}
		resp := newInteractionResponse(rel)
		if err := source.RemoveInteraction(rel); err != nil {
			return ModelError(err)
		}
		s.BroadcastGraphEvent(EventInteractionRemoved, resp)
		return c.JSON(http.StatusOK, resp)
	}

	return NotFoundError("Interaction", req.Source+" -> "+req.Target)
}

func bindInteraction(c echo.Context) (*InteractionRequest, error) {
	var req InteractionRequest

	if err := c.Bind(&req); err != nil {
		return nil, BadRequestError("Invalid request body", "Failed to parse JSON: "+err.Error())
	}

	fieldErrors := make(map[string]string)
	if req.Source == "" {
		fieldErrors["source"] = "source is required"
	}
	if req.Target == "" {
		fieldErrors["target"] = "target is required"
	}
	if len(fieldErrors) > 0 {
		return nil, ValidationError("Invalid interaction", fieldErrors)
	}

	return &req, nil
}
