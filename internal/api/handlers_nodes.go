package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"evalgo.org/microtosca/models"
)

// listNodes handles GET /api/v1/nodes
func (s *Server) listNodes(c echo.Context) error {
	limit, offset := parsePagination(c)

	s.mu.RLock()
	var nodes []*models.Node
	if roleParam := c.QueryParam("role"); roleParam != "" {
		role, err := models.ParseRole(roleParam)
		if err != nil {
			s.mu.RUnlock()
			return BadRequestError("Invalid role parameter", err.Error())
		}
		nodes = s.model.NodesByRole(role)
	} else {
		nodes = s.model.Nodes()
	}

	// Get total count before pagination
	total := len(nodes)

	page := paginate(nodes, limit, offset)
	out := make([]NodeResponse, 0, len(page))
	for _, n := range page {
		out = append(out, newNodeResponse(n))
	}
	s.mu.RUnlock()

	return c.JSON(http.StatusOK, PaginatedNodesResponse{
		Count:  len(out),
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Nodes:  out,
	})
}

// getNode handles GET /api/v1/nodes/:name
func (s *Server) getNode(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.model.Lookup(c.Param("name"))
	if err != nil {
		return ModelError(err)
	}

	return c.JSON(http.StatusOK, newNodeResponse(node))
}

// createNode handles POST /api/v1/nodes
func (s *Server) createNode(c echo.Context) error {
	var req CreateNodeRequest

	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", "Failed to parse JSON: "+err.Error())
	}

	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fieldErrors["name"] = "name is required"
	}
	role, err := models.ParseRole(req.Type)
	if err != nil {
		fieldErrors["type"] = err.Error()
	}
	if len(fieldErrors) > 0 {
		return ValidationError("Invalid node", fieldErrors)
	}

	node := models.NewNode(req.Name, role)

	s.mu.Lock()
	err = s.model.AddNode(node)
	s.mu.Unlock()
	if err != nil {
		return ModelError(err)
	}

	resp := NodeResponse{Name: node.Name(), Type: node.Role()}
	s.BroadcastGraphEvent(EventNodeAdded, resp)

	return c.JSON(http.StatusCreated, resp)
}

// deleteNode handles DELETE /api/v1/nodes/:name
//
// Every interaction the node takes part in is removed with it.
func (s *Server) deleteNode(c echo.Context) error {
	name := c.Param("name")

	s.mu.Lock()
	node, err := s.model.Lookup(name)
	if err != nil {
		s.mu.Unlock()
		return ModelError(err)
	}

	// no self-loops, so every relationship is counted once
	removed := len(node.Interactions()) + len(node.IncomingInteractions())

	err = s.model.RemoveNode(node)
	s.mu.Unlock()
	if err != nil {
		return ModelError(err)
	}

	resp := DeleteNodeResponse{Name: name, RemovedInteractions: removed}
	s.BroadcastGraphEvent(EventNodeRemoved, resp)

	return c.JSON(http.StatusOK, resp)
}

// listOutgoing handles GET /api/v1/nodes/:name/interactions
func (s *Server) listOutgoing(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.model.Lookup(c.Param("name"))
	if err != nil {
		return ModelError(err)
	}

	return c.JSON(http.StatusOK, newInteractionsResponse(node.Interactions()))
}

// listIncoming handles GET /api/v1/nodes/:name/incoming
func (s *Server) listIncoming(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.model.Lookup(c.Param("name"))
	if err != nil {
		return ModelError(err)
	}

	return c.JSON(http.StatusOK, newInteractionsResponse(node.IncomingInteractions()))
}
