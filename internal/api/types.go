package api

import (
	"evalgo.org/microtosca/internal/validation"
	"evalgo.org/microtosca/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
}

// ModelSummary describes the model as a whole.
type ModelSummary struct {
	Name         string              `json:"name"`
	Nodes        int                 `json:"nodes"`
	Interactions int                 `json:"interactions"`
	ByRole       map[models.Role]int `json:"by_role"`
}

// NodeResponse represents one node with its relationship counts.
type NodeResponse struct {
	Name     string      `json:"name"`
	Type     models.Role `json:"type"`
	Outgoing int         `json:"outgoing"`
	Incoming int         `json:"incoming"`
}

// PaginatedNodesResponse represents a page of nodes.
type PaginatedNodesResponse struct {
	Count  int            `json:"count"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Nodes  []NodeResponse `json:"nodes"`
}

// InteractionResponse represents one interacts-with relationship.
type InteractionResponse struct {
	Source string `json:"source"`
	Target string `json:"target"`
	models.InteractionProperties
}

// InteractionsResponse represents a list of relationships.
type InteractionsResponse struct {
	Count        int                   `json:"count"`
	Interactions []InteractionResponse `json:"interactions"`
}

// CreateNodeRequest is the body of POST /nodes.
type CreateNodeRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// InteractionRequest is the body of POST and DELETE /interactions.
type InteractionRequest struct {
	Source           string `json:"source" query:"source"`
	Target           string `json:"target" query:"target"`
	Timeout          bool   `json:"timeout"`
	CircuitBreaker   bool   `json:"circuit_breaker"`
	DynamicDiscovery bool   `json:"dynamic_discovery"`
}

// DeleteNodeResponse reports a cascading node removal.
type DeleteNodeResponse struct {
	Name                string `json:"name"`
	RemovedInteractions int    `json:"removed_interactions"`
}

// PolicyResponse lists the allowed role pairs.
type PolicyResponse struct {
	Roles   []models.Role                 `json:"roles"`
	Allowed map[models.Role][]models.Role `json:"allowed"`
}

// ReplaceModelResponse reports the result of PUT /model/document.
type ReplaceModelResponse struct {
	Model    ModelSummary `json:"model"`
	Warnings []string     `json:"warnings"`
}

// InvalidDocumentResponse is returned when a replacement document fails validation.
type InvalidDocumentResponse struct {
	Error  string                       `json:"error"`
	Errors []validation.ValidationError `json:"errors"`
}

func newNodeResponse(n *models.Node) NodeResponse {
	return NodeResponse{
		Name:     n.Name(),
		Type:     n.Role(),
		Outgoing: len(n.Interactions()),
		Incoming: len(n.IncomingInteractions()),
	}
}

func newInteractionResponse(rel *models.InteractsWith) InteractionResponse {
	return InteractionResponse{
		Source:                rel.Source().Name(),
		Target:                rel.Target().Name(),
		InteractionProperties: rel.Properties(),
	}
}

func newInteractionsResponse(rels []*models.InteractsWith) InteractionsResponse {
	out := make([]InteractionResponse, 0, len(rels))
	for _, rel := range rels {
		out = append(out, newInteractionResponse(rel))
	}
	return InteractionsResponse{Count: len(out), Interactions: out}
}

func summarize(m *models.Model) ModelSummary {
	summary := ModelSummary{
		Name:         m.Name(),
		Nodes:        m.Len(),
		Interactions: len(m.Interactions()),
		ByRole:       make(map[models.Role]int),
	}
	for _, r := range models.Roles() {
		summary.ByRole[r] = len(m.NodesByRole(r))
	}
	return summary
}
