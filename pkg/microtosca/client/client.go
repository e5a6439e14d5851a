// Package client is a typed Go client for the microtosca REST API.
//
//	c, err := client.New("http://localhost:8095", client.WithToken(token))
//	if err != nil {
//	    return err
//	}
//	_, err = c.CreateNode(ctx, "orders", "service")
//	_, err = c.AddInteraction(ctx, client.Interaction{Source: "gateway", Target: "orders"})
//
// Errors returned by the server are *APIError values and match ErrNotFound,
// ErrConflict and ErrRejected with errors.Is.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound matches 404 responses
	ErrNotFound = errors.New("not found")
	// ErrConflict matches 409 responses, e.g. a duplicate node name
	ErrConflict = errors.New("conflict")
	// ErrRejected matches 422 responses: self-loops and disallowed role pairs
	ErrRejected = errors.New("rejected by the interaction policy")
	// ErrUnauthorized matches 401 and 403 responses
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int                    `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`

	result *ValidationResult
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrRejected:
		return e.StatusCode == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Query filters and pages node listings.
type Query struct {
	Role   string
	Limit  int
	Offset int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Role != "" {
		v.Set("role", q.Role)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// Health returns the server health report.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}

// Model returns the model summary.
func (c *Client) Model(ctx context.Context) (*ModelSummary, error) {
	var out ModelSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/model", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNodes returns one page of nodes.
func (c *Client) ListNodes(ctx context.Context, q Query) (*NodeList, error) {
	var out NodeList
	if err := c.do(ctx, http.MethodGet, "/api/v1/nodes", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetNode returns one node.
func (c *Client) GetNode(ctx context.Context, name string) (*Node, error) {
	var out Node
	if err := c.do(ctx, http.MethodGet, "/api/v1/nodes/"+url.PathEscape(name), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNode adds a node with the given role name.
func (c *Client) CreateNode(ctx context.Context, name, nodeType string) (*Node, error) {
	var out Node
	body := map[string]string{"name": name, "type": nodeType}
	if err := c.do(ctx, http.MethodPost, "/api/v1/nodes", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNode removes a node with all its interactions and returns how many
// interactions went with it.
func (c *Client) DeleteNode(ctx context.Context, name string) (int, error) {
	var out struct {
		RemovedInteractions int `json:"removed_interactions"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/v1/nodes/"+url.PathEscape(name), nil, nil, &out); err != nil {
		return 0, err
	}
	return out.RemovedInteractions, nil
}

// Outgoing returns the interactions a node starts.
func (c *Client) Outgoing(ctx context.Context, name string) ([]Interaction, error) {
	return c.interactions(ctx, "/api/v1/nodes/"+url.PathEscape(name)+"/interactions")
}

// Incoming returns the interactions that target a node.
func (c *Client) Incoming(ctx context.Context, name string) ([]Interaction, error) {
	return c.interactions(ctx, "/api/v1/nodes/"+url.PathEscape(name)+"/incoming")
}

// Interactions returns every interaction of the model.
func (c *Client) Interactions(ctx context.Context) ([]Interaction, error) {
	return c.interactions(ctx, "/api/v1/interactions")
}

func (c *Client) interactions(ctx context.Context, path string) ([]Interaction, error) {
	var out struct {
		Interactions []Interaction `json:"interactions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Interactions, nil
}

// AddInteraction creates an interaction. Policy violations match ErrRejected.
func (c *Client) AddInteraction(ctx context.Context, in Interaction) (*Interaction, error) {
	var out Interaction
	if err := c.do(ctx, http.MethodPost, "/api/v1/interactions", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveInteraction removes the oldest interaction from source to target.
func (c *Client) RemoveInteraction(ctx context.Context, source, target string) (*Interaction, error) {
	var out Interaction
	body := Interaction{Source: source, Target: target}
	if err := c.do(ctx, http.MethodDelete, "/api/v1/interactions", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Policy returns the allowed role pairs.
func (c *Client) Policy(ctx context.Context) (*Policy, error) {
	var out Policy
	if err := c.do(ctx, http.MethodGet, "/api/v1/policy", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Integrity runs an integrity scan on the server.
func (c *Client) Integrity(ctx context.Context) (*IntegrityReport, error) {
	var out IntegrityReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/integrity", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Repair collapses parallel interactions. With dryRun nothing changes.
func (c *Client) Repair(ctx context.Context, dryRun bool) (*RepairResult, error) {
	var out RepairResult
	q := url.Values{"dry_run": {strconv.FormatBool(dryRun)}}
	if err := c.do(ctx, http.MethodPost, "/api/v1/integrity/repair", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportDocument returns the model as a JSON architecture document.
func (c *Client) ExportDocument(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/model/document", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceDocument replaces the served model with the JSON document doc.
func (c *Client) ReplaceDocument(ctx context.Context, doc json.RawMessage) (*ReplaceResult, error) {
	var out ReplaceResult
	if err := c.do(ctx, http.MethodPut, "/api/v1/model/document", nil, doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateDocument checks a JSON document on the server without changing the
// served model. An invalid document is reported through the result, not as
// an error.
func (c *Client) ValidateDocument(ctx context.Context, doc json.RawMessage) (*ValidationResult, error) {
	var out ValidationResult
	err := c.do(ctx, http.MethodPost, "/api/v1/validate", nil, doc, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && apiErr.result != nil {
		return apiErr.result, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
		apiErr.Details = strings.TrimSpace(string(data))
	}
	apiErr.StatusCode = resp.StatusCode

	// a rejected validation request carries the result instead of a message
	var result ValidationResult
	if json.Unmarshal(data, &result) == nil && len(result.Errors) > 0 {
		apiErr.result = &result
		if apiErr.Message == http.StatusText(resp.StatusCode) {
			apiErr.Message = "document is invalid"
		}
	}
	return apiErr
}
