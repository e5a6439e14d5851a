package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/microtosca/internal/api"
	"evalgo.org/microtosca/internal/auth"
	"evalgo.org/microtosca/internal/config"
	"evalgo.org/microtosca/models"
)

const testSecret = "client-secret"

func newTestClient(t *testing.T, authEnabled bool, opts ...Option) *Client {
	t.Helper()

	cfg := &config.Config{
		Security: config.SecurityConfig{
			AuthEnabled:   authEnabled,
			JWTSecret:     testSecret,
			JWTExpiration: time.Hour,
		},
	}

	m := models.NewModel("shop")
	require.NoError(t, m.AddNode(models.NewMessageRouter("gateway")))
	require.NoError(t, m.AddNode(models.NewService("orders")))
	require.NoError(t, m.AddNode(models.NewDatabase("orders-db")))
	_, err := m.AddInteraction("gateway", "orders")
	require.NoError(t, err)

	server := api.New(cfg, m, nil)
	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		_ = server.Shutdown(context.Background())
	})

	c, err := New(ts.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	c, err := New("http://localhost:8095/", WithToken("abc"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8095", c.baseURL)
	assert.Equal(t, "abc", c.token)
}

func TestClient_NodesAndInteractions(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, false)

	node, err := c.CreateNode(ctx, "events", "message_broker")
	require.NoError(t, err)
	assert.Equal(t, "message_broker", node.Type)

	_, err = c.CreateNode(ctx, "orders", "service")
	assert.ErrorIs(t, err, ErrConflict)

	rel, err := c.AddInteraction(ctx, Interaction{Source: "orders", Target: "orders-db", Timeout: true})
	require.NoError(t, err)
	assert.True(t, rel.Timeout)

	_, err = c.AddInteraction(ctx, Interaction{Source: "orders", Target: "events"})
	require.NoError(t, err)

	_, err = c.AddInteraction(ctx, Interaction{Source: "orders-db", Target: "orders"})
	assert.ErrorIs(t, err, ErrRejected)

	_, err = c.AddInteraction(ctx, Interaction{Source: "orders", Target: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	out, err := c.Outgoing(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "orders-db", out[0].Target)

	in, err := c.Incoming(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "gateway", in[0].Source)

	page, err := c.ListNodes(ctx, Query{Role: "service"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	removed, err := c.DeleteNode(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	all, err := c.Interactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = c.GetNode(ctx, "orders")
	assert.ErrorIs(t, err, ErrNotFound)

	summary, err := c.Model(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Nodes)
}

func TestClient_RemoveInteraction(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, false)

	rel, err := c.RemoveInteraction(ctx, "gateway", "orders")
	require.NoError(t, err)
	assert.Equal(t, "gateway", rel.Source)

	_, err = c.RemoveInteraction(ctx, "gateway", "orders")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Policy(t *testing.T) {
	c := newTestClient(t, false)

	policy, err := c.Policy(context.Background())
	require.NoError(t, err)
	assert.True(t, policy.Allows("service", "database"))
	assert.True(t, policy.Allows("message_router", "message_broker"))
	assert.False(t, policy.Allows("database", "service"))
	assert.False(t, policy.Allows("message_broker", "service"))
}

func TestClient_IntegrityAndRepair(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, false)

	_, err := c.AddInteraction(ctx, Interaction{Source: "gateway", Target: "orders"})
	require.NoError(t, err)

	report, err := c.Integrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shop", report.Model)
	assert.Equal(t, 1, report.Summary.ByType["parallel"])
	assert.Equal(t, 1, report.Summary.ByType["orphaned"])

	result, err := c.Repair(ctx, false)
	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.Equal(t, 1, result.Removed)

	report, err = c.Integrity(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Summary.ByType["parallel"])
}

func TestClient_Documents(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, false)

	doc, err := c.ExportDocument(ctx)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &decoded))
	assert.Equal(t, "shop", decoded["name"])

	next := json.RawMessage(`{"name": "next", "nodes": [{"name": "s1", "type": "service"}, {"name": "db1", "type": "database"}],
		"links": [{"source": "s1", "target": "db1"}]}`)
	result, err := c.ReplaceDocument(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, "next", result.Model.Name)

	_, err = c.ReplaceDocument(ctx, json.RawMessage(`{"name": "bad", "nodes": [{"name": "db1", "type": "database"}, {"name": "s1", "type": "service"}],
		"links": [{"source": "db1", "target": "s1"}]}`))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestClient_ValidateDocument(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, false)

	result, err := c.ValidateDocument(ctx, json.RawMessage(`{"name": "ok", "nodes": [{"name": "s1", "type": "service"}]}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = c.ValidateDocument(ctx, json.RawMessage(`{"name": "bad", "nodes": [{"name": "s1", "type": "queue"}]}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestClient_Auth(t *testing.T) {
	ctx := context.Background()

	anonymous := newTestClient(t, true)
	_, err := anonymous.Model(ctx)
	require.NoError(t, err)
	_, err = anonymous.CreateNode(ctx, "payments", "service")
	assert.ErrorIs(t, err, ErrUnauthorized)

	token, err := auth.GenerateToken(testSecret, "ci", time.Hour)
	require.NoError(t, err)
	authorized := newTestClient(t, true, WithToken(token))
	_, err = authorized.CreateNode(ctx, "payments", "service")
	assert.NoError(t, err)
}
