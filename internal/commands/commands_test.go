package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/microtosca/internal/api"
	"evalgo.org/microtosca/internal/auth"
	"evalgo.org/microtosca/internal/config"
	"evalgo.org/microtosca/internal/document"
	"evalgo.org/microtosca/models"
)

const shopDocument = `name: shop
nodes:
  - name: gateway
    type: message_router
  - name: orders
    type: service
  - name: orders-db
    type: database
links:
  - source: gateway
    target: orders
  - source: orders
    target: orders-db
    timeout: true
`

const parallelDocument = `name: shop
nodes:
  - name: gateway
    type: message_router
  - name: orders
    type: service
links:
  - source: gateway
    target: orders
  - source: gateway
    target: orders
    circuit_breaker: true
`

const rejectedDocument = `name: shop
nodes:
  - name: orders
    type: service
  - name: orders-db
    type: database
links:
  - source: orders-db
    target: orders
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeCommand runs the root command with a quiet configuration. Flags
// keep their values between executions, so they are reset first.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	configFile := writeFile(t, "config.yaml", "logging:\n  level: error\n  output: stderr\n")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config", configFile}, args...))

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			var values []string
			if trimmed := strings.Trim(f.DefValue, "[]"); trimmed != "" {
				values = strings.Split(trimmed, ",")
			}
			_ = sv.Replace(values)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func newTestAPI(t *testing.T) string {
	t.Helper()

	m := models.NewModel("served")
	require.NoError(t, m.AddNode(models.NewService("billing")))
	require.NoError(t, m.AddNode(models.NewDatabase("billing-db")))
	_, err := m.AddInteraction("billing", "billing-db")
	require.NoError(t, err)

	server := api.New(&config.Config{}, m, nil)
	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		_ = server.Shutdown(context.Background())
	})
	return ts.URL
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "microtosca dev")
	assert.Contains(t, out, "Go Version:")
}

func TestValidate(t *testing.T) {
	out, err := executeCommand(t, "validate", writeFile(t, "shop.yaml", shopDocument))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Document is valid")

	out, err = executeCommand(t, "validate", writeFile(t, "bad.yaml", rejectedDocument))
	assert.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed:")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read file")

	_, err = executeCommand(t, "validate")
	assert.ErrorContains(t, err, "no document given")
}

func TestValidate_Remote(t *testing.T) {
	url := newTestAPI(t)

	out, err := executeCommand(t, "validate", writeFile(t, "shop.yaml", shopDocument), "--local=false", "--api-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Document is valid")

	out, err = executeCommand(t, "validate", writeFile(t, "bad.yaml", rejectedDocument), "--local=false", "--api-url", url)
	assert.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed:")
}

func TestCheck(t *testing.T) {
	out, err := executeCommand(t, "check", writeFile(t, "shop.yaml", shopDocument))
	require.NoError(t, err)
	assert.Contains(t, out, "Nodes Scanned:      3")
	assert.Contains(t, out, "No integrity issues found")
}

func TestCheck_JSON(t *testing.T) {
	out, err := executeCommand(t, "check", writeFile(t, "shop.yaml", parallelDocument), "--json")
	require.NoError(t, err)

	var result struct {
		Report struct {
			Summary struct {
				ByType map[string]int `json:"by_type"`
			} `json:"summary"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Report.Summary.ByType["parallel"])
}

func TestCheck_Rejected(t *testing.T) {
	out, err := executeCommand(t, "check", writeFile(t, "bad.yaml", rejectedDocument))
	assert.ErrorContains(t, err, "blocking integrity issues")
	assert.ErrorContains(t, err, "1 nodes or links rejected")
	assert.Contains(t, out, "Rejected:")
	assert.Contains(t, out, "policy_violation: 1")
	assert.Contains(t, out, "database cannot interact with service")

	out, err = executeCommand(t, "check", writeFile(t, "bad.yaml", rejectedDocument), "--strict")
	assert.ErrorIs(t, err, document.ErrBuildFailed)
	assert.Contains(t, out, "policy_violation: 1", "the scan is reported before the strict build fails")
}

func TestCheck_UndeclaredEndpoint(t *testing.T) {
	const dangling = `name: shop
nodes:
  - name: orders
    type: service
  - name: orders-db
    type: database
links:
  - source: orders
    target: orders-db
  - source: orders
    target: payments
`
	out, err := executeCommand(t, "check", writeFile(t, "dangling.yaml", dangling), "--json")
	assert.ErrorContains(t, err, "blocking integrity issues")

	var result struct {
		Errors []string `json:"errors"`
		Report struct {
			Summary struct {
				ByType     map[string]int `json:"by_type"`
				BySeverity map[string]int `json:"by_severity"`
			} `json:"summary"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Report.Summary.ByType["invalid_reference"])
	assert.Equal(t, 1, result.Report.Summary.BySeverity["critical"])
	assert.Len(t, result.Errors, 1)
}

func TestCheck_Repair(t *testing.T) {
	path := writeFile(t, "shop.yaml", parallelDocument)

	_, err := executeCommand(t, "check", path, "--write")
	assert.ErrorContains(t, err, "--write requires --repair")

	out, err := executeCommand(t, "check", path, "--repair")
	require.NoError(t, err)
	assert.Contains(t, out, "Repair Plan:")

	unchanged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, parallelDocument, string(unchanged))

	_, err = executeCommand(t, "check", path, "--repair", "--write")
	require.NoError(t, err)

	doc, err := document.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Links, 1)
	assert.True(t, doc.Links[0].CircuitBreaker)
}

func TestShow(t *testing.T) {
	path := writeFile(t, "shop.yaml", shopDocument)

	out, err := executeCommand(t, "show", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Model: shop")
	assert.Contains(t, out, "Total: 3 nodes")
	assert.Contains(t, out, "Total: 2 interactions")
	assert.Regexp(t, `orders\s+service\s+1\s+1`, out)

	out, err = executeCommand(t, "show", path, "--role", "database")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1 nodes")

	_, err = executeCommand(t, "show", path, "--role", "queue")
	assert.ErrorContains(t, err, "unknown role")
}

func TestShow_Remote(t *testing.T) {
	out, err := executeCommand(t, "show", "--api-url", newTestAPI(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Model: served")
	assert.Contains(t, out, "Total: 2 nodes")
	assert.Regexp(t, `billing\s+billing-db\s+false`, out)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := executeCommand(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	_, err = executeCommand(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = executeCommand(t, "config", "init", path, "--force")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8095, cfg.Server.Port)
	assert.Equal(t, "microtosca", cfg.Model.Name)
}

func TestConfigShow(t *testing.T) {
	out, err := executeCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 8095")
	assert.Contains(t, out, "level: error")
}

func TestToken(t *testing.T) {
	out, err := executeCommand(t, "token", "ci", "--secret", "s3cret", "--scope", "read")
	require.NoError(t, err)
	assert.Contains(t, out, "Subject:    ci")

	lines := strings.Split(out, "\n")
	var token string
	for i, line := range lines {
		if line == "Token:" && i+1 < len(lines) {
			token = lines[i+1]
		}
	}
	require.NotEmpty(t, token)

	svc := auth.NewJWTService(&config.Config{Security: config.SecurityConfig{JWTSecret: "s3cret"}})
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
	assert.True(t, claims.HasScope(auth.ScopeRead))
	assert.False(t, claims.HasScope(auth.ScopeWrite))
}

func TestToken_Errors(t *testing.T) {
	_, err := executeCommand(t, "token", "ci")
	assert.ErrorContains(t, err, "jwt_secret not found")

	_, err = executeCommand(t, "token", "ci", "--secret", "s3cret", "--scope", "admin")
	assert.ErrorContains(t, err, "unknown scope")
}
