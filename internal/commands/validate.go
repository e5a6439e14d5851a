package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"evalgo.org/microtosca/internal/document"
	"evalgo.org/microtosca/internal/validation"
	"evalgo.org/microtosca/pkg/microtosca/client"
)

var (
	validateLocal  bool
	validateAPIURL string
	validateToken  string
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate an architecture document",
	Long: `Validate an architecture document (JSON or YAML) against the node
types and the interaction policy without building a model.

Examples:
  microtosca validate shop.yaml
  microtosca validate shop.json --local=false --api-url http://localhost:8095`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateLocal, "local", true, "validate locally (default: true)")
	validateCmd.Flags().StringVar(&validateAPIURL, "api-url", "", "API server used when --local=false (default: from config)")
	validateCmd.Flags().StringVar(&validateToken, "token", "", "bearer token for the API server")
}

func runValidate(cmd *cobra.Command, args []string) error {
	filename := modelFile(args)
	if filename == "" {
		return fmt.Errorf("no document given and model.file is not configured")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	format := document.DetectFormat(filename)

	var result *validation.ValidationResult
	if validateLocal {
		result, err = validation.New().ValidateDocument(data, format)
	} else {
		result, err = validateRemote(cmd.Context(), data, format)
	}
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	return printValidation(cmd.OutOrStdout(), result)
}

// validateRemote sends the document to the API server. YAML documents are
// converted to JSON first.
func validateRemote(ctx context.Context, data []byte, format document.Format) (*validation.ValidationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if format != document.FormatJSON {
		doc, err := document.Parse(data, format)
		if err != nil {
			return &validation.ValidationResult{
				Errors: []validation.ValidationError{{Field: "document", Message: err.Error()}},
			}, nil
		}
		if data, err = document.Marshal(doc, document.FormatJSON); err != nil {
			return nil, err
		}
	}

	apiURL := validateAPIURL
	if apiURL == "" {
		apiURL = "http://" + cfg.Server.Address()
	}

	c, err := client.New(apiURL, client.WithToken(validateToken))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	remote, err := c.ValidateDocument(ctx, json.RawMessage(data))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to API: %w", err)
	}

	result := &validation.ValidationResult{Valid: remote.Valid}
	for _, e := range remote.Errors {
		result.Errors = append(result.Errors, validation.ValidationError{
			Field:   e.Field,
			Message: e.Message,
			Value:   e.Value,
		})
	}
	return result, nil
}

func printValidation(out io.Writer, result *validation.ValidationResult) error {
	if result.Valid {
		fmt.Fprintln(out, "✓ Document is valid")
		return nil
	}

	fmt.Fprintln(out, "✗ Validation failed:")
	for _, e := range result.Errors {
		if e.Value != nil {
			fmt.Fprintf(out, "  - %s: %s (value: %v)\n", e.Field, e.Message, e.Value)
		} else {
			fmt.Fprintf(out, "  - %s: %s\n", e.Field, e.Message)
		}
	}

	return fmt.Errorf("validation failed")
}
