package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"evalgo.org/microtosca/internal/auth"
)

var (
	tokenExpiration int64
	tokenSecret     string
	tokenScopes     []string
)

var tokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Generate an API token",
	Long: `Generate a JWT for the API server.

The token is signed with security.jwt_secret from the configuration and
carries the requested scopes. A read scope allows queries. A write scope
is needed to change the model when security.auth_enabled is set.

Examples:
  # Read and write token for the CI pipeline
  microtosca token ci

  # Read-only token valid for one week
  microtosca token dashboard --scope read --expiration 168

  # Use custom secret (overrides config)
  microtosca token ci --secret "my-custom-secret"`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenExpiration, "expiration", 0, "Token expiration in hours (default: security.jwt_expiration)")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Token secret (default: from config file)")
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scope", []string{auth.ScopeRead, auth.ScopeWrite}, "Scopes granted by the token (read, write)")
}

func runToken(cmd *cobra.Command, args []string) error {
	subject := args[0]

	secret := tokenSecret
	if secret == "" && cfg != nil {
		secret = cfg.Security.JWTSecret
	}
	if secret == "" {
		return fmt.Errorf(`jwt_secret not found in config file and --secret not provided

Please either:
  1. Add to your config.yaml:
     security:
       jwt_secret: your-secret-here

  2. Or use the --secret flag:
     microtosca token %s --secret "your-secret-here"`, subject)
	}

	for _, scope := range tokenScopes {
		if scope != auth.ScopeRead && scope != auth.ScopeWrite {
			return fmt.Errorf("unknown scope %q (use read or write)", scope)
		}
	}

	expiration := time.Duration(tokenExpiration) * time.Hour
	if expiration <= 0 {
		expiration = 24 * time.Hour
		if cfg != nil && cfg.Security.JWTExpiration > 0 {
			expiration = cfg.Security.JWTExpiration
		}
	}

	token, err := auth.GenerateToken(secret, subject, expiration, tokenScopes...)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Token Generated Successfully\n")
	fmt.Fprintf(out, "============================\n\n")
	fmt.Fprintf(out, "Subject:    %s\n", subject)
	fmt.Fprintf(out, "Scopes:     %s\n", strings.Join(tokenScopes, ", "))
	fmt.Fprintf(out, "Expiration: %s\n", expiration)
	fmt.Fprintf(out, "\nToken:\n%s\n\n", token)
	fmt.Fprintf(out, "⚠️  Keep this token secure! Anyone holding it can use the scopes above.\n")

	return nil
}
