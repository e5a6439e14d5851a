package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInitConfig,
}

func init() {
	initConfigCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	shown := *cfg
	if shown.Security.JWTSecret != "" {
		shown.Security.JWTSecret = "********"
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

const defaultConfig = `# microtosca configuration

server:
  host: 0.0.0.0
  port: 8095
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 10s
  debug: false

model:
  name: microtosca
  # file: ./architecture.yaml
  strict: false

logging:
  level: info
  format: text
  output: stdout

security:
  rate_limit: 100
  allowed_origins:
    - "*"
  auth_enabled: false
  jwt_secret: ""
  jwt_expiration: 24h

integrity:
  # scan the served model periodically, 0s disables it
  scan_interval: 0s
`

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := "config.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
	return nil
}
