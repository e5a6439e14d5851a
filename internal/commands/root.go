package commands

import (
	"fmt"
	"io"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"evalgo.org/microtosca/internal/config"
	"evalgo.org/microtosca/internal/logging"
	"evalgo.org/microtosca/internal/version"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logrus.Logger

	// logCloser releases the log file opened by initConfig
	logCloser io.Closer = nopCloser{}
)

var rootCmd = &cobra.Command{
	Use:   "microtosca",
	Short: "Typed architecture graphs for microservice systems",
	Long: `microtosca models a microservice architecture as a typed graph of
services, message routers, message brokers and databases connected by
interacts-with relationships.

Every relationship is checked against the interaction policy when it is
created, so a loaded model can only contain role pairs that are allowed.
Documents can be validated and checked offline or served over a REST API.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func Execute() error {
	rootCmd.Version = version.Version
	defer func() { _ = logCloser.Close() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (json, text)")

	// These should never fail as flags are defined above
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))   //nolint:errcheck
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format")) //nolint:errcheck

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

// initConfig loads the configuration and sets up logging before any
// subcommand runs. Flags override the file and the environment.
func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if lvl := viper.GetString("logging.level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if format := viper.GetString("logging.format"); format != "" {
		cfg.Logging.Format = format
	}

	newLogger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("error configuring logging: %w", err)
	}
	_ = logCloser.Close()
	logger, logCloser = newLogger, closer
	return nil
}

// componentLogger returns a standard logger for the packages that log through
// *log.Logger, writing at the given level.
func componentLogger(level logrus.Level) (*log.Logger, io.Closer) {
	if logger == nil {
		return log.New(io.Discard, "", 0), nopCloser{}
	}
	return logging.Std(logger, level)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		info := version.Get()
		fmt.Fprintln(out, info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Fprintf(out, "\nDetails:\n")
			fmt.Fprintf(out, "  Version:    %s\n", info.Version)
			fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  Built:      %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
