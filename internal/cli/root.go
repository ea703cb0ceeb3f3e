package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"renewables/internal/backend"
	"renewables/internal/config"
	applog "renewables/internal/log"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

// env is what every command needs once the environment is loaded.
type env struct {
	cfg    *config.Config
	logger *applog.Logger
}

// NewRootCommand creates the renewablesctl command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "renewablesctl",
		Short: "Inspect, render and import the renewables dataset",
		Long: "renewablesctl works on the same data backend as the renewables server,\n" +
			"selected by DATA_BACKEND (" + strings.Join(backend.GetBackendTypeStrings(), ", ") + ")\n" +
			"and the related environment variables.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "environment file to load (default: .env when present)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	rootCmd.AddCommand(
		newYearsCommand(opts),
		newRenderCommand(opts),
		newImportCommand(opts),
		newTUICommand(opts),
	)

	return rootCmd
}

// setup loads the environment and config. Logs go to the command's stderr so
// stdout stays clean for output.
func (o *rootOptions) setup(cmd *cobra.Command) (*env, error) {
	return o.setupTo(cmd.ErrOrStderr())
}

func (o *rootOptions) setupTo(logOut io.Writer) (*env, error) {
	if err := LoadEnvFile(o.envFile); err != nil {
		return nil, err
	}
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger := SetupLogger(level, logOut).WithComponent(applog.ComponentCLI)
	return &env{cfg: cfg, logger: logger}, nil
}
