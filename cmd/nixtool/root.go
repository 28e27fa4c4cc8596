package main

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/G-Node/nix-sub001/nix"
)

// app carries the state shared by all subcommands of one invocation
type app struct {
	v        *viper.Viper
	logger   *slog.Logger
	closeLog func() error
}

func newApp() *app {
	return &app{
		v:      viper.New(),
		logger: slog.New(slog.DiscardHandler),
	}
}

// setupConfig configures env and config file lookup. An explicit config file
// must exist; the default locations are optional.
func (a *app) setupConfig(configFile string) error {
	a.v.SetEnvPrefix("NIXTOOL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if configFile != "" {
		a.v.SetConfigFile(configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return NewConfigError("load config", err.Error(), CommonSuggestions.CheckConfig)
		}
		return nil
	}

	a.v.SetConfigName(appName)
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(".")
	a.v.AddConfigPath("$HOME/.config/" + appName)
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return NewConfigError("load config", err.Error(), CommonSuggestions.CheckConfig)
		}
	}
	return nil
}

// openFile opens a container read-only with the invocation's logger
func (a *app) openFile(path string) (*nix.File, error) {
	f, err := nix.Open(path, nix.ReadOnly, nix.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.logger.Info("opened file", "path", path, "id", f.ID())
	return f, nil
}

func newRootCmd() *cobra.Command {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Inspect and validate nix data files",
		Long: `nixtool reads nix container files (.json, .yaml, .yml) and reports on their
content: blocks, data arrays with their dimensions, tags and metadata.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (NIXTOOL_*)
3. Configuration file (--config, ./nixtool.yaml or ~/.config/nixtool/nixtool.yaml)

Examples:
  # Check a file for structural errors
  nixtool validate session.yaml

  # Summarize a file as JSON
  nixtool dump session.yaml --format json

  # Debug logging, mirrored to stderr
  NIXTOOL_LOG_LEVEL=debug nixtool validate session.yaml --log-stderr`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			if err := a.setupConfig(configFile); err != nil {
				return err
			}
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return WrapError("bind flags", err)
			}

			var echo = cmd.ErrOrStderr()
			if !a.v.GetBool("log-stderr") {
				echo = nil
			}
			logger, closeLog, err := initLogging(a.v.GetString("log-level"), echo)
			if err != nil {
				return WrapError("initialize logging", err, CommonSuggestions.CheckConfig)
			}
			a.logger, a.closeLog = logger, closeLog
			a.logger.Debug("command started", "command", cmd.Name(), "args", args, "config", a.v.ConfigFileUsed())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().Bool("log-stderr", false, "Mirror log records to stderr")

	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newDumpCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
