// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/expense-manager/internal/config"
	"fjacquet/expense-manager/internal/container"
	"fjacquet/expense-manager/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags shared by every command
type CommonFlags struct {
	DataFile   string
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppConfig is the configuration loaded before each command runs
	AppConfig *config.Config

	// AppContainer holds the wired dependencies for the running command
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "expense-manager",
		Short: "A personal finance tracker for income, expenses and loans.",
		Long: `expense-manager records income and expense transactions and money lent to
others, computes the running balance and statistics over time windows, and
warns when the balance drops below configured thresholds.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.Warnf("Failed to close container: %v", err)
			}
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.DataFile, "data", "d", "", "Ledger data file (overrides data.file)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Configuration file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text or json)")
}

// initialize loads configuration, applies flag overrides and builds the container.
// A container injected beforehand is kept.
func initialize(cmd *cobra.Command) error {
	config.LoadEnv()

	if AppContainer != nil {
		AppConfig = AppContainer.GetConfig()
		return nil
	}

	cfg, err := config.LoadConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	Log = config.ConfigureLoggingFromConfig(cfg)
	c, err := container.NewContainer(cfg, container.WithLogger(GetLogrusAdapter()))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	AppConfig = cfg
	AppContainer = c
	Log.WithField("command", cmd.Name()).Debug("Application initialized")
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	if SharedFlags.DataFile != "" {
		cfg.Data.File = SharedFlags.DataFile
	}
	if SharedFlags.LogLevel != "" {
		if _, err := logrus.ParseLevel(SharedFlags.LogLevel); err == nil {
			cfg.Log.Level = SharedFlags.LogLevel
		} else {
			Log.Warnf("Ignoring invalid --log-level %q", SharedFlags.LogLevel)
		}
	}
	switch SharedFlags.LogFormat {
	case "":
	case "text", "json":
		cfg.Log.Format = SharedFlags.LogFormat
	default:
		Log.Warnf("Ignoring invalid --log-format %q", SharedFlags.LogFormat)
	}
}

// GetContainer returns the application container, or an error when no command
// initialized it.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application container not initialized")
	}
	return AppContainer, nil
}

// GetConfig returns the loaded configuration, or nil before initialization.
func GetConfig() *config.Config {
	return AppConfig
}

// GetLogrusAdapter wraps the shared logrus logger in the logging interface.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}
