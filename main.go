package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/expense-manager/cmd/backup"
	"fjacquet/expense-manager/cmd/loan"
	"fjacquet/expense-manager/cmd/record"
	"fjacquet/expense-manager/cmd/root"
	"fjacquet/expense-manager/cmd/settings"
	"fjacquet/expense-manager/cmd/stats"
	"fjacquet/expense-manager/cmd/transfer"
	"fjacquet/expense-manager/cmd/watch"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Set the global log level before any logger writes
	configureLogLevelDirectly()

	// 3. Initialize root command flags
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(record.Cmd)
	root.Cmd.AddCommand(loan.Cmd)
	root.Cmd.AddCommand(settings.Cmd)
	root.Cmd.AddCommand(stats.Cmd)
	root.Cmd.AddCommand(backup.Cmd)
	root.Cmd.AddCommand(transfer.ExportCmd)
	root.Cmd.AddCommand(transfer.ImportCmd)
	root.Cmd.AddCommand(watch.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the level of the standard logrus logger and of
// the shared command logger from LOG_LEVEL.
func configureLogLevelDirectly() logrus.Level {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	logrus.SetLevel(logLevel)
	root.Log.SetLevel(logLevel)
	return logLevel
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
