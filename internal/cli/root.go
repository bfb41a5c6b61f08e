// Package cli implements the gantry command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rpggio/gantry/internal/config"
)

// env is the state shared by every command once PersistentPreRunE ran.
type env struct {
	version string

	// flags
	configPath string
	envFile    string
	logLevel   string
	as         string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func()
}

// NewRootCommand builds the gantry command tree.
func NewRootCommand(version string) *cobra.Command {
	e := &env{version: version, closeLog: func() {}}

	root := &cobra.Command{
		Use:   "gantry",
		Short: "Gantry - team capacity and Gantt timelines",
		Long: `Gantry plans dated projects and tasks and shows how loaded each
person is week by week. It serves a REST API and MCP tools, and draws
charts in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.closeLog()
		},
	}

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "Path to YAML config file (default $GANTRY_CONFIG_PATH)")
	root.PersistentFlags().StringVar(&e.envFile, "env-file", ".env", "Dotenv file loaded when present")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&e.as, "as", "", "Person (email or ID) to act as (default $GANTRY_AUTH_DEV_PERSON_ID)")

	root.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newPersonCmd(e),
		newAPIKeyCmd(e),
		newChartCmd(e),
		newTUICmd(e),
		newConfigCmd(e),
	)
	root.Version = version
	return root
}

// Execute runs the root command
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

func (e *env) setup(cmd *cobra.Command) error {
	if e.envFile != "" {
		if err := godotenv.Load(e.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", e.envFile, err)
		}
	}

	path := e.configPath
	if path == "" {
		path = os.Getenv("GANTRY_CONFIG_PATH")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}
	if f := cmd.Flags().Lookup("transport"); f != nil && f.Changed {
		cfg.Transport.Mode = f.Value.String()
	}
	if e.as == "" {
		e.as = cfg.Auth.DevPersonID
	}
	e.cfg = cfg

	// Only the HTTP server may log to stdout; everything else keeps stdout
	// for command output or the stdio protocol.
	w := cmd.ErrOrStderr()
	if cmd.Name() == "serve" && cfg.Transport.Mode == "http" {
		w = cmd.OutOrStdout()
	}
	logger, closeLog, err := newLogger(w, cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("log file error: %w", err)
	}
	e.logger = logger
	e.closeLog = closeLog
	return nil
}
