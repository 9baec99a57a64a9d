// =============================================================================
// Incidencias Export - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All subcommands
// attach to it:
//
//   incidencias
//   ├── validate     (check configuration, master workbook and periods)
//   ├── export       (build the payroll export from an entries workbook)
//   ├── consolidate  (rebuild the master workbook from a period's raw files)
//   └── version
//
// The root command owns the global flags (--config, --verbose), loads the
// optional .env overrides and sets up the shared zap logger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/config"
	"github.com/ginjaninja78/incidencias-export/pkg/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file; override with
// --config.
var cfgFile string

// verbose enables debug logging when set.
var verbose bool

// log is the shared logger, set up before any subcommand runs.
var log *zap.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "incidencias",
	Short: "Incidencias Export - Payroll incident entry and SS-adjusted cost export",
	Long: `Incidencias Export is a CLI tool for operations supervisors to record
payroll incidents (extra hours, night shifts, transfers) against the centers
and workers of the master workbook, and to export them as a payroll-ready
XLSX with per-account cost buckets and social-security adjusted totals.

Key Features:
  - Master workbook (maestros.xlsx) loading with content-hash cached lookups
  - Bulk entry per center or per worker across several destination centers
  - Paged editing with automatic re-derivation when the worker changes
  - Cost buckets (73/72/70_71/74) and SS-adjusted totals on export
  - Consolidation of a period's raw files into a fresh master workbook

Example Usage:
  incidencias validate                         # Check config, master and periods
  incidencias export --input entradas.xlsx \
      --supervisor "Laura Vega" --month 03-Marzo
  incidencias consolidate --period 2026-03     # Rebuild the master workbook`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	cobra.OnInitialize(initRuntime)
}

// initRuntime runs once before any subcommand: .env overrides (optional,
// a missing file is fine) and the shared logger. CONFIG_PATH relocates the
// configuration file unless --config was given explicitly.
func initRuntime() {
	_ = godotenv.Load()
	log = logger.Must(logger.New(verbose))

	if v := os.Getenv("CONFIG_PATH"); v != "" && !rootCmd.PersistentFlags().Changed("config") {
		cfgFile = v
	}
}

// loadConfig reads the configuration file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration %s: %w", cfgFile, err)
	}
	return cfg, nil
}
