// =============================================================================
// Incidencias Export - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the working
// environment without touching anything:
//
//   1. Configuration file loads and passes validation
//   2. Master workbook opens; sheet-level warnings are listed
//   3. Lookup counts (centers, workers, tariffs, motives)
//   4. Per-period raw file completeness
//
// COMMAND USAGE:
//   incidencias validate [--period 2026-03]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/consolidate"
	"github.com/ginjaninja78/incidencias-export/internal/lookup"
	"github.com/ginjaninja78/incidencias-export/internal/maestros"
	"github.com/ginjaninja78/incidencias-export/pkg/logger"
)

// validatePeriod limits the raw-file check to one period.
var validatePeriod string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, master workbook and period files",
	Long: `The validate command loads the configuration, opens the master workbook
and reports what the tool can see: lookup table sizes, loader warnings, and
which periods carry every raw file consolidation needs. Nothing is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&validatePeriod,
		"period",
		"",
		"Check the raw files of a single period only",
	)
}

func runValidate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Printf("Configuration OK: %s\n", cfgFile)

	loader := maestros.NewLoader(cfg.Load.ExcludedSupervisors, cfg.Costs.SSMultiplier, logger.Named(log, "maestros"))
	cache, err := lookup.NewCache(loader, cfg.App.CacheEntries, logger.Named(log, "lookup"))
	if err != nil {
		return fmt.Errorf("building lookup cache: %w", err)
	}

	idx := cache.Get(cfg.Paths.Maestros)
	if maestros.IsSentinelHash(idx.Hash()) {
		fmt.Printf("Master workbook: MISSING (%s)\n", cfg.Paths.Maestros)
	} else {
		fmt.Printf("Master workbook: %s\n", cfg.Paths.Maestros)
	}
	fmt.Printf("  Centers:     %d\n", len(idx.CenterCodes()))
	fmt.Printf("  Workers:     %d\n", len(idx.Employees()))
	fmt.Printf("  Supervisors: %d\n", len(idx.Supervisors()))
	fmt.Printf("  Motives:     %d\n", len(idx.Motives()))
	for _, w := range idx.Warnings() {
		fmt.Printf("  WARNING: %s\n", w)
	}

	runner := consolidate.NewRunner(cfg, logger.Named(log, "consolidate"))
	periods, err := runner.AllPeriods()
	if err != nil {
		return err
	}
	for _, p := range periods {
		if validatePeriod != "" && p != validatePeriod {
			continue
		}
		present := runner.ValidateFiles(p)
		complete := true
		for _, ok := range present {
			if !ok {
				complete = false
			}
		}
		status := "READY"
		if !complete {
			status = "INCOMPLETE"
		}
		fmt.Printf("Period %s: %s\n", p, status)
		for name, ok := range present {
			mark := "ok"
			if !ok {
				mark = "missing"
			}
			fmt.Printf("  %-30s %s\n", name, mark)
		}
	}
	if len(periods) == 0 {
		fmt.Println(cfg.Message("no_periods", nil))
	}

	log.Info("validation finished",
		zap.Int("centers", len(idx.CenterCodes())),
		zap.Int("workers", len(idx.Employees())),
		zap.Int("periods", len(periods)))
	return nil
}
