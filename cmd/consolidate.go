// =============================================================================
// Incidencias Export - Consolidate Command
// =============================================================================
//
// This file defines the 'consolidate' command, which rebuilds the master
// workbook from the raw files of one period by running the configured
// pipeline command. The current master is backed up first; the master is
// only replaced when the pipeline exits zero AND its output workbook exists.
//
// COMMAND USAGE:
//   incidencias consolidate --period 2026-03
//   incidencias consolidate --list
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/consolidate"
	"github.com/ginjaninja78/incidencias-export/pkg/logger"
)

// consolidatePeriod names the period directory to consolidate.
var consolidatePeriod string

// consolidateList only lists the periods ready for consolidation.
var consolidateList bool

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Rebuild the master workbook from a period's raw files",
	Long: `The consolidate command runs the external consolidation pipeline against
the raw files of one period and installs the resulting workbook as the new
master. The previous master is backed up under a timestamped name first.

The pipeline is bounded by the configured timeout. A zero exit code without
the expected output workbook counts as a failure and leaves the current
master untouched.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsolidate()
	},
}

func init() {
	rootCmd.AddCommand(consolidateCmd)

	consolidateCmd.Flags().StringVar(
		&consolidatePeriod,
		"period",
		"",
		"Period directory to consolidate, e.g. 2026-03",
	)
	consolidateCmd.Flags().BoolVar(
		&consolidateList,
		"list",
		false,
		"List the periods that carry every required raw file",
	)
}

func runConsolidate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runner := consolidate.NewRunner(cfg, logger.Named(log, "consolidate"))

	if consolidateList {
		ready, err := runner.Periods()
		if err != nil {
			return err
		}
		if len(ready) == 0 {
			fmt.Println(cfg.Message("no_periods", nil))
			return nil
		}
		for _, p := range ready {
			fmt.Println(p)
		}
		return nil
	}

	if consolidatePeriod == "" {
		return fmt.Errorf("either --period or --list is required")
	}

	res, err := runner.Run(context.Background(), consolidatePeriod)
	if err != nil {
		return err
	}

	fmt.Println(cfg.Message("consolidation_ok", map[string]string{"periodo": res.Period}))
	if res.BackupPath != "" {
		fmt.Printf("  Backup:   %s\n", res.BackupPath)
	}
	fmt.Printf("  Master:   %s\n", cfg.Paths.Maestros)
	fmt.Printf("  Duration: %s\n", res.Duration.Round(time.Millisecond))

	log.Info("consolidation command finished",
		zap.String("period", res.Period),
		zap.Duration("duration", res.Duration))
	return nil
}
