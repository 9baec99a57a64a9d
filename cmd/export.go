// =============================================================================
// Incidencias Export - Export Command
// =============================================================================
//
// This file defines the 'export' command, the main pipeline of the tool:
//
//   1. Load configuration and the master workbook lookups
//   2. Select the supervisor and payroll month context
//   3. Read the entries workbook (one row per incident, editor columns)
//   4. Derive master data per row (category, costs, night tariff, origin)
//   5. Build the payroll export with cost buckets and SS-adjusted totals
//   6. Write it under a collision-free name and print the summary
//
// COMMAND USAGE:
//   incidencias export --input entradas.xlsx \
//       --supervisor "Laura Vega" --month 03-Marzo [--output ./out]
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/incidencia"
	"github.com/ginjaninja78/incidencias-export/internal/lookup"
	"github.com/ginjaninja78/incidencias-export/internal/maestros"
	"github.com/ginjaninja78/incidencias-export/internal/session"
	"github.com/ginjaninja78/incidencias-export/pkg/logger"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// exportInput is the entries workbook to read incident rows from.
var exportInput string

// exportOutput is the directory the export workbook is written to.
var exportOutput string

// exportSupervisor is the operations supervisor the session belongs to.
var exportSupervisor string

// exportMonth is the payroll month the costs bill to ("03-Marzo").
var exportMonth string

// =============================================================================
// EXPORT COMMAND DEFINITION
// =============================================================================

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build the payroll export from an entries workbook",
	Long: `The export command reads incident rows from an entries workbook, derives
the master data for each row (worker category, hourly cost, night tariff,
origin center, supervisor), and writes the payroll export workbook with the
account buckets and the social-security adjusted total per row.

Rows missing a required field (worker, billable flag, motive, destination
center, date) are reported and left out of the export.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportInput, "input", "", "Entries workbook with incident rows (required)")
	exportCmd.Flags().StringVar(&exportOutput, "output", ".", "Directory to write the export workbook to")
	exportCmd.Flags().StringVar(&exportSupervisor, "supervisor", "", "Operations supervisor for the session (required)")
	exportCmd.Flags().StringVar(&exportMonth, "month", "", `Payroll month, e.g. "03-Marzo" (required)`)

	exportCmd.MarkFlagRequired("input")
	exportCmd.MarkFlagRequired("supervisor")
	exportCmd.MarkFlagRequired("month")
}

// =============================================================================
// EXPORT PIPELINE
// =============================================================================

func runExport() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !validMonth(exportMonth) {
		return fmt.Errorf("unknown payroll month %q, expected one of %v", exportMonth, incidencia.Months)
	}

	loader := maestros.NewLoader(cfg.Load.ExcludedSupervisors, cfg.Costs.SSMultiplier, logger.Named(log, "maestros"))
	cache, err := lookup.NewCache(loader, cfg.App.CacheEntries, logger.Named(log, "lookup"))
	if err != nil {
		return fmt.Errorf("building lookup cache: %w", err)
	}

	s := session.New(cfg, cache, logger.Named(log, "session"))
	s.SelectContext(exportSupervisor, exportMonth)

	rows, err := readEntries(exportInput)
	if err != nil {
		return err
	}
	if _, err := s.ImportRows(rows); err != nil {
		return fmt.Errorf("importing entries: %w", err)
	}

	m := s.Summarize()
	fmt.Printf("Entries: %d total, %d valid, %d incomplete\n", m.Total, m.Valid, m.Invalid)
	for i, rec := range s.Records() {
		if missing := rec.MissingFields(); len(missing) > 0 {
			fmt.Printf("  row %d skipped, missing: %v\n", i+1, missing)
		}
	}

	data, name, err := s.Export()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(exportOutput, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(exportOutput, name)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing export workbook: %w", err)
	}

	fmt.Printf("Export written: %s\n", outPath)
	fmt.Printf("  Base amount:      %s\n", m.Totals.Base.StringFixed(2))
	fmt.Printf("  Night amount:     %s\n", m.Totals.Night.StringFixed(2))
	fmt.Printf("  Transfers:        %s\n", m.Totals.Transfers.StringFixed(2))
	fmt.Printf("  Total (no SS):    %s\n", m.Totals.Simple.StringFixed(2))
	fmt.Printf("  Total (with SS):  %s\n", m.Totals.WithSS.StringFixed(2))

	log.Info("export finished",
		zap.String("output", outPath),
		zap.Int("valid", m.Valid),
		zap.Int("skipped", m.Invalid))
	return nil
}

func validMonth(month string) bool {
	for _, m := range incidencia.Months {
		if m == month {
			return true
		}
	}
	return false
}

// readEntries reads the first sheet of the entries workbook into raw rows
// keyed by header name. Coercion happens downstream in the collection.
func readEntries(path string) ([]incidencia.RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening entries workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("entries workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading entries sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("entries workbook %s has no data rows", path)
	}

	headers := rows[0]
	var out []incidencia.RawRow
	for _, row := range rows[1:] {
		raw := make(incidencia.RawRow, len(headers))
		empty := true
		for i, h := range headers {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			if v != "" {
				empty = false
			}
			raw[h] = v
		}
		if !empty {
			out = append(out, raw)
		}
	}
	return out, nil
}
