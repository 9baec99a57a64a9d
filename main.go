// =============================================================================
// Incidencias Export - Main Entry Point
// =============================================================================
//
// This is the main entry point for the incidencias CLI application: a
// data-entry and reporting tool that loads a master roster workbook
// (maestros.xlsx), records personnel incidence entries against it, and
// exports a computed, SS-adjusted cost report back to a workbook.
//
// USAGE:
//   incidencias validate       - Load the master workbook and report its state
//   incidencias export         - Run an entries file through the cost pipeline
//   incidencias consolidate    - Rebuild the master workbook for a period
//   incidencias version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (not for external import)
//   - pkg/           : Shared utilities (logger, file management)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/incidencias-export/cmd"
)

func main() {
	cmd.Execute()
}
