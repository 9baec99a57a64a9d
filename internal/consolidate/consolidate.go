// =============================================================================
// Incidencias Export - Master Consolidation Runner
// =============================================================================
//
// Consolidation rebuilds the master workbook from the raw files of one
// period by running the external pipeline command. The runner backs up the
// current master first, enforces the configured timeout, and only replaces
// the master when the pipeline both exits zero and actually produced its
// output workbook. A zero exit without output is treated as a failure.
//
// =============================================================================

package consolidate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/config"
	"github.com/ginjaninja78/incidencias-export/pkg/utils"
)

var (
	// ErrTimeout means the pipeline exceeded the configured deadline.
	ErrTimeout = errors.New("consolidation timed out")

	// ErrNoOutput means the pipeline exited zero but produced no output
	// workbook.
	ErrNoOutput = errors.New("consolidation produced no output workbook")
)

// stderrLimit bounds how much pipeline stderr is carried into error
// messages.
const stderrLimit = 500

// Result describes a successful consolidation.
type Result struct {
	Period     string
	BackupPath string
	OutputPath string
	Duration   time.Duration
}

// Runner executes the consolidation pipeline.
type Runner struct {
	cfg *config.Config
	fm  *utils.FileManager
	log *zap.Logger
}

// NewRunner builds a Runner. A nil logger is replaced with a no-op one.
func NewRunner(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	fm := utils.NewFileManager(cfg.Paths.Data, cfg.Paths.Periods, cfg.Paths.Backups, cfg.Paths.Maestros)
	return &Runner{cfg: cfg, fm: fm, log: log}
}

// Periods lists the period directories that carry every required raw file.
func (r *Runner) Periods() ([]string, error) {
	all, err := r.fm.ListPeriods()
	if err != nil {
		return nil, err
	}
	var ready []string
	for _, p := range all {
		if allPresent(r.ValidateFiles(p)) {
			ready = append(ready, p)
		}
	}
	return ready, nil
}

// AllPeriods lists every period directory, complete or not.
func (r *Runner) AllPeriods() ([]string, error) {
	return r.fm.ListPeriods()
}

// ValidateFiles reports, per required raw file, whether the period carries
// it. The "tarifarios" entry is static: its file lives in the data directory
// rather than in the period folder.
func (r *Runner) ValidateFiles(period string) map[string]bool {
	var periodFiles []string
	present := make(map[string]bool, len(r.cfg.Consolidation.RequiredFiles))
	for key, name := range r.cfg.Consolidation.RequiredFiles {
		if key == "tarifarios" {
			_, err := os.Stat(filepath.Join(r.cfg.Paths.Data, name))
			present[name] = err == nil
			continue
		}
		periodFiles = append(periodFiles, name)
	}
	for name, ok := range r.fm.ValidatePeriodFiles(period, periodFiles) {
		present[name] = ok
	}
	return present
}

func allPresent(m map[string]bool) bool {
	if len(m) == 0 {
		return false
	}
	for _, ok := range m {
		if !ok {
			return false
		}
	}
	return true
}

// Run consolidates one period: backup, pipeline, output check, master
// replacement. The context bounds the pipeline on top of the configured
// timeout.
func (r *Runner) Run(ctx context.Context, period string) (*Result, error) {
	if len(r.cfg.Consolidation.Command) == 0 {
		return nil, errors.New("no consolidation command configured")
	}
	if missing := missingFiles(r.ValidateFiles(period)); len(missing) > 0 {
		return nil, fmt.Errorf("period %s is missing raw files: %v", period, missing)
	}

	backup, err := r.fm.BackupMaestros()
	if err != nil {
		return nil, err
	}
	if backup != "" {
		r.log.Info("master workbook backed up", zap.String("backup", backup))
	}

	timeout := time.Duration(r.cfg.Consolidation.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	periodDir := r.fm.PeriodDir(period)
	args := append(append([]string{}, r.cfg.Consolidation.Command[1:]...), periodDir)
	cmd := exec.CommandContext(runCtx, r.cfg.Consolidation.Command[0], args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		r.log.Error("consolidation timed out",
			zap.String("period", period),
			zap.Duration("elapsed", elapsed))
		return nil, fmt.Errorf("period %s after %s: %w", period, elapsed.Round(time.Second), ErrTimeout)
	}
	if runErr != nil {
		return nil, fmt.Errorf("consolidation pipeline failed for period %s: %w (stderr: %s)",
			period, runErr, truncate(stderr.Bytes(), stderrLimit))
	}

	output := filepath.Join(periodDir, filepath.FromSlash(r.cfg.Consolidation.OutputRelPath))
	if _, err := os.Stat(output); err != nil {
		return nil, fmt.Errorf("period %s: %w (expected %s)", period, ErrNoOutput, output)
	}

	if err := utils.CopyFile(output, r.cfg.Paths.Maestros); err != nil {
		return nil, fmt.Errorf("installing consolidated master: %w", err)
	}

	r.log.Info("consolidation finished",
		zap.String("period", period),
		zap.Duration("elapsed", elapsed),
		zap.String("master", r.cfg.Paths.Maestros))

	return &Result{
		Period:     period,
		BackupPath: backup,
		OutputPath: output,
		Duration:   elapsed,
	}, nil
}

func missingFiles(present map[string]bool) []string {
	var missing []string
	for name, ok := range present {
		if !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
