// =============================================================================
// Incidencias Export - File Manager
// =============================================================================
//
// FileManager owns the on-disk layout of the tool: the data directory with
// the master workbook, the per-period raw drops, and the timestamped backups
// taken before every consolidation. All paths are derived from the
// configured roots so tests can run against a temp tree.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileManager resolves and maintains the tool's directory layout.
type FileManager struct {
	DataDir      string
	PeriodsDir   string
	BackupDir    string
	MaestrosPath string
}

// NewFileManager builds a FileManager over the configured roots.
func NewFileManager(dataDir, periodsDir, backupDir, maestrosPath string) *FileManager {
	return &FileManager{
		DataDir:      dataDir,
		PeriodsDir:   periodsDir,
		BackupDir:    backupDir,
		MaestrosPath: maestrosPath,
	}
}

// EnsureDirectories creates the managed directories when missing.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.DataDir, fm.PeriodsDir, fm.BackupDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListPeriods returns the sorted period directory names under the periods
// root. A missing root is an empty list, not an error.
func (fm *FileManager) ListPeriods() ([]string, error) {
	entries, err := os.ReadDir(fm.PeriodsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading periods directory %s: %w", fm.PeriodsDir, err)
	}
	var periods []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			periods = append(periods, e.Name())
		}
	}
	sort.Strings(periods)
	return periods, nil
}

// PeriodDir returns the directory of one period.
func (fm *FileManager) PeriodDir(period string) string {
	return filepath.Join(fm.PeriodsDir, period)
}

// ValidatePeriodFiles reports, for each required file name, whether it
// exists in the period directory.
func (fm *FileManager) ValidatePeriodFiles(period string, required []string) map[string]bool {
	dir := fm.PeriodDir(period)
	present := make(map[string]bool, len(required))
	for _, name := range required {
		_, err := os.Stat(filepath.Join(dir, name))
		present[name] = err == nil
	}
	return present
}

// BackupMaestros copies the master workbook into the backup directory under
// a timestamped name and returns the backup path. A missing master is a
// no-op returning "".
func (fm *FileManager) BackupMaestros() (string, error) {
	if _, err := os.Stat(fm.MaestrosPath); os.IsNotExist(err) {
		return "", nil
	}
	if err := os.MkdirAll(fm.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	name := fmt.Sprintf("maestros_%s.xlsx", time.Now().Format("20060102_150405"))
	dst := filepath.Join(fm.BackupDir, name)
	if err := CopyFile(fm.MaestrosPath, dst); err != nil {
		return "", fmt.Errorf("backing up master workbook: %w", err)
	}
	return dst, nil
}

// GenerateExportFileName returns a collision-free export name scoped to a
// supervisor.
func GenerateExportFileName(supervisor string) string {
	sup := strings.ToLower(strings.TrimSpace(supervisor))
	sup = strings.ReplaceAll(sup, " ", "_")
	if sup == "" {
		sup = "sin_supervisor"
	}
	return fmt.Sprintf("incidencias_%s_%s_%s.xlsx",
		sup, time.Now().Format("20060102_150405"), uuid.NewString()[:8])
}

// CopyFile copies src to dst, truncating dst when present.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return out.Sync()
}
