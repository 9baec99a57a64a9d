// =============================================================================
// Incidencias Export - Supervisor Session
// =============================================================================
//
// Session ties one supervisor's working context together: the lookup index
// served by the cache, the selected supervisor and payroll month, and the
// record collection being edited. Every CLI operation goes through here, so
// the context rules live in one place: no data entry without a selected
// supervisor and month, and changing either clears the working set.
//
// =============================================================================

package session

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/config"
	"github.com/ginjaninja78/incidencias-export/internal/costs"
	"github.com/ginjaninja78/incidencias-export/internal/export"
	"github.com/ginjaninja78/incidencias-export/internal/incidencia"
	"github.com/ginjaninja78/incidencias-export/internal/lookup"
	"github.com/ginjaninja78/incidencias-export/pkg/utils"
)

// ErrNoContext means an operation ran before a supervisor and payroll month
// were selected.
var ErrNoContext = errors.New("no supervisor and payroll month selected")

// Session is one supervisor's editing session.
type Session struct {
	cfg   *config.Config
	cache *lookup.Cache
	log   *zap.Logger

	idx *lookup.Index
	col *incidencia.Collection

	supervisor string
	month      string
}

// New builds a session over the given config and lookup cache and loads the
// master workbook once. A nil logger is replaced with a no-op one.
func New(cfg *config.Config, cache *lookup.Cache, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		cfg:   cfg,
		cache: cache,
		log:   log,
		col:   incidencia.NewCollection(cfg.App.PageSize),
	}
	s.Reload()
	return s
}

// Reload refreshes the lookup index from the master workbook; a hit on an
// unchanged file is free.
func (s *Session) Reload() {
	s.idx = s.cache.Get(s.cfg.Paths.Maestros)
}

// Lookup returns the current lookup index.
func (s *Session) Lookup() *lookup.Index { return s.idx }

// Supervisor returns the selected supervisor, or "".
func (s *Session) Supervisor() string { return s.supervisor }

// Month returns the selected payroll month, or "".
func (s *Session) Month() string { return s.month }

// Ready reports whether data entry is allowed.
func (s *Session) Ready() bool { return s.supervisor != "" && s.month != "" }

// SelectContext sets the working supervisor and payroll month. Changing
// either value discards the records entered under the previous context; the
// number of discarded records is returned.
func (s *Session) SelectContext(supervisor, month string) int {
	supervisor = strings.TrimSpace(supervisor)
	month = strings.TrimSpace(month)

	discarded := 0
	if (supervisor != s.supervisor || month != s.month) && s.col.Len() > 0 {
		discarded = s.col.DeleteAll()
		s.log.Info("context changed, working set discarded",
			zap.String("supervisor", supervisor),
			zap.String("month", month),
			zap.Int("discarded", discarded))
	}
	s.supervisor = supervisor
	s.month = month
	return discarded
}

func (s *Session) requireContext() error {
	if !s.Ready() {
		return ErrNoContext
	}
	return nil
}

// =============================================================================
// DATA ENTRY
// =============================================================================

// AddBulk appends one record per worker of the given center.
func (s *Session) AddBulk(centerCode string) (int, error) {
	if err := s.requireContext(); err != nil {
		return 0, err
	}
	return s.col.AddBulkByCenter(s.idx, s.supervisor, s.month, centerCode)
}

// AddWorker appends one record per destination center for a single worker.
func (s *Session) AddWorker(worker string, destCodes []string) (int, error) {
	if err := s.requireContext(); err != nil {
		return 0, err
	}
	return s.col.AddForWorker(s.idx, s.supervisor, s.month, worker, destCodes), nil
}

// EditPage applies edited rows of the 1-based page back into the working
// set.
func (s *Session) EditPage(page int, rows []incidencia.RawRow) error {
	if err := s.requireContext(); err != nil {
		return err
	}
	_, start := s.col.Page(page)
	return s.col.ApplyPageEdits(s.idx, s.supervisor, start, rows)
}

// ImportRows appends records built from raw workbook rows, used to resume a
// previously exported session. Rows marked for deletion are not retained;
// the returned count covers the rows that survived the import.
func (s *Session) ImportRows(rows []incidencia.RawRow) (int, error) {
	if err := s.requireContext(); err != nil {
		return 0, err
	}
	start := s.col.Len()
	for range rows {
		s.col.Append(incidencia.Record{Supervisor: s.supervisor, PayrollMonth: s.month})
	}
	if err := s.col.ApplyPageEdits(s.idx, s.supervisor, start, rows); err != nil {
		return 0, err
	}
	return s.col.Len() - start, nil
}

// DeleteSelected removes the marked rows of the 1-based page.
func (s *Session) DeleteSelected(page int, marked []bool) (int, error) {
	if err := s.requireContext(); err != nil {
		return 0, err
	}
	_, start := s.col.Page(page)
	return s.col.DeleteSelected(start, marked)
}

// DeleteMarked removes every record whose deletion checkbox was set during
// editing, across all pages.
func (s *Session) DeleteMarked() int {
	return s.col.DeleteMarked()
}

// DeleteAll empties the working set.
func (s *Session) DeleteAll() int {
	return s.col.DeleteAll()
}

// PageView returns the records of the 1-based page, the global index of its
// first record and the total page count.
func (s *Session) PageView(page int) ([]incidencia.Record, int, int) {
	recs, start := s.col.Page(page)
	return recs, start, s.col.TotalPages()
}

// Records returns a copy of the whole working set.
func (s *Session) Records() []incidencia.Record {
	return s.col.Records()
}

// =============================================================================
// METRICS AND EXPORT
// =============================================================================

// Metrics summarizes the working set for the status surfaces.
type Metrics struct {
	Total   int
	Valid   int
	Invalid int
	Totals  costs.Totals
}

// Summarize computes the session metrics; money totals cover valid records
// only.
func (s *Session) Summarize() Metrics {
	recs := s.col.Records()
	t := costs.Sum(recs, s.ssMultiplier())
	return Metrics{
		Total:   len(recs),
		Valid:   t.Records,
		Invalid: len(recs) - t.Records,
		Totals:  t,
	}
}

// Export renders the valid records into xlsx bytes and returns them with a
// generated file name. ErrNothingToExport surfaces unchanged when no record
// is complete.
func (s *Session) Export() ([]byte, string, error) {
	if err := s.requireContext(); err != nil {
		return nil, "", err
	}
	buckets := costs.BucketMap(s.idx.Motives())
	data, err := export.Build(s.col.Records(), buckets, s.ssMultiplier())
	if err != nil {
		return nil, "", err
	}
	name := s.ExportFileName()
	s.log.Info("export built",
		zap.String("file", name),
		zap.Int("bytes", len(data)),
		zap.Int("records", s.Summarize().Valid))
	return data, name, nil
}

// ExportFileName generates a collision-free export name:
// incidencias_<supervisor>_<timestamp>_<id>.xlsx.
func (s *Session) ExportFileName() string {
	return utils.GenerateExportFileName(s.supervisor)
}

func (s *Session) ssMultiplier() decimal.Decimal {
	if s.cfg.Costs.SSMultiplier > 0 {
		return decimal.NewFromFloat(s.cfg.Costs.SSMultiplier)
	}
	return costs.DefaultSSMultiplier
}
