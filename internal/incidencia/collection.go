// =============================================================================
// Incidencias Export - Record Collection
// =============================================================================
//
// Collection holds the working set of incident records for one supervisor
// session and implements the editing operations over it: bulk add by center,
// per-worker add over several destinations, paged edits with the
// worker-change cascade, and the two deletion flows. All indexes exposed to
// callers are page-relative; the collection translates them to global
// positions.
//
// =============================================================================

package incidencia

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/incidencias-export/internal/lookup"
	"github.com/ginjaninja78/incidencias-export/internal/normalize"
)

var (
	// ErrNoEmployees means a bulk add targeted a center with no workers.
	ErrNoEmployees = errors.New("no employees found for the selected center")

	// ErrNoRowsMarked means a selective delete found no checked rows.
	ErrNoRowsMarked = errors.New("no rows marked for deletion")
)

// DefaultPageSize is the editor page length used when none is configured.
const DefaultPageSize = 50

// Collection is the editable set of incident records.
type Collection struct {
	records  []Record
	pageSize int
}

// NewCollection builds an empty collection with the given page size; sizes
// below 1 fall back to DefaultPageSize.
func NewCollection(pageSize int) *Collection {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Collection{pageSize: pageSize}
}

// Len returns the number of records held.
func (c *Collection) Len() int { return len(c.records) }

// PageSize returns the configured page length.
func (c *Collection) PageSize() int { return c.pageSize }

// Records returns a copy of all records in insertion order.
func (c *Collection) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Valid returns copies of the records that carry every required field.
func (c *Collection) Valid() []Record {
	var out []Record
	for i := range c.records {
		if c.records[i].IsValid() {
			out = append(out, c.records[i])
		}
	}
	return out
}

// Append adds pre-built records, used by workbook imports.
func (c *Collection) Append(recs ...Record) {
	c.records = append(c.records, recs...)
}

// =============================================================================
// ADDING RECORDS
// =============================================================================

// AddBulkByCenter appends one record per worker whose preferred center is
// centerCode, with that center as the destination. The operation is atomic:
// a center without workers adds nothing and returns ErrNoEmployees.
func (c *Collection) AddBulkByCenter(idx *lookup.Index, supervisor, month, centerCode string) (int, error) {
	code := normalize.NumericID(centerCode)
	workers := idx.EmployeesByCenter(code)
	if len(workers) == 0 {
		return 0, fmt.Errorf("center %s: %w", code, ErrNoEmployees)
	}

	added := make([]Record, 0, len(workers))
	for _, name := range workers {
		rec := Record{
			Supervisor:     supervisor,
			PayrollMonth:   month,
			DestCenterCode: code,
			DestCenterName: idx.CenterName(code),
		}
		applyEmployee(&rec, idx, name, supervisor)
		added = append(added, rec)
	}
	c.records = append(c.records, added...)
	return len(added), nil
}

// AddForWorker appends one record per destination center for a single
// worker. Destination codes are canonicalized; unknown centers keep an empty
// description. An empty destination list adds a single record with no
// destination, left for the editor to fill in.
func (c *Collection) AddForWorker(idx *lookup.Index, supervisor, month, worker string, destCodes []string) int {
	if len(destCodes) == 0 {
		destCodes = []string{""}
	}
	for _, raw := range destCodes {
		code := normalize.NumericID(raw)
		rec := Record{
			Supervisor:     supervisor,
			PayrollMonth:   month,
			DestCenterCode: code,
			DestCenterName: idx.CenterName(code),
		}
		applyEmployee(&rec, idx, worker, supervisor)
		c.records = append(c.records, rec)
	}
	return len(destCodes)
}

// applyEmployee fills the worker-derived fields of rec from the lookup
// index. The employee's own supervisor wins over the session supervisor; an
// unknown worker keeps the name and the fallback supervisor with the master
// fields cleared, so stale values from a previous worker never linger.
func applyEmployee(rec *Record, idx *lookup.Index, worker, fallbackSupervisor string) {
	rec.Worker = strings.ToUpper(strings.TrimSpace(worker))
	rec.Supervisor = fallbackSupervisor
	rec.Category = ""
	rec.Service = ""
	rec.AgreementCode = ""
	rec.ContractPercent = ""
	rec.CompanyCode = ""
	rec.HourlyCost = 0
	rec.HourlyRate = 0
	rec.OriginCenterCode = ""
	rec.CenterName = ""
	rec.NightRate = 0

	e, ok := idx.Employee(rec.Worker)
	if !ok {
		return
	}

	rec.Category = e.Category
	rec.Service = e.ServiceType
	rec.AgreementCode = e.AgreementCode
	rec.ContractPercent = e.ContractPercent
	rec.CompanyCode = e.CompanyCode
	rec.HourlyCost = e.HourlyCost
	rec.HourlyRate = e.HourlyCost
	rec.OriginCenterCode = e.PreferredCenterCode
	rec.CenterName = e.PreferredCenterName
	rec.NightRate = idx.NightRate(e.Category, e.AgreementCode)
	if e.Supervisor != "" {
		rec.Supervisor = e.Supervisor
	}
}

// =============================================================================
// PAGED EDITING
// =============================================================================

// RawRow is one edited editor row keyed by display column name. Values are
// the raw strings from the editing surface; coercion happens here.
type RawRow map[string]string

// Editor column names accepted by ApplyPageEdits.
const (
	ColDelete       = "Borrar"
	ColWorker       = "Trabajador"
	ColBillable     = "Facturable"
	ColReason       = "Motivo"
	ColDestCode     = "Código Crown Destino"
	ColDestCompany  = "Empresa Destino"
	ColHours        = "Incidencia_horas"
	ColHourlyRate   = "Incidencia_precio"
	ColNightHours   = "Nocturnidad_horas"
	ColTransfers    = "Traslados_total"
	ColDate         = "Fecha"
	ColObservations = "Observaciones"
)

// ApplyPageEdits writes the edited rows of one page back into the
// collection. start is the global index of the page's first record. A row
// whose worker changed is re-derived from the master (category, costs, night
// rate, origin center, supervisor) while its entered hours, amounts and
// destination survive. Rows marked for deletion are dropped, not carried
// forward.
func (c *Collection) ApplyPageEdits(idx *lookup.Index, supervisor string, start int, rows []RawRow) error {
	if start < 0 || start > len(c.records) {
		return fmt.Errorf("page start %d out of range (records: %d)", start, len(c.records))
	}
	if start+len(rows) > len(c.records) {
		return fmt.Errorf("page edits span %d rows past the end", start+len(rows)-len(c.records))
	}

	for i, row := range rows {
		rec := &c.records[start+i]

		// A marked row is removed after the loop; its other edits are not
		// applied.
		if _, ok := row[ColDelete]; ok {
			rec.Delete = parseBool(row[ColDelete])
			if rec.Delete {
				continue
			}
		}

		newWorker := strings.ToUpper(normalize.Text(value(row, ColWorker)))
		if newWorker != "" && newWorker != rec.Worker {
			dest, destName := rec.DestCenterCode, rec.DestCenterName
			prevRate := rec.HourlyRate
			applyEmployee(rec, idx, newWorker, supervisor)
			rec.DestCenterCode, rec.DestCenterName = dest, destName
			// The row's entered price survives the worker change; only a
			// record that never had one takes the new employee's cost.
			if prevRate != 0 {
				rec.HourlyRate = prevRate
			}
		}

		if v, ok := row[ColBillable]; ok {
			rec.Billable = normalize.Text(v)
		}
		if v, ok := row[ColReason]; ok {
			rec.Reason = normalize.Text(v)
		}
		if v, ok := row[ColDestCode]; ok {
			rec.DestCenterCode = normalize.NumericID(normalize.Text(v))
			rec.DestCenterName = idx.CenterName(rec.DestCenterCode)
		}
		if v, ok := row[ColDestCompany]; ok {
			rec.DestCompany = normalize.Text(v)
		}
		if v, ok := row[ColHours]; ok {
			rec.Hours = normalize.Float(v)
		}
		if v, ok := row[ColHourlyRate]; ok {
			rec.HourlyRate = normalize.Float(v)
		}
		if v, ok := row[ColNightHours]; ok {
			rec.NightHours = normalize.Float(v)
		}
		if v, ok := row[ColTransfers]; ok {
			rec.Transfers = normalize.Float(v)
		}
		if v, ok := row[ColDate]; ok {
			rec.Date = normalize.Text(v)
		}
		if v, ok := row[ColObservations]; ok {
			rec.Observations = normalize.Text(v)
		}
	}

	c.DeleteMarked()
	return nil
}

func value(row RawRow, key string) string {
	return row[key]
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "sí", "si", "x", "yes", "verdadero":
		return true
	}
	return false
}

// =============================================================================
// DELETION
// =============================================================================

// DeleteSelected removes the records of one page whose marked flag is set.
// start is the global index of the page's first record; marked aligns with
// the page rows. Removal happens at descending global indexes so earlier
// removals cannot shift later ones. Returns the number of removed records or
// ErrNoRowsMarked.
func (c *Collection) DeleteSelected(start int, marked []bool) (int, error) {
	var globals []int
	for i, m := range marked {
		if !m {
			continue
		}
		g := start + i
		if g < 0 || g >= len(c.records) {
			return 0, fmt.Errorf("marked row %d out of range (records: %d)", g, len(c.records))
		}
		globals = append(globals, g)
	}
	if len(globals) == 0 {
		return 0, ErrNoRowsMarked
	}

	sort.Sort(sort.Reverse(sort.IntSlice(globals)))
	for _, g := range globals {
		c.records = append(c.records[:g], c.records[g+1:]...)
	}
	return len(globals), nil
}

// DeleteMarked removes every record whose Delete flag is set, across all
// pages, and returns how many were removed.
func (c *Collection) DeleteMarked() int {
	kept := c.records[:0]
	removed := 0
	for i := range c.records {
		if c.records[i].Delete {
			removed++
			continue
		}
		kept = append(kept, c.records[i])
	}
	c.records = kept
	return removed
}

// DeleteAll empties the collection and returns how many records it held.
func (c *Collection) DeleteAll() int {
	n := len(c.records)
	c.records = nil
	return n
}

// =============================================================================
// PAGINATION
// =============================================================================

// TotalPages returns the page count, never less than 1.
func (c *Collection) TotalPages() int {
	if len(c.records) == 0 {
		return 1
	}
	return (len(c.records) + c.pageSize - 1) / c.pageSize
}

// Page returns copies of the records on 1-based page n together with the
// global index of the first one. Out-of-range pages are clamped.
func (c *Collection) Page(n int) ([]Record, int) {
	if n < 1 {
		n = 1
	}
	if t := c.TotalPages(); n > t {
		n = t
	}
	start := (n - 1) * c.pageSize
	if start >= len(c.records) {
		return nil, start
	}
	end := start + c.pageSize
	if end > len(c.records) {
		end = len(c.records)
	}
	page := make([]Record, end-start)
	copy(page, c.records[start:end])
	return page, start
}
