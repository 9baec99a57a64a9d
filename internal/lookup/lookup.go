// =============================================================================
// Incidencias Export - Lookup Index
// =============================================================================
//
// The lookup Index turns the cleaned master tables into the constant-time
// lookups the data-entry flow needs: night rate by (category, agreement),
// employee by name, center name by code, plus the sorted selection lists for
// supervisors, employees and centers. Indexes are immutable once built and
// shared by pointer.
//
// =============================================================================

package lookup

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/incidencias-export/internal/maestros"
	"github.com/ginjaninja78/incidencias-export/internal/normalize"
)

// RateKey identifies a night tariff: canonical category plus canonical
// agreement code.
type RateKey struct {
	Category  string
	Agreement string
}

// Index is the immutable lookup view over one loaded master workbook.
type Index struct {
	hash     string
	warnings []string

	rates     map[RateKey]float64
	employees map[string]maestros.Employee
	centers   map[string]maestros.Center

	// byCenter groups employee names by preferred-center code, sorted.
	byCenter map[string][]string

	supervisors  []string
	workerNames  []string
	workerByHome []string
	centerCodes  []string
	centersShown []string
	motives      []maestros.MotiveRow
}

// Build constructs the Index for a loaded Master.
func Build(m *maestros.Master) *Index {
	idx := &Index{
		hash:      m.Hash,
		warnings:  m.Warnings,
		rates:     BuildRates(m.Tariffs),
		employees: BuildEmployees(m.Employees),
		centers:   make(map[string]maestros.Center, len(m.Centers)),
		byCenter:  make(map[string][]string),
		motives:   m.Motives,
	}

	supSet := make(map[string]struct{})
	for _, c := range m.Centers {
		idx.centers[c.Code] = c
		idx.centerCodes = append(idx.centerCodes, c.Code)
		idx.centersShown = append(idx.centersShown, c.DisplayName)
		if c.Supervisor != "" {
			supSet[c.Supervisor] = struct{}{}
		}
	}

	for name, e := range idx.employees {
		idx.workerNames = append(idx.workerNames, name)
		idx.workerByHome = append(idx.workerByHome,
			e.PreferredCenterCode+" - "+name)
		if e.PreferredCenterCode != "" {
			idx.byCenter[e.PreferredCenterCode] = append(idx.byCenter[e.PreferredCenterCode], name)
		}
		if e.Supervisor != "" {
			supSet[e.Supervisor] = struct{}{}
		}
	}

	for s := range supSet {
		idx.supervisors = append(idx.supervisors, s)
	}

	sort.Strings(idx.supervisors)
	sort.Strings(idx.workerNames)
	sort.Strings(idx.workerByHome)
	sort.Strings(idx.centerCodes)
	sort.Strings(idx.centersShown)
	for _, names := range idx.byCenter {
		sort.Strings(names)
	}

	return idx
}

// BuildRates folds tariff rows into a rate map keyed by canonical category
// and agreement code. Rows with an empty normalized category or agreement
// code, or an unparsable rate, are skipped; duplicate keys resolve to the
// last row seen.
func BuildRates(rows []maestros.TariffRow) map[RateKey]float64 {
	rates := make(map[RateKey]float64, len(rows))
	for _, r := range rows {
		rate := strings.TrimSpace(r.Rate)
		if rate == "" {
			continue
		}
		v := normalize.Float(rate)
		if v == 0 && rate != "0" && rate != "0.0" && rate != "0,0" {
			continue
		}
		key := RateKey{
			Category:  normalize.Category(r.Category),
			Agreement: normalize.NumericID(r.AgreementCode),
		}
		if key.Category == "" || key.Agreement == "" {
			continue
		}
		rates[key] = v
	}
	return rates
}

// BuildEmployees folds employee rows into a map keyed by canonical name.
// Duplicate names resolve to the last row seen.
func BuildEmployees(rows []maestros.Employee) map[string]maestros.Employee {
	employees := make(map[string]maestros.Employee, len(rows))
	for _, e := range rows {
		employees[e.Name] = e
	}
	return employees
}

// NightRate returns the night tariff for a category and agreement code, both
// normalized before lookup. An empty normalized key or an absent combination
// yields 0.0.
func (idx *Index) NightRate(category, agreement string) float64 {
	key := RateKey{
		Category:  normalize.Category(category),
		Agreement: normalize.NumericID(agreement),
	}
	if key.Category == "" || key.Agreement == "" {
		return 0.0
	}
	return idx.rates[key]
}

// Employee looks up a worker by canonical (uppercased) name.
func (idx *Index) Employee(name string) (maestros.Employee, bool) {
	e, ok := idx.employees[strings.ToUpper(strings.TrimSpace(name))]
	return e, ok
}

// CenterName returns the description for a center code, or "" when unknown.
func (idx *Index) CenterName(code string) string {
	return idx.centers[normalize.NumericID(code)].Name
}

// CenterSupervisor returns the supervisor for a center code, or "".
func (idx *Index) CenterSupervisor(code string) string {
	return idx.centers[normalize.NumericID(code)].Supervisor
}

// EmployeesByCenter returns the sorted worker names whose preferred center is
// code.
func (idx *Index) EmployeesByCenter(code string) []string {
	return idx.byCenter[normalize.NumericID(code)]
}

// Supervisors returns the sorted distinct supervisor names.
func (idx *Index) Supervisors() []string { return idx.supervisors }

// Employees returns the sorted canonical worker names.
func (idx *Index) Employees() []string { return idx.workerNames }

// EmployeesWithCenter returns the sorted "code - NAME" selection labels.
func (idx *Index) EmployeesWithCenter() []string { return idx.workerByHome }

// CenterCodes returns the sorted center codes.
func (idx *Index) CenterCodes() []string { return idx.centerCodes }

// CentersDisplay returns the sorted "code - name" center labels.
func (idx *Index) CentersDisplay() []string { return idx.centersShown }

// Motives returns the motive-to-account rows in workbook order.
func (idx *Index) Motives() []maestros.MotiveRow { return idx.motives }

// Warnings returns the loader warnings captured when the index was built.
func (idx *Index) Warnings() []string { return idx.warnings }

// Hash returns the content hash of the workbook the index was built from.
func (idx *Index) Hash() string { return idx.hash }
