// =============================================================================
// Incidencias Export - Master Workbook Loader
// =============================================================================
//
// This module reads the named sheets of the master workbook (maestros.xlsx)
// and applies the per-sheet cleaning rules:
//
//   Centros              -> drop rows without a code, drop deactivated
//                           centers, drop excluded supervisors, canonicalize
//                           codes, derive the "code - name" display name.
//   Trabajadores         -> uppercase names, derive the service type from the
//                           category, canonicalize codes, then join Centers
//                           to backfill supervisor and center name (the
//                           Centers value wins over the worker-sheet value).
//   tarifas_incidencias  -> three columns (category, agreement code, night
//                           rate), raw; parsing happens in the lookup builder.
//   cuenta_motivos       -> motive label and account-bucket description.
//
// Every missing sheet or malformed header degrades to an empty table plus a
// warning on the Master; the loader never fails the caller.
//
// =============================================================================

package maestros

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/normalize"
)

// Sheet names expected in the master workbook.
const (
	SheetCenters = "Centros"
	SheetWorkers = "Trabajadores"
	SheetTariffs = "tarifas_incidencias"
	SheetMotives = "cuenta_motivos"
)

// Service labels derived from the employee category.
const (
	ServiceCleaning = "020 Limpieza"
	ServiceCatering = "010 Restauración"
)

// Loader reads and cleans master workbooks.
type Loader struct {
	excluded map[string]struct{}

	// ssMultiplier converts a gross Salario/hora column into coste_hora when
	// the workbook carries no explicit cost column.
	ssMultiplier float64

	log *zap.Logger
}

// NewLoader builds a Loader. excludedSupervisors lists supervisor names whose
// centers are dropped at load time; a nil logger is replaced with a no-op one.
func NewLoader(excludedSupervisors []string, ssMultiplier float64, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	excluded := make(map[string]struct{}, len(excludedSupervisors))
	for _, name := range excludedSupervisors {
		excluded[strings.TrimSpace(name)] = struct{}{}
	}
	return &Loader{excluded: excluded, ssMultiplier: ssMultiplier, log: log}
}

// Load reads the workbook at path into a Master. Load never returns an
// error: a missing or unreadable file, missing sheets, and malformed columns
// all degrade to empty tables plus warnings, per the recovery contract.
func (l *Loader) Load(path string) *Master {
	m := &Master{Path: path, Hash: FileHash(path)}

	if m.Hash == HashFileNotFound {
		l.warn(m, fmt.Sprintf("master workbook not found: %s", path))
		return m
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		l.warn(m, fmt.Sprintf("cannot open master workbook %s: %v", path, err))
		return m
	}
	defer f.Close()

	m.Centers = l.loadCenters(f, m)
	m.Employees = l.loadWorkers(f, m)
	m.Tariffs = l.loadTariffs(f, m)
	m.Motives = l.loadMotives(f, m)

	l.log.Info("master workbook loaded",
		zap.String("path", path),
		zap.Int("centers", len(m.Centers)),
		zap.Int("employees", len(m.Employees)),
		zap.Int("tariffs", len(m.Tariffs)),
		zap.Int("motives", len(m.Motives)),
		zap.Int("warnings", len(m.Warnings)))

	return m
}

// =============================================================================
// PER-SHEET LOADERS
// =============================================================================

func (l *Loader) loadCenters(f *excelize.File, m *Master) []Center {
	rows, ok := sheetRows(f, SheetCenters)
	if !ok {
		l.warn(m, fmt.Sprintf("sheet %q is missing", SheetCenters))
		return nil
	}

	headers := cleanHeaders(rows[0])
	codeIdx := findColumn(headers, "cod_centro_preferente")
	if codeIdx < 0 {
		l.warn(m, fmt.Sprintf("sheet %q has no cod_centro_preferente column", SheetCenters))
		return nil
	}
	nameIdx := findColumn(headers, "desc_centro_preferente", "nombre_centro")
	supIdx := findColumn(headers, "nombre_jefe_ope")
	if supIdx < 0 {
		supIdx = findColumnContaining(headers, "jefe", "supervisor")
	}
	if supIdx < 0 {
		l.warn(m, fmt.Sprintf("sheet %q has no supervisor column", SheetCenters))
	}
	bajaIdx := findColumn(headers, "fecha_baja_centro")

	var centers []Center
	for _, row := range rows[1:] {
		rawCode := cell(row, codeIdx)
		if strings.TrimSpace(rawCode) == "" {
			continue
		}
		// Deactivated centers carry a fecha_baja_centro value.
		if bajaIdx >= 0 && strings.TrimSpace(cell(row, bajaIdx)) != "" {
			continue
		}
		supervisor := normalize.Text(cell(row, supIdx))
		if _, drop := l.excluded[supervisor]; drop {
			continue
		}
		code := normalize.NumericID(rawCode)
		name := normalize.Text(cell(row, nameIdx))
		centers = append(centers, Center{
			Code:        code,
			Name:        name,
			Supervisor:  supervisor,
			DisplayName: code + " - " + name,
		})
	}
	return centers
}

func (l *Loader) loadWorkers(f *excelize.File, m *Master) []Employee {
	rows, ok := sheetRows(f, SheetWorkers)
	if !ok {
		l.warn(m, fmt.Sprintf("sheet %q is missing", SheetWorkers))
		return nil
	}

	headers := cleanHeaders(rows[0])
	nameIdx := findColumn(headers, "nombre_empleado", "nombre empleado", "nombre")
	if nameIdx < 0 {
		l.warn(m, fmt.Sprintf("sheet %q has no worker name column", SheetWorkers))
		return nil
	}
	catIdx := findColumn(headers, "cat_empleado")
	servIdx := findColumn(headers, "servicio")
	centroIdx := findColumn(headers, "centro_preferente")
	convIdx := findColumn(headers, "cod_reg_convenio")
	costeIdx := findColumn(headers, "coste_hora")
	salarioIdx := findColumn(headers, "salario/hora")
	supIdx := findColumnContaining(headers, "jefe", "supervisor")
	codEmpIdx := findColumn(headers, "cod_empleado")
	porcenIdx := findColumn(headers, "porcen_contrato")
	empresaIdx := findColumn(headers, "cod_empresa")

	centersByCode := make(map[string]Center, len(m.Centers))
	for _, c := range m.Centers {
		centersByCode[c.Code] = c
	}

	var employees []Employee
	for _, row := range rows[1:] {
		name := strings.ToUpper(normalize.Text(cell(row, nameIdx)))
		if name == "" {
			continue
		}

		category := normalize.Text(cell(row, catIdx))
		service := normalize.Text(cell(row, servIdx))
		if servIdx < 0 || service == "" {
			service = deriveService(category)
		}

		cost := 0.0
		switch {
		case costeIdx >= 0:
			cost = normalize.Float(cell(row, costeIdx))
		case salarioIdx >= 0:
			cost = round2(normalize.Float(cell(row, salarioIdx)) * l.ssMultiplier)
		}

		emp := Employee{
			Name:                name,
			Category:            category,
			ServiceType:         service,
			AgreementCode:       normalize.NumericID(cell(row, convIdx)),
			PreferredCenterCode: normalize.NumericID(cell(row, centroIdx)),
			Supervisor:          normalize.Text(cell(row, supIdx)),
			HourlyCost:          cost,
			EmployeeCode:        normalize.Text(cell(row, codEmpIdx)),
			ContractPercent:     normalize.Text(cell(row, porcenIdx)),
			CompanyCode:         normalize.Text(cell(row, empresaIdx)),
		}

		// Join with Centers on the preferred center code; the Centers value
		// wins over whatever the worker sheet carried.
		if c, found := centersByCode[emp.PreferredCenterCode]; found {
			if c.Supervisor != "" {
				emp.Supervisor = c.Supervisor
			}
			emp.PreferredCenterName = c.Name
		}

		employees = append(employees, emp)
	}
	return employees
}

func (l *Loader) loadTariffs(f *excelize.File, m *Master) []TariffRow {
	rows, ok := sheetRows(f, SheetTariffs)
	if !ok {
		l.warn(m, fmt.Sprintf("sheet %q is missing", SheetTariffs))
		return nil
	}

	headers := cleanHeaders(rows[0])
	catIdx := findColumn(headers, "descripción", "descripcion", "categoria")
	convIdx := findColumn(headers, "cod_convenio", "regimen")
	rateIdx := findColumn(headers, "tarifa_noct", "precio_nocturnidad")
	if catIdx < 0 || convIdx < 0 || rateIdx < 0 {
		l.warn(m, fmt.Sprintf("sheet %q is missing tariff columns", SheetTariffs))
		return nil
	}

	var tariffs []TariffRow
	for _, row := range rows[1:] {
		tariffs = append(tariffs, TariffRow{
			Category:      cell(row, catIdx),
			AgreementCode: cell(row, convIdx),
			Rate:          cell(row, rateIdx),
		})
	}
	return tariffs
}

func (l *Loader) loadMotives(f *excelize.File, m *Master) []MotiveRow {
	rows, ok := sheetRows(f, SheetMotives)
	if !ok {
		// Optional sheet: an empty motive lookup, not an error.
		l.warn(m, fmt.Sprintf("sheet %q is missing", SheetMotives))
		return nil
	}

	headers := cleanHeaders(rows[0])
	motiveIdx := findColumn(headers, "motivo", "nombre")
	descIdx := findColumn(headers, "desc_cuenta", "cuenta contable")
	if motiveIdx < 0 || descIdx < 0 {
		l.warn(m, fmt.Sprintf("sheet %q is missing motive columns", SheetMotives))
		return nil
	}

	var motives []MotiveRow
	for _, row := range rows[1:] {
		motive := normalize.Text(cell(row, motiveIdx))
		if motive == "" {
			continue
		}
		motives = append(motives, MotiveRow{
			Motive:      motive,
			AccountDesc: normalize.Text(cell(row, descIdx)),
		})
	}
	return motives
}

// =============================================================================
// HELPERS
// =============================================================================

func (l *Loader) warn(m *Master, msg string) {
	m.Warnings = append(m.Warnings, msg)
	l.log.Warn(msg, zap.String("path", m.Path))
}

// sheetRows returns the sheet contents, or ok=false for a missing or empty
// sheet.
func sheetRows(f *excelize.File, name string) ([][]string, bool) {
	rows, err := f.GetRows(name)
	if err != nil || len(rows) == 0 {
		return nil, false
	}
	return rows, true
}

// cleanHeaders trims header cells and collapses embedded line breaks, which
// merged workbooks are prone to.
func cleanHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		h = strings.ReplaceAll(h, "\n", " ")
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// findColumn returns the index of the first header equal (case-insensitive)
// to any of the aliases, or -1.
func findColumn(headers []string, aliases ...string) int {
	for i, h := range headers {
		lower := strings.ToLower(h)
		for _, alias := range aliases {
			if lower == alias {
				return i
			}
		}
	}
	return -1
}

// findColumnContaining returns the index of the first header containing
// (case-insensitive) any of the substrings, or -1.
func findColumnContaining(headers []string, substrings ...string) int {
	for i, h := range headers {
		lower := strings.ToLower(h)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				return i
			}
		}
	}
	return -1
}

// cell returns row[idx] or "" when the index is out of range; excelize trims
// trailing empty cells from rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func deriveService(category string) string {
	lower := strings.ToLower(category)
	if strings.Contains(lower, "limp") || strings.Contains(lower, "asl") {
		return ServiceCleaning
	}
	return ServiceCatering
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
