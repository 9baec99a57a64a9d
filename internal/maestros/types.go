// =============================================================================
// Incidencias Export - Master Data Types
// =============================================================================
//
// Typed records produced by the master workbook loader. Spreadsheet rows are
// mapped into these structs at the load boundary; unknown or missing fields
// are defaulted there, never downstream.
//
// =============================================================================

package maestros

// Center is one work center row from the Centros sheet, post-cleaning.
// Identity is Code, already canonicalized (digits only when numeric).
type Center struct {
	// Code is the canonical center code (cod_centro_preferente).
	Code string

	// Name is the center description (desc_centro_preferente).
	Name string

	// Supervisor is the operations supervisor name (nombre_jefe_ope).
	Supervisor string

	// DisplayName is "Code - Name", used for selection lists.
	DisplayName string
}

// Employee is one worker row from the Trabajadores sheet, post-cleaning and
// post-join with Centers. Identity is Name (uppercased canonical); duplicate
// names collapse to the last-seen row.
type Employee struct {
	// Name is the uppercased worker name (nombre_empleado).
	Name string

	// Category is the raw employee category (cat_empleado).
	Category string

	// ServiceType is the service derived from the category when the sheet
	// carries no explicit servicio column ("020 Limpieza" / "010 Restauración").
	ServiceType string

	// AgreementCode is the canonical labor-agreement code (cod_reg_convenio).
	AgreementCode string

	// PreferredCenterCode is the canonical home-center code.
	PreferredCenterCode string

	// PreferredCenterName is the home-center description, backfilled from the
	// Centers sheet.
	PreferredCenterName string

	// Supervisor is the operations supervisor, resolved through the preferred
	// center; the Centers value wins over any worker-sheet value.
	Supervisor string

	// HourlyCost is the employer cost per hour (coste_hora), >= 0.
	HourlyCost float64

	// EmployeeCode, ContractPercent and CompanyCode are carried through to
	// the export unchanged.
	EmployeeCode    string
	ContractPercent string
	CompanyCode     string
}

// TariffRow is one raw row from the tarifas_incidencias sheet. Normalization
// and parsing happen in the lookup builder, which also skips bad rows.
type TariffRow struct {
	Category      string
	AgreementCode string
	Rate          string
}

// MotiveRow is one row from the cuenta_motivos sheet: a motive label and the
// account description it bills to.
type MotiveRow struct {
	Motive      string
	AccountDesc string
}

// Master bundles everything loaded from one master workbook, together with
// the content hash used as the cache key and any warnings raised while
// cleaning the sheets.
type Master struct {
	Path string
	Hash string

	Centers   []Center
	Employees []Employee
	Tariffs   []TariffRow
	Motives   []MotiveRow

	Warnings []string
}
