// =============================================================================
// Incidencias Export - Record Model
// =============================================================================
//
// Record is one payroll incident line as edited by a supervisor. The string
// fields keep the workbook's display values; numeric entry fields are
// float64 and already coerced (unparsable input became 0.0 at the edit
// boundary). Cost buckets and totals are never stored on the record: they
// are derived at export time from the lookup index.
//
// =============================================================================

package incidencia

// Selection values offered by the data-entry surfaces.
var (
	// Months are the payroll months in "MM-Name" form.
	Months = []string{
		"01-Enero", "02-Febrero", "03-Marzo", "04-Abril",
		"05-Mayo", "06-Junio", "07-Julio", "08-Agosto",
		"09-Septiembre", "10-Octubre", "11-Noviembre", "12-Diciembre",
	}

	// Reasons are the accepted incident motives.
	Reasons = []string{
		"Absentismo",
		"Refuerzo",
		"Eventos",
		"Festivos y Fines de Semana",
		"Permiso retribuido",
		"Puesto pendiente de cubrir",
		"Formación",
		"Otros",
		"Nocturnidad",
	}

	// Companies are the destination company options; the empty entry keeps
	// "unset" selectable.
	Companies = []string{"", "ALGADI", "SMI", "DISTEGSA"}

	// BillableOptions are the billable flag options.
	BillableOptions = []string{"", "Sí", "No"}
)

// Record is one incident line.
type Record struct {
	// Delete is the row's deletion checkbox state; it never reaches the
	// export.
	Delete bool

	Supervisor   string // operations supervisor the line belongs to
	PayrollMonth string // "MM-Name" payroll month the cost bills to
	Billable     string // "Sí", "No" or ""
	Service      string // service line, derived from the worker category
	Reason       string // incident motive
	Worker       string // canonical (uppercased) worker name

	DestCompany    string // company at the destination center
	DestCenterCode string // canonical destination center code
	DestCenterName string // destination center description

	Category string // worker category as carried in the master

	Hours      float64 // base incident hours
	HourlyRate float64 // price per base hour
	NightHours float64 // night-shift hours
	NightRate  float64 // night tariff per hour, from the tariff lookup
	Transfers  float64 // transfer compensation, euros
	HourlyCost float64 // employer hourly cost (coste_hora)

	OriginCompany    string // company at the worker's home center
	OriginCenterCode string // worker's home (preferred) center code
	CenterName       string // worker's home center description

	Date         string // incident date as entered
	Observations string

	// Master passthrough fields, exported unchanged.
	AgreementCode   string
	ContractPercent string
	CompanyCode     string
}

// requiredFields maps the display labels of the fields a record must carry
// to be exportable.
var requiredFields = []struct {
	label string
	get   func(*Record) string
}{
	{"Trabajador", func(r *Record) string { return r.Worker }},
	{"Facturable", func(r *Record) string { return r.Billable }},
	{"Motivo", func(r *Record) string { return r.Reason }},
	{"Código Crown Destino", func(r *Record) string { return r.DestCenterCode }},
	{"Fecha", func(r *Record) string { return r.Date }},
}

// IsValid reports whether the record carries every required field.
func (r *Record) IsValid() bool {
	return len(r.MissingFields()) == 0
}

// MissingFields returns the display labels of the required fields the record
// is missing, in a fixed order.
func (r *Record) MissingFields() []string {
	var missing []string
	for _, f := range requiredFields {
		if f.get(r) == "" {
			missing = append(missing, f.label)
		}
	}
	return missing
}

// Clone returns a copy of the record.
func (r *Record) Clone() Record {
	return *r
}
