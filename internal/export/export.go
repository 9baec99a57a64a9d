// =============================================================================
// Incidencias Export - Workbook Builder
// =============================================================================
//
// Build renders the valid records of a session into the payroll export
// workbook: one "Incidencias" sheet, a fixed column order, per-record
// account buckets and the SS-adjusted total in the last column. Invalid
// records are filtered here, so callers hand over the whole collection.
//
// =============================================================================

package export

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/incidencias-export/internal/costs"
	"github.com/ginjaninja78/incidencias-export/internal/incidencia"
)

// ErrNothingToExport means no record carried every required field.
var ErrNothingToExport = errors.New("no valid records to export")

// SheetName is the single sheet of the export workbook.
const SheetName = "Incidencias"

// Columns is the export header in its fixed order. Downstream payroll
// tooling matches on these exact names.
var Columns = []string{
	"Jefe de Operaciones",
	"Mes imputació nómina",
	"Facturable",
	"Servicio",
	"Motivo",
	"Trabajador",
	"Empresa Destino",
	"Código Crown Destino",
	"Centro Destino",
	"Categoria",
	"Cuantía",
	"Precio",
	"Cuantía nocturnidad",
	"Precio_nocturnidad",
	"Horas traslado",
	"coste_hora",
	"Empresa Origen",
	"Código Crown Origen",
	"Fecha",
	"Observaciones",
	"cod_reg_convenio",
	"porcen_contrato",
	"cod_empresa",
	"nombre_centro",
	"73_plus_sustitucion",
	"72_incentivos",
	"70_71_festivos",
	"74_plus_nocturnidad",
	"Coste_total",
}

// Build renders the valid subset of records into xlsx bytes. buckets maps
// motives to account buckets and ss is the social-security multiplier; both
// come from the session's lookup index and config.
func Build(records []incidencia.Record, buckets map[string]costs.BucketCode, ss decimal.Decimal) ([]byte, error) {
	var valid []incidencia.Record
	for i := range records {
		if records[i].IsValid() {
			valid = append(valid, records[i])
		}
	}
	if len(valid) == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("naming export sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing export header: %w", err)
	}

	for i := range valid {
		row := buildRow(&valid[i], buckets, ss)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("addressing export row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing export row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing export workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// buildRow flattens one record plus its derived amounts into the fixed
// column order.
func buildRow(rec *incidencia.Record, buckets map[string]costs.BucketCode, ss decimal.Decimal) []interface{} {
	a := costs.Compute(*rec, buckets, ss)
	return []interface{}{
		rec.Supervisor,
		rec.PayrollMonth,
		rec.Billable,
		rec.Service,
		rec.Reason,
		rec.Worker,
		rec.DestCompany,
		rec.DestCenterCode,
		rec.DestCenterName,
		rec.Category,
		rec.Hours,
		rec.HourlyRate,
		rec.NightHours,
		rec.NightRate,
		rec.Transfers,
		rec.HourlyCost,
		rec.OriginCompany,
		rec.OriginCenterCode,
		rec.Date,
		rec.Observations,
		rec.AgreementCode,
		rec.ContractPercent,
		rec.CompanyCode,
		rec.CenterName,
		money(a.B73),
		money(a.B72),
		money(a.B7071),
		money(a.B74),
		money(a.Total),
	}
}

// money renders a decimal amount as a float cell; two-decimal rounding keeps
// the workbook free of binary-float dust.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
