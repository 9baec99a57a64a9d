package session

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/incidencias-export/internal/config"
	"github.com/ginjaninja78/incidencias-export/internal/export"
	"github.com/ginjaninja78/incidencias-export/internal/incidencia"
	"github.com/ginjaninja78/incidencias-export/internal/lookup"
	"github.com/ginjaninja78/incidencias-export/internal/maestros"
)

func writeMaster(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	sheets := map[string][][]interface{}{
		maestros.SheetCenters: {
			{"cod_centro_preferente", "desc_centro_preferente", "nombre_jefe_ope"},
			{"1050", "Hospital Norte", "Laura Vega"},
		},
		maestros.SheetWorkers: {
			{"nombre_empleado", "cat_empleado", "centro_preferente", "cod_reg_convenio", "coste_hora"},
			{"ANA PEREZ", "ASL", "1050", "77", "12.5"},
			{"LUIS GOMEZ", "COCINERO", "1050", "88", "16"},
		},
		maestros.SheetTariffs: {
			{"Descripción", "cod_convenio", "tarifa_noct"},
			{"ASL", "77", "2.5"},
		},
		maestros.SheetMotives: {
			{"Motivo", "desc_cuenta"},
			{"Refuerzo", "73 Plus sustitución"},
		},
	}
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save master: %v", err)
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()

	path := filepath.Join(t.TempDir(), "maestros.xlsx")
	writeMaster(t, path)

	cfg := &config.Config{}
	cfg.App.PageSize = 50
	cfg.Paths.Maestros = path
	cfg.Costs.SSMultiplier = 1.3195

	cache, err := lookup.NewCache(maestros.NewLoader(nil, cfg.Costs.SSMultiplier, nil), 4, nil)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return New(cfg, cache, nil)
}

func TestSession_RequiresContext(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	if _, err := s.AddBulk("1050"); !errors.Is(err, ErrNoContext) {
		t.Fatalf("AddBulk err = %v, want ErrNoContext", err)
	}
	if _, _, err := s.Export(); !errors.Is(err, ErrNoContext) {
		t.Fatalf("Export err = %v, want ErrNoContext", err)
	}
}

func TestSession_ContextChangeDiscardsWork(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SelectContext("Laura Vega", "03-Marzo")

	if _, err := s.AddBulk("1050"); err != nil {
		t.Fatalf("AddBulk: %v", err)
	}
	if got := s.Summarize().Total; got != 2 {
		t.Fatalf("Total = %d, want 2", got)
	}

	// Same context is a no-op.
	if n := s.SelectContext("Laura Vega", "03-Marzo"); n != 0 {
		t.Fatalf("unchanged context discarded %d records", n)
	}

	if n := s.SelectContext("Laura Vega", "04-Abril"); n != 2 {
		t.Fatalf("month change discarded %d records, want 2", n)
	}
	if got := s.Summarize().Total; got != 0 {
		t.Fatalf("Total = %d after context change", got)
	}
}

func TestSession_ExportFlow(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SelectContext("Laura Vega", "03-Marzo")

	if _, err := s.AddWorker("ana perez", []string{"1050"}); err != nil {
		t.Fatalf("AddWorker: %v", err)
	}
	err := s.EditPage(1, []incidencia.RawRow{{
		incidencia.ColBillable: "Sí",
		incidencia.ColReason:   "Refuerzo",
		incidencia.ColHours:    "8",
		incidencia.ColDate:     "2026-03-15",
	}})
	if err != nil {
		t.Fatalf("EditPage: %v", err)
	}

	m := s.Summarize()
	if m.Valid != 1 || m.Invalid != 0 {
		t.Fatalf("metrics = %+v", m)
	}
	// 8h * 12.5 = 100 base, no night, no transfers.
	if got := m.Totals.WithSS.String(); got != "131.95" {
		t.Fatalf("WithSS = %s", got)
	}

	data, name, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty export payload")
	}
	if !strings.HasPrefix(name, "incidencias_laura_vega_") || !strings.HasSuffix(name, ".xlsx") {
		t.Fatalf("file name = %q", name)
	}
}

func TestSession_ExportWithoutValidRecords(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SelectContext("Laura Vega", "03-Marzo")

	if _, err := s.AddWorker("ANA PEREZ", nil); err != nil {
		t.Fatalf("AddWorker: %v", err)
	}
	if _, _, err := s.Export(); !errors.Is(err, export.ErrNothingToExport) {
		t.Fatalf("err = %v, want ErrNothingToExport", err)
	}
}

func TestSession_ImportDropsMarkedRows(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SelectContext("Laura Vega", "03-Marzo")

	// The first row is complete and exportable but marked for deletion; it
	// must not survive the import, count toward totals, or reach the export.
	n, err := s.ImportRows([]incidencia.RawRow{
		{
			incidencia.ColDelete:   "true",
			incidencia.ColWorker:   "ANA PEREZ",
			incidencia.ColBillable: "Sí",
			incidencia.ColReason:   "Refuerzo",
			incidencia.ColDestCode: "1050",
			incidencia.ColHours:    "8",
			incidencia.ColDate:     "2026-03-01",
		},
		{
			incidencia.ColWorker:   "LUIS GOMEZ",
			incidencia.ColBillable: "No",
			incidencia.ColReason:   "Absentismo",
			incidencia.ColDestCode: "1050",
			incidencia.ColHours:    "2",
			incidencia.ColDate:     "2026-03-02",
		},
	})
	if err != nil {
		t.Fatalf("ImportRows: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d rows, want 1 after dropping the marked one", n)
	}

	m := s.Summarize()
	if m.Total != 1 || m.Valid != 1 {
		t.Fatalf("metrics = %+v, marked row counted", m)
	}
	// 2h * 16 = 32 base from the surviving row only.
	if got := m.Totals.Base.String(); got != "32" {
		t.Fatalf("Base = %s, marked row contributed to totals", got)
	}

	data, _, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("export rows = %d (incl. header), marked row exported", len(rows))
	}
	if rows[1][5] != "LUIS GOMEZ" {
		t.Fatalf("exported worker = %q", rows[1][5])
	}
}

func TestSession_ImportRows(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	s.SelectContext("Laura Vega", "03-Marzo")

	n, err := s.ImportRows([]incidencia.RawRow{
		{
			incidencia.ColWorker:   "LUIS GOMEZ",
			incidencia.ColBillable: "No",
			incidencia.ColReason:   "Absentismo",
			incidencia.ColDestCode: "1050",
			incidencia.ColHours:    "3",
			incidencia.ColDate:     "2026-03-02",
		},
	})
	if err != nil {
		t.Fatalf("ImportRows: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d rows", n)
	}

	recs := s.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %d", len(recs))
	}
	rec := recs[0]
	if rec.Worker != "LUIS GOMEZ" || rec.HourlyCost != 16 {
		t.Fatalf("master derivation missing on import: %+v", rec)
	}
	if rec.DestCenterName != "Hospital Norte" {
		t.Fatalf("DestCenterName = %q", rec.DestCenterName)
	}
	if !rec.IsValid() {
		t.Fatalf("imported record invalid: %v", rec.MissingFields())
	}
}
