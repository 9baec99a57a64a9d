package maestros

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook builds an xlsx file from sheet-name -> rows and returns its
// path.
func writeWorkbook(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet %s: %v", name, err)
			}
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

	path := filepath.Join(t.TempDir(), "maestros.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func centerSheet(rows ...[]interface{}) [][]interface{} {
	header := []interface{}{"cod_centro_preferente", "desc_centro_preferente", "nombre_jefe_ope", "fecha_baja_centro"}
	return append([][]interface{}{header}, rows...)
}

func workerSheet(rows ...[]interface{}) [][]interface{} {
	header := []interface{}{"nombre_empleado", "cat_empleado", "centro_preferente", "cod_reg_convenio", "coste_hora", "jefe_operaciones"}
	return append([][]interface{}{header}, rows...)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	l := NewLoader(nil, 1.3195, nil)
	m := l.Load(filepath.Join(t.TempDir(), "missing.xlsx"))

	if m.Hash != HashFileNotFound {
		t.Fatalf("Hash = %q, want %q", m.Hash, HashFileNotFound)
	}
	if len(m.Centers) != 0 || len(m.Employees) != 0 {
		t.Fatalf("expected empty tables, got %d centers, %d employees", len(m.Centers), len(m.Employees))
	}
	if len(m.Warnings) == 0 {
		t.Fatalf("expected a warning for the missing file")
	}
}

func TestLoad_CentersCleaning(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string][][]interface{}{
		SheetCenters: centerSheet(
			[]interface{}{"1050.0", "Hospital Norte", "Laura Vega", ""},
			[]interface{}{"", "Sin codigo", "Laura Vega", ""},
			[]interface{}{"2001", "Cerrado", "Laura Vega", "2024-01-31"},
			[]interface{}{"3001", "Excluido", "Julio", ""},
		),
	})

	l := NewLoader([]string{"Julio"}, 1.3195, nil)
	m := l.Load(path)

	if len(m.Centers) != 1 {
		t.Fatalf("centers = %d, want 1 (got %+v)", len(m.Centers), m.Centers)
	}
	c := m.Centers[0]
	if c.Code != "1050" {
		t.Fatalf("Code = %q, want 1050", c.Code)
	}
	if c.DisplayName != "1050 - Hospital Norte" {
		t.Fatalf("DisplayName = %q", c.DisplayName)
	}
	if c.Supervisor != "Laura Vega" {
		t.Fatalf("Supervisor = %q", c.Supervisor)
	}
}

func TestLoad_WorkersJoinAndDerivation(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string][][]interface{}{
		SheetCenters: centerSheet(
			[]interface{}{"1050", "Hospital Norte", "Laura Vega", ""},
		),
		SheetWorkers: workerSheet(
			[]interface{}{"ana perez", "H ASL", "1050.0", "9.91002E+13", "14.2", "Otro Jefe"},
			[]interface{}{"LUIS GOMEZ", "Cocinero", "9999", "77", "16.0", "Jefe Sin Centro"},
		),
	})

	l := NewLoader(nil, 1.3195, nil)
	m := l.Load(path)

	if len(m.Employees) != 2 {
		t.Fatalf("employees = %d, want 2", len(m.Employees))
	}

	ana := m.Employees[0]
	if ana.Name != "ANA PEREZ" {
		t.Fatalf("Name = %q, want uppercased", ana.Name)
	}
	if ana.ServiceType != ServiceCleaning {
		t.Fatalf("ServiceType = %q, want %q for ASL category", ana.ServiceType, ServiceCleaning)
	}
	if ana.PreferredCenterCode != "1050" {
		t.Fatalf("PreferredCenterCode = %q", ana.PreferredCenterCode)
	}
	if ana.AgreementCode != "99100200000000" {
		t.Fatalf("AgreementCode = %q, scientific notation not canonicalized", ana.AgreementCode)
	}
	// Center supervisor wins over the worker-sheet value.
	if ana.Supervisor != "Laura Vega" {
		t.Fatalf("Supervisor = %q, want center value", ana.Supervisor)
	}
	if ana.PreferredCenterName != "Hospital Norte" {
		t.Fatalf("PreferredCenterName = %q", ana.PreferredCenterName)
	}

	luis := m.Employees[1]
	if luis.ServiceType != ServiceCatering {
		t.Fatalf("ServiceType = %q, want %q", luis.ServiceType, ServiceCatering)
	}
	// No matching center: the worker-sheet supervisor survives.
	if luis.Supervisor != "Jefe Sin Centro" {
		t.Fatalf("Supervisor = %q", luis.Supervisor)
	}
	if luis.PreferredCenterName != "" {
		t.Fatalf("PreferredCenterName = %q, want empty", luis.PreferredCenterName)
	}
}

func TestLoad_SalaryFallbackUsesMultiplier(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string][][]interface{}{
		SheetWorkers: {
			{"nombre_empleado", "cat_empleado", "Salario/hora"},
			{"ANA", "ASL", "10"},
		},
	})

	l := NewLoader(nil, 1.3195, nil)
	m := l.Load(path)

	if len(m.Employees) != 1 {
		t.Fatalf("employees = %d, want 1", len(m.Employees))
	}
	if got := m.Employees[0].HourlyCost; got != 13.2 {
		t.Fatalf("HourlyCost = %v, want 13.2 (rounded 10 * 1.3195)", got)
	}
}

func TestLoad_MissingSheetWarnsButContinues(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string][][]interface{}{
		SheetCenters: centerSheet(
			[]interface{}{"1050", "Hospital Norte", "Laura Vega", ""},
		),
	})

	l := NewLoader(nil, 1.3195, nil)
	m := l.Load(path)

	if len(m.Centers) != 1 {
		t.Fatalf("centers = %d, want 1", len(m.Centers))
	}
	var sawWorkers bool
	for _, w := range m.Warnings {
		if strings.Contains(w, SheetWorkers) {
			sawWorkers = true
		}
	}
	if !sawWorkers {
		t.Fatalf("expected a warning naming sheet %q, got %v", SheetWorkers, m.Warnings)
	}
}

func TestLoad_TariffAliasHeaders(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string][][]interface{}{
		SheetTariffs: {
			{"Categoria", "Regimen", "Precio_Nocturnidad"},
			{"ASL", "77", "2.5"},
		},
	})

	l := NewLoader(nil, 1.3195, nil)
	m := l.Load(path)

	if len(m.Tariffs) != 1 {
		t.Fatalf("tariffs = %d, want 1", len(m.Tariffs))
	}
	row := m.Tariffs[0]
	if row.Category != "ASL" || row.AgreementCode != "77" || row.Rate != "2.5" {
		t.Fatalf("tariff row = %+v", row)
	}
}

func TestLoad_Motives(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string][][]interface{}{
		SheetMotives: {
			{"Motivo", "desc_cuenta"},
			{"Nocturnidad", "74 Plus nocturnidad"},
			{"", "huérfano"},
		},
	})

	l := NewLoader(nil, 1.3195, nil)
	m := l.Load(path)

	if len(m.Motives) != 1 {
		t.Fatalf("motives = %d, want 1", len(m.Motives))
	}
	if m.Motives[0].Motive != "Nocturnidad" || m.Motives[0].AccountDesc != "74 Plus nocturnidad" {
		t.Fatalf("motive row = %+v", m.Motives[0])
	}
}
