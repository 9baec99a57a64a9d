package lookup

import (
	"testing"

	"github.com/ginjaninja78/incidencias-export/internal/maestros"
)

func testMaster() *maestros.Master {
	return &maestros.Master{
		Hash: "abc123",
		Centers: []maestros.Center{
			{Code: "1050", Name: "Hospital Norte", Supervisor: "Laura Vega", DisplayName: "1050 - Hospital Norte"},
			{Code: "2001", Name: "Colegio Sur", Supervisor: "Mario Ruiz", DisplayName: "2001 - Colegio Sur"},
		},
		Employees: []maestros.Employee{
			{Name: "ANA PEREZ", Category: "ASL", PreferredCenterCode: "1050", Supervisor: "Laura Vega", HourlyCost: 14.2},
			{Name: "LUIS GOMEZ", Category: "COCINERO", PreferredCenterCode: "2001", Supervisor: "Mario Ruiz", HourlyCost: 16},
		},
		Tariffs: []maestros.TariffRow{
			{Category: "h ASL", AgreementCode: "77.0", Rate: "2.5"},
			{Category: "ASL", AgreementCode: "77", Rate: "3.0"},
			{Category: "COCINERO", AgreementCode: "88", Rate: "sin dato"},
		},
		Motives: []maestros.MotiveRow{
			{Motive: "Nocturnidad", AccountDesc: "74 Plus nocturnidad"},
		},
	}
}

func TestBuildRates_NormalizesAndLastWins(t *testing.T) {
	t.Parallel()

	idx := Build(testMaster())

	// Both tariff rows collapse onto the same normalized key; the later row
	// wins. Inputs to NightRate are normalized too.
	if got := idx.NightRate("H ASL", "77.0"); got != 3.0 {
		t.Fatalf("NightRate(H ASL, 77.0) = %v, want 3.0", got)
	}
	// Unparsable rate rows are skipped, not stored as zero.
	if got := idx.NightRate("COCINERO", "88"); got != 0.0 {
		t.Fatalf("NightRate(COCINERO, 88) = %v, want 0.0", got)
	}
	if got := idx.NightRate("NADIE", "1"); got != 0.0 {
		t.Fatalf("NightRate for absent key = %v, want 0.0", got)
	}
}

func TestBuildRates_SkipsEmptyKeys(t *testing.T) {
	t.Parallel()

	rates := BuildRates([]maestros.TariffRow{
		{Category: "", AgreementCode: "", Rate: "12.5"},
		{Category: "ASL", AgreementCode: "", Rate: "2.0"},
		{Category: "", AgreementCode: "77", Rate: "3.0"},
	})
	if len(rates) != 0 {
		t.Fatalf("rates = %v, rows without a full key must be skipped", rates)
	}

	// A worker missing both category and agreement never picks up a rate.
	idx := Build(&maestros.Master{Tariffs: []maestros.TariffRow{
		{Category: "", AgreementCode: "", Rate: "12.5"},
	}})
	if got := idx.NightRate("", ""); got != 0.0 {
		t.Fatalf("NightRate(empty, empty) = %v, want 0.0", got)
	}
}

func TestIndex_EmployeeLookup(t *testing.T) {
	t.Parallel()

	idx := Build(testMaster())

	e, ok := idx.Employee("ana perez")
	if !ok {
		t.Fatalf("Employee(ana perez) not found")
	}
	if e.HourlyCost != 14.2 {
		t.Fatalf("HourlyCost = %v", e.HourlyCost)
	}
	if _, ok := idx.Employee("NADIE"); ok {
		t.Fatalf("unexpected hit for unknown worker")
	}
}

func TestIndex_SortedLists(t *testing.T) {
	t.Parallel()

	idx := Build(testMaster())

	sup := idx.Supervisors()
	if len(sup) != 2 || sup[0] != "Laura Vega" || sup[1] != "Mario Ruiz" {
		t.Fatalf("Supervisors = %v", sup)
	}
	names := idx.Employees()
	if len(names) != 2 || names[0] != "ANA PEREZ" {
		t.Fatalf("Employees = %v", names)
	}
	withCenter := idx.EmployeesWithCenter()
	if len(withCenter) != 2 || withCenter[0] != "1050 - ANA PEREZ" {
		t.Fatalf("EmployeesWithCenter = %v", withCenter)
	}
	display := idx.CentersDisplay()
	if len(display) != 2 || display[0] != "1050 - Hospital Norte" {
		t.Fatalf("CentersDisplay = %v", display)
	}
}

func TestIndex_CenterAndByCenter(t *testing.T) {
	t.Parallel()

	idx := Build(testMaster())

	if got := idx.CenterName("1050.0"); got != "Hospital Norte" {
		t.Fatalf("CenterName(1050.0) = %q", got)
	}
	if got := idx.CenterSupervisor("2001"); got != "Mario Ruiz" {
		t.Fatalf("CenterSupervisor(2001) = %q", got)
	}
	byCenter := idx.EmployeesByCenter("1050")
	if len(byCenter) != 1 || byCenter[0] != "ANA PEREZ" {
		t.Fatalf("EmployeesByCenter(1050) = %v", byCenter)
	}
	if got := idx.EmployeesByCenter("9999"); len(got) != 0 {
		t.Fatalf("EmployeesByCenter(9999) = %v, want empty", got)
	}
}

func TestBuildEmployees_LastRowWins(t *testing.T) {
	t.Parallel()

	rows := []maestros.Employee{
		{Name: "ANA PEREZ", HourlyCost: 10},
		{Name: "ANA PEREZ", HourlyCost: 12},
	}
	m := BuildEmployees(rows)
	if len(m) != 1 {
		t.Fatalf("len = %d, want 1", len(m))
	}
	if m["ANA PEREZ"].HourlyCost != 12 {
		t.Fatalf("HourlyCost = %v, want last row to win", m["ANA PEREZ"].HourlyCost)
	}
}
