package portfolio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCSVRowsMatchHeaders(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	unitID := uuid.New()

	tests := []struct {
		name   string
		header []string
		row    []string
	}{
		{
			name:   "units",
			header: unitCSVHeader(),
			row:    unitCSVRow(ITUnit{ID: uuid.New(), Name: "Radiology", TotalFTE: 4, BudgetAmount: 120000.5, CreatedAt: now, UpdatedAt: now}),
		},
		{
			name:   "applications",
			header: applicationCSVHeader(),
			row:    applicationCSVRow(Application{ID: uuid.New(), Name: "PACS Viewer", UnitID: &unitID, Internal: true, AnnualCost: 42000, CreatedAt: now, UpdatedAt: now}),
		},
		{
			name:   "infrastructure",
			header: infrastructureCSVHeader(),
			row:    infrastructureCSVRow(Infrastructure{ID: uuid.New(), Name: "Rack 7", AnnualMaintenanceCost: 900, CreatedAt: now, UpdatedAt: now}),
		},
		{
			name:   "services",
			header: serviceCSVHeader(),
			row:    serviceCSVRow(ITService{ID: uuid.New(), Name: "Service Desk", FTECount: 3, BudgetAllocation: 15000, CreatedAt: now, UpdatedAt: now}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.header) != len(tt.row) {
				t.Fatalf("header has %d columns, row has %d", len(tt.header), len(tt.row))
			}
		})
	}
}

func TestCSVQuoting(t *testing.T) {
	unit := ITUnit{
		ID:    uuid.New(),
		Name:  `Imaging, "Core"`,
		Notes: "line one\nline two",
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(unitCSVHeader()); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(unitCSVRow(unit)); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatal(err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1][1] != unit.Name {
		t.Fatalf("name = %q, want %q", rows[1][1], unit.Name)
	}
	if rows[1][6] != unit.Notes {
		t.Fatalf("notes = %q, want %q", rows[1][6], unit.Notes)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{120000.5, "120000.5"},
		{42000, "42000"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.input); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
