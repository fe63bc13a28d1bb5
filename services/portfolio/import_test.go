package portfolio

import (
	"testing"

	"github.com/google/uuid"
)

func testRow(header []string, fields []string) csvRow {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return csvRow{header: idx, fields: fields}
}

func TestCSVRowGetters(t *testing.T) {
	unitID := uuid.New()
	row := testRow(
		[]string{"name", "total_fte", "budget_amount", "internal", "unit_id"},
		[]string{" Radiology ", "4", "120000.5", "true", unitID.String()},
	)

	if got := row.get("name"); got != "Radiology" {
		t.Fatalf("get(name) = %q", got)
	}
	if got := row.get("missing"); got != "" {
		t.Fatalf("get(missing) = %q, want empty", got)
	}

	fte, err := row.getInt("total_fte")
	if err != nil || fte != 4 {
		t.Fatalf("getInt = %d, %v", fte, err)
	}
	budget, err := row.getFloat("budget_amount")
	if err != nil || budget != 120000.5 {
		t.Fatalf("getFloat = %v, %v", budget, err)
	}
	internal, err := row.getBool("internal")
	if err != nil || !internal {
		t.Fatalf("getBool = %v, %v", internal, err)
	}
	id, err := row.getUUIDPtr("unit_id")
	if err != nil || id == nil || *id != unitID {
		t.Fatalf("getUUIDPtr = %v, %v", id, err)
	}
}

func TestCSVRowGetterErrors(t *testing.T) {
	row := testRow(
		[]string{"total_fte", "budget_amount", "internal", "unit_id"},
		[]string{"four", "lots", "maybe", "not-a-uuid"},
	)

	if _, err := row.getInt("total_fte"); err == nil {
		t.Fatal("getInt expected error")
	}
	if _, err := row.getFloat("budget_amount"); err == nil {
		t.Fatal("getFloat expected error")
	}
	if _, err := row.getBool("internal"); err == nil {
		t.Fatal("getBool expected error")
	}
	if _, err := row.getUUIDPtr("unit_id"); err == nil {
		t.Fatal("getUUIDPtr expected error")
	}
}

func TestCSVRowEmptyValues(t *testing.T) {
	row := testRow([]string{"total_fte", "unit_id"}, []string{"", ""})

	fte, err := row.getInt("total_fte")
	if err != nil || fte != 0 {
		t.Fatalf("getInt on empty = %d, %v", fte, err)
	}
	id, err := row.getUUIDPtr("unit_id")
	if err != nil || id != nil {
		t.Fatalf("getUUIDPtr on empty = %v, %v", id, err)
	}
}

func TestImportRowFuncUnknownEntity(t *testing.T) {
	api := &API{}
	if _, err := api.importRowFunc("widgets"); err == nil {
		t.Fatal("expected error for unknown entity")
	}
}
