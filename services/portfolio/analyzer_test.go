package portfolio

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"PACS Viewer", "pacs viewer"},
		{"  Pacs   viewer  ", "pacs viewer"},
		{"pacs\tviewer", "pacs viewer"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := normalizeName(tt.input); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestConsolidateDuplicates(t *testing.T) {
	records := []analyzerRecord{
		{ID: "a1", EntityType: "application", Name: "PACS Viewer", Category: "Imaging", UnitID: strPtr("u1"), UnitName: strPtr("Radiology")},
		{ID: "a2", EntityType: "application", Name: "Pacs viewer", Category: "Imaging", UnitID: strPtr("u2"), UnitName: strPtr("Cardiology")},
		{ID: "a3", EntityType: "application", Name: "Mail Gateway", Category: "Messaging", UnitID: strPtr("u1"), UnitName: strPtr("Radiology")},
	}

	flags := consolidate(records)

	var duplicate *ConsolidationFlag
	for i := range flags {
		if flags[i].Kind == FlagDuplicate {
			duplicate = &flags[i]
			break
		}
	}
	if duplicate == nil {
		t.Fatalf("expected a duplicate flag, got %+v", flags)
	}
	if duplicate.Key != "pacs viewer" {
		t.Fatalf("duplicate key = %q, want %q", duplicate.Key, "pacs viewer")
	}
	if len(duplicate.Members) != 2 {
		t.Fatalf("duplicate members = %d, want 2", len(duplicate.Members))
	}
}

func TestConsolidateDuplicateRequiresDistinctUnits(t *testing.T) {
	// Same normalized name inside one unit is not a duplicate group.
	records := []analyzerRecord{
		{ID: "a1", Name: "PACS Viewer", UnitID: strPtr("u1")},
		{ID: "a2", Name: "pacs viewer", UnitID: strPtr("u1")},
	}

	for _, flag := range consolidate(records) {
		if flag.Kind == FlagDuplicate {
			t.Fatalf("unexpected duplicate flag %+v", flag)
		}
	}
}

func TestConsolidateSimilar(t *testing.T) {
	records := []analyzerRecord{
		{ID: "a1", Name: "PACS Viewer", Category: "Imaging", UnitID: strPtr("u1")},
		{ID: "s1", EntityType: "it_service", Name: "Image Archive", Category: "Imaging", UnitID: strPtr("u2")},
	}

	flags := consolidate(records)
	if len(flags) != 1 {
		t.Fatalf("flags = %+v, want exactly one", flags)
	}
	if flags[0].Kind != FlagSimilar || flags[0].Key != "Imaging" {
		t.Fatalf("flag = %+v, want similar Imaging", flags[0])
	}
}

func TestConsolidateSingleNameCategoryIsNotSimilar(t *testing.T) {
	// A category group whose members all share one normalized name is only
	// a duplicate candidate, never a similar flag.
	records := []analyzerRecord{
		{ID: "a1", Name: "PACS Viewer", Category: "Imaging", UnitID: strPtr("u1")},
		{ID: "a2", Name: "pacs  viewer", Category: "Imaging", UnitID: strPtr("u2")},
	}

	for _, flag := range consolidate(records) {
		if flag.Kind == FlagSimilar {
			t.Fatalf("unexpected similar flag %+v", flag)
		}
	}
}

func TestConsolidateOrderingAndDeterminism(t *testing.T) {
	records := []analyzerRecord{
		{ID: "a1", Name: "Alpha", Category: "Tools", UnitID: strPtr("u1")},
		{ID: "a2", Name: "Beta", Category: "Tools", UnitID: strPtr("u2")},
		{ID: "a3", Name: "Gamma", Category: "Tools", UnitID: strPtr("u3")},
		{ID: "b1", Name: "Portal", Category: "Web", UnitID: strPtr("u1")},
		{ID: "b2", Name: "Wiki", Category: "Web", UnitID: strPtr("u2")},
	}

	first := consolidate(records)
	if len(first) != 2 {
		t.Fatalf("flags = %+v, want 2", first)
	}
	if first[0].Key != "Tools" || first[1].Key != "Web" {
		t.Fatalf("order = [%s %s], want [Tools Web]", first[0].Key, first[1].Key)
	}

	for i := 0; i < 10; i++ {
		if again := consolidate(records); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

func TestConsolidateTieBreakAlphabetical(t *testing.T) {
	records := []analyzerRecord{
		{ID: "a1", Name: "Zeta", Category: "Zulu", UnitID: strPtr("u1")},
		{ID: "a2", Name: "Eta", Category: "Zulu", UnitID: strPtr("u2")},
		{ID: "b1", Name: "One", Category: "Alpha", UnitID: strPtr("u1")},
		{ID: "b2", Name: "Two", Category: "Alpha", UnitID: strPtr("u2")},
	}

	flags := consolidate(records)
	if len(flags) != 2 {
		t.Fatalf("flags = %+v, want 2", flags)
	}
	if flags[0].Key != "Alpha" || flags[1].Key != "Zulu" {
		t.Fatalf("order = [%s %s], want [Alpha Zulu]", flags[0].Key, flags[1].Key)
	}
}

func TestConsolidateMembersSorted(t *testing.T) {
	records := []analyzerRecord{
		{ID: "z9", Name: "Wiki", Category: "Web", UnitID: strPtr("u1")},
		{ID: "a1", Name: "Portal", Category: "Web", UnitID: strPtr("u2")},
	}

	flags := consolidate(records)
	if len(flags) != 1 {
		t.Fatalf("flags = %+v, want 1", flags)
	}
	members := flags[0].Members
	if members[0].Name != "Portal" || members[1].Name != "Wiki" {
		t.Fatalf("member order = [%s %s], want [Portal Wiki]", members[0].Name, members[1].Name)
	}
}
