package portfolio

import "testing"

func TestCheckOption(t *testing.T) {
	sets := optionSets{
		OptionVendor: {"Acme": {}, "Globex": {}},
	}

	tests := []struct {
		name       string
		value      string
		wantFailed bool
	}{
		{name: "empty passes", value: ""},
		{name: "configured value passes", value: "Acme"},
		{name: "unknown value fails", value: "Initech", wantFailed: true},
		{name: "case sensitive", value: "acme", wantFailed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v violations
			checkOption(&v, sets, "vendor", OptionVendor, tt.value)
			if failed := len(v) > 0; failed != tt.wantFailed {
				t.Fatalf("checkOption(%q) failed = %v, want %v (violations %v)", tt.value, failed, tt.wantFailed, v)
			}
		})
	}
}

func TestCheckOptionUnloadedCategory(t *testing.T) {
	var v violations
	checkOption(&v, optionSets{}, "status", OptionAssetStatus, "Active")
	if len(v) != 1 {
		t.Fatalf("expected a violation for a category with no options, got %v", v)
	}
}

func TestCheckRequired(t *testing.T) {
	var v violations
	checkRequired(&v, "name", "Radiology")
	checkRequired(&v, "name", "")
	checkRequired(&v, "name", "   ")
	if len(v) != 2 {
		t.Fatalf("violations = %v, want 2 entries", v)
	}
}

func TestCopyName(t *testing.T) {
	if got := copyName("PACS Viewer"); got != "Copy of PACS Viewer" {
		t.Fatalf("copyName() = %q", got)
	}
}
