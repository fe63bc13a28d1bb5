package portfolio

import (
	"errors"
	"fmt"
	"testing"
)

func TestViolationsBuilder(t *testing.T) {
	var v violations
	if err := v.err(); err != nil {
		t.Fatalf("empty violations should yield nil, got %v", err)
	}

	v.add("name", "is required")
	v.add("vendor", `"Acme" is not a configured vendor option`)

	err := v.err()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(ve.Violations))
	}
	if ve.Violations[0].Field != "name" {
		t.Fatalf("first violation field = %q, want name", ve.Violations[0].Field)
	}
}

func TestWrapStore(t *testing.T) {
	tests := []struct {
		name        string
		input       error
		wantWrapped bool
	}{
		{name: "nil", input: nil},
		{name: "validation passes through", input: &ValidationError{Violations: []FieldViolation{{Field: "name", Reason: "is required"}}}},
		{name: "not found passes through", input: &NotFoundError{EntityType: EntityITUnit, ID: "x"}},
		{name: "in use passes through", input: &InUseError{Category: OptionVendor, Value: "Acme", Refs: 3}},
		{name: "confirmation passes through", input: ErrConfirmationRequired},
		{name: "wrapped domain error passes through", input: fmt.Errorf("lookup: %w", &NotFoundError{EntityType: EntityITUnit, ID: "x"})},
		{name: "plain error wrapped", input: errors.New("connection refused"), wantWrapped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapStore(tt.input)
			if tt.input == nil {
				if got != nil {
					t.Fatalf("wrapStore(nil) = %v", got)
				}
				return
			}

			var su *StoreUnavailableError
			isWrapped := errors.As(got, &su)
			if isWrapped != tt.wantWrapped {
				t.Fatalf("wrapStore(%v) wrapped = %v, want %v", tt.input, isWrapped, tt.wantWrapped)
			}
			if !tt.wantWrapped && got != tt.input {
				t.Fatalf("wrapStore changed the error: %v != %v", got, tt.input)
			}
			if tt.wantWrapped && !errors.Is(got, tt.input) {
				t.Fatalf("wrapped error should unwrap to the original")
			}
		})
	}
}

func TestInUseErrorMessage(t *testing.T) {
	err := &InUseError{Category: "application_category", Value: "Imaging", Refs: 2}
	want := `option "Imaging" in category "application_category" is referenced by 2 record(s)`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
