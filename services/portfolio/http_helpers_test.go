package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondOpError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation",
			err:        &ValidationError{Violations: []FieldViolation{{Field: "name", Reason: "is required"}}},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "not found",
			err:        &NotFoundError{EntityType: EntityApplication, ID: "x"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "in use",
			err:        &InUseError{Category: OptionApplicationCategory, Value: "Imaging", Refs: 1},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "confirmation required",
			err:        ErrConfirmationRequired,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "store unavailable",
			err:        &StoreUnavailableError{Err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondOpError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if _, ok := body["error"]; !ok {
				t.Fatalf("body missing error field: %v", body)
			}
		})
	}
}

func TestRespondErrorIncludesViolations(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, http.StatusUnprocessableEntity, &ValidationError{
		Violations: []FieldViolation{
			{Field: "name", Reason: "is required"},
			{Field: "unit_id", Reason: "it_unit x does not exist"},
		},
	})

	var body struct {
		Error      string           `json:"error"`
		Violations []FieldViolation `json:"violations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(body.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(body.Violations))
	}
}
