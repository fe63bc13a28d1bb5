package portfolio

import (
	"reflect"
	"testing"
)

func TestComputeDiff(t *testing.T) {
	tests := []struct {
		name     string
		previous map[string]any
		current  map[string]any
		want     map[string]map[string]any
	}{
		{
			name:     "no change",
			previous: map[string]any{"name": "Radiology", "total_fte": 4},
			current:  map[string]any{"name": "Radiology", "total_fte": 4},
			want:     map[string]map[string]any{},
		},
		{
			name:     "changed field",
			previous: map[string]any{"name": "Radiology"},
			current:  map[string]any{"name": "Cardiology"},
			want: map[string]map[string]any{
				"name": {"old": "Radiology", "new": "Cardiology"},
			},
		},
		{
			name:     "removed field",
			previous: map[string]any{"notes": "legacy"},
			current:  map[string]any{},
			want: map[string]map[string]any{
				"notes": {"old": "legacy", "new": nil},
			},
		},
		{
			name:     "added field",
			previous: map[string]any{},
			current:  map[string]any{"vendor": "Acme"},
			want: map[string]map[string]any{
				"vendor": {"old": nil, "new": "Acme"},
			},
		},
		{
			name:     "nil maps",
			previous: nil,
			current:  nil,
			want:     map[string]map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeDiff(tt.previous, tt.current)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("computeDiff() = %v, want %v", got, tt.want)
			}
		})
	}
}
