package portfolio

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireActor(t *testing.T) {
	api := &API{allowed: map[string]struct{}{"admin@example.org": {}}}

	var seenActor string
	handler := api.requireActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenActor = actorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantActor  string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "unlisted email", header: "intruder@example.org", wantStatus: http.StatusUnauthorized},
		{name: "listed email", header: "admin@example.org", wantStatus: http.StatusOK, wantActor: "admin@example.org"},
		{name: "case and whitespace normalized", header: "  Admin@Example.org ", wantStatus: http.StatusOK, wantActor: "admin@example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenActor = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/units", nil)
			if tt.header != "" {
				req.Header.Set(actorHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seenActor != tt.wantActor {
				t.Fatalf("actor = %q, want %q", seenActor, tt.wantActor)
			}
		})
	}
}
