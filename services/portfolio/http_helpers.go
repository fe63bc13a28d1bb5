package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	body := map[string]any{"error": err.Error()}
	var ve *ValidationError
	if errors.As(err, &ve) {
		body["violations"] = ve.Violations
	}
	respondJSON(w, status, body)
}

// respondOpError maps domain error kinds onto HTTP status codes.
func respondOpError(w http.ResponseWriter, err error) {
	var (
		ve *ValidationError
		nf *NotFoundError
		iu *InUseError
		su *StoreUnavailableError
	)
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, err)
	case errors.As(err, &iu):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, ErrConfirmationRequired):
		respondError(w, http.StatusConflict, err)
	case errors.As(err, &su):
		respondError(w, http.StatusServiceUnavailable, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}
