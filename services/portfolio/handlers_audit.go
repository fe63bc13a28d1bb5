package portfolio

import (
	"net/http"
	"strconv"
)

func (a *API) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		limit = n
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	records, err := a.listAudit(ctx, q.Get("entity_type"), limit)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}
