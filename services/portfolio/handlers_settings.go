package portfolio

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

type addOptionRequest struct {
	Value string `json:"value"`
}

func (a *API) handleListOptions(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	options, err := a.ListOptions(ctx, category)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, options)
}

func (a *API) handleAddOption(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req addOptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	option, err := a.AddOption(ctx, actorFromContext(r.Context()), category, req.Value)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, option)
}

func (a *API) handleRemoveOption(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	// Option values may contain spaces, so the path segment arrives escaped.
	value, err := url.PathUnescape(chi.URLParam(r, "value"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.RemoveOption(ctx, actorFromContext(r.Context()), category, value); err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
