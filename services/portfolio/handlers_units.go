package portfolio

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func idParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid id: " + raw)
	}
	return id, nil
}

func confirmParam(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}

func filterFromQuery(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	f := ListFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	if raw := q.Get("unit_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ListFilter{}, errors.New("invalid unit_id: " + raw)
		}
		f.UnitID = &id
	}
	if raw := q.Get("min_cost"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ListFilter{}, errors.New("invalid min_cost: " + raw)
		}
		f.MinCost = &v
	}
	if raw := q.Get("max_cost"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ListFilter{}, errors.New("invalid max_cost: " + raw)
		}
		f.MaxCost = &v
	}
	return f, nil
}

func (a *API) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var in ITUnitInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	unit, err := a.CreateUnit(ctx, actorFromContext(r.Context()), in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, unit)
}

func (a *API) handleListUnits(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	units, err := a.ListUnits(ctx, f)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, units)
}

func (a *API) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	unit, err := a.GetUnit(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, unit)
}

func (a *API) handleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var in ITUnitUpdate
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	unit, err := a.UpdateUnit(ctx, actorFromContext(r.Context()), id, in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, unit)
}

func (a *API) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.DeleteUnit(ctx, actorFromContext(r.Context()), id, confirmParam(r)); err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleCopyUnit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	in, err := a.CopyUnit(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, in)
}
