package portfolio

import "net/http"

func (a *API) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var in ApplicationInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	app, err := a.CreateApplication(ctx, actorFromContext(r.Context()), in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

func (a *API) handleListApplications(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	apps, err := a.ListApplications(ctx, f)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, apps)
}

func (a *API) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	app, err := a.GetApplication(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

func (a *API) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var in ApplicationUpdate
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	app, err := a.UpdateApplication(ctx, actorFromContext(r.Context()), id, in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

func (a *API) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.DeleteApplication(ctx, actorFromContext(r.Context()), id, confirmParam(r)); err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleCopyApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	in, err := a.CopyApplication(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, in)
}
