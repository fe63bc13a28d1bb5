package portfolio

import "net/http"

func (a *API) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var in ITServiceInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	svc, err := a.CreateService(ctx, actorFromContext(r.Context()), in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, svc)
}

func (a *API) handleListServices(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	services, err := a.ListServices(ctx, f)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

func (a *API) handleGetService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	svc, err := a.GetService(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

func (a *API) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var in ITServiceUpdate
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	svc, err := a.UpdateService(ctx, actorFromContext(r.Context()), id, in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

func (a *API) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.DeleteService(ctx, actorFromContext(r.Context()), id, confirmParam(r)); err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleCopyService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	in, err := a.CopyService(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, in)
}
