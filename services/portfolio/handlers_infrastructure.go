package portfolio

import "net/http"

func (a *API) handleCreateInfrastructure(w http.ResponseWriter, r *http.Request) {
	var in InfrastructureInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	asset, err := a.CreateInfrastructure(ctx, actorFromContext(r.Context()), in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

func (a *API) handleListInfrastructure(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	assets, err := a.ListInfrastructure(ctx, f)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

func (a *API) handleGetInfrastructure(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	asset, err := a.GetInfrastructure(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (a *API) handleUpdateInfrastructure(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var in InfrastructureUpdate
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	asset, err := a.UpdateInfrastructure(ctx, actorFromContext(r.Context()), id, in)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (a *API) handleDeleteInfrastructure(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.DeleteInfrastructure(ctx, actorFromContext(r.Context()), id, confirmParam(r)); err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleCopyInfrastructure(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	in, err := a.CopyInfrastructure(ctx, id)
	if err != nil {
		respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, in)
}
