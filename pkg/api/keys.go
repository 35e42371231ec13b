package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type keyRequest struct {
	Name              string `json:"name"`
	UsageLimitEnabled bool   `json:"usageLimitEnabled"`
	UsageLimitValue   int64  `json:"usageLimitValue"`
}

func (a *KeydeckAPIStruct) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := a.service.ListKeys(r.Context())
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, render.M{"error": "Failed to load API keys. Please try again later."})
		return
	}
	render.JSON(w, r, keys)
}

func (a *KeydeckAPIStruct) CreateKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := a.service.CreateKey(r.Context(), req.Name, req.UsageLimitEnabled, req.UsageLimitValue)
	if !result.Success {
		render.Status(r, http.StatusBadRequest)
	}
	render.JSON(w, r, result)
}

func (a *KeydeckAPIStruct) EditKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	result := a.service.EditKey(r.Context(), id, req.Name, req.UsageLimitEnabled, req.UsageLimitValue)
	if !result.Success {
		render.Status(r, http.StatusBadRequest)
	}
	render.JSON(w, r, result)
}

func (a *KeydeckAPIStruct) DeleteKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result := a.service.DeleteKey(r.Context(), id)
	if !result.Success {
		render.Status(r, http.StatusInternalServerError)
	}
	render.JSON(w, r, result)
}

func (a *KeydeckAPIStruct) LastValidatedKey(w http.ResponseWriter, r *http.Request) {
	key, ok := a.snapshots.LastValidated()
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, render.M{"error": "No API key has been validated yet"})
		return
	}
	render.JSON(w, r, key)
}
