package api

import (
	"net/http"

	"github.com/go-chi/render"
)

type validateRequest struct {
	Key string `json:"key"`
}

// ValidateKey is the playground entry point. The whole feature shuts
// off when the cached aggregate snapshot says the deployment-wide cap
// is spent; individual keys are then not even looked up.
func (a *KeydeckAPIStruct) ValidateKey(w http.ResponseWriter, r *http.Request) {
	if snap, ok := a.snapshots.Aggregate(); ok && a.gate.AggregateExceeded(snap.Count) {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, render.M{"error": "API usage limit exceeded. The playground is currently disabled."})
		return
	}

	var req validateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := a.service.ValidateAndConsume(r.Context(), req.Key)
	if !result.Valid {
		render.Status(r, http.StatusUnauthorized)
	}
	render.JSON(w, r, result)
}

// GetUsage recomputes the aggregate snapshot from a fresh list and
// returns it.
func (a *KeydeckAPIStruct) GetUsage(w http.ResponseWriter, r *http.Request) {
	if _, err := a.service.ListKeys(r.Context()); err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, render.M{"error": "Failed to load API usage. Please try again later."})
		return
	}

	snap, ok := a.snapshots.Aggregate()
	if !ok {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, render.M{"error": "Failed to load API usage. Please try again later."})
		return
	}
	render.JSON(w, r, snap)
}
