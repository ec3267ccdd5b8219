package httpserver

import (
	"net/http"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
	"github.com/bryanwahyu/interpretlab/internal/middleware"
)

// POST /v1/visualizations
func (r *Router) handleCreateVisualization(w http.ResponseWriter, req *http.Request) error {
	var in visualizations.Input
	if err := decode(w, req, &in, false); err != nil {
		return err
	}
	v, err := r.catalog.CreateVisualization(req.Context(), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, v)
	return nil
}

// GET /v1/visualizations/{id}
func (r *Router) handleGetVisualization(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	v, err := r.catalog.GetVisualizationByID(req.Context(), id)
	if err != nil {
		return err
	}
	if v == nil {
		return notFound(core.EntityVisualization, id)
	}
	writeJSON(w, http.StatusOK, v)
	return nil
}
