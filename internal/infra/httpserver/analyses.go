package httpserver

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
	"github.com/bryanwahyu/interpretlab/internal/middleware"
)

// POST /v1/analyses
func (r *Router) handleCreateAnalysis(w http.ResponseWriter, req *http.Request) error {
	var in analyses.Input
	if err := decode(w, req, &in, false); err != nil {
		return err
	}
	a, err := r.catalog.CreateAnalysis(req.Context(), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, a)
	return nil
}

// GET /v1/analyses?status=completed
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	list, err := r.catalog.ListAnalyses(req.Context(), analyses.Filter{Status: analyses.Status(req.URL.Query().Get("status"))})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /v1/analyses/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	a, err := r.catalog.GetAnalysisByID(req.Context(), id)
	if err != nil {
		return err
	}
	if a == nil {
		return notFound(core.EntityAnalysis, id)
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}

// PATCH /v1/analyses/{id}/status
// Body: {"status": "completed", "results": {...}}; results may be omitted or null.
func (r *Router) handleAnalysisStatus(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status  analyses.Status     `json:"status"`
		Results core.OptionalObject `json:"results"`
	}
	if err := decode(w, req, &body, false); err != nil {
		return err
	}
	a, err := r.catalog.UpdateAnalysisStatus(req.Context(), id, body.Status, body.Results)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}

// POST /v1/analyses/{id}/run?wait=true
// Without wait the run is queued and 202 is returned immediately.
func (r *Router) handleRunAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	a, err := r.catalog.GetAnalysisByID(req.Context(), id)
	if err != nil {
		return err
	}
	if a == nil {
		return notFound(core.EntityAnalysis, id)
	}
	// dicek ulang secara atomik saat worker mulai
	if !a.Status.Runnable() {
		return &core.TransitionError{
			Entity: core.EntityAnalysis, ID: id, From: string(a.Status), To: string(analyses.StatusRunning),
		}
	}

	if req.URL.Query().Get("wait") == "true" || r.queue == nil {
		if r.runner == nil {
			return errNotConfigured
		}
		done, err := r.runner.Execute(req.Context(), id)
		if done == nil {
			return err
		}
		if err != nil {
			// gagal dari engine sudah tercatat sebagai status failed
			r.log.Warn("analysis run failed", zap.Int64("analysis_id", int64(id)), zap.Error(err))
		}
		writeJSON(w, http.StatusOK, done)
		return nil
	}

	if err := r.queue.Enqueue(id); err != nil {
		return err
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":      "queued",
		"analysis_id": id,
		"message":     "analysis started in background",
		"queuedAt":    time.Now().UTC(),
	})
	return nil
}

// POST /v1/analyses/{id}/render
// Body (optional): {"chart_type": "bar_chart"}
func (r *Router) handleRenderAnalysis(w http.ResponseWriter, req *http.Request) error {
	if r.render == nil {
		return errNotConfigured
	}
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	var body struct {
		ChartType visualizations.ChartType `json:"chart_type"`
	}
	if err := decode(w, req, &body, true); err != nil {
		return err
	}
	v, err := r.render.Render(req.Context(), id, body.ChartType)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, v)
	return nil
}

// GET /v1/analyses/{id}/visualizations
func (r *Router) handleAnalysisVisualizations(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	list, err := r.catalog.ListVisualizationsByAnalysis(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}
