package httpserver

import (
	"net/http"

	"github.com/bryanwahyu/interpretlab/internal/application/catalog"
	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

// GET /v1/summary?model_status=&dataset_status=&analysis_status=
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	summary, err := r.catalog.Summary(req.Context(), catalog.SummaryQuery{
		ModelStatus:    models.Status(q.Get("model_status")),
		DatasetStatus:  datasets.Status(q.Get("dataset_status")),
		AnalysisStatus: analyses.Status(q.Get("analysis_status")),
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, summary)
	return nil
}
