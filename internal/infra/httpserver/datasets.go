package httpserver

import (
	"net/http"

	"github.com/bryanwahyu/interpretlab/internal/application/ingest"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/middleware"
)

// POST /v1/datasets
func (r *Router) handleCreateDataset(w http.ResponseWriter, req *http.Request) error {
	var in datasets.Input
	if err := decode(w, req, &in, false); err != nil {
		return err
	}
	d, err := r.catalog.CreateDataset(req.Context(), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, d)
	return nil
}

// GET /v1/datasets?status=ready
func (r *Router) handleListDatasets(w http.ResponseWriter, req *http.Request) error {
	list, err := r.catalog.ListDatasets(req.Context(), datasets.Filter{Status: datasets.Status(req.URL.Query().Get("status"))})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /v1/datasets/{id}
func (r *Router) handleGetDataset(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	d, err := r.catalog.GetDatasetByID(req.Context(), id)
	if err != nil {
		return err
	}
	if d == nil {
		return notFound(core.EntityDataset, id)
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// PATCH /v1/datasets/{id}/status
func (r *Router) handleDatasetStatus(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status   datasets.Status     `json:"status"`
		Metadata core.OptionalObject `json:"metadata"`
	}
	if err := decode(w, req, &body, false); err != nil {
		return err
	}
	d, err := r.catalog.UpdateDatasetStatus(req.Context(), id, body.Status, body.Metadata)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, d)
	return nil
}

// GET /v1/datasets/{id}/analyses
func (r *Router) handleDatasetAnalyses(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	list, err := r.catalog.ListAnalysesByDataset(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// POST /v1/datasets/upload (multipart: file, name, file_type?, description?, metadata?)
func (r *Router) handleUploadDataset(w http.ResponseWriter, req *http.Request) error {
	if r.ingest == nil {
		return errNotConfigured
	}
	form, err := readUpload(w, req)
	if err != nil {
		return err
	}
	defer form.close()

	d, err := r.ingest.UploadDataset(req.Context(), ingest.DatasetUpload{
		Name:        form.value("name"),
		Description: form.optional("description"),
		FileType:    datasets.FileType(form.value("file_type")),
		Metadata:    form.metadata,
		File:        form.file,
	})
	if err != nil && d == nil {
		return err
	}
	writeJSON(w, http.StatusCreated, d)
	return nil
}
