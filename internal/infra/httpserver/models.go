package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bryanwahyu/interpretlab/internal/application/ingest"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
	"github.com/bryanwahyu/interpretlab/internal/middleware"
)

// POST /v1/models
func (r *Router) handleCreateModel(w http.ResponseWriter, req *http.Request) error {
	var in models.Input
	if err := decode(w, req, &in, false); err != nil {
		return err
	}
	m, err := r.catalog.CreateModel(req.Context(), in)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, m)
	return nil
}

// GET /v1/models?status=ready
func (r *Router) handleListModels(w http.ResponseWriter, req *http.Request) error {
	list, err := r.catalog.ListModels(req.Context(), models.Filter{Status: models.Status(req.URL.Query().Get("status"))})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /v1/models/{id}
func (r *Router) handleGetModel(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	m, err := r.catalog.GetModelByID(req.Context(), id)
	if err != nil {
		return err
	}
	if m == nil {
		return notFound(core.EntityModel, id)
	}
	writeJSON(w, http.StatusOK, m)
	return nil
}

// PATCH /v1/models/{id}/status
// Body: {"status": "ready", "metadata": {...}}; metadata may be omitted or null.
func (r *Router) handleModelStatus(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status   models.Status       `json:"status"`
		Metadata core.OptionalObject `json:"metadata"`
	}
	if err := decode(w, req, &body, false); err != nil {
		return err
	}
	m, err := r.catalog.UpdateModelStatus(req.Context(), id, body.Status, body.Metadata)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, m)
	return nil
}

// GET /v1/models/{id}/analyses
func (r *Router) handleModelAnalyses(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.PathID(req, "id")
	if err != nil {
		return err
	}
	list, err := r.catalog.ListAnalysesByModel(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// POST /v1/models/upload (multipart: file, name, model_type, framework, description?, metadata?)
func (r *Router) handleUploadModel(w http.ResponseWriter, req *http.Request) error {
	if r.ingest == nil {
		return errNotConfigured
	}
	form, err := readUpload(w, req)
	if err != nil {
		return err
	}
	defer form.close()

	m, err := r.ingest.UploadModel(req.Context(), ingest.ModelUpload{
		Name:        form.value("name"),
		Description: form.optional("description"),
		ModelType:   models.Type(form.value("model_type")),
		Framework:   form.value("framework"),
		Metadata:    form.metadata,
		File:        form.file,
	})
	if err != nil && m == nil {
		return err
	}
	// row sudah tersimpan dengan status error; tetap dikembalikan ke client
	writeJSON(w, http.StatusCreated, m)
	return nil
}

// uploadForm is a parsed multipart upload.
type uploadForm struct {
	req      *http.Request
	file     ingest.File
	metadata core.Object
	closer   func() error
}

func readUpload(w http.ResponseWriter, req *http.Request) (*uploadForm, error) {
	req.Body = http.MaxBytesReader(w, req.Body, middleware.MaxUploadBytes)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, err
		}
		return nil, badRequest{err}
	}
	f, header, err := req.FormFile("file")
	if err != nil {
		return nil, &core.ValidationError{Field: "file", Reason: "is required"}
	}
	form := &uploadForm{
		req:    req,
		file:   ingest.File{Name: header.Filename, Body: f},
		closer: f.Close,
	}
	if raw := req.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.metadata); err != nil {
			f.Close()
			return nil, &core.ValidationError{Field: "metadata", Reason: "must be a JSON object"}
		}
	}
	return form, nil
}

func (f *uploadForm) value(key string) string {
	return middleware.SanitizeString(f.req.FormValue(key))
}

func (f *uploadForm) optional(key string) *string {
	if _, ok := f.req.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := f.value(key)
	return &v
}

func (f *uploadForm) close() {
	_ = f.closer()
	if f.req.MultipartForm != nil {
		_ = f.req.MultipartForm.RemoveAll()
	}
}
