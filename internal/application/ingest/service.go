// Package ingest stores uploaded model and dataset files and records them in
// the catalog.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/domain/artifacts"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

// Catalog is the part of the facade the upload flow writes through.
type Catalog interface {
	CreateModel(ctx context.Context, in models.Input) (*models.Model, error)
	UpdateModelStatus(ctx context.Context, id core.ID, status models.Status, metadata core.OptionalObject) (*models.Model, error)
	CreateDataset(ctx context.Context, in datasets.Input) (*datasets.Dataset, error)
	UpdateDatasetStatus(ctx context.Context, id core.ID, status datasets.Status, metadata core.OptionalObject) (*datasets.Dataset, error)
	ApplyShape(ctx context.Context, id core.ID, shape datasets.Shape) (*datasets.Dataset, error)
}

type Service struct {
	Catalog      Catalog
	Artifacts    artifacts.Store
	Introspector datasets.Introspector
	Log          *zap.Logger
	// TempDir is where uploads are staged; empty means os.TempDir().
	TempDir string
}

// File is an uploaded body plus the name the client gave it.
type File struct {
	Name string
	Body io.Reader
}

type ModelUpload struct {
	Name        string
	Description *string
	ModelType   models.Type
	Framework   string
	Metadata    core.Object
	File        File
}

type DatasetUpload struct {
	Name        string
	Description *string
	// FileType may be empty; it is then taken from the file extension.
	FileType datasets.FileType
	Metadata core.Object
	File     File
}

// UploadModel stages the file, creates the model row (uploading), stores the
// artifact and marks the model ready. A failure after the row exists marks
// it error with {"error": msg} and the row is still returned.
func (s *Service) UploadModel(ctx context.Context, up ModelUpload) (*models.Model, error) {
	local, size, err := s.stage(up.File)
	if err != nil {
		return nil, err
	}
	defer os.Remove(local)

	key := Key(core.EntityModel, up.File.Name)
	m, err := s.Catalog.CreateModel(ctx, models.Input{
		Name:        up.Name,
		Description: up.Description,
		ModelType:   up.ModelType,
		Framework:   up.Framework,
		FilePath:    key,
		FileSize:    size,
		Metadata:    up.Metadata,
	})
	if err != nil {
		return nil, err
	}
	log := s.logger().With(zap.Int64("model_id", int64(m.ID)), zap.String("key", key))

	url, err := s.Artifacts.UploadAndCleanup(ctx, local, key)
	if err != nil {
		log.Error("model upload failed", zap.Error(err))
		failed, uerr := s.Catalog.UpdateModelStatus(context.WithoutCancel(ctx), m.ID, models.StatusError, core.Some(withError(m.Metadata, err)))
		if uerr != nil {
			return nil, fmt.Errorf("mark model %d error: %w", m.ID, uerr)
		}
		return failed, err
	}

	ready, err := s.Catalog.UpdateModelStatus(ctx, m.ID, models.StatusReady, core.Some(withURL(m.Metadata, url)))
	if err != nil {
		return nil, err
	}
	log.Info("model stored")
	return ready, nil
}

// UploadDataset is UploadModel for datasets, with introspection of the
// staged file between processing and ready.
func (s *Service) UploadDataset(ctx context.Context, up DatasetUpload) (*datasets.Dataset, error) {
	fileType := up.FileType
	if fileType == "" {
		fileType = datasets.FileType(strings.TrimPrefix(strings.ToLower(filepath.Ext(up.File.Name)), "."))
	}
	if !fileType.Valid() {
		return nil, &core.ValidationError{Field: "file_type", Reason: "must be csv or json"}
	}

	local, size, err := s.stage(up.File)
	if err != nil {
		return nil, err
	}
	defer os.Remove(local)

	key := Key(core.EntityDataset, up.File.Name)
	d, err := s.Catalog.CreateDataset(ctx, datasets.Input{
		Name:        up.Name,
		Description: up.Description,
		FileType:    fileType,
		FilePath:    key,
		FileSize:    size,
		Columns:     []string{},
		Metadata:    up.Metadata,
	})
	if err != nil {
		return nil, err
	}
	log := s.logger().With(zap.Int64("dataset_id", int64(d.ID)), zap.String("key", key))

	fail := func(cause error) (*datasets.Dataset, error) {
		log.Error("dataset ingest failed", zap.Error(cause))
		failed, err := s.Catalog.UpdateDatasetStatus(context.WithoutCancel(ctx), d.ID, datasets.StatusError, core.Some(withError(d.Metadata, cause)))
		if err != nil {
			return nil, fmt.Errorf("mark dataset %d error: %w", d.ID, err)
		}
		return failed, cause
	}

	if _, err := s.Catalog.UpdateDatasetStatus(ctx, d.ID, datasets.StatusProcessing, core.Omitted()); err != nil {
		return fail(err)
	}
	shape, err := s.Introspector.Inspect(ctx, local, fileType)
	if err != nil {
		return fail(err)
	}
	if _, err := s.Catalog.ApplyShape(ctx, d.ID, shape); err != nil {
		return fail(err)
	}
	url, err := s.Artifacts.UploadAndCleanup(ctx, local, key)
	if err != nil {
		return fail(err)
	}

	ready, err := s.Catalog.UpdateDatasetStatus(ctx, d.ID, datasets.StatusReady, core.Some(withURL(d.Metadata, url)))
	if err != nil {
		return nil, err
	}
	log.Info("dataset stored", zap.Int64("rows", shape.RowCount), zap.Int("columns", len(shape.Columns)))
	return ready, nil
}

// stage copies the body to a temp file and returns its path and size.
func (s *Service) stage(f File) (string, int64, error) {
	if f.Body == nil {
		return "", 0, &core.ValidationError{Field: "file", Reason: "is required"}
	}
	tmp, err := os.CreateTemp(s.TempDir, "ingest-*"+filepath.Ext(f.Name))
	if err != nil {
		return "", 0, err
	}
	size, err := io.Copy(tmp, f.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("stage upload: %w", err)
	}
	if size == 0 {
		os.Remove(tmp.Name())
		return "", 0, &core.ValidationError{Field: "file", Reason: "must not be empty"}
	}
	return tmp.Name(), size, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Key builds the artifact key <kind>/<uuid>/<sanitized file name>.
func Key(kind core.Entity, fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%ss/%s/%s", kind, uuid.NewString(), name)
}

func withURL(md core.Object, url string) core.Object {
	out := md.Clone()
	if out == nil {
		out = core.Object{}
	}
	out["artifact_url"] = url
	return out
}

func withError(md core.Object, err error) core.Object {
	out := md.Clone()
	if out == nil {
		out = core.Object{}
	}
	out["error"] = err.Error()
	return out
}
