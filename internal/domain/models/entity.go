package models

import (
	"time"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Type enum
type Type string

const (
	TypeTraditionalML Type = "traditional_ml"
	TypeDeepLearning  Type = "deep_learning"
)

func (t Type) Valid() bool {
	return t == TypeTraditionalML || t == TypeDeepLearning
}

// Status enum
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// Statuses lists every status in declaration order.
func Statuses() []string {
	return []string{
		string(StatusUploading),
		string(StatusProcessing),
		string(StatusReady),
		string(StatusError),
	}
}

// Aggregate Root: Model
type Model struct {
	ID          core.ID     `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	ModelType   Type        `json:"model_type"`
	Framework   string      `json:"framework"`
	FilePath    string      `json:"file_path"`
	FileSize    int64       `json:"file_size"`
	Status      Status      `json:"status"`
	Metadata    core.Object `json:"metadata"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Clone returns a copy that shares nothing mutable with m.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	cp := *m
	if m.Description != nil {
		d := *m.Description
		cp.Description = &d
	}
	cp.Metadata = m.Metadata.Clone()
	return &cp
}

// Input is what a caller may supply on creation. Status is not part of it.
type Input struct {
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	ModelType   Type        `json:"model_type"`
	Framework   string      `json:"framework"`
	FilePath    string      `json:"file_path"`
	FileSize    int64       `json:"file_size"`
	Metadata    core.Object `json:"metadata"`
}

// Validate checks required fields and normalizes metadata in place.
func (in *Input) Validate() error {
	if err := core.RequireText("name", in.Name); err != nil {
		return err
	}
	if !in.ModelType.Valid() {
		return &core.ValidationError{Field: "model_type", Reason: "must be traditional_ml or deep_learning"}
	}
	if err := core.RequireText("framework", in.Framework); err != nil {
		return err
	}
	if err := core.RequireText("file_path", in.FilePath); err != nil {
		return err
	}
	if err := core.RequirePositive("file_size", in.FileSize); err != nil {
		return err
	}
	md, err := core.RequireObject("metadata", in.Metadata, true)
	if err != nil {
		return err
	}
	in.Metadata = md
	return nil
}

// Build turns validated input into a new Model in the uploading state.
func (in Input) Build() *Model {
	return &Model{
		Name:        in.Name,
		Description: in.Description,
		ModelType:   in.ModelType,
		Framework:   in.Framework,
		FilePath:    in.FilePath,
		FileSize:    in.FileSize,
		Status:      StatusUploading,
		Metadata:    in.Metadata,
	}
}
