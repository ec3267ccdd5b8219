package datasets

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// FileType enum
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeJSON FileType = "json"
)

func (t FileType) Valid() bool { return t == FileTypeCSV || t == FileTypeJSON }

// Status enum, same shape as models.Status.
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

func Statuses() []string {
	return []string{
		string(StatusUploading),
		string(StatusProcessing),
		string(StatusReady),
		string(StatusError),
	}
}

// Columns is an ordered list of column names. It is never nil once stored.
type Columns []string

func (c Columns) Value() (driver.Value, error) {
	if c == nil {
		c = Columns{}
	}
	b, err := json.Marshal([]string(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Columns) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Columns{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("datasets.Columns: unsupported scan type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("datasets.Columns: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*c = out
	return nil
}

// Aggregate Root: Dataset
type Dataset struct {
	ID          core.ID     `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	FileType    FileType    `json:"file_type"`
	FilePath    string      `json:"file_path"`
	FileSize    int64       `json:"file_size"`
	Columns     Columns     `json:"columns"`
	RowCount    int64       `json:"row_count"`
	Status      Status      `json:"status"`
	Metadata    core.Object `json:"metadata"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	cp := *d
	if d.Description != nil {
		s := *d.Description
		cp.Description = &s
	}
	cp.Columns = append(Columns{}, d.Columns...)
	cp.Metadata = d.Metadata.Clone()
	return &cp
}

// Input is what a caller may supply on creation.
type Input struct {
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	FileType    FileType    `json:"file_type"`
	FilePath    string      `json:"file_path"`
	FileSize    int64       `json:"file_size"`
	Columns     []string    `json:"columns"`
	RowCount    int64       `json:"row_count"`
	Metadata    core.Object `json:"metadata"`
}

func (in *Input) Validate() error {
	if err := core.RequireText("name", in.Name); err != nil {
		return err
	}
	if !in.FileType.Valid() {
		return &core.ValidationError{Field: "file_type", Reason: "must be csv or json"}
	}
	if err := core.RequireText("file_path", in.FilePath); err != nil {
		return err
	}
	if err := core.RequirePositive("file_size", in.FileSize); err != nil {
		return err
	}
	if in.RowCount < 0 {
		return &core.ValidationError{Field: "row_count", Reason: "must not be negative"}
	}
	md, err := core.RequireObject("metadata", in.Metadata, true)
	if err != nil {
		return err
	}
	in.Metadata = md
	return nil
}

func (in Input) Build() *Dataset {
	return &Dataset{
		Name:        in.Name,
		Description: in.Description,
		FileType:    in.FileType,
		FilePath:    in.FilePath,
		FileSize:    in.FileSize,
		Columns:     append(Columns{}, in.Columns...),
		RowCount:    in.RowCount,
		Status:      StatusUploading,
		Metadata:    in.Metadata,
	}
}
