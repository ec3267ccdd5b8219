// Package introspect reads the column layout and row count of dataset files.
package introspect

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
)

var ErrUnreadable = errors.New("dataset file is not readable")

// Files implements datasets.Introspector for csv and json files on disk.
type Files struct{}

func (Files) Inspect(ctx context.Context, localPath string, fileType datasets.FileType) (datasets.Shape, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return datasets.Shape{}, err
	}
	defer f.Close()

	switch fileType {
	case datasets.FileTypeCSV:
		return CSV(ctx, f)
	case datasets.FileTypeJSON:
		return JSON(ctx, f)
	}
	return datasets.Shape{}, fmt.Errorf("%w: unsupported file type %q", ErrUnreadable, fileType)
}

// CSV takes the header as columns and counts the remaining records.
func CSV(ctx context.Context, r io.Reader) (datasets.Shape, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return datasets.Shape{Columns: []string{}}, nil
	}
	if err != nil {
		return datasets.Shape{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows int64
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return datasets.Shape{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		rows++
		if rows%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return datasets.Shape{}, err
			}
		}
	}
	return datasets.Shape{Columns: cols, RowCount: rows}, nil
}

// JSON accepts an array of objects, or an object carrying "columns" and
// "rows" (or "data").
func JSON(ctx context.Context, r io.Reader) (datasets.Shape, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return datasets.Shape{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	switch tok {
	case json.Delim('['):
		return jsonRecords(ctx, dec)
	case json.Delim('{'):
		return jsonTable(dec)
	}
	return datasets.Shape{}, fmt.Errorf("%w: json must be an array or object", ErrUnreadable)
}

func jsonRecords(ctx context.Context, dec *json.Decoder) (datasets.Shape, error) {
	cols := []string{}
	seen := map[string]bool{}
	var rows int64
	for dec.More() {
		keys, err := objectKeys(dec)
		if err != nil {
			return datasets.Shape{}, fmt.Errorf("%w: row %d: %v", ErrUnreadable, rows, err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
		rows++
		if rows%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return datasets.Shape{}, err
			}
		}
	}
	if err := closing(dec); err != nil {
		return datasets.Shape{}, err
	}
	return datasets.Shape{Columns: cols, RowCount: rows}, nil
}

// closing consumes the ']' or '}' that ends the top-level value.
func closing(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return nil
}

// objectKeys reads one object from dec and returns its keys in file order.
func objectKeys(dec *json.Decoder) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, errors.New("row is not an object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	// tutup '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return keys, nil
}

func jsonTable(dec *json.Decoder) (datasets.Shape, error) {
	var shape datasets.Shape
	var haveRows bool
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return datasets.Shape{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		key, _ := tok.(string)
		switch key {
		case "columns":
			if err := dec.Decode(&shape.Columns); err != nil {
				return datasets.Shape{}, fmt.Errorf("%w: columns: %v", ErrUnreadable, err)
			}
		case "rows", "data":
			var rows []json.RawMessage
			if err := dec.Decode(&rows); err != nil {
				return datasets.Shape{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, key, err)
			}
			shape.RowCount = int64(len(rows))
			haveRows = true
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return datasets.Shape{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
			}
		}
	}
	if err := closing(dec); err != nil {
		return datasets.Shape{}, err
	}
	if shape.Columns == nil && !haveRows {
		return datasets.Shape{}, fmt.Errorf("%w: object has no columns or rows", ErrUnreadable)
	}
	if shape.Columns == nil {
		shape.Columns = []string{}
	}
	return shape, nil
}
