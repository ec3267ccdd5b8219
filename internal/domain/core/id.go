package core

import (
	"strconv"
	"strings"
)

// ID identifies a stored entity. Stores assign ids starting at 1.
type ID int64

func (id ID) Valid() bool { return id > 0 }

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseID reads a positive decimal id, e.g. from a URL path segment.
func ParseID(field, raw string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, &ValidationError{Field: field, Reason: "must be a positive integer"}
	}
	return ID(n), nil
}

// Entity names one of the four stored kinds.
type Entity string

const (
	EntityModel         Entity = "model"
	EntityDataset       Entity = "dataset"
	EntityAnalysis      Entity = "analysis"
	EntityVisualization Entity = "visualization"
)
