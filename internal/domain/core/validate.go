package core

import "strings"

// RequireText rejects empty or whitespace-only strings.
func RequireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

// RequirePositive rejects zero and negative sizes.
func RequirePositive(field string, v int64) error {
	if v <= 0 {
		return &ValidationError{Field: field, Reason: "must be greater than zero"}
	}
	return nil
}

// RequireID rejects ids that can never be assigned by a store.
func RequireID(field string, id ID) error {
	if !id.Valid() {
		return &ValidationError{Field: field, Reason: "must be a positive integer"}
	}
	return nil
}

// RequireObject normalizes o, failing when it cannot be stored as JSON.
func RequireObject(field string, o Object, nullable bool) (Object, error) {
	if o == nil {
		if nullable {
			return nil, nil
		}
		return nil, &ValidationError{Field: field, Reason: "is required"}
	}
	n, err := NormalizeObject(o)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: err.Error()}
	}
	return n, nil
}
