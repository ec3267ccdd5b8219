package core

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
)

// Object is an opaque JSON-shaped map (metadata, parameters, results,
// chart config and data). A nil Object is JSON null.
type Object map[string]any

// NormalizeObject converts o into plain JSON values (map[string]any,
// []any, float64, string, bool, nil) by a JSON round trip. Numbers are
// float64, so integers beyond 2^53 lose precision; callers needing exact
// large ids store them as strings.
func NormalizeObject(o Object) (Object, error) {
	if o == nil {
		return nil, nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("object is not JSON encodable: %w", err)
	}
	var out Object
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clone deep-copies nested maps and slices. Leaf values are shared, which is
// safe for normalized objects since they only hold immutable scalars.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Object(t).Clone())
	case Object:
		return t.Clone()
	case []any:
		if t == nil {
			return t
		}
		cp := make([]any, len(t))
		for i := range t {
			cp[i] = cloneValue(t[i])
		}
		return cp
	default:
		return v
	}
}

// Equal is structural equality after normalization; key order never matters.
func Equal(a, b Object) bool {
	na, errA := NormalizeObject(a)
	nb, errB := NormalizeObject(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

// Value stores the object as JSON text, or NULL.
func (o Object) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan accepts JSON text from any of the supported drivers.
func (o *Object) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("core.Object: unsupported scan type %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*o = nil
		return nil
	}
	var out Object
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("core.Object: %w", err)
	}
	*o = out
	return nil
}

// OptionalObject is a payload that distinguishes an omitted field from an
// explicit null:
//
//	Set == false            leave the stored value untouched
//	Set && Value == nil     overwrite with null
//	Set && Value != nil     replace wholesale
type OptionalObject struct {
	Set   bool
	Value Object
}

// Some wraps v as an explicitly supplied payload (nil means null).
func Some(v Object) OptionalObject { return OptionalObject{Set: true, Value: v} }

// Omitted is the zero payload.
func Omitted() OptionalObject { return OptionalObject{} }

// UnmarshalJSON is only invoked when the key is present, so Set becomes true
// even for a literal null.
func (p *OptionalObject) UnmarshalJSON(b []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		p.Value = nil
		return nil
	}
	var v Object
	if err := json.Unmarshal(b, &v); err != nil {
		return &ValidationError{Field: "payload", Reason: "must be an object or null"}
	}
	p.Value = v
	return nil
}

// Apply returns the value a stored field should hold after the update.
func (p OptionalObject) Apply(current Object) Object {
	if !p.Set {
		return current
	}
	return p.Value
}
