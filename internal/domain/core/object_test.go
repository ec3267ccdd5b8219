package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeObjectNested(t *testing.T) {
	in := Object{
		"n":     3,
		"tags":  []string{"a", "b"},
		"inner": map[string]any{"ok": true, "list": []any{1, map[string]any{"x": nil}}},
	}
	out, err := NormalizeObject(in)
	require.NoError(t, err)

	want := Object{
		"n":     float64(3),
		"tags":  []any{"a", "b"},
		"inner": map[string]any{"ok": true, "list": []any{float64(1), map[string]any{"x": nil}}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeObjectNumbersAreFloat64(t *testing.T) {
	out, err := NormalizeObject(Object{
		"exact":  int64(1) << 53,
		"beyond": int64(9007199254740993),
		"as_str": "9007199254740993",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(9007199254740992), out["exact"])
	assert.Equal(t, float64(9007199254740992), out["beyond"], "rounded to the nearest float64")
	assert.Equal(t, "9007199254740993", out["as_str"])
}

func TestNormalizeObjectRejectsUnencodable(t *testing.T) {
	_, err := NormalizeObject(Object{"ch": make(chan int)})
	require.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	orig, err := NormalizeObject(Object{"a": map[string]any{"b": []any{1.0, 2.0}}})
	require.NoError(t, err)

	cp := orig.Clone()
	cp["a"].(map[string]any)["b"].([]any)[0] = 99.0
	cp["new"] = "x"

	assert.Equal(t, 1.0, orig["a"].(map[string]any)["b"].([]any)[0])
	assert.NotContains(t, orig, "new")
	assert.Nil(t, Object(nil).Clone())
}

func TestEqualIgnoresRepresentation(t *testing.T) {
	assert.True(t, Equal(Object{"x": 1, "y": []int{1, 2}}, Object{"y": []any{1.0, 2.0}, "x": 1.0}))
	assert.False(t, Equal(Object{"x": 1}, Object{"x": 2}))
	assert.False(t, Equal(nil, Object{}))
	assert.True(t, Equal(nil, nil))
}

func TestObjectValueScan(t *testing.T) {
	v, err := Object(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Object{"k": []any{"v"}}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"k":["v"]}`, v)

	var o Object
	require.NoError(t, o.Scan([]byte(`{"k":["v"]}`)))
	assert.Equal(t, Object{"k": []any{"v"}}, o)

	require.NoError(t, o.Scan(nil))
	assert.Nil(t, o)

	require.NoError(t, o.Scan("null"))
	assert.Nil(t, o)

	assert.Error(t, o.Scan(42))
}

func TestOptionalObjectJSON(t *testing.T) {
	var body struct {
		Status   string         `json:"status"`
		Metadata OptionalObject `json:"metadata"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"status":"ready"}`), &body))
	assert.False(t, body.Metadata.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"status":"ready","metadata":null}`), &body))
	assert.True(t, body.Metadata.Set)
	assert.Nil(t, body.Metadata.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"status":"ready","metadata":{"a":1}}`), &body))
	assert.True(t, body.Metadata.Set)
	assert.Equal(t, Object{"a": 1.0}, body.Metadata.Value)

	err := json.Unmarshal([]byte(`{"metadata":[1,2]}`), &body)
	require.Error(t, err)
}

func TestOptionalObjectApply(t *testing.T) {
	current := Object{"keep": true}
	assert.Equal(t, current, Omitted().Apply(current))
	assert.Nil(t, Some(nil).Apply(current))
	assert.Equal(t, Object{"new": 1}, Some(Object{"new": 1}).Apply(current))
}
