package ptv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type departure struct {
	StopID       int    `json:"stop_id" validate:"required"`
	ScheduledUTC string `json:"scheduled_departure_utc" validate:"required"`
}

func TestStructSchemaValid(t *testing.T) {
	s := NewStructSchema[departure]()
	data, issues := s.SafeParse([]byte(`{"stop_id":1071,"scheduled_departure_utc":"2024-01-02T03:04:05Z"}`))
	require.Empty(t, issues)
	dep, ok := data.(departure)
	require.True(t, ok)
	assert.Equal(t, 1071, dep.StopID)
}

func TestStructSchemaInvalid(t *testing.T) {
	s := NewStructSchema[departure]()
	data, issues := s.SafeParse([]byte(`{"stop_id":1071}`))
	assert.Nil(t, data)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Path, "ScheduledUTC")
	assert.Contains(t, issues[0].Message, "required")
}

func TestStructSchemaMalformedJSON(t *testing.T) {
	s := NewStructSchema[departure]()
	data, issues := s.SafeParse([]byte(`{`))
	assert.Nil(t, data)
	require.Len(t, issues, 1)
	assert.Equal(t, "$", issues[0].Path)
}

func TestStructSchemaNonStructPayload(t *testing.T) {
	s := NewStructSchema[map[string]int]()
	data, issues := s.SafeParse([]byte(`{"a":1}`))
	require.Empty(t, issues)
	assert.Equal(t, map[string]int{"a": 1}, data)
}

func TestRawSchema(t *testing.T) {
	data, issues := RawSchema.SafeParse([]byte(`{"anything":[1,2,3]}`))
	require.Empty(t, issues)
	m, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, m["anything"], 3)

	_, issues = RawSchema.SafeParse([]byte(`nope`))
	assert.NotEmpty(t, issues)
}

func TestSchemaFuncAdapter(t *testing.T) {
	called := false
	s := SchemaFunc(func(raw []byte) (any, []Issue) {
		called = true
		return string(raw), nil
	})
	data, issues := s.SafeParse([]byte("x"))
	assert.True(t, called)
	assert.Empty(t, issues)
	assert.Equal(t, "x", data)
}
