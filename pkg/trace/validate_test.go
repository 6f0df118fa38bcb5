package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorValidate(t *testing.T) {
	validator := NewValidator()

	t.Run("accepts a valid document", func(t *testing.T) {
		assert.NoError(t, validator.Validate([]byte(sampleDocument)))
	})

	t.Run("accepts an empty event array", func(t *testing.T) {
		assert.NoError(t, validator.Validate([]byte(`{"otherData": {},"traceEvents":[]}`)))
	})

	t.Run("rejects an unterminated document before schema checks", func(t *testing.T) {
		err := validator.Validate([]byte(`{"otherData": {},"traceEvents":[`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run repair first")
	})

	tests := []struct {
		name string
		data string
	}{
		{
			name: "wrong category",
			data: `{"otherData": {},"traceEvents":[{"cat":"net","dur":500,"name":"A","ph":"X","pid":0,"tid":7,"ts":1000}]}`,
		},
		{
			name: "wrong phase",
			data: `{"otherData": {},"traceEvents":[{"cat":"function","dur":500,"name":"A","ph":"B","pid":0,"tid":7,"ts":1000}]}`,
		},
		{
			name: "nonzero pid",
			data: `{"otherData": {},"traceEvents":[{"cat":"function","dur":500,"name":"A","ph":"X","pid":42,"tid":7,"ts":1000}]}`,
		},
		{
			name: "negative duration",
			data: `{"otherData": {},"traceEvents":[{"cat":"function","dur":-1,"name":"A","ph":"X","pid":0,"tid":7,"ts":1000}]}`,
		},
		{
			name: "missing name field",
			data: `{"otherData": {},"traceEvents":[{"cat":"function","dur":500,"ph":"X","pid":0,"tid":7,"ts":1000}]}`,
		},
		{
			name: "missing trace events",
			data: `{"otherData": {},"events":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			err := validator.Validate([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation errors")
		})
	}
}

func TestValidatorValidateFile(t *testing.T) {
	validator := NewValidator()

	t.Run("validates a file on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trace.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0644))
		assert.NoError(t, validator.ValidateFile(path))
	})

	t.Run("fails on missing file", func(t *testing.T) {
		err := validator.ValidateFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read trace file")
	})
}
