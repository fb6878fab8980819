package validation

import (
	"testing"

	apperrors "startup-scoring/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreDataSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"startup_id", "source"},
		"properties": map[string]interface{}{
			"startup_id": map[string]interface{}{"type": "string", "minLength": 1},
			"source": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"investor_score", "readiness_score", "validation_report", "health_score"},
			},
			"overall_score": map[string]interface{}{"type": "number"},
		},
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(map[string]map[string]interface{}{"score-data": scoreDataSchema()})
	require.NoError(t, err)
	return v
}

func TestValidator_ValidateJSON(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name       string
		body       string
		valid      bool
		wantCode   string
	}{
		{name: "valid", body: `{"startup_id":"s-1","source":"health_score","overall_score":42}`, valid: true},
		{name: "missing startup id", body: `{"source":"health_score"}`, valid: false, wantCode: "required"},
		{name: "unknown source", body: `{"startup_id":"s-1","source":"gut_feeling"}`, valid: false, wantCode: "enum"},
		{name: "empty startup id", body: `{"startup_id":"","source":"health_score"}`, valid: false, wantCode: "string_gte"},
		{name: "malformed json", body: `{"startup_id":`, valid: false, wantCode: "invalid_json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateJSON("score-data", []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.wantCode != "" {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantCode, result.Errors[0].Code)
			}
		})
	}
}

func TestValidator_ValidateDocument(t *testing.T) {
	v := newTestValidator(t)

	result, err := v.ValidateDocument("score-data", map[string]interface{}{"startup_id": "s-1", "source": "investor_score"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.NoError(t, result.Err())
}

func TestValidationResult_Err(t *testing.T) {
	v := newTestValidator(t)

	result, err := v.ValidateJSON("score-data", []byte(`{"startup_id":"s-1"}`))
	require.NoError(t, err)

	vErr := result.Err()
	require.Error(t, vErr)
	assert.True(t, apperrors.HasCode(vErr, apperrors.ErrCodeValidationFailed))
	assert.Contains(t, vErr.Error(), "source")
}

func TestValidator_UnknownSchema(t *testing.T) {
	v := newTestValidator(t)
	assert.False(t, v.Has("nope"))
	_, err := v.ValidateJSON("nope", []byte(`{}`))
	assert.Error(t, err)
}

func TestNewValidator_RejectsBrokenSchema(t *testing.T) {
	_, err := NewValidator(map[string]map[string]interface{}{
		"broken": {"type": 12},
	})
	assert.Error(t, err)
}
