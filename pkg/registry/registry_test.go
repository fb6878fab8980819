package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{"compute-validation-score", "evaluate-workflow-triggers", "calculate-health-score"} {
		a, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, a.InputSchema)
	}
	for _, fn := range []string{"compute-score", "health-scorer", "workflow-trigger"} {
		f, ok := reg.Function(fn)
		require.True(t, ok, fn)
		assert.Contains(t, f.Path, fn)
	}
}

func TestSchemas_InlinesDefinitions(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	schemas, err := reg.Schemas()
	require.NoError(t, err)
	assert.Len(t, schemas, 6)

	trig := schemas["evaluate-workflow-triggers"]
	assert.NotContains(t, trig, "$ref")
	assert.Equal(t, "object", trig["type"])

	props := schemas["compute-score"]["properties"].(map[string]interface{})
	factors := props["market_factors"].(map[string]interface{})
	assert.Equal(t, []interface{}{"array", "null"}, factors["type"])
}

func TestSchemas_Errors(t *testing.T) {
	t.Run("unknown definition", func(t *testing.T) {
		reg := &ActivityRegistry{Activities: []Activity{{TaskType: "x", InputSchema: map[string]interface{}{"$ref": "#/definitions/missing"}}}}
		_, err := reg.Schemas()
		assert.ErrorContains(t, err, "unknown definition missing")
	})

	t.Run("recursive definition", func(t *testing.T) {
		reg := &ActivityRegistry{
			Definitions: map[string]map[string]interface{}{"loop": {"$ref": "#/definitions/loop"}},
			Activities:  []Activity{{TaskType: "x", InputSchema: map[string]interface{}{"$ref": "#/definitions/loop"}}},
		}
		_, err := reg.Schemas()
		assert.ErrorContains(t, err, "recursive definition loop")
	})
}

func TestValidate(t *testing.T) {
	valid := func() Activity {
		return Activity{ID: "a", DisplayName: "A", TaskType: "a", Category: "scoring"}
	}

	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{"empty", ActivityRegistry{}, "no activities"},
		{"duplicate id", ActivityRegistry{Activities: []Activity{valid(), valid()}}, "duplicate activity ID"},
		{"duplicate task type", ActivityRegistry{Activities: []Activity{valid(), {ID: "b", DisplayName: "B", TaskType: "a", Category: "c"}}}, "duplicate task type"},
		{"missing category", ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A", TaskType: "a"}}}, "Category"},
		{"bad schema", ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A", TaskType: "a", Category: "c", InputSchema: map[string]interface{}{"type": 42}}}}, "does not compile"},
		{"function without path", ActivityRegistry{Activities: []Activity{valid()}, Functions: []Function{{ID: "f"}}}, "ID or Path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, defaultRegistry, 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 3)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Parse([]byte("{"))
	assert.Error(t, err)
}
