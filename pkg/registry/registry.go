// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed activities.json
var defaultRegistry []byte

const definitionsPrefix = "#/definitions/"

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return Parse(defaultRegistry)
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return &reg, nil
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Function returns the HTTP function with the given id.
func (r *ActivityRegistry) Function(id string) (*Function, bool) {
	for i := range r.Functions {
		if r.Functions[i].ID == id {
			return &r.Functions[i], true
		}
	}
	return nil, false
}

// Schemas returns every activity input schema keyed by task type and every
// function body schema keyed by function id, with definition references
// inlined.
func (r *ActivityRegistry) Schemas() (map[string]map[string]interface{}, error) {
	out := make(map[string]map[string]interface{}, len(r.Activities)+len(r.Functions))
	add := func(name string, schema map[string]interface{}) error {
		if _, dup := out[name]; dup {
			return fmt.Errorf("schema %s defined twice", name)
		}
		resolved, err := r.resolve(schema, nil)
		if err != nil {
			return fmt.Errorf("schema %s: %w", name, err)
		}
		out[name] = resolved.(map[string]interface{})
		return nil
	}

	for _, a := range r.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		if err := add(a.TaskType, a.InputSchema); err != nil {
			return nil, err
		}
	}
	for _, f := range r.Functions {
		if len(f.BodySchema) == 0 {
			continue
		}
		if err := add(f.ID, f.BodySchema); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resolve copies node, replacing {"$ref": "#/definitions/x"} with the definition.
// seen guards against self-referencing definitions.
func (r *ActivityRegistry) resolve(node interface{}, seen []string) (interface{}, error) {
	switch n := node.(type) {
	case map[string]interface{}:
		if ref, ok := n["$ref"].(string); ok && strings.HasPrefix(ref, definitionsPrefix) {
			name := strings.TrimPrefix(ref, definitionsPrefix)
			for _, s := range seen {
				if s == name {
					return nil, fmt.Errorf("recursive definition %s", name)
				}
			}
			def, ok := r.Definitions[name]
			if !ok {
				return nil, fmt.Errorf("unknown definition %s", name)
			}
			return r.resolve(def, append(seen, name))
		}
		out := make(map[string]interface{}, len(n))
		for k, v := range n {
			rv, err := r.resolve(v, seen)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, v := range n {
			rv, err := r.resolve(v, seen)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return node, nil
	}
}

// Validate checks required fields, unique ids and task types, and that every
// schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
	}

	for _, f := range r.Functions {
		if f.ID == "" || f.Path == "" {
			return fmt.Errorf("function missing required field: ID or Path")
		}
	}

	schemas, err := r.Schemas()
	if err != nil {
		return err
	}
	for name, schema := range schemas {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
			return fmt.Errorf("schema %s does not compile: %w", name, err)
		}
	}
	return nil
}
