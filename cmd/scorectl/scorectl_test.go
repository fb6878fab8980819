package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"startup-scoring/internal/scoring"
	"startup-scoring/internal/triggers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeRequest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const request = `{"dimensions":{"problemClarity":80,"solutionStrength":70,"marketSize":75,
	"competition":60,"businessModel":65,"teamFit":85,"timing":70}}`

func TestScore(t *testing.T) {
	path := writeRequest(t, request)

	out, err := run(t, "score", "--file", path)
	require.NoError(t, err)

	var result scoring.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 73, result.OverallScore)
	assert.Equal(t, scoring.VerdictCaution, result.Verdict)
}

func TestScore_BiasFlagOverridesRequest(t *testing.T) {
	path := writeRequest(t, request)

	out, err := run(t, "score", "--file", path, "--bias", "5")
	require.NoError(t, err)

	var result scoring.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 78, result.OverallScore)
	assert.Equal(t, scoring.VerdictGo, result.Verdict)
}

func TestScore_Errors(t *testing.T) {
	_, err := run(t, "score")
	assert.Error(t, err, "--file is required")

	_, err = run(t, "score", "--file", filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	_, err = run(t, "score", "--file", writeRequest(t, `{"dimensions":`))
	assert.ErrorContains(t, err, "parse")
}

func TestRules(t *testing.T) {
	out, err := run(t, "rules", "--source", "investor_score")
	require.NoError(t, err)

	var doc struct {
		Count int `yaml:"count"`
		Rules []struct {
			ID     string `yaml:"id"`
			Source string `yaml:"source"`
		} `yaml:"rules"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	want := triggers.FilterBySource(triggers.DefaultRules(), triggers.SourceInvestorScore)
	assert.Equal(t, len(want), doc.Count)
	require.Len(t, doc.Rules, len(want))
	for _, r := range doc.Rules {
		assert.Equal(t, "investor_score", r.Source)
	}
}

func TestRules_UnknownSource(t *testing.T) {
	_, err := run(t, "rules", "--source", "gut_feeling")
	assert.ErrorContains(t, err, "unknown source")
}

func TestRegistryValidate(t *testing.T) {
	out, err := run(t, "registry", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 3 activities, 3 functions")
}

func TestRegistryValidate_DuplicateTaskType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	body := `{"version":"1","activities":[
		{"id":"a","displayName":"A","category":"scoring","taskType":"same","inputSchema":{"type":"object"}},
		{"id":"b","displayName":"B","category":"scoring","taskType":"same","inputSchema":{"type":"object"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	_, err := run(t, "registry", "validate", "--path", path)
	assert.ErrorContains(t, err, "duplicate task type")
}
