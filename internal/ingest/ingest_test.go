package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonExport = `[
  {"_id": "a", "title": "Login", "points": {"total": 2, "done": 1.5},
   "labels": ["bug", null], "categories": "Bug Fixes, Feature", "focus_areas": ["Backend"],
   "createdAt": "2024-01-02T10:00:00Z"},
  {"_id": "b", "points": "broken"},
  {"_id": "c", "title": 42, "createdAt": "2024-01-03T10:00:00Z"}
]`

func TestDecodeJSON(t *testing.T) {
	res, err := Decode(strings.NewReader(jsonExport), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Records)
	require.Len(t, res.Tasks, 1)
	require.Len(t, res.Skipped, 2)

	task := res.Tasks[0]
	assert.Equal(t, "a", task.ID)
	assert.Equal(t, []string{"Bug Fixes", "Feature"}, []string(task.Categories))
	assert.Equal(t, []string{"bug", ""}, task.Labels)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), task.CreatedAt.UTC())

	assert.Equal(t, 1, res.Skipped[0].Index)
	assert.Equal(t, 2, res.Skipped[1].Index)
	assert.Contains(t, res.Skipped[0].Error(), "record 1")
}

func TestDecodeJSON_Envelope(t *testing.T) {
	res, err := Decode(strings.NewReader(`{"tasks": [{"id": "x"}, {"id": "y"}]}`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "y", res.Tasks[1].ID)
}

func TestDecodeJSON_SchemaWarning(t *testing.T) {
	input := `[
  {"id": "neg", "points": {"total": -1, "done": 2}},
  {"id": "ok", "points": {"total": 1, "done": 2}},
  {"id": "neg-lines", "commits": [{"message": "m", "files": [{"filename": "a", "deletions": -3}]}]}
]`
	res, err := Decode(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)

	require.Len(t, res.Tasks, 3, "schema violations keep the record")
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, 0, res.Warnings[0].Index)
	assert.Equal(t, 2, res.Warnings[1].Index)
}

func TestDecodeJSON_TypeMismatchSkipped(t *testing.T) {
	inputs := []string{
		`[{"id": "x", "assignees": [1, 2]}]`,
		`[{"id": "x", "commits": [{"files": [{"additions": 1.5}]}]}]`,
		`[{"id": "x", "statusEdits": [{"from": 1}]}]`,
		`[{"id": "x", "pointsBurnedEdits": {}}]`,
	}
	for _, in := range inputs {
		res, err := Decode(strings.NewReader(in), FormatJSON)
		require.NoError(t, err)
		assert.Empty(t, res.Tasks, in)
		assert.Len(t, res.Skipped, 1, in)
	}
}

func TestValidateRecord(t *testing.T) {
	assert.NoError(t, ValidateRecord([]byte(`{"id": "x", "points": {"total": 1, "done": 0}}`)))
	assert.Error(t, ValidateRecord([]byte(`{"id": "x", "points": {"total": "one"}}`)))
	assert.Error(t, ValidateRecord([]byte(`[1]`)))
	assert.Error(t, ValidateRecord([]byte(`{`)))
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"id": `), FormatJSON)
	assert.Error(t, err)

	res, err := Decode(strings.NewReader("  "), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)
}

func TestDecodeJSONL(t *testing.T) {
	input := `{"id": "a", "points": {"total": 1, "done": 1}}

not json
{"id": "c"}
`
	res, err := Decode(strings.NewReader(input), FormatJSONL)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Records)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "c", res.Tasks[1].ID)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 1, res.Skipped[0].Index)
}

func TestDecodeYAML(t *testing.T) {
	input := `
- id: a
  title: Login
  points: {total: 2, done: 0.5}
  categories: Bug Fixes,Feature
  focus_areas: [Backend]
  createdAt: 2024-01-02T10:00:00Z
  statusEdits:
    - {from: Sprint Planning, to: In Progress}
- id: b
  points: [1, 2]
`
	res, err := Decode(strings.NewReader(input), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Records)
	require.Len(t, res.Tasks, 1)
	task := res.Tasks[0]
	assert.Equal(t, "a", task.ID)
	assert.Equal(t, 0.5, task.Points.Done)
	assert.Equal(t, []string{"Bug Fixes", "Feature"}, []string(task.Categories))
	assert.Equal(t, "In Progress", task.StatusEdits[0].To)
	assert.Equal(t, 2024, task.CreatedAt.Year())
	require.Len(t, res.Skipped, 1)

	empty, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, empty.Tasks)
}

func TestDecodeYAML_Envelope(t *testing.T) {
	input := `
tasks:
  - _id: m1
    points: {total: 1, done: 1}
    createdAt: 2024-01-02
  - _id: m2
`
	res, err := Decode(strings.NewReader(input), FormatYAML)
	require.NoError(t, err)

	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "m1", res.Tasks[0].ID)
	assert.Equal(t, "m2", res.Tasks[1].ID)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), res.Tasks[0].CreatedAt)

	res, err = Decode(strings.NewReader("tasks:\n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)

	_, err = Decode(strings.NewReader("tasks: nope\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("just a string\n"), FormatYAML)
	assert.Error(t, err)
}

func TestDecodeJSON_LenientDates(t *testing.T) {
	input := `[
  {"_id": "due", "dueDate": "2024-03-01", "createdAt": "2024-01-01T08:00:00Z"},
  {"_id": "day", "createdAt": "2024-01-02"},
  {"_id": "rfc", "dueDate": "2024-03-01T00:00:00Z", "createdAt": "2024-01-03T08:00:00Z"},
  {"_id": "odd", "createdAt": "not a date"}
]`
	res, err := Decode(strings.NewReader(input), FormatJSON)
	require.NoError(t, err)

	assert.Empty(t, res.Skipped)
	require.Len(t, res.Tasks, 4)
	assert.True(t, bool(res.Tasks[0].DueDate))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), res.Tasks[1].CreatedAt)
	assert.False(t, bool(res.Tasks[1].DueDate))
	assert.True(t, bool(res.Tasks[2].DueDate))
	assert.True(t, res.Tasks[3].CreatedAt.IsZero())
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"tasks.json", FormatJSON, false},
		{"tasks.JSONL", FormatJSONL, false},
		{"tasks.ndjson", FormatJSONL, false},
		{"tasks.yml", FormatYAML, false},
		{"tasks.csv", "", true},
		{"tasks", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Decode(strings.NewReader(""), Format("csv"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonExport), 0o600))

	res, data, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, res.Tasks, 1)
	assert.Equal(t, jsonExport, string(data))

	_, _, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
