// Package ingest reads task exports from disk and decodes them into raw
// task records, skipping records that cannot be decoded.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tasknexus/tasknexus/pkg/models"
)

// Format is an export file format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }

// ErrUnsupportedFormat is returned for file extensions and format names
// that have no decoder.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// RecordError ties a decode or validation problem to a record position.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Result is the outcome of decoding one export.
type Result struct {
	Tasks []models.RawTask
	// Skipped lists records that could not be decoded at all.
	Skipped []*RecordError
	// Warnings lists decoded records that do not match the task schema.
	Warnings []*RecordError
	// Records is the number of records seen, decoded or not.
	Records int
}

// LoadFile reads and decodes the export at path.
func LoadFile(path string) (*Result, []byte, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, data, nil
}

// Decode reads every record from r. Only a structurally unreadable
// document is an error; bad records are skipped and reported in Result.
func Decode(r io.Reader, format Format) (*Result, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatJSONL:
		return decodeJSONL(r)
	case FormatYAML:
		return decodeYAML(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// envelope is the object form of a JSON export: {"tasks": [...]}.
type envelope struct {
	Tasks []json.RawMessage `json:"tasks"`
}

func decodeJSON(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Result{Tasks: []models.RawTask{}}, nil
	}

	var records []json.RawMessage
	if data[0] == '{' {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
		records = env.Tasks
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	res := &Result{Tasks: make([]models.RawTask, 0, len(records))}
	for i, raw := range records {
		res.addJSON(i, raw)
	}
	return res, nil
}

func decodeJSONL(r io.Reader) (*Result, error) {
	res := &Result{Tasks: []models.RawTask{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	i := 0
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		res.addJSON(i, append([]byte(nil), line...))
		i++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading jsonl: %w", err)
	}
	return res, nil
}

func (res *Result) addJSON(i int, raw []byte) {
	res.Records++
	var task models.RawTask
	if err := json.Unmarshal(raw, &task); err != nil {
		res.Skipped = append(res.Skipped, &RecordError{Index: i, Err: err})
		return
	}
	if err := ValidateRecord(raw); err != nil {
		res.Warnings = append(res.Warnings, &RecordError{Index: i, Err: err})
	}
	res.Tasks = append(res.Tasks, task)
}

func decodeYAML(r io.Reader) (*Result, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Result{Tasks: []models.RawTask{}}, nil
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	records, err := yamlRecords(&doc)
	if err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	res := &Result{Tasks: make([]models.RawTask, 0, len(records))}
	for i, node := range records {
		res.Records++
		var task models.RawTask
		if err := node.Decode(&task); err != nil {
			res.Skipped = append(res.Skipped, &RecordError{Index: i, Err: err})
			continue
		}
		res.Tasks = append(res.Tasks, task)
	}
	return res, nil
}

// yamlRecords returns the task nodes of a YAML export: either a top-level
// sequence or the sequence under a "tasks" key.
func yamlRecords(doc *yaml.Node) ([]*yaml.Node, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		return root.Content, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value != "tasks" {
				continue
			}
			tasks := root.Content[i+1]
			if tasks.ShortTag() == "!!null" {
				return nil, nil
			}
			if tasks.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("tasks must be a sequence, got %s", tasks.ShortTag())
			}
			return tasks.Content, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("expected a sequence of tasks, got %s", root.ShortTag())
}
