package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RawTask is a single record from an issue-tracker export, before normalization.
// Every field tolerates absence: missing lists decode as nil and missing points as nil.
type RawTask struct {
	ID                   string                `json:"id" yaml:"id"`
	Title                string                `json:"title" yaml:"title"`
	Body                 string                `json:"body" yaml:"body"`
	StatusEdits          []StatusEdit          `json:"statusEdits" yaml:"statusEdits"`
	PointsEstimatedEdits []PointsEstimatedEdit `json:"pointsEstimatedEdits" yaml:"pointsEstimatedEdits"`
	PointsBurnedEdits    []PointsBurnedEdit    `json:"pointsBurnedEdits" yaml:"pointsBurnedEdits"`
	Points               *Points               `json:"points" yaml:"points"`
	Priority             string                `json:"priority" yaml:"priority"`
	DueDate              Presence              `json:"dueDate" yaml:"dueDate"`
	Labels               []string              `json:"labels" yaml:"labels"`
	Comments             []Comment             `json:"comments" yaml:"comments"`
	Commits              []Commit              `json:"commits" yaml:"commits"`
	Assignees            []string              `json:"assignees" yaml:"assignees"`
	Categories           StringList            `json:"categories" yaml:"categories"`
	FocusAreas           StringList            `json:"focus_areas" yaml:"focus_areas"`
	CreatedAt            time.Time             `json:"createdAt" yaml:"createdAt"`
}

// rawTaskJSON mirrors RawTask but also accepts the Mongo-style "_id" key
// that most board exports use. createdAt is shadowed so that any layout
// ParseTime knows decodes, and anything else leaves the zero time.
type rawTaskJSON struct {
	MongoID   string   `json:"_id"`
	CreatedAt flexTime `json:"createdAt"`
	rawTaskAlias
}

type rawTaskAlias RawTask

// UnmarshalJSON decodes a task, falling back to "_id" when "id" is absent.
func (t *RawTask) UnmarshalJSON(data []byte) error {
	var aux rawTaskJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = RawTask(aux.rawTaskAlias)
	t.CreatedAt = time.Time(aux.CreatedAt)
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	return nil
}

// UnmarshalYAML decodes a task with the same "_id" fallback and lenient
// createdAt handling as the JSON form.
func (t *RawTask) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("task must be a mapping, got %s", node.ShortTag())
	}

	rest := *node
	rest.Content = make([]*yaml.Node, 0, len(node.Content))
	var mongoID string
	var created *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "_id":
			mongoID = val.Value
		case "createdAt":
			created = val
		default:
			rest.Content = append(rest.Content, key, val)
		}
	}

	var alias rawTaskAlias
	if err := rest.Decode(&alias); err != nil {
		return err
	}
	*t = RawTask(alias)
	if t.ID == "" {
		t.ID = mongoID
	}
	if created != nil && created.Kind == yaml.ScalarNode {
		t.CreatedAt = ParseTime(created.Value)
	}
	return nil
}

// Presence records whether a field was present with a non-null value.
// The value itself is never interpreted.
type Presence bool

// UnmarshalJSON accepts any JSON value.
func (p *Presence) UnmarshalJSON(data []byte) error {
	*p = Presence(!bytes.Equal(bytes.TrimSpace(data), []byte("null")))
	return nil
}

// UnmarshalYAML accepts any YAML node.
func (p *Presence) UnmarshalYAML(node *yaml.Node) error {
	*p = !(node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses s with the first matching export timestamp layout.
// Unparseable input yields the zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// flexTime decodes a timestamp string or Unix milliseconds and never fails.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexTime(ParseTime(s))
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		*f = flexTime(time.UnixMilli(int64(ms)).UTC())
		return nil
	}
	*f = flexTime(time.Time{})
	return nil
}

// StatusEdit is one status transition in the task's history.
type StatusEdit struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// PointsEstimatedEdit records a change of the estimated points.
type PointsEstimatedEdit struct {
	FromPoints float64 `json:"fromPoints" yaml:"fromPoints"`
	ToPoints   float64 `json:"toPoints" yaml:"toPoints"`
}

// PointsBurnedEdit records a change of the burned points. Only the number of
// edits is used downstream, so the payload is kept opaque.
type PointsBurnedEdit map[string]any

// Points holds the estimate (Total) and the effort actually burned (Done).
type Points struct {
	Total float64 `json:"total" yaml:"total"`
	Done  float64 `json:"done" yaml:"done"`
}

// Comment is a discussion entry on the task.
type Comment struct {
	Body string `json:"body" yaml:"body"`
}

// Commit is a VCS commit linked to the task.
type Commit struct {
	ID      string       `json:"id" yaml:"id"`
	Message string       `json:"message" yaml:"message"`
	Files   []FileChange `json:"files" yaml:"files"`
}

// FileChange is one file touched by a commit.
type FileChange struct {
	Filename  string `json:"filename" yaml:"filename"`
	Additions int    `json:"additions" yaml:"additions"`
	Deletions int    `json:"deletions" yaml:"deletions"`
}

// StringList is a list of strings that also decodes from a single
// comma-separated string, as produced by CSV-flavoured exports.
type StringList []string

// UnmarshalJSON accepts null, a string, or an array of strings.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var joined *string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	if joined == nil {
		*s = nil
		return nil
	}
	*s = SplitList(*joined)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" {
			*s = nil
			return nil
		}
		*s = SplitList(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// SplitList splits a comma-separated string into its non-empty parts.
func SplitList(joined string) []string {
	var out []string
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
