package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "task.schema.json"

// taskSchema describes the shape of a task record. Violations are reported
// as warnings; the record is still decoded.
const taskSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "_id": {"type": "string"},
    "id": {"type": "string"},
    "title": {"type": ["string", "null"]},
    "body": {"type": ["string", "null"]},
    "priority": {"type": ["string", "null"]},
    "dueDate": {"type": ["string", "null"]},
    "createdAt": {"type": "string"},
    "points": {
      "type": ["object", "null"],
      "properties": {
        "total": {"type": ["number", "null"], "minimum": 0},
        "done": {"type": ["number", "null"], "minimum": 0}
      }
    },
    "labels": {"type": ["array", "null"], "items": {"type": ["string", "null"]}},
    "assignees": {"type": ["array", "null"], "items": {"type": "string"}},
    "categories": {"type": ["array", "string", "null"]},
    "focus_areas": {"type": ["array", "string", "null"]},
    "statusEdits": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {"from": {"type": "string"}, "to": {"type": "string"}}
      }
    },
    "pointsEstimatedEdits": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {"fromPoints": {"type": "number"}, "toPoints": {"type": "number"}}
      }
    },
    "pointsBurnedEdits": {"type": ["array", "null"]},
    "comments": {"type": ["array", "null"]},
    "commits": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "message": {"type": ["string", "null"]},
          "files": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "properties": {
                "filename": {"type": "string"},
                "additions": {"type": "integer", "minimum": 0},
                "deletions": {"type": "integer", "minimum": 0}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(taskSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parsing task schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("adding task schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// ValidateRecord checks one JSON record against the task schema.
func ValidateRecord(raw []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return sch.Validate(v)
}
