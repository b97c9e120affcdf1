package export

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The schemas only pin down types. Every field is optional and gets a
// default on load, but a name that is a number or a message list that is an
// object means the export is not what we think it is.
const conversationsSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name":       {"type": ["string", "null"]},
      "created_at": {"type": ["string", "null"]},
      "chat_messages": {
        "type": ["array", "null"],
        "items": {
          "type": "object",
          "properties": {
            "sender":     {"type": ["string", "null"]},
            "text":       {"type": ["string", "null"]},
            "created_at": {"type": ["string", "null"]}
          }
        }
      }
    }
  }
}`

const projectsSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name":        {"type": ["string", "null"]},
      "description": {"type": ["string", "null"]},
      "created_at":  {"type": ["string", "null"]},
      "updated_at":  {"type": ["string", "null"]},
      "docs":        {"type": ["array", "null"]}
    }
  }
}`

const memoriesSchemaJSON = `{"type": "array"}`

type documentSchema struct {
	schema *jsonschema.Schema
}

var (
	conversationsSchema = mustSchema("conversations.schema.json", conversationsSchemaJSON)
	projectsSchema      = mustSchema("projects.schema.json", projectsSchemaJSON)
	memoriesSchema      = mustSchema("memories.schema.json", memoriesSchemaJSON)
)

func mustSchema(url, src string) documentSchema {
	return documentSchema{schema: jsonschema.MustCompileString(url, src)}
}

// validate checks that data is well-formed JSON matching the schema.
func (d documentSchema) validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	return d.schema.Validate(doc)
}
