package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const manifestSchemaName = "section-manifest.json"

// manifestSchema describes a section manifest document.
const manifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["sections"],
  "properties": {
    "version": {"type": "string"},
    "name": {"type": "string"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["code", "name"],
        "properties": {
          "code": {"type": "string", "pattern": "^[a-z][a-z0-9_]*$"},
          "name": {"type": "string", "minLength": 1},
          "icon": {"type": "string", "pattern": "^fa-"},
          "sequence": {"type": "integer", "minimum": 0},
          "groups": {"type": "array", "items": {"type": "string", "minLength": 1}},
          "active": {"type": "boolean"},
          "has_chart": {"type": "boolean"},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

var (
	manifestSchemaOnce     sync.Once
	manifestSchemaCompiled *jsonschema.Schema
	manifestSchemaErr      error
)

// ValidateManifest checks a decoded manifest document against the manifest
// schema. Values are normalized through JSON first so YAML scalars validate
// like their JSON counterparts.
func ValidateManifest(doc any) error {
	schema, err := compiledManifestSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("portal: marshal manifest: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("portal: normalize manifest: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("portal: manifest failed validation: %w", err)
	}
	return nil
}

// ValidateSection checks a single section definition against the schema.
func ValidateSection(def SectionDefinition) error {
	return ValidateManifest(map[string]any{"sections": []SectionDefinition{def}})
}

func compiledManifestSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(manifestSchemaName, bytes.NewReader([]byte(manifestSchema))); err != nil {
			manifestSchemaErr = fmt.Errorf("portal: load manifest schema: %w", err)
			return
		}
		manifestSchemaCompiled, manifestSchemaErr = compiler.Compile(manifestSchemaName)
		if manifestSchemaErr != nil {
			manifestSchemaErr = fmt.Errorf("portal: compile manifest schema: %w", manifestSchemaErr)
		}
	})
	return manifestSchemaCompiled, manifestSchemaErr
}
