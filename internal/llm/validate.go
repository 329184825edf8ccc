package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// labelSchema is compiled once: the field set is fixed per SchemaVersion, so
// recompiling on every extraction would be pure waste.
var labelSchema = mustCompileLabelSchema()

func mustCompileLabelSchema() *jsonschema.Schema {
	raw, err := json.Marshal(BuildLabelJSONSchema())
	if err != nil {
		panic(fmt.Sprintf("marshal label schema %s: %v", SchemaVersion, err))
	}
	name := "label-" + SchemaVersion + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("add label schema %s: %v", SchemaVersion, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile label schema %s: %v", SchemaVersion, err))
	}
	return schema
}

// ValidateLabelJSON checks a sanitized extraction document against the label
// field schema.
func ValidateLabelJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal label json: %w", err)
	}
	if err := labelSchema.Validate(v); err != nil {
		return fmt.Errorf("label json does not match schema %s: %w", SchemaVersion, err)
	}
	return nil
}
