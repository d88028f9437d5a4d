package config

import (
	"errors"

	"github.com/invopop/jsonschema"
)

const schemaID = "https://github.com/getzep/nlp-annotator-api/config.schema.json"

var ErrGeneratedSchemaIsNil = errors.New("generated JSON Schema is nil")

// JSONSchema describes config.yaml. Property names follow the mapstructure tags, so the
// schema matches what LoadConfig accepts.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:               "mapstructure",
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := r.Reflect(&Config{})
	if schema == nil {
		return nil, ErrGeneratedSchemaIsNil
	}

	schema.ID = jsonschema.ID(schemaID)
	schema.Title = "nlp-annotator-api configuration"
	schema.Description = "Secrets are read from NLP_API_* environment variables."

	return schema.MarshalJSON()
}
