package metadata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed kirofile.schema.json
var kirofileSchema []byte

const schemaURL = "kirofile.schema.json"

// Validator checks a decoded JSON document (as produced by encoding/json into an any)
// against the kiro file schema. The Loader treats a nil Validator as "unavailable".
type Validator interface {
	Validate(doc any, strict bool) error
}

/*
SchemaValidator validates against the embedded JSON Schema.

Strict mode compiles a second copy of the schema that forbids properties the schema
does not name, on the document and on every keyset. Both schemas are compiled on
first use and kept for the life of the validator.
*/
type SchemaValidator struct {
	once    sync.Once
	lenient *jsonschema.Schema
	strict  *jsonschema.Schema
	err     error
}

// NewSchemaValidator returns a validator for the built-in schema.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

func (v *SchemaValidator) compile() {
	v.lenient, v.err = compileSchema(kirofileSchema)
	if v.err != nil {
		return
	}

	var raw map[string]any
	if v.err = json.Unmarshal(kirofileSchema, &raw); v.err != nil {
		return
	}
	raw["additionalProperties"] = false
	if defs, ok := raw["$defs"].(map[string]any); ok {
		if ks, ok := defs["keyset"].(map[string]any); ok {
			ks["additionalProperties"] = false
		}
	}
	strictSchema, err := json.Marshal(raw)
	if err != nil {
		v.err = err
		return
	}
	v.strict, v.err = compileSchema(strictSchema)
}

func compileSchema(schema []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("load kiro schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile kiro schema: %w", err)
	}
	return s, nil
}

// Validate returns nil when doc conforms. A schema violation comes back as a
// *ValidationError whose Message lists each failing location.
func (v *SchemaValidator) Validate(doc any, strict bool) error {
	v.once.Do(v.compile)
	if v.err != nil {
		return v.err
	}

	s := v.lenient
	if strict {
		s = v.strict
	}

	err := s.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Message: describe(ve), Err: err}
}

// describe flattens the cause tree to its leaves, one line per failing location.
func describe(ve *jsonschema.ValidationError) string {
	var lines []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			lines = append(lines, fmt.Sprintf("at %s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(lines, "\n")
}
