package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalid marks a request body that is not JSON or does not match its
// schema.
var ErrInvalid = errors.New("invalid request body")

// Validator checks request bodies against one compiled schema.
type Validator struct {
	schema *js.Schema
}

// Compile compiles schema under a mem:// resource named after name.
func Compile(name string, schema map[string]interface{}) (*Validator, error) {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	c := js.NewCompiler()
	c.Draft = js.Draft2020

	resourceURL := fmt.Sprintf("mem://schema/%s.json", name)
	if err := c.AddResource(resourceURL, bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate validates an already decoded JSON value.
func (v *Validator) Validate(value interface{}) error {
	if err := v.schema.Validate(value); err != nil {
		var verr *js.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalid, describe(verr))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Decode reads a JSON document from r, validates it and decodes it into
// out.
func (v *Validator) Decode(r io.Reader, out interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: malformed JSON", ErrInvalid)
	}
	if err := v.Validate(raw); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// describe reports the innermost failure, which names the offending field.
func describe(err *js.ValidationError) string {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	if err.InstanceLocation == "" {
		return err.Message
	}
	return err.InstanceLocation + ": " + err.Message
}
