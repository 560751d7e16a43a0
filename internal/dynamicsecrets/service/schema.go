package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
)

// compileSchema compiles an embedded JSON schema document.
func compileSchema(url, document string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", url, err)
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", url, err)
	}
	return c.Compile(url)
}

// validateAgainst checks raw JSON against schema and maps failures to
// ErrInvalidProviderConfig.
func validateAgainst(schema *jsonschema.Schema, raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", dynamicDomain.ErrInvalidProviderConfig, err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", dynamicDomain.ErrInvalidProviderConfig, err)
	}
	return nil
}
