package web

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// openAPIJSON renders the embedded OpenAPI document as JSON.
func openAPIJSON() ([]byte, error) {
	var doc map[string]any

	if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse openapi document")
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode openapi document")
	}

	return out, nil
}
