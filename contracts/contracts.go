// Package contracts embeds the public OpenAPI document of the CMS API.
package contracts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed cms.yaml
var cmsYAML []byte

// Load parses and validates the CMS contract. Each call returns a fresh document.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(cmsYAML)
	if err != nil {
		return nil, fmt.Errorf("load cms contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate cms contract: %w", err)
	}
	return doc, nil
}

// Raw returns the contract exactly as embedded.
func Raw() []byte {
	return append([]byte(nil), cmsYAML...)
}
