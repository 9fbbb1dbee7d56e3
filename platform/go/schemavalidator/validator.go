// Package schemavalidator validates JSON documents against named JSON Schemas.
package schemavalidator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrUnknownSchema is returned when Validate names a schema that was never registered.
var ErrUnknownSchema = errors.New("schemavalidator: unknown schema")

// DocumentError lists the schema violations of one document keyed by JSON pointer.
type DocumentError struct {
	Violations map[string][]string
}

func (e *DocumentError) Error() string {
	locations := make([]string, 0, len(e.Violations))
	for loc := range e.Violations {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return fmt.Sprintf("document violates schema at %v", locations)
}

// Validator compiles schemas once and caches them by name.
type Validator struct {
	mu      sync.RWMutex
	sources map[string][]byte
	cache   map[string]*jsonschema.Schema
}

func New() *Validator {
	return &Validator{
		sources: make(map[string][]byte),
		cache:   make(map[string]*jsonschema.Schema),
	}
}

// Register stores a schema definition under name and compiles it eagerly.
func (v *Validator) Register(name string, definition []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sources[name] = definition
	delete(v.cache, name)
	_, err := v.compileLocked(name)
	return err
}

// MustRegister is Register for package-level setup with embedded schemas.
func (v *Validator) MustRegister(name string, definition []byte) *Validator {
	if err := v.Register(name, definition); err != nil {
		panic(err)
	}
	return v
}

// Validate checks payload against the schema registered as name. Violations come back
// as *DocumentError; malformed JSON as a plain error.
func (v *Validator) Validate(name string, payload []byte) error {
	compiled, err := v.get(name)
	if err != nil {
		return err
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	if err := compiled.Validate(document); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &DocumentError{Violations: violations(validationErr)}
		}
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

func (v *Validator) get(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.cache[name]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.compileLocked(name)
}

func (v *Validator) compileLocked(name string) (*jsonschema.Schema, error) {
	// another goroutine may have populated the cache while we were waiting
	if compiled, ok := v.cache[name]; ok {
		return compiled, nil
	}
	source, ok := v.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	url := "memory://schemas/" + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(source)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	v.cache[name] = compiled
	return compiled, nil
}

// violations flattens the leaf causes of a validation error.
func violations(err *jsonschema.ValidationError) map[string][]string {
	out := map[string][]string{}
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out[loc] = append(out[loc], e.Message)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}
