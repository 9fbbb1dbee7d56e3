package schemavalidator

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slotSchema = `{
  "type": "object",
  "required": ["start", "end"],
  "additionalProperties": false,
  "properties": {
    "start": {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
    "end": {"type": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"}
  }
}`

func TestValidateAcceptsValidDocument(t *testing.T) {
	t.Parallel()

	v := New().MustRegister("slot", []byte(slotSchema))
	require.NoError(t, v.Validate("slot", []byte(`{"start":"09:00","end":"17:30"}`)))
}

func TestValidateReportsViolations(t *testing.T) {
	t.Parallel()

	v := New().MustRegister("slot", []byte(slotSchema))
	err := v.Validate("slot", []byte(`{"start":"9am","extra":true}`))

	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr), "got %v", err)
	assert.NotEmpty(t, docErr.Violations)
	assert.Contains(t, docErr.Error(), "document violates schema")
}

func TestValidateMalformedJSON(t *testing.T) {
	t.Parallel()

	v := New().MustRegister("slot", []byte(slotSchema))
	err := v.Validate("slot", []byte(`{"start":`))
	require.Error(t, err)

	var docErr *DocumentError
	assert.False(t, errors.As(err, &docErr))
}

func TestValidateUnknownSchema(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, New().Validate("missing", []byte(`{}`)), ErrUnknownSchema)
}

func TestRegisterRejectsBrokenSchema(t *testing.T) {
	t.Parallel()

	require.Error(t, New().Register("broken", []byte(`{"type": 12}`)))
}

func TestValidateConcurrent(t *testing.T) {
	t.Parallel()

	v := New().MustRegister("slot", []byte(slotSchema))
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, v.Validate("slot", []byte(`{"start":"08:00","end":"12:00"}`)))
		}()
	}
	wg.Wait()
}
