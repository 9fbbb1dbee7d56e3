package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJWTToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		found  bool
	}{
		{name: "missing", header: "", found: false},
		{name: "basic auth", header: "Basic abc", found: false},
		{name: "bearer", header: "Bearer abc.def", token: "abc.def", found: true},
		{name: "lowercase scheme", header: "bearer  abc.def ", token: "abc.def", found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			token, found := ExtractJWTToken(req)
			require.Equal(t, tt.found, found)
			require.Equal(t, tt.token, token)
		})
	}
}
