package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

func TestStartupKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     []string
		want    []persistence.SlugKind
		wantErr bool
	}{
		{name: "unset keeps runner default", raw: nil, want: nil},
		{name: "blank entries ignored", raw: []string{" ", ""}, want: nil},
		{name: "explicit list", raw: []string{"blogs", " doctors "}, want: []persistence.SlugKind{persistence.SlugKindBlogs, persistence.SlugKindDoctors}},
		{name: "none disables", raw: []string{"none"}, want: []persistence.SlugKind{}},
		{name: "none with trailing comma", raw: []string{"NONE", ""}, want: []persistence.SlugKind{}},
		{name: "none mixed with kinds", raw: []string{"none", "blogs"}, wantErr: true},
		{name: "unknown kind", raw: []string{"patients"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := config{SlugStartupKinds: tt.raw}.startupKinds()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
