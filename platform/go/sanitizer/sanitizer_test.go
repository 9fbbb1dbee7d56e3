package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carecrest/hospital-cms/platform/go/sanitizer"
)

func TestHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "keeps formatting",
			input:    `<h2>Heart health</h2><p>Eat <strong>well</strong></p><ul><li>walk</li></ul>`,
			contains: []string{"<h2>Heart health</h2>", "<strong>well</strong>", "<li>walk</li>"},
		},
		{
			name:   "strips scripts",
			input:  `<p>ok</p><script>alert(1)</script>`,
			absent: []string{"<script", "alert"},
		},
		{
			name:   "strips event handlers",
			input:  `<img src="/media/a.png" onerror="alert(1)">`,
			absent: []string{"onerror"},
		},
		{
			name:     "neutralises javascript links",
			input:    `<a href="javascript:alert(1)">click</a>`,
			contains: []string{"click"},
			absent:   []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := sanitizer.HTML(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	out, err := sanitizer.Markdown("# Visiting hours\n\nOpen **daily**.\n\n<script>alert(1)</script>\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>daily</strong>")
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "<script")
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello world", sanitizer.PlainText(`<p>Hello <b>world</b></p><script>x()</script>`))
	assert.Equal(t, "Tom & Jerry", sanitizer.PlainText("  Tom & Jerry  "))
}
