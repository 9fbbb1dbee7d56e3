// Package sanitizer cleans user-supplied HTML and renders markdown to safe HTML.
package sanitizer

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	initOnce     sync.Once
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	markdown     goldmark.Markdown
)

func setup() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.RequireNoFollowOnLinks(true)
		ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
		ugcPolicy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span", "div")

		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
}

// HTML keeps article formatting (headings, lists, tables, images, links) and drops
// scripts, event handlers and unsafe URLs.
func HTML(s string) string {
	setup()
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// Markdown renders GitHub-flavoured markdown and sanitises the result like HTML.
func Markdown(src string) (string, error) {
	setup()
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(string(ugcPolicy.SanitizeBytes(buf.Bytes()))), nil
}

// PlainText strips every tag and returns unescaped, trimmed text.
func PlainText(s string) string {
	setup()
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
