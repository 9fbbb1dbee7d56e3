// Package slug derives URL-safe identifiers from human-entered titles and keeps them unique
// per entity kind through a caller-supplied existence check.
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fallback is returned whenever a title does not contain a single word character.
const Fallback = "untitled"

// Word characters are Unicode letters, combining marks, decimal digits and the underscore.
// Everything else except whitespace and hyphens is removed from titles.
var canonicalPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{Nd}_]+(?:-[\p{L}\p{M}\p{Nd}_]+)*$`)

// Generate converts a title into its slug. It never fails: titles without any word
// character produce Fallback.
//
// The title is NFC-normalised first so composed and decomposed spellings of the same
// text ("café" typed either way) produce the same slug. Removing a symbol can leave a
// base letter next to its combining mark, so the result is recomposed once more.
func Generate(title string) string {
	s := strings.TrimSpace(strings.ToLower(norm.NFC.String(title)))
	if s == "" {
		return Fallback
	}

	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false
	for _, r := range s {
		switch {
		case isWordRune(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		}
	}

	if b.Len() == 0 {
		return Fallback
	}

	return norm.NFC.String(b.String())
}

// GenerateAny is Generate for loosely typed input such as decoded JSON. Anything that is
// not a string yields Fallback.
func GenerateAny(v any) string {
	switch title := v.(type) {
	case string:
		return Generate(title)
	case *string:
		if title == nil {
			return Fallback
		}
		return Generate(*title)
	default:
		return Fallback
	}
}

// Normalize validates a slug supplied explicitly by a client. Surrounding whitespace is
// trimmed and the value lowercased; the result must already be canonical.
func Normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("slug is required")
	}

	normalized := strings.ToLower(norm.NFC.String(trimmed))
	if !canonicalPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid slug %q: only letters, digits, underscores and single inner hyphens are allowed", input)
	}

	return normalized, nil
}

// IsCanonical reports whether s could have been produced by Generate.
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s) && strings.ToLower(s) == s && norm.NFC.IsNormalString(s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Me, r) || unicode.Is(unicode.Nd, r)
}
