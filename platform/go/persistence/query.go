package persistence

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageParams is a 1-based page request.
type PageParams struct {
	Page     int
	PageSize int
}

// Normalize clamps the request into the supported window.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageParams) limitOffset() (int, int) {
	n := p.Normalize()
	return n.PageSize, (n.Page - 1) * n.PageSize
}

// whereBuilder accumulates AND-ed predicates. Each predicate holds a single %d verb that
// receives the positional index of its argument.
type whereBuilder struct {
	parts []string
	args  []any
}

func newWhere(fixed ...string) *whereBuilder {
	return &whereBuilder{parts: append([]string{}, fixed...)}
}

func (w *whereBuilder) add(predicate string, arg any) {
	w.args = append(w.args, arg)
	w.parts = append(w.parts, fmt.Sprintf(predicate, len(w.args)))
}

func (w *whereBuilder) addRaw(predicate string) {
	w.parts = append(w.parts, predicate)
}

func (w *whereBuilder) sql() string {
	if len(w.parts) == 0 {
		return "TRUE"
	}
	return strings.Join(w.parts, " AND ")
}

// pageArgs returns the args extended with LIMIT/OFFSET plus the placeholder clause.
func (w *whereBuilder) pageArgs(page PageParams) ([]any, string) {
	limit, offset := page.limitOffset()
	args := append(append([]any{}, w.args...), limit, offset)
	return args, fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args))
}

func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(replacer.Replace(strings.TrimSpace(term))) + "%"
}
