// Package types - partner registries
package types

import (
	"strings"
	"unicode"
)

// Partner is a registered rail agent, truck agent or shipping line
type Partner struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Registry maps partner names to short codes. Lookups are exact-match.
type Registry struct {
	partners []Partner
	byName   map[string]int
}

// NewRegistry builds a registry. Later duplicates of a name are ignored.
func NewRegistry(partners []Partner) *Registry {
	r := &Registry{byName: make(map[string]int, len(partners))}
	for _, p := range partners {
		if _, exists := r.byName[p.Name]; exists {
			continue
		}
		r.byName[p.Name] = len(r.partners)
		r.partners = append(r.partners, p)
	}
	return r
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[name]
	return ok
}

// Code returns the registered code for name
func (r *Registry) Code(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	i, ok := r.byName[name]
	if !ok || r.partners[i].Code == "" {
		return "", false
	}
	return r.partners[i].Code, true
}

// CodeOrDerived returns the registered code, or one derived from the name
func (r *Registry) CodeOrDerived(name string) string {
	if code, ok := r.Code(name); ok {
		return code
	}
	return DeriveCode(name)
}

// Partners returns the registered partners in registration order
func (r *Registry) Partners() []Partner {
	if r == nil {
		return nil
	}
	result := make([]Partner, len(r.partners))
	copy(result, r.partners)
	return result
}

// Len returns the number of registered partners
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.partners)
}

// DeriveCode builds a short code from a partner name: the upper-cased initials of a
// multi-word name, or the first three letters of a single word.
func DeriveCode(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.'
	})
	switch len(words) {
	case 0:
		return ""
	case 1:
		runes := []rune(words[0])
		if len(runes) > 3 {
			runes = runes[:3]
		}
		return strings.ToUpper(string(runes))
	}

	var b strings.Builder
	for _, w := range words {
		for _, r := range w {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return b.String()
}
