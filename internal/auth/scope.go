package auth

import (
	"slices"
	"strings"
)

// Scopes granted to principals.
const (
	// ScopePublicReader allows the public read routes.
	ScopePublicReader = "reader:public"
	// ScopeBadgeholder allows editing and submitting retro funding ballots.
	ScopeBadgeholder = "badgeholder"
	// ScopeAdmin allows the admin routes and acting for any address.
	ScopeAdmin = "admin"
)

// scopeSeparator joins scopes in the JWT scope claim.
const scopeSeparator = ";"

// ParseScope splits a scope claim. Both ";" and whitespace separate scopes.
func ParseScope(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
}

// JoinScope builds a scope claim.
func JoinScope(scopes []string) string {
	return strings.Join(scopes, scopeSeparator)
}

// HasScope reports whether scopes contain scope. The admin scope includes every other scope.
func HasScope(scopes []string, scope string) bool {
	return slices.Contains(scopes, scope) || slices.Contains(scopes, ScopeAdmin)
}
