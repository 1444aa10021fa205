// internal/app/system/normalize/normalize.go

// Package normalize provides the canonical forms for user-entered identity
// fields. Every write path goes through these so lookups never depend on the
// casing or spacing a person happened to type.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person's name and collapses interior whitespace runs to a
// single space.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
