// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-supplied rich text.
// Book descriptions and transaction notes pass through here before they are
// stored; everything else in the API is plain strings.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows the usual user-generated-content subset: formatting tags,
// links, lists. Scripts, event handlers, and embedded objects are removed.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with disallowed HTML removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
