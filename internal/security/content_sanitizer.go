// Package security sanitizes the rich text bodies staff submit for blogs, events and sermons.
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer cleans user-submitted HTML before it is stored
type ContentSanitizer interface {
	// Sanitize returns rawHTML with every element and attribute outside the allow-list removed.
	// The result is trimmed; whitespace-only input gives "".
	Sanitize(rawHTML string) string
}

type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer builds the policy used for content bodies.
//
// It starts from bluemonday's user generated content policy, which strips
// script, iframe and style elements and every on* attribute, and additionally:
//   - permits relative URLs so bodies can reference /uploads images
//   - adds target="_blank" and rel="noopener noreferrer" to absolute links
//   - allows the class attribute on p and span
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.UGCPolicy()

	p.AllowRelativeURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span")

	return &contentSanitizer{policy: p}
}

// Sanitize is safe for concurrent use
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return strings.TrimSpace(s.policy.Sanitize(rawHTML))
}
