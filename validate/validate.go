// forum/validate/validate.go

// Package validate holds the pure validation and sanitization rules shared
// by the engine. Sanitization is idempotent: feeding a sanitized string
// back in returns it unchanged.
package validate

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Usernames cannot begin with a digit and must be 5-32 word characters.
var usernameRe = regexp.MustCompile(`^\D\w{4,31}$`)

// namePolicy strips all markup. Board, thread and user names carry no HTML.
var namePolicy = bluemonday.StrictPolicy()

// contentPolicy is the allowlist for free-text content (posts, footers):
// basic formatting, links, lists, tables and inline images with a minimal
// attribute set.
var contentPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "a", "ul", "ol", "li", "table", "tr", "th", "td", "img")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}()

// SanitizeName strips every tag and attribute from s.
func SanitizeName(s string) string {
	return namePolicy.Sanitize(s)
}

// SanitizeContent reduces s to the safe content allowlist.
func SanitizeContent(s string) string {
	return contentPolicy.Sanitize(s)
}

// Username reports whether s is a well-formed username. The sanitized form
// must equal the input, so markup can never hide inside a name.
func Username(s string) bool {
	if SanitizeName(s) != s {
		return false
	}
	return usernameRe.MatchString(s)
}

// Password reports whether s meets the minimum password requirements.
func Password(s string) bool {
	return len(s) >= 8
}
