// Package links recognizes social-media post links in chat messages and
// extracts the account handle they promote.
//
// Recognition and extraction are deliberately different strictness levels: a
// message can qualify as a link (for lock/delete policy) without yielding a
// handle, in which case the sender gets corrective guidance instead of a
// silent drop.
package links

import (
	"regexp"
	"strings"
	"sync"
)

// Extractor matches links against a configured set of host names.
// The zero value is not usable; call New.
type Extractor struct {
	qualify *regexp.Regexp
	handle  *regexp.Regexp
}

var (
	defaultOnce sync.Once
	defaultExt  *Extractor
)

// Default returns an Extractor for the stock x.com/twitter.com hosts.
func Default() *Extractor {
	defaultOnce.Do(func() {
		defaultExt = New([]string{"x.com", "twitter.com"})
	})
	return defaultExt
}

// New builds an Extractor for the given host names (lowercase, no scheme).
func New(hosts []string) *Extractor {
	quoted := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.TrimSpace(strings.ToLower(h))
		if h != "" {
			quoted = append(quoted, regexp.QuoteMeta(h))
		}
	}
	alt := strings.Join(quoted, "|")
	return &Extractor{
		// Loose: any URL on a known host, with or without scheme/www.
		qualify: regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:` + alt + `)/\S+`),
		// Strict: only status/post links carry a usable handle.
		handle: regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:` + alt + `)/([A-Za-z0-9_]+)/status/\d+`),
	}
}

// IsSocialLink reports whether text contains a URL on one of the configured hosts.
func (e *Extractor) IsSocialLink(text string) bool {
	return e.qualify.MatchString(text)
}

// ExtractHandle returns the handle segment of the first status-shaped link in
// text. The second return is false when no strict match exists, even if the
// text qualifies as a link.
func (e *Extractor) ExtractHandle(text string) (string, bool) {
	m := e.handle.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
