// Package htmlsanitize cleans user-written review text with bluemonday.
//
// Reviews may carry light formatting (paragraphs, emphasis, lists, links);
// anything executable is stripped.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce   sync.Once
	ugc       *bluemonday.Policy
	plainOnce sync.Once
	plain     *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	ugcOnce.Do(func() {
		ugc = bluemonday.UGCPolicy()
		ugc.RequireNoFollowOnLinks(true)
	})
	return ugc
}

func plainPolicy() *bluemonday.Policy {
	plainOnce.Do(func() {
		plain = bluemonday.StrictPolicy()
	})
	return plain
}

// Sanitize keeps safe formatting markup and removes scripts, event
// handlers and javascript: URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugcPolicy().Sanitize(s))
}

// PlainText strips all markup.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(plainPolicy().Sanitize(s))
}
