package api

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultExcerptLength is the rune budget used when Excerpt is given max <= 0.
const DefaultExcerptLength = 200

var (
	mdImage     = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdHeading   = regexp.MustCompile(`#{1,6}\s`)
	mdEmphasis  = regexp.MustCompile(`\*{1,2}(.*?)\*{1,2}`)
	mdLink      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdCode      = regexp.MustCompile("`{1,3}[^`]*`{1,3}")
	mdQuote     = regexp.MustCompile(`>\s`)
	mdListMark  = regexp.MustCompile(`[-*+]\s`)
	mdNewlines  = regexp.MustCompile(`\n+`)
	stripPolicy = sync.OnceValue(bluemonday.StrictPolicy)
)

// Excerpt turns markdown into a plain-text preview of at most max runes
// (plus "..."). Raw HTML embedded in the markdown is dropped.
func Excerpt(markdown string, max int) string {
	if max <= 0 {
		max = DefaultExcerptLength
	}

	s := stripPolicy().Sanitize(markdown)
	// The sanitizer escapes entities; undo the common ones so the preview reads
	// as typed.
	s = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'").Replace(s)

	s = mdImage.ReplaceAllString(s, "")
	s = mdHeading.ReplaceAllString(s, "")
	s = mdEmphasis.ReplaceAllString(s, "$1")
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdCode.ReplaceAllString(s, "")
	s = mdQuote.ReplaceAllString(s, "")
	s = mdListMark.ReplaceAllString(s, "")
	s = mdNewlines.ReplaceAllString(s, " ")

	return Truncate(strings.TrimSpace(s), max)
}

// Truncate cuts s to max runes and appends "..." when anything was removed.
func Truncate(s string, max int) string {
	if max < 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
