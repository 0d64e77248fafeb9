// Package utils holds small helpers shared across layers.
package utils

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a display name into a URL slug: accents are folded,
// anything that is not a letter or digit becomes a hyphen, and runs of
// hyphens collapse. "Crème Brûlée Lamp!" becomes "creme-brulee-lamp".
func Slugify(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > 120 {
		slug = strings.TrimRight(slug[:120], "-")
	}
	return slug
}

// WithSuffix appends a short random suffix, used when a generated slug is
// already taken.
func WithSuffix(slug string) string {
	return slug + "-" + uuid.NewString()[:6]
}

// NewOrderNumber returns a human-friendly unique order reference such as
// "SF-20261018-4F9A2C1B".
func NewOrderNumber(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "SF-" + now.UTC().Format("20060102") + "-" + id[:8]
}

// NewCartToken returns an opaque guest cart token.
func NewCartToken() string {
	return uuid.NewString()
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
