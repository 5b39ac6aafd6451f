// Package idgen generates post identifiers and URL slugs.
package idgen

import (
	"fmt"
	"strings"
	"unicode"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// PostPrefix is prepended to every generated post ID.
var PostPrefix = "post-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 12

// MaxSlugLength caps slugs derived from titles.
const MaxSlugLength = 80

// NewPostID returns a new unique post ID.
func NewPostID() (string, error) {
	return GenerateWithPrefix(PostPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Slugify lowercases s and collapses every run of non-alphanumeric runes
// into a single hyphen. Non-ASCII letters are dropped. The result is
// deterministic so a title always maps to the same slug.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
