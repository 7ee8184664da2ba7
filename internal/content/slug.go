package content

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugify derives a URL-safe slug from an entry path relative to its
// collection directory, e.g. "2024/Hello World.md" -> "2024/hello-world".
// A trailing "index" segment collapses into its parent directory.
func Slugify(id string) string {
	id = strings.TrimSuffix(id, path.Ext(id))
	segments := strings.Split(id, "/")
	if n := len(segments); n > 1 && strings.EqualFold(segments[n-1], "index") {
		segments = segments[:n-1]
	}
	return joinSegments(segments)
}

// NormalizeSlug makes an explicit slug URL-safe. Each "/" separated segment
// is cleaned like a file name segment; "." and ".." segments vanish, so the
// result never climbs out of its collection.
func NormalizeSlug(s string) string {
	return joinSegments(strings.Split(s, "/"))
}

func joinSegments(segments []string) string {
	out := segments[:0]
	for _, seg := range segments {
		if s := slugSegment(seg); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

func slugSegment(seg string) string {
	// Casers carry state, so one is created per call.
	lowered := cases.Lower(language.Und).String(strings.TrimSpace(seg))

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}
