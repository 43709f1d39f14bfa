package pageapi

import (
	"path"
	"strings"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// PageSlug returns the slug a commit is stored under: the slugified title,
// prefixed by dir when one is given.
func PageSlug(dir, title string) string {
	link := Slugify(title)
	if link == "" {
		return ""
	}
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return link
	}
	return path.Join(dir, link)
}

// ValidPath reports whether p is a relative, slash-separated page path with
// no empty, "." or ".." segments. Segments may otherwise hold any characters
// except backslashes.
func ValidPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.ContainsRune(p, '\\') {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
