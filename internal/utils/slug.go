package utils

import "strings"

// Slugify derives a URL-safe slug from a product name: lowercase, spaces
// collapsed to hyphens, trademark symbols and ampersands stripped, anything
// else outside [a-z0-9_-] dropped. Mirrors the slug shape enforced by the
// admin form (lowercase letters, numbers, hyphens).
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		case r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		default:
			// ™ ® © & and other punctuation are dropped entirely.
		}
	}
	return strings.Trim(b.String(), "-")
}
