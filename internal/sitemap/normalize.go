package sitemap

import "strings"

// DefaultScheme is prepended to references that do not carry one.
const DefaultScheme = "https"

// Normalize returns ref with an https scheme when it has none.
// References that already carry a scheme are returned unchanged.
func Normalize(ref string) string {
	if hasScheme(ref) {
		return ref
	}
	return DefaultScheme + "://" + ref
}

// hasScheme reports whether ref starts with "<scheme>://" where scheme follows
// RFC 3986 (ALPHA *( ALPHA / DIGIT / "+" / "-" / "." )). A bare "host:port/path"
// is not treated as a scheme.
func hasScheme(ref string) bool {
	i := strings.Index(ref, "://")
	if i <= 0 {
		return false
	}
	for j, r := range ref[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
