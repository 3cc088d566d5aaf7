package permission

import (
	"strings"
	"unicode"
)

const roleKeySeparator = '_'

// NormalizeRoleKey derives the unique role key from a display name: lowercase,
// runs of non-alphanumeric characters collapsed to a single separator, trimmed at both ends.
// "Warehouse Lead" -> "warehouse_lead". The result is empty when name has no letters or digits.
func NormalizeRoleKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if isKeyRune(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteRune(roleKeySeparator)
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func isKeyRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
