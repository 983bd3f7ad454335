package types

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Longest name accepted for a function tool
const MaxIdentifierLength = 64

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsIdentifier returns true if the string can name a function tool: it
// starts with an ASCII letter or underscore, contains only ASCII letters,
// digits, underscores and hyphens, and is at most 64 characters long
func IsIdentifier(s string) bool {
	if s == "" || len(s) > MaxIdentifierLength {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			continue
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
			continue
		default:
			return false
		}
	}
	return true
}
