package jsonedit

import "strings"

// ParsePointer splits a field reference into object keys.
// A reference not starting with "/" is a single key; otherwise it is an
// RFC 6901 JSON pointer with ~1 and ~0 unescaped.
func ParsePointer(s string) []string {
	if !strings.HasPrefix(s, "/") {
		return []string{s}
	}

	tokens := strings.Split(s[1:], "/")
	for i, token := range tokens {
		tokens[i] = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
	}

	return tokens
}
