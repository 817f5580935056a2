package audit

import "bytes"

var nonFiniteTokens = [][]byte{
	[]byte("-Infinity"),
	[]byte("Infinity"),
	[]byte("NaN"),
}

// Sanitize rewrites bare NaN, Infinity and -Infinity literals (as written by
// Python's json module) into null so the document parses as standard JSON.
// String contents are left untouched.
func Sanitize(data []byte) []byte {
	if !containsNonFinite(data) {
		return data
	}
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false
	for i := 0; i < len(data); {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			i++
			continue
		}
		if tok := nonFiniteAt(data[i:]); tok != nil {
			out = append(out, "null"...)
			i += len(tok)
			continue
		}
		out = append(out, c)
		i++
	}
	return out
}

func containsNonFinite(data []byte) bool {
	return bytes.Contains(data, []byte("NaN")) || bytes.Contains(data, []byte("Infinity"))
}

func nonFiniteAt(rest []byte) []byte {
	for _, tok := range nonFiniteTokens {
		if bytes.HasPrefix(rest, tok) {
			return tok
		}
	}
	return nil
}
