package generateservice

import "github.com/pkg/errors"

// ExtractJSONObject returns the first balanced top-level JSON object in s.
// Models often wrap the object in prose or markdown fences, so scanning
// starts at the first '{' and tracks brace depth outside string literals
func ExtractJSONObject(s string) (string, error) {
	start := -1
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if start == -1 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	if start == -1 {
		return "", errors.New("no JSON object in response")
	}
	return "", errors.New("unbalanced JSON object in response")
}
