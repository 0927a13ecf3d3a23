package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeDict parses the output of Dict or DictConstraints back into a field map.
// It understands only the flat shape this package emits.
func DecodeDict(s string) (map[string]string, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), "_{")
	if !ok || !strings.HasSuffix(body, "}") {
		return nil, fmt.Errorf("not a dict term: %q", s)
	}
	return decodePairs(strings.TrimSuffix(body, "}"), ':', '"')
}

// DecodeList parses the output of List or ListConstraints back into a field map.
func DecodeList(s string) (map[string]string, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), "[")
	if !ok || !strings.HasSuffix(body, "]") {
		return nil, fmt.Errorf("not a list term: %q", s)
	}
	return decodePairs(strings.TrimSuffix(body, "]"), '-', '\'')
}

func decodePairs(body string, sep, quote byte) (map[string]string, error) {
	out := make(map[string]string)
	i := 0
	for i < len(body) {
		for i < len(body) && (body[i] == ' ' || body[i] == ',') {
			i++
		}
		if i >= len(body) {
			break
		}
		keyStart := i
		for i < len(body) && body[i] != sep {
			i++
		}
		if i >= len(body) {
			return nil, fmt.Errorf("missing %q after key at offset %d", sep, keyStart)
		}
		key := body[keyStart:i]
		i++

		var value strings.Builder
		quoted := i < len(body) && body[i] == quote
		if quoted {
			i++
			closed := false
			for i < len(body) {
				c := body[i]
				if c == '\\' && i+1 < len(body) {
					n, err := unescape(body[i+1:], &value)
					if err != nil {
						return nil, fmt.Errorf("bad escape in %s: %w", key, err)
					}
					i += 1 + n
					continue
				}
				if c == quote {
					closed = true
					i++
					break
				}
				value.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated value for %s", key)
			}
		} else {
			for i < len(body) && body[i] != ',' {
				value.WriteByte(body[i])
				i++
			}
		}
		if quoted {
			out[key] = value.String()
		} else {
			out[key] = strings.TrimSpace(value.String())
		}
	}
	return out, nil
}

// unescape decodes the escape sequence at the start of s (just past the
// backslash) into b and reports how many bytes it consumed.
func unescape(s string, b *strings.Builder) (int, error) {
	switch s[0] {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'x':
		end := strings.IndexByte(s[1:], '\\')
		if end < 0 {
			return 0, fmt.Errorf("unterminated \\x escape")
		}
		code, err := strconv.ParseUint(s[1:1+end], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid \\x escape %q: %w", s[1:1+end], err)
		}
		b.WriteRune(rune(code))
		return end + 2, nil
	default:
		b.WriteByte(s[0])
	}
	return 1, nil
}
