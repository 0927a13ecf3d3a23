package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExtractJSONPath evaluates a simple JSONPath against decoded JSON. Supported
// forms: $.field, $.field.sub, $.array[0], $.array[0].field. "$" or "" returns
// the whole document.
func ExtractJSONPath(doc any, path string) (string, error) {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return valueString(doc), nil
	}

	current := doc
	for _, segment := range strings.Split(path, ".") {
		field, index, hasIndex, err := splitSegment(segment)
		if err != nil {
			return "", err
		}

		if field != "" {
			obj, ok := current.(map[string]any)
			if !ok {
				return "", fmt.Errorf("field not found: %s", field)
			}
			next, ok := obj[field]
			if !ok {
				return "", fmt.Errorf("field not found: %s", field)
			}
			current = next
		}

		if hasIndex {
			arr, ok := current.([]any)
			if !ok || index >= len(arr) {
				return "", fmt.Errorf("array index out of bounds: %d", index)
			}
			current = arr[index]
		}
	}
	return valueString(current), nil
}

func splitSegment(segment string) (field string, index int, hasIndex bool, err error) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return segment, 0, false, nil
	}
	inner, ok := strings.CutSuffix(segment[open+1:], "]")
	if !ok {
		return "", 0, false, fmt.Errorf("invalid array index syntax: %s", segment)
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return "", 0, false, fmt.Errorf("invalid array index: %s", inner)
	}
	return segment[:open], n, true, nil
}

func valueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
