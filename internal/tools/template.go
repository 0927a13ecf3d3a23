package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	argPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)
	envPattern = regexp.MustCompile(`\$\{(\w+)\}`)
)

// SubstituteArgs replaces {{name}} with args[name]. A placeholder without a value
// is an error.
func SubstituteArgs(template string, args map[string]any) (string, error) {
	return substituteArgs(template, args, nil)
}

func substituteArgs(template string, args map[string]any, escape func(string) string) (string, error) {
	var missing string
	out := argPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := argPattern.FindStringSubmatch(m)[1]
		v, ok := args[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		if escape != nil {
			return escape(argString(v))
		}
		return argString(v)
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredArg, missing)
	}
	return out, nil
}

// SubstituteEnv replaces ${NAME} with the environment variable NAME.
func SubstituteEnv(template string) (string, error) {
	var missing string
	out := envPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := envPattern.FindStringSubmatch(m)[1]
		v, ok := os.LookupEnv(name)
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, missing)
	}
	return out, nil
}

// SubstituteTemplate applies argument substitution, then environment substitution.
func SubstituteTemplate(template string, args map[string]any) (string, error) {
	s, err := SubstituteArgs(template, args)
	if err != nil {
		return "", err
	}
	return SubstituteEnv(s)
}

// SubstituteURL is SubstituteTemplate for endpoint URLs. Argument values are
// path-escaped before the first '?' and query-escaped after it; environment
// values are inserted as written.
func SubstituteURL(template string, args map[string]any) (string, error) {
	path, query, hasQuery := strings.Cut(template, "?")
	out, err := substituteArgs(path, args, url.PathEscape)
	if err != nil {
		return "", err
	}
	if hasQuery {
		q, err := substituteArgs(query, args, url.QueryEscape)
		if err != nil {
			return "", err
		}
		out += "?" + q
	}
	return SubstituteEnv(out)
}

func substituteMap(m map[string]string, args map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		s, err := SubstituteTemplate(v, args)
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

// substituteValue walks a decoded JSON/TOML body and substitutes every string.
// Numbers, booleans and null pass through.
func substituteValue(v any, args map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return SubstituteTemplate(val, args)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			s, err := substituteValue(item, args)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			s, err := substituteValue(item, args)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			s, err := substituteValue(item, args)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	}
	return v, nil
}

// argString renders an argument value for URL, header and body templates.
func argString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case nil:
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
