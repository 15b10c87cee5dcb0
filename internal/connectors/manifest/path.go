package manifest

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// GetByPath looks up a dotted path in decoded JSON. Object keys index
// maps and numeric segments index arrays. Any missing or non-container
// intermediate yields (nil, false).
func GetByPath(v any, path string) (any, bool) {
	if path == "" {
		return v, v != nil
	}
	cur := v
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at path, or "" when absent or not a string.
func GetString(v any, path string) string {
	got, _ := GetByPath(v, path)
	s, _ := got.(string)
	return s
}

// Stringify renders a decoded JSON scalar as text. Containers and null
// render as the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case int, int64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

var templateVar = regexp.MustCompile(`\{([^{}]+)\}`)

// ResolveTemplate replaces {key} tokens with the percent-encoded value.
// Keys starting with an underscore are internal and never substituted;
// unknown keys are left in place.
func ResolveTemplate(template string, vars map[string]string) string {
	return resolve(template, vars, EncodeURIComponent)
}

// resolveRaw substitutes without encoding, for values that are encoded
// later as a whole (query parameters).
func resolveRaw(template string, vars map[string]string) string {
	return resolve(template, vars, func(s string) string { return s })
}

func resolve(template string, vars map[string]string, encode func(string) string) string {
	return templateVar.ReplaceAllStringFunc(template, func(tok string) string {
		key := tok[1 : len(tok)-1]
		if strings.HasPrefix(key, "_") {
			return tok
		}
		v, ok := vars[key]
		if !ok {
			return tok
		}
		return encode(v)
	})
}

var uriComponentKeep = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func EncodeURIComponent(s string) string {
	return uriComponentKeep.Replace(url.QueryEscape(s))
}

// unresolvedVars lists template keys still present in s.
func unresolvedVars(s string) []string {
	var keys []string
	for _, m := range templateVar.FindAllStringSubmatch(s, -1) {
		if !strings.HasPrefix(m[1], "_") {
			keys = append(keys, m[1])
		}
	}
	return keys
}
