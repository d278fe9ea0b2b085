package utils

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Tags is the canonical form of an OSM-style tag set.
type Tags map[string]string

// Get returns the value for key and whether it is present and non-empty.
func (t Tags) Get(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t[key]
	return v, ok && v != ""
}

var addressParts = []string{
	"addr:housenumber",
	"addr:street",
	"addr:city",
	"addr:postcode",
	"addr:country",
}

// NormalizeTags coerces a raw tags value into Tags.
//
// Mappings are returned as-is (non-string values are stringified), JSON text is
// parsed, and a JSON string holding an encoded object is unwrapped once. A nil
// or JSON null input yields (nil, true). Anything unparseable yields (nil, false)
// so the caller can log a data-quality warning. It never panics.
func NormalizeTags(raw any) (Tags, bool) {
	return normalizeTags(raw, 0)
}

func normalizeTags(raw any, depth int) (Tags, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case Tags:
		return v, true
	case map[string]string:
		return Tags(v), true
	case map[string]any:
		return stringifyValues(v), true
	case json.RawMessage:
		return parseTags([]byte(v), depth)
	case []byte:
		return parseTags(v, depth)
	case string:
		return parseTags([]byte(v), depth)
	case *string:
		if v == nil {
			return nil, true
		}
		return parseTags([]byte(*v), depth)
	default:
		return nil, false
	}
}

func parseTags(data []byte, depth int) (Tags, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, true
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, false
	}

	switch v := decoded.(type) {
	case map[string]any:
		return stringifyValues(v), true
	case string:
		if depth > 0 {
			return nil, false
		}
		return normalizeTags(v, depth+1)
	default:
		return nil, false
	}
}

func stringifyValues(m map[string]any) Tags {
	tags := make(Tags, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			tags[k] = val
		case float64:
			tags[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			tags[k] = strconv.FormatBool(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			tags[k] = string(b)
		}
	}
	return tags
}

// BuildAddress derives a display address from addr:* tags.
// addr:full wins; otherwise the present parts are joined with ", ".
func BuildAddress(tags Tags) *string {
	if full, ok := tags.Get("addr:full"); ok {
		full = strings.TrimSpace(full)
		if full != "" {
			return &full
		}
	}

	parts := make([]string, 0, len(addressParts))
	for _, key := range addressParts {
		if v, ok := tags.Get(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, v)
			}
		}
	}
	if len(parts) == 0 {
		return nil
	}

	address := strings.Join(parts, ", ")
	return &address
}
