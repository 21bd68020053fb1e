package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// FilterAction decides what happens to a matched extra-data value.
type FilterAction string

const (
	FilterActionRemove FilterAction = "remove"
	FilterActionHash   FilterAction = "hash"
	FilterActionMask   FilterAction = "mask"
)

// Rule binds a key pattern to an action. Patterns are matched
// case-insensitively and may be an exact key, "prefix*", "*suffix" or
// "*contains*".
type Rule struct {
	Pattern string
	Action  FilterAction
}

var defaultRules = []Rule{
	{Pattern: "*password*", Action: FilterActionRemove},
	{Pattern: "*secret*", Action: FilterActionRemove},
	{Pattern: "*token*", Action: FilterActionRemove},
	{Pattern: "api_key", Action: FilterActionRemove},
	{Pattern: "private_key", Action: FilterActionRemove},
	{Pattern: "cvv", Action: FilterActionRemove},
	{Pattern: "*card_number", Action: FilterActionMask},
	{Pattern: "iban", Action: FilterActionMask},
	{Pattern: "*phone*", Action: FilterActionMask},
	{Pattern: "*email", Action: FilterActionHash},
	{Pattern: "tax_id", Action: FilterActionHash},
}

// MetadataFilter strips sensitive values from an entry's extra data before
// it is persisted. Nested maps are filtered recursively.
type MetadataFilter struct {
	rules   []Rule
	allowed map[string]bool
}

// FilterOption configures a MetadataFilter.
type FilterOption func(*MetadataFilter)

// WithRule adds a rule evaluated before the defaults.
func WithRule(pattern string, action FilterAction) FilterOption {
	return func(f *MetadataFilter) {
		f.rules = append([]Rule{{Pattern: strings.ToLower(pattern), Action: action}}, f.rules...)
	}
}

// WithAllowedKey lets key through untouched even if a rule matches it.
func WithAllowedKey(key string) FilterOption {
	return func(f *MetadataFilter) {
		f.allowed[strings.ToLower(key)] = true
	}
}

// WithoutDefaultRules drops the built-in rules.
func WithoutDefaultRules() FilterOption {
	return func(f *MetadataFilter) {
		f.rules = nil
	}
}

func NewMetadataFilter(opts ...FilterOption) *MetadataFilter {
	f := &MetadataFilter{
		rules:   append([]Rule(nil), defaultRules...),
		allowed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Filter returns a filtered copy of data. The input map is not modified.
func (f *MetadataFilter) Filter(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	out := make(map[string]any, len(data))
	for key, value := range data {
		lower := strings.ToLower(key)
		if f.allowed[lower] {
			out[key] = value
			continue
		}

		rule, ok := f.match(lower)
		if !ok {
			if nested, isMap := value.(map[string]any); isMap {
				value = f.Filter(nested)
			}
			out[key] = value
			continue
		}

		switch rule.Action {
		case FilterActionRemove:
		case FilterActionHash:
			out[key] = hashValue(value)
		case FilterActionMask:
			out[key] = maskValue(value)
		default:
			out[key] = value
		}
	}
	return out
}

func (f *MetadataFilter) match(key string) (Rule, bool) {
	for _, r := range f.rules {
		if matchPattern(key, r.Pattern) {
			return r, true
		}
	}
	return Rule{}, false
}

func matchPattern(key, pattern string) bool {
	pattern = strings.ToLower(pattern)
	prefix := strings.HasPrefix(pattern, "*")
	suffix := strings.HasSuffix(pattern, "*") && len(pattern) > 1

	switch {
	case prefix && suffix:
		return strings.Contains(key, pattern[1:len(pattern)-1])
	case prefix:
		return strings.HasSuffix(key, pattern[1:])
	case suffix:
		return strings.HasPrefix(key, pattern[:len(pattern)-1])
	default:
		return key == pattern
	}
}

func hashValue(v any) string {
	sum := sha256.Sum256([]byte(fmt.Sprint(v)))
	return hex.EncodeToString(sum[:])
}

// maskValue keeps the first and last two characters of long values.
func maskValue(v any) string {
	s := []rune(fmt.Sprint(v))
	n := len(s)
	switch {
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return string(s[:1]) + strings.Repeat("*", n-2) + string(s[n-1:])
	default:
		return string(s[:2]) + strings.Repeat("*", n-4) + string(s[n-2:])
	}
}
