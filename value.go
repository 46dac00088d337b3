package chatfield

import (
	"fmt"
	"math"
	"sort"
)

// NaturalKey is the FieldValue entry holding the canonical
// human-readable representation of the answer.
const NaturalKey = "value"

// FieldValue holds everything the model recorded for one field: the
// natural value under "value", one entry per declared cast under the
// cast's name, and any extra keys the model volunteered (context,
// quotes). It is stored wholesale, never patched, so a field is either
// nil or fully populated. Cast results arrive as decoded JSON, so
// numeric entries are float64 and collections are []any or
// map[string]any; the typed getters do the coercion.
type FieldValue map[string]any

// Natural returns the canonical string representation of the answer.
// An empty string means the respondent explicitly declined.
func (v FieldValue) Natural() string {
	if v == nil {
		return ""
	}
	if s, ok := v[NaturalKey].(string); ok {
		return s
	}
	return ""
}

// Raw returns the uncoerced entry for a cast name.
func (v FieldValue) Raw(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v[name]
	return val, ok
}

// AsInt returns the "as_int" cast, or "as_int_<sub>" when a sub-name
// is given.
func (v FieldValue) AsInt(sub ...string) (int64, bool) {
	raw, ok := v.Raw(castKey("as_int", sub))
	if !ok {
		return 0, false
	}
	return toInt(raw)
}

// AsFloat returns the "as_float" cast.
func (v FieldValue) AsFloat(sub ...string) (float64, bool) {
	raw, ok := v.Raw(castKey("as_float", sub))
	if !ok {
		return 0, false
	}
	return toFloat(raw)
}

// AsPercent returns the "as_percent" cast, a fraction in [0, 1].
func (v FieldValue) AsPercent() (float64, bool) {
	raw, ok := v.Raw("as_percent")
	if !ok {
		return 0, false
	}
	return toFloat(raw)
}

// AsBool returns the "as_bool" cast.
func (v FieldValue) AsBool(sub ...string) (bool, bool) {
	raw, ok := v.Raw(castKey("as_bool", sub))
	if !ok {
		return false, false
	}
	b, ok := raw.(bool)
	return b, ok
}

// AsString returns the "as_str" cast.
func (v FieldValue) AsString(sub ...string) (string, bool) {
	raw, ok := v.Raw(castKey("as_str", sub))
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// AsLang returns the "as_lang_<code>" translation cast.
func (v FieldValue) AsLang(code string) (string, bool) {
	raw, ok := v.Raw("as_lang_" + code)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// AsList returns the "as_list" cast as strings.
func (v FieldValue) AsList(sub ...string) ([]string, bool) {
	raw, ok := v.Raw(castKey("as_list", sub))
	if !ok {
		return nil, false
	}
	return toStrings(raw)
}

// AsSet returns the "as_set" cast, deduplicated and sorted.
func (v FieldValue) AsSet(sub ...string) ([]string, bool) {
	raw, ok := v.Raw(castKey("as_set", sub))
	if !ok {
		return nil, false
	}
	items, ok := toStrings(raw)
	if !ok {
		return nil, false
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, s := range items {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, true
}

// AsMap returns the "as_dict" cast.
func (v FieldValue) AsMap(sub ...string) (map[string]any, bool) {
	raw, ok := v.Raw(castKey("as_dict", sub))
	if !ok {
		return nil, false
	}
	m, ok := raw.(map[string]any)
	return m, ok
}

// AsOne returns the mandatory single selection "as_one_<sub>".
func (v FieldValue) AsOne(sub string) (string, bool) {
	raw, ok := v.Raw("as_one_" + sub)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// AsMaybe returns the optional single selection "as_maybe_<sub>"; ok is
// false when no selection was made.
func (v FieldValue) AsMaybe(sub string) (string, bool) {
	raw, ok := v.Raw("as_maybe_" + sub)
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// AsMulti returns the one-or-more selection "as_multi_<sub>".
func (v FieldValue) AsMulti(sub string) ([]string, bool) {
	raw, ok := v.Raw("as_multi_" + sub)
	if !ok {
		return nil, false
	}
	return toStrings(raw)
}

// AsAny returns the zero-or-more selection "as_any_<sub>"; ok with an
// empty slice means the model explicitly selected nothing.
func (v FieldValue) AsAny(sub string) ([]string, bool) {
	raw, ok := v.Raw("as_any_" + sub)
	if !ok {
		return nil, false
	}
	if raw == nil {
		return []string{}, true
	}
	return toStrings(raw)
}

// Copy returns a deep copy.
func (v FieldValue) Copy() FieldValue {
	if v == nil {
		return nil
	}
	c := make(FieldValue, len(v))
	for k, val := range v {
		c[k] = deepCopyValue(val)
	}
	return c
}

func deepCopyValue(val any) any {
	switch t := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = deepCopyValue(v)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, v := range t {
			s[i] = deepCopyValue(v)
		}
		return s
	case []string:
		return append([]string(nil), t...)
	default:
		return t
	}
}

func castKey(base string, sub []string) string {
	if len(sub) > 0 && sub[0] != "" {
		return base + "_" + sub[0]
	}
	return base
}

func toInt(raw any) (int64, bool) {
	switch t := raw.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	default:
		return 0, false
	}
}

func toFloat(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

func toStrings(raw any) ([]string, bool) {
	switch t := raw.(type) {
	case []string:
		return append([]string(nil), t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	default:
		return nil, false
	}
}
