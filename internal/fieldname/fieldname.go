// Package fieldname maps arbitrary field names onto schema-safe
// identifiers and back. Generated tool schemas only accept ASCII
// letters, digits and underscores in property names, while interview
// fields may be named anything ("user.name", "full name", "field[0]").
// Encode and Decode form an exact bijection: Decode(Encode(s)) == s for
// every string s, and no two names share an encoding.
package fieldname

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Prefix marks identifiers whose remainder carries escaped characters.
const Prefix = "field_"

// escape opens one escaped-rune token: _PCT<hex>_ with the code point
// in uppercase hexadecimal, at least two digits.
const escape = "_PCT"

// JSON literals cannot serve as property identifiers.
var reserved = map[string]struct{}{
	"true":  {},
	"false": {},
	"null":  {},
}

// Encode returns a schema-safe identifier for name. Names that are
// already safe identifiers pass through unchanged so generated schemas
// stay readable; everything else gets the escape prefix and per-rune
// tokens. Underscores are escaped too on that path, which keeps the
// token grammar unambiguous no matter what the input looks like.
func Encode(name string) string {
	if plain(name) {
		return name
	}
	var b strings.Builder
	b.WriteString(Prefix)
	for _, r := range name {
		if isLetter(r) || isDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(escape)
		h := strconv.FormatUint(uint64(r), 16)
		h = strings.ToUpper(h)
		if len(h) < 2 {
			b.WriteString("0")
		}
		b.WriteString(h)
		b.WriteString("_")
	}
	return b.String()
}

// Decode reverses Encode. Identifiers without the prefix decode to
// themselves; malformed escape tokens are left as literal text rather
// than rejected, so the function is total.
func Decode(id string) string {
	s := strings.TrimPrefix(id, Prefix)
	if !strings.Contains(s, escape) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, n, ok := token(s[i:])
		if ok {
			b.WriteRune(r)
			i += n
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// plain reports whether name may be used as an identifier verbatim: a
// non-empty ASCII identifier that is not a reserved literal, does not
// start with the escape prefix, and contains no escape-token opener
// (such a name would be corrupted by Decode's token scan).
func plain(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, Prefix) {
		return false
	}
	if strings.Contains(name, escape) {
		return false
	}
	if _, ok := reserved[name]; ok {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := rune(name[i])
		if isLetter(c) || c == '_' {
			continue
		}
		if isDigit(c) && i > 0 {
			continue
		}
		return false
	}
	return true
}

// token reads one escape token from the start of s, returning the
// decoded rune and the token's byte length.
func token(s string) (rune, int, bool) {
	if !strings.HasPrefix(s, escape) {
		return 0, 0, false
	}
	j := len(escape)
	k := j
	for k < len(s) && isHex(s[k]) {
		k++
	}
	if k == j || k-j > 8 || k >= len(s) || s[k] != '_' {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[j:k], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	r := rune(v)
	if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		return 0, 0, false
	}
	return r, k + 1, true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')
}
