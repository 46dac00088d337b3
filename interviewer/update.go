package interviewer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/internal/fieldname"
)

// Older models were trained on the long-form cardinality slot names;
// rewrite them to the canonical cast keys before storing.
var legacyCastPrefixes = []struct{ old, canonical string }{
	{"choose_exactly_one_", "as_one_"},
	{"choose_zero_or_one_", "as_maybe_"},
	{"choose_one_or_more_", "as_multi_"},
	{"choose_zero_or_more_", "as_any_"},
	{"chooseExactlyOne_", "as_one_"},
	{"chooseZeroOrOne_", "as_maybe_"},
	{"chooseOneOrMore_", "as_multi_"},
	{"chooseZeroOrMore_", "as_any_"},
}

func canonicalCastKey(key string) string {
	for _, p := range legacyCastPrefixes {
		if strings.HasPrefix(key, p.old) {
			return p.canonical + strings.TrimPrefix(key, p.old)
		}
	}
	return key
}

// processUpdate moves model-provided field values into the interview.
// Arguments arrive keyed by encoded field name; a null entry means the
// model had nothing to record for that field. Values are stored
// wholesale, so keys the schema never asked for ride along untouched.
func processUpdate(logger *zap.Logger, iv *chatfield.Interview, args map[string]any) error {
	for encoded, raw := range args {
		if raw == nil {
			continue
		}

		name := fieldname.Decode(encoded)
		field := iv.Field(name)
		if field == nil {
			return fmt.Errorf("%w: %q", chatfield.ErrUnknownField, name)
		}

		values, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q: expected an object, got %T", name, raw)
		}

		stored := make(chatfield.FieldValue, len(values))
		for key, val := range values {
			stored[canonicalCastKey(key)] = val
		}

		if field.Value != nil {
			logger.Debug("overwriting recorded field",
				zap.String("field", name))
		}
		field.Value = stored
	}
	return nil
}
