package chatfield

import (
	"fmt"
	"sort"
	"strings"
)

// Pretty renders the collected state as indented text for terminals,
// transcripts and exports. Unset fields show as <not collected>;
// declared casts print in declaration order, any extra keys the model
// recorded follow alphabetically.
func (iv *Interview) Pretty() string {
	var b strings.Builder
	title := iv.Type
	if title == "" {
		title = "Interview"
	}
	b.WriteString(title)
	if iv.Desc != "" {
		b.WriteString(": ")
		b.WriteString(iv.Desc)
	}
	b.WriteString("\n")
	for _, f := range iv.Fields {
		label := f.Name
		switch {
		case f.Specs.Conclude:
			label += " (conclude)"
		case f.Specs.Confidential:
			label += " (confidential)"
		}
		if f.Value == nil {
			fmt.Fprintf(&b, "\n%s: <not collected>", label)
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", label, f.Value.Natural())
		printed := map[string]bool{NaturalKey: true}
		for _, c := range f.Casts {
			if raw, ok := f.Value.Raw(c.Name); ok {
				fmt.Fprintf(&b, "\n    %s: %v", c.Name, raw)
				printed[c.Name] = true
			}
		}
		extras := make([]string, 0, len(f.Value))
		for k := range f.Value {
			if !printed[k] {
				extras = append(extras, k)
			}
		}
		sort.Strings(extras)
		for _, k := range extras {
			fmt.Fprintf(&b, "\n    %s: %v", k, f.Value[k])
		}
	}
	b.WriteString("\n")
	return b.String()
}
