package chatfield

import (
	"fmt"
	"reflect"
)

// MergeInterviews reconciles two snapshots of the same logical
// conversation, older first. The result is based on the newer snapshot
// after verifying every difference is monotone: a nil value becoming
// set, a false flag becoming true, a placeholder role label becoming a
// real one, or new fields/rules/traits being appended. Anything else
// means the snapshots disagree about history and yields
// ErrMergeConflict rather than silently picking a side.
func MergeInterviews(old, cur *Interview) (*Interview, error) {
	if old == nil {
		if cur == nil {
			return nil, nil
		}
		return cur.Copy(), nil
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: newer snapshot is nil", ErrMergeConflict)
	}
	if err := mergeScalar("type", old.Type, cur.Type); err != nil {
		return nil, err
	}
	if err := mergeScalar("desc", old.Desc, cur.Desc); err != nil {
		return nil, err
	}
	if err := mergeRole("interviewer", old.Interviewer, cur.Interviewer, DefaultInterviewerType); err != nil {
		return nil, err
	}
	if err := mergeRole("interviewee", old.Interviewee, cur.Interviewee, DefaultIntervieweeType); err != nil {
		return nil, err
	}
	for _, of := range old.Fields {
		nf := cur.Field(of.Name)
		if nf == nil {
			return nil, fmt.Errorf("%w: field %q removed", ErrMergeConflict, of.Name)
		}
		if err := mergeField(of, nf); err != nil {
			return nil, err
		}
	}
	return cur.Copy(), nil
}

func mergeScalar(path, old, cur string) error {
	if old == cur || old == "" {
		return nil
	}
	return fmt.Errorf("%w: %s changed from %q to %q", ErrMergeConflict, path, old, cur)
}

func mergeRole(path string, old, cur *Role, placeholder string) error {
	if old == nil {
		return nil
	}
	if cur == nil {
		return fmt.Errorf("%w: %s role removed", ErrMergeConflict, path)
	}
	switch {
	case old.Type == cur.Type:
	case old.Type == "":
	case old.Type == placeholder && cur.Type != "":
		// placeholder label overwritten by a real one
	default:
		return fmt.Errorf("%w: %s role type changed from %q to %q", ErrMergeConflict, path, old.Type, cur.Type)
	}
	if !prefixOf(old.Traits, cur.Traits) {
		return fmt.Errorf("%w: %s role traits rewritten", ErrMergeConflict, path)
	}
	return nil
}

func mergeField(old, cur *Field) error {
	if err := mergeScalar(fmt.Sprintf("field %q desc", old.Name), old.Desc, cur.Desc); err != nil {
		return err
	}
	if old.Specs.Confidential && !cur.Specs.Confidential {
		return fmt.Errorf("%w: field %q lost confidential flag", ErrMergeConflict, old.Name)
	}
	if old.Specs.Conclude && !cur.Specs.Conclude {
		return fmt.Errorf("%w: field %q lost conclude flag", ErrMergeConflict, old.Name)
	}
	for _, spec := range []struct {
		name     string
		old, cur []string
	}{
		{"must", old.Specs.Must, cur.Specs.Must},
		{"reject", old.Specs.Reject, cur.Specs.Reject},
		{"hint", old.Specs.Hint, cur.Specs.Hint},
	} {
		if !prefixOf(spec.old, spec.cur) {
			return fmt.Errorf("%w: field %q %s rules rewritten", ErrMergeConflict, old.Name, spec.name)
		}
	}
	for _, oc := range old.Casts {
		nc := cur.Cast(oc.Name)
		if nc == nil {
			return fmt.Errorf("%w: field %q cast %q removed", ErrMergeConflict, old.Name, oc.Name)
		}
		if err := mergeCast(old.Name, oc, nc); err != nil {
			return err
		}
	}
	switch {
	case old.Value == nil:
	case cur.Value == nil:
		return fmt.Errorf("%w: field %q value reverted to null", ErrMergeConflict, old.Name)
	case !reflect.DeepEqual(map[string]any(old.Value), map[string]any(cur.Value)):
		return fmt.Errorf("%w: field %q value overwritten", ErrMergeConflict, old.Name)
	}
	return nil
}

func mergeCast(field string, old, cur *Cast) error {
	if old.Kind != cur.Kind {
		return fmt.Errorf("%w: field %q cast %q kind changed", ErrMergeConflict, field, old.Name)
	}
	if old.Prompt != cur.Prompt && old.Prompt != "" {
		return fmt.Errorf("%w: field %q cast %q prompt changed", ErrMergeConflict, field, old.Name)
	}
	if !prefixOf(old.Choices, cur.Choices) {
		return fmt.Errorf("%w: field %q cast %q choices rewritten", ErrMergeConflict, field, old.Name)
	}
	if (old.Null && !cur.Null) || (old.Multi && !cur.Multi) {
		return fmt.Errorf("%w: field %q cast %q cardinality tightened", ErrMergeConflict, field, old.Name)
	}
	return nil
}

func prefixOf(old, cur []string) bool {
	if len(old) > len(cur) {
		return false
	}
	for i := range old {
		if old[i] != cur[i] {
			return false
		}
	}
	return true
}
