// Package merge produces conflict-free merged leads from operator field
// selections and applies merge or delete decisions across many duplicate
// groups with independent per-item success tracking.
package merge

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-dedup/internal/model"
)

// Resolve computes the surviving lead's field values for a duplicate group.
//
// Per field, precedence is deterministic: an explicit operator selection
// (source lead id per field) wins; otherwise the kept lead's value; otherwise
// the first non-empty value among the remaining members in display order. A
// field is omitted from the result only when no member has a value for it —
// an unresolved conflict falls back to the kept lead's value rather than
// failing, since the operator can still edit the merged lead afterwards.
func Resolve(group model.DuplicateGroup, keptID string, selections map[model.FieldKind]string) (model.MergedFieldSet, error) {
	if !group.HasMember(keptID) {
		return nil, eris.New(fmt.Sprintf("merge: kept lead %s is not a member of group %s", keptID, group.ID))
	}

	// Candidates in precedence order: kept lead first, then the others in
	// display order.
	candidates := make([]model.Lead, 0, len(group.Members))
	for _, m := range group.Members {
		if m.ID == keptID {
			candidates = append([]model.Lead{m}, candidates...)
		} else {
			candidates = append(candidates, m)
		}
	}

	merged := make(model.MergedFieldSet)
	for _, kind := range model.MergeFields {
		if srcID, chosen := selections[kind]; chosen {
			src, found := memberByID(group, srcID)
			if !found {
				return nil, eris.New(fmt.Sprintf("merge: selection for %s references lead %s outside group %s", kind, srcID, group.ID))
			}
			if v := src.Field(kind); v != "" {
				merged[kind] = v
				continue
			}
			// Selected source has no value; fall through to the default
			// chain instead of dropping the field.
		}
		for _, c := range candidates {
			if v := c.Field(kind); v != "" {
				merged[kind] = v
				break
			}
		}
	}

	return merged, nil
}

// Selection validates and completes an operator merge selection against its
// group: the kept id defaults to the first member, and the removal set is
// always the group members minus the kept lead.
func Selection(group model.DuplicateGroup, sel model.MergeSelection) (model.MergeSelection, error) {
	if len(group.Members) < 2 {
		return sel, eris.New(fmt.Sprintf("merge: group %s has fewer than two members", group.ID))
	}

	if sel.KeepID == "" {
		sel.KeepID = group.Members[0].ID
	}
	if !group.HasMember(sel.KeepID) {
		return sel, eris.New(fmt.Sprintf("merge: kept lead %s is not a member of group %s", sel.KeepID, group.ID))
	}

	sel.GroupID = group.ID
	sel.RemoveIDs = sel.RemoveIDs[:0]
	for _, m := range group.Members {
		if m.ID != sel.KeepID {
			sel.RemoveIDs = append(sel.RemoveIDs, m.ID)
		}
	}
	return sel, nil
}

func memberByID(group model.DuplicateGroup, id string) (model.Lead, bool) {
	for _, m := range group.Members {
		if m.ID == id {
			return m, true
		}
	}
	return model.Lead{}, false
}
