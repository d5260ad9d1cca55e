// Package membership holds the shared semantics for set-like user id arrays
// (job saved_users, company followers). A membership array contains a given
// user id at most once; flipping membership must be atomic at the storage
// layer so concurrent toggles cannot append duplicates.
package membership

import "fmt"

// ToggleExpr builds the column assignment used by membership toggles, e.g.
//
//	saved_users = CASE WHEN $2 = ANY(saved_users)
//	  THEN array_remove(saved_users, $2)
//	  ELSE array_append(saved_users, $2) END
//
// The whole flip happens inside a single UPDATE, so two concurrent toggles for
// the same user and holder resolve in row-lock order instead of racing a
// read-modify-write cycle.
func ToggleExpr(column string, placeholder int) string {
	return fmt.Sprintf(
		"%s = CASE WHEN $%d = ANY(%s) THEN array_remove(%s, $%d) ELSE array_append(%s, $%d) END",
		column, placeholder, column,
		column, placeholder,
		column, placeholder,
	)
}

// Toggle flips membership of id in ids and reports the resulting state.
// Removal is by value, not index, so it stays correct when other ids moved
// around the array since it was read.
func Toggle(ids []string, id string) ([]string, bool) {
	if Contains(ids, id) {
		out := make([]string, 0, len(ids))
		for _, v := range ids {
			if v != id {
				out = append(out, v)
			}
		}
		return out, false
	}
	return append(append([]string{}, ids...), id), true
}

func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
