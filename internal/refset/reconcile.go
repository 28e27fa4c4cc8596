// Package refset computes the difference between the current and the desired
// members of a relation.
package refset

// Reconcile returns the keys that must be added to current to obtain target
// and the keys that must be removed from it. Keys present in both are left
// out of either result. The order of target (for additions) and current (for
// removals) is preserved and duplicates are reported once.
func Reconcile[K comparable](current, target []K) (toAdd, toRemove []K) {
	have := make(map[K]struct{}, len(current))
	for _, k := range current {
		have[k] = struct{}{}
	}
	want := make(map[K]struct{}, len(target))
	for _, k := range target {
		if _, dup := want[k]; dup {
			continue
		}
		want[k] = struct{}{}
		if _, ok := have[k]; !ok {
			toAdd = append(toAdd, k)
		}
	}
	seen := make(map[K]struct{}, len(current))
	for _, k := range current {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := want[k]; !ok {
			toRemove = append(toRemove, k)
		}
	}
	return toAdd, toRemove
}
