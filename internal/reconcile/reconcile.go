// Package reconcile merges state collected anonymously into the state of a
// newly signed-in account.
package reconcile

// Union merges local into remote with set semantics. merged keeps the remote
// order followed by local-only values in their local order; localOnly lists
// the values the remote side is missing. Duplicates within either input are
// collapsed, so running Union again on its own output changes nothing.
func Union[T comparable](local, remote []T) (merged, localOnly []T) {
	seen := make(map[T]struct{}, len(local)+len(remote))
	merged = make([]T, 0, len(local)+len(remote))
	localOnly = make([]T, 0)

	for _, v := range remote {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
	}

	for _, v := range local {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
		localOnly = append(localOnly, v)
	}

	return merged, localOnly
}
