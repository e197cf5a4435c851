package replay

// DiffFollowing compares two following sets. added keeps next's order and
// removed keeps prev's order.
func DiffFollowing(prev []string, next []string) (added []string, removed []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, a := range prev {
		prevSet[a] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, a := range next {
		nextSet[a] = struct{}{}
		if _, ok := prevSet[a]; !ok {
			added = append(added, a)
		}
	}
	for _, a := range prev {
		if _, ok := nextSet[a]; !ok {
			removed = append(removed, a)
		}
	}
	return added, removed
}
