package framelib

// indexOf builds a position lookup over all and resolves current in one
// pass, avoiding repeated linear scans on every step. Returns -1 when
// current is not present (e.g. the photo was deleted since it was shown).
func indexOf(all []string, current string) int {
	pos := make(map[string]int, len(all))
	for i, id := range all {
		pos[id] = i
	}
	if i, ok := pos[current]; ok {
		return i
	}
	return -1
}

// NextSequential returns the photo after current in library order, wrapping
// at the end. When current is no longer in the library the walk restarts
// from the first photo. all must be non-empty.
func NextSequential(all []string, current string) string {
	i := indexOf(all, current)
	if i < 0 {
		return all[0]
	}
	return all[(i+1)%len(all)]
}

// PrevSequential returns the photo before current in library order,
// wrapping at the start. When current is no longer in the library the walk
// restarts from the last photo. all must be non-empty.
func PrevSequential(all []string, current string) string {
	i := indexOf(all, current)
	if i < 0 {
		return all[len(all)-1]
	}
	return all[(i-1+len(all))%len(all)]
}
