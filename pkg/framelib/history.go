package framelib

// historyCap bounds the history stack so a long-running session cannot
// grow it without limit. Oldest entries are dropped first.
const historyCap = 100

// History is a stack of previously shown photos backing the "previous"
// button in random mode. Sequential mode derives its backward step
// analytically and never touches it.
//
// History is not self-locking; the Cycler's mutex guards all access.
type History struct {
	ids []string
}

// Push records a shown photo as the most recent history entry.
func (h *History) Push(id string) {
	h.ids = append(h.ids, id)
	if len(h.ids) > historyCap {
		h.ids = h.ids[1:]
	}
}

// PopValid pops entries until one that still exists in the library is
// found and returns it. It returns false when the stack is exhausted
// without finding a live photo; the caller falls back to a forward draw
// so navigating backward is never a dead end.
func (h *History) PopValid(all []string) (string, bool) {
	live := make(map[string]struct{}, len(all))
	for _, id := range all {
		live[id] = struct{}{}
	}
	for len(h.ids) > 0 {
		id := h.ids[len(h.ids)-1]
		h.ids = h.ids[:len(h.ids)-1]
		if _, ok := live[id]; ok {
			return id, true
		}
	}
	return "", false
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.ids)
}
