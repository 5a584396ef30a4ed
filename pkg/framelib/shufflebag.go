package framelib

import "math/rand/v2"

// Bag is a shuffle bag: one random permutation of the library, consumed
// from the front. Draining the whole bag before refilling it guarantees
// every photo is shown exactly once per pass.
//
// Bag is a plain value type with no internal locking. The Cycler guards
// it with its own mutex.
type Bag []string

// Refill returns a new Bag holding a uniformly random permutation of all.
func Refill(all []string) Bag {
	b := make(Bag, len(all))
	copy(b, all)
	rand.Shuffle(len(b), func(i, j int) {
		b[i], b[j] = b[j], b[i]
	})
	return b
}

// Next draws the next photo from the bag. Entries that no longer exist in
// the library are dropped before drawing, and an exhausted bag is refilled
// with a fresh permutation of all.
//
// After a refill, if the new bag would open with the photo shown last and
// holds more than one entry, the front entry is swapped with a random other
// position so the same photo is never shown twice back-to-back across a
// bag boundary. A single-entry bag skips the swap entirely.
//
// The returned Bag is the remainder after the draw. Next returns
// ErrEmptyLibrary when all is empty.
func (b Bag) Next(all []string, last string) (string, Bag, error) {
	if len(all) == 0 {
		return "", b, ErrEmptyLibrary
	}

	live := make(map[string]struct{}, len(all))
	for _, id := range all {
		live[id] = struct{}{}
	}
	kept := make(Bag, 0, len(b))
	for _, id := range b {
		if _, ok := live[id]; ok {
			kept = append(kept, id)
		}
	}

	if len(kept) == 0 {
		kept = Refill(all)
		if len(kept) > 1 && kept[0] == last {
			j := 1 + rand.IntN(len(kept)-1)
			kept[0], kept[j] = kept[j], kept[0]
		}
	}

	return kept[0], kept[1:], nil
}
