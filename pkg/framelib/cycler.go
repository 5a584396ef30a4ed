package framelib

import (
	"fmt"
	"sync"

	"github.com/inkframe/inkframe/pkg/logger"
)

// Library is the read-only view of the photo store the cycler consumes.
// It owns the identifiers; the cycler only ever references them.
type Library interface {
	// DisplayIDs returns every displayable photo identifier in stable
	// library order.
	DisplayIDs() ([]string, error)
	// Exists reports whether the identifier is still in the library.
	Exists(id string) (bool, error)
	// Count returns the number of displayable photos.
	Count() (int, error)
}

// Cycler owns the cycling position of the display: the current photo, the
// shuffle bag and the history stack. Every operation is serialized by one
// mutex so the web handlers, the slideshow job and the button poll loop
// can all request a transition at once without losing updates.
//
// Operations hand back an identifier quickly and leave the slow display
// render to the caller, outside the lock. After every mutation the new
// position is flushed best-effort to the settings store.
type Cycler struct {
	lib   Library
	state stateStore
	mode  func() Mode
	log   logger.Logger

	mu      sync.Mutex
	loaded  bool
	current string
	bag     Bag
	history History
}

// NewCycler creates a cycler over the given library. mode is consulted on
// every operation so an ordering change in settings takes effect on the
// next step without restarting. The persisted position is loaded lazily on
// the first operation.
func NewCycler(lib Library, blobs BlobStore, mode func() Mode, log logger.Logger) *Cycler {
	return &Cycler{
		lib:   lib,
		state: stateStore{blobs: blobs, log: log},
		mode:  mode,
		log:   log,
	}
}

// initLocked restores the persisted position exactly once. The caller must
// hold c.mu; the flag is set before the load begins so two callers racing
// through their first operation cannot both run the restore. A restored
// current photo that has since been deleted is discarded; the restored bag
// is kept as-is since Bag.Next re-validates membership on every draw.
func (c *Cycler) initLocked() {
	if c.loaded {
		return
	}
	c.loaded = true

	st := c.state.load()
	c.bag = Bag(st.PendingQueue)
	if st.Current == "" {
		return
	}
	ok, err := c.lib.Exists(st.Current)
	if err != nil {
		c.log.Warning("could not verify saved photo %q, discarding it: %v", st.Current, err)
		return
	}
	if !ok {
		c.log.Info("saved photo %q is gone from the library, starting unset", st.Current)
		return
	}
	c.current = st.Current
}

// snapshotLocked captures the persistable position. Caller must hold c.mu.
func (c *Cycler) snapshotLocked() State {
	queue := make([]string, len(c.bag))
	copy(queue, c.bag)
	return State{Current: c.current, PendingQueue: queue}
}

// Advance selects and records the next photo and returns its identifier
// for the caller to render. Returns ErrEmptyLibrary when the library is
// empty, leaving the position untouched.
func (c *Cycler) Advance() (string, error) {
	all, err := c.lib.DisplayIDs()
	if err != nil {
		return "", fmt.Errorf("failed to list photos: %w", err)
	}
	if len(all) == 0 {
		return "", ErrEmptyLibrary
	}

	c.mu.Lock()
	c.initLocked()

	var next string
	if c.mode() == ModeSequential {
		next = NextSequential(all, c.current)
	} else {
		var bag Bag
		next, bag, err = c.bag.Next(all, c.current)
		if err != nil {
			c.mu.Unlock()
			return "", err
		}
		c.bag = bag
		if c.current != "" {
			c.history.Push(c.current)
		}
	}
	c.current = next
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.state.save(snap)
	return next, nil
}

// Retreat selects and records the previously shown photo. Random mode pops
// the history stack, skipping entries that were deleted meanwhile, and
// falls back to a forward draw when the stack runs dry. Sequential mode
// steps backward through library order.
func (c *Cycler) Retreat() (string, error) {
	all, err := c.lib.DisplayIDs()
	if err != nil {
		return "", fmt.Errorf("failed to list photos: %w", err)
	}
	if len(all) == 0 {
		return "", ErrEmptyLibrary
	}

	c.mu.Lock()
	c.initLocked()

	var prev string
	if c.mode() == ModeSequential {
		prev = PrevSequential(all, c.current)
	} else {
		var ok bool
		prev, ok = c.history.PopValid(all)
		if !ok {
			var bag Bag
			prev, bag, err = c.bag.Next(all, c.current)
			if err != nil {
				c.mu.Unlock()
				return "", err
			}
			c.bag = bag
		}
	}
	c.current = prev
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.state.save(snap)
	return prev, nil
}

// JumpTo makes the given photo current, bypassing the ordering policy.
// Returns ErrNotFound when the photo is no longer in the library.
func (c *Cycler) JumpTo(id string) (string, error) {
	ok, err := c.lib.Exists(id)
	if err != nil {
		return "", fmt.Errorf("failed to look up photo: %w", err)
	}
	if !ok {
		return "", ErrNotFound
	}

	c.mu.Lock()
	c.initLocked()
	if c.mode() == ModeRandom && c.current != "" {
		c.history.Push(c.current)
	}
	c.current = id
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.state.save(snap)
	return id, nil
}

// Current returns the identifier of the photo currently on the display,
// or the empty string before the first selection.
func (c *Cycler) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initLocked()
	return c.current
}

// Pending returns the number of unconsumed entries left in the shuffle
// bag. Exposed for the status surface and for consistency checks in tests.
func (c *Cycler) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initLocked()
	return len(c.bag)
}

// HistoryLen returns the number of photos recorded in the history stack.
func (c *Cycler) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initLocked()
	return c.history.Len()
}
