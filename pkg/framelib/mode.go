package framelib

// Mode selects the ordering policy for cycling.
type Mode int

const (
	// ModeRandom cycles through shuffle-bag permutations.
	ModeRandom Mode = iota
	// ModeSequential cycles in stable library order.
	ModeSequential
)

// ParseMode maps the settings string to a Mode. Unknown values fall back
// to random, the appliance default.
func ParseMode(s string) Mode {
	if s == "sequential" {
		return ModeSequential
	}
	return ModeRandom
}

// String returns the settings representation of the mode.
func (m Mode) String() string {
	if m == ModeSequential {
		return "sequential"
	}
	return "random"
}
