// Package settings manages the on-device JSON settings file: typed
// sections merged over defaults for the frame's own configuration, plus
// raw blob keys used by other components (the cycling position lives
// here). All filesystem access goes through afero so tests run against an
// in-memory filesystem.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/inkframe/inkframe/pkg/logger"
)

// ErrNoBlob is returned by LoadBlob when the key is absent.
var ErrNoBlob = errors.New("settings: no such key")

// ValidIntervals are the slideshow intervals (minutes) the UI offers.
var ValidIntervals = []int{5, 15, 30, 60, 180, 360, 720, 1440}

// DefaultInterval is used when the configured interval is not one of
// ValidIntervals.
const DefaultInterval = 60

// Wifi holds the provisioned network.
type Wifi struct {
	SSID       string `json:"ssid"`
	Configured bool   `json:"configured"`
}

// Display holds e-ink rendering preferences.
type Display struct {
	Orientation   string  `json:"orientation"`
	FitMode       string  `json:"fit_mode"`
	Saturation    float64 `json:"saturation"`
	SmartRecenter bool    `json:"smart_recenter"`
}

// Slideshow holds automatic cycling preferences.
type Slideshow struct {
	Order           string `json:"order"`
	IntervalMinutes int    `json:"interval_minutes"`
	Enabled         bool   `json:"enabled"`
	AutoStart       bool   `json:"auto_start"`
}

// Upload holds web upload limits.
type Upload struct {
	MaxFileSizeMB int `json:"max_file_size_mb"`
}

// Web holds the web UI admin credential. Empty hash disables auth.
type Web struct {
	PasswordHash string `json:"password_hash"`
}

// Settings is the typed view of the settings file.
type Settings struct {
	Wifi      Wifi      `json:"wifi"`
	Display   Display   `json:"display"`
	Slideshow Slideshow `json:"slideshow"`
	Upload    Upload    `json:"upload"`
	Web       Web       `json:"web"`
}

// sectionKeys are the top-level keys owned by the typed Settings view.
// Everything else in the file is an opaque blob owned by its writer.
var sectionKeys = []string{"wifi", "display", "slideshow", "upload", "web"}

// Defaults returns the factory settings.
func Defaults() Settings {
	return Settings{
		Wifi: Wifi{},
		Display: Display{
			Orientation: "horizontal",
			FitMode:     "contain",
			Saturation:  0.5,
		},
		Slideshow: Slideshow{
			Order:           "random",
			IntervalMinutes: DefaultInterval,
			Enabled:         true,
			AutoStart:       true,
		},
		Upload: Upload{MaxFileSizeMB: 20},
		Web:    Web{},
	}
}

// NormalizeInterval clamps an interval to the supported set, falling back
// to DefaultInterval.
func NormalizeInterval(minutes int) int {
	for _, v := range ValidIntervals {
		if v == minutes {
			return minutes
		}
	}
	return DefaultInterval
}

// Store reads and writes the settings file. Every operation re-reads the
// file so external edits are picked up; a mutex serializes the
// read-modify-write cycles so concurrent updates never drop each other.
type Store struct {
	fs   afero.Fs
	path string
	log  logger.Logger
	mu   sync.Mutex
}

// NewStore creates a settings store over the given filesystem and path.
func NewStore(fs afero.Fs, path string, log logger.Logger) *Store {
	return &Store{fs: fs, path: path, log: log}
}

// readRaw loads the file as a raw key map. Any failure (missing file,
// corrupt JSON) yields an empty map: settings degrade to defaults, they
// never crash startup.
func (s *Store) readRaw() map[string]json.RawMessage {
	raw := make(map[string]json.RawMessage)
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return raw
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Warning("settings file is corrupt, using defaults: %v", err)
		return make(map[string]json.RawMessage)
	}
	return raw
}

// writeRaw persists the raw key map with stable indentation.
func (s *Store) writeRaw(raw map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// decode merges the raw sections over defaults. Unknown or partial
// sections keep their default values; a corrupt section is skipped.
func (s *Store) decode(raw map[string]json.RawMessage) Settings {
	st := Defaults()
	targets := map[string]interface{}{
		"wifi":      &st.Wifi,
		"display":   &st.Display,
		"slideshow": &st.Slideshow,
		"upload":    &st.Upload,
		"web":       &st.Web,
	}
	for _, key := range sectionKeys {
		data, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(data, targets[key]); err != nil {
			s.log.Warning("settings section %q is corrupt, using defaults: %v", key, err)
		}
	}
	return st
}

// encode writes the typed sections back into the raw map, preserving blob
// keys owned by other components.
func encode(raw map[string]json.RawMessage, st Settings) error {
	sections := map[string]interface{}{
		"wifi":      st.Wifi,
		"display":   st.Display,
		"slideshow": st.Slideshow,
		"upload":    st.Upload,
		"web":       st.Web,
	}
	for key, v := range sections {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode settings section %q: %w", key, err)
		}
		raw[key] = data
	}
	return nil
}

// Load returns the current settings merged over defaults. It never fails;
// a missing or broken file yields the defaults.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decode(s.readRaw())
}

// Update applies fn to the current settings and persists the result,
// returning the new settings.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := s.readRaw()
	st := s.decode(raw)
	fn(&st)
	if err := encode(raw, st); err != nil {
		return st, err
	}
	if err := s.writeRaw(raw); err != nil {
		return st, err
	}
	return st, nil
}

// Save persists the given settings wholesale.
func (s *Store) Save(st Settings) error {
	_, err := s.Update(func(cur *Settings) { *cur = st })
	return err
}

// LoadBlob returns the raw bytes stored under a reserved key, or ErrNoBlob
// when the key is absent. Section keys are not addressable as blobs.
func (s *Store) LoadBlob(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := s.readRaw()
	data, ok := raw[key]
	if !ok {
		return nil, ErrNoBlob
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// SaveBlob stores raw bytes under a reserved key without disturbing the
// typed sections or other blobs.
func (s *Store) SaveBlob(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := s.readRaw()
	raw[key] = json.RawMessage(data)
	return s.writeRaw(raw)
}
