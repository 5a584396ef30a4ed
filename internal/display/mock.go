package display

import (
	"context"
	"sync"
)

// MockRenderer records render calls for tests.
type MockRenderer struct {
	mu       sync.Mutex
	Rendered []string
	Infos    []Info
	Messages []string
	Err      error
}

// Render records the photo identifier.
func (m *MockRenderer) Render(ctx context.Context, id string, opts Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rendered = append(m.Rendered, id)
	return m.Err
}

// ShowInfo records the info screen content.
func (m *MockRenderer) ShowInfo(ctx context.Context, info Info) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Infos = append(m.Infos, info)
	return m.Err
}

// ShowMessage records the message title.
func (m *MockRenderer) ShowMessage(ctx context.Context, title, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, title)
	return m.Err
}

// Busy always reports false.
func (m *MockRenderer) Busy() bool { return false }

// RenderedIDs returns a copy of the recorded photo identifiers.
func (m *MockRenderer) RenderedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Rendered))
	copy(out, m.Rendered)
	return out
}

var _ Renderer = (*MockRenderer)(nil)
