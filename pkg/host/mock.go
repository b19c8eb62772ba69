package host

import (
	"context"
	"sync"

	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
)

// MockPlayer is a scripted Player for tests. Menus and input boxes are
// answered from the Choices and Inputs queues; an exhausted queue behaves
// like a dismissed prompt.
type MockPlayer struct {
	PlayerID string

	// Scripted answers. A choice whose Value is empty is treated as a dismissal.
	Choices []Choice
	Inputs  []string

	ShowTextFunc        func(ctx context.Context, text string) error
	OpenImageViewerFunc func(ctx context.Context, img Image) error

	// Track calls for testing
	Vars         map[string]string
	MenuPrompts  []string
	MenuOptions  [][]Choice
	InputPrompts []string
	Texts        []string
	Affects      []emotion.Symbol
	Images       []Image
	SetCalls     []string

	mu sync.Mutex // protects all fields above
}

// Ensure MockPlayer implements Player interface
var _ Player = (*MockPlayer)(nil)

// NewMockPlayer creates a mock player with an empty variable store
func NewMockPlayer(id string) *MockPlayer {
	return &MockPlayer{
		PlayerID: id,
		Vars:     make(map[string]string),
	}
}

func (m *MockPlayer) ID() string {
	return m.PlayerID
}

// GetVariable reads from Vars
func (m *MockPlayer) GetVariable(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Vars[key]
	return v, ok, nil
}

// SetVariable writes to Vars
func (m *MockPlayer) SetVariable(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Vars == nil {
		m.Vars = make(map[string]string)
	}
	m.Vars[key] = value
	m.SetCalls = append(m.SetCalls, key)
	return nil
}

// ShowChoices pops the next scripted choice
func (m *MockPlayer) ShowChoices(ctx context.Context, prompt string, choices []Choice) (Choice, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MenuPrompts = append(m.MenuPrompts, prompt)
	m.MenuOptions = append(m.MenuOptions, append([]Choice(nil), choices...))
	if len(m.Choices) == 0 {
		return Choice{}, false, nil
	}
	c := m.Choices[0]
	m.Choices = m.Choices[1:]
	if c.Value == "" {
		return Choice{}, false, nil
	}
	return c, true, nil
}

// ShowInput pops the next scripted input
func (m *MockPlayer) ShowInput(ctx context.Context, prompt, placeholder string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InputPrompts = append(m.InputPrompts, prompt)
	if len(m.Inputs) == 0 {
		return "", false, nil
	}
	s := m.Inputs[0]
	m.Inputs = m.Inputs[1:]
	return s, true, nil
}

// ShowText records the page
func (m *MockPlayer) ShowText(ctx context.Context, text string) error {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	fn := m.ShowTextFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, text)
	}
	return nil
}

// ShowAffect records the symbol
func (m *MockPlayer) ShowAffect(ctx context.Context, sym emotion.Symbol) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Affects = append(m.Affects, sym)
	return nil
}

// OpenImageViewer records the image
func (m *MockPlayer) OpenImageViewer(ctx context.Context, img Image) error {
	m.mu.Lock()
	m.Images = append(m.Images, img)
	fn := m.OpenImageViewerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, img)
	}
	return nil
}

// ShownTexts returns a copy of every page shown so far
func (m *MockPlayer) ShownTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Texts...)
}

// Reset clears all call tracking
func (m *MockPlayer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MenuPrompts = nil
	m.MenuOptions = nil
	m.InputPrompts = nil
	m.Texts = nil
	m.Affects = nil
	m.Images = nil
	m.SetCalls = nil
}
