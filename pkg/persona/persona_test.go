package persona

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
personas:
  - key: guide
    name: Guide
    history_key: GUIDE_HISTORY
    backend:
      url: http://localhost:9000/chat
    lines:
      greeting: Hello.
      farewell: Bye.
      menu_prompt: Yes?
      placeholder: "..."
      soft_failure: Hmm.
      hard_failure: Oops.
      unconfigured: Offline.
    choices:
      - text: Talk
        value: talk
      - text: Leave
        value: leave
        kind: exit
`

func TestBuiltin(t *testing.T) {
	c := Builtin()
	assert.Equal(t, []string{"athena", "elara", "mystic-villager", "phin", "seraphina"}, c.Keys())

	s, err := c.Get("seraphina")
	require.NoError(t, err)
	assert.True(t, s.TracksArtifacts())
	require.NotNil(t, s.Recall)
	assert.Equal(t, emotion.No, s.Selector().ForEvent(emotion.EventTransportError))

	a, err := c.Get("athena")
	require.NoError(t, err)
	custom, ok := FindChoice(a.Choices, "custom")
	require.True(t, ok)
	assert.Equal(t, KindInput, custom.EffectiveKind())
	assert.Equal(t, emotion.Think, a.Selector().ForReply("grumpy"))
}

func TestCatalog_GetNotFound(t *testing.T) {
	_, err := Builtin().Get("nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoad_Minimal(t *testing.T) {
	c, err := Load(strings.NewReader(minimalYAML))
	require.NoError(t, err)
	p, err := c.Get("guide")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/chat", p.ResolveURL("http://ignored"))
	assert.False(t, p.TracksArtifacts())
}

func TestLoad_UnknownField(t *testing.T) {
	bad := strings.Replace(minimalYAML, "    name: Guide", "    name: Guide\n    mood: sunny", 1)
	_, err := Load(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Personas, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validPersona() *Persona {
	return &Persona{
		Key:        "guide",
		Name:       "Guide",
		HistoryKey: "GUIDE_HISTORY",
		Lines: Lines{
			Greeting: "Hello.", Farewell: "Bye.", MenuPrompt: "Yes?", Placeholder: "...",
			SoftFailure: "Hmm.", HardFailure: "Oops.", Unconfigured: "Offline.",
		},
		Choices: []Choice{{Text: "Talk", Value: "talk"}},
	}
}

func TestPersona_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Persona)
		wantErr string
	}{
		{"valid", func(p *Persona) {}, ""},
		{"missing key", func(p *Persona) { p.Key = "" }, "key is required"},
		{"missing greeting", func(p *Persona) { p.Lines.Greeting = "" }, "lines.greeting is required"},
		{"no choices", func(p *Persona) { p.Choices = nil }, "at least one choice"},
		{"duplicate value", func(p *Persona) {
			p.Choices = append(p.Choices, Choice{Text: "Again", Value: "talk"})
		}, "duplicate value"},
		{"bad kind", func(p *Persona) { p.Choices[0].Kind = "dance" }, "kind \"dance\" is invalid"},
		{"input without prompt", func(p *Persona) { p.Choices[0].Kind = KindInput }, "input_prompt"},
		{"artifact without key", func(p *Persona) { p.Choices[0].Artifact = ArtifactAlways }, "requires artifact_key"},
		{"bad artifact policy", func(p *Persona) {
			p.ArtifactKey = "LAST"
			p.Choices[0].Artifact = "sometimes"
		}, "artifact \"sometimes\" is invalid"},
		{"bad affect", func(p *Persona) { p.Choices[0].Affect = "angry" }, "not a known symbol"},
		{"bad default emotion", func(p *Persona) { p.DefaultEmotion = "angry" }, "default_emotion"},
		{"bad event", func(p *Persona) {
			p.Affects = map[emotion.Event]emotion.Symbol{"dancing": emotion.Happy}
		}, "unknown event"},
		{"bad rating", func(p *Persona) { p.ContentRating = "NC17" }, "content_rating"},
		{"recall without artifact key", func(p *Persona) {
			p.Recall = &Recall{Line: "I remember {summary}", Choices: []Choice{{Text: "Go", Value: "go"}}}
		}, "recall requires artifact_key"},
		{"same keys", func(p *Persona) { p.ArtifactKey = p.HistoryKey }, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPersona()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPersona_ValidateJoinsErrors(t *testing.T) {
	p := validPersona()
	p.Name = ""
	p.Lines.Farewell = ""
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "lines.farewell is required")
}

func TestCatalog_DuplicateKeys(t *testing.T) {
	c := &Catalog{Personas: []*Persona{validPersona(), validPersona()}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")

	assert.Error(t, (&Catalog{}).Validate())
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		base    string
		want    string
	}{
		{"explicit url", Backend{URL: "http://a/chat", AgentID: "x"}, "http://b", "http://a/chat"},
		{"agent id", Backend{AgentID: "phin"}, "http://dock:3000", "http://dock:3000/api/chat/phin"},
		{"trailing slash", Backend{AgentID: "phin"}, "http://dock:3000/", "http://dock:3000/api/chat/phin"},
		{"no base", Backend{AgentID: "phin"}, "", ""},
		{"nothing", Backend{}, "http://dock", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Persona{Backend: tt.backend}
			assert.Equal(t, tt.want, p.ResolveURL(tt.base))
		})
	}
}

func TestChoice_UserMessage(t *testing.T) {
	assert.Equal(t, "talk", Choice{Value: "talk"}.UserMessage(""))
	assert.Equal(t, "Tell me more", Choice{Value: "more", Message: "Tell me more"}.UserMessage(""))
	c := Choice{Value: "discuss", Message: `About "{summary}".`}
	assert.Equal(t, `About "The Tower...".`, c.UserMessage("The Tower..."))
}

func TestRecallLine(t *testing.T) {
	s, err := Builtin().Get("seraphina")
	require.NoError(t, err)
	assert.Equal(t, `The stars still echo the vision I shared with you: "A comet"`, s.RecallLine("A comet"))
	assert.Equal(t, "", validPersona().RecallLine("x"))
}

func TestMenuChoices(t *testing.T) {
	got := MenuChoices([]Choice{{Text: "A", Value: "a", Message: "ignored"}})
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Text)
	assert.Equal(t, "a", got[0].Value)
}
