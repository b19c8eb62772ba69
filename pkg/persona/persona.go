// Package persona describes the NPCs the dialogue engine can voice. Each
// persona is declarative: voice lines, a choice menu, persistence keys and
// the backend endpoint it talks to.
package persona

import (
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
	"github.com/jwebster45206/npc-dialogue/pkg/host"
	"github.com/jwebster45206/npc-dialogue/pkg/session"
)

// SummaryToken is replaced with the last artifact summary in recall lines
// and recall choice messages.
const SummaryToken = "{summary}"

// ChoiceKind controls what happens when a choice is picked.
type ChoiceKind string

const (
	// KindNormal sends the choice's message to the backend.
	KindNormal ChoiceKind = "normal"
	// KindInput asks the player for free text and sends that instead.
	KindInput ChoiceKind = "input"
	// KindExit ends the conversation without a backend call.
	KindExit ChoiceKind = "exit"
)

// ArtifactPolicy controls whether a successful reply is remembered as the
// persona's last artifact.
type ArtifactPolicy string

const (
	ArtifactNone      ArtifactPolicy = "none"
	ArtifactAlways    ArtifactPolicy = "always"
	ArtifactWithImage ArtifactPolicy = "with_image"
)

// Choice is one menu entry.
type Choice struct {
	Text  string `yaml:"text"`
	Value string `yaml:"value"`
	// Message is the user message sent for this choice. Defaults to Value.
	Message string     `yaml:"message,omitempty"`
	Kind    ChoiceKind `yaml:"kind,omitempty"`
	// Thinking replaces the persona's thinking line for this choice.
	Thinking string         `yaml:"thinking,omitempty"`
	Affect   emotion.Symbol `yaml:"affect,omitempty"`
	Artifact ArtifactPolicy `yaml:"artifact,omitempty"`
	// ClearArtifact forgets the previous artifact before the request is sent.
	ClearArtifact bool `yaml:"clear_artifact,omitempty"`
}

// EffectiveKind returns Kind, defaulting to KindNormal.
func (c Choice) EffectiveKind() ChoiceKind {
	if c.Kind == "" {
		return KindNormal
	}
	return c.Kind
}

// EffectiveArtifact returns Artifact, defaulting to ArtifactNone.
func (c Choice) EffectiveArtifact() ArtifactPolicy {
	if c.Artifact == "" {
		return ArtifactNone
	}
	return c.Artifact
}

// UserMessage renders the message sent to the backend for this choice.
func (c Choice) UserMessage(summary string) string {
	msg := c.Message
	if msg == "" {
		msg = c.Value
	}
	return strings.ReplaceAll(msg, SummaryToken, summary)
}

// Backend locates the persona's chat endpoint.
type Backend struct {
	// URL is used as-is when set.
	URL string `yaml:"url,omitempty"`
	// AgentID is appended to the configured base URL when URL is empty.
	AgentID string `yaml:"agent_id,omitempty"`
}

// Lines are the persona's fixed voice lines.
type Lines struct {
	Greeting   string `yaml:"greeting"`
	Farewell   string `yaml:"farewell"`
	Thinking   string `yaml:"thinking,omitempty"`
	MenuPrompt string `yaml:"menu_prompt"`

	InputPrompt      string `yaml:"input_prompt,omitempty"`
	InputPlaceholder string `yaml:"input_placeholder,omitempty"`
	// InputDeclined is shown instead of Farewell when free text is left blank.
	InputDeclined string `yaml:"input_declined,omitempty"`

	// Placeholder is the reply used when nothing could be decoded.
	Placeholder string `yaml:"placeholder"`
	Closing     string `yaml:"closing,omitempty"`

	SoftFailure   string `yaml:"soft_failure"`
	HardFailure   string `yaml:"hard_failure"`
	Unconfigured  string `yaml:"unconfigured"`
	ViewerFailure string `yaml:"viewer_failure,omitempty"`
}

// Viewer titles the image overlay.
type Viewer struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Recall is the branch menu offered while an artifact summary is present.
type Recall struct {
	Line    string   `yaml:"line"`
	Prompt  string   `yaml:"prompt"`
	Choices []Choice `yaml:"choices"`
}

// Persona is one NPC identity.
type Persona struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	HistoryKey  string `yaml:"history_key"`
	ArtifactKey string `yaml:"artifact_key,omitempty"`

	Backend Backend  `yaml:"backend"`
	Lines   Lines    `yaml:"lines"`
	Choices []Choice `yaml:"choices"`
	Recall  *Recall  `yaml:"recall,omitempty"`
	Viewer  Viewer   `yaml:"viewer,omitempty"`

	DefaultEmotion emotion.Symbol                   `yaml:"default_emotion,omitempty"`
	Affects        map[emotion.Event]emotion.Symbol `yaml:"affects,omitempty"`

	// ContentRating enables the word filter for G, PG and PG13.
	ContentRating string `yaml:"content_rating,omitempty"`
}

// Selector returns the persona's emotion selector.
func (p *Persona) Selector() emotion.Selector {
	return emotion.Selector{Default: p.DefaultEmotion, Overrides: p.Affects}
}

// SessionKeys returns the variables this persona's sessions persist under.
func (p *Persona) SessionKeys() session.Keys {
	return session.Keys{History: p.HistoryKey, Artifact: p.ArtifactKey}
}

// TracksArtifacts reports whether the persona remembers its last artifact.
func (p *Persona) TracksArtifacts() bool {
	return p.ArtifactKey != ""
}

// ResolveURL returns the chat endpoint, or "" when none is configured.
func (p *Persona) ResolveURL(baseURL string) string {
	if p.Backend.URL != "" {
		return p.Backend.URL
	}
	if p.Backend.AgentID == "" || baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/api/chat/" + p.Backend.AgentID
}

// RecallLine renders the recollection line for summary.
func (p *Persona) RecallLine(summary string) string {
	if p.Recall == nil {
		return ""
	}
	return strings.ReplaceAll(p.Recall.Line, SummaryToken, summary)
}

// MenuChoices converts choices to the host's menu entries.
func MenuChoices(choices []Choice) []host.Choice {
	out := make([]host.Choice, 0, len(choices))
	for _, c := range choices {
		out = append(out, host.Choice{Text: c.Text, Value: c.Value})
	}
	return out
}

// FindChoice returns the choice with value, if any.
func FindChoice(choices []Choice, value string) (Choice, bool) {
	for _, c := range choices {
		if c.Value == value {
			return c, true
		}
	}
	return Choice{}, false
}
