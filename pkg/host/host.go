// Package host defines the capabilities the game host lends to the
// dialogue engine for the duration of one interaction.
package host

import (
	"context"

	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
)

// Choice is one entry in a choice menu.
type Choice struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Image describes an overlay request for the host's image viewer.
type Image struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Variables reads and writes player-scoped persisted values.
// A missing key yields ("", false, nil).
type Variables interface {
	GetVariable(ctx context.Context, key string) (string, bool, error)
	SetVariable(ctx context.Context, key, value string) error
}

// Dialog is the host's dialogue UI.
type Dialog interface {
	// ShowChoices presents a menu. ok is false when the player dismissed it.
	ShowChoices(ctx context.Context, prompt string, choices []Choice) (choice Choice, ok bool, err error)
	// ShowInput presents a free-text box. ok is false when the player dismissed it.
	ShowInput(ctx context.Context, prompt, placeholder string) (text string, ok bool, err error)
	// ShowText displays one page and returns once the player acknowledges it.
	ShowText(ctx context.Context, text string) error
	OpenImageViewer(ctx context.Context, img Image) error
}

// AffectDisplay shows a transient icon above the NPC.
type AffectDisplay interface {
	ShowAffect(ctx context.Context, sym emotion.Symbol) error
}

// Player is the live handle for the player talking to an NPC.
type Player interface {
	ID() string
	Variables
	Dialog
	AffectDisplay
}
