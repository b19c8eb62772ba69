// Package session keeps the bounded conversation memory one player has
// with one persona.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/jwebster45206/npc-dialogue/pkg/host"
)

// MaxTurns is the number of user/assistant pairs kept in history.
const MaxTurns = 10

// Keys names the persisted variables a session is stored under.
type Keys struct {
	History string
	// Artifact is empty for personas that do not track artifacts.
	Artifact string
}

// Session is the conversation state for one (player, persona) pair.
type Session struct {
	PlayerID   string
	PersonaKey string

	History []chat.ChatMessage
	// LastArtifactSummary is empty when absent.
	LastArtifactSummary string

	vars   host.Variables
	keys   Keys
	logger *slog.Logger
}

// Load reads the session from vars. A missing or undecodable value yields
// an empty session; read errors are logged, never returned.
func Load(ctx context.Context, vars host.Variables, playerID, personaKey string, keys Keys, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		PlayerID:   playerID,
		PersonaKey: personaKey,
		History:    make([]chat.ChatMessage, 0),
		vars:       vars,
		keys:       keys,
		logger:     logger,
	}

	raw, ok, err := vars.GetVariable(ctx, keys.History)
	switch {
	case err != nil:
		logger.Error("Failed to read conversation history", "player_id", playerID, "persona", personaKey, "error", err)
	case ok && raw != "":
		var history []chat.ChatMessage
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			logger.Warn("Discarding undecodable conversation history", "player_id", playerID, "persona", personaKey, "error", err)
		} else if history != nil {
			s.History = history
			s.truncate()
		}
	}

	if keys.Artifact != "" {
		summary, _, err := vars.GetVariable(ctx, keys.Artifact)
		if err != nil {
			logger.Error("Failed to read artifact summary", "player_id", playerID, "persona", personaKey, "error", err)
		} else {
			s.LastArtifactSummary = summary
		}
	}

	return s
}

// IsNew reports whether the player has never spoken with this persona.
func (s *Session) IsNew() bool {
	return len(s.History) == 0
}

// Append adds msg and drops the oldest entries beyond 2*MaxTurns.
func (s *Session) Append(msg chat.ChatMessage) {
	s.History = append(s.History, msg)
	s.truncate()
}

func (s *Session) truncate() {
	limit := 2 * MaxTurns
	if len(s.History) <= limit {
		return
	}
	kept := make([]chat.ChatMessage, limit)
	copy(kept, s.History[len(s.History)-limit:])
	s.History = kept
}

// HasArtifact reports whether an artifact summary is present.
func (s *Session) HasArtifact() bool {
	return s.LastArtifactSummary != ""
}

// SetArtifact records summary as the most recent artifact.
func (s *Session) SetArtifact(summary string) {
	s.LastArtifactSummary = summary
}

// ClearArtifact forgets the artifact summary.
func (s *Session) ClearArtifact() {
	s.LastArtifactSummary = ""
}

// Save writes history, and the artifact summary if tracked, back to the
// player's variables.
func (s *Session) Save(ctx context.Context) error {
	data, err := json.Marshal(s.History)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	if err := s.vars.SetVariable(ctx, s.keys.History, string(data)); err != nil {
		return fmt.Errorf("failed to save conversation history: %w", err)
	}
	if s.keys.Artifact != "" {
		if err := s.vars.SetVariable(ctx, s.keys.Artifact, s.LastArtifactSummary); err != nil {
			return fmt.Errorf("failed to save artifact summary: %w", err)
		}
	}
	s.logger.Debug("Session saved", "player_id", s.PlayerID, "persona", s.PersonaKey, "messages", len(s.History))
	return nil
}
