package storage

import (
	"context"

	"github.com/jwebster45206/npc-dialogue/pkg/host"
)

// VariableStore is the persisted key/value store behind player variables.
// Every key is scoped by player ID; a missing key is not an error.
type VariableStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	Get(ctx context.Context, playerID, key string) (string, bool, error)
	Set(ctx context.Context, playerID, key, value string) error
	Delete(ctx context.Context, playerID, key string) error
}

// playerVariables binds a VariableStore to one player.
type playerVariables struct {
	store    VariableStore
	playerID string
}

// ForPlayer returns host.Variables backed by store for playerID.
func ForPlayer(store VariableStore, playerID string) host.Variables {
	return &playerVariables{store: store, playerID: playerID}
}

func (p *playerVariables) GetVariable(ctx context.Context, key string) (string, bool, error) {
	return p.store.Get(ctx, p.playerID, key)
}

func (p *playerVariables) SetVariable(ctx context.Context, key, value string) error {
	return p.store.Set(ctx, p.playerID, key, value)
}
