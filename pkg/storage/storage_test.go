package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMockStorage_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMockStorage()

	if _, ok, err := m.Get(ctx, "p1", "HISTORY"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := m.Set(ctx, "p1", "HISTORY", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := m.Get(ctx, "p1", "HISTORY")
	if err != nil || !ok || v != "[]" {
		t.Errorf("Get = %q, %v, %v", v, ok, err)
	}
	if _, ok, _ := m.Get(ctx, "p2", "HISTORY"); ok {
		t.Error("variables must be scoped per player")
	}
	if err := m.Delete(ctx, "p1", "HISTORY"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "p1", "HISTORY"); ok {
		t.Error("expected key to be gone after Delete")
	}
}

func TestMockStorage_Errors(t *testing.T) {
	ctx := context.Background()
	m := NewMockStorage()

	if err := m.Set(ctx, "", "K", "v"); err == nil {
		t.Error("expected error for empty player ID")
	}

	boom := errors.New("disk full")
	m.SetWriteError(boom)
	if err := m.Set(ctx, "p1", "K", "v"); !errors.Is(err, boom) {
		t.Errorf("expected write error, got %v", err)
	}

	m.SetPingError(boom)
	if err := m.Ping(ctx); !errors.Is(err, boom) {
		t.Errorf("expected ping error, got %v", err)
	}
}

func TestForPlayer(t *testing.T) {
	ctx := context.Background()
	m := NewMockStorage()
	vars := ForPlayer(m, "hero")

	if err := vars.SetVariable(ctx, "SERAPHINA_HISTORY", `[{"role":"user","content":"hi"}]`); err != nil {
		t.Fatalf("SetVariable failed: %v", err)
	}
	raw, ok, err := m.Get(ctx, "hero", "SERAPHINA_HISTORY")
	if err != nil || !ok || raw == "" {
		t.Fatalf("store not written through: %q %v %v", raw, ok, err)
	}
	got, ok, err := vars.GetVariable(ctx, "SERAPHINA_HISTORY")
	if err != nil || !ok || got != raw {
		t.Errorf("GetVariable = %q, %v, %v", got, ok, err)
	}
}
