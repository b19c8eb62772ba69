package host

import (
	"context"
	"errors"
	"testing"

	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
)

func TestMockPlayer_ChoicesQueue(t *testing.T) {
	ctx := context.Background()
	m := NewMockPlayer("p1")
	m.Choices = []Choice{{Text: "Hi", Value: "hi"}, {}}

	c, ok, err := m.ShowChoices(ctx, "What?", []Choice{{Text: "Hi", Value: "hi"}})
	if err != nil || !ok || c.Value != "hi" {
		t.Fatalf("first choice = %+v, %v, %v", c, ok, err)
	}
	if _, ok, _ := m.ShowChoices(ctx, "What?", nil); ok {
		t.Error("empty value should be treated as dismissal")
	}
	if _, ok, _ := m.ShowChoices(ctx, "What?", nil); ok {
		t.Error("exhausted queue should be treated as dismissal")
	}
	if len(m.MenuPrompts) != 3 {
		t.Errorf("expected 3 recorded prompts, got %d", len(m.MenuPrompts))
	}
}

func TestMockPlayer_Variables(t *testing.T) {
	ctx := context.Background()
	m := NewMockPlayer("p1")

	if _, ok, err := m.GetVariable(ctx, "K"); ok || err != nil {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := m.SetVariable(ctx, "K", "v"); err != nil {
		t.Fatal(err)
	}
	v, ok, _ := m.GetVariable(ctx, "K")
	if !ok || v != "v" {
		t.Errorf("got %q, %v", v, ok)
	}
}

func TestMockPlayer_Funcs(t *testing.T) {
	ctx := context.Background()
	m := NewMockPlayer("p1")
	boom := errors.New("boom")
	m.ShowTextFunc = func(ctx context.Context, text string) error { return boom }

	if err := m.ShowText(ctx, "hello"); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	_ = m.ShowAffect(ctx, emotion.Think)
	_ = m.OpenImageViewer(ctx, Image{URL: "https://x"})

	if got := m.ShownTexts(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("texts = %v", got)
	}
	m.Reset()
	if len(m.Texts) != 0 || len(m.Affects) != 0 || len(m.Images) != 0 {
		t.Error("Reset should clear tracking")
	}
}
