package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDialogueRequest_CopiesHistory(t *testing.T) {
	history := []ChatMessage{
		{Role: ChatRoleAgent, Content: "Greetings, traveler."},
		{Role: ChatRoleUser, Content: "Tell me about the spirits."},
	}

	req := NewDialogueRequest(history)
	if req.Stream {
		t.Error("Expected stream to be false")
	}
	if len(req.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(req.Messages))
	}

	history[0].Content = "changed"
	if req.Messages[0].Content != "Greetings, traveler." {
		t.Errorf("Request should not share backing array with history, got %q", req.Messages[0].Content)
	}
}

func TestNewDialogueRequest_Empty(t *testing.T) {
	req := NewDialogueRequest(nil)
	if req.Messages == nil {
		t.Fatal("Expected non-nil messages so the payload encodes as []")
	}
	if len(req.Messages) != 0 {
		t.Errorf("Expected 0 messages, got %d", len(req.Messages))
	}
}

func TestParsedReply_Fallback(t *testing.T) {
	if !(ParsedReply{Format: FormatPlaceholder}).Fallback() {
		t.Error("placeholder reply should report fallback")
	}
	if (ParsedReply{Format: FormatStream}).Fallback() {
		t.Error("stream reply should not report fallback")
	}
}

func TestValidateUserInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "valid question", input: "What is free will?", wantErr: nil},
		{name: "at max length", input: strings.Repeat("a", MaxMessageLength), wantErr: nil},
		{name: "multibyte at max length", input: strings.Repeat("é", MaxMessageLength), wantErr: nil},
		{name: "too long", input: strings.Repeat("a", MaxMessageLength+1), wantErr: ErrMessageTooLong},
		{name: "empty", input: "", wantErr: ErrEmptyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserInput(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUserInput() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
