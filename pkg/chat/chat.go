package chat

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	ChatRoleUser  = "user"      // Player
	ChatRoleAgent = "assistant" // NPC
)

// MaxMessageLength bounds free-text player input, in runes.
const MaxMessageLength = 1000

var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds maximum length of %d characters", MaxMessageLength)
)

// ChatMessage represents a single chat message in an NPC conversation.
// The json shape matches what the backend chat service expects.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant"
	Content string `json:"content"`
}

// DialogueRequest is the payload posted to a persona's backend chat endpoint.
type DialogueRequest struct {
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// NewDialogueRequest builds a non-streaming request from a conversation history.
// The history is copied so later appends cannot leak into an in-flight request.
func NewDialogueRequest(history []ChatMessage) DialogueRequest {
	msgs := make([]ChatMessage, len(history))
	copy(msgs, history)
	return DialogueRequest{
		Messages: msgs,
		Stream:   false,
	}
}

// Format records which response shape a reply was decoded from.
type Format string

const (
	FormatChatCompletion Format = "chat_completion" // choices[0].message.content
	FormatMessage        Format = "message"         // {"message": "..."}
	FormatMessageContent Format = "message_content" // {"message": {"content": "..."}}
	FormatContent        Format = "content"         // {"content": "..."}
	FormatStream         Format = "stream"          // 0:"fragment" lines
	FormatPlaceholder    Format = "placeholder"     // nothing usable found
)

// ParsedReply is the normalized result of decoding one backend response.
type ParsedReply struct {
	Text       string `json:"text"`
	EmotionTag string `json:"emotion_tag,omitempty"` // empty when the backend sent none
	Format     Format `json:"format"`
}

// Fallback reports whether the reply is the placeholder rather than real content.
func (r ParsedReply) Fallback() bool {
	return r.Format == FormatPlaceholder
}

// ValidateUserInput checks free-text input typed by the player.
func ValidateUserInput(s string) error {
	if s == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(s) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}
