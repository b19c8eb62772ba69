package reply

import (
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

const placeholder = "The stars are silent for now..."

func newTestParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantText   string
		wantFormat chat.Format
		wantTag    string
	}{
		{
			name:       "chat completion",
			body:       `{"choices":[{"message":{"role":"assistant","content":"Answer."}}]}`,
			wantText:   "Answer.",
			wantFormat: chat.FormatChatCompletion,
		},
		{
			name:       "chat completion preserves content exactly",
			body:       `{"choices":[{"message":{"content":"  Line one.\nLine \"two\".  "}}]}`,
			wantText:   "  Line one.\nLine \"two\".  ",
			wantFormat: chat.FormatChatCompletion,
		},
		{
			name:       "chat completion wins over flat message",
			body:       `{"choices":[{"message":{"content":"from choices"}}],"message":"from message","content":"from content"}`,
			wantText:   "from choices",
			wantFormat: chat.FormatChatCompletion,
		},
		{
			name:       "empty choices falls through to flat message",
			body:       `{"choices":[],"message":"Greetings, traveler."}`,
			wantText:   "Greetings, traveler.",
			wantFormat: chat.FormatMessage,
		},
		{
			name:       "flat message wins over flat content",
			body:       `{"message":"from message","content":"from content"}`,
			wantText:   "from message",
			wantFormat: chat.FormatMessage,
		},
		{
			name:       "message object with content",
			body:       `{"model":"llama3","message":{"role":"assistant","content":"The auras are bright."},"done":true}`,
			wantText:   "The auras are bright.",
			wantFormat: chat.FormatMessageContent,
		},
		{
			name:       "flat content",
			body:       `{"content":"Pixels!"}`,
			wantText:   "Pixels!",
			wantFormat: chat.FormatContent,
		},
		{
			name:       "top level emotion tag",
			body:       `{"message":"How curious.","emotion":"surprise"}`,
			wantText:   "How curious.",
			wantFormat: chat.FormatMessage,
			wantTag:    "surprise",
		},
		{
			name:       "response envelope inside message content",
			body:       `{"message":{"content":"{\"response\":\"Happiness is a practice.\",\"emotion\":\"idea\"}"}}`,
			wantText:   "Happiness is a practice.",
			wantFormat: chat.FormatMessageContent,
			wantTag:    "idea",
		},
		{
			name:       "json content without response field is kept verbatim",
			body:       `{"content":"{\"foo\":1}"}`,
			wantText:   `{"foo":1}`,
			wantFormat: chat.FormatContent,
		},
		{
			name:       "stream fragments are concatenated",
			body:       "0:\"a\"\n0:\"b\"",
			wantText:   "ab",
			wantFormat: chat.FormatStream,
		},
		{
			name:       "stream with data lines and escapes",
			body:       "f:{\"messageId\":\"m1\"}\n0:\"Hello \"\n2:[{\"tool\":\"imagine\"}]\n0:\"world\\n!\"\r\ne:{\"finishReason\":\"stop\"}\n",
			wantText:   "Hello world\n!",
			wantFormat: chat.FormatStream,
		},
		{
			name:       "undecodable stream line is skipped",
			body:       "0:\"one \"\n0:not json\n0:42\n0:\"two\"",
			wantText:   "one two",
			wantFormat: chat.FormatStream,
		},
		{
			name:       "structured json without content falls back to stream then placeholder",
			body:       `{"status":"ok"}`,
			wantText:   placeholder,
			wantFormat: chat.FormatPlaceholder,
		},
		{
			name:       "plain text is placeholder",
			body:       "Internal hiccup",
			wantText:   placeholder,
			wantFormat: chat.FormatPlaceholder,
		},
		{
			name:       "empty body is placeholder",
			body:       "",
			wantText:   placeholder,
			wantFormat: chat.FormatPlaceholder,
		},
		{
			name:       "only data lines is placeholder",
			body:       "2:[{\"tool\":\"x\"}]",
			wantText:   placeholder,
			wantFormat: chat.FormatPlaceholder,
		},
		{
			name:       "json array is placeholder",
			body:       `["a","b"]`,
			wantText:   placeholder,
			wantFormat: chat.FormatPlaceholder,
		},
	}

	parser := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.body, placeholder)
			if got.Text != tt.wantText {
				t.Errorf("Text = %q; want %q", got.Text, tt.wantText)
			}
			if got.Format != tt.wantFormat {
				t.Errorf("Format = %q; want %q", got.Format, tt.wantFormat)
			}
			if got.EmotionTag != tt.wantTag {
				t.Errorf("EmotionTag = %q; want %q", got.EmotionTag, tt.wantTag)
			}
		})
	}
}

func TestNewParser_NilLogger(t *testing.T) {
	p := NewParser(nil)
	if got := p.Parse("nothing", "placeholder"); got.Text != "placeholder" {
		t.Errorf("Expected placeholder, got %q", got.Text)
	}
}
