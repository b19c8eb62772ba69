// Package reply turns raw backend chat responses into displayable NPC text.
//
// Backends in the wild answer in several shapes. Parse tries them in a fixed
// priority order and always produces text, falling back to a caller-supplied
// placeholder when nothing usable is found:
//
//  1. chat completion:  {"choices":[{"message":{"content":"..."}}]}
//  2. flat message:     {"message":"..."}
//  3. message object:   {"message":{"content":"..."}}
//  4. flat content:     {"content":"..."}
//  5. data stream:      lines of 0:"fragment" (2: lines are tool/data events)
package reply

import (
	"log/slog"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/tidwall/gjson"
)

const (
	// StreamTextPrefix marks a line carrying a JSON-encoded text fragment.
	StreamTextPrefix = "0:"
	// StreamDataPrefix marks a tool/data event line. Recognized, not used.
	StreamDataPrefix = "2:"
)

// Parser decodes backend response bodies. It never fails.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser that reports soft failures to logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse extracts the reply text from body. When neither a structured shape
// nor any stream fragment yields content, the reply is placeholder and its
// Format is chat.FormatPlaceholder.
func (p *Parser) Parse(body string, placeholder string) chat.ParsedReply {
	if reply, ok := p.parseStructured(body); ok {
		return reply
	}

	if text, ok := p.parseStream(body); ok {
		reply := chat.ParsedReply{Text: text, Format: chat.FormatStream}
		unwrapEnvelope(&reply)
		return reply
	}

	p.logger.Warn("Backend response had no recognizable content, using placeholder",
		"body_length", len(body),
		"placeholder", placeholder)
	return chat.ParsedReply{Text: placeholder, Format: chat.FormatPlaceholder}
}

func (p *Parser) parseStructured(body string) (chat.ParsedReply, bool) {
	if !gjson.Valid(body) {
		p.logger.Debug("Response is not a single JSON document, trying stream decoding")
		return chat.ParsedReply{}, false
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		p.logger.Debug("Response JSON is not an object, trying stream decoding", "type", root.Type.String())
		return chat.ParsedReply{}, false
	}

	var reply chat.ParsedReply
	if c := root.Get("choices.0.message.content"); c.Type == gjson.String && c.Str != "" {
		reply = chat.ParsedReply{Text: c.Str, Format: chat.FormatChatCompletion}
	} else if m := root.Get("message"); m.Type == gjson.String {
		reply = chat.ParsedReply{Text: m.Str, Format: chat.FormatMessage}
	} else if mc := root.Get("message.content"); m.IsObject() && mc.Type == gjson.String {
		reply = chat.ParsedReply{Text: mc.Str, Format: chat.FormatMessageContent}
	} else if ct := root.Get("content"); ct.Type == gjson.String {
		reply = chat.ParsedReply{Text: ct.Str, Format: chat.FormatContent}
	} else {
		p.logger.Debug("Structured response has no known content field, trying stream decoding")
		return chat.ParsedReply{}, false
	}

	if e := root.Get("emotion"); e.Type == gjson.String {
		reply.EmotionTag = e.Str
	}
	unwrapEnvelope(&reply)
	return reply, true
}

func (p *Parser) parseStream(body string) (string, bool) {
	var (
		sb    strings.Builder
		found bool
	)
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, StreamTextPrefix):
			raw := line[len(StreamTextPrefix):]
			frag := gjson.Parse(raw)
			if !gjson.Valid(raw) || frag.Type != gjson.String {
				p.logger.Warn("Skipping undecodable stream fragment", "fragment", raw)
				continue
			}
			sb.WriteString(frag.Str)
			found = true
		case strings.HasPrefix(line, StreamDataPrefix):
			p.logger.Debug("Ignoring stream data line", "line", line)
		}
	}
	return sb.String(), found
}

// unwrapEnvelope handles backends instructed to answer with
// {"response": "...", "emotion": "..."} inside the message content.
func unwrapEnvelope(reply *chat.ParsedReply) {
	trimmed := strings.TrimSpace(reply.Text)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return
	}
	env := gjson.Parse(trimmed)
	r := env.Get("response")
	if r.Type != gjson.String {
		return
	}
	reply.Text = r.Str
	if e := env.Get("emotion"); e.Type == gjson.String {
		reply.EmotionTag = e.Str
	}
}
