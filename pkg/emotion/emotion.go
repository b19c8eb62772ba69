// Package emotion picks the affect symbol an NPC shows above its head.
package emotion

// Symbol is an affect icon the game host knows how to render.
type Symbol string

const (
	Think          Symbol = "think"
	Idea           Symbol = "idea"
	Question       Symbol = "question"
	Like           Symbol = "like"
	Surprise       Symbol = "surprise"
	Sad            Symbol = "sad"
	Happy          Symbol = "happy"
	Exclamation    Symbol = "exclamation"
	Sleep          Symbol = "sleep"
	DotDotDot      Symbol = "dotdotdot"
	No             Symbol = "no"
	Sweat          Symbol = "sweat"
	Thought        Symbol = "thought"
	HappyOpenMouth Symbol = "happy_open_mouth"
)

// backendTags is the vocabulary a backend may declare in its reply.
// Membership is case-sensitive.
var backendTags = map[string]Symbol{
	"think":    Think,
	"idea":     Idea,
	"question": Question,
	"like":     Like,
	"surprise": Surprise,
	"sad":      Sad,
	"happy":    Happy,
}

var allSymbols = map[Symbol]bool{
	Think: true, Idea: true, Question: true, Like: true, Surprise: true, Sad: true, Happy: true,
	Exclamation: true, Sleep: true, DotDotDot: true, No: true, Sweat: true, Thought: true,
	HappyOpenMouth: true,
}

// IsValid reports whether s is a symbol the host can render.
func (s Symbol) IsValid() bool {
	return allSymbols[s]
}

// FromTag maps a backend-declared tag to a symbol. Unknown or empty tags
// resolve to fallback.
func FromTag(tag string, fallback Symbol) Symbol {
	if s, ok := backendTags[tag]; ok {
		return s
	}
	return fallback
}

// Event is a moment in the dialogue that shows an affect independent of
// what the backend said.
type Event string

const (
	EventGreeting         Event = "greeting"
	EventFarewell         Event = "farewell"
	EventAwaitingResponse Event = "awaiting_response"
	EventRequestFailed    Event = "request_failed"
	EventTransportError   Event = "transport_error"
	EventRequestSucceeded Event = "request_succeeded"
	EventRecollection     Event = "recollection"
	EventClosing          Event = "closing"
)

var defaultEvents = map[Event]Symbol{
	EventGreeting:         Exclamation,
	EventFarewell:         Sleep,
	EventAwaitingResponse: DotDotDot,
	EventRequestFailed:    No,
	EventTransportError:   Sweat,
	EventRequestSucceeded: HappyOpenMouth,
	EventRecollection:     Thought,
	EventClosing:          Like,
}

// Selector resolves affects for one persona.
type Selector struct {
	// Default is used for unknown backend tags. Zero value means Think.
	Default Symbol
	// Overrides replaces the built-in symbol for specific events.
	Overrides map[Event]Symbol
}

// ForEvent returns the symbol for a local dialogue event.
func (s Selector) ForEvent(e Event) Symbol {
	if sym, ok := s.Overrides[e]; ok && sym != "" {
		return sym
	}
	if sym, ok := defaultEvents[e]; ok {
		return sym
	}
	return s.fallback()
}

// ForReply returns the symbol for a backend-declared tag, using the
// request-succeeded event symbol when the tag is absent.
func (s Selector) ForReply(tag string) Symbol {
	if tag == "" {
		return s.ForEvent(EventRequestSucceeded)
	}
	return FromTag(tag, s.fallback())
}

func (s Selector) fallback() Symbol {
	if s.Default == "" {
		return Think
	}
	return s.Default
}
