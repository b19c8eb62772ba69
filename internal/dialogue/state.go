package dialogue

import "github.com/jwebster45206/npc-dialogue/pkg/chat"

// State is a step of the dialogue state machine.
type State string

const (
	StateIdle            State = "idle"
	StateGreeting        State = "greeting"
	StateAwaitingChoice  State = "awaiting_choice"
	StateCommitted       State = "committed"
	StateRequestInFlight State = "request_in_flight"
	StateSuccess         State = "success"
	StateSoftFailure     State = "soft_failure"
	StateHardFailure     State = "hard_failure"
)

// Outcome is how a turn ended.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeSoftFailure Outcome = "soft_failure"
	OutcomeHardFailure Outcome = "hard_failure"
	OutcomeFarewell    Outcome = "farewell"
)

// Result describes one finished Interact call.
type Result struct {
	TurnID  string
	Outcome Outcome
	// States lists every state entered, in order.
	States []State

	UserMessage string
	Reply       chat.ParsedReply
	ImageURL    string
	// Chunks are the reply pages shown, after filtering.
	Chunks []string
}
