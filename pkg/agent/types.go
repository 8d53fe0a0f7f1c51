// Package agent implements the streaming tool-call orchestration engine:
// one conversational turn in, a stream of responses out, at most one
// side-effecting scheduling action in between.
package agent

// Utterance roles as delivered by the call transport.
const (
	RoleAgent = "agent"
	RoleUser  = "user"
)

// Interaction types that trigger a turn.
const (
	InteractionResponseRequired = "response_required"
	InteractionReminderRequired = "reminder_required"
)

// Utterance is one transcript entry. Immutable, ordered by conversation.
type Utterance struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one turn's input, created by the transport and consumed once.
type TurnRequest struct {
	ResponseID      int         `json:"response_id"`
	Transcript      []Utterance `json:"transcript"`
	InteractionType string      `json:"interaction_type"`
}

// TurnResponse is one output fragment of a turn. Zero or more are produced
// per TurnRequest; exactly one carries ContentComplete.
type TurnResponse struct {
	ResponseID      int    `json:"response_id"`
	Content         string `json:"content"`
	ContentComplete bool   `json:"content_complete"`
	EndCall         bool   `json:"end_call"`
}

// FunctionCallIntent is one fully assembled tool call. It lives only for the
// duration of one model pass; at most one is materialized per turn.
type FunctionCallIntent struct {
	// CallID is the provider's identifier for the call.
	CallID string

	// Name of the requested tool.
	Name string

	// RawArguments is the accumulated JSON argument text. Only valid JSON
	// once assembly is complete.
	RawArguments string

	// Arguments is the parsed argument map, populated by Assembler.Finish.
	Arguments map[string]any
}
