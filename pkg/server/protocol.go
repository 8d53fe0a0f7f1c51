package server

import "github.com/kiempfang/voicedesk/pkg/agent"

// Retell custom-LLM websocket event types.
const (
	eventResponse = "response"
	eventConfig   = "config"
	eventPingPong = "ping_pong"
)

// inboundEvent is one message from the call transport. The interaction type
// decides which fields are populated.
type inboundEvent struct {
	InteractionType string            `json:"interaction_type"`
	ResponseID      int               `json:"response_id"`
	Transcript      []agent.Utterance `json:"transcript"`
	Call            *callDetails      `json:"call,omitempty"`
	Timestamp       int64             `json:"timestamp,omitempty"`
}

// Interaction types beyond the ones that trigger turns.
const (
	interactionCallDetails = "call_details"
	interactionPingPong    = "ping_pong"
	interactionUpdateOnly  = "update_only"
)

// callDetails carries call metadata; the caller's number feeds the session.
type callDetails struct {
	CallID     string `json:"call_id"`
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	Direction  string `json:"direction"`
}

// responseEvent wraps an orchestrator fragment in the outward protocol.
// Fragments are delivered unchanged, in generation order.
type responseEvent struct {
	ResponseType string `json:"response_type"`
	agent.TurnResponse
}

// configEvent is sent once after connect.
type configEvent struct {
	ResponseType string       `json:"response_type"`
	Config       configDetail `json:"config"`
}

type configDetail struct {
	AutoReconnect bool `json:"auto_reconnect"`
	CallDetails   bool `json:"call_details"`
}

// pingPongEvent answers transport keepalives.
type pingPongEvent struct {
	ResponseType string `json:"response_type"`
	Timestamp    int64  `json:"timestamp"`
}

func wrapResponse(r agent.TurnResponse) responseEvent {
	return responseEvent{ResponseType: eventResponse, TurnResponse: r}
}
