package agent

import (
	"encoding/json"
	"strings"

	"github.com/kiempfang/voicedesk/pkg/inference"
)

// Assembler consumes the fragments of one streamed model pass and produces
// either a complete free-text reply or exactly one FunctionCallIntent.
//
// Some providers attempt parallel tool calls; only single-call execution is
// supported here, so the first call wins and fragments for any later call are
// dropped. The accumulated argument text is parsed once, after the stream is
// fully drained; partial states are never parsed.
type Assembler struct {
	text   strings.Builder
	args   strings.Builder
	intent *FunctionCallIntent
	frozen bool
}

// NewAssembler creates an assembler for one turn.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Consume feeds one stream chunk into the assembler.
func (a *Assembler) Consume(chunk *inference.StreamChunk) {
	if chunk == nil {
		return
	}

	if chunk.Delta != "" {
		a.text.WriteString(chunk.Delta)
	}

	for _, tc := range chunk.ToolCalls {
		switch {
		case a.frozen:
			// First call won; everything else is ignored.
		case tc.ID != "" && a.intent == nil:
			a.intent = &FunctionCallIntent{
				CallID: tc.ID,
				Name:   tc.Name,
			}
			a.args.WriteString(tc.Arguments)
		case tc.ID != "" && tc.ID != a.intent.CallID:
			a.frozen = true
		default:
			a.args.WriteString(tc.Arguments)
		}
	}
}

// Text returns the free-text reply accumulated so far.
func (a *Assembler) Text() string {
	return a.text.String()
}

// ToolPending reports whether a tool call has been opened.
func (a *Assembler) ToolPending() bool {
	return a.intent != nil
}

// Finish completes assembly after the stream is drained. If a tool call was
// opened, its argument text is parsed now; a parse failure yields an empty
// argument map so execution still attempts with defaults.
func (a *Assembler) Finish() (*FunctionCallIntent, bool) {
	if a.intent == nil {
		return nil, false
	}

	a.intent.RawArguments = a.args.String()
	a.intent.Arguments = make(map[string]any)
	if a.intent.RawArguments != "" {
		if err := json.Unmarshal([]byte(a.intent.RawArguments), &a.intent.Arguments); err != nil {
			a.intent.Arguments = make(map[string]any)
		}
	}
	return a.intent, true
}
