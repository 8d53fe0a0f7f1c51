package agent

import (
	"testing"

	"github.com/kiempfang/voicedesk/pkg/inference"
)

func TestAssemblerTextOnly(t *testing.T) {
	asm := NewAssembler()
	asm.Consume(&inference.StreamChunk{Delta: "Guten "})
	asm.Consume(&inference.StreamChunk{Delta: "Tag!"})
	asm.Consume(&inference.StreamChunk{Done: true})

	if got := asm.Text(); got != "Guten Tag!" {
		t.Errorf("Text() = %q", got)
	}
	if asm.ToolPending() {
		t.Error("no tool call was opened")
	}
	if intent, ok := asm.Finish(); ok || intent != nil {
		t.Error("Finish must report no intent")
	}
}

func TestAssemblerSingleCall(t *testing.T) {
	asm := NewAssembler()
	asm.Consume(&inference.StreamChunk{
		ToolCalls: []inference.ToolCallDelta{
			{ID: "call_1", Name: "bookAppointment", Arguments: `{"eventTy`},
		},
	})
	asm.Consume(&inference.StreamChunk{
		ToolCalls: []inference.ToolCallDelta{
			{Arguments: `peId": 42, `},
		},
	})
	asm.Consume(&inference.StreamChunk{
		ToolCalls: []inference.ToolCallDelta{
			{Arguments: `"start": "2025-01-06T13:00:00Z"}`},
		},
	})
	asm.Consume(&inference.StreamChunk{Done: true})

	if !asm.ToolPending() {
		t.Fatal("tool call should be pending")
	}
	intent, ok := asm.Finish()
	if !ok {
		t.Fatal("Finish must yield the intent")
	}
	if intent.CallID != "call_1" || intent.Name != "bookAppointment" {
		t.Errorf("intent = %+v", intent)
	}
	if got, want := intent.Arguments["start"], "2025-01-06T13:00:00Z"; got != want {
		t.Errorf("start = %v, want %v", got, want)
	}
	// JSON numbers arrive as float64.
	if got := intent.Arguments["eventTypeId"]; got != float64(42) {
		t.Errorf("eventTypeId = %v (%T)", got, got)
	}
}

func TestAssemblerFirstCallWins(t *testing.T) {
	asm := NewAssembler()
	asm.Consume(&inference.StreamChunk{
		ToolCalls: []inference.ToolCallDelta{
			{ID: "call_1", Name: "cancelAppointment", Arguments: `{"bookingUid":`},
		},
	})
	// Second distinct call opens mid-stream; everything after is dropped.
	asm.Consume(&inference.StreamChunk{
		ToolCalls: []inference.ToolCallDelta{
			{ID: "call_2", Name: "bookAppointment", Arguments: `{"eventTypeId": 1}`},
		},
	})
	asm.Consume(&inference.StreamChunk{
		ToolCalls: []inference.ToolCallDelta{
			{Arguments: ` "ignored"}`},
		},
	})
	asm.Consume(&inference.StreamChunk{Done: true})

	intent, ok := asm.Finish()
	if !ok {
		t.Fatal("first call must survive")
	}
	if intent.CallID != "call_1" || intent.Name != "cancelAppointment" {
		t.Errorf("intent = %+v, want the first call", intent)
	}
	// Fragments after the freeze never reach the first call's arguments,
	// leaving them truncated and unparseable.
	if intent.RawArguments != `{"bookingUid":` {
		t.Errorf("RawArguments = %q", intent.RawArguments)
	}
	if len(intent.Arguments) != 0 {
		t.Errorf("Arguments = %v, want empty map on parse failure", intent.Arguments)
	}
}

func TestAssemblerParseFailureYieldsEmptyMap(t *testing.T) {
	asm := NewAssembler()
	asm.Consume(&inference.StreamChunk{
		ToolCalls: []inference.ToolCallDelta{
			{ID: "call_1", Name: "checkAvailability", Arguments: `{"broken":`},
		},
	})
	asm.Consume(&inference.StreamChunk{Done: true})

	intent, ok := asm.Finish()
	if !ok {
		t.Fatal("intent must still materialize")
	}
	if intent.Arguments == nil {
		t.Fatal("Arguments must be a non-nil map")
	}
	if len(intent.Arguments) != 0 {
		t.Errorf("Arguments = %v, want empty", intent.Arguments)
	}
}

func TestAssemblerTextAlongsideCall(t *testing.T) {
	asm := NewAssembler()
	asm.Consume(&inference.StreamChunk{Delta: "Einen Moment, "})
	asm.Consume(&inference.StreamChunk{
		Delta: "ich prüfe das.",
		ToolCalls: []inference.ToolCallDelta{
			{ID: "call_1", Name: "checkAvailability", Arguments: `{}`},
		},
	})
	asm.Consume(&inference.StreamChunk{Done: true})

	if got := asm.Text(); got != "Einen Moment, ich prüfe das." {
		t.Errorf("Text() = %q", got)
	}
	if _, ok := asm.Finish(); !ok {
		t.Error("tool intent must coexist with free text")
	}
}
