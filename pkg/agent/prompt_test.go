package agent

import (
	"strings"
	"testing"
	"time"

	"github.com/kiempfang/voicedesk/pkg/inference"
)

func TestSystemMessagePlaceholders(t *testing.T) {
	p := DefaultPersona(42)
	now := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)

	msg := p.systemMessage(now, true)
	if msg.Role != inference.RoleSystem {
		t.Errorf("role = %q", msg.Role)
	}
	if strings.Contains(msg.Content, "{{") {
		t.Errorf("unresolved placeholder in prompt: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "BEREITS BEKANNT") {
		t.Error("phone status not rendered")
	}
	if !strings.Contains(msg.Content, "42") {
		t.Error("event type not rendered")
	}
	// 13:00 UTC is 14:00 Berlin winter time.
	if !strings.Contains(msg.Content, "14:00") {
		t.Errorf("time not rendered in Berlin local: %q", msg.Content)
	}
}

func TestSystemMessagePhoneUnknown(t *testing.T) {
	p := DefaultPersona(0)
	msg := p.systemMessage(time.Now(), false)

	if !strings.Contains(msg.Content, "NICHT BEKANNT") {
		t.Error("unknown phone status not rendered")
	}
	if !strings.Contains(msg.Content, "[EVENT_TYPE_ID_MISSING]") {
		t.Error("missing event type marker not rendered")
	}
}

func TestBuildMessagesTranscriptOrder(t *testing.T) {
	p := DefaultPersona(42)
	req := TurnRequest{
		ResponseID:      1,
		InteractionType: InteractionResponseRequired,
		Transcript: []Utterance{
			{Role: RoleAgent, Content: "Hallo."},
			{Role: RoleUser, Content: "Ich hätte gern einen Termin."},
			{Role: RoleAgent, Content: "Gern, wann passt es?"},
			{Role: RoleUser, Content: "Montag."},
		},
	}

	msgs := p.buildMessages(req, time.Now(), false)
	if len(msgs) != 5 {
		t.Fatalf("messages = %d, want system + 4 transcript entries", len(msgs))
	}
	if msgs[0].Role != inference.RoleSystem {
		t.Error("first message must be the system prompt")
	}
	wantRoles := []inference.Role{
		inference.RoleAssistant, inference.RoleUser,
		inference.RoleAssistant, inference.RoleUser,
	}
	for i, want := range wantRoles {
		if msgs[i+1].Role != want {
			t.Errorf("message %d role = %q, want %q", i+1, msgs[i+1].Role, want)
		}
	}
	if msgs[4].Content != "Montag." {
		t.Errorf("last content = %q", msgs[4].Content)
	}
}

func TestBuildMessagesReminderNudge(t *testing.T) {
	p := DefaultPersona(42)
	req := TurnRequest{
		ResponseID:      2,
		InteractionType: InteractionReminderRequired,
		Transcript: []Utterance{
			{Role: RoleUser, Content: "Hallo?"},
		},
	}

	msgs := p.buildMessages(req, time.Now(), false)
	last := msgs[len(msgs)-1]
	if last.Role != inference.RoleUser || last.Content != reminderNudge {
		t.Errorf("reminder nudge missing, last = %+v", last)
	}
}
