package agent

import (
	"strconv"
	"strings"
	"time"

	"github.com/kiempfang/voicedesk/pkg/inference"
)

// DefaultBeginMessage greets the caller before any turn runs.
const DefaultBeginMessage = "Hallo, ich bin Kim, die KI Assistentin von KI Empfang. Kann ich Ihnen mit einer Terminbuchung für eine Demo oder anderweitig weiterhelfen?"

// DefaultSystemPrompt is the receptionist persona. Placeholders are filled
// per turn: {{current_time}}, {{phone_status}}, {{event_type_id}}.
const DefaultSystemPrompt = `# ROLLE
Du bist Kim, die KI-Rezeptionistin der Agentur "KI-Empfang".
Du begrüßt Anrufer freundlich, beantwortest allgemeine Fragen und vereinbarst Termine für eine Demo.
Du sprichst ausschließlich Deutsch und verwendest immer die höfliche Sie-Form.

# KONTEXT
- Aktuelles Datum/Zeit: {{current_time}}
- Telefonnummer-Status: {{phone_status}}
- Event-Typ für Buchungen: {{event_type_id}}

# TOOLS
Nutze die verfügbaren Tools proaktiv: prüfe Verfügbarkeiten, wenn der Anrufer
Interesse zeigt, schlage konkrete Termine vor, und buche, sobald Name und
Termin feststehen. Für eine Buchung muss "attendee" ein verschachteltes Objekt
mit name, timeZone und language sein.

# FEHLERBEHANDLUNG
Wenn ein Tool einen Fehler zurückgibt: entschuldige dich und biete einen
Rückruf durch einen Kollegen an. Wenn keine Termine frei sind: biete einen
Rückruf an.

# STIL (Sprachausgabe)
- Antworte kurz und gesprächig, idealerweise unter zehn Wörtern.
- Schreibe Zahlen von eins bis zwölf aus, Datumsangaben als Wörter.
- Vermeide Abkürzungen.`

// reminderNudge is appended as a user message on silence timeouts.
const reminderNudge = "(Der Anrufer war still; leite eine kurze Erinnerung ein.)"

// Persona configures the agent's voice: prompt text, greeting and the event
// type it books. Different deployments differ only in these values.
type Persona struct {
	SystemPrompt string
	BeginMessage string
	EventTypeID  int
	Location     *time.Location
}

// DefaultPersona returns the receptionist persona booking the given event type.
func DefaultPersona(eventTypeID int) Persona {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}
	return Persona{
		SystemPrompt: DefaultSystemPrompt,
		BeginMessage: DefaultBeginMessage,
		EventTypeID:  eventTypeID,
		Location:     loc,
	}
}

// systemMessage renders the persona prompt for one turn.
func (p Persona) systemMessage(now time.Time, phoneKnown bool) inference.Message {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	phoneStatus := "NICHT BEKANNT"
	if phoneKnown {
		phoneStatus = "BEREITS BEKANNT"
	}

	eventType := "[EVENT_TYPE_ID_MISSING]"
	if p.EventTypeID != 0 {
		eventType = strconv.Itoa(p.EventTypeID)
	}

	content := p.SystemPrompt
	content = strings.ReplaceAll(content, "{{current_time}}", now.In(loc).Format("Monday, 02. January 2006, 15:04"))
	content = strings.ReplaceAll(content, "{{phone_status}}", phoneStatus)
	content = strings.ReplaceAll(content, "{{event_type_id}}", eventType)

	return inference.NewSystemMessage(content)
}

// buildMessages converts a turn request into the model message history.
func (p Persona) buildMessages(req TurnRequest, now time.Time, phoneKnown bool) []inference.Message {
	messages := make([]inference.Message, 0, len(req.Transcript)+2)
	messages = append(messages, p.systemMessage(now, phoneKnown))

	for _, u := range req.Transcript {
		if u.Role == RoleAgent {
			messages = append(messages, inference.NewAssistantMessage(u.Content))
		} else {
			messages = append(messages, inference.NewUserMessage(u.Content))
		}
	}

	if req.InteractionType == InteractionReminderRequired {
		messages = append(messages, inference.NewUserMessage(reminderNudge))
	}
	return messages
}
