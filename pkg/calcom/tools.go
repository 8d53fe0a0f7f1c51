package calcom

import "github.com/kiempfang/voicedesk/pkg/inference"

// Tool intent names understood by the Executor.
const (
	ToolCheckAvailability = "checkAvailability"
	ToolBookAppointment   = "bookAppointment"
	ToolReschedule        = "rescheduleAppointment"
	ToolCancel            = "cancelAppointment"
	ToolListBookings      = "listBookings"

	// ToolEndCall is handled by the orchestrator, never by the Executor.
	ToolEndCall = "endCall"
)

// Catalogue returns the scheduling tool definitions offered to the model.
// The parameter schemas double as validation schemas in the Executor.
func Catalogue() []inference.Tool {
	return []inference.Tool{
		inference.NewTool(ToolCheckAvailability,
			"Prüfe freie Termin-Slots im Kalender.",
			map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"eventTypeId": map[string]interface{}{"type": "integer"},
					"startTime": map[string]interface{}{
						"type":        "string",
						"description": "ISO-8601 Start (UTC oder mit Offset)",
					},
					"endTime": map[string]interface{}{
						"type":        "string",
						"description": "ISO-8601 Ende (UTC oder mit Offset)",
					},
				},
				"required": []interface{}{"eventTypeId", "startTime", "endTime"},
			}),
		inference.NewTool(ToolBookAppointment,
			"Buche einen Termin final.",
			map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"eventTypeId": map[string]interface{}{"type": "integer"},
					"start": map[string]interface{}{
						"type":        "string",
						"description": "Startzeit ISO-8601",
					},
					"attendee": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":        map[string]interface{}{"type": "string"},
							"email":       map[string]interface{}{"type": "string"},
							"phoneNumber": map[string]interface{}{"type": "string"},
							"timeZone":    map[string]interface{}{"type": "string"},
							"language":    map[string]interface{}{"type": "string"},
						},
						"required": []interface{}{"name", "timeZone", "language"},
					},
				},
				"required": []interface{}{"eventTypeId", "start", "attendee"},
			}),
		inference.NewTool(ToolReschedule,
			"Verschiebe einen Termin anhand bookingUid.",
			map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"bookingUid": map[string]interface{}{"type": "string"},
					"start": map[string]interface{}{
						"type":        "string",
						"description": "Neue Startzeit ISO-8601",
					},
					"reschedulingReason": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"bookingUid", "start"},
			}),
		inference.NewTool(ToolCancel,
			"Storniere einen Termin anhand bookingUid.",
			map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"bookingUid":         map[string]interface{}{"type": "string"},
					"cancellationReason": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"bookingUid"},
			}),
		inference.NewTool(ToolListBookings,
			"Hole Buchungen in einem Zeitfenster (zum lokalen Filtern nach Name oder Telefon).",
			map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"afterStart": map[string]interface{}{"type": "string"},
					"beforeEnd":  map[string]interface{}{"type": "string"},
					"status": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"accepted", "upcoming", "cancelled"},
					},
					"eventTypeId": map[string]interface{}{"type": "integer"},
				},
				"required": []interface{}{"afterStart", "beforeEnd"},
			}),
	}
}

// EndCallTool returns the optional endCall tool definition.
func EndCallTool() inference.Tool {
	return inference.NewTool(ToolEndCall,
		"Beende das Gespräch, wenn der Anrufer sich verabschiedet hat.",
		map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		})
}
