package calcom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kiempfang/voicedesk/pkg/inference"
	"github.com/kiempfang/voicedesk/pkg/session"
)

// FailureKind classifies why a tool invocation failed.
type FailureKind string

const (
	FailValidation FailureKind = "validation"
	FailNetwork    FailureKind = "network"
	FailHTTP4xx    FailureKind = "http_4xx"
	FailHTTP5xx    FailureKind = "http_5xx"
)

// Outcome is the result of one tool invocation. Exactly one is produced per
// invoked tool; it is fed back to the model, never shown verbatim to the
// caller.
type Outcome struct {
	// Summary seeds the narration pass on success.
	Summary string

	// Kind and Detail describe a failure. Kind is empty on success.
	Kind   FailureKind
	Detail string
}

// Success creates a successful outcome.
func Success(summary string) Outcome {
	return Outcome{Summary: summary}
}

// Failure creates a failed outcome.
func Failure(kind FailureKind, detail string) Outcome {
	return Outcome{Kind: kind, Detail: detail}
}

// Failed reports whether the invocation failed.
func (o Outcome) Failed() bool {
	return o.Kind != ""
}

// Narration returns the text handed to the model as the tool result.
func (o Outcome) Narration() string {
	if o.Failed() {
		return fmt.Sprintf("Fehler (%s): %s", o.Kind, o.Detail)
	}
	return o.Summary
}

// Executor maps a named intent plus argument map onto exactly one Cal.com
// call. It never retries; retry policy belongs to the conversation.
type Executor struct {
	cal           *Client
	schemas       map[string]*jsonschema.Schema
	operatorEmail string
	countryPrefix string
	logger        *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithOperatorEmail sets the address forced onto every booking attendee.
func WithOperatorEmail(email string) ExecutorOption {
	return func(e *Executor) { e.operatorEmail = email }
}

// WithCountryPrefix sets the prefix used by phone normalization.
func WithCountryPrefix(prefix string) ExecutorOption {
	return func(e *Executor) { e.countryPrefix = prefix }
}

// WithExecutorLogger sets the structured logger.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l.With("component", "calcom.executor") }
}

// NewExecutor creates an Executor validating against the tool catalogue.
func NewExecutor(cal *Client, opts ...ExecutorOption) (*Executor, error) {
	e := &Executor{
		cal:           cal,
		operatorEmail: "anfrage@kiempfang.de",
		countryPrefix: "+49",
		logger:        slog.Default().With("component", "calcom.executor"),
	}
	for _, opt := range opts {
		opt(e)
	}

	schemas, err := compileSchemas(Catalogue())
	if err != nil {
		return nil, err
	}
	e.schemas = schemas
	return e, nil
}

// compileSchemas turns the catalogue parameter schemas into validators.
func compileSchemas(tools []inference.Tool) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	for _, t := range tools {
		raw, err := json.Marshal(t.Function.Parameters)
		if err != nil {
			return nil, fmt.Errorf("calcom: marshal schema %s: %w", t.Function.Name, err)
		}
		name := t.Function.Name + ".json"
		if err := compiler.AddResource(name, strings.NewReader(string(raw))); err != nil {
			return nil, fmt.Errorf("calcom: add schema %s: %w", t.Function.Name, err)
		}
	}

	schemas := make(map[string]*jsonschema.Schema, len(tools))
	for _, t := range tools {
		schema, err := compiler.Compile(t.Function.Name + ".json")
		if err != nil {
			return nil, fmt.Errorf("calcom: compile schema %s: %w", t.Function.Name, err)
		}
		schemas[t.Function.Name] = schema
	}
	return schemas, nil
}

// Execute runs one tool invocation. All failures are converted into a
// Failure outcome; nothing escapes as an error.
func (e *Executor) Execute(ctx context.Context, sess *session.Session, name string, args map[string]any) Outcome {
	schema, ok := e.schemas[name]
	if !ok {
		return Failure(FailValidation, "unbekanntes Tool: "+name)
	}

	if err := schema.Validate(normalizeJSON(args)); err != nil {
		e.logger.Warn("tool arguments rejected", "tool", name, "error", err)
		return Failure(FailValidation, fmt.Sprintf("ungültige Argumente für %s: %v", name, err))
	}

	e.logger.Info("executing tool", "tool", name)

	switch name {
	case ToolCheckAvailability:
		return e.checkAvailability(ctx, args)
	case ToolBookAppointment:
		return e.bookAppointment(ctx, sess, args)
	case ToolReschedule:
		return e.reschedule(ctx, args)
	case ToolCancel:
		return e.cancel(ctx, args)
	case ToolListBookings:
		return e.listBookings(ctx, args)
	default:
		return Failure(FailValidation, "unbekanntes Tool: "+name)
	}
}

func (e *Executor) checkAvailability(ctx context.Context, args map[string]any) Outcome {
	raw, err := e.cal.AvailableSlots(ctx, intArg(args, "eventTypeId"), strArg(args, "startTime"), strArg(args, "endTime"))
	if err != nil {
		return failureFromError(err)
	}
	return Success("Verfügbare Slots: " + string(raw))
}

func (e *Executor) bookAppointment(ctx context.Context, sess *session.Session, args map[string]any) Outcome {
	attendeeArgs, _ := args["attendee"].(map[string]any)
	attendee := Attendee{
		Name:        strArg(attendeeArgs, "name"),
		PhoneNumber: strArg(attendeeArgs, "phoneNumber"),
		TimeZone:    strArg(attendeeArgs, "timeZone"),
		Language:    strArg(attendeeArgs, "language"),
	}

	// Fall back to the phone number learned during the call.
	if attendee.PhoneNumber == "" && sess != nil {
		attendee.PhoneNumber = sess.Phone()
	}

	phone := NormalizePhone(attendee.PhoneNumber, e.countryPrefix)
	attendee.PhoneNumber = phone

	// The operator address always wins over whatever the model supplied.
	attendee.Email = e.operatorEmail

	req := &BookingRequest{
		EventTypeID: intArg(args, "eventTypeId"),
		Start:       ToUTC(strArg(args, "start")),
		Attendee:    attendee,
	}
	if phone != "" {
		// Kept in metadata so the number stays recoverable even if the
		// attendee record is rewritten downstream.
		req.Metadata = map[string]string{"phone": phone}
	}

	booking, err := e.cal.CreateBooking(ctx, req)
	if err != nil {
		return failureFromError(err)
	}
	return Success(fmt.Sprintf("Termin gebucht. UID: %s, Start: %s", booking.UID, booking.Start))
}

func (e *Executor) reschedule(ctx context.Context, args map[string]any) Outcome {
	reason := strArg(args, "reschedulingReason")
	if reason == "" {
		reason = "Reschedule"
	}

	booking, err := e.cal.RescheduleBooking(ctx, strArg(args, "bookingUid"), strArg(args, "start"), reason)
	if err != nil {
		return failureFromError(err)
	}
	return Success("Termin verschoben auf " + booking.Start)
}

func (e *Executor) cancel(ctx context.Context, args map[string]any) Outcome {
	reason := strArg(args, "cancellationReason")
	if reason == "" {
		reason = "Stornierung"
	}

	if err := e.cal.CancelBooking(ctx, strArg(args, "bookingUid"), reason); err != nil {
		return failureFromError(err)
	}
	return Success("Termin storniert.")
}

func (e *Executor) listBookings(ctx context.Context, args map[string]any) Outcome {
	status := strArg(args, "status")
	if status == "" {
		status = "accepted"
	}

	raw, err := e.cal.Bookings(ctx, BookingsQuery{
		AfterStart:  strArg(args, "afterStart"),
		BeforeEnd:   strArg(args, "beforeEnd"),
		Status:      status,
		EventTypeID: intArg(args, "eventTypeId"),
	})
	if err != nil {
		return failureFromError(err)
	}

	// Either envelope key may hold the listing depending on API version.
	var env struct {
		Data     json.RawMessage `json:"data"`
		Bookings json.RawMessage `json:"bookings"`
	}
	listing := string(raw)
	if json.Unmarshal(raw, &env) == nil {
		if len(env.Data) > 0 {
			listing = string(env.Data)
		} else if len(env.Bookings) > 0 {
			listing = string(env.Bookings)
		}
	}
	return Success("Gefundene Buchungen: " + listing)
}

// failureFromError converts a client error into the failure taxonomy.
func failureFromError(err error) Outcome {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsClientError() {
			return Failure(FailHTTP4xx, apiErr.Message)
		}
		return Failure(FailHTTP5xx, apiErr.Message)
	}
	return Failure(FailNetwork, err.Error())
}

// normalizeJSON round-trips a value through encoding/json so the validator
// sees canonical JSON types.
func normalizeJSON(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// strArg reads a string argument, tolerating absence.
func strArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}

// intArg reads an integer argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) int {
	if args == nil {
		return 0
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
