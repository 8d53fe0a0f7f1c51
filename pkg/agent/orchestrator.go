package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kiempfang/voicedesk/pkg/calcom"
	"github.com/kiempfang/voicedesk/pkg/inference"
	"github.com/kiempfang/voicedesk/pkg/session"
)

// apology is spoken when a model pass fails; the turn still terminates cleanly.
const apology = "Entschuldigung, da ist gerade etwas schiefgelaufen. Können Sie das bitte noch einmal sagen?"

// ToolExecutor runs one named intent against the scheduling service.
// Implementations convert every failure into a Failure outcome.
type ToolExecutor interface {
	Execute(ctx context.Context, sess *session.Session, name string, args map[string]any) calcom.Outcome
}

// Emit delivers one response fragment to the transport, in generation order.
type Emit func(TurnResponse)

// Orchestrator drives one conversational turn: a first model pass that may
// produce a tool intent, at most one tool execution, and a second pass that
// narrates the outcome.
type Orchestrator struct {
	provider  inference.Provider
	tools     ToolExecutor
	catalogue []inference.Tool
	persona   Persona
	buffered  bool
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPersona sets the agent persona.
func WithPersona(p Persona) Option {
	return func(o *Orchestrator) { o.persona = p }
}

// WithCatalogue sets the tool catalogue offered on the first pass.
func WithCatalogue(tools []inference.Tool) Option {
	return func(o *Orchestrator) { o.catalogue = tools }
}

// WithBufferedFirstPass collects the first pass non-streaming to obtain a
// clean tool-call decision before any output is emitted. Trades first-token
// latency for tool-calling fidelity.
func WithBufferedFirstPass() Option {
	return func(o *Orchestrator) { o.buffered = true }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l.With("component", "agent.orchestrator") }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator. The default catalogue is the scheduling tools
// plus endCall; the default persona books nothing until an event type is set.
func New(provider inference.Provider, tools ToolExecutor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:  provider,
		tools:     tools,
		catalogue: append(calcom.Catalogue(), calcom.EndCallTool()),
		persona:   DefaultPersona(0),
		logger:    slog.Default().With("component", "agent.orchestrator"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BeginMessage returns the greeting delivered when a call connects.
func (o *Orchestrator) BeginMessage() TurnResponse {
	return TurnResponse{
		ResponseID:      0,
		Content:         o.persona.BeginMessage,
		ContentComplete: true,
	}
}

// RespondTurn runs one turn and delivers its responses through emit.
// Exactly one emitted response carries ContentComplete, unless the context
// is cancelled mid-turn.
func (o *Orchestrator) RespondTurn(ctx context.Context, sess *session.Session, req TurnRequest, emit Emit) {
	phoneKnown := sess != nil && sess.PhoneKnown()
	messages := o.persona.buildMessages(req, o.now(), phoneKnown)

	asm := NewAssembler()
	var err error
	if o.buffered {
		err = o.firstPassBuffered(ctx, messages, asm)
	} else {
		err = o.firstPassStreaming(ctx, req, messages, asm, emit)
	}
	if err != nil {
		o.abort(ctx, req, err, emit)
		return
	}

	intent, ok := asm.Finish()
	if !ok {
		// Direct reply: the free text is the entire answer.
		content := ""
		if o.buffered {
			content = asm.Text()
		}
		emit(TurnResponse{ResponseID: req.ResponseID, Content: content, ContentComplete: true})
		return
	}

	if intent.Name == calcom.ToolEndCall {
		content := ""
		if o.buffered {
			content = asm.Text()
		}
		emit(TurnResponse{ResponseID: req.ResponseID, Content: content, ContentComplete: true, EndCall: true})
		return
	}

	o.logger.Info("tool intent assembled",
		"tool", intent.Name,
		"call_id", intent.CallID,
		"response_id", req.ResponseID,
	)

	outcome := o.runTool(ctx, sess, intent)
	if ctx.Err() != nil {
		return
	}
	if outcome.Failed() {
		o.logger.Warn("tool execution failed",
			"tool", intent.Name,
			"kind", string(outcome.Kind),
			"detail", outcome.Detail,
		)
	}

	// Both the call and its result join the history so the narration pass
	// can confirm or apologize.
	args, _ := json.Marshal(intent.Arguments)
	messages = append(messages,
		inference.NewToolCallMessage(inference.ToolCall{
			ID:        intent.CallID,
			Name:      intent.Name,
			Arguments: string(args),
		}),
		inference.NewToolMessage(intent.CallID, outcome.Narration()),
	)

	o.secondPass(ctx, req, messages, emit)
}

// firstPassStreaming drives the assembler from a live stream, forwarding
// text deltas as they arrive.
func (o *Orchestrator) firstPassStreaming(ctx context.Context, req TurnRequest, messages []inference.Message, asm *Assembler, emit Emit) error {
	stream, err := o.provider.Stream(ctx, &inference.ChatRequest{
		Messages: messages,
		Tools:    o.catalogue,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if err != nil {
			return err
		}

		asm.Consume(chunk)

		if chunk.Delta != "" {
			emit(TurnResponse{ResponseID: req.ResponseID, Content: chunk.Delta})
		}

		if chunk.Done {
			return nil
		}
	}
}

// firstPassBuffered collects the whole completion before anything is emitted.
func (o *Orchestrator) firstPassBuffered(ctx context.Context, messages []inference.Message, asm *Assembler) error {
	resp, err := o.provider.Chat(ctx, &inference.ChatRequest{
		Messages: messages,
		Tools:    o.catalogue,
	})
	if err != nil {
		return err
	}

	chunk := &inference.StreamChunk{Delta: resp.Message.Content}
	for _, tc := range resp.Message.ToolCalls {
		chunk.ToolCalls = append(chunk.ToolCalls, inference.ToolCallDelta{
			ID:        tc.ID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
		})
	}
	asm.Consume(chunk)
	return nil
}

// runTool executes the intent on a worker goroutine and awaits completion.
// The turn never proceeds to the narration pass with the call still in
// flight; only context cancellation abandons the wait.
func (o *Orchestrator) runTool(ctx context.Context, sess *session.Session, intent *FunctionCallIntent) calcom.Outcome {
	done := make(chan calcom.Outcome, 1)
	go func() {
		done <- o.tools.Execute(ctx, sess, intent.Name, intent.Arguments)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-ctx.Done():
		return calcom.Failure(calcom.FailNetwork, ctx.Err().Error())
	}
}

// secondPass streams the narration of the tool outcome.
func (o *Orchestrator) secondPass(ctx context.Context, req TurnRequest, messages []inference.Message, emit Emit) {
	stream, err := o.provider.Stream(ctx, &inference.ChatRequest{
		Messages: messages,
	})
	if err != nil {
		o.abort(ctx, req, err, emit)
		return
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if err != nil {
			o.abort(ctx, req, err, emit)
			return
		}

		if chunk.Delta != "" {
			emit(TurnResponse{ResponseID: req.ResponseID, Content: chunk.Delta})
		}

		if chunk.Done {
			break
		}
	}

	emit(TurnResponse{ResponseID: req.ResponseID, ContentComplete: true})
}

// abort converts a model failure into a spoken apology and a clean terminal
// response. Nothing escapes as a raw fault.
func (o *Orchestrator) abort(ctx context.Context, req TurnRequest, err error, emit Emit) {
	if ctx.Err() != nil {
		// Transport is gone; nobody is listening.
		return
	}
	o.logger.Error("model pass failed", "response_id", req.ResponseID, "error", err)
	emit(TurnResponse{ResponseID: req.ResponseID, Content: apology, ContentComplete: true})
}
