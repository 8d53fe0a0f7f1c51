package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/kiempfang/voicedesk/pkg/agent"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// outboundBuffer absorbs bursts of small deltas
	outboundBuffer = 64
)

// handleCall serves one call for its whole lifetime. Reads happen on this
// goroutine; all writes are serialized through a single writer goroutine.
func (s *Server) handleCall(conn *websocket.Conn) {
	callID := conn.Params("call_id")
	logger := s.logger.With("call_id", callID)

	sess := s.sessions.Create(callID)
	defer s.sessions.Delete(callID)

	// connCtx ends when the transport disconnects; it is the parent of
	// every turn, so in-flight model streams and scheduling calls abort.
	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	out := make(chan any, outboundBuffer)
	go s.writePump(connCtx, conn, out)

	send := func(msg any) {
		select {
		case out <- msg:
		case <-connCtx.Done():
		}
	}

	send(configEvent{
		ResponseType: eventConfig,
		Config:       configDetail{AutoReconnect: true, CallDetails: true},
	})
	send(wrapResponse(s.orch.BeginMessage()))

	logger.Info("call connected")

	var cancelTurn context.CancelFunc
	defer func() {
		if cancelTurn != nil {
			cancelTurn()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Info("call disconnected", "error", err)
			return
		}

		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			logger.Warn("malformed event", "error", err)
			continue
		}

		switch ev.InteractionType {
		case interactionPingPong:
			send(pingPongEvent{ResponseType: eventPingPong, Timestamp: ev.Timestamp})

		case interactionCallDetails:
			if ev.Call != nil && ev.Call.FromNumber != "" {
				sess.SetPhone(ev.Call.FromNumber)
				logger.Debug("caller number learned")
			}

		case interactionUpdateOnly:
			// Transcript keepalive; nothing to answer.

		case agent.InteractionResponseRequired, agent.InteractionReminderRequired:
			sess.Touch()

			// A newer turn supersedes whatever is still running.
			if cancelTurn != nil {
				cancelTurn()
			}
			turnCtx, cancel := context.WithCancel(connCtx)
			cancelTurn = cancel

			req := agent.TurnRequest{
				ResponseID:      ev.ResponseID,
				Transcript:      ev.Transcript,
				InteractionType: ev.InteractionType,
			}

			go s.orch.RespondTurn(turnCtx, sess, req, func(r agent.TurnResponse) {
				select {
				case out <- wrapResponse(r):
				case <-turnCtx.Done():
				}
			})

		default:
			logger.Debug("unhandled interaction type", "interaction_type", ev.InteractionType)
		}
	}
}

// writePump is the only writer on the connection.
func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, out <-chan any) {
	for {
		select {
		case msg := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Warn("write failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
