package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientChatToolCalls(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotPayload)

		w.Write([]byte(`{
			"id": "cmpl-1",
			"model": "test-model",
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "bookAppointment", "arguments": "{\"eventTypeId\": 42}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(
		WithBaseURL(srv.URL),
		WithAPIKey("test-key"),
		WithModel("test-model"),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("Buche Montag")},
		Tools: []Tool{
			NewTool("bookAppointment", "Buche einen Termin.", map[string]interface{}{"type": "object"}),
		},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	// Tool definitions made it into the wire payload.
	tools, ok := gotPayload["tools"].([]interface{})
	if !ok || len(tools) != 1 {
		t.Errorf("payload tools = %v", gotPayload["tools"])
	}

	if resp.FinishReason != "tool_calls" {
		t.Errorf("finish_reason = %q", resp.FinishReason)
	}
	if len(resp.Message.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d, want 1", len(resp.Message.ToolCalls))
	}
	tc := resp.Message.ToolCalls[0]
	if tc.ID != "call_1" || tc.Name != "bookAppointment" {
		t.Errorf("tool call = %+v", tc)
	}
}

func TestClientStreamToolCallDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"Moment"}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"checkAvailability","arguments":"{\"event"}}]}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"TypeId\": 42}"}}]}}]}`+"\n\n")
		io.WriteString(w, `data: {"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client, err := NewClient(WithBaseURL(srv.URL), WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	stream, err := client.Stream(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("Was ist frei?")},
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer stream.Close()

	// First chunk carries text.
	chunk, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv 1: %v", err)
	}
	if chunk.Delta != "Moment" {
		t.Errorf("chunk 1 delta = %q", chunk.Delta)
	}

	// Second chunk opens the tool call with ID and name.
	chunk, err = stream.Recv()
	if err != nil {
		t.Fatalf("Recv 2: %v", err)
	}
	if len(chunk.ToolCalls) != 1 {
		t.Fatalf("chunk 2 tool calls = %d", len(chunk.ToolCalls))
	}
	if chunk.ToolCalls[0].ID != "call_1" || chunk.ToolCalls[0].Name != "checkAvailability" {
		t.Errorf("chunk 2 = %+v", chunk.ToolCalls[0])
	}

	// Continuation fragment carries arguments only.
	chunk, err = stream.Recv()
	if err != nil {
		t.Fatalf("Recv 3: %v", err)
	}
	if len(chunk.ToolCalls) != 1 || chunk.ToolCalls[0].ID != "" {
		t.Fatalf("chunk 3 = %+v", chunk.ToolCalls)
	}
	if chunk.ToolCalls[0].Arguments != `TypeId": 42}` {
		t.Errorf("chunk 3 arguments = %q", chunk.ToolCalls[0].Arguments)
	}

	// Finish reason terminates the stream.
	chunk, err = stream.Recv()
	if err != nil {
		t.Fatalf("Recv 4: %v", err)
	}
	if !chunk.Done || chunk.FinishReason != "tool_calls" {
		t.Errorf("chunk 4 = %+v", chunk)
	}
}

func TestClientRetriesOn429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}],
			"usage": {}
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(
		WithBaseURL(srv.URL),
		WithAPIKey("test-key"),
		WithRetry(2, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Message.Content != "ok" {
		t.Errorf("content = %q", resp.Message.Content)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestClientParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(WithBaseURL(srv.URL), WithAPIKey("bad-key"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	_, err = client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *APIError", err)
	}
	if !apiErr.IsUnauthorized() {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid api key" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
