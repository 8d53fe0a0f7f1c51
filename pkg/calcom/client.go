// Package calcom provides a Cal.com v2 API client and the tool executor
// that maps model-issued scheduling intents onto it.
package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kiempfang/voicedesk/internal/httpc"
)

// APIVersion is the cal-api-version header value sent with every request.
const APIVersion = "2024-08-13"

// DefaultBaseURL is the hosted Cal.com v2 API.
const DefaultBaseURL = "https://api.cal.com/v2"

// APIError represents a non-2xx response from the Cal.com API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("calcom: API error %d: %s", e.StatusCode, e.Message)
}

// IsClientError returns true for HTTP 4xx responses.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsServerError returns true for HTTP 5xx responses.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Client talks to the Cal.com v2 REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithClientLogger sets the structured logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l.With("component", "calcom.client") }
}

// NewClient creates a Cal.com API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    httpc.Client,
		logger:  slog.Default().With("component", "calcom.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attendee is the person a booking is created for.
type Attendee struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Language    string `json:"language,omitempty"`
}

// BookingRequest is the payload for creating a booking.
type BookingRequest struct {
	EventTypeID int               `json:"eventTypeId"`
	Start       string            `json:"start"`
	Attendee    Attendee          `json:"attendee"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Booking is the subset of a booking record the agent narrates.
type Booking struct {
	UID   string `json:"uid"`
	Start string `json:"start"`
}

// bookingEnvelope tolerates both response shapes the API has used.
type bookingEnvelope struct {
	Status  string  `json:"status"`
	Data    Booking `json:"data"`
	Booking Booking `json:"booking"`
}

func (e *bookingEnvelope) booking() Booking {
	if e.Data.UID != "" {
		return e.Data
	}
	return e.Booking
}

// BookingsQuery filters the booking listing.
type BookingsQuery struct {
	AfterStart  string
	BeforeEnd   string
	Status      string
	EventTypeID int
}

// AvailableSlots fetches free slots for an event type in a window.
// The raw listing is returned for the model to read.
func (c *Client) AvailableSlots(ctx context.Context, eventTypeID int, startTime, endTime string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("eventTypeId", strconv.Itoa(eventTypeID))
	q.Set("startTime", startTime)
	q.Set("endTime", endTime)

	return c.getRaw(ctx, "/slots/available?"+q.Encode())
}

// CreateBooking books an appointment.
func (c *Client) CreateBooking(ctx context.Context, req *BookingRequest) (*Booking, error) {
	resp, err := c.post(ctx, "/bookings", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env bookingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("calcom: decode booking: %w", err)
	}
	b := env.booking()
	return &b, nil
}

// RescheduleBooking moves a booking to a new start time.
func (c *Client) RescheduleBooking(ctx context.Context, uid, start, reason string) (*Booking, error) {
	payload := map[string]string{
		"start":              start,
		"reschedulingReason": reason,
	}
	resp, err := c.post(ctx, "/bookings/"+url.PathEscape(uid)+"/reschedule", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env bookingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("calcom: decode booking: %w", err)
	}
	b := env.booking()
	return &b, nil
}

// CancelBooking cancels a booking.
func (c *Client) CancelBooking(ctx context.Context, uid, reason string) error {
	payload := map[string]string{"cancellationReason": reason}
	resp, err := c.post(ctx, "/bookings/"+url.PathEscape(uid)+"/cancel", payload)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Bookings lists bookings in a time window.
// The raw listing is returned for the model to filter by name or phone.
func (c *Client) Bookings(ctx context.Context, query BookingsQuery) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("afterStart", query.AfterStart)
	q.Set("beforeEnd", query.BeforeEnd)
	if query.Status != "" {
		q.Set("status", query.Status)
	}
	if query.EventTypeID != 0 {
		q.Set("eventTypeId", strconv.Itoa(query.EventTypeID))
	}

	return c.getRaw(ctx, "/bookings?"+q.Encode())
}

// getRaw performs a GET and returns the body as raw JSON.
func (c *Client) getRaw(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("calcom: create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calcom: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.parseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("calcom: read response: %w", err)
	}
	return json.RawMessage(body), nil
}

// post performs a POST and raises on non-2xx status.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("calcom: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("calcom: create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calcom: request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.parseError(resp)
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("cal-api-version", APIVersion)
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}

	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Error.Message != "" {
			message = errResp.Error.Message
		} else if errResp.Message != "" {
			message = errResp.Message
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
