package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CreateMeetingInput describes the meeting to schedule with the provider.
type CreateMeetingInput struct {
	Topic           string
	StartTime       time.Time
	DurationMinutes int
	Timezone        string
}

// Meeting is the provider-issued resource tied to a session.
type Meeting struct {
	ID         string
	JoinURL    string
	HostURL    string
	AccessCode string
}

// Client performs authenticated calls against the provider API.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient builds a provider client. The HTTP client must carry a bounded
// timeout so a hung provider cannot stall a poller run; a nil client gets one.
func NewClient(tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{tokens: tokens, httpClient: httpClient}
}

type createMeetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone,omitempty"`
}

type createMeetingResponse struct {
	ID       json.Number `json:"id"`
	JoinURL  string      `json:"join_url"`
	StartURL string      `json:"start_url"`
	Password string      `json:"password"`
}

type providerErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// scheduledMeetingType is the provider's enum value for a meeting with a
// fixed start time.
const scheduledMeetingType = 2

// CreateMeeting schedules a meeting at the supplied instant and returns the
// issued resource. Failures are typed: *AuthError when the credential could
// not be obtained, *RequestError for a rejected create call.
func (c *Client) CreateMeeting(ctx context.Context, input CreateMeetingInput) (Meeting, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Meeting{}, err
	}

	payload, err := json.Marshal(createMeetingRequest{
		Topic:     input.Topic,
		Type:      scheduledMeetingType,
		StartTime: input.StartTime.Format(time.RFC3339),
		Duration:  input.DurationMinutes,
		Timezone:  input.Timezone,
	})
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting: encode create request: %w", err)
	}

	endpoint := strings.TrimRight(token.APIBaseURL, "/") + "/users/me/meetings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting: build create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting: create request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting: read create response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var detail providerErrorResponse
		if json.Unmarshal(body, &detail) == nil && detail.Message != "" {
			reqErr.Code = detail.Code
			reqErr.Message = detail.Message
		}
		return Meeting{}, reqErr
	}

	var decoded createMeetingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Meeting{}, fmt.Errorf("meeting: decode create response: %w", err)
	}
	if decoded.ID.String() == "" {
		return Meeting{}, &RequestError{StatusCode: resp.StatusCode, Message: "response missing meeting id"}
	}

	return Meeting{
		ID:         decoded.ID.String(),
		JoinURL:    decoded.JoinURL,
		HostURL:    decoded.StartURL,
		AccessCode: decoded.Password,
	}, nil
}
