package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

// DefaultTimeout bounds one backend call.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 2048

// ErrBackendStatus marks a backend reply with a non-2xx status.
var ErrBackendStatus = errors.New("backend returned non-success status")

// StatusError carries the status and body of a non-2xx backend reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrBackendStatus
}

// BackendResponse is a successful backend reply.
type BackendResponse struct {
	StatusCode int
	Body       string
	Duration   time.Duration
}

// ChatService sends one dialogue request to a persona's backend endpoint.
type ChatService interface {
	Send(ctx context.Context, url string, req *chat.DialogueRequest) (*BackendResponse, error)
}

// HTTPChatService implements ChatService over HTTP POST.
type HTTPChatService struct {
	httpClient *http.Client
}

// Ensure HTTPChatService implements ChatService interface
var _ ChatService = (*HTTPChatService)(nil)

// NewHTTPChatService creates a client whose calls time out after timeout.
// A non-positive timeout uses DefaultTimeout.
func NewHTTPChatService(timeout time.Duration) *HTTPChatService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChatService{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts req as JSON. A non-2xx reply yields a *StatusError; transport
// failures, including timeouts, are wrapped and returned as-is.
func (s *HTTPChatService) Send(ctx context.Context, url string, req *chat.DialogueRequest) (*BackendResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(body)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	return &BackendResponse{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Duration:   elapsed,
	}, nil
}
