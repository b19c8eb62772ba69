package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/npc-dialogue/pkg/chat"
)

// MockChatService is a mock implementation of ChatService for testing
type MockChatService struct {
	SendFunc func(ctx context.Context, url string, req *chat.DialogueRequest) (*BackendResponse, error)

	// Track calls for testing
	SendCalls []SendCall

	mu sync.Mutex // protects all fields above
}

type SendCall struct {
	URL      string
	Messages []chat.ChatMessage
	Stream   bool
}

// Ensure MockChatService implements ChatService interface
var _ ChatService = (*MockChatService)(nil)

// NewMockChatService creates a mock that answers every call with body
func NewMockChatService(body string) *MockChatService {
	return &MockChatService{
		SendFunc: func(ctx context.Context, url string, req *chat.DialogueRequest) (*BackendResponse, error) {
			return &BackendResponse{StatusCode: 200, Body: body}, nil
		},
	}
}

// Send records the call and delegates to SendFunc
func (m *MockChatService) Send(ctx context.Context, url string, req *chat.DialogueRequest) (*BackendResponse, error) {
	m.mu.Lock()
	call := SendCall{URL: url, Stream: req.Stream}
	call.Messages = append([]chat.ChatMessage(nil), req.Messages...)
	m.SendCalls = append(m.SendCalls, call)
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, url, req)
	}
	return &BackendResponse{StatusCode: 200, Body: `{"message":"Mock response"}`}, nil
}

// Calls returns a copy of the recorded calls
func (m *MockChatService) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SendCall(nil), m.SendCalls...)
}

// Reset clears all call tracking
func (m *MockChatService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCalls = nil
}
