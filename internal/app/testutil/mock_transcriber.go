package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"media2text/internal/app/api"
)

// MockTranscriber implements api.Transcriber. Responses and errors are keyed
// by the segment's base file name. When testify expectations are registered
// with On they take precedence.
type MockTranscriber struct {
	mock.Mock
	mu sync.RWMutex

	ModelName       string
	DefaultResponse string
	DefaultError    error

	ErrorMap    map[string]error
	ResponseMap map[string]string
	CallHistory []TranscriptionCall
}

// TranscriptionCall represents a single transcription call for tracking
type TranscriptionCall struct {
	InputFilePath string
	Options       api.TranscriptOptions
	Timestamp     time.Time
	Response      string
	Error         error
}

var _ api.Transcriber = (*MockTranscriber)(nil)

func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{
		ModelName:   "mock-transcriber",
		ErrorMap:    make(map[string]error),
		ResponseMap: make(map[string]string),
	}
}

func (m *MockTranscriber) Name() string {
	return m.ModelName
}

func (m *MockTranscriber) Transcript(ctx context.Context, inputFilePath string, opts api.TranscriptOptions) (string, error) {
	if len(m.ExpectedCalls) > 0 {
		args := m.Called(ctx, inputFilePath, opts)
		m.record(inputFilePath, opts, args.String(0), args.Error(1))
		return args.String(0), args.Error(1)
	}

	if err := ctx.Err(); err != nil {
		m.record(inputFilePath, opts, "", err)
		return "", err
	}

	name := filepath.Base(inputFilePath)
	m.mu.RLock()
	err, hasErr := m.ErrorMap[name]
	response, hasResponse := m.ResponseMap[name]
	m.mu.RUnlock()

	switch {
	case hasErr:
	case m.DefaultError != nil:
		err = m.DefaultError
	case hasResponse:
	case m.DefaultResponse != "":
		response = m.DefaultResponse
	default:
		response = fmt.Sprintf("Mock transcription of %s.", name)
	}
	if err != nil {
		response = ""
	}
	m.record(inputFilePath, opts, response, err)
	return response, err
}

func (m *MockTranscriber) record(path string, opts api.TranscriptOptions, response string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallHistory = append(m.CallHistory, TranscriptionCall{
		InputFilePath: path,
		Options:       opts,
		Timestamp:     time.Now(),
		Response:      response,
		Error:         err,
	})
}

// SetResponseForFile sets the response for a segment base name
func (m *MockTranscriber) SetResponseForFile(name string, response string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseMap[name] = response
	return m
}

// SetErrorForFile sets the error for a segment base name
func (m *MockTranscriber) SetErrorForFile(name string, err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorMap[name] = err
	return m
}

// SimulateNetworkError fails the segment with a provider failure.
func (m *MockTranscriber) SimulateNetworkError(name string) *MockTranscriber {
	return m.SetErrorForFile(name, api.ProviderError(m.ModelName, fmt.Errorf("network error: connection timeout")))
}

func (m *MockTranscriber) GetCallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.CallHistory)
}

// GetCallHistory returns a copy of the call history
func (m *MockTranscriber) GetCallHistory() []TranscriptionCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := make([]TranscriptionCall, len(m.CallHistory))
	copy(history, m.CallHistory)
	return history
}

// CalledFiles returns the base names of transcribed segments in call order.
func (m *MockTranscriber) CalledFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.CallHistory))
	for _, call := range m.CallHistory {
		names = append(names, filepath.Base(call.InputFilePath))
	}
	return names
}

// WasCalledWith checks if the transcriber was called with a segment base name
func (m *MockTranscriber) WasCalledWith(name string) bool {
	for _, called := range m.CalledFiles() {
		if called == name {
			return true
		}
	}
	return false
}

// ClearHistory clears call history but keeps configuration
func (m *MockTranscriber) ClearHistory() *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallHistory = nil
	return m
}
