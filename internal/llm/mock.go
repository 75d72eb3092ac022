package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockEmbedder is a deterministic Embedder for testing. The same text
// always maps to the same vector, and distinct texts almost always map to
// distinct vectors, which is enough for index and retrieval tests.
type MockEmbedder struct {
	// Dims is the vector dimensionality. Defaults to 8 when zero.
	Dims int

	// Fail, when set, is returned by every Embed call.
	Fail error

	// Vectors overrides the derived vector for specific texts.
	Vectors map[string][]float32

	mu    sync.Mutex
	Calls []string
}

// Embed returns a deterministic vector derived from the text.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.Fail != nil {
		return nil, m.Fail
	}
	if v, ok := m.Vectors[text]; ok {
		return v, nil
	}

	dims := m.Dims
	if dims == 0 {
		dims = 8
	}
	vec := make([]float32, dims)
	h := fnv.New32a()
	for i := range vec {
		fmt.Fprintf(h, "%s|%d", text, i)
		vec[i] = float32(h.Sum32()%1000)/1000 + 0.001
	}
	return vec, nil
}

// ModelID returns "mock-embed".
func (m *MockEmbedder) ModelID() string { return "mock-embed" }

// CallCount returns the number of Embed calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
