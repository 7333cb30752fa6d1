// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/froydnj/contentdir/internal/models"
)

// MockBackend is a test double for [models.Backend]. Responses are keyed by
// command name; every request is recorded for assertion.
type MockBackend struct {
	mu       sync.Mutex
	Results  map[string]*models.QueryResult
	Err      error
	Requests []models.QueryRequest
}

func NewMockBackend() *MockBackend {
	return &MockBackend{Results: map[string]*models.QueryResult{}}
}

func (m *MockBackend) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if res, ok := m.Results[req.Command]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("no mock result for command %q", req.Command)
}

// LastRequest returns the most recent recorded request.
func (m *MockBackend) LastRequest(t *testing.T) models.QueryRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		t.Fatal("no backend requests recorded")
	}
	return m.Requests[len(m.Requests)-1]
}

// RequestFor returns the first recorded request naming the command.
func (m *MockBackend) RequestFor(t *testing.T, command string) models.QueryRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.Requests {
		if req.Command == command {
			return req
		}
	}
	t.Fatalf("no backend request for command %q", command)
	return models.QueryRequest{}
}

// MockBroadcaster records notifications for assertion in eventing tests.
type MockBroadcaster struct {
	mu   sync.Mutex
	All  []uint32
	One  map[string][]uint32
	done chan struct{}
}

// NewMockBroadcaster creates a recorder. The done channel receives one value
// per NotifyAll, letting tests wait for a rate-limited broadcast.
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{One: map[string][]uint32{}, done: make(chan struct{}, 16)}
}

func (m *MockBroadcaster) NotifyAll(revision uint32) {
	m.mu.Lock()
	m.All = append(m.All, revision)
	m.mu.Unlock()
	m.done <- struct{}{}
}

func (m *MockBroadcaster) NotifyOne(sid string, revision uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.One[sid] = append(m.One[sid], revision)
}

// Broadcasts returns the recorded NotifyAll revisions.
func (m *MockBroadcaster) Broadcasts() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint32, len(m.All))
	copy(out, m.All)
	return out
}

// Done exposes the broadcast signal channel.
func (m *MockBroadcaster) Done() <-chan struct{} {
	return m.done
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
