package mocks

import "sync"

// MockMessageQueue is an in-memory MessageQueue that records published
// messages and dispatches them synchronously to local subscribers.
type MockMessageQueue struct {
	mu        sync.Mutex
	published map[string][][]byte
	handlers  map[string][]func(data []byte) error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		published: make(map[string][][]byte),
		handlers:  make(map[string][]func(data []byte) error),
	}
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	m.mu.Lock()
	m.published[subject] = append(m.published[subject], data)
	handlers := append([]func(data []byte) error(nil), m.handlers[subject]...)
	m.mu.Unlock()

	for _, h := range handlers {
		_ = h(data)
	}
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func(data []byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[subject] = append(m.handlers[subject], handler)
	return nil
}

func (m *MockMessageQueue) Close() error {
	return nil
}

// GetPublishedMessages returns everything published to a subject.
func (m *MockMessageQueue) GetPublishedMessages(subject string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.published[subject]...)
}
