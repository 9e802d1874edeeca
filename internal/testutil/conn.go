package testutil

import (
	"encoding/json"
	"sync"
)

// FakeConn records outbound messages in memory
type FakeConn struct {
	id string

	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

// NewFakeConn creates a FakeConn with the given ID
func NewFakeConn(id string) *FakeConn {
	return &FakeConn{id: id}
}

// ID returns the connection ID
func (c *FakeConn) ID() string {
	return c.id
}

// Send records the message unless the connection is closed
func (c *FakeConn) Send(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.messages = append(c.messages, append([]byte(nil), msg...))
	return true
}

// Close makes further sends fail
func (c *FakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Messages returns every message sent so far
func (c *FakeConn) Messages() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

// Types returns the "type" field of every message sent so far
func (c *FakeConn) Types() []string {
	var types []string
	for _, msg := range c.Messages() {
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(msg, &env)
		types = append(types, env.Type)
	}
	return types
}

// Reset forgets recorded messages
func (c *FakeConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
