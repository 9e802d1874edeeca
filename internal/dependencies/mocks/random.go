package mocks

import (
	"sync"

	"github.com/mcoot/seabattle/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
// Queued values are consumed in order; an empty queue yields zero values
type MockRandom struct {
	mu sync.Mutex

	intnResults  []int
	tokenResults []string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result modulo n, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intnResults) == 0 || n <= 0 {
		return 0
	}
	result := r.intnResults[0]
	r.intnResults = r.intnResults[1:]
	return result % n
}

// Token returns the next queued token, or a fixed token of the requested length
func (r *MockRandom) Token(length int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokenResults) == 0 {
		b := make([]byte, length)
		for i := range b {
			b[i] = '0'
		}
		return string(b)
	}
	result := r.tokenResults[0]
	r.tokenResults = r.tokenResults[1:]
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokenResults = append(r.tokenResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.tokenResults = nil
}
