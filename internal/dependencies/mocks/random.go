package mocks

import (
	"github.com/duelcast/duelcast/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// CodeResults is a queue of results to return from Code
	CodeResults []string
	codeIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// Code returns the next queued result, or empty string if none remaining
func (r *MockRandom) Code(length int, alphabet string) string {
	if r.codeIndex >= len(r.CodeResults) {
		return ""
	}
	result := r.CodeResults[r.codeIndex]
	r.codeIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueCode adds values to the Code result queue
func (r *MockRandom) QueueCode(values ...string) {
	r.CodeResults = append(r.CodeResults, values...)
}
