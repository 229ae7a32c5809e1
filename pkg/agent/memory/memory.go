// Package memory provides the bounded conversation store owned by a session.
//
// A ConversationMemory holds an ordered sequence of turns capped at a fixed
// capacity. Appending past capacity evicts the oldest turns first, so the
// stored sequence is always a contiguous suffix of the full history.
package memory

import (
	"sync"

	"github.com/webpilot/webpilot/pkg/types"
)

// DefaultCapacity is the turn limit used when none is configured.
const DefaultCapacity = 50

// ConversationMemory is a bounded FIFO log of conversation turns.
//
// A given instance is only ever mutated by its owning session's job runner,
// but reads can come from command handlers (/memory, /stats) on other
// goroutines, so access is guarded internally.
type ConversationMemory struct {
	mu       sync.RWMutex
	turns    []types.Turn
	capacity int
}

// NewConversationMemory creates a store bounded to the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewConversationMemory(capacity int) *ConversationMemory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ConversationMemory{
		turns:    make([]types.Turn, 0, capacity),
		capacity: capacity,
	}
}

// Append adds turns in order to the tail of the log, evicting the oldest
// turns when the capacity is exceeded. It always succeeds.
func (m *ConversationMemory) Append(turns ...types.Turn) {
	if len(turns) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turns...)
	if overflow := len(m.turns) - m.capacity; overflow > 0 {
		m.turns = append(m.turns[:0], m.turns[overflow:]...)
	}
}

// All returns a copy of the current ordered history.
func (m *ConversationMemory) All() []types.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Count returns the current number of stored turns.
func (m *ConversationMemory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Capacity returns the configured turn limit.
func (m *ConversationMemory) Capacity() int {
	return m.capacity
}

// Clear empties the store immediately.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = m.turns[:0]
}
