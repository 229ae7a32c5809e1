// Package session maps external identities (the CLI's implicit user, a
// Telegram chat) to isolated conversation sessions.
//
// Each session owns its own bounded memory and step loop instance; the
// planner and tool registry behind them are shared process-wide. Sessions
// are created lazily on first message and live for the process lifetime.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/webpilot/webpilot/pkg/agent"
	"github.com/webpilot/webpilot/pkg/agent/memory"
	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/llm"
)

// Session is one isolated conversation: an identity, its private memory,
// and its private job runner.
type Session struct {
	// ID is the external identity key for this session
	ID string

	// Memory is the session's bounded conversation store
	Memory *memory.ConversationMemory

	// Runner drives jobs for this session
	Runner *agent.Runner

	busy atomic.Bool
}

// TryBegin marks the session busy for a new job. It returns false if a job
// is already in flight; two jobs must never interleave on one session
// because both would race on the memory's history/delta bookkeeping.
func (s *Session) TryBegin() bool {
	return s.busy.CompareAndSwap(false, true)
}

// End marks the session idle again. Must be called exactly once for every
// successful TryBegin.
func (s *Session) End() {
	s.busy.Store(false)
}

// Busy reports whether a job is currently in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Config carries the shared collaborators and limits used to build new
// sessions.
type Config struct {
	// Provider is the shared planner
	Provider llm.Provider

	// Tools is the shared tool registry
	Tools *tools.Registry

	// SystemPrompt is sent with every planner request
	SystemPrompt string

	// StepLimit caps plan/act cycles per job (0 means the default)
	StepLimit int

	// MemoryCapacity bounds each session's turn store (0 means the default)
	MemoryCapacity int
}

// Registry resolves identities to sessions, creating them lazily.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
}

// NewRegistry creates a session registry with the given shared configuration.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Resolve returns the session for the given identity, creating it if
// absent. Concurrent calls with the same identity return the same session;
// concurrent calls with different identities return distinct ones.
func (r *Registry) Resolve(identity string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, exists := r.sessions[identity]; exists {
		return sess
	}

	mem := memory.NewConversationMemory(r.cfg.MemoryCapacity)
	loop := agent.NewStepLoop(
		r.cfg.Provider,
		r.cfg.Tools,
		agent.WithSystemPrompt(r.cfg.SystemPrompt),
		agent.WithStepLimit(r.cfg.StepLimit),
	)

	sess := &Session{
		ID:     identity,
		Memory: mem,
		Runner: agent.NewRunner(loop, mem),
	}
	r.sessions[identity] = sess
	return sess
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// RemoveAll drops every session. Used only at process teardown; in-flight
// jobs are not waited for.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*Session)
}
