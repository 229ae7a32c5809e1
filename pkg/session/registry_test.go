package session

import (
	"context"
	"sync"
	"testing"

	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/llm"
	"github.com/webpilot/webpilot/pkg/types"
)

// stubPlanner always returns a fixed final answer.
type stubPlanner struct{}

func (stubPlanner) Complete(context.Context, string, []types.Turn, []tools.Definition) (*llm.Completion, error) {
	return &llm.Completion{Text: "ok"}, nil
}
func (stubPlanner) GetModel() string   { return "stub" }
func (stubPlanner) GetBaseURL() string { return "" }

func newTestRegistry() *Registry {
	return NewRegistry(Config{
		Provider:       stubPlanner{},
		Tools:          tools.NewRegistry(),
		MemoryCapacity: 10,
		StepLimit:      5,
	})
}

func TestResolveCreatesLazily(t *testing.T) {
	reg := newTestRegistry()
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d sessions", reg.Count())
	}

	sess := reg.Resolve("user-1")
	if sess == nil {
		t.Fatal("expected session")
	}
	if reg.Count() != 1 {
		t.Errorf("expected 1 session, got %d", reg.Count())
	}
	if sess.ID != "user-1" {
		t.Errorf("expected identity 'user-1', got %q", sess.ID)
	}
}

func TestResolveSameIdentityReturnsSameSession(t *testing.T) {
	reg := newTestRegistry()
	a := reg.Resolve("user-1")
	b := reg.Resolve("user-1")
	if a != b {
		t.Error("expected repeated resolve to return the same session")
	}
}

func TestSessionIsolation(t *testing.T) {
	reg := newTestRegistry()
	a := reg.Resolve("alice")
	b := reg.Resolve("bob")

	if a == b {
		t.Fatal("distinct identities must get distinct sessions")
	}
	if a.Memory == b.Memory {
		t.Fatal("distinct identities must get distinct memory stores")
	}

	a.Memory.Append(types.NewUserTurn("alice secret"))
	if b.Memory.Count() != 0 {
		t.Error("alice's turns leaked into bob's memory")
	}
}

func TestConcurrentResolveSingleCreation(t *testing.T) {
	reg := newTestRegistry()

	const goroutines = 32
	results := make([]*Session, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Resolve("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent resolve created more than one session for the same identity")
		}
	}
	if reg.Count() != 1 {
		t.Errorf("expected 1 session, got %d", reg.Count())
	}
}

func TestSingleFlight(t *testing.T) {
	reg := newTestRegistry()
	sess := reg.Resolve("user-1")

	if !sess.TryBegin() {
		t.Fatal("first TryBegin should succeed")
	}
	if sess.TryBegin() {
		t.Error("second TryBegin while busy should fail")
	}
	if !sess.Busy() {
		t.Error("session should report busy")
	}

	sess.End()
	if !sess.TryBegin() {
		t.Error("TryBegin after End should succeed")
	}
}

func TestSessionRunsJobs(t *testing.T) {
	reg := newTestRegistry()
	sess := reg.Resolve("user-1")

	answer, err := sess.Runner.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "ok" {
		t.Errorf("expected 'ok', got %q", answer)
	}
	if sess.Memory.Count() != 2 {
		t.Errorf("expected 2 turns persisted, got %d", sess.Memory.Count())
	}
}

func TestRemoveAll(t *testing.T) {
	reg := newTestRegistry()
	reg.Resolve("a")
	reg.Resolve("b")
	reg.RemoveAll()

	if reg.Count() != 0 {
		t.Errorf("expected empty registry, got %d", reg.Count())
	}
}
