package memory

import (
	"fmt"
	"testing"

	"github.com/webpilot/webpilot/pkg/types"
)

func turnContents(turns []types.Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Content
	}
	return out
}

func TestAppendPreservesOrder(t *testing.T) {
	mem := NewConversationMemory(10)
	mem.Append(types.NewUserTurn("u1"), types.NewAssistantTurn("a1"))
	mem.Append(types.NewUserTurn("u2"))

	got := turnContents(mem.All())
	want := []string{"u1", "a1", "u2"}
	if len(got) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turn %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFIFOEviction(t *testing.T) {
	// Capacity 3, jobs append 2 turns each. After job 1 the store holds
	// [u1,a1]; job 2's u2 still fits, then a2 evicts the oldest turn.
	mem := NewConversationMemory(3)

	mem.Append(types.NewUserTurn("u1"), types.NewAssistantTurn("a1"))
	got := turnContents(mem.All())
	if len(got) != 2 || got[0] != "u1" || got[1] != "a1" {
		t.Fatalf("after job 1: expected [u1 a1], got %v", got)
	}

	mem.Append(types.NewUserTurn("u2"), types.NewAssistantTurn("a2"))
	got = turnContents(mem.All())
	want := []string{"a1", "u2", "a2"}
	if len(got) != 3 {
		t.Fatalf("after job 2: expected 3 turns, got %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("after job 2, turn %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCountNeverExceedsCapacity(t *testing.T) {
	mem := NewConversationMemory(5)
	for i := 0; i < 50; i++ {
		mem.Append(types.NewUserTurn(fmt.Sprintf("turn-%d", i)))
		if mem.Count() > mem.Capacity() {
			t.Fatalf("count %d exceeds capacity %d", mem.Count(), mem.Capacity())
		}
	}

	// The survivors must be the contiguous tail of the full history.
	got := turnContents(mem.All())
	for i, content := range got {
		want := fmt.Sprintf("turn-%d", 45+i)
		if content != want {
			t.Errorf("turn %d: expected %q, got %q", i, want, content)
		}
	}
}

func TestAppendLargerThanCapacity(t *testing.T) {
	mem := NewConversationMemory(2)
	mem.Append(
		types.NewUserTurn("u1"),
		types.NewAssistantTurn("a1"),
		types.NewUserTurn("u2"),
	)

	got := turnContents(mem.All())
	if len(got) != 2 || got[0] != "a1" || got[1] != "u2" {
		t.Errorf("expected [a1 u2], got %v", got)
	}
}

func TestClear(t *testing.T) {
	mem := NewConversationMemory(10)
	mem.Append(types.NewUserTurn("u1"))
	mem.Clear()

	if mem.Count() != 0 {
		t.Errorf("expected empty store after clear, got %d turns", mem.Count())
	}

	// Store remains usable after clearing.
	mem.Append(types.NewUserTurn("u2"))
	if mem.Count() != 1 {
		t.Errorf("expected 1 turn after re-append, got %d", mem.Count())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	mem := NewConversationMemory(10)
	mem.Append(types.NewUserTurn("original"))

	view := mem.All()
	view[0].Content = "mutated"

	if got := mem.All()[0].Content; got != "original" {
		t.Errorf("caller mutation leaked into store: %q", got)
	}
}

func TestZeroCapacityFallsBackToDefault(t *testing.T) {
	mem := NewConversationMemory(0)
	if mem.Capacity() != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, mem.Capacity())
	}
}
