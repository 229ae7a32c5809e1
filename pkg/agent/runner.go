package agent

import (
	"context"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/memory"
	"github.com/webpilot/webpilot/pkg/types"
)

// Runner orchestrates one user request end-to-end: it merges the new user
// turn with stored history, runs the step loop, and persists only the turns
// the job produced.
type Runner struct {
	loop *StepLoop
	mem  *memory.ConversationMemory
}

// NewRunner creates a job runner bound to a session's loop and memory.
func NewRunner(loop *StepLoop, mem *memory.ConversationMemory) *Runner {
	return &Runner{loop: loop, mem: mem}
}

// Memory returns the conversation store this runner persists into.
func (r *Runner) Memory() *memory.ConversationMemory {
	return r.mem
}

// Loop returns the step loop this runner drives.
func (r *Runner) Loop() *StepLoop {
	return r.loop
}

// Run processes one user message and returns the final answer text.
//
// On success exactly one append happens: the suffix of turns produced by
// this job, in order. On a job-level error nothing is appended, so a failed
// job leaves the session's history exactly as it found it.
func (r *Runner) Run(ctx context.Context, userText string) (string, error) {
	history := r.mem.All()
	n := len(history)

	input := append(history, types.NewUserTurn(userText))

	result, err := r.loop.Run(ctx, input)
	if err != nil {
		return "", fmt.Errorf("job failed: %w", err)
	}

	if n <= len(result) {
		r.mem.Append(result[n:]...)
	}

	if len(result) == 0 {
		return "", nil
	}
	return result[len(result)-1].Content, nil
}
