// Package agent implements the bounded plan/act/observe cycle that drives
// one web task to completion, and the job runner that manages conversation
// history around it.
//
// The StepLoop alternates between asking the planner for a decision (Think),
// executing any requested tools through the registry (Act), and feeding the
// observations back (Observe). An integer step counter caps the number of
// planner round-trips: no job may loop forever, whatever the planner does.
package agent

import (
	"context"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/llm"
	"github.com/webpilot/webpilot/pkg/logging"
	"github.com/webpilot/webpilot/pkg/types"
)

// DefaultStepLimit caps the number of Think/Act/Observe cycles per job.
const DefaultStepLimit = 60

var loopLog *logging.Logger

func init() {
	var err error
	loopLog, err = logging.NewLogger("agent")
	if err != nil {
		loopLog.Warnf("failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// StepLoop is the bounded state machine driving one job. An instance is
// owned by exactly one session; the planner and tool registry it closes
// over are shared process-wide.
type StepLoop struct {
	provider     llm.Provider
	registry     *tools.Registry
	systemPrompt string
	stepLimit    int
}

// LoopOption configures a StepLoop.
type LoopOption func(*StepLoop)

// WithSystemPrompt sets the system prompt sent with every planner request.
func WithSystemPrompt(prompt string) LoopOption {
	return func(l *StepLoop) {
		l.systemPrompt = prompt
	}
}

// WithStepLimit overrides the maximum number of plan/act cycles per job.
func WithStepLimit(limit int) LoopOption {
	return func(l *StepLoop) {
		if limit > 0 {
			l.stepLimit = limit
		}
	}
}

// NewStepLoop creates a step loop bound to the given planner and registry.
func NewStepLoop(provider llm.Provider, registry *tools.Registry, opts ...LoopOption) *StepLoop {
	l := &StepLoop{
		provider:  provider,
		registry:  registry,
		stepLimit: DefaultStepLimit,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// StepLimit returns the configured cycle cap.
func (l *StepLoop) StepLimit() int {
	return l.stepLimit
}

// Run executes the loop for one job and returns the full resulting turn
// sequence: the input history plus every turn produced along the way.
//
// Each Think round counts as one step regardless of how many tool calls it
// batches. Tool failures become observation turns and the loop continues;
// only planner/transport failures abort the job, in which case the partial
// sequence is returned alongside the error and must not be persisted.
func (l *StepLoop) Run(ctx context.Context, history []types.Turn) ([]types.Turn, error) {
	turns := make([]types.Turn, len(history), len(history)+8)
	copy(turns, history)

	for step := 0; step < l.stepLimit; step++ {
		if err := ctx.Err(); err != nil {
			return turns, fmt.Errorf("job canceled at step %d: %w", step, err)
		}

		completion, err := l.provider.Complete(ctx, l.systemPrompt, turns, l.registry.Definitions())
		if err != nil {
			return turns, fmt.Errorf("planner request failed at step %d: %w", step, err)
		}

		// Done: a final answer with no further tool requests.
		if !completion.HasToolCalls() {
			turns = append(turns, types.NewAssistantTurn(completion.Text))
			loopLog.Debugf("job finished after %d step(s)", step+1)
			return turns, nil
		}

		turns = append(turns, types.NewAssistantToolTurn(completion.Text, completion.ToolCalls))

		// Act/Observe: every requested call in this round executes, and
		// every result (success or error string) becomes an observation.
		for _, call := range completion.ToolCalls {
			observation := l.registry.Invoke(ctx, call)
			loopLog.Debugf("step %d: tool %s -> %d chars", step, call.Name, len(observation))
			turns = append(turns, types.NewToolTurn(call.ID, call.Name, observation))
		}
	}

	// Step limit reached without a final answer. Terminate with the best
	// available message rather than hanging or erroring.
	loopLog.Warnf("step limit %d reached without a final answer", l.stepLimit)
	text := lastAssistantText(turns)
	if text == "" {
		text = fmt.Sprintf("I was unable to finish this task within %d steps. Try narrowing the request or breaking it into smaller pieces.", l.stepLimit)
	}
	turns = append(turns, types.NewAssistantTurn(text))
	return turns, nil
}

// lastAssistantText returns the most recent non-empty assistant content.
func lastAssistantText(turns []types.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == types.RoleAssistant && turns[i].Content != "" {
			return turns[i].Content
		}
	}
	return ""
}
