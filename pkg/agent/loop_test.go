package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webpilot/webpilot/pkg/agent/memory"
	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/llm"
	"github.com/webpilot/webpilot/pkg/types"
)

// scriptedPlanner implements llm.Provider with a fixed list of responses,
// tracking every call for verification. When the script runs out it keeps
// returning the last response (or the fallback).
type scriptedPlanner struct {
	mu        sync.Mutex
	responses []*llm.Completion
	err       error
	calls     int
	seenTurns [][]types.Turn
}

func (s *scriptedPlanner) Complete(_ context.Context, _ string, turns []types.Turn, _ []tools.Definition) (*llm.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]types.Turn, len(turns))
	copy(snapshot, turns)
	s.seenTurns = append(s.seenTurns, snapshot)

	idx := s.calls
	s.calls++

	if s.err != nil {
		return nil, s.err
	}
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func (s *scriptedPlanner) GetModel() string   { return "scripted" }
func (s *scriptedPlanner) GetBaseURL() string { return "" }

func (s *scriptedPlanner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func finalAnswer(text string) *llm.Completion {
	return &llm.Completion{Text: text}
}

func toolRequest(text string, calls ...types.ToolCall) *llm.Completion {
	return &llm.Completion{Text: text, ToolCalls: calls}
}

// countingTool records invocations and returns a canned result or error.
type countingTool struct {
	name    string
	result  string
	err     error
	mu      sync.Mutex
	invoked int
}

func (c *countingTool) Name() string        { return c.name }
func (c *countingTool) Description() string { return "counting tool for tests" }
func (c *countingTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

func (c *countingTool) Execute(context.Context, json.RawMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invoked++
	return c.result, c.err
}

func (c *countingTool) invocations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invoked
}

func newTestRegistry(t *testing.T, ts ...tools.Tool) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	for _, tool := range ts {
		require.NoError(t, reg.Register(tool))
	}
	return reg
}

func TestLoopFinalAnswerFirstStep(t *testing.T) {
	planner := &scriptedPlanner{responses: []*llm.Completion{finalAnswer("done")}}
	loop := NewStepLoop(planner, newTestRegistry(t))

	out, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("hi")})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, types.RoleAssistant, out[1].Role)
	assert.Equal(t, "done", out[1].Content)
	assert.Equal(t, 1, planner.callCount())
}

func TestLoopToolRoundTrip(t *testing.T) {
	tool := &countingTool{name: "lookup", result: "page content"}
	planner := &scriptedPlanner{responses: []*llm.Completion{
		toolRequest("", types.ToolCall{ID: "c1", Name: "lookup", Arguments: json.RawMessage(`{}`)}),
		finalAnswer("answer from page"),
	}}
	loop := NewStepLoop(planner, newTestRegistry(t, tool))

	out, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("look it up")})
	require.NoError(t, err)

	// user, assistant(tool request), tool observation, final assistant
	require.Len(t, out, 4)
	assert.True(t, out[1].IsToolRequest())
	assert.Equal(t, types.RoleTool, out[2].Role)
	assert.Equal(t, "page content", out[2].Content)
	assert.Equal(t, "c1", out[2].ToolCallID)
	assert.Equal(t, "answer from page", out[3].Content)
	assert.Equal(t, 1, tool.invocations())

	// The second planner call must have seen the observation.
	require.Equal(t, 2, planner.callCount())
	secondInput := planner.seenTurns[1]
	assert.Equal(t, types.RoleTool, secondInput[len(secondInput)-1].Role)
}

func TestLoopStepLimitTerminates(t *testing.T) {
	// A planner that never emits a final answer must terminate in exactly
	// stepLimit cycles with a usable last message.
	tool := &countingTool{name: "spin", result: "still spinning"}
	planner := &scriptedPlanner{responses: []*llm.Completion{
		toolRequest("working on it", types.ToolCall{ID: "x", Name: "spin", Arguments: json.RawMessage(`{}`)}),
	}}
	loop := NewStepLoop(planner, newTestRegistry(t, tool), WithStepLimit(5))

	out, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("go")})
	require.NoError(t, err)
	assert.Equal(t, 5, planner.callCount())

	last := out[len(out)-1]
	assert.Equal(t, types.RoleAssistant, last.Role)
	assert.Equal(t, "working on it", last.Content, "best available assistant text is returned")
	assert.Empty(t, last.ToolCalls)
}

func TestLoopStepLimitWithNoAssistantText(t *testing.T) {
	planner := &scriptedPlanner{responses: []*llm.Completion{
		toolRequest("", types.ToolCall{ID: "x", Name: "spin", Arguments: json.RawMessage(`{}`)}),
	}}
	tool := &countingTool{name: "spin", result: "nothing"}
	loop := NewStepLoop(planner, newTestRegistry(t, tool), WithStepLimit(2))

	out, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("go")})
	require.NoError(t, err)

	last := out[len(out)-1]
	assert.Equal(t, types.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "unable to finish")
}

func TestLoopBatchedCallsCountOneStep(t *testing.T) {
	a := &countingTool{name: "first", result: "one"}
	b := &countingTool{name: "second", result: "two"}
	planner := &scriptedPlanner{responses: []*llm.Completion{
		toolRequest("",
			types.ToolCall{ID: "c1", Name: "first", Arguments: json.RawMessage(`{}`)},
			types.ToolCall{ID: "c2", Name: "second", Arguments: json.RawMessage(`{}`)},
		),
		finalAnswer("combined"),
	}}
	loop := NewStepLoop(planner, newTestRegistry(t, a, b), WithStepLimit(2))

	out, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("go")})
	require.NoError(t, err)

	// Both tools ran inside a single step, leaving room for the final answer.
	assert.Equal(t, 1, a.invocations())
	assert.Equal(t, 1, b.invocations())
	assert.Equal(t, "combined", out[len(out)-1].Content)
	assert.Equal(t, 2, planner.callCount())
}

func TestLoopToolErrorContainment(t *testing.T) {
	broken := &countingTool{name: "broken", err: fmt.Errorf("navigation timeout")}
	planner := &scriptedPlanner{responses: []*llm.Completion{
		toolRequest("", types.ToolCall{ID: "c1", Name: "broken", Arguments: json.RawMessage(`{}`)}),
		finalAnswer("recovered"),
	}}
	loop := NewStepLoop(planner, newTestRegistry(t, broken))

	out, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("go")})
	require.NoError(t, err, "tool failure must not abort the job")

	observation := out[2]
	assert.Equal(t, types.RoleTool, observation.Role)
	assert.Contains(t, observation.Content, "navigation timeout")
	assert.Equal(t, "recovered", out[len(out)-1].Content)
}

func TestLoopUnknownToolContinues(t *testing.T) {
	planner := &scriptedPlanner{responses: []*llm.Completion{
		toolRequest("", types.ToolCall{ID: "c1", Name: "no_such_tool", Arguments: json.RawMessage(`{}`)}),
		finalAnswer("gave up on that tool"),
	}}
	loop := NewStepLoop(planner, newTestRegistry(t))

	out, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("go")})
	require.NoError(t, err)
	assert.Contains(t, out[2].Content, "unknown tool")
	assert.Equal(t, "gave up on that tool", out[len(out)-1].Content)
}

func TestLoopPlannerErrorAborts(t *testing.T) {
	planner := &scriptedPlanner{err: fmt.Errorf("connection refused")}
	loop := NewStepLoop(planner, newTestRegistry(t))

	_, err := loop.Run(context.Background(), []types.Turn{types.NewUserTurn("go")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRunnerPersistsDelta(t *testing.T) {
	mem := memory.NewConversationMemory(50)
	mem.Append(types.NewUserTurn("old question"), types.NewAssistantTurn("old answer"))

	planner := &scriptedPlanner{responses: []*llm.Completion{finalAnswer("new answer")}}
	runner := NewRunner(NewStepLoop(planner, newTestRegistry(t)), mem)

	answer, err := runner.Run(context.Background(), "new question")
	require.NoError(t, err)
	assert.Equal(t, "new answer", answer)

	turns := mem.All()
	require.Len(t, turns, 4)
	assert.Equal(t, "old question", turns[0].Content)
	assert.Equal(t, "old answer", turns[1].Content)
	assert.Equal(t, "new question", turns[2].Content)
	assert.Equal(t, "new answer", turns[3].Content)
}

func TestRunnerSecondJobSeesFirstJobsTurns(t *testing.T) {
	mem := memory.NewConversationMemory(50)
	planner := &scriptedPlanner{responses: []*llm.Completion{finalAnswer("ok")}}
	runner := NewRunner(NewStepLoop(planner, newTestRegistry(t)), mem)

	_, err := runner.Run(context.Background(), "first")
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), "second")
	require.NoError(t, err)

	// The second planner call's input must start with the first job's
	// appended turns, in order, with no duplication.
	secondInput := planner.seenTurns[1]
	require.GreaterOrEqual(t, len(secondInput), 3)
	assert.Equal(t, "first", secondInput[0].Content)
	assert.Equal(t, "ok", secondInput[1].Content)
	assert.Equal(t, "second", secondInput[2].Content)
	assert.Len(t, mem.All(), 4)
}

func TestRunnerNoAppendOnJobError(t *testing.T) {
	mem := memory.NewConversationMemory(50)
	mem.Append(types.NewUserTurn("kept"))

	planner := &scriptedPlanner{err: fmt.Errorf("planner exploded")}
	runner := NewRunner(NewStepLoop(planner, newTestRegistry(t)), mem)

	_, err := runner.Run(context.Background(), "doomed")
	require.Error(t, err)

	turns := mem.All()
	require.Len(t, turns, 1, "failed job must not persist partial history")
	assert.Equal(t, "kept", turns[0].Content)
}

func TestLoopCanceledContext(t *testing.T) {
	planner := &scriptedPlanner{responses: []*llm.Completion{finalAnswer("never")}}
	loop := NewStepLoop(planner, newTestRegistry(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loop.Run(ctx, []types.Turn{types.NewUserTurn("go")})
	require.Error(t, err)
	assert.Equal(t, 0, planner.callCount())
}
