// Package cli provides the interactive terminal front end. It drives a
// single conversation session turn by turn, with slash commands for memory
// inspection and housekeeping.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/webpilot/webpilot/pkg/llm/tokenizer"
	"github.com/webpilot/webpilot/pkg/session"
)

// Executor runs the terminal conversation loop against one session.
type Executor struct {
	session   *session.Session
	tokenizer *tokenizer.Tokenizer
	reader    *bufio.Reader
	writer    io.Writer

	promptStyle lipgloss.Style
	answerStyle lipgloss.Style
	noticeStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// NewExecutor creates a CLI executor for the given session.
func NewExecutor(sess *session.Session, tok *tokenizer.Tokenizer, opts ...ExecutorOption) *Executor {
	e := &Executor{
		session:   sess,
		tokenizer: tok,
		reader:    bufio.NewReader(os.Stdin),
		writer:    os.Stdout,

		promptStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		answerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		noticeStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// readResult carries one line from the input goroutine to the loop.
type readResult struct {
	line string
	err  error
}

// Run starts the conversation loop. Returns when the user exits, input
// reaches EOF, or the context is canceled. Input is read on a separate
// goroutine so cancellation interrupts the loop even while it waits for
// the next line.
func (e *Executor) Run(ctx context.Context) error {
	fmt.Fprintln(e.writer, e.promptStyle.Render("webpilot"))
	fmt.Fprintln(e.writer, e.noticeStyle.Render("Ask me to look something up on the web. Type /help for commands, 'exit' to leave."))
	fmt.Fprintln(e.writer)

	lines := make(chan readResult)
	go func() {
		for {
			line, err := e.reader.ReadString('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(e.writer, e.promptStyle.Render("> "))

		var res readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res = <-lines:
		}
		if res.err != nil {
			if res.err == io.EOF {
				fmt.Fprintln(e.writer)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", res.err)
		}

		input := strings.TrimSpace(res.line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}
		if strings.HasPrefix(input, "/") {
			if e.handleCommand(input) {
				continue
			}
			fmt.Fprintln(e.writer, e.errorStyle.Render(fmt.Sprintf("Unknown command %s. Type /help for the list.", input)))
			continue
		}

		e.runJob(ctx, input)
	}
}

// runJob executes one conversation job and prints the answer.
func (e *Executor) runJob(ctx context.Context, input string) {
	answer, err := e.session.Runner.Run(ctx, input)
	if err != nil {
		fmt.Fprintln(e.writer, e.errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return
	}
	fmt.Fprintln(e.writer, e.answerStyle.Render(answer))
	fmt.Fprintln(e.writer)
}

// handleCommand dispatches a slash command. Returns false when the command
// is unknown.
func (e *Executor) handleCommand(input string) bool {
	switch input {
	case "/help":
		e.printHelp()
	case "/clear", "/reset":
		e.session.Memory.Clear()
		fmt.Fprintln(e.writer, e.noticeStyle.Render("Conversation memory cleared."))
	case "/memory", "/stats":
		e.printStats()
	default:
		return false
	}
	return true
}

func (e *Executor) printHelp() {
	help := strings.Join([]string{
		"Commands:",
		"  /clear, /reset   clear the conversation memory",
		"  /memory, /stats  show memory usage and token estimate",
		"  /help            show this help",
		"  exit, quit       leave",
	}, "\n")
	fmt.Fprintln(e.writer, e.noticeStyle.Render(help))
}

func (e *Executor) printStats() {
	turns := e.session.Memory.All()
	tokens := e.tokenizer.CountTurnsTokens(turns)
	stats := fmt.Sprintf("Memory: %d/%d turns, ~%d tokens", len(turns), e.session.Memory.Capacity(), tokens)
	fmt.Fprintln(e.writer, e.noticeStyle.Render(stats))
}
