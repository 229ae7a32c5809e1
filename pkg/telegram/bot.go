// Package telegram runs the agent as a long-polling Telegram bot. Each chat
// gets its own conversation session; jobs run in goroutines so one slow
// chat never blocks the update loop.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/webpilot/webpilot/pkg/llm/tokenizer"
	"github.com/webpilot/webpilot/pkg/logging"
	"github.com/webpilot/webpilot/pkg/session"
)

// pollTimeout is the long-poll duration in seconds for GetUpdates.
const pollTimeout = 30

var log *logging.Logger

func init() {
	var err error
	log, err = logging.NewLogger("telegram")
	if err != nil {
		log.Warnf("failed to initialize telegram logger, using stderr fallback: %v", err)
	}
}

// botAPI is the surface of tgbotapi.BotAPI the bot uses, split out so tests
// can run without the network.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// Bot bridges Telegram chats to conversation sessions.
type Bot struct {
	api       botAPI
	sessions  *session.Registry
	tokenizer *tokenizer.Tokenizer
}

// NewBot connects to the Telegram API with the given token.
func NewBot(token string, sessions *session.Registry, tok *tokenizer.Tokenizer) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	log.Infof("authorized as @%s", api.Self.UserName)
	return &Bot{
		api:       api,
		sessions:  sessions,
		tokenizer: tok,
	}, nil
}

// newBotWithAPI is the test constructor.
func newBotWithAPI(api botAPI, sessions *session.Registry, tok *tokenizer.Tokenizer) *Bot {
	return &Bot{
		api:       api,
		sessions:  sessions,
		tokenizer: tok,
	}
}

// Run polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage routes one incoming message to its chat's session.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	identity := strconv.FormatInt(msg.Chat.ID, 10)
	sess := b.sessions.Resolve(identity)

	if msg.IsCommand() {
		b.handleCommand(sess, msg)
		return
	}

	if !sess.TryBegin() {
		b.reply(msg.Chat.ID, "Still working on your previous message, give me a moment.")
		return
	}

	// Run the job off the update loop so other chats keep flowing.
	go func() {
		defer sess.End()

		answer, err := sess.Runner.Run(ctx, msg.Text)
		if err != nil {
			log.Errorf("job failed for chat %s: %v", identity, err)
			b.reply(msg.Chat.ID, fmt.Sprintf("Sorry, that didn't work: %v", err))
			return
		}
		b.reply(msg.Chat.ID, answer)
	}()
}

// handleCommand executes a slash command synchronously.
func (b *Bot) handleCommand(sess *session.Session, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, "Hi! Send me a task and I'll browse the web to get it done. Use /help to see commands.")
	case "help":
		b.reply(msg.Chat.ID, strings.Join([]string{
			"Send any message to give me a task.",
			"",
			"/clear or /reset - forget our conversation",
			"/memory or /stats - show memory usage",
			"/help - this message",
		}, "\n"))
	case "clear", "reset":
		sess.Memory.Clear()
		b.reply(msg.Chat.ID, "Conversation memory cleared.")
	case "memory", "stats":
		turns := sess.Memory.All()
		tokens := b.tokenizer.CountTurnsTokens(turns)
		b.reply(msg.Chat.ID, fmt.Sprintf("Memory: %d/%d turns, ~%d tokens", len(turns), sess.Memory.Capacity(), tokens))
	default:
		b.reply(msg.Chat.ID, fmt.Sprintf("Unknown command /%s. Use /help for the list.", msg.Command()))
	}
}

// reply sends text to a chat, splitting it into ordered chunks under the
// Telegram message size limit. Send failures are logged, never fatal.
func (b *Bot) reply(chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		text = "(no answer)"
	}
	for _, chunk := range chunkMessage(text, maxMessageRunes) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			log.Errorf("failed to send message to chat %d: %v", chatID, err)
			return
		}
	}
}
