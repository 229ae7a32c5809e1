// Package main provides the webpilot browsing agent binary. It runs either
// as an interactive terminal chat or, when a bot token is configured, as a
// Telegram bot. Both fronts share one browser and one planner.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/config"
	"github.com/webpilot/webpilot/pkg/executor/cli"
	"github.com/webpilot/webpilot/pkg/llm/openai"
	"github.com/webpilot/webpilot/pkg/llm/tokenizer"
	"github.com/webpilot/webpilot/pkg/logging"
	"github.com/webpilot/webpilot/pkg/session"
	"github.com/webpilot/webpilot/pkg/telegram"
	"github.com/webpilot/webpilot/pkg/tools/browser"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	model       string
	baseURL     string
	headed      bool
	telegram    bool
	showVersion bool
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:          "webpilot",
		Short:        "webpilot is a web-browsing chat agent",
		Long:         "webpilot answers questions by driving a real browser: it navigates, clicks, types, and reads pages on your behalf, through a terminal chat or a Telegram bot.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "webpilot v%s\n", version)
				return nil
			}
			return run(cmd.Context(), &f)
		},
	}

	rootCmd.Flags().StringVar(&f.model, "model", "", "chat model to use (overrides WEBPILOT_MODEL)")
	rootCmd.Flags().StringVar(&f.baseURL, "base-url", "", "OpenAI-compatible API base URL (overrides OPENAI_BASE_URL)")
	rootCmd.Flags().BoolVar(&f.headed, "headed", false, "show the browser window instead of running headless")
	rootCmd.Flags().BoolVar(&f.telegram, "telegram", false, "run as a Telegram bot (requires TELEGRAM_BOT_TOKEN)")
	rootCmd.Flags().BoolVar(&f.showVersion, "version", false, "print version and exit")
	return rootCmd
}

func run(ctx context.Context, f *flags) error {
	log, logErr := logging.NewLogger("main")
	if logErr != nil {
		log.Warnf("file logging unavailable: %v", logErr)
	}
	defer log.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.headed {
		cfg.Headless = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if f.telegram && !cfg.TelegramMode() {
		return fmt.Errorf("telegram mode requires TELEGRAM_BOT_TOKEN")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	providerOpts := []openai.ProviderOption{openai.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(cfg.BaseURL))
	}
	provider, err := openai.NewProvider(cfg.APIKey, providerOpts...)
	if err != nil {
		return err
	}

	guard, err := browser.NewHostGuard(cfg.AllowedHosts)
	if err != nil {
		return err
	}

	// The browser is the one shared resource behind every session. The
	// guard rides along so the allowlist also covers navigations that
	// clicks and scripts trigger on the live page.
	manager := browser.NewManager(
		browser.WithHeadless(cfg.Headless),
		browser.WithHostGuard(guard),
	)
	log.Infof("starting browser (headless=%v)", cfg.Headless)
	if err := manager.Start(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			log.Warnf("browser shutdown: %v", err)
		}
	}()

	registry := tools.NewRegistry()
	if err := browser.RegisterAll(registry, manager, guard); err != nil {
		return err
	}

	sessions := session.NewRegistry(session.Config{
		Provider:       provider,
		Tools:          registry,
		SystemPrompt:   composeSystemPrompt(),
		StepLimit:      cfg.StepLimit,
		MemoryCapacity: cfg.MemoryCapacity,
	})
	defer sessions.RemoveAll()

	tok, err := tokenizer.New()
	if err != nil {
		// Stats fall back to the rough estimate.
		log.Warnf("tokenizer unavailable: %v", err)
		tok = nil
	}

	log.Infof("ready: model=%s step_limit=%d memory=%d", cfg.Model, cfg.StepLimit, cfg.MemoryCapacity)

	if f.telegram || cfg.TelegramMode() {
		bot, err := telegram.NewBot(cfg.TelegramToken, sessions, tok)
		if err != nil {
			return err
		}
		err = bot.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	}

	executor := cli.NewExecutor(sessions.Resolve("local"), tok)
	err = executor.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
