// Package config loads runtime configuration from the environment and the
// optional ~/.webpilot/config.yaml file. Environment variables win over the
// file, and the file wins over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the environment nor the config file sets a
// value.
const (
	DefaultModel          = "gpt-4o"
	DefaultStepLimit      = 60
	DefaultMemoryCapacity = 50
)

// Config holds everything the binary needs to run.
type Config struct {
	// APIKey authenticates against the OpenAI-compatible API. Required.
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for proxies or compatible
	// providers. Empty means the provider default.
	BaseURL string

	// Model is the chat model used by the planner.
	Model string

	// TelegramToken switches the binary into Telegram bot mode when set.
	TelegramToken string

	// Headless controls whether the browser runs without a window.
	Headless bool

	// StepLimit bounds the number of planner rounds per job.
	StepLimit int

	// MemoryCapacity bounds the conversation turns kept per session.
	MemoryCapacity int

	// AllowedHosts restricts navigation to matching host globs. Empty
	// allows every host.
	AllowedHosts []string
}

// fileConfig mirrors the YAML shape of ~/.webpilot/config.yaml.
type fileConfig struct {
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	Model          string   `yaml:"model"`
	TelegramToken  string   `yaml:"telegram_token"`
	Headless       *bool    `yaml:"headless"`
	StepLimit      int      `yaml:"step_limit"`
	MemoryCapacity int      `yaml:"memory_capacity"`
	AllowedHosts   []string `yaml:"allowed_hosts"`
}

// Load reads configuration from the default file location and the
// environment.
func Load() (*Config, error) {
	path := ""
	if home, err := os.UserHomeDir(); err == nil {
		path = filepath.Join(home, ".webpilot", "config.yaml")
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration using the given config file path. A missing
// file is not an error; an unreadable or malformed one is.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("model", DefaultModel)
	v.SetDefault("headless", true)
	v.SetDefault("step_limit", DefaultStepLimit)
	v.SetDefault("memory_capacity", DefaultMemoryCapacity)

	if path != "" {
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	// Bindings keep the historical variable names rather than a single
	// prefix: the OpenAI and Telegram ones follow their ecosystems.
	bindings := map[string]string{
		"api_key":         "OPENAI_API_KEY",
		"base_url":        "OPENAI_BASE_URL",
		"model":           "WEBPILOT_MODEL",
		"telegram_token":  "TELEGRAM_BOT_TOKEN",
		"headless":        "WEBPILOT_HEADLESS",
		"step_limit":      "WEBPILOT_STEP_LIMIT",
		"memory_capacity": "WEBPILOT_MEMORY_CAPACITY",
		"allowed_hosts":   "WEBPILOT_ALLOWED_HOSTS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		APIKey:         strings.TrimSpace(v.GetString("api_key")),
		BaseURL:        strings.TrimSpace(v.GetString("base_url")),
		Model:          strings.TrimSpace(v.GetString("model")),
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_token")),
		Headless:       v.GetBool("headless"),
		StepLimit:      v.GetInt("step_limit"),
		MemoryCapacity: v.GetInt("memory_capacity"),
		AllowedHosts:   splitHosts(v.GetString("allowed_hosts")),
	}

	if cfg.StepLimit <= 0 {
		cfg.StepLimit = DefaultStepLimit
	}
	if cfg.MemoryCapacity <= 0 {
		cfg.MemoryCapacity = DefaultMemoryCapacity
	}
	return cfg, nil
}

// mergeFile layers the YAML config file into the viper instance below the
// environment bindings.
func mergeFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	values := map[string]interface{}{}
	if fc.APIKey != "" {
		values["api_key"] = fc.APIKey
	}
	if fc.BaseURL != "" {
		values["base_url"] = fc.BaseURL
	}
	if fc.Model != "" {
		values["model"] = fc.Model
	}
	if fc.TelegramToken != "" {
		values["telegram_token"] = fc.TelegramToken
	}
	if fc.Headless != nil {
		values["headless"] = *fc.Headless
	}
	if fc.StepLimit > 0 {
		values["step_limit"] = fc.StepLimit
	}
	if fc.MemoryCapacity > 0 {
		values["memory_capacity"] = fc.MemoryCapacity
	}
	if len(fc.AllowedHosts) > 0 {
		values["allowed_hosts"] = strings.Join(fc.AllowedHosts, ",")
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", path, err)
	}
	return nil
}

// splitHosts parses the comma-separated allowed host list.
func splitHosts(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var hosts []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			hosts = append(hosts, part)
		}
	}
	return hosts
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("no API key configured: set OPENAI_API_KEY or api_key in ~/.webpilot/config.yaml")
	}
	return nil
}

// TelegramMode reports whether the binary should run as a Telegram bot.
func (c *Config) TelegramMode() bool {
	return c.TelegramToken != ""
}
