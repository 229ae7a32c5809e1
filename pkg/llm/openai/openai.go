// Package openai provides an OpenAI-compatible planner implementation
// built on the official SDK's chat completions and function calling.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/llm"
	"github.com/webpilot/webpilot/pkg/types"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o"
)

// Provider implements the planner interface for OpenAI-compatible APIs.
type Provider struct {
	client  openai.Client
	apiKey  string
	baseURL string
	model   string
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
// This enables using Azure OpenAI, OpenRouter, local models, or other
// compatible services.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// NewProvider creates a new OpenAI provider with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY
// environment variable. If no base URL is provided via WithBaseURL, the
// OPENAI_BASE_URL environment variable is checked before falling back to
// the default.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = envBaseURL
		}
	}

	p.client = openai.NewClient(
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
	)

	return p, nil
}

// Complete sends the conversation and tool catalog to the API and returns
// the planner's response as either final text or tool call requests.
func (p *Provider) Complete(ctx context.Context, systemPrompt string, turns []types.Turn, toolDefs []tools.Definition) (*llm.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: convertTurns(systemPrompt, turns),
	}
	if len(toolDefs) > 0 {
		params.Tools = convertToolDefs(toolDefs)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	completion := &llm.Completion{Text: msg.Content}
	for _, call := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, types.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}

	return completion, nil
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

// convertTurns converts the conversation into the SDK's message union,
// preserving tool call requests and tool-result linkage so a job's
// Think/Act/Observe rounds replay correctly.
func convertTurns(systemPrompt string, turns []types.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}

	for _, turn := range turns {
		switch turn.Role {
		case types.RoleSystem:
			messages = append(messages, openai.SystemMessage(turn.Content))

		case types.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))

		case types.RoleAssistant:
			if len(turn.ToolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(turn.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if turn.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(turn.Content),
				}
			}
			for _, call := range turn.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: string(call.Arguments),
					},
				})
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		case types.RoleTool:
			messages = append(messages, openai.ToolMessage(turn.Content, turn.ToolCallID))

		default:
			// Unknown roles are forwarded as user text rather than dropped
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	return messages
}

// convertToolDefs converts registry definitions into the SDK's function
// tool parameters.
func convertToolDefs(defs []tools.Definition) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(def.Schema),
			},
		})
	}
	return params
}
