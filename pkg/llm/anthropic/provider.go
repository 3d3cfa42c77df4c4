// Package anthropic adapts the Anthropic Messages API to llm.LLMProvider.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"cardiac-assistant-be/pkg/llm"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicProvider struct {
	client    *anthropic.Client
	modelName string
}

var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, baseURL, modelName string) *AnthropicProvider {
	var clientOpts []option.RequestOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(clientOpts...)
	if modelName == "" {
		modelName = string(anthropic.ModelClaude3_5Sonnet20241022)
	}
	return &AnthropicProvider{client: &client, modelName: modelName}
}

// Chat folds every system message into the system blocks, since the Messages
// API only accepts user and assistant turns. Consecutive turns with the same
// role are merged into one message.
func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7, MaxTokens: 1024, Model: p.modelName}, opts...)
	if options.MaxTokens <= 0 {
		options.MaxTokens = 1024
	}

	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	var pending []anthropic.ContentBlockParamUnion
	pendingRole := ""

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if pendingRole == llm.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(pending...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(pending...))
		}
		pending = nil
	}

	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if msg.Role == llm.RoleSystem {
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			continue
		}
		role := llm.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		if role != pendingRole {
			flush()
			pendingRole = role
		}
		pending = append(pending, anthropic.NewTextBlock(msg.Content))
	}
	flush()

	if len(messages) == 0 {
		return "", fmt.Errorf("anthropic api error: no user content to send")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(options.Model),
		Messages:    messages,
		MaxTokens:   int64(options.MaxTokens),
		Temperature: anthropic.Float(options.Temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.AsText().Text)
		}
	}
	return out.String(), nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
