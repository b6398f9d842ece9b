// Package llm provides the chat model client used by the reasoning router and
// the database agent.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"pv-query-router/internal/common/config"
	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	ProviderOpenAI     = "openai"
	ProviderCompatible = "openai_compatible"
	ProviderArk        = "ark"
)

// Client completes a conversation and returns the assistant text.
type Client interface {
	Complete(ctx context.Context, messages []Message, stop []string) (string, error)
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient adapts an eino chat model to Client.
type ChatClient struct {
	chat        model.BaseChatModel
	model       string
	temperature float32
	logger      logger.Logger
}

// NewClient builds the chat model for cfg.Provider. It fails when no API key
// is configured.
func NewClient(cfg config.LLMConfig, log logger.Logger) (*ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationMissingError("llm.api_key")
	}

	chat, err := newChatModel(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return NewChatClient(chat, cfg.Model, cfg.Temperature, log), nil
}

func newChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI, ProviderCompatible:
		temperature := float32(cfg.Temperature)
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
			Timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
			Temperature: &temperature,
		})
	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
	default:
		return nil, apperrors.NewConfigurationMissingError(fmt.Sprintf("llm.provider (unsupported: %s)", cfg.Provider))
	}
}

// NewChatClient wraps an existing chat model.
func NewChatClient(chat model.BaseChatModel, modelName string, temperature float64, log logger.Logger) *ChatClient {
	return &ChatClient{
		chat:        chat,
		model:       modelName,
		temperature: float32(temperature),
		logger:      logger.ForComponent(log, "llm"),
	}
}

// Model returns the configured model name.
func (c *ChatClient) Model() string { return c.model }

func (c *ChatClient) Complete(ctx context.Context, messages []Message, stop []string) (string, error) {
	opts := []model.Option{model.WithTemperature(c.temperature)}
	if len(stop) > 0 {
		opts = append(opts, model.WithStop(stop))
	}

	resp, err := c.chat.Generate(ctx, toSchema(messages), opts...)
	if err != nil {
		return "", apperrors.NewLLMCallFailedError(err)
	}
	if resp == nil {
		return "", apperrors.NewLLMCallFailedError(fmt.Errorf("response has no message"))
	}
	if meta := resp.ResponseMeta; meta != nil && meta.Usage != nil {
		c.logger.Debug("completion finished", map[string]interface{}{
			"model":        c.model,
			"finishReason": meta.FinishReason,
			"totalTokens":  meta.Usage.TotalTokens,
		})
	}
	return resp.Content, nil
}

func toSchema(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}
