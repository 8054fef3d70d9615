package llm

import (
	"context"
	"fmt"
	"strings"

	"market_assistant/src/model"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"
)

const (
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderDeepSeek = "deepseek"
	ProviderArk      = "ark"
)

// NewChatModel builds the chat model for the configured provider.
// It returns model.ErrLLMUnavailable when remote generation is disabled.
func NewChatModel(ctx context.Context, config model.LLMConfig) (einomodel.BaseChatModel, error) {
	maxTokens := config.MaxTokens
	temperature := float32(config.Temperature)

	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", "none", "off":
		return nil, model.ErrLLMUnavailable

	case ProviderOpenAI:
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      config.APIKey,
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			Timeout:     config.Timeout,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating openai chat model: %w", err)
		}
		return chatModel, nil

	case ProviderOllama:
		chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: config.BaseURL,
			Model:   config.Model,
			Timeout: config.Timeout,
			Options: &api.Options{
				Temperature: temperature,
				NumPredict:  maxTokens,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ollama chat model: %w", err)
		}
		return chatModel, nil

	case ProviderDeepSeek:
		chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
			Model:   config.Model,
			Timeout: config.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating deepseek chat model: %w", err)
		}
		return chatModel, nil

	case ProviderArk:
		chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  config.APIKey,
			BaseURL: config.BaseURL,
			Model:   config.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ark chat model: %w", err)
		}
		return chatModel, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider %q", config.Provider)
	}
}
