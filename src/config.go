package src

import (
	"fmt"
	"market_assistant/src/model"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogConfig          model.LogConfig          `envconfig:"LOG"`
	LLMConfig          model.LLMConfig          `envconfig:"LLM"`
	ConversationConfig model.ConversationConfig `envconfig:"CONVERSATION"`
	CatalogConfig      model.CatalogConfig      `envconfig:"CATALOG"`
}

func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return &config, nil
}
