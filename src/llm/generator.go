package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"market_assistant/pkg"
	"market_assistant/src/logger"
	"market_assistant/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = `You are a market guide assistant for a fresh produce marketplace.
Answer questions about vegetable and fruit prices, stock and demand using only the catalog facts below.
Prices are in rupees per kilogram. Keep answers short and use at most 3 emoji.

Catalog facts:
{catalog}

{context}`

// minReplyLength is the shortest reply, in runes, trusted over the offline answer
const minReplyLength = 10

// GenerateInput is everything the remote model sees for one turn
type GenerateInput struct {
	Question string
	Context  string
	Catalog  string
	History  []*schema.Message
}

// Generator produces replies with a remote chat model: template → chat model.
type Generator struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	timeout  time.Duration
	provider string
}

// NewGenerator compiles the prompt chain around an already built chat model
func NewGenerator(ctx context.Context, chatModel einomodel.BaseChatModel, config model.LLMConfig) (*Generator, error) {
	if chatModel == nil {
		return nil, model.ErrLLMUnavailable
	}

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(createResponseTemplate()).
		AppendChatModel(chatModel).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating Eino chain: %w", err)
	}

	return &Generator{
		chain:    chain,
		timeout:  config.Timeout,
		provider: config.Provider,
	}, nil
}

// NewGeneratorFromConfig builds the provider chat model and the generator in one step
func NewGeneratorFromConfig(ctx context.Context, config model.LLMConfig) (*Generator, error) {
	chatModel, err := NewChatModel(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewGenerator(ctx, chatModel, config)
}

func createResponseTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{question}"),
	)
}

// Provider names the backing provider, used as a metrics label
func (g *Generator) Provider() string {
	return g.provider
}

// Generate asks the remote model for a reply. Blank or too short replies are
// reported as model.ErrEmptyGeneration so the caller can keep its offline answer.
func (g *Generator) Generate(ctx context.Context, input GenerateInput) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	message, err := g.chain.Invoke(ctx, map[string]any{
		"catalog":  input.Catalog,
		"context":  input.Context,
		"question": input.Question,
		"history":  input.History,
	})
	if err != nil {
		return "", fmt.Errorf("remote generation failed: %w", err)
	}

	reply := ""
	if message != nil {
		reply = strings.TrimSpace(message.Content)
	}
	if utf8.RuneCountInString(reply) < minReplyLength {
		return "", model.ErrEmptyGeneration
	}

	logger.Debug().
		Str("provider", g.provider).
		Int("history_messages", len(input.History)).
		Dur("duration", time.Since(start)).
		Msg("Remote reply generated")

	return reply, nil
}

// FormatCatalog renders the catalog as one fact line per product
func FormatCatalog(catalog []pkg.Product) string {
	if len(catalog) == 0 {
		return "(no product data available)"
	}
	lines := make([]string, 0, len(catalog))
	for _, product := range catalog {
		lines = append(lines, fmt.Sprintf("- %s (%s): ₹%.2f/kg, stock %d units, predicted demand %g units",
			product.Name, product.Category, product.Price, product.Stock, product.PredictedDemand))
	}
	return strings.Join(lines, "\n")
}
