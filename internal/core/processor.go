package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market_assistant/internal/metrics"
	"market_assistant/internal/services"
	"market_assistant/internal/storage"
	"market_assistant/pkg"
	"market_assistant/src/conversation"
	"market_assistant/src/fallback"
	"market_assistant/src/llm"
	"market_assistant/src/logger"
	"market_assistant/src/matcher"
	"market_assistant/src/model"
	"market_assistant/src/nlu"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
)

// Processor answers one utterance at a time per session:
// resolve references → parse ∥ match → synthesize, then optionally a remote reply.
type Processor struct {
	sessions  *storage.SessionManager
	catalog   services.CatalogProvider
	responder Responder
	parser    *nlu.Parser
	strategy  conversation.ContextStrategy
	pipeline  compose.Runnable[*turnState, *turnResult]
	log       zerolog.Logger
}

// NewProcessor compiles the turn pipeline. responder may be nil for offline use.
func NewProcessor(ctx context.Context, sessions *storage.SessionManager, catalog services.CatalogProvider, responder Responder, config Config) (*Processor, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog provider cannot be nil")
	}

	p := &Processor{
		sessions:  sessions,
		catalog:   catalog,
		responder: responder,
		parser:    nlu.NewParser(),
		strategy:  conversation.NewResponseContextStrategy(config.HistoryWindow),
		log:       logger.Component("processor"),
	}

	pipeline, err := p.buildPipeline(ctx)
	if err != nil {
		return nil, err
	}
	p.pipeline = pipeline

	return p, nil
}

func (p *Processor) buildPipeline(ctx context.Context) (compose.Runnable[*turnState, *turnResult], error) {
	resolve := compose.InvokableLambda(func(ctx context.Context, state *turnState) (*turnState, error) {
		state.Resolved = state.Memory.ResolveReferences(state.Utterance)
		return state, nil
	})

	parse := compose.InvokableLambda(func(ctx context.Context, state *turnState) (model.ParsedQuery, error) {
		return p.parser.ParseQuery(state.Resolved), nil
	})

	match := compose.InvokableLambda(func(ctx context.Context, state *turnState) ([]model.Match, error) {
		return matchTurn(state.Resolved, state.Catalog), nil
	})

	carry := compose.InvokableLambda(func(ctx context.Context, state *turnState) (*turnState, error) {
		return state, nil
	})

	synthesize := compose.InvokableLambda(func(ctx context.Context, in map[string]any) (*turnResult, error) {
		state, ok := in[keyTurn].(*turnState)
		if !ok {
			return nil, fmt.Errorf("missing %q in pipeline output", keyTurn)
		}
		parsed, ok := in[keyParsed].(model.ParsedQuery)
		if !ok {
			return nil, fmt.Errorf("missing %q in pipeline output", keyParsed)
		}
		matches, _ := in[keyMatches].([]model.Match)

		return &turnResult{
			State:   state,
			Parsed:  parsed,
			Matches: matches,
			Fallback: fallback.Generate(fallback.Request{
				Utterance: state.Resolved,
				Parsed:    parsed,
				Matches:   matches,
				Catalog:   state.Catalog,
			}),
		}, nil
	})

	parallel := compose.NewParallel().
		AddLambda(keyParsed, parse).
		AddLambda(keyMatches, match).
		AddLambda(keyTurn, carry)

	pipeline, err := compose.NewChain[*turnState, *turnResult]().
		AppendLambda(resolve, compose.WithNodeName(nodeResolve)).
		AppendParallel(parallel).
		AppendLambda(synthesize, compose.WithNodeName(nodeSynthesize)).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating Eino chain: %w", err)
	}
	return pipeline, nil
}

// matchTurn grounds every product mention in the utterance. Comparison
// phrases only add products the whole-utterance match missed.
func matchTurn(utterance string, catalog []pkg.Product) []model.Match {
	matches := matcher.MatchProducts(utterance, catalog)

	comparison := nlu.DetectComparison(utterance)
	if !comparison.IsComparison {
		return matches
	}

	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		seen[match.Product.Name] = struct{}{}
	}
	for _, phrase := range comparison.Products {
		for _, match := range matcher.MatchProducts(phrase, catalog) {
			if _, ok := seen[match.Product.Name]; ok {
				continue
			}
			seen[match.Product.Name] = struct{}{}
			matches = append(matches, match)
		}
	}
	return matches
}

// Process answers one user message and records the exchange in the session memory
func (p *Processor) Process(ctx context.Context, input ProcessorInput) (*ProcessorOutput, error) {
	startTime := time.Now()

	session, err := p.sessions.GetOrCreate(input.SessionID)
	if err != nil {
		return nil, err
	}
	release := session.LockTurn()
	defer release()

	result, err := p.pipeline.Invoke(ctx, &turnState{
		Utterance: input.UserMessage,
		Catalog:   p.catalog.Snapshot(),
		Memory:    session.Memory,
	})
	if err != nil {
		return nil, fmt.Errorf("error running turn pipeline: %w", err)
	}

	response, source := p.respond(ctx, session.Memory, result)

	intent := result.Parsed.Intent
	products := model.ProductNames(result.Matches)

	session.Memory.AddMessage(model.RoleUser, input.UserMessage, model.TurnMetadata{
		Products: products,
		Intent:   &intent,
	})
	session.Memory.AddMessage(model.RoleAssistant, response, model.TurnMetadata{
		Products: products,
	})

	processingTime := time.Since(startTime)
	metrics.TurnsTotal.WithLabelValues(string(intent), source).Inc()
	metrics.TurnDuration.WithLabelValues(source).Observe(processingTime.Seconds())

	p.log.Info().
		Str("session_id", input.SessionID).
		Str("intent", string(intent)).
		Str("source", source).
		Strs("products", products).
		Float64("confidence", result.Parsed.Confidence).
		Dur("duration", processingTime).
		Msg("Turn processed")

	return &ProcessorOutput{
		Response:        response,
		ResolvedMessage: result.State.Resolved,
		Intent:          intent,
		Products:        products,
		Source:          source,
		Confidence:      result.Parsed.Confidence,
		ProcessingTime:  processingTime.Milliseconds(),
		Metadata: map[string]any{
			"is_comparison":    result.Parsed.IsComparison,
			"is_multi_product": result.Parsed.IsMultiProduct,
			"history_messages": session.Memory.Len(),
		},
	}, nil
}

// respond prefers a remote reply and falls back to the synthesized text
func (p *Processor) respond(ctx context.Context, memory *conversation.Memory, result *turnResult) (string, string) {
	if p.responder == nil {
		return result.Fallback, metrics.SourceFallback
	}

	reply, err := p.responder.Generate(ctx, llm.GenerateInput{
		Question: result.State.Resolved,
		Context:  memory.GetContextSummary(),
		Catalog:  llm.FormatCatalog(result.State.Catalog),
		History:  p.strategy.BuildMessages(memory),
	})
	if err != nil {
		metrics.RemoteFailures.WithLabelValues(p.responder.Provider()).Inc()
		if errors.Is(err, model.ErrEmptyGeneration) {
			p.log.Debug().Str("provider", p.responder.Provider()).Msg("Blank remote reply, using offline reply")
		} else {
			p.log.Warn().Err(err).Str("provider", p.responder.Provider()).Msg("Remote generation failed, using offline reply")
		}
		return result.Fallback, metrics.SourceFallback
	}

	return fallback.LimitEmojis(reply), metrics.SourceLLM
}

// EndSession clears the conversation memory when the chat surface closes
func (p *Processor) EndSession(sessionID string) error {
	if err := p.sessions.Delete(sessionID); err != nil {
		return err
	}
	p.log.Info().Str("session_id", sessionID).Msg("Session ended")
	return nil
}
