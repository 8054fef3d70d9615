package core

import (
	"context"

	"market_assistant/pkg"
	"market_assistant/src/conversation"
	"market_assistant/src/llm"
	"market_assistant/src/model"
)

// Responder produces remote replies. The processor keeps its offline reply
// whenever Generate fails or returns nothing.
type Responder interface {
	Generate(ctx context.Context, input llm.GenerateInput) (string, error)
	Provider() string
}

// Config tunes the processor
type Config struct {
	// HistoryWindow is how many turn pairs are replayed to the remote model
	HistoryWindow int
}

// ProcessorInput is the main input for the processor
type ProcessorInput struct {
	UserMessage string `json:"user_message"`
	SessionID   string `json:"session_id"`
}

// ProcessorOutput is the main output from the processor
type ProcessorOutput struct {
	Response        string           `json:"response"`
	ResolvedMessage string           `json:"resolved_message"`
	Intent          model.IntentKind `json:"intent"`
	Products        []string         `json:"products"`
	Source          string           `json:"source"`
	Confidence      float64          `json:"confidence"`
	ProcessingTime  int64            `json:"processing_time_ms"`
	Metadata        map[string]any   `json:"metadata"`
}

// turnState flows through the pipeline for one utterance
type turnState struct {
	Utterance string
	Resolved  string
	Catalog   []pkg.Product
	Memory    *conversation.Memory
}

// turnResult is the offline outcome of one utterance
type turnResult struct {
	State    *turnState
	Parsed   model.ParsedQuery
	Matches  []model.Match
	Fallback string
}

// Pipeline node and output keys
const (
	nodeResolve    = "resolve"
	nodeSynthesize = "synthesize"

	keyParsed  = "parsed"
	keyMatches = "matches"
	keyTurn    = "turn"
)
