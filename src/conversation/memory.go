package conversation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"market_assistant/pkg"
	"market_assistant/src/model"
)

const (
	// DefaultMaxHistoryTurns is used when a non-positive capacity is requested
	DefaultMaxHistoryTurns = 10
	// DefaultRecentTurns is how many user turns reference resolution looks back
	DefaultRecentTurns = 3

	noContextSummary = "No previous conversation context."
)

// referencePattern lists every deictic phrase in one alternation so a query is
// resolved in a single left-to-right pass. Longer phrases come first.
var referencePattern = regexp.MustCompile(`(?i)\b(that product|that one|those products|these products|the same|them|those|these|it)\b`)

// Memory is the bounded turn log of one chat session. It keeps at most
// 2*maxHistoryTurns messages and drops the oldest first. All methods are safe
// for concurrent use; writes are serialized so turn order is preserved.
type Memory struct {
	mu              sync.Mutex
	turns           []model.ConversationTurn
	maxHistoryTurns int
	now             func() time.Time
}

// NewMemory creates an empty memory bounded to maxHistoryTurns user/assistant pairs
func NewMemory(maxHistoryTurns int) *Memory {
	if maxHistoryTurns <= 0 {
		maxHistoryTurns = DefaultMaxHistoryTurns
	}
	return &Memory{
		maxHistoryTurns: maxHistoryTurns,
		now:             time.Now,
	}
}

// Capacity is the maximum number of stored messages
func (m *Memory) Capacity() int {
	return 2 * m.maxHistoryTurns
}

// AddMessage appends a turn. Unknown roles and blank content are ignored and
// reported with false.
func (m *Memory) AddMessage(role model.Role, content string, metadata model.TurnMetadata) bool {
	role = model.Role(strings.ToLower(strings.TrimSpace(string(role))))
	if role != model.RoleUser && role != model.RoleAssistant {
		return false
	}
	if strings.TrimSpace(content) == "" {
		return false
	}

	turn := model.ConversationTurn{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
		Metadata: model.TurnMetadata{
			Products: slices.Clone(metadata.Products),
		},
	}
	if metadata.Intent != nil {
		intent := *metadata.Intent
		turn.Metadata.Intent = &intent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn)
	if excess := len(m.turns) - m.Capacity(); excess > 0 {
		m.turns = slices.Delete(m.turns, 0, excess)
	}
	return true
}

// GetHistory returns the last 2*lastN messages oldest-first in the
// chat-completion {role, content} shape.
func (m *Memory) GetHistory(lastN int) []pkg.ConversationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := min(2*lastN, len(m.turns))
	history := make([]pkg.ConversationMessage, 0, max(count, 0))
	if count <= 0 {
		return history
	}
	for _, turn := range m.turns[len(m.turns)-count:] {
		history = append(history, pkg.ConversationMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return history
}

// GetRecentProducts collects product names from the last lastN user turns,
// chronologically and without duplicates.
func (m *Memory) GetRecentProducts(lastN int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recentProductsLocked(lastN)
}

func (m *Memory) recentProductsLocked(lastN int) []string {
	products := []string{}
	if lastN <= 0 {
		return products
	}

	var userTurns []model.ConversationTurn
	for _, turn := range m.turns {
		if turn.Role == model.RoleUser {
			userTurns = append(userTurns, turn)
		}
	}
	if len(userTurns) > lastN {
		userTurns = userTurns[len(userTurns)-lastN:]
	}

	seen := make(map[string]struct{})
	for _, turn := range userTurns {
		for _, product := range turn.Metadata.Products {
			if _, ok := seen[product]; ok {
				continue
			}
			seen[product] = struct{}{}
			products = append(products, product)
		}
	}
	return products
}

// ResolveReferences replaces pronouns with the products discussed in recent
// user turns. "it", "that product", "that one" and "the same" become the last
// recent product; "them", "those", "these" and their "... products" forms
// become every recent product joined with " and ". Without recent products the
// utterance is returned unchanged.
func (m *Memory) ResolveReferences(utterance string) string {
	m.mu.Lock()
	recent := m.recentProductsLocked(DefaultRecentTurns)
	m.mu.Unlock()

	if len(recent) == 0 || utterance == "" {
		return utterance
	}

	last := recent[len(recent)-1]
	all := strings.Join(recent, " and ")

	return referencePattern.ReplaceAllStringFunc(utterance, func(phrase string) string {
		switch strings.ToLower(phrase) {
		case "them", "those", "these", "those products", "these products":
			return all
		default:
			return last
		}
	})
}

// GetContextSummary renders a short digest of the session for downstream generation
func (m *Memory) GetContextSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.turns) == 0 {
		return noContextSummary
	}

	recentProducts := m.recentProductsLocked(DefaultRecentTurns)

	var intents []string
	for _, turn := range m.turns {
		if turn.Role == model.RoleUser && turn.Metadata.Intent != nil {
			intents = append(intents, string(*turn.Metadata.Intent))
		}
	}
	if len(intents) > DefaultRecentTurns {
		intents = intents[len(intents)-DefaultRecentTurns:]
	}

	var summary strings.Builder
	summary.WriteString("Recent conversation context:\n")
	if len(recentProducts) > 0 {
		summary.WriteString(fmt.Sprintf("- Recently discussed products: %s\n", strings.Join(recentProducts, ", ")))
	}
	if len(intents) > 0 {
		summary.WriteString(fmt.Sprintf("- Recent user intents: %s\n", strings.Join(intents, ", ")))
	}
	summary.WriteString(fmt.Sprintf("- Total messages in history: %d\n", len(m.turns)))
	return summary.String()
}

// Len returns the number of stored messages
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Turns returns a copy of the stored turns, oldest first
func (m *Memory) Turns() []model.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.turns)
}

// Clear drops every turn. Called when the chat surface is dismissed.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}
