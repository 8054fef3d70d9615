package conversation

import (
	"sync"
	"testing"
	"time"

	"market_assistant/pkg"
	"market_assistant/src/model"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intentPtr(intent model.IntentKind) *model.IntentKind {
	return &intent
}

func userTurn(products ...string) model.TurnMetadata {
	return model.TurnMetadata{Products: products}
}

func TestAddMessageIgnoresInvalidInput(t *testing.T) {
	memory := NewMemory(5)

	assert.False(t, memory.AddMessage("system", "hello", model.TurnMetadata{}))
	assert.False(t, memory.AddMessage(model.RoleUser, "", model.TurnMetadata{}))
	assert.False(t, memory.AddMessage(model.RoleUser, "   ", model.TurnMetadata{}))
	assert.Equal(t, 0, memory.Len())

	assert.True(t, memory.AddMessage("User", "hello", model.TurnMetadata{}))
	require.Equal(t, 1, memory.Len())
	assert.Equal(t, model.RoleUser, memory.Turns()[0].Role)
}

func TestAddMessageStampsTimeAndCopiesMetadata(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	memory := NewMemory(5)
	memory.now = func() time.Time { return fixed }

	products := []string{"Tomato"}
	memory.AddMessage(model.RoleUser, "price of tomato", model.TurnMetadata{
		Products: products,
		Intent:   intentPtr(model.IntentPriceCheck),
	})
	products[0] = "Changed"

	turn := memory.Turns()[0]
	assert.Equal(t, fixed, turn.Timestamp)
	assert.Equal(t, []string{"Tomato"}, turn.Metadata.Products)
	require.NotNil(t, turn.Metadata.Intent)
	assert.Equal(t, model.IntentPriceCheck, *turn.Metadata.Intent)
}

func TestAddMessageEvictsOldestTurns(t *testing.T) {
	memory := NewMemory(2)
	for _, content := range []string{"m0", "m1", "m2", "m3", "m4"} {
		memory.AddMessage(model.RoleUser, content, model.TurnMetadata{})
	}

	turns := memory.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, "m1", turns[0].Content)
	assert.Equal(t, "m4", turns[3].Content)
}

func TestNewMemoryDefaultCapacity(t *testing.T) {
	assert.Equal(t, 2*DefaultMaxHistoryTurns, NewMemory(0).Capacity())
	assert.Equal(t, 6, NewMemory(3).Capacity())
}

func TestGetHistory(t *testing.T) {
	memory := NewMemory(10)
	memory.AddMessage(model.RoleUser, "q1", model.TurnMetadata{})
	memory.AddMessage(model.RoleAssistant, "a1", model.TurnMetadata{})
	memory.AddMessage(model.RoleUser, "q2", model.TurnMetadata{})

	assert.Equal(t, []pkg.ConversationMessage{
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
	}, memory.GetHistory(1))

	assert.Len(t, memory.GetHistory(5), 3)
	assert.Empty(t, memory.GetHistory(0))
	assert.NotNil(t, memory.GetHistory(0))
}

func TestGetRecentProducts(t *testing.T) {
	memory := NewMemory(10)
	memory.AddMessage(model.RoleUser, "onion", userTurn("Onion"))
	memory.AddMessage(model.RoleUser, "tomato", userTurn("Tomato"))
	memory.AddMessage(model.RoleAssistant, "apple is great", model.TurnMetadata{Products: []string{"Apple"}})
	memory.AddMessage(model.RoleUser, "potato and tomato", userTurn("Potato", "Tomato"))
	memory.AddMessage(model.RoleUser, "banana", userTurn("Banana"))

	assert.Equal(t, []string{"Tomato", "Potato", "Banana"}, memory.GetRecentProducts(3))
	assert.Equal(t, []string{"Banana"}, memory.GetRecentProducts(1))
	assert.Empty(t, memory.GetRecentProducts(0))
}

func TestResolveReferences(t *testing.T) {
	single := NewMemory(10)
	single.AddMessage(model.RoleUser, "price of tomato", userTurn("Tomato"))

	multi := NewMemory(10)
	multi.AddMessage(model.RoleUser, "tomato and potato", userTurn("Tomato", "Potato"))

	tests := []struct {
		name      string
		memory    *Memory
		utterance string
		want      string
	}{
		{"it", single, "how much is it now", "how much is Tomato now"},
		{"that one uppercase", multi, "What about That One?", "What about Potato?"},
		{"the same", multi, "the same again", "Potato again"},
		{"them joined", multi, "compare them", "compare Tomato and Potato"},
		{"these products", multi, "are these products fresh", "are Tomato and Potato fresh"},
		{"those single", single, "is those cheap", "is Tomato cheap"},
		{"whole word only", single, "italy items", "italy items"},
		{"no recent products", NewMemory(10), "how much is it", "how much is it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.memory.ResolveReferences(tt.utterance))
		})
	}
}

func TestResolveReferencesSinglePass(t *testing.T) {
	memory := NewMemory(10)
	memory.AddMessage(model.RoleUser, "it", userTurn("Them"))

	assert.Equal(t, "Them and Them", memory.ResolveReferences("it and them"))
}

func TestGetContextSummary(t *testing.T) {
	memory := NewMemory(10)
	assert.Equal(t, "No previous conversation context.", memory.GetContextSummary())

	memory.AddMessage(model.RoleUser, "price of tomato", model.TurnMetadata{
		Products: []string{"Tomato"},
		Intent:   intentPtr(model.IntentPriceCheck),
	})
	memory.AddMessage(model.RoleAssistant, "Tomato is ₹45.50/kg", userTurn("Tomato"))

	want := "Recent conversation context:\n" +
		"- Recently discussed products: Tomato\n" +
		"- Recent user intents: price_check\n" +
		"- Total messages in history: 2\n"
	assert.Equal(t, want, memory.GetContextSummary())
}

func TestClear(t *testing.T) {
	memory := NewMemory(10)
	memory.AddMessage(model.RoleUser, "tomato", userTurn("Tomato"))
	memory.Clear()

	assert.Equal(t, 0, memory.Len())
	assert.Equal(t, "how much is it", memory.ResolveReferences("how much is it"))
}

func TestConcurrentWritesKeepCapacity(t *testing.T) {
	memory := NewMemory(4)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			memory.AddMessage(model.RoleUser, "ping", model.TurnMetadata{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, memory.Len())
}

func TestResponseContextStrategy(t *testing.T) {
	memory := NewMemory(10)
	memory.AddMessage(model.RoleUser, "q1", model.TurnMetadata{})
	memory.AddMessage(model.RoleAssistant, "a1", model.TurnMetadata{})
	memory.AddMessage(model.RoleUser, "q2", model.TurnMetadata{})
	memory.AddMessage(model.RoleAssistant, "a2", model.TurnMetadata{})

	strategy := NewResponseContextStrategy(1)
	assert.Equal(t, 1, strategy.GetMaxTurns())

	messages := strategy.BuildMessages(memory)
	require.Len(t, messages, 2)
	assert.Equal(t, schema.User, messages[0].Role)
	assert.Equal(t, "q2", messages[0].Content)
	assert.Equal(t, schema.Assistant, messages[1].Role)

	assert.Nil(t, strategy.BuildMessages(nil))
	assert.Equal(t, 5, NewResponseContextStrategy(0).GetMaxTurns())
}
