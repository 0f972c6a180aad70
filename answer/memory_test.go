package answer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/ragserve/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAppendAndGetOrder(t *testing.T) {
	memory := NewSessionMemory()

	memory.Append("s1", ai.Message{Role: ai.RoleUser, Content: "hello"})
	memory.Append("s1", ai.Message{Role: ai.RoleAssistant, Content: "hi there"})

	history := memory.Get("s1")
	require.Len(t, history, 2)
	assert.Equal(t, ai.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, ai.RoleAssistant, history[1].Role)
	assert.Equal(t, "hi there", history[1].Content)
}

func TestMemoryUnknownSessionEmpty(t *testing.T) {
	memory := NewSessionMemory()
	assert.Empty(t, memory.Get("never-seen"))
}

func TestMemorySessionsIsolated(t *testing.T) {
	memory := NewSessionMemory()

	memory.Append("s1", ai.Message{Role: ai.RoleUser, Content: "one"})
	memory.Append("s2", ai.Message{Role: ai.RoleUser, Content: "two"})

	require.Len(t, memory.Get("s1"), 1)
	require.Len(t, memory.Get("s2"), 1)
	assert.Equal(t, "one", memory.Get("s1")[0].Content)
	assert.Equal(t, "two", memory.Get("s2")[0].Content)
}

func TestMemoryClear(t *testing.T) {
	memory := NewSessionMemory()

	memory.Append("s1", ai.Message{Role: ai.RoleUser, Content: "one"})
	memory.Append("s2", ai.Message{Role: ai.RoleUser, Content: "two"})

	memory.Clear("s1")
	assert.Empty(t, memory.Get("s1"))
	assert.Len(t, memory.Get("s2"), 1)

	memory.ClearAll()
	assert.Empty(t, memory.Get("s2"))
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	memory := NewSessionMemory()
	memory.Append("s1", ai.Message{Role: ai.RoleUser, Content: "original"})

	history := memory.Get("s1")
	history[0].Content = "mutated"

	assert.Equal(t, "original", memory.Get("s1")[0].Content)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	memory := NewSessionMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("s%d", i%4)
			memory.Append(session, ai.Message{Role: ai.RoleUser, Content: "msg"})
			memory.Get(session)
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < 4; i++ {
		total += len(memory.Get(fmt.Sprintf("s%d", i)))
	}
	assert.Equal(t, 20, total)
}
