package answer

import (
	"strings"
	"testing"

	"github.com/poiesic/ragserve/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleGroundingBlock(t *testing.T) {
	passages := []Passage{
		{ID: "d_0", Text: "first passage", Source: "a.txt"},
		{ID: "d_1", Text: "second passage", Source: "b.txt"},
	}

	req := assemble("the question", passages, nil, false)

	require.NotEmpty(t, req.Messages)
	grounding := req.Messages[0]
	assert.Equal(t, ai.RoleUser, grounding.Role)
	assert.Contains(t, grounding.Content, "Content: first passage")
	assert.Contains(t, grounding.Content, "Source: a.txt")
	assert.Contains(t, grounding.Content, "Content: second passage")
	assert.Contains(t, grounding.Content, "Source: b.txt")

	last := req.Messages[len(req.Messages)-1]
	assert.Equal(t, ai.RoleUser, last.Role)
	assert.Equal(t, "the question", last.Content)
}

func TestAssembleHistoryBetweenContextAndQuestion(t *testing.T) {
	history := []ai.Message{
		{Role: ai.RoleUser, Content: "earlier question"},
		{Role: ai.RoleAssistant, Content: "earlier answer"},
	}

	req := assemble("next question", []Passage{{Text: "p"}}, history, false)

	require.Len(t, req.Messages, 4)
	assert.Equal(t, "earlier question", req.Messages[1].Content)
	assert.Equal(t, "earlier answer", req.Messages[2].Content)
	assert.Equal(t, "next question", req.Messages[3].Content)
}

func TestAssembleSystemInstruction(t *testing.T) {
	req := assemble("q", []Passage{{Text: "p"}}, nil, false)
	assert.Contains(t, req.System, "Answer from the supplied context")
	assert.Contains(t, req.System, FallbackAnswer)
	assert.NotContains(t, req.System, "HTML")
}

func TestAssembleHTMLMode(t *testing.T) {
	req := assemble("q", []Passage{{Text: "p"}}, nil, true)
	assert.Contains(t, req.System, "HTML")
	for _, tag := range []string{"<ul>", "<ol>", "<li>", "<p>", "<br>", "<h2>", "<h3>", "<b>", "<strong>"} {
		assert.Contains(t, req.System, tag)
	}
}

func TestAssembleSentinelHasNoSource(t *testing.T) {
	req := assemble("q", []Passage{{Text: NotFoundPassage}}, nil, false)
	grounding := req.Messages[0].Content
	assert.Contains(t, grounding, NotFoundPassage)
	assert.False(t, strings.Contains(grounding, "Source:"))
}
