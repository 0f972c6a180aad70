// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package answer

import (
	"strings"

	"github.com/poiesic/ragserve/ai"
)

// FallbackAnswer is the fixed sentence returned when no relevant
// information exists or a generation stage fails.
const FallbackAnswer = "Sorry, I do not have enough information to answer this question."

const systemInstruction = `You are an interactive assistant answering questions from a curated document collection.
The grounding context below holds passages retrieved for the user's question, each with its source.

Instructions:
- Answer from the supplied context whenever possible.
- If the context does not answer the question literally but is topically relevant, you may draw a cautious, clearly grounded conclusion from it.
- If no relevant information exists at all, reply exactly: "` + FallbackAnswer + `"`

// Tags the model may emit in HTML output mode. Presentation only,
// carried through the prompt; the output stays untrusted and callers
// must sanitize before rendering.
const htmlInstruction = `
- Format the answer as HTML using only these tags: <ul> <ol> <li> <p> <br> <h2> <h3> <b> <strong>.`

// Request is a fully assembled generation request.
type Request struct {
	// System is the instruction the generator must follow.
	System string
	// Messages is the grounding context, conversation history and the
	// question, in that order.
	Messages []ai.Message
}

// assemble builds the generation request: a grounding block of
// Content/Source entries, the ordered conversation history, and the
// question itself.
func assemble(question string, passages []Passage, history []ai.Message, html bool) Request {
	var grounding strings.Builder
	grounding.WriteString("Context:\n\n")
	for i, p := range passages {
		if i > 0 {
			grounding.WriteString("\n\n")
		}
		grounding.WriteString("Content: ")
		grounding.WriteString(p.Text)
		if p.Source != "" {
			grounding.WriteString("\nSource: ")
			grounding.WriteString(p.Source)
		}
	}

	system := systemInstruction
	if html {
		system += htmlInstruction
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: grounding.String()})
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: question})

	return Request{System: system, Messages: messages}
}
