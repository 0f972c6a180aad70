package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/ragserve/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new chat generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// buildContent converts a system prompt plus conversation messages into
// the langchaingo message sequence.
func buildContent(system string, messages []ai.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages)+1)
	if system != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		if msg.Role == ai.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	return content
}

// Complete runs a blocking chat completion and returns the full answer.
func (g *Generator) Complete(ctx context.Context, system string, messages []ai.Message) (string, error) {
	response, err := g.client.GenerateContent(ctx, buildContent(system, messages),
		llms.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("chat completion failed", "err", err)
		return "", err
	}

	if len(response.Choices) == 0 {
		g.logger.Warn("model returned no choices")
		return "", errors.New("model returned no choices")
	}

	return response.Choices[0].Content, nil
}

// Stream runs a streaming chat completion. Fragments are forwarded in
// generation order. The producing goroutine stops promptly when ctx is
// cancelled; a backend failure mid-stream is delivered as one final
// Fragment with Err set before the channel closes.
func (g *Generator) Stream(ctx context.Context, system string, messages []ai.Message) (<-chan ai.Fragment, error) {
	content := buildContent(system, messages)
	out := make(chan ai.Fragment)

	go func() {
		defer close(out)

		_, err := g.client.GenerateContent(ctx, content,
			llms.WithTemperature(g.temperature),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if len(chunk) == 0 {
					return nil
				}
				select {
				case out <- ai.Fragment{Text: string(chunk)}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}))
		if err != nil && ctx.Err() == nil {
			g.logger.Error("chat stream failed", "err", err)
			select {
			case out <- ai.Fragment{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}
