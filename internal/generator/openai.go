package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/model"
)

// OpenAIConfig configures the OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string // optional, for compatible gateways and tests
	Model     string
	MaxTokens int
}

// OpenAIGenerator asks a chat model for the whole bundle in one call.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

func NewOpenAIGenerator(cfg OpenAIConfig, logger *zap.Logger) *OpenAIGenerator {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2500
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, contact ContactProfile, product ProductInfo) (model.MessageBundle, error) {
	req := openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(contact, product)},
		},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.logger.Warn("message generation failed",
			zap.String("contact", contact.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return model.MessageBundle{}, fmt.Errorf("openai chat failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.MessageBundle{}, fmt.Errorf("%w: no choices returned", ErrMalformedOutput)
	}

	g.logger.Debug("message bundle generated",
		zap.String("contact", contact.Name),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)))

	return ParseBundle(resp.Choices[0].Message.Content)
}

var _ Generator = (*OpenAIGenerator)(nil)
