package sentiment

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/feedbackpulse/pulse/internal/model"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = "claude-3-5-haiku-latest"

const claudeSystemPrompt = `You label citizen feedback for a municipal dashboard.
Reply with exactly one word: positive, neutral, negative, or critical.
Use critical only for urgent safety or health risks.`

// Claude classifies descriptions through the Anthropic API, falling back
// to the keyword rules on any failure.
type Claude struct {
	client   anthropic.Client
	model    string
	fallback Keyword
	logger   *log.Logger
}

// NewClaude creates a Claude-backed classifier. The model may be empty,
// in which case DefaultClaudeModel is used.
func NewClaude(apiKey, modelName string, logger *log.Logger) *Claude {
	if modelName == "" {
		modelName = DefaultClaudeModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
		logger: logger,
	}
}

// Classify implements Classifier.
func (c *Claude) Classify(ctx context.Context, description string) model.Sentiment {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 8,
		System: []anthropic.TextBlockParam{
			{Text: claudeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(description)),
		},
	})
	if err != nil {
		c.logger.Printf("Claude classification failed, using keyword rules: %v", err)
		return c.fallback.Classify(ctx, description)
	}

	var reply string
	for _, block := range msg.Content {
		reply += block.Text
	}

	s := model.Sentiment(strings.ToLower(strings.TrimSpace(reply)))
	if !s.Valid() {
		c.logger.Printf("Claude returned unrecognized label %q, using keyword rules", reply)
		return c.fallback.Classify(ctx, description)
	}
	return s
}
