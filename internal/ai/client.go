// Package ai classifies crime descriptions with an OpenAI compatible chat completion API.
package ai

import (
	"context"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"strings"
	"time"
)

// Verdict is the classifier outcome for a crime description.
type Verdict string

const (
	VerdictYes   Verdict = "Yes"
	VerdictNo    Verdict = "No"
	VerdictError Verdict = "Error"
)

const (
	DefaultModel = openai.GPT4
	temperature  = 0.1
	maxTokens    = 5
	callTimeout  = 30 * time.Second
	systemPrompt = "You are a crime validation assistant. Your task is to determine if the given description " +
		"constitutes a valid crime. Respond with only 'Yes' if it's a valid crime, or 'No' if it's not a crime or " +
		"too minor to report."
	userPromptPrefix = "Is this a valid crime to report: "
)

type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a classifier client. An empty baseURL uses the OpenAI API and an empty model uses DefaultModel.
func NewClient(apiKey string, baseURL string, model string, logger *slog.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.With(slog.String("source", "ai")),
	}
}

// ClassifyCrime asks the model whether description is a crime worth reporting.
//
// Only an exact "Yes" reply is accepted. Any API failure yields VerdictError together with the error.
func (c *Client) ClassifyCrime(ctx context.Context, description string) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	start := time.Now()
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:       c.model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},          //nolint:exhaustruct // plain text
				{Role: openai.ChatMessageRoleUser, Content: UserPrompt(description)}, //nolint:exhaustruct // plain text
			},
		},
	)
	if err != nil {
		return VerdictError, errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return VerdictError, errors.New("no completion choices")
	}

	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	verdict := VerdictNo
	if reply == string(VerdictYes) {
		verdict = VerdictYes
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "classified crime description",
		slog.String("reply", reply),
		slog.String("verdict", string(verdict)),
		slog.Duration("duration", time.Since(start)))
	return verdict, nil
}

// UserPrompt is the user message sent for description.
func UserPrompt(description string) string {
	return userPromptPrefix + description
}
