// Package genai drafts product descriptions using the OpenAI API.
//
// The wizard's description step offers a "Suggest" choice; when the operator
// takes it, the suggested text is fed back through the wizard as if the
// operator had typed it, so the engine never knows the copy was generated.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoChoicesReturned indicates the API responded without any completion choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// DefaultModel is the completion model used when none is configured.
const DefaultModel = openai.ChatModelGPT4oMini

const suggestionSystemPrompt = "You write product descriptions for a small clothing shop. " +
	"Given a product name, reply with one enticing description of at most two sentences. " +
	"Reply with the description only, no preamble and no quotes."

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// sdkChatService adapts the OpenAI SDK client to chatService.
type sdkChatService struct {
	client openai.Client
}

func (s sdkChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
	// Model overrides DefaultModel.
	Model string
}

// Option defines a functional option for configuring the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(o *Opts) {
		o.Model = model
	}
}

// Client wraps the OpenAI chat completion service for description suggestions.
type Client struct {
	chat  chatService
	model string
}

// NewClient initializes a GenAI client. The API key comes from options or the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	slog.Debug("GenAI client initialized", "model", model)
	return &Client{chat: sdkChatService{client: cli}, model: model}, nil
}

// SuggestDescription generates a short product description from the product name.
func (c *Client) SuggestDescription(ctx context.Context, productName string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(suggestionSystemPrompt),
			openai.UserMessage(productName),
		},
		MaxCompletionTokens: openai.Int(150),
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		slog.Error("GenAI SuggestDescription failed", "error", err, "product", productName)
		return "", fmt.Errorf("failed to generate description for %s: %w", productName, err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI SuggestDescription returned no choices", "product", productName)
		return "", ErrNoChoicesReturned
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("GenAI SuggestDescription succeeded", "product", productName, "length", len(out))
	return out, nil
}
