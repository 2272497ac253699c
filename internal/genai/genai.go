// Package genai provides the remote text-completion client for the
// FitFriends bot, speaking to any OpenAI-compatible endpoint (OpenRouter by
// default).
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// Default client configuration.
const (
	// DefaultBaseURL points at the OpenRouter OpenAI-compatible API.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is the completion model used unless overridden.
	DefaultModel = "mistralai/mistral-7b-instruct:free"
	// DefaultMaxTokens bounds the generated reply length per call.
	DefaultMaxTokens = 500
	// DefaultTimeout bounds a single completion call so the pipeline always
	// reaches a success or fallback outcome in finite time.
	DefaultTimeout = 30 * time.Second
)

// DefaultSystemPrompt is the coach persona sent with every completion request.
const DefaultSystemPrompt = `Ты - профессиональный AI-фитнес тренер и нутрициолог. Ты помогаешь с:
- Персональными тренировками
- Планами питания
- Мотивацией и поддержкой
- Ответами на спортивные вопросы

Будь дружелюбным, профессиональным и мотивирующим. Давай конкретные советы.`

// Internal error taxonomy. These are logging-only classifications: the
// response pipeline collapses all of them into the fallback path.
var (
	// ErrTransport marks network or connection failures.
	ErrTransport = errors.New("completion transport failure")
	// ErrUpstreamStatus marks non-success HTTP statuses from the endpoint.
	ErrUpstreamStatus = errors.New("completion upstream status failure")
	// ErrMalformedResponse marks success statuses with an unusable payload.
	ErrMalformedResponse = errors.New("completion response malformed")
)

// completionService defines the minimal chat-completion surface used by the
// client, allowing tests to substitute a mock.
type completionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	MaxTokens    int64
	Timeout      time.Duration
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the API key, overriding $OPENROUTER_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL sets the completion endpoint base URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel sets the completion model identifier.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithSystemPrompt replaces the default coach persona.
func WithSystemPrompt(prompt string) Option {
	return func(o *Opts) { o.SystemPrompt = prompt }
}

// WithMaxTokens bounds the generated reply length per call.
func WithMaxTokens(n int64) Option {
	return func(o *Opts) { o.MaxTokens = n }
}

// WithTimeout bounds the duration of a single completion call.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the chat-completion service. Each call builds a fresh request;
// there is no shared mutable state between concurrent calls.
type Client struct {
	chat         completionService
	model        string
	systemPrompt string
	maxTokens    int64
	timeout      time.Duration
}

// NewClient initializes a GenAI client. The API key falls back to the
// OPENROUTER_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		BaseURL:      DefaultBaseURL,
		Model:        DefaultModel,
		SystemPrompt: DefaultSystemPrompt,
		MaxTokens:    DefaultMaxTokens,
		Timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}
	slog.Debug("genai.NewClient: creating client", "base_url", cfg.BaseURL, "model", cfg.Model, "max_tokens", cfg.MaxTokens)

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey), option.WithBaseURL(cfg.BaseURL))
	return &Client{
		chat:         &cli.Chat.Completions,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		timeout:      cfg.Timeout,
	}, nil
}

// buildMessages flattens the trailing history window into alternating
// user/assistant messages between the system persona and the new message.
func (c *Client) buildMessages(userMessage string, history []models.ConversationTurn) []openai.ChatCompletionMessageParamUnion {
	window := history
	if len(window) > models.CompletionHistoryWindow {
		window = window[len(window)-models.CompletionHistoryWindow:]
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(window)+2)
	messages = append(messages, openai.SystemMessage(c.systemPrompt))
	for _, turn := range window {
		messages = append(messages, openai.UserMessage(turn.UserMessage))
		messages = append(messages, openai.AssistantMessage(turn.BotResponse))
	}
	return append(messages, openai.UserMessage(userMessage))
}

// Complete generates a reply to userMessage given the conversation history.
// Errors are classified into the internal taxonomy; callers are expected to
// substitute a fallback reply rather than surface them.
func (c *Client) Complete(ctx context.Context, userMessage string, history []models.ConversationTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  c.buildMessages(userMessage, history),
		MaxTokens: openai.Int(c.maxTokens),
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", classifyError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty message content", ErrMalformedResponse)
	}
	return content, nil
}

// classifyError maps a client error into the internal taxonomy.
func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d: %v", ErrUpstreamStatus, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
