package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "github.com/yishak-cs/course-recommender/pkg/errors"
)

const defaultMaxTokens = 1024

// AnthropicOptions configures the Messages API client
type AnthropicOptions struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	BaseURL string // tests only
}

// Anthropic completes prompts with the Anthropic Messages API
type Anthropic struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropic creates a model client. It fails with ErrConfiguration when
// no API key is supplied.
func NewAnthropic(opts AnthropicOptions) (*Anthropic, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", apperrors.ErrConfiguration)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: model name not set", apperrors.ErrConfiguration)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Anthropic{
		client:  anthropic.NewClient(clientOpts...),
		model:   opts.Model,
		timeout: timeout,
	}, nil
}

// Complete implements Completer
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUpstreamModel, err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: empty completion", apperrors.ErrUpstreamModel)
	}
	return text.String(), nil
}
