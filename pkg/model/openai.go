package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/imaging"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIModel talks to any OpenAI-compatible chat-completions endpoint;
// BaseURL selects self-hosted or proxy deployments.
type OpenAIModel struct {
	Client     openai.Client
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

func NewOpenAIModel(apiKey, baseURL, modelName string) (*OpenAIModel, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("openai: api key is required (--api-key, config, or OPENAI_API_KEY)")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIModel{
		Client:     openai.NewClient(opts...),
		Model:      modelName,
		Timeout:    120 * time.Second,
		MaxRetries: 9,
		Backoff:    500 * time.Millisecond,
	}, nil
}

func (o OpenAIModel) Name() string {
	if o.Model == "" {
		return defaultOpenAIModel
	}
	return o.Model
}

func (o OpenAIModel) Generate(ctx context.Context, req core.Request, opts core.GenerateOptions) (core.Response, error) {
	modelName := o.Name()
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := o.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := o.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: imaging.DataURL(img.Data),
		}))
	}
	parts = append(parts, openai.TextContentPart(req.Prompt))

	messages := []openai.ChatCompletionMessageParamUnion{}
	if opts.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(opts.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(parts))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelName),
		Messages: messages,
		// Extraction runs pinned; the endpoint default of 1.0 is never what
		// a benchmark wants.
		Temperature: openai.Float(float64(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(float64(opts.TopP))
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		completion, err := o.Client.Chat.Completions.New(attemptCtx, params)
		cancel()
		if err == nil {
			if len(completion.Choices) == 0 {
				return core.Response{Attempts: attempt + 1}, fmt.Errorf("openai: empty response")
			}
			return core.Response{
				Content: completion.Choices[0].Message.Content,
				TokenUsage: core.TokenUsage{
					PromptTokens:     int(completion.Usage.PromptTokens),
					CompletionTokens: int(completion.Usage.CompletionTokens),
					TotalTokens:      int(completion.Usage.TotalTokens),
				},
				Latency:  time.Since(start),
				Attempts: attempt + 1,
			}, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return core.Response{Attempts: attempt + 1}, err
		}
		lastErr = err

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return core.Response{Attempts: attempt + 1}, ctx.Err()
			case <-time.After(backoff * time.Duration(attempt+1)):
			}
		}
	}

	return core.Response{Attempts: maxRetries + 1}, fmt.Errorf("openai: request failed after %d attempts: %w", maxRetries+1, lastErr)
}
