package model

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicModel struct {
	Client     anthropic.Client
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	MaxTokens  int
}

func NewAnthropicModel(apiKey, modelName string) (*AnthropicModel, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required (--api-key, config, or ANTHROPIC_API_KEY)")
	}
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	return &AnthropicModel{
		Client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		Model:      modelName,
		Timeout:    120 * time.Second,
		MaxRetries: 9,
		Backoff:    500 * time.Millisecond,
		MaxTokens:  4096,
	}, nil
}

func (a AnthropicModel) Name() string {
	if a.Model == "" {
		return defaultAnthropicModel
	}
	return a.Model
}

func (a AnthropicModel) Generate(ctx context.Context, req core.Request, opts core.GenerateOptions) (core.Response, error) {
	modelName := a.Name()
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := a.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := a.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	maxTokens := a.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Images)+1)
	for _, img := range req.Images {
		blocks = append(blocks, anthropic.NewImageBlockBase64("image/jpeg", base64.StdEncoding.EncodeToString(img.Data)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   int64(maxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(float64(opts.Temperature)),
	}
	if opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.SystemPrompt}}
	}
	if opts.TopP > 0 {
		params.TopP = anthropic.Float(float64(opts.TopP))
	}
	if len(opts.Stop) > 0 {
		params.StopSequences = opts.Stop
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		message, err := a.Client.Messages.New(attemptCtx, params)
		cancel()
		if err == nil {
			usage := core.TokenUsage{
				PromptTokens:     int(message.Usage.InputTokens),
				CompletionTokens: int(message.Usage.OutputTokens),
			}
			usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
			return core.Response{
				Content:    extractAnthropicText(message.Content),
				TokenUsage: usage,
				Latency:    time.Since(start),
				Attempts:   attempt + 1,
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

	return core.Response{Attempts: maxRetries + 1}, fmt.Errorf("anthropic: request failed after %d attempts: %w", maxRetries+1, lastErr)
}

func extractAnthropicText(blocks []anthropic.ContentBlockUnion) string {
	var builder strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	return builder.String()
}
