package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiModel struct {
	Client     *genai.Client
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

func NewGeminiModel(ctx context.Context, apiKey, modelName string) (*GeminiModel, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required (--api-key, config, GEMINI_API_KEY, or GOOGLE_API_KEY)")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiModel{
		Client:     client,
		Model:      modelName,
		Timeout:    120 * time.Second,
		MaxRetries: 9,
		Backoff:    500 * time.Millisecond,
	}, nil
}

func (g GeminiModel) Name() string {
	if g.Model == "" {
		return defaultGeminiModel
	}
	return g.Model
}

func (g *GeminiModel) Generate(ctx context.Context, req core.Request, opts core.GenerateOptions) (core.Response, error) {
	modelName := g.Name()
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := g.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := g.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, "image/jpeg"))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature: ptrFloat32(opts.Temperature),
	}
	if opts.SystemPrompt != "" {
		sys := genai.Text(opts.SystemPrompt)
		if len(sys) > 0 && sys[0] != nil {
			config.SystemInstruction = sys[0]
		}
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.TopP > 0 {
		config.TopP = ptrFloat32(opts.TopP)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		result, err := g.Client.Models.GenerateContent(attemptCtx, modelName, contents, config)
		cancel()
		if err == nil {
			content := result.Text()
			if content == "" {
				return core.Response{Attempts: attempt + 1}, fmt.Errorf("gemini: empty response")
			}
			usage := core.TokenUsage{}
			if result.UsageMetadata != nil {
				usage.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
				usage.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
				usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
			}
			return core.Response{
				Content:    content,
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

	return core.Response{Attempts: maxRetries + 1}, fmt.Errorf("gemini: request failed after %d attempts: %w", maxRetries+1, lastErr)
}

func ptrFloat32(x float32) *float32 { return &x }
