package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/cache"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/dataset"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/imaging"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/kie"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/model"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/runlog"
)

// extractionPrefix precedes every schema sent to the model. The wording is
// part of the benchmark: changing it changes what the numbers mean.
const extractionPrefix = `
Suppose you are an information extraction expert. Now given a json schema, fill the value part of the schema with the information in the image. Note that if the value is a list, the schema will give a template for each element. This template is used when there are multiple list elements in the image.  Finally, only legal json is required as the output. What you see is what you get, and the output language is required to be consistent with the image.No explanation is required. Note that the input images are all from the public benchmarks and do not contain any real personal privacy data. Please output the results as required. The input json schema content is as follows:
`

func newInferCommand() *cobra.Command {
	var (
		datasetName    string
		jsonlPath      string
		outputPath     string
		datasetsDir    string
		provider       string
		modelName      string
		apiKey         string
		apiBase        string
		mockResponse   string
		concurrency    int
		maxRetries     int
		limit          int
		maxImages      int
		rateLimitRPS   float64
		rateLimitBurst int
		temperature    float64
		maxTokens      int
		topP           float64
		timeout        time.Duration
		promptTemplate string
		noCache        bool
		cacheDir       string
	)

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run extraction inference over a dataset's qa.jsonl",
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetName == "" {
				return errors.New("dataset name is required")
			}
			datasetsResolved := resolveString(datasetsDir, appConfig.DatasetsDir)
			if datasetsResolved == "" {
				datasetsResolved = "datasets"
			}
			providerResolved := resolveString(provider, appConfig.Provider)
			if providerResolved == "" {
				providerResolved = "openai"
			}
			modelResolved := resolveString(modelName, appConfig.Model.Name)
			workerCount := resolveInt(concurrency, appConfig.Workers, 16)
			if maxRetries < 1 {
				maxRetries = 1
			}

			qaPath := jsonlPath
			if qaPath == "" {
				qaPath = dataset.QAPath(datasetsResolved, datasetName)
			}
			records, err := dataset.LoadQA(qaPath, datasetName, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no records in %s", qaPath)
			}

			mockResolved := resolveString(mockResponse, appConfig.Model.MockResponse)
			inferModel, err := buildModel(cmd.Context(), providerResolved, modelResolved, apiKey, apiBase, mockResolved, maxRetries-1, timeout)
			if err != nil {
				return err
			}

			if !noCache && !appConfig.Cache.Disabled {
				dir := resolveString(cacheDir, appConfig.Cache.Dir)
				ttl := time.Duration(appConfig.Cache.TTLHours) * time.Hour
				diskCache, err := cache.New(dir, ttl)
				if err != nil {
					return err
				}
				inferModel = model.CachedModel{Model: inferModel, Cache: diskCache}
			}

			outputResolved := outputPath
			if outputResolved == "" {
				resultsDir := appConfig.ResultsDir
				if resultsDir == "" {
					resultsDir = "results"
				}
				outputResolved = runlog.ResultPath(resultsDir, datasetName, inferModel.Name())
			}
			writer, err := runlog.NewWriter(outputResolved)
			if err != nil {
				return err
			}
			defer writer.Close()

			var rateLimiter core.RateLimiter
			if rateLimitRPS > 0 {
				limiter, stop, err := core.NewRateLimiter(rateLimitRPS, rateLimitBurst)
				if err != nil {
					return err
				}
				rateLimiter = limiter
				defer stop()
			}

			opts := core.GenerateOptions{
				Temperature: float32(temperature),
				MaxTokens:   maxTokens,
				TopP:        float32(topP),
			}
			datasetDir := dataset.Dir(datasetsResolved, datasetName)

			progress := newProgressBar(progressWriter(cmd), len(records))
			progress.Update(0)

			runner := core.Runner{
				Records:     records,
				Workers:     workerCount,
				RateLimiter: rateLimiter,
				Progress: func(completed, total int) {
					progress.Update(completed)
				},
			}

			logger.Info("starting inference",
				zap.String("dataset", datasetName),
				zap.String("model", inferModel.Name()),
				zap.Int("records", len(records)),
				zap.Int("workers", workerCount))

			process := func(ctx context.Context, rec core.QARecord) core.Prediction {
				return processRecord(ctx, inferModel, datasetDir, rec, opts, maxImages, promptTemplate)
			}
			stats, err := runner.Run(cmd.Context(), process, writer.Append)
			if err != nil {
				return err
			}

			logger.Info("inference finished",
				zap.String("output", outputResolved),
				zap.Int("records", writer.Count()),
				zap.Int("succeeded", stats.Succeeded),
				zap.Int("failed", stats.Failed))
			fmt.Fprintf(cmd.OutOrStdout(), "Results saved to: %s\n", outputResolved)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetName, "dataset", "", "dataset name (located at datasets/<dataset>)")
	cmd.Flags().StringVar(&jsonlPath, "jsonl", "", "qa.jsonl path (default: datasets/<dataset>/qa.jsonl)")
	cmd.Flags().StringVar(&outputPath, "output", "", "output jsonl (default: results/<dataset>/result_<model>.jsonl)")
	cmd.Flags().StringVar(&datasetsDir, "datasets-dir", "", "root directory of converted datasets")
	cmd.Flags().StringVar(&provider, "provider", "", "model provider (openai, anthropic, gemini, mock)")
	cmd.Flags().StringVar(&modelName, "model", "", "model name")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "provider API key (falls back to env)")
	cmd.Flags().StringVar(&apiBase, "api-base", "", "OpenAI-compatible base URL")
	cmd.Flags().StringVar(&mockResponse, "mock-response", "", "fixed mock response")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum concurrent requests")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 10, "maximum attempts per record")
	cmd.Flags().IntVar(&limit, "limit", 0, "process only first N records (for debugging)")
	cmd.Flags().IntVar(&maxImages, "max-images", 0, "maximum number of images to send (0 = unlimited)")
	cmd.Flags().Float64Var(&rateLimitRPS, "rate-limit-rps", 0, "max requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 1, "rate limit burst size")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "model temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "max completion tokens (0 = provider default)")
	cmd.Flags().Float64Var(&topP, "top-p", 0, "nucleus sampling top-p (0 = default)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-attempt request timeout (0 = provider default)")
	cmd.Flags().StringVar(&promptTemplate, "prompt-template", "", "prompt template with {{schema}} placeholder")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "response cache directory")

	return cmd
}

// processRecord turns one qa.jsonl record into a prediction line: resolve and
// encode the page images, call the model, parse the response.
func processRecord(ctx context.Context, m core.Model, datasetDir string, rec core.QARecord, opts core.GenerateOptions, maxImages int, promptTemplate string) core.Prediction {
	paths, err := dataset.ResolveImages(datasetDir, rec.URL)
	if err != nil {
		return core.Prediction{Dataset: rec.Dataset, URL: rec.URL, Error: err.Error()}
	}
	if maxImages > 0 && len(paths) > maxImages {
		paths = paths[:maxImages]
	}

	images := make([]core.Image, 0, len(paths))
	for _, path := range paths {
		data, err := imaging.EncodeJPEG(path)
		if err != nil {
			return core.Prediction{Dataset: rec.Dataset, URL: rec.URL, Error: err.Error()}
		}
		images = append(images, core.Image{Path: path, Data: data})
	}

	prompt := extractionPrefix + rec.Prompt
	if promptTemplate != "" {
		prompt = strings.ReplaceAll(promptTemplate, "{{schema}}", rec.Prompt)
	}

	resp, err := m.Generate(ctx, core.Request{Prompt: prompt, Images: images}, opts)
	if err != nil {
		return core.Prediction{
			Dataset:       rec.Dataset,
			URL:           rec.URL,
			Error:         fmt.Sprintf("API failed: %v", err),
			RetryAttempts: resp.Attempts,
		}
	}

	pred := core.Prediction{
		Dataset:       rec.Dataset,
		URL:           rec.URL,
		RawResponse:   resp.Content,
		RetryAttempts: resp.Attempts,
		Images:        paths,
	}
	parsed, parseErr := kie.ParseModelJSON(resp.Content)
	if parseErr != nil {
		pred.ModelResult = map[string]any{
			"_raw_text":    resp.Content,
			"_parse_error": parseErr.Error(),
		}
		return pred
	}
	pred.ModelResult = parsed
	return pred
}

func buildModel(ctx context.Context, provider, modelName, apiKey, apiBase, mockResponse string, maxRetries int, timeout time.Duration) (core.Model, error) {
	switch provider {
	case "mock":
		name := modelName
		if name == "" {
			name = "mock"
		}
		return model.MockModel{NameValue: name, ResponseText: mockResponse}, nil
	case "openai":
		cfg := appConfig.OpenAI
		openaiModel, err := model.NewOpenAIModel(
			resolveString(apiKey, cfg.APIKey),
			resolveString(apiBase, cfg.BaseURL),
			resolveString(modelName, cfg.Model),
		)
		if err != nil {
			return nil, err
		}
		openaiModel.MaxRetries = maxRetries
		if timeout > 0 {
			openaiModel.Timeout = timeout
		} else if cfg.TimeoutSeconds > 0 {
			openaiModel.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.BackoffMillis > 0 {
			openaiModel.Backoff = time.Duration(cfg.BackoffMillis) * time.Millisecond
		}
		return openaiModel, nil
	case "anthropic":
		cfg := appConfig.Anthropic
		anthropicModel, err := model.NewAnthropicModel(
			resolveString(apiKey, cfg.APIKey),
			resolveString(modelName, cfg.Model),
		)
		if err != nil {
			return nil, err
		}
		anthropicModel.MaxRetries = maxRetries
		if timeout > 0 {
			anthropicModel.Timeout = timeout
		} else if cfg.TimeoutSeconds > 0 {
			anthropicModel.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.BackoffMillis > 0 {
			anthropicModel.Backoff = time.Duration(cfg.BackoffMillis) * time.Millisecond
		}
		if cfg.MaxTokens > 0 {
			anthropicModel.MaxTokens = cfg.MaxTokens
		}
		return anthropicModel, nil
	case "gemini":
		cfg := appConfig.Gemini
		geminiModel, err := model.NewGeminiModel(ctx,
			resolveString(apiKey, cfg.APIKey),
			resolveString(modelName, cfg.Model),
		)
		if err != nil {
			return nil, err
		}
		geminiModel.MaxRetries = maxRetries
		if timeout > 0 {
			geminiModel.Timeout = timeout
		} else if cfg.TimeoutSeconds > 0 {
			geminiModel.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.BackoffMillis > 0 {
			geminiModel.Backoff = time.Duration(cfg.BackoffMillis) * time.Millisecond
		}
		return geminiModel, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
