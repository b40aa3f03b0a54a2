package commands

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	DatasetsDir string          `mapstructure:"datasets_dir"`
	ResultsDir  string          `mapstructure:"results_dir"`
	SourceDir   string          `mapstructure:"source_dir"`
	Provider    string          `mapstructure:"provider"`
	Workers     int             `mapstructure:"workers"`
	Format      string          `mapstructure:"format"`
	Output      string          `mapstructure:"output"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Model       ModelConfig     `mapstructure:"model"`
	OpenAI      OpenAIConfig    `mapstructure:"openai"`
	Anthropic   AnthropicConfig `mapstructure:"anthropic"`
	Gemini      GeminiConfig    `mapstructure:"gemini"`
}

type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	TTLHours int    `mapstructure:"ttl_hours"`
	Disabled bool   `mapstructure:"disabled"`
}

type ModelConfig struct {
	Name         string `mapstructure:"name"`
	MockResponse string `mapstructure:"mock_response"`
}

type OpenAIConfig struct {
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	BackoffMillis  int    `mapstructure:"backoff_millis"`
}

type AnthropicConfig struct {
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	BackoffMillis  int    `mapstructure:"backoff_millis"`
	MaxTokens      int    `mapstructure:"max_tokens"`
}

type GeminiConfig struct {
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	BackoffMillis  int    `mapstructure:"backoff_millis"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".kiebench")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
