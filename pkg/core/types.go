package core

import "time"

// QARecord is one line of a dataset's qa.jsonl: an image reference plus the
// JSON schema the model is asked to fill in.
type QARecord struct {
	Dataset string `json:"dataset"`
	URL     string `json:"url"`
	Prompt  string `json:"prompt"`
}

// Image is a prepared (downscaled, JPEG-encoded) document page.
type Image struct {
	Path string
	Data []byte
}

// Request is a multimodal model call: the extraction prompt plus the pages it
// refers to, in page order.
type Request struct {
	Prompt string
	Images []Image
}

// Response is a model response plus basic telemetry. Attempts counts API
// calls made for this response, including the successful one.
type Response struct {
	Content    string        `json:"content"`
	TokenUsage TokenUsage    `json:"token_usage"`
	Latency    time.Duration `json:"latency"`
	Attempts   int           `json:"attempts,omitempty"`
}

// TokenUsage captures token accounting for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Prediction is one line of result_<model>.jsonl. Exactly one of ModelResult
// or Error is set; ModelResult holds either the parsed extraction or, when the
// response never parsed as JSON, a {"_raw_text", "_parse_error"} wrapper so
// scoring can skip the record without losing the raw output.
type Prediction struct {
	Dataset       string   `json:"dataset"`
	URL           string   `json:"url"`
	ModelResult   any      `json:"model_result,omitempty"`
	RawResponse   string   `json:"raw_response,omitempty"`
	RetryAttempts int      `json:"retry_attempts"`
	Images        []string `json:"images,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Failed reports whether the record produced no usable model call at all.
func (p Prediction) Failed() bool {
	return p.Error != ""
}

// GenerateOptions controls model generation behavior.
type GenerateOptions struct {
	Temperature  float32  `json:"temperature"`
	MaxTokens    int      `json:"max_tokens"`
	TopP         float32  `json:"top_p"`
	Stop         []string `json:"stop"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
}
