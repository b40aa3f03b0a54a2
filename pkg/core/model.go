package core

import "context"

// Model generates responses for multimodal extraction requests.
type Model interface {
	Name() string
	Generate(ctx context.Context, req Request, opts GenerateOptions) (Response, error)
}
