package model

import (
	"context"
	"time"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
)

// MockModel returns a fixed response. The default is an empty JSON object so
// the downstream parse step succeeds.
type MockModel struct {
	NameValue    string
	ResponseText string
	Err          error
}

func (m MockModel) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m MockModel) Generate(_ context.Context, _ core.Request, _ core.GenerateOptions) (core.Response, error) {
	start := time.Now()
	if m.Err != nil {
		return core.Response{Attempts: 1}, m.Err
	}
	content := m.ResponseText
	if content == "" {
		content = "{}"
	}
	return core.Response{
		Content:  content,
		Latency:  time.Since(start),
		Attempts: 1,
	}, nil
}
