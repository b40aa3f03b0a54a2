package model

import (
	"context"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/cache"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
)

// CachedModel serves repeated requests from a disk cache. Re-running a
// benchmark against the same images and prompts then costs nothing.
type CachedModel struct {
	Model core.Model
	Cache *cache.Cache
}

func (c CachedModel) Name() string {
	if c.Model == nil {
		return ""
	}
	return c.Model.Name()
}

func (c CachedModel) Generate(ctx context.Context, req core.Request, opts core.GenerateOptions) (core.Response, error) {
	if c.Model == nil {
		return core.Response{}, nil
	}
	if c.Cache != nil {
		if resp, ok := c.Cache.Get(c.Name(), req, opts); ok {
			return resp, nil
		}
	}
	resp, err := c.Model.Generate(ctx, req, opts)
	if err != nil {
		return core.Response{}, err
	}
	if c.Cache != nil {
		_ = c.Cache.Set(c.Name(), req, opts, resp)
	}
	return resp, nil
}
