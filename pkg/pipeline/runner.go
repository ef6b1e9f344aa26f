package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/viewsplit/pkg/cache"
	"github.com/matzehuels/viewsplit/pkg/core/dataset"
	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/core/partition"
	"github.com/matzehuels/viewsplit/pkg/core/split"
	"github.com/matzehuels/viewsplit/pkg/errors"
	splitio "github.com/matzehuels/viewsplit/pkg/io"
	"github.com/matzehuels/viewsplit/pkg/observability"
	"github.com/matzehuels/viewsplit/pkg/render"
)

// Cache key types reported to observability hooks.
const (
	keyTypeSplit    = "split"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// SplitTTL is how long split results stay cached. Zero means cache.TTLSplit.
	SplitTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs resolve → split → render with caching.
func (r *Runner) Execute(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if ds == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset is nil")
	}
	logger := r.logger(opts)

	data, err := splitio.MarshalDataset(ds)
	if err != nil {
		return nil, fmt.Errorf("hash dataset: %w", err)
	}
	result := &Result{DatasetHash: cache.Hash(data)}

	// Stage 1: Resolve
	resolveStart := time.Now()
	step, err := r.ResolveStepSize(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Params = opts.Params(step)
	result.Stats.ResolveTime = time.Since(resolveStart)

	logger.Debug("resolved step size",
		"step", step,
		"target", result.Params.TargetSize,
		"overlap", result.Params.Overlap)

	// Stage 2: Split
	splitStart := time.Now()
	res, hit, err := r.SplitWithCacheInfo(ctx, ds, result.DatasetHash, result.Params, opts)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	result.Split = res
	result.Stats.SplitTime = time.Since(splitStart)
	result.Stats.Entities = len(ds.Entities)
	result.Stats.Tiles = len(res.Entities)
	result.Stats.MaxSpread = res.MaxSpread
	result.CacheInfo.SplitHit = hit

	logger.Info("split dataset",
		"entities", result.Stats.Entities,
		"tiles", result.Stats.Tiles,
		"max_spread", result.Stats.MaxSpread,
		"cached", hit,
		"duration", result.Stats.SplitTime)

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.RenderWithCacheInfo(ctx, res, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = hit

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// ResolveStepSize returns opts.MinStepSize when set, and otherwise the
// least common multiple of the coarsest pyramid factors of ds.
func (r *Runner) ResolveStepSize(ctx context.Context, ds *dataset.Dataset, opts Options) ([]int64, error) {
	if len(opts.MinStepSize) > 0 {
		return slices.Clone(opts.MinStepSize), nil
	}

	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, len(ds.Entities))
	start := time.Now()

	step, err := r.resolve(ds, opts)
	hooks.OnResolveComplete(ctx, step, time.Since(start), err)
	return step, err
}

func (r *Runner) resolve(ds *dataset.Dataset, opts Options) ([]int64, error) {
	dims, err := ds.NumDimensions()
	if err != nil {
		return nil, err
	}
	if dims != len(opts.TargetSize) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"dataset has %d dimensions, target_size has %d values", dims, len(opts.TargetSize))
	}
	return partition.ResolveStepSize(dims, ds.Pyramids)
}

// SplitWithCacheInfo splits ds with resolved params and reports whether the
// result came from the cache.
func (r *Runner) SplitWithCacheInfo(ctx context.Context, ds *dataset.Dataset, datasetHash string, params partition.Params, opts Options) (*split.Result, bool, error) {
	key := r.Keyer.SplitKey(datasetHash, opts.SplitKeyOpts())
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			res, err := splitio.ReadResult(bytes.NewReader(data))
			if err == nil {
				cacheHooks.OnCacheHit(ctx, keyTypeSplit)
				return res, true, nil
			}
			// If deserialization fails, fall through to recompute
			r.logger(opts).Warn("discarding unreadable cache entry", "key", key, "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeSplit)
	}

	hooks := observability.Pipeline()
	hooks.OnSplitStart(ctx, len(ds.Entities))
	start := time.Now()

	res, err := split.Split(ctx, ds, split.Spec{
		TargetSize:             params.TargetSize,
		Overlap:                params.Overlap,
		MinStepSize:            params.StepSize,
		Optimize:               params.Optimize,
		IlluminationsFromTiles: opts.IlluminationsFromTiles,
		Workers:                opts.Workers,
	})
	if err != nil {
		hooks.OnSplitComplete(ctx, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnSplitComplete(ctx, len(res.Entities), res.MaxSpread, time.Since(start), nil)

	var buf bytes.Buffer
	if err := splitio.WriteResult(res, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), r.splitTTL()); err != nil {
			r.logger(opts).Warn("cache write failed", "key", key, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, keyTypeSplit, buf.Len())
		}
	}

	return res, false, nil
}

// Plan partitions a single entity of the given size without generating
// identifiers. Without opts.MinStepSize every axis has step 1.
func (r *Runner) Plan(size []int64, opts Options) (*PlanResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateDimensions("size", size, len(opts.TargetSize)); err != nil {
		return nil, err
	}

	step := opts.MinStepSize
	if len(step) == 0 {
		step = make([]int64, len(size))
		for d := range step {
			step[d] = 1
		}
	}
	params := opts.Params(step)

	tiles, err := partition.Distribute(size, params)
	if err != nil {
		return nil, err
	}
	extent, err := interval.FromSize(size)
	if err != nil {
		return nil, err
	}
	return &PlanResult{
		Params: params,
		Axes:   params.Plan(extent),
		Tiles:  tiles,
	}, nil
}

// RenderWithCacheInfo renders the identifier map of res in every requested
// format and reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *split.Result, opts Options) (map[string][]byte, bool, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := splitio.WriteResult(res, &buf); err != nil {
		return nil, false, fmt.Errorf("serialize result for cache key: %w", err)
	}
	resultHash := cache.Hash(buf.Bytes())
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
			continue
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)
		allCached = false

		data, err := render.Render(ctx, res, format, render.Options{Detailed: opts.Detailed})
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return artifacts, allCached, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// logger returns the options' logger if set, else the runner's.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func (r *Runner) splitTTL() time.Duration {
	if r.SplitTTL > 0 {
		return r.SplitTTL
	}
	return cache.TTLSplit
}
