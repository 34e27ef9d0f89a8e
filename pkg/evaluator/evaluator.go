// Package evaluator implements the ObjectQL tree-walking evaluator
// (spec §4.5): given a compiled Expression and a root value, it produces
// the single Boolean the query's predication evaluates to.
//
// # Example
//
//	eval := evaluator.New()
//	result, err := eval.Eval(ctx, expr, data)
package evaluator

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/objectql/objectql/pkg/cache"
	"github.com/objectql/objectql/pkg/path"
	"github.com/objectql/objectql/pkg/registry"
	"github.com/objectql/objectql/pkg/types"
)

// Evaluator evaluates compiled ObjectQL expressions against data.
type Evaluator struct {
	opts     EvalOptions
	logger   *slog.Logger
	cache    *cache.Cache
	registry *registry.Registry

	patternMu    sync.RWMutex
	patternCache map[string]*regexp.Regexp
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables expression compilation caching keyed by query string.
	Caching bool
	// CacheSize sets the cache's maximum entries; defaults to 256.
	CacheSize int
	// Cache attaches an externally managed cache; implies Caching.
	Cache *cache.Cache
	// Timeout bounds a single Eval call (spec §5: "a host may cap it").
	Timeout time.Duration
	// Debug logs the query text at Debug level when Eval starts.
	Debug bool
	// Logger receives structured evaluation logs.
	Logger *slog.Logger
	// Registry supplies the function table; New() creates one seeded with
	// every built-in when this is nil.
	Registry *registry.Registry
	// InstanceTags resolves "@name" path indices (spec §9's open question).
	InstanceTags path.InstanceTags
}

// EvalOption configures an Evaluator built by New.
type EvalOption func(*EvalOptions)

// New creates an Evaluator with default options: no caching, a 30s timeout,
// the default logger and a Registry carrying every built-in function.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Registry == nil {
		options.Registry = registry.New()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		size := options.CacheSize
		if size <= 0 {
			size = 256
		}
		c = cache.New(size)
	}

	return &Evaluator{
		opts:         options,
		logger:       options.Logger,
		cache:        c,
		registry:     options.Registry,
		patternCache: make(map[string]*regexp.Regexp),
	}
}

// Cache returns the expression cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Register adds or replaces a function in this Evaluator's registry
// (spec §4.4's registration hook, surfaced through the façade as
// `evaluator.register`).
func (e *Evaluator) Register(name string, fn registry.Callable) error {
	return e.registry.Register(name, fn)
}

// Eval evaluates expr's predication against root and returns the resulting
// Boolean (spec §4.5 "Top level": "the result of evaluating the top-level
// predication must be exactly true or false").
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, root types.Value) (bool, error) {
	if expr == nil || expr.AST() == nil {
		return false, types.NewError(types.ErrArgument, "invalid expression")
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	ec := &evalCtx{evaluator: e, root: root}

	if e.opts.Debug {
		e.logger.DebugContext(ctx, "evaluating query", slog.String("query", expr.Source()))
	}

	result, err := ec.evalPredication(ctx, expr.AST())
	if err != nil {
		return false, err
	}
	return result, nil
}

// evalCtx threads the evaluator and the root document through a single
// evaluation call. It carries no mutable state beyond what's set at
// construction, so a single instance is reused for the whole tree walk.
type evalCtx struct {
	evaluator *Evaluator
	root      types.Value
}

// WithCaching enables or disables expression compilation caching.
func WithCaching(enabled bool) EvalOption {
	return func(o *EvalOptions) { o.Caching = enabled }
}

// WithCacheSize sets the maximum number of cached expressions.
func WithCacheSize(size int) EvalOption {
	return func(o *EvalOptions) { o.CacheSize = size }
}

// WithCache attaches an external expression cache.
func WithCache(c *cache.Cache) EvalOption {
	return func(o *EvalOptions) { o.Cache = c }
}

// WithTimeout bounds how long a single Eval call may run.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(o *EvalOptions) { o.Timeout = timeout }
}

// WithDebug makes Eval log the query text at Debug level when it starts.
func WithDebug(enabled bool) EvalOption {
	return func(o *EvalOptions) { o.Debug = enabled }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(o *EvalOptions) { o.Logger = logger }
}

// WithRegistry replaces the function registry outright.
func WithRegistry(r *registry.Registry) EvalOption {
	return func(o *EvalOptions) { o.Registry = r }
}

// WithCustomFunction registers a single function without replacing the rest
// of the default registry.
func WithCustomFunction(name string, fn registry.Callable) EvalOption {
	return func(o *EvalOptions) {
		if o.Registry == nil {
			o.Registry = registry.New()
		}
		o.Registry.MustRegister(name, fn)
	}
}

// WithInstanceTags supplies the table "@name" path indices resolve against.
func WithInstanceTags(tags map[string]int) EvalOption {
	return func(o *EvalOptions) { o.InstanceTags = tags }
}
