// Package registry implements ObjectQL's function registry (spec §4.4):
// a name-to-callable map used to evaluate `call` nodes, seeded by default
// with the built-in functions the language requires and extensible by the
// host through Register.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/objectql/objectql/pkg/types"
)

// Callable is a registered function's implementation. It receives its
// already-evaluated arguments and returns a result Value or an error.
// Argument count/type validation is each Callable's own responsibility;
// the registry only owns name lookup and replacement (spec §3 invariant 5:
// "re-registering a name replaces the previous entry").
type Callable func(ctx context.Context, args []types.Value) (types.Value, error)

// Registry is a thread-safe function table.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]Callable
}

// RegistryOption configures the built-in set a new Registry is seeded with.
// Grouped the way the teacher's extension packs group JSONata functions
// (string / numeric / …), even though ObjectQL registers every group by
// default -- spec §4.4 requires the built-ins present unconditionally.
type RegistryOption func(*Registry)

// New creates a Registry pre-populated with every built-in function unless
// told otherwise by opts.
func New(opts ...RegistryOption) *Registry {
	r := &Registry{fns: make(map[string]Callable)}
	if len(opts) == 0 {
		WithStringBuiltins()(r)
		WithNumericBuiltins()(r)
		return r
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces a function. Returns an ArgumentError if name is
// empty or fn is nil (spec §4.4).
func (r *Registry) Register(name string, fn Callable) error {
	if name == "" {
		return types.NewError(types.ErrArgument, "function name must not be empty")
	}
	if fn == nil {
		return types.NewError(types.ErrArgument, "function implementation must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[name] = fn
	return nil
}

// MustRegister panics if Register fails. Intended for package-level
// built-in registration, where a bad call is a programming error.
func (r *Registry) MustRegister(name string, fn Callable) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get looks up a registered function by name.
func (r *Registry) Get(name string) (Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[name]
	return fn, ok
}

// Call invokes the named function, wrapping any failure -- unknown name or
// the callable's own error -- into ObjectQL's error model (spec §7).
func (r *Registry) Call(ctx context.Context, name string, args []types.Value) (types.Value, error) {
	fn, ok := r.Get(name)
	if !ok {
		return nil, types.NewError(types.ErrUnknownFunction, fmt.Sprintf("unknown function: %s", name))
	}
	result, err := fn(ctx, args)
	if err != nil {
		return nil, types.NewError(types.ErrFunctionExecution, fmt.Sprintf("function execution failed: %s", name)).WithCause(err)
	}
	return result, nil
}
