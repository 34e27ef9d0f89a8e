// Package wasmfunc lets a WebAssembly guest module supply ObjectQL function
// implementations. It loads a compiled module through wazero and exposes
// one of its exported functions as a registry.Callable, marshalling
// arguments and the result as JSON across the guest's linear memory.
//
// This reuses the teacher's WASM dependency, github.com/tetratelabs/wazero,
// the other way around: the teacher compiled its own evaluator to run
// inside a WASM host (cmd/wasm/wasi, cmd/wasm/js); ObjectQL instead embeds
// WASM guest functions inside a normal Go host process, exchanging JSON
// (`{"args":[...]}` in, `{"result":...}` or `{"error":...}` out).
package wasmfunc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/objectql/objectql/pkg/types"
)

// request is the JSON payload written into the guest's memory before
// calling its exported function.
type request struct {
	Args []interface{} `json:"args"`
}

// response is the JSON payload the guest writes back.
type response struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Loader compiles a WASM module once and can produce Callables bound to any
// of its exported functions. A Loader is safe for concurrent use; each call
// of a Callable instantiates a fresh module instance so guest state never leaks
// across calls made concurrently by different Evaluators.
type Loader struct {
	runtime wazero.Runtime
	module  wazero.CompiledModule
}

// NewLoader compiles wasmBytes. The caller must call Close when done.
func NewLoader(ctx context.Context, wasmBytes []byte) (*Loader, error) {
	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmfunc: instantiate WASI: %w", err)
	}
	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("wasmfunc: compile module: %w", err)
	}
	return &Loader{runtime: rt, module: compiled}, nil
}

// Close releases the runtime and everything it holds, including every
// module instantiated from it.
func (l *Loader) Close(ctx context.Context) error {
	return l.runtime.Close(ctx)
}

// Callable binds exportName to a registry.Callable-shaped function. The
// guest export must have the signature `func(ptr, len uint32) (packedPtrLen uint64)`:
// it reads a JSON-encoded request from its own memory at [ptr, ptr+len), and
// returns a packed (pointer<<32 | length) pointing at a JSON-encoded
// response written to its own memory, following the convention used by
// wazero-hosted guests that manage their own allocator.
func (l *Loader) Callable(exportName string) func(ctx context.Context, args []types.Value) (types.Value, error) {
	return func(ctx context.Context, args []types.Value) (types.Value, error) {
		modConfig := wazero.NewModuleConfig().WithName("")
		mod, err := l.runtime.InstantiateModule(ctx, l.module, modConfig)
		if err != nil {
			return nil, fmt.Errorf("wasmfunc: instantiate guest: %w", err)
		}
		defer mod.Close(ctx)

		fn := mod.ExportedFunction(exportName)
		if fn == nil {
			return nil, fmt.Errorf("wasmfunc: guest module has no export %q", exportName)
		}
		allocFn := mod.ExportedFunction("alloc")
		if allocFn == nil {
			return nil, fmt.Errorf("wasmfunc: guest module has no export \"alloc\"")
		}

		payload, err := json.Marshal(request{Args: args})
		if err != nil {
			return nil, fmt.Errorf("wasmfunc: marshal args: %w", err)
		}

		results, err := allocFn.Call(ctx, uint64(len(payload)))
		if err != nil {
			return nil, fmt.Errorf("wasmfunc: alloc: %w", err)
		}
		ptr := uint32(results[0])

		if !mod.Memory().Write(ptr, payload) {
			return nil, fmt.Errorf("wasmfunc: writing request out of guest memory bounds")
		}

		packed, err := fn.Call(ctx, uint64(ptr), uint64(len(payload)))
		if err != nil {
			return nil, fmt.Errorf("wasmfunc: call %s: %w", exportName, err)
		}
		resPtr := uint32(packed[0] >> 32)
		resLen := uint32(packed[0])

		raw, ok := mod.Memory().Read(resPtr, resLen)
		if !ok {
			return nil, fmt.Errorf("wasmfunc: reading result out of guest memory bounds")
		}

		var resp response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("wasmfunc: unmarshal result: %w", err)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("wasmfunc: guest error: %s", resp.Error)
		}
		return resp.Result, nil
	}
}
