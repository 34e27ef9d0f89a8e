// Package parser implements a hand-written recursive-descent parser for
// ObjectQL, the embeddable boolean-predicate query language.
//
// # Architecture
//
//   - Lexer: tokenizes the query text (lexer.go, tokens.go)
//   - Parser: builds the AST from the token stream (parser_impl.go), one
//     method per grammar production, with limited backtracking where the
//     grammar's condition alternatives share a common prefix
//
// Compile is the entry point most callers want; Parse is a thin alias kept
// for symmetry with the rest of the package's naming.
package parser

import (
	"github.com/objectql/objectql/pkg/types"
)

// Parse parses an ObjectQL query and returns the compiled Expression.
func Parse(query string) (*types.Expression, error) {
	p := NewParser(query)
	return p.Parse()
}

// Compile parses an ObjectQL query with the given options.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(query, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth is recorded with the parser's options (NewParser defaults it
	// to 100). The parser does not check nesting depth against it, so deeply
	// nested queries are not limited.
	MaxDepth int
}

// WithMaxDepth sets CompileOptions.MaxDepth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
