// Package types defines the core type system for gojexp.
//
// This package contains type definitions for:
//   - Value: the immutable tagged runtime value and its casts, ordering,
//     equality, homogeneity and rendering rules
//   - ASTNode and Block: the parsed tree and the @{...} closures it carries
//   - Expression: one compiled top-level statement
//   - Pattern: java.time style date-time patterns
//   - Error: structured parse and evaluation errors
package types

// Expression is one compiled top-level statement.
//
// An Expression is immutable and safe for concurrent evaluation by multiple
// goroutines.
type Expression struct {
	ast       *ASTNode
	source    string
	optimized bool
	arena     *NodeArena
}

// NewExpression creates a new Expression from an AST.
func NewExpression(ast *ASTNode, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// WithArena attaches the allocator that owns the expression's nodes and
// records which parsing algorithm produced it.
func (e *Expression) WithArena(a *NodeArena, optimized bool) *Expression {
	e.arena = a
	e.optimized = optimized
	return e
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the text the expression was compiled from. Every statement
// of one compilation shares the same source.
func (e *Expression) Source() string {
	return e.source
}

// Optimized reports whether the forward-scanning parser produced the tree.
func (e *Expression) Optimized() bool {
	return e.optimized
}

// String returns the canonical dump of the statement.
func (e *Expression) String() string {
	return e.ast.String()
}
