// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package optimizer implements the language-neutral AST rewrites of
// spec §4.8: constant folding, common-subexpression elimination (bind
// and block emission), and identifier inlining. Every pass is driven
// entirely through common/ast's navigable view and mutator primitives;
// none mutates its input AST in place (spec §4.8's "operate through the
// mutator").
package optimizer

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/exprcel/cel/checker"
	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
)

// DefaultIterationLimit bounds the number of rewrite steps any single
// ASTOptimizer pass may perform, independent of the runtime's
// comprehension iteration limit (spec §4.9: "the source uses
// independent limits").
const DefaultIterationLimit = 10_000

// Context carries the fresh-id allocator, a shared iteration budget,
// and diagnostics collection across every ASTOptimizer a StaticOptimizer
// runs in sequence.
type Context struct {
	Fac ast.ExprFactory

	idGen      func() int64
	iterations int
	iterLimit  int
	errs       []error
}

// NewContext returns a Context seeded so fresh ids never collide with
// any id already present in a (including its macro-call snapshots).
func NewContext(a *ast.AST, iterLimit int) *Context {
	if iterLimit <= 0 {
		iterLimit = DefaultIterationLimit
	}
	return &Context{
		Fac:       ast.NewExprFactory(),
		idGen:     ast.NewIDGenerator(ast.MaxID(a)),
		iterLimit: iterLimit,
	}
}

// NextID returns a fresh expression id, valid for exactly one new node.
func (c *Context) NextID() int64 { return c.idGen() }

// Tick consumes one unit of the shared iteration budget, returning an
// error once the budget is exhausted (spec §4.9's
// "MaxIterationCountReached").
func (c *Context) Tick() error {
	c.iterations++
	if c.iterations > c.iterLimit {
		if glog.V(2) {
			glog.Infof("optimizer pass exceeded iteration limit of %d", c.iterLimit)
		}
		return fmt.Errorf("optimizer exceeded iteration limit of %d", c.iterLimit)
	}
	return nil
}

// ReportError records a non-fatal diagnostic; StaticOptimizer.Optimize
// returns the first reported error after a pass completes.
func (c *Context) ReportError(err error) { c.errs = append(c.errs, err) }

// ASTOptimizer is a single named rewrite pass over a checked AST,
// producing a new checked-or-checkable AST (spec §4.8's
// `optimize(ast) -> ast` contract).
type ASTOptimizer interface {
	// Optimize rewrites a (a Copy, never the caller's original) and
	// returns the result. Errors are reported via ctx.ReportError rather
	// than a return value, matching every pass's shared signature.
	Optimize(ctx *Context, a *ast.AST) *ast.AST
}

// StaticOptimizer applies a fixed sequence of ASTOptimizer passes to a
// checked AST, recomputing type/reference annotations via env between
// passes so that every later pass — and the planner downstream — sees a
// consistent, fully re-checked AST (mirrors the teacher's
// StaticOptimizer.Optimize recheck-between-passes design).
type StaticOptimizer struct {
	env        *checker.Env
	optimizers []ASTOptimizer
	iterLimit  int
}

// NewStaticOptimizer returns a StaticOptimizer that checks rewritten
// output against env and applies passes in order.
func NewStaticOptimizer(env *checker.Env, passes ...ASTOptimizer) *StaticOptimizer {
	return &StaticOptimizer{env: env, optimizers: passes, iterLimit: DefaultIterationLimit}
}

// Optimize runs every configured pass over checked in order, copying
// before each pass and re-checking the result before handing it to the
// next pass.
func (o *StaticOptimizer) Optimize(src common.Source, checked *ast.AST) (*ast.AST, error) {
	current := checked
	for _, pass := range o.optimizers {
		if glog.V(2) {
			glog.Infof("running optimizer pass %T", pass)
		}
		ctx := NewContext(current, o.iterLimit)
		rewritten := pass.Optimize(ctx, ast.Copy(current))
		if len(ctx.errs) > 0 {
			if glog.V(2) {
				glog.Infof("optimizer pass %T reported error: %v", pass, ctx.errs[0])
			}
			return nil, ctx.errs[0]
		}
		reChecked, errs := checker.Check(stripAnnotations(rewritten), src, o.env)
		if !errs.Empty() {
			return nil, fmt.Errorf("optimizer produced an ill-typed rewrite: %s", errs.ToDisplayString())
		}
		current = reChecked
	}
	return current, nil
}

// stripAnnotations returns a parse-only AST view over checked's
// expression tree and source info so it can be fed back through
// checker.Check: every pass works over checked shapes (it may read
// current type/reference info while rewriting) but the checker is the
// sole owner of producing a fresh, internally consistent overlay.
func stripAnnotations(a *ast.AST) *ast.AST {
	return ast.NewAST(a.Expr(), a.SourceInfo())
}
