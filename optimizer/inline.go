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

package optimizer

import (
	"strings"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/overloads"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/operators"
)

// InlineVariable names a top-level identifier and the expression that
// should replace every unshadowed reference to it.
type InlineVariable struct {
	Name string
	Expr ast.Expr
}

// NewInlineVariable pairs name with the replacement expression every
// unshadowed reference should be rewritten to.
func NewInlineVariable(name string, expr ast.Expr) *InlineVariable {
	return &InlineVariable{Name: name, Expr: expr}
}

// inlineOptimizer substitutes a set of variable references with their
// bound expressions, honoring three hard rules: never inline into a
// name shadowed by a comprehension's
// iter_var/accu_var or a cel.bind/cel.@block binding introduced by CSE,
// never inline a name beginning with `@` (internal), and rewrite a
// presence test over an inlined name into the semantically equivalent
// form over the replacement rather than a literal has() on a constant.
type inlineOptimizer struct {
	vars []*InlineVariable
}

// NewInlineVariableOptimizer returns an ASTOptimizer substituting each of
// vars' names with its replacement expression wherever unshadowed.
func NewInlineVariableOptimizer(vars ...*InlineVariable) ASTOptimizer {
	return &inlineOptimizer{vars: vars}
}

func (o *inlineOptimizer) Optimize(ctx *Context, a *ast.AST) *ast.AST {
	for _, iv := range o.vars {
		if strings.HasPrefix(iv.Name, "@") {
			continue
		}
		o.inlineOne(ctx, a, iv)
	}
	return a
}

func (o *inlineOptimizer) inlineOne(ctx *Context, a *ast.AST, iv *InlineVariable) {
	for {
		nav := ast.NavigateAST(a)
		target := findInlineSite(a, nav, iv.Name, map[string]bool{})
		if target == nil {
			return
		}
		if err := ctx.Tick(); err != nil {
			ctx.ReportError(err)
			return
		}
		if target.Kind() == ast.SelectKind && target.AsSelect().IsTestOnly() {
			inlinePresenceTest(ctx, a, target, iv)
			continue
		}
		replaceSubtree(ctx, a, target.ID(), iv.Expr)
	}
}

// findInlineSite walks expr looking for the first unshadowed reference
// to name: a plain Ident, a multi-segment Select chain the checker
// resolved to the single qualified variable name via container
// resolution, or the operand of a presence test, which gets special
// handling since a replacement expression is not itself field-testable
// in general.
func findInlineSite(a *ast.AST, nav ast.NavigableExpr, name string, shadowed map[string]bool) ast.NavigableExpr {
	if refersToName(a, nav, name, shadowed) {
		return nav
	}
	if nav.Kind() == ast.SelectKind && nav.AsSelect().IsTestOnly() {
		operand := nav.AsSelect().Operand()
		if refersToName(a, operand, name, shadowed) {
			return nav
		}
	}
	if nav.Kind() == ast.ComprehensionKind {
		c := nav.AsComprehension()
		inner := map[string]bool{}
		for k, v := range shadowed {
			inner[k] = v
		}
		inner[c.IterVar()] = true
		if c.HasIterVar2() {
			inner[c.IterVar2()] = true
		}
		inner[c.AccuVar()] = true
		for _, child := range nav.Children() {
			scoped := shadowed
			if usesComprehensionScope(nav, child) {
				scoped = inner
			}
			if found := findInlineSite(a, child, name, scoped); found != nil {
				return found
			}
		}
		return nil
	}
	for _, child := range nav.Children() {
		if found := findInlineSite(a, child, name, shadowed); found != nil {
			return found
		}
	}
	return nil
}

// refersToName reports whether e is an unshadowed reference to name,
// either a bare Ident spelled name or a node the checker's
// container-resolution pass resolved to the fully qualified variable
// name (e.g. a Select chain like msg.single_any).
func refersToName(a *ast.AST, e ast.Expr, name string, shadowed map[string]bool) bool {
	if shadowed[name] {
		return false
	}
	if e.Kind() == ast.IdentKind && e.AsIdent() == name {
		return true
	}
	if ref, found := a.GetRef(e.ID()); found && ref.Kind == ast.IdentReference {
		return ref.Name == name
	}
	return false
}

// usesComprehensionScope reports whether child is the loop_condition,
// loop_step, or result sub-expression of comprehension nav, the three
// positions where iter_var/accu_var are in scope (accu_init and
// iter_range evaluate in the enclosing scope instead).
func usesComprehensionScope(nav ast.NavigableExpr, child ast.NavigableExpr) bool {
	c := nav.AsComprehension()
	return child.ID() == c.LoopCondition().ID() || child.ID() == c.LoopStep().ID() || child.ID() == c.Result().ID()
}

// inlinePresenceTest rewrites has(name.field) for an inlined name into
// the presence check appropriate to the replacement expression's own
// shape: the replacement can no longer be field-selected in general, so
// `has` over it is replaced wholesale by a zero/nullness check of the
// replacement itself rather than a literal has(replacement.field).
func inlinePresenceTest(ctx *Context, a *ast.AST, target ast.NavigableExpr, iv *InlineVariable) {
	replacement := presenceCheck(ctx, iv.Expr)
	replaceSubtree(ctx, a, target.ID(), replacement)
}

// presenceCheck builds the boolean expression substituted for
// has(name...) once name is inlined to e: != null for wrapper idents
// and anything else of unknown shape, .size() != 0 for list/map/
// string/bytes, != <zero literal> for numeric/bool literals, != T{}
// for structs, and != timestamp(0)/duration("0") for the timestamp and
// duration conversion calls.
func presenceCheck(ctx *Context, e ast.Expr) ast.Expr {
	switch e.Kind() {
	case ast.ListKind, ast.MapKind:
		return sizeNotZero(ctx, e)
	case ast.LiteralKind:
		return literalPresenceCheck(ctx, e)
	case ast.StructKind:
		empty := ctx.Fac.NewStruct(ctx.NextID(), e.AsStruct().TypeName(), nil)
		return notEqual(ctx, e, empty)
	case ast.CallKind:
		switch e.AsCall().FunctionName() {
		case "timestamp":
			zero := ctx.Fac.NewCall(ctx.NextID(), "timestamp", ctx.Fac.NewLiteral(ctx.NextID(), types.Int(0)))
			return notEqual(ctx, e, zero)
		case "duration":
			zero := ctx.Fac.NewCall(ctx.NextID(), "duration", ctx.Fac.NewLiteral(ctx.NextID(), types.String("0")))
			return notEqual(ctx, e, zero)
		}
		return notEqual(ctx, e, ctx.Fac.NewLiteral(ctx.NextID(), types.NullValue))
	default:
		return notEqual(ctx, e, ctx.Fac.NewLiteral(ctx.NextID(), types.NullValue))
	}
}

func literalPresenceCheck(ctx *Context, e ast.Expr) ast.Expr {
	switch e.AsLiteral().(type) {
	case types.String, types.Bytes:
		return sizeNotZero(ctx, e)
	case types.Int:
		return notEqual(ctx, e, ctx.Fac.NewLiteral(ctx.NextID(), types.Int(0)))
	case types.Uint:
		return notEqual(ctx, e, ctx.Fac.NewLiteral(ctx.NextID(), types.Uint(0)))
	case types.Double:
		return notEqual(ctx, e, ctx.Fac.NewLiteral(ctx.NextID(), types.Double(0)))
	case types.Bool:
		return notEqual(ctx, e, ctx.Fac.NewLiteral(ctx.NextID(), types.Bool(false)))
	default:
		return notEqual(ctx, e, ctx.Fac.NewLiteral(ctx.NextID(), types.NullValue))
	}
}

func sizeNotZero(ctx *Context, e ast.Expr) ast.Expr {
	size := ctx.Fac.NewMemberCall(ctx.NextID(), overloads.Size, ctx.Fac.CopyExpr(e))
	return ctx.Fac.NewCall(ctx.NextID(), operators.NotEquals, size, ctx.Fac.NewLiteral(ctx.NextID(), types.Int(0)))
}

func notEqual(ctx *Context, e, zero ast.Expr) ast.Expr {
	return ctx.Fac.NewCall(ctx.NextID(), operators.NotEquals, ctx.Fac.CopyExpr(e), zero)
}
