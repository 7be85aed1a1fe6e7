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
	"fmt"
	"strings"

	"github.com/exprcel/cel/common/ast"
)

// bindFunction and blockFunction name the two internal call forms this
// pass emits: `cel.bind` for the cascaded emission style and
// `cel.@block` for the flat emission style (spec §4.8, §6's "Plan node
// cel.@block").
const (
	bindFunction  = "cel.bind"
	blockFunction = "cel.@block"
)

// cseOptimizer eliminates repeated pure subexpressions, either as
// nested cel.bind macros (innermost bound first) or as a single flat
// cel.@block. Grounded on the cascaded-vs-flat emission styles spec
// §4.8 names; since neither emission form nor a CSE pass is present
// anywhere in the retrieved examples, the discovery/replacement
// algorithm below is this module's own design built directly from the
// spec's worked examples (§4.9's bind-emission numbering and
// eval-equivalence cases), not a port of any example source.
type cseOptimizer struct {
	block             bool
	impureFns         map[string]bool
	maxRecursionDepth int
}

// NewCSEOptimizer returns an ASTOptimizer eliminating common
// subexpressions. block selects the flat `cel.@block` emission style;
// false selects cascaded `cel.bind` macros. impureFnNames lists
// function names that make any subexpression containing them ineligible
// for elimination (spec §4.9's purity requirement).
func NewCSEOptimizer(block bool, impureFnNames ...string) ASTOptimizer {
	impure := make(map[string]bool, len(impureFnNames))
	for _, n := range impureFnNames {
		impure[n] = true
	}
	return &cseOptimizer{block: block, impureFns: impure, maxRecursionDepth: 64}
}

func (o *cseOptimizer) Optimize(ctx *Context, a *ast.AST) *ast.AST {
	if o.block {
		return o.optimizeBlock(ctx, a)
	}
	return o.optimizeBind(ctx, a)
}

// optimizeBind repeatedly finds the earliest-discovered eligible
// repeated subexpression in the current tree and wraps the whole body
// in `cel.bind(@rN, expr, body)`, substituting every occurrence with
// `@rN`. Each successive bind wraps the previous result, so the first
// group found (necessarily the most deeply nested among equally-early
// candidates, since a repeated outer expression cannot be discovered
// before the inner one it contains finishes being scanned) ends up
// innermost, matching spec §4.9's `@r0, @r1, ...` numbering example.
func (o *cseOptimizer) optimizeBind(ctx *Context, a *ast.AST) *ast.AST {
	next := 0
	for {
		if err := ctx.Tick(); err != nil {
			ctx.ReportError(err)
			return a
		}
		site, occurrences := findCSECandidate(a, o.impureFns)
		if site == nil {
			return a
		}
		name := fmt.Sprintf("@r%d", next)
		next++
		for _, occ := range occurrences {
			replaceSubtree(ctx, a, occ, ctx.Fac.NewIdent(ctx.NextID(), name))
		}
		valueExpr := ctx.Fac.CopyExpr(site)
		valueExpr.RenumberIDs(ast.IDGenerator(ctx.NextID))
		wrapped := ctx.Fac.NewCall(ctx.NextID(), bindFunction,
			ctx.Fac.NewIdent(ctx.NextID(), name),
			valueExpr,
			ctx.Fac.CopyExpr(a.Expr()))
		replaceWholeBody(a, wrapped)
	}
}

// optimizeBlock collects every eligible repeated subexpression (same
// discovery order as optimizeBind) into a flat element list, replacing
// occurrences with `@indexN` as each is captured, then wraps the final
// body in one `cel.@block([e0, e1, ...], body)` (spec §4.9's "flat
// cel.@block" emission style). Each captured element is frozen at
// discovery time, so a later-discovered group nested inside an
// already-captured element is not itself further flattened — a
// documented depth limitation, see DESIGN.md.
func (o *cseOptimizer) optimizeBlock(ctx *Context, a *ast.AST) *ast.AST {
	var elems []ast.Expr
	for len(elems) < o.maxRecursionDepth {
		if err := ctx.Tick(); err != nil {
			ctx.ReportError(err)
			return a
		}
		site, occurrences := findCSECandidate(a, o.impureFns)
		if site == nil {
			break
		}
		idx := len(elems)
		elemExpr := ctx.Fac.CopyExpr(site)
		elemExpr.RenumberIDs(ast.IDGenerator(ctx.NextID))
		elems = append(elems, elemExpr)
		name := fmt.Sprintf("@index%d", idx)
		for _, occ := range occurrences {
			replaceSubtree(ctx, a, occ, ctx.Fac.NewIdent(ctx.NextID(), name))
		}
	}
	if len(elems) == 0 {
		return a
	}
	optIndices := []int32{}
	listExpr := ctx.Fac.NewList(ctx.NextID(), elems, optIndices)
	wrapped := ctx.Fac.NewCall(ctx.NextID(), blockFunction, listExpr, ctx.Fac.CopyExpr(a.Expr()))
	replaceWholeBody(a, wrapped)
	return a
}

// replaceWholeBody overwrites a's root expression in place with
// replacement, preserving a's identity so the SourceInfo/type/reference
// maps callers already hold a pointer to stay attached to the same AST
// value.
func replaceWholeBody(a *ast.AST, replacement ast.Expr) {
	a.Expr().SetKindCase(replacement)
}

// findCSECandidate scans a in a single post-order (innermost-first)
// pass, grouping subexpressions by structural equality (ignoring ids)
// and returning the first eligible group with at least two occurrences:
// a representative expression and the ids of every occurrence including
// the representative's own.
func findCSECandidate(a *ast.AST, impureFns map[string]bool) (ast.Expr, []int64) {
	type group struct {
		rep ast.Expr
		ids []int64
	}
	groups := make(map[string]*group)
	var order []string

	var visit func(nav ast.NavigableExpr, shadowed map[string]bool)
	visit = func(nav ast.NavigableExpr, shadowed map[string]bool) {
		childShadow := shadowed
		if nav.Kind() == ast.ComprehensionKind {
			c := nav.AsComprehension()
			inner := make(map[string]bool, len(shadowed)+2)
			for k, v := range shadowed {
				inner[k] = v
			}
			inner[c.IterVar()] = true
			inner[c.AccuVar()] = true
			for _, child := range nav.Children() {
				scoped := shadowed
				if usesComprehensionScope(nav, child) {
					scoped = inner
				}
				visit(child, scoped)
			}
		} else {
			for _, child := range nav.Children() {
				visit(child, childShadow)
			}
		}

		if isTrivialCSELeaf(nav) || containsImpureCall(nav, impureFns) || hasShadowedFreeIdent(nav, shadowed) {
			return
		}
		key := structuralKey(nav)
		g, found := groups[key]
		if !found {
			g = &group{rep: ctx0CopyExpr(nav)}
			groups[key] = g
			order = append(order, key)
		}
		g.ids = append(g.ids, nav.ID())
	}
	visit(ast.NavigateAST(a), map[string]bool{})

	for _, key := range order {
		g := groups[key]
		if len(g.ids) >= 2 {
			return g.rep, g.ids
		}
	}
	return nil, nil
}

// ctx0CopyExpr copies e without requiring a Context, since
// findCSECandidate runs as a read-only discovery pass before any
// Context-owned id is allocated for the representative.
func ctx0CopyExpr(e ast.Expr) ast.Expr {
	return ast.NewExprFactory().CopyExpr(e)
}

func isTrivialCSELeaf(e ast.Expr) bool {
	switch e.Kind() {
	case ast.IdentKind, ast.LiteralKind:
		return true
	}
	return false
}

func containsImpureCall(e ast.Expr, impureFns map[string]bool) bool {
	found := false
	ast.PreOrderVisit(e, ast.NewExprVisitor(func(n ast.Expr) {
		if n.Kind() == ast.CallKind && impureFns[n.AsCall().FunctionName()] {
			found = true
		}
	}))
	return found
}

func hasShadowedFreeIdent(e ast.Expr, shadowed map[string]bool) bool {
	if len(shadowed) == 0 {
		return false
	}
	found := false
	var visit func(n ast.Expr, local map[string]bool)
	visit = func(n ast.Expr, local map[string]bool) {
		if found {
			return
		}
		if n.Kind() == ast.IdentKind {
			name := n.AsIdent()
			if shadowed[name] && !local[name] {
				found = true
			}
			return
		}
		if n.Kind() == ast.ComprehensionKind {
			c := n.AsComprehension()
			inner := make(map[string]bool, len(local)+2)
			for k, v := range local {
				inner[k] = v
			}
			inner[c.IterVar()] = true
			inner[c.AccuVar()] = true
			visit(c.IterRange(), local)
			visit(c.AccuInit(), local)
			visit(c.LoopCondition(), inner)
			visit(c.LoopStep(), inner)
			visit(c.Result(), inner)
			return
		}
		for _, child := range childExprs(n) {
			visit(child, local)
		}
	}
	visit(e, map[string]bool{})
	return found
}

func childExprs(e ast.Expr) []ast.Expr {
	switch e.Kind() {
	case ast.CallKind:
		c := e.AsCall()
		out := c.Args()
		if c.IsMemberFunction() {
			out = append([]ast.Expr{c.Target()}, out...)
		}
		return out
	case ast.ListKind:
		return e.AsList().Elements()
	case ast.MapKind:
		var out []ast.Expr
		for _, entry := range e.AsMap().Entries() {
			me := entry.AsMapEntry()
			out = append(out, me.Key(), me.Value())
		}
		return out
	case ast.SelectKind:
		return []ast.Expr{e.AsSelect().Operand()}
	case ast.StructKind:
		var out []ast.Expr
		for _, f := range e.AsStruct().Fields() {
			out = append(out, f.AsStructField().Value())
		}
		return out
	}
	return nil
}

// structuralKey renders e as a string capturing every node shape and
// literal/identifier value but never a node id, so two subtrees built
// independently with different ids compare equal exactly when they
// would evaluate identically given the same bindings (spec §4.9's
// "structural equality on the AST, ignoring ids").
func structuralKey(e ast.Expr) string {
	var b strings.Builder
	writeStructuralKey(&b, e)
	return b.String()
}

func writeStructuralKey(b *strings.Builder, e ast.Expr) {
	switch e.Kind() {
	case ast.LiteralKind:
		fmt.Fprintf(b, "lit(%v:%v)", e.AsLiteral().Type().TypeName(), e.AsLiteral().Value())
	case ast.IdentKind:
		fmt.Fprintf(b, "id(%s)", e.AsIdent())
	case ast.SelectKind:
		sel := e.AsSelect()
		b.WriteString("sel(")
		writeStructuralKey(b, sel.Operand())
		fmt.Fprintf(b, ",%s,%v)", sel.FieldName(), sel.IsTestOnly())
	case ast.CallKind:
		call := e.AsCall()
		b.WriteString("call(")
		b.WriteString(call.FunctionName())
		if call.IsMemberFunction() {
			b.WriteString(",m:")
			writeStructuralKey(b, call.Target())
		}
		for _, arg := range call.Args() {
			b.WriteString(",")
			writeStructuralKey(b, arg)
		}
		b.WriteString(")")
	case ast.ListKind:
		l := e.AsList()
		optIdx := map[int32]bool{}
		for _, i := range l.OptionalIndices() {
			optIdx[i] = true
		}
		b.WriteString("list(")
		for i, elem := range l.Elements() {
			if i > 0 {
				b.WriteString(",")
			}
			if optIdx[int32(i)] {
				b.WriteString("?")
			}
			writeStructuralKey(b, elem)
		}
		b.WriteString(")")
	case ast.MapKind:
		b.WriteString("map(")
		for i, entry := range e.AsMap().Entries() {
			if i > 0 {
				b.WriteString(",")
			}
			me := entry.AsMapEntry()
			if me.IsOptional() {
				b.WriteString("?")
			}
			writeStructuralKey(b, me.Key())
			b.WriteString(":")
			writeStructuralKey(b, me.Value())
		}
		b.WriteString(")")
	case ast.StructKind:
		s := e.AsStruct()
		fmt.Fprintf(b, "struct(%s", s.TypeName())
		for _, f := range s.Fields() {
			sf := f.AsStructField()
			b.WriteString(",")
			if sf.IsOptional() {
				b.WriteString("?")
			}
			b.WriteString(sf.Name())
			b.WriteString(":")
			writeStructuralKey(b, sf.Value())
		}
		b.WriteString(")")
	case ast.ComprehensionKind:
		c := e.AsComprehension()
		b.WriteString("comp(")
		writeStructuralKey(b, c.IterRange())
		fmt.Fprintf(b, ",%s,%s,", c.IterVar(), c.AccuVar())
		writeStructuralKey(b, c.AccuInit())
		b.WriteString(",")
		writeStructuralKey(b, c.LoopCondition())
		b.WriteString(",")
		writeStructuralKey(b, c.LoopStep())
		b.WriteString(",")
		writeStructuralKey(b, c.Result())
		b.WriteString(")")
	default:
		b.WriteString("unset")
	}
}
