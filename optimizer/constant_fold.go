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
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/interpreter"
	"github.com/exprcel/cel/operators"
)

// Names the optional-construction extension functions whose folding
// behavior spec §4.8 calls out explicitly, even though the functions
// themselves are declared by an opt-in extension library rather than
// the core standard library.
const (
	optionalOf            = "optional.of"
	optionalNone           = "optional.none"
	optionalOfNonZeroValue = "optional.ofNonZeroValue"
)

// constantFoldOptimizer replaces every subtree whose value is fully
// determined at optimize time with its literal result: calls to pure
// functions over constant arguments, logical and/or with a decisive
// constant operand, a conditional with a constant condition, and
// optional-construction markers inside list/map/struct literals (spec
// §4.8's "constant folding" bullet).
type constantFoldOptimizer struct {
	disp       interpreter.Dispatcher
	impureFns  map[string]bool
	maxFoldArg int
}

// NewConstantFoldOptimizer returns an ASTOptimizer that folds pure-call,
// logical, conditional, and optional-propagation subtrees down to
// literals. disp supplies the runtime bindings used to evaluate folded
// calls (ordinarily the same Dispatcher the eventual Program will use);
// impureFnNames lists overload/function names that must never be folded
// even when every argument is constant (spec §4.9's "non-pure functions
// ... are ineligible").
func NewConstantFoldOptimizer(disp interpreter.Dispatcher, impureFnNames ...string) ASTOptimizer {
	impure := make(map[string]bool, len(impureFnNames))
	for _, n := range impureFnNames {
		impure[n] = true
	}
	return &constantFoldOptimizer{disp: disp, impureFns: impure, maxFoldArg: 1 << 20}
}

func (o *constantFoldOptimizer) Optimize(ctx *Context, a *ast.AST) *ast.AST {
	root := ast.NavigateAST(a)
	for {
		changed := false
		for _, nav := range ast.MatchDescendants(root, ast.AllMatcher()) {
			if err := ctx.Tick(); err != nil {
				ctx.ReportError(err)
				return a
			}
			if o.foldOnce(ctx, a, nav) {
				changed = true
				root = ast.NavigateAST(a)
				break
			}
		}
		if !changed {
			return a
		}
	}
}

func (o *constantFoldOptimizer) foldOnce(ctx *Context, a *ast.AST, nav ast.NavigableExpr) bool {
	switch nav.Kind() {
	case ast.CallKind:
		return o.foldCall(ctx, a, nav)
	case ast.ListKind:
		return o.foldOptionalList(ctx, a, nav)
	case ast.MapKind:
		return o.foldOptionalMap(ctx, a, nav)
	case ast.StructKind:
		return o.foldOptionalStruct(ctx, a, nav)
	}
	return false
}

func (o *constantFoldOptimizer) foldCall(ctx *Context, a *ast.AST, nav ast.NavigableExpr) bool {
	call := nav.AsCall()
	switch call.FunctionName() {
	case operators.LogicalAnd, operators.LogicalOr:
		return o.foldLogical(ctx, a, nav, call)
	case operators.Conditional:
		return o.foldConditional(ctx, a, nav, call)
	}
	if o.impureFns[call.FunctionName()] {
		return false
	}
	args := call.Args()
	var operands []ast.Expr
	if call.IsMemberFunction() {
		operands = append([]ast.Expr{call.Target()}, args...)
	} else {
		operands = args
	}
	for _, arg := range operands {
		if arg.Kind() != ast.LiteralKind {
			return false
		}
	}
	val, ok := o.evalConst(a, nav)
	if !ok {
		return false
	}
	return replaceWithLiteral(ctx, a, nav.ID(), val)
}

// foldLogical resolves `_&&_`/`_||_` when either operand is already a
// boolean literal: false absorbs `&&`, true absorbs `||`, and when both
// sides are literal the whole node folds.
func (o *constantFoldOptimizer) foldLogical(ctx *Context, a *ast.AST, nav ast.NavigableExpr, call ast.CallExpr) bool {
	args := call.Args()
	lhs, rhs := args[0], args[1]
	isAnd := call.FunctionName() == operators.LogicalAnd
	absorbs := func(b bool) bool { return (isAnd && !b) || (!isAnd && b) }
	if lb, ok := literalBool(lhs); ok {
		if absorbs(lb) {
			return replaceWithLiteral(ctx, a, nav.ID(), types.Bool(lb))
		}
		return replaceSubtree(ctx, a, nav.ID(), rhs)
	}
	if rb, ok := literalBool(rhs); ok {
		if absorbs(rb) {
			return replaceWithLiteral(ctx, a, nav.ID(), types.Bool(rb))
		}
		return replaceSubtree(ctx, a, nav.ID(), lhs)
	}
	return false
}

func literalBool(e ast.Expr) (bool, bool) {
	if e.Kind() != ast.LiteralKind {
		return false, false
	}
	b, ok := e.AsLiteral().(types.Bool)
	return bool(b), ok
}

// foldConditional resolves `_?_:_` when the condition is a boolean
// literal, folding to whichever branch is selected.
func (o *constantFoldOptimizer) foldConditional(ctx *Context, a *ast.AST, nav ast.NavigableExpr, call ast.CallExpr) bool {
	args := call.Args()
	cond, truthy, falsy := args[0], args[1], args[2]
	b, ok := literalBool(cond)
	if !ok {
		return false
	}
	if b {
		return replaceSubtree(ctx, a, nav.ID(), truthy)
	}
	return replaceSubtree(ctx, a, nav.ID(), falsy)
}

// evalConst plans and evaluates expr (every argument already constant)
// against an empty Activation; a fault result is left unfolded so the
// checked program's own error semantics still surface it at eval time.
func (o *constantFoldOptimizer) evalConst(a *ast.AST, expr ast.Expr) (ref.Val, bool) {
	sub := ast.NewCheckedAST(ast.NewAST(expr, a.SourceInfo()), a.TypeMap(), a.ReferenceMap())
	cont, err := containers.NewContainer()
	if err != nil {
		return nil, false
	}
	prg, err := interpreter.Plan(o.disp, cont, nil, sub)
	if err != nil {
		return nil, false
	}
	val := prg.Eval(interpreter.NewActivation(map[string]interface{}{}))
	if types.IsError(val) || types.IsUnknown(val) {
		return nil, false
	}
	return val, true
}

func (o *constantFoldOptimizer) foldOptionalList(ctx *Context, a *ast.AST, nav ast.NavigableExpr) bool {
	l := nav.AsList()
	elems := l.Elements()
	optIdx := map[int]bool{}
	for _, i := range l.OptionalIndices() {
		optIdx[int(i)] = true
	}
	newElems := make([]ast.Expr, 0, len(elems))
	newOptIdx := []int32{}
	changed := false
	for i, e := range elems {
		if optIdx[i] {
			switch verdict, inner := optionalVerdict(e); verdict {
			case optVerdictNone:
				changed = true
				continue
			case optVerdictValue:
				changed = true
				newElems = append(newElems, inner)
				continue
			}
		}
		newElems = append(newElems, e)
		if optIdx[i] {
			newOptIdx = append(newOptIdx, int32(len(newElems)-1))
		}
	}
	if !changed {
		return false
	}
	return replaceSubtree(ctx, a, nav.ID(), ctx.Fac.NewList(ctx.NextID(), newElems, newOptIdx))
}

func (o *constantFoldOptimizer) foldOptionalMap(ctx *Context, a *ast.AST, nav ast.NavigableExpr) bool {
	m := nav.AsMap()
	entries := m.Entries()
	newEntries := make([]ast.EntryExpr, 0, len(entries))
	changed := false
	for _, entry := range entries {
		me := entry.AsMapEntry()
		if me.IsOptional() {
			switch verdict, inner := optionalVerdict(me.Value()); verdict {
			case optVerdictNone:
				changed = true
				continue
			case optVerdictValue:
				changed = true
				newEntries = append(newEntries, ctx.Fac.NewMapEntry(ctx.NextID(), me.Key(), inner, false))
				continue
			}
		}
		newEntries = append(newEntries, entry)
	}
	if !changed {
		return false
	}
	return replaceSubtree(ctx, a, nav.ID(), ctx.Fac.NewMap(ctx.NextID(), newEntries))
}

func (o *constantFoldOptimizer) foldOptionalStruct(ctx *Context, a *ast.AST, nav ast.NavigableExpr) bool {
	s := nav.AsStruct()
	fields := s.Fields()
	newFields := make([]ast.EntryExpr, 0, len(fields))
	changed := false
	for _, f := range fields {
		sf := f.AsStructField()
		if sf.IsOptional() {
			switch verdict, inner := optionalVerdict(sf.Value()); verdict {
			case optVerdictNone:
				changed = true
				continue
			case optVerdictValue:
				changed = true
				newFields = append(newFields, ctx.Fac.NewStructField(ctx.NextID(), sf.Name(), inner, false))
				continue
			}
		}
		newFields = append(newFields, f)
	}
	if !changed {
		return false
	}
	return replaceSubtree(ctx, a, nav.ID(), ctx.Fac.NewStruct(ctx.NextID(), s.TypeName(), newFields))
}

type optVerdict int

const (
	optVerdictUnresolved optVerdict = iota
	optVerdictNone
	optVerdictValue
)

// optionalVerdict recognizes the three optional-construction call
// shapes spec §4.8 names: `optional.none()` always removes the entry,
// `optional.of(e)` inlines e as a required entry, and
// `optional.ofNonZeroValue(0)` (a literal zero value) removes the entry
// while a non-zero literal inlines it.
func optionalVerdict(e ast.Expr) (optVerdict, ast.Expr) {
	if e.Kind() != ast.CallKind {
		return optVerdictUnresolved, nil
	}
	call := e.AsCall()
	args := call.Args()
	switch call.FunctionName() {
	case optionalNone:
		return optVerdictNone, nil
	case optionalOf:
		if len(args) == 1 {
			return optVerdictValue, args[0]
		}
	case optionalOfNonZeroValue:
		if len(args) == 1 && args[0].Kind() == ast.LiteralKind && isZeroValue(args[0].AsLiteral()) {
			return optVerdictNone, nil
		}
		if len(args) == 1 && args[0].Kind() == ast.LiteralKind {
			return optVerdictValue, args[0]
		}
	}
	return optVerdictUnresolved, nil
}

func isZeroValue(v ref.Val) bool {
	switch x := v.(type) {
	case types.Int:
		return x == 0
	case types.Uint:
		return x == 0
	case types.Double:
		return x == 0
	case types.String:
		return x == ""
	case types.Bool:
		return !bool(x)
	case types.Bytes:
		return len(x) == 0
	}
	return false
}

func replaceWithLiteral(ctx *Context, a *ast.AST, id int64, val ref.Val) bool {
	return replaceSubtree(ctx, a, id, ctx.Fac.NewLiteral(ctx.NextID(), val))
}

// replaceSubtree overwrites the node at id with a copy of replacement
// (never aliasing the surviving original subtree, spec §4.7's shared
// ownership invariant) and invalidates any macro-call snapshot the
// replaced node anchored.
func replaceSubtree(ctx *Context, a *ast.AST, id int64, replacement ast.Expr) bool {
	if !ast.ReplaceSubtree(a.Expr(), id, ctx.Fac.CopyExpr(replacement)) {
		return false
	}
	a.SourceInfo().ClearMacroCall(id)
	return true
}
