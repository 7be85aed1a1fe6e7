// Copyright 2018 Google LLC
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

package interpreter

import (
	"fmt"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/operators"
)

// planner lowers a parsed or checked AST into an Interpretable tree.
// Every decision it makes mirrors one the checker already made for a
// checked AST (see checkCall/checkSelect/checkIdent): an unchecked
// expression falls back to the same container-candidate and dynamic
// dispatch rules the checker would have applied, deferred to
// evaluation time instead of being resolved once up front.
type planner struct {
	disp      Dispatcher
	container *containers.Container
	provider  ref.TypeProvider

	refMap  map[int64]*ast.ReferenceInfo
	typeMap map[int64]*types.Type
}

// Plan lowers checked into an Interpretable, consulting checked's
// type/reference overlay where present (IsChecked()) and otherwise
// falling back to container-candidate resolution and runtime dispatch.
func Plan(disp Dispatcher, container *containers.Container, provider ref.TypeProvider, checked *ast.AST) (Interpretable, error) {
	p := &planner{
		disp:      disp,
		container: container,
		provider:  provider,
		refMap:    checked.ReferenceMap(),
		typeMap:   checked.TypeMap(),
	}
	return p.plan(checked.Expr())
}

func (p *planner) plan(e ast.Expr) (Interpretable, error) {
	switch e.Kind() {
	case ast.LiteralKind:
		return p.planConst(e), nil
	case ast.IdentKind:
		return p.planIdent(e), nil
	case ast.SelectKind:
		return p.planSelect(e)
	case ast.CallKind:
		return p.planCall(e)
	case ast.ListKind:
		return p.planCreateList(e)
	case ast.MapKind:
		return p.planCreateMap(e)
	case ast.StructKind:
		return p.planCreateStruct(e)
	case ast.ComprehensionKind:
		return p.planComprehension(e)
	}
	return nil, fmt.Errorf("unsupported expression kind at id %d", e.ID())
}

func (p *planner) planConst(e ast.Expr) Interpretable {
	return &evalConstant{id: e.ID(), value: e.AsLiteral()}
}

// planIdent folds a checker-resolved enum constant or bare type
// reference to EvalConstant, and otherwise plans EvalAttribute over
// either the single checked candidate name or, for an unchecked AST,
// every namespace candidate the container's resolution order admits.
func (p *planner) planIdent(e ast.Expr) Interpretable {
	if info, found := p.refMap[e.ID()]; found {
		if v, ok := constantRefValue(info); ok {
			return &evalConstant{id: e.ID(), value: v}
		}
		if t, ok := p.typeMap[e.ID()]; ok && t != nil && t.Kind() == types.TypeKind && len(t.Parameters()) > 0 {
			return &evalConstant{id: e.ID(), value: t.Parameters()[0]}
		}
		return &evalAttr{id: e.ID(), attr: NewNamespacedAttribute(e.ID(), []string{info.Name})}
	}
	name := e.AsIdent()
	return &evalAttr{id: e.ID(), attr: NewMaybeAttribute(e.ID(), p.container.ResolveCandidateNames(name))}
}

func constantRefValue(info *ast.ReferenceInfo) (ref.Val, bool) {
	if info.Value == nil {
		return nil, false
	}
	v, ok := info.Value.(ref.Val)
	return v, ok
}

func (p *planner) planSelect(e ast.Expr) (Interpretable, error) {
	sel := e.AsSelect()
	if info, found := p.refMap[e.ID()]; found {
		if v, ok := constantRefValue(info); ok {
			return &evalConstant{id: e.ID(), value: v}, nil
		}
		return &evalAttr{id: e.ID(), attr: NewNamespacedAttribute(e.ID(), []string{info.Name})}, nil
	}
	operand, err := p.plan(sel.Operand())
	if err != nil {
		return nil, err
	}
	var attr Attribute
	if ia, ok := operand.(InterpretableAttribute); ok {
		attr = ia.Attr()
	} else {
		attr = NewRelativeAttribute(e.ID(), operand)
	}
	fieldQ := NewStringQualifier(e.ID(), sel.FieldName())
	if sel.IsTestOnly() {
		attr = attr.AddQualifier(NewPresenceTestQualifier(e.ID(), fieldQ))
	} else {
		attr = attr.AddQualifier(fieldQ)
	}
	return &evalAttr{id: e.ID(), attr: attr}, nil
}

func (p *planner) planCall(e ast.Expr) (Interpretable, error) {
	call := e.AsCall()
	switch call.FunctionName() {
	case operators.LogicalAnd:
		return p.planBinaryArgs(e, call, func(id int64, lhs, rhs Interpretable) Interpretable {
			return &evalAnd{id: id, lhs: lhs, rhs: rhs}
		})
	case operators.LogicalOr:
		return p.planBinaryArgs(e, call, func(id int64, lhs, rhs Interpretable) Interpretable {
			return &evalOr{id: id, lhs: lhs, rhs: rhs}
		})
	case operators.Equals:
		return p.planBinaryArgs(e, call, func(id int64, lhs, rhs Interpretable) Interpretable {
			return &evalEq{id: id, lhs: lhs, rhs: rhs}
		})
	case operators.NotEquals:
		return p.planBinaryArgs(e, call, func(id int64, lhs, rhs Interpretable) Interpretable {
			return &evalNe{id: id, lhs: lhs, rhs: rhs}
		})
	case operators.Conditional:
		return p.planConditional(e, call)
	case operators.Index:
		return p.planIndex(e, call)
	case operators.OptIndex:
		return p.planOptIndex(e, call)
	case operators.OptSelect:
		return p.planOptSelect(e, call)
	case celBindFunction:
		return p.planBind(e, call)
	case celBlockFunction:
		return p.planBlock(e, call)
	}
	return p.planCallGeneric(e, call)
}

// celBindFunction and celBlockFunction mirror the checker's internal
// names for the two call forms the CSE optimizer emits; the planner
// must recognize them directly since neither is backed by a Dispatcher
// overload (there is no bound function to look up, only a scope to
// introduce).
const (
	celBindFunction  = "cel.bind"
	celBlockFunction = "cel.@block"
)

func (p *planner) planBind(e ast.Expr, call ast.CallExpr) (Interpretable, error) {
	args := call.Args()
	if len(args) != 3 || args[0].Kind() != ast.IdentKind {
		return nil, fmt.Errorf("cel.bind: expected (ident, expr, body), got %d args", len(args))
	}
	varExpr, err := p.plan(args[1])
	if err != nil {
		return nil, err
	}
	body, err := p.plan(args[2])
	if err != nil {
		return nil, err
	}
	return &evalBind{id: e.ID(), varName: args[0].AsIdent(), varExpr: varExpr, body: body}, nil
}

func (p *planner) planBlock(e ast.Expr, call ast.CallExpr) (Interpretable, error) {
	args := call.Args()
	if len(args) != 2 || args[0].Kind() != ast.ListKind {
		return nil, fmt.Errorf("cel.@block: expected (list, body), got %d args", len(args))
	}
	elemExprs := args[0].AsList().Elements()
	elems := make([]Interpretable, len(elemExprs))
	for i, ee := range elemExprs {
		plan, err := p.plan(ee)
		if err != nil {
			return nil, err
		}
		elems[i] = plan
	}
	body, err := p.plan(args[1])
	if err != nil {
		return nil, err
	}
	return &evalBlock{id: e.ID(), elems: elems, body: body}, nil
}

func (p *planner) planBinaryArgs(e ast.Expr, call ast.CallExpr, build func(int64, Interpretable, Interpretable) Interpretable) (Interpretable, error) {
	args := call.Args()
	lhs, err := p.plan(args[0])
	if err != nil {
		return nil, err
	}
	rhs, err := p.plan(args[1])
	if err != nil {
		return nil, err
	}
	return build(e.ID(), lhs, rhs), nil
}

func (p *planner) planConditional(e ast.Expr, call ast.CallExpr) (Interpretable, error) {
	args := call.Args()
	cond, err := p.plan(args[0])
	if err != nil {
		return nil, err
	}
	truthy, err := p.plan(args[1])
	if err != nil {
		return nil, err
	}
	falsy, err := p.plan(args[2])
	if err != nil {
		return nil, err
	}
	return &evalConditional{id: e.ID(), cond: cond, truthy: truthy, falsy: falsy}, nil
}

func (p *planner) planIndex(e ast.Expr, call ast.CallExpr) (Interpretable, error) {
	args := call.Args()
	operand, err := p.plan(args[0])
	if err != nil {
		return nil, err
	}
	index, err := p.plan(args[1])
	if err != nil {
		return nil, err
	}
	if idxConst, ok := index.(*evalConstant); ok {
		if q, err := qualifierForConst(e.ID(), idxConst.value); err == nil {
			var attr Attribute
			if ia, ok := operand.(InterpretableAttribute); ok {
				attr = ia.Attr()
			} else {
				attr = NewRelativeAttribute(e.ID(), operand)
			}
			return &evalAttr{id: e.ID(), attr: attr.AddQualifier(q)}, nil
		}
	}
	return &evalIndex{id: e.ID(), operand: operand, index: index}, nil
}

func qualifierForConst(id int64, v ref.Val) (Qualifier, error) {
	switch val := v.(type) {
	case types.String:
		return NewStringQualifier(id, string(val)), nil
	case types.Int:
		return NewIntQualifier(id, int64(val)), nil
	case types.Uint:
		return NewUintQualifier(id, uint64(val)), nil
	case types.Bool:
		return NewBoolQualifier(id, bool(val)), nil
	}
	return nil, fmt.Errorf("unsupported constant index type: %T", v)
}

func (p *planner) planOptIndex(e ast.Expr, call ast.CallExpr) (Interpretable, error) {
	args := call.Args()
	operand, err := p.plan(args[0])
	if err != nil {
		return nil, err
	}
	index, err := p.plan(args[1])
	if err != nil {
		return nil, err
	}
	return &evalOptIndex{id: e.ID(), operand: operand, index: index}, nil
}

func (p *planner) planOptSelect(e ast.Expr, call ast.CallExpr) (Interpretable, error) {
	args := call.Args()
	operand, err := p.plan(args[0])
	if err != nil {
		return nil, err
	}
	fieldConst, ok := args[1].AsLiteral().(types.String)
	if !ok {
		return nil, fmt.Errorf("optional select field name must be a string literal at id %d", e.ID())
	}
	return &evalOptSelect{id: e.ID(), operand: operand, fieldName: string(fieldConst)}, nil
}

// planCallGeneric plans every call the checker didn't fully disambiguate
// to the special operator forms above: a single matched overload plans
// EvalCall bound directly to that overload's implementation; more than
// one matched overload (or no checker information at all, for a
// parse-only AST) plans EvalLateBoundCall, deferring the choice to the
// runtime argument types exactly as the unchecked call would dispatch.
func (p *planner) planCallGeneric(e ast.Expr, call ast.CallExpr) (Interpretable, error) {
	fnName := call.FunctionName()
	var argExprs []ast.Expr
	if call.IsMemberFunction() {
		argExprs = append([]ast.Expr{call.Target()}, call.Args()...)
	} else {
		argExprs = call.Args()
	}
	args := make([]Interpretable, len(argExprs))
	for i, a := range argExprs {
		planned, err := p.plan(a)
		if err != nil {
			return nil, err
		}
		args[i] = planned
	}
	if info, found := p.refMap[e.ID()]; found && info.Kind == ast.FunctionReference && len(info.OverloadIDs) == 1 {
		impl, found := p.disp.FindOverload(info.OverloadIDs[0])
		if !found {
			return nil, fmt.Errorf("unbound overload: %s", info.OverloadIDs[0])
		}
		return &evalCall{id: e.ID(), function: fnName, overload: info.OverloadIDs[0], args: args, impl: impl, nonStrict: impl.NonStrict}, nil
	}
	var overloadIDs []string
	if info, found := p.refMap[e.ID()]; found && info.Kind == ast.FunctionReference {
		overloadIDs = info.OverloadIDs
	}
	return &evalLateBoundCall{id: e.ID(), function: fnName, overloadIDs: overloadIDs, args: args, disp: p.disp}, nil
}

func (p *planner) planCreateList(e ast.Expr) (Interpretable, error) {
	l := e.AsList()
	elemExprs := l.Elements()
	optIdx := map[int]bool{}
	for _, idx := range l.OptionalIndices() {
		optIdx[int(idx)] = true
	}
	elems := make([]Interpretable, len(elemExprs))
	optionals := make([]bool, len(elemExprs))
	hasOpt := false
	for i, elem := range elemExprs {
		planned, err := p.plan(elem)
		if err != nil {
			return nil, err
		}
		elems[i] = planned
		if optIdx[i] {
			optionals[i] = true
			hasOpt = true
		}
	}
	return &evalList{id: e.ID(), elems: elems, optionals: optionals, hasOptionals: hasOpt}, nil
}

func (p *planner) planCreateMap(e ast.Expr) (Interpretable, error) {
	m := e.AsMap()
	entries := m.Entries()
	keys := make([]Interpretable, len(entries))
	vals := make([]Interpretable, len(entries))
	optionals := make([]bool, len(entries))
	hasOpt := false
	for i, entry := range entries {
		me := entry.AsMapEntry()
		k, err := p.plan(me.Key())
		if err != nil {
			return nil, err
		}
		v, err := p.plan(me.Value())
		if err != nil {
			return nil, err
		}
		keys[i] = k
		vals[i] = v
		if me.IsOptional() {
			optionals[i] = true
			hasOpt = true
		}
	}
	return &evalMap{id: e.ID(), keys: keys, vals: vals, optionals: optionals, hasOptionals: hasOpt}, nil
}

func (p *planner) planCreateStruct(e ast.Expr) (Interpretable, error) {
	s := e.AsStruct()
	typeName := s.TypeName()
	if t, ok := p.typeMap[e.ID()]; ok && t != nil {
		typeName = t.TypeName()
	} else if cands := p.container.ResolveCandidateNames(s.TypeName()); len(cands) > 0 {
		typeName = cands[0]
	}
	fieldExprs := s.Fields()
	fields := make([]string, len(fieldExprs))
	vals := make([]Interpretable, len(fieldExprs))
	optionals := make([]bool, len(fieldExprs))
	hasOpt := false
	for i, f := range fieldExprs {
		sf := f.AsStructField()
		planned, err := p.plan(sf.Value())
		if err != nil {
			return nil, err
		}
		fields[i] = sf.Name()
		vals[i] = planned
		if sf.IsOptional() {
			optionals[i] = true
			hasOpt = true
		}
	}
	return &evalStruct{
		id: e.ID(), typeName: typeName, fields: fields, vals: vals,
		optionals: optionals, hasOptionals: hasOpt, provider: p.provider,
	}, nil
}

// planComprehension plans accu_init, iter_range, loop_condition,
// loop_step and result in that order, matching the order their side
// effects (if any custom function binding had them) would be observed
// in a left-to-right evaluation of the desugared macro form.
func (p *planner) planComprehension(e ast.Expr) (Interpretable, error) {
	c := e.AsComprehension()
	accuInit, err := p.plan(c.AccuInit())
	if err != nil {
		return nil, err
	}
	iterRange, err := p.plan(c.IterRange())
	if err != nil {
		return nil, err
	}
	cond, err := p.plan(c.LoopCondition())
	if err != nil {
		return nil, err
	}
	step, err := p.plan(c.LoopStep())
	if err != nil {
		return nil, err
	}
	result, err := p.plan(c.Result())
	if err != nil {
		return nil, err
	}
	return &evalFold{
		id: e.ID(), accuVar: c.AccuVar(), iterVar: c.IterVar(),
		iterVar2: c.IterVar2(), hasIterVar2: c.HasIterVar2(),
		iterRange: iterRange, accuInit: accuInit,
		cond: cond, step: step, result: result,
	}, nil
}
