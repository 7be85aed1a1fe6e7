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

	"github.com/golang/glog"

	"github.com/exprcel/cel/common/functions"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/common/types/traits"
)

// Interpretable is a single planned node: every CEL expression kind
// plans down to one of the variants in this file (spec §4.5).
type Interpretable interface {
	// ID returns the originating expression id, used to localize a
	// fault raised while evaluating this node.
	ID() int64

	// Eval evaluates the node against vars, which is never mutated: a
	// single Interpretable tree may be evaluated from many goroutines
	// concurrently as long as each uses its own Activation (spec §5).
	Eval(vars Activation) ref.Val
}

// InterpretableAttribute is an Interpretable backed by an Attribute,
// letting planSelect/planCall extend the qualifier chain in place
// instead of wrapping a fresh node.
type InterpretableAttribute interface {
	Interpretable
	Attr() Attribute
}

// evalConstant plans a literal or a checker-folded constant (a resolved
// enum value or a bare type reference such as the identifier `int`).
type evalConstant struct {
	id    int64
	value ref.Val
}

func (e *evalConstant) ID() int64          { return e.id }
func (e *evalConstant) Eval(Activation) ref.Val { return e.value }

// evalAttr plans both EvalAttribute and EvalTestOnly: the distinction is
// entirely in which qualifiers the planner appended (a presenceTest
// qualifier for `has(...)`/test-only selects), not in the node shape.
type evalAttr struct {
	id   int64
	attr Attribute
}

func (e *evalAttr) ID() int64                 { return e.id }
func (e *evalAttr) Eval(vars Activation) ref.Val { return e.attr.Resolve(vars) }
func (e *evalAttr) Attr() Attribute           { return e.attr }

// evalCall plans a call that the checker resolved to exactly one
// overload (EvalCall: overload, args, strict).
type evalCall struct {
	id        int64
	function  string
	overload  string
	args      []Interpretable
	impl      *functions.Overload
	nonStrict bool
}

func (e *evalCall) ID() int64 { return e.id }

func (e *evalCall) Eval(vars Activation) ref.Val {
	argVals := make([]ref.Val, len(e.args))
	for i, a := range e.args {
		argVals[i] = a.Eval(vars)
		if !e.nonStrict && (types.IsError(argVals[i]) || types.IsUnknown(argVals[i])) {
			return propagateStrict(argVals[:i+1])
		}
	}
	return withNodeID(invokeOverload(e.impl, argVals), e.id)
}

// propagateStrict returns the first error among vals, or else a merged
// Unknown, per spec §7's strict-operator absorption order (error before
// unknown is deliberately NOT the rule here: a strict call never
// absorbs, so the first fault encountered in evaluation order wins
// unless it is an Unknown that a later Unknown could merge with).
func propagateStrict(vals []ref.Val) ref.Val {
	var unk *types.Unknown
	for _, v := range vals {
		if types.IsError(v) {
			return v
		}
		if u, ok := v.(*types.Unknown); ok {
			if unk == nil {
				unk = u
			} else {
				unk = types.MergeUnknowns(unk, u)
			}
		}
	}
	return unk
}

func invokeOverload(impl *functions.Overload, args []ref.Val) ref.Val {
	switch len(args) {
	case 1:
		if impl.Unary != nil {
			return impl.Unary(args[0])
		}
	case 2:
		if impl.Binary != nil {
			return impl.Binary(args[0], args[1])
		}
	}
	if impl.Function != nil {
		return impl.Function(args...)
	}
	return types.NewErrKind(types.ErrNoMatchingOverload, "no such overload: %s", impl.Operator)
}

// evalLateBoundCall plans a call the checker left with more than one
// candidate overload id: dispatch happens against the runtime argument
// types, exactly as an unchecked call would (EvalLateBoundCall).
type evalLateBoundCall struct {
	id          int64
	function    string
	overloadIDs []string
	args        []Interpretable
	disp        Dispatcher
}

func (e *evalLateBoundCall) ID() int64 { return e.id }

func (e *evalLateBoundCall) Eval(vars Activation) ref.Val {
	argVals := make([]ref.Val, len(e.args))
	for i, a := range e.args {
		argVals[i] = a.Eval(vars)
		if types.IsError(argVals[i]) || types.IsUnknown(argVals[i]) {
			return propagateStrict(argVals[:i+1])
		}
	}
	for _, id := range e.overloadIDs {
		if impl, found := e.disp.FindOverload(id); found {
			if candidateMatches(impl, argVals) {
				return withNodeID(invokeOverload(impl, argVals), e.id)
			}
		}
	}
	if impl, found := e.disp.FindOverload(e.function); found {
		return withNodeID(invokeOverload(impl, argVals), e.id)
	}
	if glog.V(2) {
		glog.Infof("no matching overload for %s among candidates %v, arg types %v", e.function, e.overloadIDs, argTypes(argVals))
	}
	return withNodeID(types.NewErrKind(types.ErrNoMatchingOverload, "no matching overload for %s", e.function), e.id)
}

func argTypes(args []ref.Val) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Type().TypeName()
	}
	return out
}

func candidateMatches(impl *functions.Overload, args []ref.Val) bool {
	if impl.OperandTrait != nil && len(args) > 0 && !impl.OperandTrait(args[0]) {
		return false
	}
	switch len(args) {
	case 1:
		return impl.Unary != nil || impl.Function != nil
	case 2:
		return impl.Binary != nil || impl.Function != nil
	default:
		return impl.Function != nil
	}
}

// evalAnd plans `_&&_`: both operands evaluate only as needed, false
// absorbs, and a fault on one side is absorbed by a concrete false on
// the other (spec §7).
type evalAnd struct {
	id       int64
	lhs, rhs Interpretable
}

func (e *evalAnd) ID() int64 { return e.id }

func (e *evalAnd) Eval(vars Activation) ref.Val {
	lVal := e.lhs.Eval(vars)
	if lVal == types.False {
		return types.False
	}
	rVal := e.rhs.Eval(vars)
	if rVal == types.False {
		return types.False
	}
	if lVal == types.True && rVal == types.True {
		return types.True
	}
	return withNodeID(absorb(lVal, rVal), e.id)
}

// evalOr plans `_||_`, symmetric to evalAnd with true absorbing.
type evalOr struct {
	id       int64
	lhs, rhs Interpretable
}

func (e *evalOr) ID() int64 { return e.id }

func (e *evalOr) Eval(vars Activation) ref.Val {
	lVal := e.lhs.Eval(vars)
	if lVal == types.True {
		return types.True
	}
	rVal := e.rhs.Eval(vars)
	if rVal == types.True {
		return types.True
	}
	if lVal == types.False && rVal == types.False {
		return types.False
	}
	return withNodeID(absorb(lVal, rVal), e.id)
}

// absorb merges two non-decisive and/or operands, preferring an Unknown
// merge over the first Err encountered.
func absorb(a, b ref.Val) ref.Val {
	au, aIsUnk := a.(*types.Unknown)
	bu, bIsUnk := b.(*types.Unknown)
	if aIsUnk && bIsUnk {
		return types.MergeUnknowns(au, bu)
	}
	if aIsUnk {
		return au
	}
	if bIsUnk {
		return bu
	}
	if types.IsError(a) {
		return a
	}
	if types.IsError(b) {
		return b
	}
	return types.NewErrKind(types.ErrNoMatchingOverload, "no such overload: _&&_/_||_ on non-bool operand")
}

// evalConditional plans `_?_:_`: the condition is evaluated strictly,
// then exactly one branch.
type evalConditional struct {
	id                   int64
	cond, truthy, falsy Interpretable
}

func (e *evalConditional) ID() int64 { return e.id }

func (e *evalConditional) Eval(vars Activation) ref.Val {
	cVal := e.cond.Eval(vars)
	switch cVal {
	case types.True:
		return e.truthy.Eval(vars)
	case types.False:
		return e.falsy.Eval(vars)
	default:
		return withNodeID(types.MaybeNoSuchOverloadErr(cVal), e.id)
	}
}

// evalEq and evalNe plan `_==_`/`_!=_`: equality is generic over every
// value type via ref.Val.Equal, so unlike other operators it is never
// bound through the Dispatcher.
type evalEq struct {
	id       int64
	lhs, rhs Interpretable
}

func (e *evalEq) ID() int64 { return e.id }

func (e *evalEq) Eval(vars Activation) ref.Val {
	lVal := e.lhs.Eval(vars)
	if types.IsError(lVal) || types.IsUnknown(lVal) {
		return lVal
	}
	rVal := e.rhs.Eval(vars)
	if types.IsError(rVal) || types.IsUnknown(rVal) {
		return rVal
	}
	return withNodeID(lVal.Equal(rVal), e.id)
}

type evalNe struct {
	id       int64
	lhs, rhs Interpretable
}

func (e *evalNe) ID() int64 { return e.id }

func (e *evalNe) Eval(vars Activation) ref.Val {
	lVal := e.lhs.Eval(vars)
	if types.IsError(lVal) || types.IsUnknown(lVal) {
		return lVal
	}
	rVal := e.rhs.Eval(vars)
	if types.IsError(rVal) || types.IsUnknown(rVal) {
		return rVal
	}
	eq := lVal.Equal(rVal)
	if b, ok := eq.(types.Bool); ok {
		return !b
	}
	return withNodeID(eq, e.id)
}

// evalIndex plans `_[_]` when the index is not a plan-time constant (so
// it cannot fold into a static Qualifier): list, map, and optional
// indexing all dispatch through traits.Indexer.
type evalIndex struct {
	id             int64
	operand, index Interpretable
}

func (e *evalIndex) ID() int64 { return e.id }

func (e *evalIndex) Eval(vars Activation) ref.Val {
	obj := e.operand.Eval(vars)
	if types.IsError(obj) || types.IsUnknown(obj) {
		return obj
	}
	key := e.index.Eval(vars)
	if types.IsError(key) || types.IsUnknown(key) {
		return key
	}
	q := &valueQualifier{id: e.id, value: key}
	return q.Qualify(vars, obj)
}

// evalOptIndex and evalOptSelect plan `_[?_]` and `_?._`: a missing
// field, key, or absent operand optional yields optional.none() rather
// than raising, matching the checker's simplified optional(dyn) typing.
type evalOptIndex struct {
	id             int64
	operand, index Interpretable
}

func (e *evalOptIndex) ID() int64 { return e.id }

func (e *evalOptIndex) Eval(vars Activation) ref.Val {
	return evalOptionalQualify(vars, e.operand, e.index.Eval(vars), e.id)
}

type evalOptSelect struct {
	id        int64
	operand   Interpretable
	fieldName string
}

func (e *evalOptSelect) ID() int64 { return e.id }

func (e *evalOptSelect) Eval(vars Activation) ref.Val {
	return evalOptionalQualify(vars, e.operand, types.String(e.fieldName), e.id)
}

func evalOptionalQualify(vars Activation, operand Interpretable, key ref.Val, id int64) ref.Val {
	obj := operand.Eval(vars)
	if types.IsError(obj) || types.IsUnknown(obj) {
		return obj
	}
	if opt, ok := obj.(*types.Optional); ok {
		if !bool(opt.HasValue().(types.Bool)) {
			return types.OptionalNone
		}
		obj = opt.GetValue()
	}
	if types.IsError(key) || types.IsUnknown(key) {
		return key
	}
	if present, ok := presenceOf(obj, key); ok && !present {
		return types.OptionalNone
	}
	indexer, ok := obj.(traits.Indexer)
	if !ok {
		return withNodeID(types.NewErrKind(types.ErrNoMatchingOverload, "no such overload: optional index on %s", obj.Type().TypeName()), id)
	}
	v := indexer.Get(key)
	if types.IsError(v) {
		return types.OptionalNone
	}
	return types.NewOptional(v)
}

func presenceOf(obj ref.Val, key ref.Val) (bool, bool) {
	if tester, ok := obj.(traits.FieldTester); ok {
		if b, ok := tester.IsSet(key).(types.Bool); ok {
			return bool(b), true
		}
	}
	if container, ok := obj.(traits.Container); ok {
		if b, ok := container.Contains(key).(types.Bool); ok {
			return bool(b), true
		}
	}
	return false, false
}

// evalList plans a list literal, eagerly evaluating every element
// left-to-right; a `?e` optional element is omitted when absent.
type evalList struct {
	id           int64
	elems        []Interpretable
	optionals    []bool
	hasOptionals bool
}

func (e *evalList) ID() int64 { return e.id }

func (e *evalList) Eval(vars Activation) ref.Val {
	out := make([]ref.Val, 0, len(e.elems))
	for i, elem := range e.elems {
		v := elem.Eval(vars)
		if types.IsError(v) || types.IsUnknown(v) {
			return v
		}
		if e.hasOptionals && e.optionals[i] {
			opt, ok := v.(*types.Optional)
			if !ok {
				return withNodeID(types.NewErrKind(types.ErrInvalidArgument, "optional list element must be optional(T)"), e.id)
			}
			if !bool(opt.HasValue().(types.Bool)) {
				continue
			}
			v = opt.GetValue()
		}
		out = append(out, v)
	}
	return types.NewList(out)
}

// evalMap plans a map literal, left-to-right over keys then values per
// entry; a `?k: v` optional entry is omitted when the value is absent.
type evalMap struct {
	id           int64
	keys, vals   []Interpretable
	optionals    []bool
	hasOptionals bool
}

func (e *evalMap) ID() int64 { return e.id }

func (e *evalMap) Eval(vars Activation) ref.Val {
	m := types.NewMap()
	for i := range e.keys {
		k := e.keys[i].Eval(vars)
		if types.IsError(k) || types.IsUnknown(k) {
			return k
		}
		v := e.vals[i].Eval(vars)
		if types.IsError(v) || types.IsUnknown(v) {
			return v
		}
		if e.hasOptionals && e.optionals[i] {
			opt, ok := v.(*types.Optional)
			if !ok {
				return withNodeID(types.NewErrKind(types.ErrInvalidArgument, "optional map entry must be optional(T)"), e.id)
			}
			if !bool(opt.HasValue().(types.Bool)) {
				continue
			}
			v = opt.GetValue()
		}
		if err := m.Insert(k, v); err != nil {
			return withNodeID(types.NewErrKind(types.ErrInvalidArgument, "%s", err.Error()), e.id)
		}
	}
	return m
}

// evalStruct plans a message construction literal.
type evalStruct struct {
	id           int64
	typeName     string
	fields       []string
	vals         []Interpretable
	optionals    []bool
	hasOptionals bool
	provider     ref.TypeProvider
}

func (e *evalStruct) ID() int64 { return e.id }

func (e *evalStruct) Eval(vars Activation) ref.Val {
	fields := make(map[string]ref.Val, len(e.fields))
	for i, name := range e.fields {
		v := e.vals[i].Eval(vars)
		if types.IsError(v) || types.IsUnknown(v) {
			return v
		}
		if e.hasOptionals && e.optionals[i] {
			opt, ok := v.(*types.Optional)
			if !ok {
				return withNodeID(types.NewErrKind(types.ErrInvalidArgument, "optional field %s must be optional(T)", name), e.id)
			}
			if !bool(opt.HasValue().(types.Bool)) {
				continue
			}
			v = opt.GetValue()
		}
		fields[name] = v
	}
	return types.NewStruct(e.typeName, fields, e.provider)
}

// evalFold plans a comprehension (EvalFold): accu_init evaluates once in
// the outer scope, then for each element of iter_range the loop
// variable(s) and accumulator are rebound, loop_condition decides
// whether to continue, and loop_step produces the next accumulator
// value. The iteration counter is shared with every nested
// comprehension's executions through the ExecutionFrame threaded in
// vars. When iterVar2 is set, the comprehension is the two-variable
// form: iterVar binds the index (list range) or key (map range) and
// iterVar2 binds the corresponding value.
type evalFold struct {
	id                  int64
	accuVar, iterVar    string
	iterVar2            string
	hasIterVar2         bool
	iterRange, accuInit Interpretable
	cond, step, result  Interpretable
}

func (e *evalFold) ID() int64 { return e.id }

func (e *evalFold) Eval(vars Activation) ref.Val {
	rangeVal := e.iterRange.Eval(vars)
	if types.IsError(rangeVal) || types.IsUnknown(rangeVal) {
		return rangeVal
	}
	iterable, ok := rangeVal.(traits.Iterable)
	if !ok {
		return withNodeID(types.NewErrKind(types.ErrNoMatchingOverload, "not iterable: %s", rangeVal.Type().TypeName()), e.id)
	}
	accuVal := e.accuInit.Eval(vars)
	if types.IsError(accuVal) || types.IsUnknown(accuVal) {
		return accuVal
	}
	_, isMapRange := rangeVal.(traits.Mapper)
	indexer, _ := rangeVal.(traits.Indexer)

	frame := frameOf(vars)
	accuActivation := newVarActivation(vars, e.accuVar)
	it := iterable.Iterator()
	var index int64
	for bool(it.HasNext().(types.Bool)) {
		if err := frame.tickIteration(); err != nil {
			return withNodeID(err, e.id)
		}
		next := it.Next()
		accuActivation.val = accuVal
		iterActivation := newVarActivation(accuActivation, e.iterVar)
		var loopActivation Activation = iterActivation
		if e.hasIterVar2 {
			valActivation := newVarActivation(iterActivation, e.iterVar2)
			if isMapRange {
				iterActivation.val = next
				valActivation.val = indexer.Get(next)
			} else {
				iterActivation.val = types.Int(index)
				valActivation.val = next
			}
			loopActivation = valActivation
			index++
		} else {
			iterActivation.val = next
		}

		condVal := e.cond.Eval(loopActivation)
		if condVal != types.True {
			if types.IsError(condVal) || types.IsUnknown(condVal) {
				return condVal
			}
			break
		}
		stepVal := e.step.Eval(loopActivation)
		if types.IsError(stepVal) || types.IsUnknown(stepVal) {
			return stepVal
		}
		accuVal = stepVal
	}
	accuActivation.val = accuVal
	return e.result.Eval(accuActivation)
}

// evalBind evaluates the plan form of a CSE-emitted `cel.bind(@rN, expr,
// body)`: expr is evaluated once against vars, its result bound to
// varName, and body evaluated against the extended scope.
type evalBind struct {
	id      int64
	varName string
	varExpr Interpretable
	body    Interpretable
}

func (e *evalBind) ID() int64 { return e.id }

func (e *evalBind) Eval(vars Activation) ref.Val {
	val := e.varExpr.Eval(vars)
	if types.IsError(val) || types.IsUnknown(val) {
		return val
	}
	scope := newVarActivation(vars, e.varName)
	scope.val = val
	return e.body.Eval(scope)
}

// evalBlock evaluates the plan form of a CSE-emitted
// `cel.@block([e0, e1, ...], body)`: each element is evaluated in
// order against a scope that already holds every prior element's
// result bound to `@indexI`, then body evaluates against the scope
// holding every element.
type evalBlock struct {
	id    int64
	elems []Interpretable
	body  Interpretable
}

func (e *evalBlock) ID() int64 { return e.id }

func (e *evalBlock) Eval(vars Activation) ref.Val {
	scope := vars
	for i, elem := range e.elems {
		val := elem.Eval(scope)
		if types.IsError(val) || types.IsUnknown(val) {
			return val
		}
		inner := newVarActivation(scope, blockIndexName(i))
		inner.val = val
		scope = inner
	}
	return e.body.Eval(scope)
}

func blockIndexName(i int) string {
	return fmt.Sprintf("@index%d", i)
}
