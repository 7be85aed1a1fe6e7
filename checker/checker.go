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

// Package checker type-checks a parsed expression against an Env of
// declared variables and functions, annotating every expression id with
// its resolved type and every identifier/call with a Reference.
//
// This is a thin checker: it resolves names, unifies generic overload
// signatures, and validates field access, but leaves cost estimation and
// deep protobuf descriptor validation to the host application.
package checker

import (
	"fmt"

	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

type checker struct {
	env    *Env
	errors *typeErrors
	ast    *ast.AST
}

// Check type-checks parsed against env, returning a new AST carrying the
// type_map/reference_map overlay (spec's typed-overlay contract) and the
// accumulated diagnostics. A non-empty Errors does not prevent Check
// from returning a best-effort AST: every expression id still receives a
// type, falling back to dyn wherever resolution failed.
func Check(parsed *ast.AST, src common.Source, env *Env) (*ast.AST, *common.Errors) {
	checked := ast.NewCheckedAST(parsed, map[int64]*types.Type{}, map[int64]*ast.ReferenceInfo{})
	c := &checker{
		env:    env,
		errors: &typeErrors{common.NewErrors(src)},
		ast:    checked,
	}
	c.check(parsed.Expr())
	return checked, c.errors.Errors
}

func (c *checker) location(e ast.Expr) common.Location {
	return c.locationByID(e.ID())
}

func (c *checker) locationByID(id int64) common.Location {
	r, found := c.ast.SourceInfo().GetOffsetRange(id)
	if !found {
		return common.NoLocation
	}
	return common.LocationByOffset(c.ast.SourceInfo().LineOffsets(), r.Start)
}

func (c *checker) setType(e ast.Expr, t *types.Type) {
	c.ast.SetType(e.ID(), t)
}

func (c *checker) check(e ast.Expr) {
	if e == nil || e.Kind() == ast.UnspecifiedExprKind {
		return
	}
	switch e.Kind() {
	case ast.LiteralKind:
		c.checkLiteral(e)
	case ast.IdentKind:
		c.checkIdent(e)
	case ast.SelectKind:
		c.checkSelect(e)
	case ast.CallKind:
		c.checkCall(e)
	case ast.ListKind:
		c.checkCreateList(e)
	case ast.MapKind:
		c.checkCreateMap(e)
	case ast.StructKind:
		c.checkCreateStruct(e)
	case ast.ComprehensionKind:
		c.checkComprehension(e)
	}
}

func (c *checker) checkLiteral(e ast.Expr) {
	v := e.AsLiteral()
	c.setType(e, v.Type().(*types.Type))
}

func (c *checker) checkIdent(e ast.Expr) {
	name := e.AsIdent()
	if v, found := c.env.lookupIdent(name); found {
		c.setType(e, v.Type())
		c.ast.SetReference(e.ID(), ast.NewIdentReference(v.Name(), nil))
		return
	}
	if val, found := c.env.lookupEnumValue(name); found {
		c.setType(e, types.IntType)
		c.ast.SetReference(e.ID(), ast.NewIdentReference(name, val))
		return
	}
	if t, qualified, found := c.env.lookupStructType(name); found {
		c.setType(e, types.NewTypeType(t.(*types.Type)))
		c.ast.SetReference(e.ID(), ast.NewIdentReference(qualified, nil))
		return
	}
	c.errors.undeclaredReference(c.location(e), c.env.container.Name(), name)
	c.setType(e, types.DynType)
}

func (c *checker) checkSelect(e ast.Expr) {
	sel := e.AsSelect()
	if !sel.IsTestOnly() {
		if qn, found := containers.ToQualifiedName(e); found {
			if v, found := c.env.lookupIdent(qn); found {
				c.setType(e, v.Type())
				c.ast.SetReference(e.ID(), ast.NewIdentReference(v.Name(), nil))
				return
			}
			if val, found := c.env.lookupEnumValue(qn); found {
				c.setType(e, types.IntType)
				c.ast.SetReference(e.ID(), ast.NewIdentReference(qn, val))
				return
			}
		}
	}

	c.check(sel.Operand())
	opType := c.ast.GetType(sel.Operand().ID())

	switch opType.Kind() {
	case types.DynKind, types.AnyKind, types.ErrorKind:
		c.setType(e, types.DynType)
	case types.MapKind:
		if sel.IsTestOnly() {
			c.setType(e, types.BoolType)
			return
		}
		c.setType(e, opType.Parameters()[1])
	case types.OptionalKind:
		c.setType(e, types.NewOptionalType(types.DynType))
	case types.StructKind:
		var ft ref.FieldType
		var found bool
		if c.env.provider != nil {
			ft, found = c.env.provider.FindStructFieldType(opType.TypeName(), sel.FieldName())
		}
		if !found {
			c.errors.undefinedField(c.location(e), sel.FieldName())
			c.setType(e, types.DynType)
			return
		}
		if sel.IsTestOnly() {
			if !ft.SupportsPresence {
				c.errors.fieldDoesNotSupportPresenceCheck(c.location(e), sel.FieldName())
			}
			c.setType(e, types.BoolType)
			return
		}
		c.setType(e, ft.Type.(*types.Type))
	default:
		c.errors.typeDoesNotSupportFieldSelection(c.location(e), opType)
		c.setType(e, types.DynType)
	}
}

func (c *checker) checkArgs(args []ast.Expr) {
	for _, a := range args {
		c.check(a)
	}
}

// celBindFunction and celBlockFunction name the two internal call forms
// the CSE optimizer emits (spec §4.8/§6's "Plan node cel.@block"): not
// user-callable, and recognized here only because the optimizer, not a
// parser, is the sole producer of a call bearing either name.
const (
	celBindFunction  = "cel.bind"
	celBlockFunction = "cel.@block"
)

func (c *checker) checkCall(e ast.Expr) {
	call := e.AsCall()
	fnName := call.FunctionName()

	if !call.IsMemberFunction() {
		switch fnName {
		case celBindFunction:
			c.checkBind(e, call)
			return
		case celBlockFunction:
			c.checkBlock(e, call)
			return
		}
	}

	if call.IsMemberFunction() {
		target := call.Target()
		if qn, found := containers.ToQualifiedName(target); found {
			qualifiedName := qn + "." + fnName
			if fn, found := c.env.lookupFunction(qualifiedName, false); found && !fn.IsDeclarationDisabled() {
				c.checkArgs(call.Args())
				c.resolveOverloadOrError(e, fn, qualifiedName, call.Args(), false)
				return
			}
		}
		c.check(target)
		c.checkArgs(call.Args())
		fn, found := c.env.lookupFunction(fnName, true)
		if !found || fn.IsDeclarationDisabled() {
			c.errors.undeclaredReference(c.location(e), c.env.container.Name(), fnName)
			c.setType(e, types.DynType)
			return
		}
		allArgs := append([]ast.Expr{target}, call.Args()...)
		c.resolveOverloadOrError(e, fn, fnName, allArgs, true)
		return
	}

	c.checkArgs(call.Args())
	fn, found := c.env.lookupFunction(fnName, false)
	if !found || fn.IsDeclarationDisabled() {
		c.errors.undeclaredReference(c.location(e), c.env.container.Name(), fnName)
		c.setType(e, types.DynType)
		return
	}
	c.resolveOverloadOrError(e, fn, fnName, call.Args(), false)
}

// resolveOverloadOrError unifies the call's argument types against each
// of fn's overloads whose arity and member/non-member shape match,
// collecting every overload that accepts the call (the interpreter needs
// the full candidate set to dispatch correctly when dyn-typed arguments
// resolve differently at runtime) and narrowing the checked type to dyn
// whenever the matched overloads disagree on result type.
func (c *checker) resolveOverloadOrError(e ast.Expr, fn *decls.FunctionDecl, fnName string, args []ast.Expr, isMemberCall bool) {
	argTypes := make([]*types.Type, len(args))
	for i, a := range args {
		argTypes[i] = c.ast.GetType(a.ID())
	}
	var resultType *types.Type
	var matched []string
	for _, o := range fn.OverloadDecls() {
		if o.IsMemberFunction() != isMemberCall || len(o.ArgTypes()) != len(argTypes) {
			continue
		}
		subst := types.Substitution{}
		ok := true
		for i, at := range o.ArgTypes() {
			if !types.Assignable(argTypes[i], at, subst) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		matched = append(matched, o.ID())
		rt := substituteType(subst, o.ResultType())
		if resultType == nil {
			resultType = rt
		} else if !types.IsExactMatch(resultType, rt) {
			resultType = types.DynType
		}
	}
	if len(matched) == 0 {
		c.errors.noMatchingOverload(c.location(e), fnName, argTypes)
		c.setType(e, types.DynType)
		return
	}
	c.setType(e, resultType)
	c.ast.SetReference(e.ID(), ast.NewFunctionReference(matched...))
}

// checkBind types `cel.bind(@rN, expr, body)`: @rN is bound to expr's
// type for the scope of body, and the whole call takes body's type.
func (c *checker) checkBind(e ast.Expr, call ast.CallExpr) {
	args := call.Args()
	if len(args) != 3 || args[0].Kind() != ast.IdentKind {
		c.errors.noMatchingOverload(c.location(e), celBindFunction, nil)
		c.setType(e, types.DynType)
		return
	}
	name := args[0].AsIdent()
	c.check(args[1])
	valType := c.ast.GetType(args[1].ID())
	c.setType(args[0], valType)

	c.env.enterScope()
	if v, err := decls.NewVariable(name, valType); err == nil {
		c.env.addLoopVar(v)
	}
	c.check(args[2])
	resultType := c.ast.GetType(args[2].ID())
	c.env.exitScope()

	c.setType(e, resultType)
}

// checkBlock types `cel.@block([e0, e1, ...], body)`: each element is
// checked and bound to `@indexI` in order, so a later element's or
// body's reference to an earlier `@indexJ` (J < I) resolves, while a
// forward reference simply fails as an undeclared identifier.
func (c *checker) checkBlock(e ast.Expr, call ast.CallExpr) {
	args := call.Args()
	if len(args) != 2 || args[0].Kind() != ast.ListKind {
		c.errors.noMatchingOverload(c.location(e), celBlockFunction, nil)
		c.setType(e, types.DynType)
		return
	}
	elems := args[0].AsList().Elements()

	c.env.enterScope()
	for i, elem := range elems {
		c.check(elem)
		elemType := c.ast.GetType(elem.ID())
		if v, err := decls.NewVariable(fmt.Sprintf("@index%d", i), elemType); err == nil {
			c.env.addLoopVar(v)
		}
	}
	c.setType(args[0], types.NewListType(types.DynType))

	c.check(args[1])
	resultType := c.ast.GetType(args[1].ID())
	c.env.exitScope()

	c.setType(e, resultType)
}

func (c *checker) checkCreateList(e ast.Expr) {
	l := e.AsList()
	var elemType *types.Type
	for _, elem := range l.Elements() {
		c.check(elem)
		elemType = c.joinTypes(c.location(elem), elemType, c.ast.GetType(elem.ID()))
	}
	if elemType == nil {
		elemType = types.DynType
	}
	c.setType(e, types.NewListType(elemType))
}

func (c *checker) checkCreateMap(e ast.Expr) {
	m := e.AsMap()
	var keyType, valType *types.Type
	for _, entry := range m.Entries() {
		me := entry.AsMapEntry()
		c.check(me.Key())
		c.check(me.Value())
		keyType = c.joinTypes(c.location(me.Key()), keyType, c.ast.GetType(me.Key().ID()))
		valType = c.joinTypes(c.location(me.Value()), valType, c.ast.GetType(me.Value().ID()))
	}
	if keyType == nil {
		keyType = types.DynType
	}
	if valType == nil {
		valType = types.DynType
	}
	c.setType(e, types.NewMapType(keyType, valType))
}

func (c *checker) checkCreateStruct(e ast.Expr) {
	s := e.AsStruct()
	_, qualified, found := c.env.lookupStructType(s.TypeName())
	if !found {
		c.errors.notAType(c.location(e), s.TypeName())
		qualified = s.TypeName()
	}
	for _, entry := range s.Fields() {
		field := entry.AsStructField()
		c.check(field.Value())
		if !found {
			continue
		}
		ft, fieldFound := c.env.provider.FindStructFieldType(qualified, field.Name())
		if !fieldFound {
			c.errors.undefinedField(c.locationByID(entry.ID()), field.Name())
			continue
		}
		valType := c.ast.GetType(field.Value().ID())
		declared := ft.Type.(*types.Type)
		if types.Assignable(valType, declared, nil) {
			continue
		}
		if field.IsOptional() && types.Assignable(valType, types.NewOptionalType(declared), nil) {
			continue
		}
		c.errors.fieldTypeMismatch(c.location(field.Value()), field.Name(), declared, valType)
	}
	c.setType(e, types.NewStructType(qualified))
}

func (c *checker) checkComprehension(e ast.Expr) {
	comp := e.AsComprehension()
	c.check(comp.IterRange())
	rangeType := c.ast.GetType(comp.IterRange().ID())

	var iterVarType *types.Type
	switch rangeType.Kind() {
	case types.ListKind:
		iterVarType = rangeType.Parameters()[0]
	case types.MapKind:
		iterVarType = rangeType.Parameters()[0]
	case types.DynKind, types.AnyKind, types.ErrorKind:
		iterVarType = types.DynType
	default:
		c.errors.notAComprehensionRange(c.location(comp.IterRange()), rangeType)
		iterVarType = types.DynType
	}

	c.check(comp.AccuInit())
	accuType := c.ast.GetType(comp.AccuInit().ID())

	c.env.enterScope()
	if iterVar, err := decls.NewVariable(comp.IterVar(), iterVarType); err == nil {
		c.env.addLoopVar(iterVar)
	}
	if accuVar, err := decls.NewVariable(comp.AccuVar(), accuType); err == nil {
		c.env.addLoopVar(accuVar)
	}

	c.check(comp.LoopCondition())
	condType := c.ast.GetType(comp.LoopCondition().ID())
	if condType.Kind() != types.DynKind && !types.IsExactMatch(condType, types.BoolType) {
		c.errors.typeMismatch(c.location(comp.LoopCondition()), types.BoolType, condType)
	}

	c.check(comp.LoopStep())
	stepType := c.ast.GetType(comp.LoopStep().ID())
	if !types.Assignable(stepType, accuType, nil) {
		c.errors.typeMismatch(c.location(comp.LoopStep()), accuType, stepType)
	}

	c.check(comp.Result())
	resultType := c.ast.GetType(comp.Result().ID())
	c.env.exitScope()

	c.setType(e, resultType)
}

// joinTypes widens an aggregate literal's running element type to admit
// next, reporting a TypeError when the two cannot share a homogeneous
// list/map type even under dyn or (if enabled) cross-numeric promotion.
func (c *checker) joinTypes(loc common.Location, accum, next *types.Type) *types.Type {
	if accum == nil {
		return next
	}
	if types.IsExactMatch(accum, next) {
		return accum
	}
	if accum.Kind() == types.DynKind || next.Kind() == types.DynKind {
		return types.DynType
	}
	if c.env.crossTypeNumericComparisons && isNumeric(accum) && isNumeric(next) {
		return types.DynType
	}
	c.errors.aggregateTypeMismatch(loc, accum, next)
	return types.DynType
}

func isNumeric(t *types.Type) bool {
	switch t.Kind() {
	case types.IntKind, types.UintKind, types.DoubleKind:
		return true
	default:
		return false
	}
}
