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

// Package parser turns a checked or unchecked AST back into canonical
// CEL source text. It is the read-only counterpart of the (external,
// out of scope) textual parser: the core only ever needs to go from
// Expr back to source, never the reverse.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/operators"
)

// operator precedence, highest number binds tightest. Non-operator
// calls, selects, indices, and literals are treated as atoms: they
// never need parenthesizing to appear inside a lower-precedence
// expression, because their own syntax (a dot, a bracket, a pair of
// parens around the call's arguments) already delimits them.
const (
	precConditional = 1
	precLogicalOr   = 2
	precLogicalAnd  = 3
	precRelation    = 4
	precAdditive    = 5
	precMultiplic   = 6
	precUnary       = 7
	precAtom        = 8
)

var binaryPrecedence = map[string]int{
	operators.LogicalOr:     precLogicalOr,
	operators.LogicalAnd:    precLogicalAnd,
	operators.Equals:        precRelation,
	operators.NotEquals:     precRelation,
	operators.Less:          precRelation,
	operators.LessEquals:    precRelation,
	operators.Greater:       precRelation,
	operators.GreaterEquals: precRelation,
	operators.In:            precRelation,
	operators.Add:           precAdditive,
	operators.Subtract:      precAdditive,
	operators.Multiply:      precMultiplic,
	operators.Divide:        precMultiplic,
	operators.Modulo:        precMultiplic,
}

var binarySymbol = map[string]string{
	operators.LogicalOr:     "||",
	operators.LogicalAnd:    "&&",
	operators.Equals:        "==",
	operators.NotEquals:     "!=",
	operators.Less:          "<",
	operators.LessEquals:    "<=",
	operators.Greater:       ">",
	operators.GreaterEquals: ">=",
	operators.In:            "in",
	operators.Add:           "+",
	operators.Subtract:      "-",
	operators.Multiply:      "*",
	operators.Divide:        "/",
	operators.Modulo:        "%",
}

var unarySymbol = map[string]string{
	operators.LogicalNot: "!",
	operators.Negate:     "-",
}

// Unparse renders a's expression as canonical CEL source, consulting
// a's macro-call overlay so a comprehension prints as the macro that
// produced it (`[1].exists(i, i > 0)`) rather than its desugared
// `__comprehension__` form, and printing cel.bind/cel.@block (the CSE
// optimizer's internal call forms) as ordinary function calls.
func Unparse(a *ast.AST) (string, error) {
	un := &unparser{info: a.SourceInfo()}
	if err := un.visit(a.Expr(), precConditional); err != nil {
		return "", err
	}
	return un.str.String(), nil
}

type unparser struct {
	str  strings.Builder
	info *ast.SourceInfo
}

// visit renders e, consulting the macro-call overlay first. minPrec is
// the precedence e must appear to have to avoid parenthesization in
// its caller's position; it only matters for the operator dispatch in
// visitCall, every other shape delimits itself.
func (un *unparser) visit(e ast.Expr, minPrec int) error {
	if call, found := un.info.GetMacroCall(e.ID()); found {
		e = call
	}
	switch e.Kind() {
	case ast.LiteralKind:
		un.str.WriteString(formatUnparsedLiteral(e.AsLiteral()))
		return nil
	case ast.IdentKind:
		un.str.WriteString(e.AsIdent())
		return nil
	case ast.SelectKind:
		return un.visitSelect(e.AsSelect())
	case ast.CallKind:
		return un.visitCall(e.AsCall(), minPrec)
	case ast.ListKind:
		return un.visitList(e.AsList())
	case ast.MapKind:
		return un.visitMap(e.AsMap())
	case ast.StructKind:
		return un.visitStruct(e.AsStruct())
	case ast.ComprehensionKind:
		return fmt.Errorf("cannot unparse comprehension id %d: no macro-call snapshot recorded", e.ID())
	default:
		return fmt.Errorf("cannot unparse expression id %d: unspecified kind", e.ID())
	}
}

// visitSelect renders a field selection. A test-only select is the
// desugared form of the has() macro; it should only ever be reached
// here when the enclosing has() call's macro-call snapshot is
// missing, in which case it falls back to printing the equivalent
// has(...) surface form rather than exposing the internal marker.
func (un *unparser) visitSelect(s ast.SelectExpr) error {
	if s.IsTestOnly() {
		un.str.WriteString("has(")
		if err := un.visitPostfixTarget(s.Operand()); err != nil {
			return err
		}
		un.str.WriteString(".")
		un.str.WriteString(s.FieldName())
		un.str.WriteString(")")
		return nil
	}
	if err := un.visitPostfixTarget(s.Operand()); err != nil {
		return err
	}
	un.str.WriteString(".")
	un.str.WriteString(s.FieldName())
	return nil
}

func (un *unparser) visitCall(c ast.CallExpr, minPrec int) error {
	fn := c.FunctionName()
	args := c.Args()

	if !c.IsMemberFunction() {
		switch fn {
		case operators.Conditional:
			return un.visitConditional(args[0], args[1], args[2])
		case operators.LogicalNot, operators.Negate:
			return un.visitUnary(fn, args[0], minPrec)
		case operators.Index, operators.OptIndex:
			return un.visitIndex(fn, args[0], args[1])
		case operators.OptSelect:
			return un.visitOptSelect(args[0], args[1])
		}
		if prec, isBinary := binaryPrecedence[fn]; isBinary {
			return un.visitBinary(fn, prec, args[0], args[1], minPrec)
		}
	}

	if c.IsMemberFunction() {
		if err := un.visitPostfixTarget(c.Target()); err != nil {
			return err
		}
		un.str.WriteString(".")
	}
	un.str.WriteString(fn)
	un.str.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			un.str.WriteString(", ")
		}
		if err := un.visit(arg, precConditional); err != nil {
			return err
		}
	}
	un.str.WriteString(")")
	return nil
}

// visitBinary renders `lhs <op> rhs`, parenthesizing a side only when
// omitting parens would change how the result parses: a lower
// precedence operand on either side, or an equal-precedence operand
// on the right (every binary operator here associates left, so an
// equal-precedence right operand would otherwise regroup).
func (un *unparser) visitBinary(fn string, prec int, lhs, rhs ast.Expr, minPrec int) error {
	needOuter := prec < minPrec
	if needOuter {
		un.str.WriteString("(")
	}
	if err := un.visitOperand(lhs, prec, false); err != nil {
		return err
	}
	un.str.WriteString(" ")
	un.str.WriteString(binarySymbol[fn])
	un.str.WriteString(" ")
	if err := un.visitOperand(rhs, prec, true); err != nil {
		return err
	}
	if needOuter {
		un.str.WriteString(")")
	}
	return nil
}

// visitOperand renders a binary/unary operator's operand, wrapping it
// in parens if its own precedence would otherwise let it merge into
// the parent operator's grouping incorrectly.
func (un *unparser) visitOperand(e ast.Expr, parentPrec int, isRight bool) error {
	childPrec, isOp := operatorPrecedenceOf(e)
	if isOp && (childPrec < parentPrec || (isRight && childPrec == parentPrec)) {
		un.str.WriteString("(")
		if err := un.visit(e, precConditional); err != nil {
			return err
		}
		un.str.WriteString(")")
		return nil
	}
	return un.visit(e, parentPrec)
}

func (un *unparser) visitUnary(fn string, operand ast.Expr, minPrec int) error {
	needOuter := precUnary < minPrec
	if needOuter {
		un.str.WriteString("(")
	}
	un.str.WriteString(unarySymbol[fn])
	childPrec, isOp := operatorPrecedenceOf(operand)
	if isOp && childPrec < precUnary {
		un.str.WriteString("(")
		if err := un.visit(operand, precConditional); err != nil {
			return err
		}
		un.str.WriteString(")")
	} else if err := un.visit(operand, precUnary); err != nil {
		return err
	}
	if needOuter {
		un.str.WriteString(")")
	}
	return nil
}

// visitConditional renders `cond ? ifTrue : ifFalse`. Unlike every
// other operator here, each of the three operands is parenthesized
// whenever it is itself an operator expression, independent of
// whether the parens are strictly load-bearing: a ternary's branches
// read better set off from its own `?`/`:`, and a ternary nested in
// the false branch is always marked explicit since `?:` chains right
// and an unparenthesized nested ternary there would otherwise be easy
// to misread as the next alternative of the outer one.
func (un *unparser) visitConditional(cond, ifTrue, ifFalse ast.Expr) error {
	if err := un.visitTernaryOperand(cond); err != nil {
		return err
	}
	un.str.WriteString(" ? ")
	if err := un.visitTernaryOperand(ifTrue); err != nil {
		return err
	}
	un.str.WriteString(" : ")
	return un.visitTernaryOperand(ifFalse)
}

func (un *unparser) visitTernaryOperand(e ast.Expr) error {
	if isOperatorCall(e) {
		un.str.WriteString("(")
		if err := un.visit(e, precConditional); err != nil {
			return err
		}
		un.str.WriteString(")")
		return nil
	}
	return un.visit(e, precAtom)
}

func (un *unparser) visitIndex(fn string, target, key ast.Expr) error {
	if err := un.visitPostfixTarget(target); err != nil {
		return err
	}
	if fn == operators.OptIndex {
		un.str.WriteString("[?")
	} else {
		un.str.WriteString("[")
	}
	if err := un.visit(key, precConditional); err != nil {
		return err
	}
	un.str.WriteString("]")
	return nil
}

// visitOptSelect renders `_?._`, whose field operand the planner
// requires to be a string literal (see planner.planOptSelect) rather
// than a general expression, so it prints as a bare field name.
func (un *unparser) visitOptSelect(target, field ast.Expr) error {
	if err := un.visitPostfixTarget(target); err != nil {
		return err
	}
	un.str.WriteString(".?")
	name, ok := field.AsLiteral().Value().(string)
	if !ok {
		return fmt.Errorf("cannot unparse optional select id %d: field is not a string literal", field.ID())
	}
	un.str.WriteString(name)
	return nil
}

// visitPostfixTarget renders the target of a select/index/call, which
// binds tighter than any operator: an operator-call target always
// needs parens, anything else (ident, literal, list/map/struct, a
// non-operator call, another select/index) is self-delimiting.
func (un *unparser) visitPostfixTarget(e ast.Expr) error {
	if isOperatorCall(e) {
		un.str.WriteString("(")
		if err := un.visit(e, precConditional); err != nil {
			return err
		}
		un.str.WriteString(")")
		return nil
	}
	return un.visit(e, precAtom)
}

func (un *unparser) visitList(l ast.ListExpr) error {
	opt := make(map[int]bool, len(l.OptionalIndices()))
	for _, idx := range l.OptionalIndices() {
		opt[int(idx)] = true
	}
	un.str.WriteString("[")
	for i, elem := range l.Elements() {
		if i > 0 {
			un.str.WriteString(", ")
		}
		if opt[i] {
			un.str.WriteString("?")
		}
		if err := un.visit(elem, precConditional); err != nil {
			return err
		}
	}
	un.str.WriteString("]")
	return nil
}

func (un *unparser) visitMap(m ast.MapExpr) error {
	un.str.WriteString("{")
	for i, entry := range m.Entries() {
		if i > 0 {
			un.str.WriteString(", ")
		}
		me := entry.AsMapEntry()
		if me.IsOptional() {
			un.str.WriteString("?")
		}
		if err := un.visit(me.Key(), precConditional); err != nil {
			return err
		}
		un.str.WriteString(": ")
		if err := un.visit(me.Value(), precConditional); err != nil {
			return err
		}
	}
	un.str.WriteString("}")
	return nil
}

func (un *unparser) visitStruct(s ast.StructExpr) error {
	un.str.WriteString(s.TypeName())
	un.str.WriteString("{")
	for i, field := range s.Fields() {
		if i > 0 {
			un.str.WriteString(", ")
		}
		sf := field.AsStructField()
		if sf.IsOptional() {
			un.str.WriteString("?")
		}
		un.str.WriteString(sf.Name())
		un.str.WriteString(": ")
		if err := un.visit(sf.Value(), precConditional); err != nil {
			return err
		}
	}
	un.str.WriteString("}")
	return nil
}

// operatorPrecedenceOf reports the precedence of e if e is a call to
// one of the operator functions this unparser special-cases, so a
// caller can decide whether e needs parens in its position.
func operatorPrecedenceOf(e ast.Expr) (int, bool) {
	if e.Kind() != ast.CallKind {
		return 0, false
	}
	c := e.AsCall()
	if c.IsMemberFunction() {
		return 0, false
	}
	if prec, found := binaryPrecedence[c.FunctionName()]; found {
		return prec, true
	}
	switch c.FunctionName() {
	case operators.LogicalNot, operators.Negate:
		return precUnary, true
	case operators.Conditional:
		return precConditional, true
	}
	return 0, false
}

func isOperatorCall(e ast.Expr) bool {
	_, isOp := operatorPrecedenceOf(e)
	return isOp
}

// formatUnparsedLiteral renders a literal value the way CEL source
// spells it: quoted strings, octal-escaped byte strings, a trailing u
// on unsigned ints, and bare numerals/booleans/null otherwise.
func formatUnparsedLiteral(v ref.Val) string {
	switch val := v.Value().(type) {
	case string:
		return strconv.Quote(val)
	case []byte:
		var b strings.Builder
		b.WriteString(`b"`)
		for _, c := range val {
			fmt.Fprintf(&b, "\\%03o", c)
		}
		b.WriteString(`"`)
		return b.String()
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10) + "u"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}
