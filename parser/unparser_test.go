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

package parser

import (
	"testing"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/operators"
)

var uf = ast.NewExprFactory()

func unparse(t *testing.T, e ast.Expr) string {
	t.Helper()
	return unparseWithInfo(t, e, ast.NewSourceInfo(""))
}

func unparseWithInfo(t *testing.T, e ast.Expr, info *ast.SourceInfo) string {
	t.Helper()
	out, err := Unparse(ast.NewAST(e, info))
	if err != nil {
		t.Fatalf("Unparse() failed: %v", err)
	}
	return out
}

func ident(id int64, name string) ast.Expr { return uf.NewIdent(id, name) }

// a + b - c
func TestUnparseAddSubtractChainsWithoutParens(t *testing.T) {
	e := uf.NewCall(3, operators.Subtract,
		uf.NewCall(1, operators.Add, ident(10, "a"), ident(11, "b")),
		ident(12, "c"))
	if got, want := unparse(t, e), "a + b - c"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// (a + b) * c / (d - e)
func TestUnparseParenthesizesLowerPrecedenceOperands(t *testing.T) {
	add := uf.NewCall(1, operators.Add, ident(10, "a"), ident(11, "b"))
	mul := uf.NewCall(2, operators.Multiply, add, ident(12, "c"))
	sub := uf.NewCall(3, operators.Subtract, ident(13, "d"), ident(14, "e"))
	div := uf.NewCall(4, operators.Divide, mul, sub)
	if got, want := unparse(t, div), "(a + b) * c / (d - e)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// a * (b / c) % 0 -- same-precedence right operand of a left-associative
// operator must stay parenthesized, or it would silently regroup.
func TestUnparseParenthesizesEqualPrecedenceRightOperand(t *testing.T) {
	div := uf.NewCall(1, operators.Divide, ident(10, "b"), ident(11, "c"))
	mul := uf.NewCall(2, operators.Multiply, ident(12, "a"), div)
	mod := uf.NewCall(3, operators.Modulo, mul, uf.NewLiteral(13, types.Int(0)))
	if got, want := unparse(t, mod), "a * (b / c) % 0"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// a * b / c % 0 -- the equivalent left-nested chain needs no parens at all.
func TestUnparseLeftNestedChainNeedsNoParens(t *testing.T) {
	mul := uf.NewCall(1, operators.Multiply, ident(10, "a"), ident(11, "b"))
	div := uf.NewCall(2, operators.Divide, mul, ident(12, "c"))
	mod := uf.NewCall(3, operators.Modulo, div, uf.NewLiteral(13, types.Int(0)))
	if got, want := unparse(t, mod), "a * b / c % 0"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// 1 - (2 == -1) -- a relational (lower precedence) operand of an additive
// operator always needs parens, on either side.
func TestUnparseParenthesizesLowerPrecedenceAcrossRelational(t *testing.T) {
	neg := uf.NewCall(1, operators.Negate, uf.NewLiteral(10, types.Int(1)))
	eq := uf.NewCall(2, operators.Equals, uf.NewLiteral(11, types.Int(2)), neg)
	sub := uf.NewCall(3, operators.Subtract, uf.NewLiteral(12, types.Int(1)), eq)
	if got, want := unparse(t, sub), "1 - (2 == -1)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// -(1 * 2) -- unary binds tighter than multiplicative, so the operand needs
// parens to keep the whole product (not just the first factor) negated.
func TestUnparseNegateWrapsLowerPrecedenceOperand(t *testing.T) {
	mul := uf.NewCall(1, operators.Multiply, uf.NewLiteral(10, types.Int(1)), uf.NewLiteral(11, types.Int(2)))
	neg := uf.NewCall(2, operators.Negate, mul)
	if got, want := unparse(t, neg), "-(1 * 2)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// a ? b : c ? d : e always prints with the nested false-branch ternary
// parenthesized, even though the input had none.
func TestUnparseConditionalAlwaysParenthesizesNestedFalseBranch(t *testing.T) {
	inner := uf.NewCall(1, operators.Conditional, ident(10, "c"), ident(11, "d"), ident(12, "e"))
	outer := uf.NewCall(2, operators.Conditional, ident(13, "a"), ident(14, "b"), inner)
	if got, want := unparse(t, outer), "a ? b : (c ? d : e)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// (a || b ? c : d).e -- a compound (operator) ternary condition is always
// parenthesized, and the whole ternary is parenthesized again as a select target.
func TestUnparseConditionalOperandAndSelectTargetParens(t *testing.T) {
	or := uf.NewCall(1, operators.LogicalOr, ident(10, "a"), ident(11, "b"))
	cond := uf.NewCall(2, operators.Conditional, or, ident(12, "c"), ident(13, "d"))
	sel := uf.NewSelect(3, cond, "e")
	if got, want := unparse(t, sel), "((a || b) ? c : d).e"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// a[1]["b"] and a[b][c].name -- chained index/select targets never need
// parens around each other, only around an operator-call target.
func TestUnparseChainedIndexAndSelect(t *testing.T) {
	idx1 := uf.NewCall(1, operators.Index, ident(10, "a"), uf.NewLiteral(11, types.Int(1)))
	idx2 := uf.NewCall(2, operators.Index, idx1, uf.NewLiteral(12, types.String("b")))
	if got, want := unparse(t, idx2), `a[1]["b"]`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	idxB := uf.NewCall(3, operators.Index, ident(10, "a"), ident(13, "b"))
	idxC := uf.NewCall(4, operators.Index, idxB, ident(14, "c"))
	sel := uf.NewSelect(5, idxC, "name")
	if got, want := unparse(t, sel), "a[b][c].name"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// a.?b, a[?b], [?a, ?b, c], {?a: b, c: d} -- optional select/index/list/map syntax.
func TestUnparseOptionalSyntax(t *testing.T) {
	optSel := uf.NewCall(1, operators.OptSelect, ident(10, "a"), uf.NewLiteral(11, types.String("b")))
	if got, want := unparse(t, optSel), "a.?b"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	optIdx := uf.NewCall(2, operators.OptIndex, ident(10, "a"), ident(12, "b"))
	if got, want := unparse(t, optIdx), "a[?b]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	list := uf.NewList(3, []ast.Expr{ident(13, "a"), ident(14, "b"), ident(15, "c")}, []int32{0, 1})
	if got, want := unparse(t, list), "[?a, ?b, c]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	m := uf.NewMap(4, []ast.EntryExpr{
		uf.NewMapEntry(20, ident(21, "a"), ident(22, "b"), true),
		uf.NewMapEntry(23, ident(24, "c"), ident(25, "d"), false),
	})
	if got, want := unparse(t, m), "{?a: b, c: d}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// v1alpha1.Expr{?id: id, call_expr: x} -- struct literal with an optional field.
func TestUnparseStructWithOptionalField(t *testing.T) {
	s := uf.NewStruct(1, "v1alpha1.Expr", []ast.EntryExpr{
		uf.NewStructField(10, "id", ident(11, "id"), true),
		uf.NewStructField(12, "call_expr", ident(13, "x"), false),
	})
	if got, want := unparse(t, s), "v1alpha1.Expr{?id: id, call_expr: x}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Literal rendering: quoted strings, octal-escaped bytes, uint suffix, bool, null.
func TestUnparseLiterals(t *testing.T) {
	cases := []struct {
		val  ast.Expr
		want string
	}{
		{uf.NewLiteral(1, types.String(`hello:"world"`)), `"hello:\"world\""`},
		{uf.NewLiteral(2, types.Bytes([]byte{0xc3, 0x83, 0xc2, 0xbf})), `b"\303\203\302\277"`},
		{uf.NewLiteral(3, types.Uint(42)), "42u"},
		{uf.NewLiteral(4, types.Bool(true)), "true"},
		{uf.NewLiteral(5, types.NullValue), "null"},
		{uf.NewLiteral(6, types.Int(-405069)), "-405069"},
	}
	for _, c := range cases {
		if got := unparse(t, c.val); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

// [1, 2, 3].exists(x, x > 0) -- printed from the macro-call snapshot, not
// the desugared comprehension the snapshot's id is actually attached to.
func TestUnparseUsesMacroCallSnapshot(t *testing.T) {
	list := uf.NewList(2, []ast.Expr{
		uf.NewLiteral(20, types.Int(1)), uf.NewLiteral(21, types.Int(2)), uf.NewLiteral(22, types.Int(3)),
	}, nil)
	cond := uf.NewCall(23, operators.Greater, ident(24, "x"), uf.NewLiteral(25, types.Int(0)))
	macroCall := uf.NewMemberCall(1, "exists", list, ident(26, "x"), cond)

	comprehension := uf.NewComprehension(1, list, "x", "__result__",
		uf.NewLiteral(30, types.Bool(false)),
		uf.NewCall(31, operators.NotStrictlyFalse, ident(32, "__result__")),
		cond,
		uf.NewAccuIdent(33))

	info := ast.NewSourceInfo("")
	info.SetMacroCall(1, macroCall)

	if got, want := unparseWithInfo(t, comprehension, info), "[1, 2, 3].exists(x, x > 0)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// has(hello.world) -- the has() macro falls back to its surface form when
// a test-only select is unparsed without a macro-call snapshot.
func TestUnparseHasFallsBackWithoutSnapshot(t *testing.T) {
	hello := ident(10, "hello")
	test := uf.NewPresenceTest(1, hello, "world")
	if got, want := unparse(t, test), "has(hello.world)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// cel.bind/cel.@block print verbatim as ordinary function calls, since
// their call tree already is the canonical form (no macro-call overlay
// is registered for CSE output).
func TestUnparseCELBindAndBlockPrintVerbatim(t *testing.T) {
	bind := uf.NewCall(1, "cel.bind",
		ident(10, "@r0"),
		uf.NewCall(11, "size", uf.NewList(12, []ast.Expr{uf.NewLiteral(13, types.Int(0))}, nil)),
		uf.NewCall(14, operators.Add, ident(15, "@r0"), ident(16, "@r0")))
	if got, want := unparse(t, bind), "cel.bind(@r0, size([0]), @r0 + @r0)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	block := uf.NewCall(2, "cel.@block",
		uf.NewList(20, []ast.Expr{uf.NewLiteral(21, types.Int(1))}, nil),
		uf.NewCall(22, operators.Add, ident(23, "@index0"), ident(24, "@index0")))
	if got, want := unparse(t, block), "cel.@block([1], @index0 + @index0)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// a.hello("world") and size(a ? (b ? c : d) : e) -- ordinary member/global
// calls whose arguments include a nested ternary needing its own parens.
func TestUnparseFunctionCalls(t *testing.T) {
	member := uf.NewMemberCall(1, "hello", ident(10, "a"), uf.NewLiteral(11, types.String("world")))
	if got, want := unparse(t, member), `a.hello("world")`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	inner := uf.NewCall(2, operators.Conditional, ident(20, "b"), ident(21, "c"), ident(22, "d"))
	outer := uf.NewCall(3, operators.Conditional, ident(23, "a"), inner, ident(24, "e"))
	global := uf.NewCall(4, "size", outer)
	if got, want := unparse(t, global), "size(a ? (b ? c : d) : e)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
