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

package ext

import (
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/operators"
)

// NewTransformList builds a single-variable comprehension equivalent to
// the teacher's two-variable `transformList` macro, reduced to this
// module's single-iteration-variable ast.ExprFactory.NewComprehension
// (no index/key companion variable is available to bind, since C3 built
// only a single-var comprehension kind): iterate rangeExpr, optionally
// skip elements where filterExpr (over iterVar) is false, and collect
// transformExpr (over iterVar) into a new list.
//
//	NewTransformList(fac, idGen, rangeExpr, "x", nil, transformOfX)
//	// equivalent to the source text: rangeExpr.transformList(x, transformOfX)
func NewTransformList(fac ast.ExprFactory, idGen ast.IDGenerator, rangeExpr ast.Expr, iterVar string, filterExpr, transformExpr ast.Expr) ast.Expr {
	step := fac.NewCall(idGen(), operators.Add, fac.NewAccuIdent(idGen()),
		fac.NewList(idGen(), []ast.Expr{transformExpr}, nil))
	if filterExpr != nil {
		step = fac.NewCall(idGen(), operators.Conditional, filterExpr, step, fac.NewAccuIdent(idGen()))
	}
	return fac.NewComprehension(idGen(), rangeExpr, iterVar, ast.AccumulatorName,
		fac.NewList(idGen(), nil, nil),
		fac.NewLiteral(idGen(), types.True),
		step,
		fac.NewAccuIdent(idGen()),
	)
}

// NewTransformMap builds a single-variable comprehension equivalent to
// the teacher's two-variable `transformMap` macro: iterate rangeExpr
// (a list or map), optionally skip elements where filterExpr (over
// iterVar) is false, and insert {iterVar: transformExpr} into a new map
// for each surviving element, merging successive entries with the
// Maps() library's merge function rather than a dedicated insert
// primitive (none exists in this module's core call forms).
//
//	NewTransformMap(fac, idGen, rangeExpr, "x", nil, transformOfX)
//	// equivalent to the source text: rangeExpr.transformMap(x, transformOfX)
func NewTransformMap(fac ast.ExprFactory, idGen ast.IDGenerator, rangeExpr ast.Expr, iterVar string, filterExpr, transformExpr ast.Expr) ast.Expr {
	entry := fac.NewMap(idGen(), []ast.EntryExpr{
		fac.NewMapEntry(idGen(), fac.NewIdent(idGen(), iterVar), transformExpr, false),
	})
	step := fac.NewMemberCall(idGen(), "merge", fac.NewAccuIdent(idGen()), entry)
	if filterExpr != nil {
		step = fac.NewCall(idGen(), operators.Conditional, filterExpr, step, fac.NewAccuIdent(idGen()))
	}
	return fac.NewComprehension(idGen(), rangeExpr, iterVar, ast.AccumulatorName,
		fac.NewMap(idGen(), nil),
		fac.NewLiteral(idGen(), types.True),
		step,
		fac.NewAccuIdent(idGen()),
	)
}

// NewTransformMapEntry is NewTransformMap's map-entry-producing sibling:
// transformExpr must itself evaluate to a single-entry map (typically
// built with fac.NewMap of one key/value pair), merged into the result
// the same way. Grounded on the teacher's `transformMapEntry`, which
// lets the transform expression compute both the key and the value
// together rather than reusing iterVar as the key unconditionally.
func NewTransformMapEntry(fac ast.ExprFactory, idGen ast.IDGenerator, rangeExpr ast.Expr, iterVar string, filterExpr, transformExpr ast.Expr) ast.Expr {
	step := fac.NewMemberCall(idGen(), "merge", fac.NewAccuIdent(idGen()), transformExpr)
	if filterExpr != nil {
		step = fac.NewCall(idGen(), operators.Conditional, filterExpr, step, fac.NewAccuIdent(idGen()))
	}
	return fac.NewComprehension(idGen(), rangeExpr, iterVar, ast.AccumulatorName,
		fac.NewMap(idGen(), nil),
		fac.NewLiteral(idGen(), types.True),
		step,
		fac.NewAccuIdent(idGen()),
	)
}
