// Copyright 2022 Google LLC
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

import "github.com/exprcel/cel/common/ast"

// celBindFunction names the internal `cel.bind(ident, expr, body)` call
// form the checker (checker.checkBind) and planner (planner.planBind)
// already recognize natively as a scoping construct, independent of the
// CSE optimizer that is its other producer.
const celBindFunction = "cel.bind"

// NewBind builds a `cel.bind(varName, varExpr, resultExpr)` call node
// directly, in place of the teacher's `cel.bind` macro: with no textual
// parser in this module's scope (spec §1/§6), a macro has no expansion
// phase to run during, so a host application that wants to introduce a
// local binding constructs the call form with this helper instead of
// writing source text for a parser to expand.
//
//	NewBind(fac, idGen, "x", fac.NewLiteral(idGen(), types.Int(1)),
//	    fac.NewCall(idGen(), operators.Add, fac.NewIdent(idGen(), "x"), fac.NewIdent(idGen(), "x")))
//	// equivalent to the source text: cel.bind(x, 1, x + x)
func NewBind(fac ast.ExprFactory, idGen ast.IDGenerator, varName string, varExpr, resultExpr ast.Expr) ast.Expr {
	return fac.NewCall(idGen(), celBindFunction,
		fac.NewIdent(idGen(), varName),
		varExpr,
		resultExpr,
	)
}
