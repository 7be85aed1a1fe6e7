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

// Package operators holds the canonical function names the parser
// desugars infix/unary/macro syntax into. These names double as
// overload-id prefixes, so they are part of the wire contract between
// the parser, checker, and interpreter.
package operators

// Function name constants for CEL's built-in operators and macros.
const (
	Conditional   = "_?_:_"
	LogicalAnd    = "_&&_"
	LogicalOr     = "_||_"
	LogicalNot    = "!_"
	In            = "_in_"
	Equals        = "_==_"
	NotEquals     = "_!=_"
	Less          = "_<_"
	LessEquals    = "_<=_"
	Greater       = "_>_"
	GreaterEquals = "_>=_"
	Add           = "_+_"
	Subtract      = "_-_"
	Multiply      = "_*_"
	Divide        = "_/_"
	Modulo        = "_%_"
	Negate        = "-_"
	Index         = "_[_]"
	OptIndex      = "_[?_]"
	OptSelect     = "_?._"
	Has           = "has"
	All           = "all"
	Exists        = "exists"
	ExistsOne     = "exists_one"
	Map           = "map"
	Filter        = "filter"

	// NotStrictlyFalse and OldNotStrictlyFalse back comprehension
	// short-circuiting: `all`/`exists` fold their accumulator through
	// this function so a non-bool accumulator (an error or unknown)
	// does not abort the loop early.
	NotStrictlyFalse    = "@not_strictly_false"
	OldNotStrictlyFalse = "__not_strictly_false__"

	// OldIn is the deprecated spelling of In retained for backward
	// compatible parsing of serialized expressions.
	OldIn = "_in_"
)

var symbolicOperators = map[string]string{
	"+":  Add,
	"-":  Subtract,
	"*":  Multiply,
	"/":  Divide,
	"%":  Modulo,
	"in": In,
	"==": Equals,
	"!=": NotEquals,
	"<":  Less,
	"<=": LessEquals,
	">":  Greater,
	">=": GreaterEquals,
}

// Find maps an infix operator's source-text spelling to its desugared
// function name.
func Find(text string) (string, bool) {
	op, found := symbolicOperators[text]
	return op, found
}
