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

// Package ext holds the canonical, versioned, opt-in extension
// libraries named by spec §4.4: string, math, list, map, set, encoding,
// regex, optional-construction, binding, and generalized-comprehension
// helpers layered on top of the core standard library.
package ext

import (
	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/overloads"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Optional returns a cel.EnvOption enabling optional.of, optional.none,
// and optional.ofNonZeroValue, the three marker constructors spec
// §4.8's constant-folding rule recognizes inside struct/list/map
// literal `?field:`/`?key:`/`?elem` entries. The functions are useful
// (and fold away) even without the optimizer pass enabled, returning an
// ordinary types.Optional at evaluation time.
func Optional() cel.EnvOption {
	return cel.Lib(optionalLib{})
}

type optionalLib struct{}

func (optionalLib) LibraryName() string { return "cel.lib.ext.optional" }

func (optionalLib) CompileOptions() []cel.EnvOption {
	paramA := cel.TypeParamType("A")
	return []cel.EnvOption{
		cel.Function("optional.of",
			cel.Overload(overloads.OptionalOf, []*types.Type{paramA}, cel.OptionalType(paramA),
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.NewOptional(val)
				}))),
		cel.Function("optional.none",
			cel.Overload(overloads.OptionalNone, []*types.Type{}, cel.OptionalType(paramA),
				cel.FunctionBinding(func(_ ...ref.Val) ref.Val {
					return types.OptionalNone
				}))),
		cel.Function("optional.ofNonZeroValue",
			cel.Overload(overloads.OptionalOfNonZeroValue, []*types.Type{paramA}, cel.OptionalType(paramA),
				cel.UnaryBinding(ofNonZeroValue))),
	}
}

func (optionalLib) ProgramOptions() []cel.ProgramOption { return nil }

func ofNonZeroValue(val ref.Val) ref.Val {
	if isZeroValue(val) {
		return types.OptionalNone
	}
	return types.NewOptional(val)
}

func isZeroValue(val ref.Val) bool {
	switch v := val.(type) {
	case types.Int:
		return v == 0
	case types.Uint:
		return v == 0
	case types.Double:
		return v == 0
	case types.String:
		return v == ""
	case types.Bool:
		return !bool(v)
	case types.Bytes:
		return len(v) == 0
	}
	return false
}
