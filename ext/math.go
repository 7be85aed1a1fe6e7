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

import (
	"math"

	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Math returns a cel.EnvOption configuring numeric helper functions:
// math.abs, math.ceil, math.floor, math.round, math.sign, math.isInf,
// math.isNaN, math.isFinite, math.bitAnd, math.bitOr, math.bitXor,
// math.bitNot, math.bitShiftLeft, math.bitShiftRight, and
// math.greatest/math.least over a list of numbers.
//
// The teacher's math.greatest/math.least are variable-argument macros
// expanded at parse time; with no textual parser in this module's
// scope (spec §1/§6), they are ordinary functions over a
// <list<dyn>> argument instead: math.greatest([1, 2, 3]) rather than
// math.greatest(1, 2, 3).
//
//	math.abs(<int|uint|double>) -> <int|uint|double>
//	math.ceil(<double>) -> <double>
//	math.floor(<double>) -> <double>
//	math.round(<double>) -> <double>
//	math.sign(<int|uint|double>) -> <int|uint|double>
//	math.isInf(<double>) -> <bool>
//	math.isNaN(<double>) -> <bool>
//	math.isFinite(<double>) -> <bool>
//	math.bitAnd(<int|uint>, <int|uint>) -> <int|uint>
//	math.bitOr(<int|uint>, <int|uint>) -> <int|uint>
//	math.bitXor(<int|uint>, <int|uint>) -> <int|uint>
//	math.bitNot(<int|uint>) -> <int|uint>
//	math.bitShiftLeft(<int|uint>, <int>) -> <int|uint>
//	math.bitShiftRight(<int|uint>, <int>) -> <int|uint>
//	math.greatest(<list<dyn>>) -> <dyn>
//	math.least(<list<dyn>>) -> <dyn>
func Math() cel.EnvOption {
	return cel.Lib(mathLib{})
}

type mathLib struct{}

func (mathLib) LibraryName() string { return "cel.lib.ext.math" }

func (mathLib) CompileOptions() []cel.EnvOption {
	dynList := cel.ListType(cel.DynType)
	return []cel.EnvOption{
		cel.Function("math.abs",
			cel.Overload("math_abs_int", []*types.Type{cel.IntType}, cel.IntType, cel.UnaryBinding(absInt)),
			cel.Overload("math_abs_uint", []*types.Type{cel.UintType}, cel.UintType, cel.UnaryBinding(identity)),
			cel.Overload("math_abs_double", []*types.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(v ref.Val) ref.Val { return types.Double(math.Abs(float64(v.(types.Double)))) }))),
		cel.Function("math.ceil",
			cel.Overload("math_ceil_double", []*types.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(doubleFn(math.Ceil)))),
		cel.Function("math.floor",
			cel.Overload("math_floor_double", []*types.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(doubleFn(math.Floor)))),
		cel.Function("math.round",
			cel.Overload("math_round_double", []*types.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(doubleFn(math.Round)))),
		cel.Function("math.sign",
			cel.Overload("math_sign_int", []*types.Type{cel.IntType}, cel.IntType,
				cel.UnaryBinding(func(v ref.Val) ref.Val { return types.Int(sign(int64(v.(types.Int)))) })),
			cel.Overload("math_sign_uint", []*types.Type{cel.UintType}, cel.UintType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					if v.(types.Uint) == 0 {
						return types.Uint(0)
					}
					return types.Uint(1)
				})),
			cel.Overload("math_sign_double", []*types.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					d := float64(v.(types.Double))
					switch {
					case d > 0:
						return types.Double(1)
					case d < 0:
						return types.Double(-1)
					default:
						return types.Double(d)
					}
				}))),
		cel.Function("math.isInf",
			cel.Overload("math_is_inf_double", []*types.Type{cel.DoubleType}, cel.BoolType,
				cel.UnaryBinding(func(v ref.Val) ref.Val { return types.Bool(math.IsInf(float64(v.(types.Double)), 0)) }))),
		cel.Function("math.isNaN",
			cel.Overload("math_is_nan_double", []*types.Type{cel.DoubleType}, cel.BoolType,
				cel.UnaryBinding(func(v ref.Val) ref.Val { return types.Bool(math.IsNaN(float64(v.(types.Double)))) }))),
		cel.Function("math.isFinite",
			cel.Overload("math_is_finite_double", []*types.Type{cel.DoubleType}, cel.BoolType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					d := float64(v.(types.Double))
					return types.Bool(!math.IsInf(d, 0) && !math.IsNaN(d))
				}))),
		cel.Function("math.bitAnd",
			cel.Overload("math_bit_and_int_int", []*types.Type{cel.IntType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Int) & r.(types.Int) })),
			cel.Overload("math_bit_and_uint_uint", []*types.Type{cel.UintType, cel.UintType}, cel.UintType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Uint) & r.(types.Uint) }))),
		cel.Function("math.bitOr",
			cel.Overload("math_bit_or_int_int", []*types.Type{cel.IntType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Int) | r.(types.Int) })),
			cel.Overload("math_bit_or_uint_uint", []*types.Type{cel.UintType, cel.UintType}, cel.UintType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Uint) | r.(types.Uint) }))),
		cel.Function("math.bitXor",
			cel.Overload("math_bit_xor_int_int", []*types.Type{cel.IntType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Int) ^ r.(types.Int) })),
			cel.Overload("math_bit_xor_uint_uint", []*types.Type{cel.UintType, cel.UintType}, cel.UintType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Uint) ^ r.(types.Uint) }))),
		cel.Function("math.bitNot",
			cel.Overload("math_bit_not_int", []*types.Type{cel.IntType}, cel.IntType,
				cel.UnaryBinding(func(v ref.Val) ref.Val { return ^v.(types.Int) })),
			cel.Overload("math_bit_not_uint", []*types.Type{cel.UintType}, cel.UintType,
				cel.UnaryBinding(func(v ref.Val) ref.Val { return ^v.(types.Uint) }))),
		cel.Function("math.bitShiftLeft",
			cel.Overload("math_bit_shift_left_int_int", []*types.Type{cel.IntType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Int) << uint(r.(types.Int)) })),
			cel.Overload("math_bit_shift_left_uint_int", []*types.Type{cel.UintType, cel.IntType}, cel.UintType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Uint) << uint(r.(types.Int)) }))),
		cel.Function("math.bitShiftRight",
			cel.Overload("math_bit_shift_right_int_int", []*types.Type{cel.IntType, cel.IntType}, cel.IntType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Int) >> uint(r.(types.Int)) })),
			cel.Overload("math_bit_shift_right_uint_int", []*types.Type{cel.UintType, cel.IntType}, cel.UintType,
				cel.BinaryBinding(func(l, r ref.Val) ref.Val { return l.(types.Uint) >> uint(r.(types.Int)) }))),
		cel.Function("math.greatest",
			cel.Overload("math_greatest_list", []*types.Type{dynList}, cel.DynType,
				cel.UnaryBinding(extremeOf(true)))),
		cel.Function("math.least",
			cel.Overload("math_least_list", []*types.Type{dynList}, cel.DynType,
				cel.UnaryBinding(extremeOf(false)))),
	}
}

func (mathLib) ProgramOptions() []cel.ProgramOption { return nil }

func identity(v ref.Val) ref.Val { return v }

func doubleFn(f func(float64) float64) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val { return types.Double(f(float64(v.(types.Double)))) }
}

func absInt(v ref.Val) ref.Val {
	i := int64(v.(types.Int))
	if i == math.MinInt64 {
		return types.NewErrKind(types.ErrOverflow, "math.abs: integer overflow")
	}
	if i < 0 {
		return types.Int(-i)
	}
	return types.Int(i)
}

func sign(i int64) int64 {
	switch {
	case i > 0:
		return 1
	case i < 0:
		return -1
	default:
		return 0
	}
}

func extremeOf(greatest bool) func(ref.Val) ref.Val {
	return func(val ref.Val) ref.Val {
		lst := val.(*types.List)
		n := int64(lst.Size().(types.Int))
		if n == 0 {
			return types.NewErrKind(types.ErrInvalidArgument, "math.greatest/least: empty list")
		}
		best := lst.Get(types.Int(0))
		for i := int64(1); i < n; i++ {
			cur := lst.Get(types.Int(i))
			cmp, ok := best.(interface{ Compare(ref.Val) ref.Val })
			if !ok {
				return types.NewErrKind(types.ErrUnsupportedType, "math.greatest/least: non-comparable element")
			}
			c := cmp.Compare(cur)
			if types.IsError(c) {
				return c
			}
			less := int64(c.(types.Int)) < 0
			if (greatest && !less) || (!greatest && less) {
				continue
			}
			best = cur
		}
		return best
	}
}
