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

package types

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/exprcel/cel/common/types/ref"
)

// Double implements ref.Val over IEEE-754 double precision (spec §4.2:
// NaN compares unequal to everything, including itself, outside of `!=`).
type Double float64

const (
	DoubleZero = Double(0)
)

var _ ref.Val = Double(0)

func (d Double) Type() ref.Type { return DoubleType }

func (d Double) Value() interface{} { return float64(d) }

func (d Double) Add(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: double.add(%T)", other)
	}
	return d + o
}

func (d Double) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: double.subtract(%T)", other)
	}
	return d - o
}

func (d Double) Multiply(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: double.multiply(%T)", other)
	}
	return d * o
}

func (d Double) Divide(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: double.divide(%T)", other)
	}
	return d / o
}

func (d Double) Negate() ref.Val { return -d }

// Compare implements traits.Comparer. Per IEEE-754, any comparison
// involving NaN is neither less, greater, nor equal; a NaN operand is
// reported as an error rather than an ordering, so ordering operators
// against NaN evaluate to an error value rather than a (wrong) bool.
func (d Double) Compare(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Int:
		return d.Compare(Double(o))
	case Uint:
		return d.Compare(Double(o))
	}
	o, ok := other.(Double)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: double.compare(%T)", other)
	}
	if math.IsNaN(float64(d)) || math.IsNaN(float64(o)) {
		return NewErrKind(ErrInvalidArgument, "NaN values cannot be ordered")
	}
	switch {
	case d < o:
		return IntNegOne
	case d > o:
		return IntOne
	default:
		return IntZero
	}
}

// Equal implements ref.Val. NaN is unequal to everything including
// itself; this is intentionally plain float64 `==` semantics, not
// routed through Compare.
func (d Double) Equal(other ref.Val) ref.Val {
	switch other.(type) {
	case Int, Uint:
		return Bool(d.Compare(other) == IntZero)
	}
	o, ok := other.(Double)
	if !ok {
		return False
	}
	return Bool(float64(d) == float64(o))
}

func (d Double) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case DoubleType:
		return d
	case IntType:
		if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) ||
			float64(d) < float64(MinIntValue) || float64(d) > float64(MaxIntValue) {
			return NewErrKind(ErrOverflow, "integer overflow")
		}
		return Int(int64(d))
	case UintType:
		if math.IsNaN(float64(d)) || float64(d) < 0 {
			return NewErrKind(ErrOverflow, "unsigned integer overflow")
		}
		return Uint(uint64(d))
	case StringType:
		return String(strconv.FormatFloat(float64(d), 'g', -1, 64))
	case DynType, AnyType:
		return d
	case TypeTypeMeta:
		return DoubleType
	}
	return NewErr("type conversion error from 'double' to '%s'", typeVal.TypeName())
}

func (d Double) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Float32, reflect.Float64:
		return float64(d), nil
	case reflect.Interface:
		return float64(d), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'double' to %v", typeDesc)
}

func (d Double) String() string { return strconv.FormatFloat(float64(d), 'g', -1, 64) }
