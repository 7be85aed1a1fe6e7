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

// Int implements ref.Val over a checked 64-bit signed integer (spec §4.2:
// overflow fails rather than wraps).
type Int int64

const (
	IntZero   = Int(0)
	IntOne    = Int(1)
	IntNegOne = Int(-1)
)

var _ ref.Val = Int(0)

func (i Int) Type() ref.Type { return IntType }

func (i Int) Value() interface{} { return int64(i) }

func (i Int) Add(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: int.add(%T)", other)
	}
	val, ok := addInt64Checked(int64(i), int64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "integer overflow")
	}
	return Int(val)
}

func (i Int) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: int.subtract(%T)", other)
	}
	val, ok := subtractInt64Checked(int64(i), int64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "integer overflow")
	}
	return Int(val)
}

func (i Int) Multiply(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: int.multiply(%T)", other)
	}
	val, ok := multiplyInt64Checked(int64(i), int64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "integer overflow")
	}
	return Int(val)
}

func (i Int) Divide(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: int.divide(%T)", other)
	}
	if o == IntZero {
		return NewErrKind(ErrDivisionByZero, "division by zero")
	}
	val, ok := divideInt64Checked(int64(i), int64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "integer overflow")
	}
	return Int(val)
}

func (i Int) Modulo(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: int.modulo(%T)", other)
	}
	if o == IntZero {
		return NewErrKind(ErrDivisionByZero, "modulus by zero")
	}
	val, ok := moduloInt64Checked(int64(i), int64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "integer overflow")
	}
	return Int(val)
}

func (i Int) Negate() ref.Val {
	val, ok := negateInt64Checked(int64(i))
	if !ok {
		return NewErrKind(ErrOverflow, "integer overflow")
	}
	return Int(val)
}

func (i Int) Compare(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Uint:
		if i < 0 {
			return IntNegOne
		}
		return Uint(i).Compare(o)
	case Double:
		return Double(i).Compare(o)
	}
	o, ok := other.(Int)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: int.compare(%T)", other)
	}
	switch {
	case i < o:
		return IntNegOne
	case i > o:
		return IntOne
	default:
		return IntZero
	}
}

func (i Int) Equal(other ref.Val) ref.Val {
	switch other.(type) {
	case Uint, Double:
		return Bool(i.Compare(other) == IntZero)
	}
	o, ok := other.(Int)
	if !ok {
		return False
	}
	return Bool(i == o)
}

func (i Int) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case IntType:
		return i
	case UintType:
		if i < 0 {
			return NewErrKind(ErrOverflow, "unsigned integer overflow")
		}
		return Uint(i)
	case DoubleType:
		return Double(i)
	case StringType:
		return String(strconv.FormatInt(int64(i), 10))
	case DynType, AnyType:
		return i
	case TypeTypeMeta:
		return IntType
	}
	return NewErr("type conversion error from 'int' to '%s'", typeVal.TypeName())
}

func (i Int) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		return int64(i), nil
	case reflect.Interface:
		return int64(i), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'int' to %v", typeDesc)
}

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// MaxIntValue/MinIntValue surface the representable int64 bounds for conversions
// and literal parsing.
const (
	MaxIntValue = int64(math.MaxInt64)
	MinIntValue = int64(math.MinInt64)
)
