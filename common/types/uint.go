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
	"reflect"
	"strconv"

	"github.com/exprcel/cel/common/types/ref"
)

// Uint implements ref.Val over a checked 64-bit unsigned integer.
type Uint uint64

const (
	UintZero = Uint(0)
)

var _ ref.Val = Uint(0)

func (u Uint) Type() ref.Type { return UintType }

func (u Uint) Value() interface{} { return uint64(u) }

func (u Uint) Add(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: uint.add(%T)", other)
	}
	val, ok := addUint64Checked(uint64(u), uint64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "unsigned integer overflow")
	}
	return Uint(val)
}

func (u Uint) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: uint.subtract(%T)", other)
	}
	val, ok := subtractUint64Checked(uint64(u), uint64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "unsigned integer overflow")
	}
	return Uint(val)
}

func (u Uint) Multiply(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: uint.multiply(%T)", other)
	}
	val, ok := multiplyUint64Checked(uint64(u), uint64(o))
	if !ok {
		return NewErrKind(ErrOverflow, "unsigned integer overflow")
	}
	return Uint(val)
}

func (u Uint) Divide(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: uint.divide(%T)", other)
	}
	if o == UintZero {
		return NewErrKind(ErrDivisionByZero, "division by zero")
	}
	return Uint(uint64(u) / uint64(o))
}

func (u Uint) Modulo(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: uint.modulo(%T)", other)
	}
	if o == UintZero {
		return NewErrKind(ErrDivisionByZero, "modulus by zero")
	}
	return Uint(uint64(u) % uint64(o))
}

func (u Uint) Compare(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Int:
		if o < 0 {
			return IntOne
		}
		return u.Compare(Uint(o))
	case Double:
		return Double(u).Compare(o)
	}
	o, ok := other.(Uint)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: uint.compare(%T)", other)
	}
	switch {
	case u < o:
		return IntNegOne
	case u > o:
		return IntOne
	default:
		return IntZero
	}
}

func (u Uint) Equal(other ref.Val) ref.Val {
	switch other.(type) {
	case Int, Double:
		return Bool(u.Compare(other) == IntZero)
	}
	o, ok := other.(Uint)
	if !ok {
		return False
	}
	return Bool(u == o)
}

func (u Uint) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case UintType:
		return u
	case IntType:
		if u > Uint(MaxIntValue) {
			return NewErrKind(ErrOverflow, "integer overflow")
		}
		return Int(u)
	case DoubleType:
		return Double(u)
	case StringType:
		return String(strconv.FormatUint(uint64(u), 10))
	case DynType, AnyType:
		return u
	case TypeTypeMeta:
		return UintType
	}
	return NewErr("type conversion error from 'uint' to '%s'", typeVal.TypeName())
}

func (u Uint) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		return uint64(u), nil
	case reflect.Interface:
		return uint64(u), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'uint' to %v", typeDesc)
}

func (u Uint) String() string { return strconv.FormatUint(uint64(u), 10) }
