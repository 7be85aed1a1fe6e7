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
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/exprcel/cel/common/types/ref"
	"golang.org/x/text/unicode/norm"
)

// String implements ref.Val over a Go string. Size counts Unicode code
// points after NFC normalization, not bytes, so that a string differing
// from another only in composed vs. decomposed accent sequences reports
// the same length (CEL's string semantics; x/text provides the
// normalization). Equal and Compare are exact: CEL string equality is
// defined over code point sequences as written, not canonical form.
type String string

var _ ref.Val = String("")

func (s String) Type() ref.Type { return StringType }

func (s String) Value() interface{} { return string(s) }

func (s String) Add(other ref.Val) ref.Val {
	o, ok := other.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: string.add(%T)", other)
	}
	return s + o
}

func (s String) Compare(other ref.Val) ref.Val {
	o, ok := other.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: string.compare(%T)", other)
	}
	return Int(strings.Compare(string(s), string(o)))
}

func (s String) Equal(other ref.Val) ref.Val {
	o, ok := other.(String)
	if !ok {
		return False
	}
	return Bool(s == o)
}

// Size implements traits.Sizer, counting Unicode code points once s is
// normalized to NFC, so canonically equivalent strings with different
// underlying codepoint decompositions report the same size.
func (s String) Size() ref.Val {
	return Int(utf8.RuneCountInString(norm.NFC.String(string(s))))
}

// Contains implements traits.Container for the `in`/`contains` family.
func (s String) Contains(sub ref.Val) ref.Val {
	o, ok := sub.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: string.contains(%T)", sub)
	}
	return Bool(strings.Contains(string(s), string(o)))
}

// EndsWith implements the `endsWith` member overload.
func (s String) EndsWith(suffix ref.Val) ref.Val {
	o, ok := suffix.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: string.endsWith(%T)", suffix)
	}
	return Bool(strings.HasSuffix(string(s), string(o)))
}

// StartsWith implements the `startsWith` member overload.
func (s String) StartsWith(prefix ref.Val) ref.Val {
	o, ok := prefix.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: string.startsWith(%T)", prefix)
	}
	return Bool(strings.HasPrefix(string(s), string(o)))
}

// Match implements traits.Matcher for the `matches` overload, treating
// pattern as an RE2 regular expression.
func (s String) Match(pattern ref.Val) ref.Val {
	p, ok := pattern.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: string.matches(%T)", pattern)
	}
	matched, err := regexp.MatchString(string(p), string(s))
	if err != nil {
		return NewErrKind(ErrInvalidArgument, "invalid regular expression: %v", err)
	}
	return Bool(matched)
}

// StringContains adapts String.Contains to the functions.BinaryOp shape
// the standard library's `contains` member overload binds to.
func StringContains(lhs, rhs ref.Val) ref.Val {
	return lhs.(String).Contains(rhs)
}

// StringEndsWith adapts String.EndsWith to the functions.BinaryOp shape
// the standard library's `endsWith` member overload binds to.
func StringEndsWith(lhs, rhs ref.Val) ref.Val {
	return lhs.(String).EndsWith(rhs)
}

// StringStartsWith adapts String.StartsWith to the functions.BinaryOp
// shape the standard library's `startsWith` member overload binds to.
func StringStartsWith(lhs, rhs ref.Val) ref.Val {
	return lhs.(String).StartsWith(rhs)
}

func (s String) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case StringType, DynType, AnyType:
		return s
	case BytesType:
		return Bytes(s)
	case IntType:
		i, err := strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
		if err != nil {
			return NewErrKind(ErrConversionFailure, "invalid int literal %q", string(s))
		}
		return Int(i)
	case UintType:
		u, err := strconv.ParseUint(strings.TrimSpace(string(s)), 10, 64)
		if err != nil {
			return NewErrKind(ErrConversionFailure, "invalid uint literal %q", string(s))
		}
		return Uint(u)
	case DoubleType:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
		if err != nil {
			return NewErrKind(ErrConversionFailure, "invalid double literal %q", string(s))
		}
		return Double(f)
	case BoolType:
		b, err := strconv.ParseBool(strings.TrimSpace(string(s)))
		if err != nil {
			return NewErrKind(ErrConversionFailure, "invalid bool literal %q", string(s))
		}
		return Bool(b)
	case DurationType:
		return stringToDuration(string(s))
	case TimestampType:
		return stringToTimestamp(string(s))
	case TypeTypeMeta:
		return StringType
	}
	return NewErr("type conversion error from 'string' to '%s'", typeVal.TypeName())
}

func (s String) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.String:
		return string(s), nil
	case reflect.Slice:
		if typeDesc.Elem().Kind() == reflect.Uint8 {
			return []byte(s), nil
		}
	case reflect.Interface:
		return string(s), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'string' to %v", typeDesc)
}

func (s String) String() string { return string(s) }
