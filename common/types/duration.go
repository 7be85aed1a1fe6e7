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
	"time"

	"github.com/exprcel/cel/common/types/ref"
	durationpb "google.golang.org/protobuf/types/known/durationpb"
)

// Duration implements ref.Val over time.Duration, so its range is an
// int64 nanosecond count (about ±292 years); arithmetic past it fails
// with an overflow error.
type Duration struct {
	time.Duration
}

var _ ref.Val = Duration{}

func durationOf(d time.Duration) Duration { return Duration{Duration: d} }

func stringToDuration(s string) ref.Val {
	d, err := time.ParseDuration(s)
	if err != nil {
		return NewErrKind(ErrConversionFailure, "invalid duration literal %q", s)
	}
	return durationOf(d)
}

func (d Duration) Type() ref.Type { return DurationType }

func (d Duration) Value() interface{} { return d.Duration }

func (d Duration) Add(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Duration:
		val, ok := addDurationChecked(d.Duration, o.Duration)
		if !ok {
			return NewErrKind(ErrOverflow, "duration overflow")
		}
		return durationOf(val)
	case Timestamp:
		val, ok := addTimeDurationChecked(o.Time, d.Duration)
		if !ok {
			return NewErrKind(ErrOverflow, "timestamp overflow")
		}
		return timestampOf(val)
	}
	return NewErrKind(ErrNoMatchingOverload, "no such overload: duration.add(%T)", other)
}

func (d Duration) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: duration.subtract(%T)", other)
	}
	val, ok := subtractDurationChecked(d.Duration, o.Duration)
	if !ok {
		return NewErrKind(ErrOverflow, "duration overflow")
	}
	return durationOf(val)
}

func (d Duration) Negate() ref.Val {
	val, ok := negateDurationChecked(d.Duration)
	if !ok {
		return NewErrKind(ErrOverflow, "duration overflow")
	}
	return durationOf(val)
}

func (d Duration) Compare(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: duration.compare(%T)", other)
	}
	switch {
	case d.Duration < o.Duration:
		return IntNegOne
	case d.Duration > o.Duration:
		return IntOne
	default:
		return IntZero
	}
}

func (d Duration) Equal(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	if !ok {
		return False
	}
	return Bool(d.Duration == o.Duration)
}

func (d Duration) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case DurationType, DynType, AnyType:
		return d
	case IntType:
		return Int(d.Duration.Nanoseconds())
	case StringType:
		return String(d.Duration.String())
	case TypeTypeMeta:
		return DurationType
	}
	return NewErr("type conversion error from 'google.protobuf.Duration' to '%s'", typeVal.TypeName())
}

func (d Duration) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Int64:
		return d.Duration.Nanoseconds(), nil
	case reflect.Ptr:
		return durationpb.New(d.Duration), nil
	case reflect.Interface:
		return d.Duration, nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'google.protobuf.Duration' to %v", typeDesc)
}

func (d Duration) String() string { return d.Duration.String() }

// Getters backing duration.getHours()/getMinutes()/etc (spec GLOSSARY,
// standard library macro-free accessor functions).
func (d Duration) GetHours() ref.Val   { return Int(int64(d.Duration / time.Hour)) }
func (d Duration) GetMinutes() ref.Val { return Int(int64(d.Duration / time.Minute)) }
func (d Duration) GetSeconds() ref.Val { return Int(int64(d.Duration / time.Second)) }
func (d Duration) GetMilliseconds() ref.Val {
	return Int(int64(d.Duration / time.Millisecond))
}
