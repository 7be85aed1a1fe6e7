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
	timestamppb "google.golang.org/protobuf/types/known/timestamppb"
)

// Timestamp implements ref.Val over time.Time, constrained to the
// google.protobuf.Timestamp representable range (0001-01-01T00:00:00Z
// through 9999-12-31T23:59:59.999999999Z).
type Timestamp struct {
	time.Time
}

var _ ref.Val = Timestamp{}

func timestampOf(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

func stringToTimestamp(s string) ref.Val {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return NewErrKind(ErrConversionFailure, "invalid timestamp literal %q", s)
	}
	return timestampOf(t)
}

func (t Timestamp) Type() ref.Type { return TimestampType }

func (t Timestamp) Value() interface{} { return t.Time }

func (t Timestamp) Add(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: timestamp.add(%T)", other)
	}
	val, ok := addTimeDurationChecked(t.Time, o.Duration)
	if !ok {
		return NewErrKind(ErrOverflow, "timestamp overflow")
	}
	return timestampOf(val)
}

func (t Timestamp) Subtract(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Duration:
		val, ok := subtractTimeDurationChecked(t.Time, o.Duration)
		if !ok {
			return NewErrKind(ErrOverflow, "timestamp overflow")
		}
		return timestampOf(val)
	case Timestamp:
		val, ok := subtractTimeChecked(t.Time, o.Time)
		if !ok {
			return NewErrKind(ErrOverflow, "duration overflow")
		}
		return durationOf(val)
	}
	return NewErrKind(ErrNoMatchingOverload, "no such overload: timestamp.subtract(%T)", other)
}

func (t Timestamp) Compare(other ref.Val) ref.Val {
	o, ok := other.(Timestamp)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: timestamp.compare(%T)", other)
	}
	switch {
	case t.Time.Before(o.Time):
		return IntNegOne
	case t.Time.After(o.Time):
		return IntOne
	default:
		return IntZero
	}
}

func (t Timestamp) Equal(other ref.Val) ref.Val {
	o, ok := other.(Timestamp)
	if !ok {
		return False
	}
	return Bool(t.Time.Equal(o.Time))
}

func (t Timestamp) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case TimestampType, DynType, AnyType:
		return t
	case StringType:
		return String(t.Time.Format(time.RFC3339Nano))
	case IntType:
		return Int(t.Time.Unix())
	case TypeTypeMeta:
		return TimestampType
	}
	return NewErr("type conversion error from 'google.protobuf.Timestamp' to '%s'", typeVal.TypeName())
}

func (t Timestamp) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Ptr:
		return timestamppb.New(t.Time), nil
	case reflect.Int64:
		return t.Time.Unix(), nil
	case reflect.Interface:
		return t.Time, nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'google.protobuf.Timestamp' to %v", typeDesc)
}

func (t Timestamp) String() string { return t.Time.Format(time.RFC3339Nano) }

// Calendar accessors backing timestamp.getFullYear()/getMonth()/etc,
// all UTC unless a timezone qualifier is supplied by the caller via
// WithZone (spec GLOSSARY, standard library time accessor functions).
func (t Timestamp) WithZone(name string) (Timestamp, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{Time: t.Time.In(loc)}, nil
}

func (t Timestamp) GetFullYear() ref.Val { return Int(int64(t.Time.Year())) }
func (t Timestamp) GetMonth() ref.Val    { return Int(int64(t.Time.Month()) - 1) }
func (t Timestamp) GetDayOfMonth() ref.Val {
	return Int(int64(t.Time.Day()) - 1)
}
func (t Timestamp) GetDate() ref.Val { return Int(int64(t.Time.Day())) }
func (t Timestamp) GetDayOfWeek() ref.Val {
	return Int(int64(t.Time.Weekday()))
}
func (t Timestamp) GetHours() ref.Val   { return Int(int64(t.Time.Hour())) }
func (t Timestamp) GetMinutes() ref.Val { return Int(int64(t.Time.Minute())) }
func (t Timestamp) GetSeconds() ref.Val { return Int(int64(t.Time.Second())) }
func (t Timestamp) GetMilliseconds() ref.Val {
	return Int(int64(t.Time.Nanosecond() / 1e6))
}
