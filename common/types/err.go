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

	"github.com/exprcel/cel/common/types/ref"
)

// ErrKind classifies an Err value per the EvalError taxonomy in spec §7.
// It routes error handling without requiring callers to string-match
// messages; the single stable error surface exposed to the host is the
// rendered message, not this enum.
type ErrKind int

const (
	ErrInternal ErrKind = iota
	ErrDivisionByZero
	ErrOverflow
	ErrNoSuchKey
	ErrNoSuchField
	ErrInvalidArgument
	ErrConversionFailure
	ErrNoMatchingOverload
	ErrIterationLimitExceeded
	ErrAttributeNotFound
	ErrUnsupportedType
)

// Err is the first-class "error value" (spec §3, §4.2, §4.6) that flows
// through non-strict operators instead of unwinding evaluation
// immediately. It implements ref.Val so it can be stored, compared for
// type equality, and propagated like any other value.
type Err struct {
	Kind    ErrKind
	Message string
	id      int64 // originating expression id, set by the runtime, 0 if unset
}

var _ ref.Val = (*Err)(nil)

// NewErr formats an Err with ErrInternal kind.
func NewErr(format string, args ...interface{}) ref.Val {
	return &Err{Kind: ErrInternal, Message: fmt.Sprintf(format, args...)}
}

// NewErrKind formats an Err with the given kind.
func NewErrKind(kind ErrKind, format string, args ...interface{}) ref.Val {
	return &Err{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithID returns a copy of the error carrying the originating expression
// id, used by the runtime to localize faults to a source position.
func (e *Err) WithID(id int64) *Err {
	return &Err{Kind: e.Kind, Message: e.Message, id: id}
}

// ID returns the originating expression id, or 0 if never set.
func (e *Err) ID() int64 { return e.id }

func (e *Err) Error() string { return e.Message }

// Type implements ref.Val.
func (e *Err) Type() ref.Type { return ErrorType }

// Value implements ref.Val.
func (e *Err) Value() interface{} { return e.Message }

// Equal implements ref.Val; errors are absorbing and never equal to
// anything, including another error, matching strict-operator semantics
// which propagate the *first* error encountered rather than diffing them.
func (e *Err) Equal(other ref.Val) ref.Val {
	return e
}

// ConvertToType implements ref.Val; an error converts to nothing.
func (e *Err) ConvertToType(typeVal ref.Type) ref.Val {
	return e
}

// ConvertToNative implements ref.Val.
func (e *Err) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	return nil, e
}

// IsError reports whether val is an Err.
func IsError(val ref.Val) bool {
	_, ok := val.(*Err)
	return ok
}

// MaybeErr returns val as an *Err and true if it is an Err.
func MaybeErr(val ref.Val) (*Err, bool) {
	e, ok := val.(*Err)
	return e, ok
}

// NoSuchOverloadErr reports that no registered overload matched a call,
// without naming the offending arguments.
func NoSuchOverloadErr() ref.Val {
	return NewErrKind(ErrNoMatchingOverload, "no such overload")
}

// MaybeNoSuchOverloadErr propagates val if it is already an Err or
// Unknown, or else reports a no-matching-overload error naming val's
// runtime type.
func MaybeNoSuchOverloadErr(val ref.Val) ref.Val {
	if IsError(val) || IsUnknown(val) {
		return val
	}
	return NewErrKind(ErrNoMatchingOverload, "no such overload: %s", val.Type().TypeName())
}

// ValOrErr returns value unchanged if it is already an Err or Unknown,
// and otherwise returns a new Err formatted from format and args; this
// lets a binding defer to a passed-through failure while still
// reporting its own fallback error for any other value.
func ValOrErr(value ref.Val, format string, args ...interface{}) ref.Val {
	if IsError(value) || IsUnknown(value) {
		return value
	}
	return NewErr(format, args...)
}

// IsBool reports whether val is a CEL bool.
func IsBool(val ref.Val) bool {
	_, ok := val.(Bool)
	return ok
}
