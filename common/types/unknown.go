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
	"reflect"
	"sort"
	"strings"

	"github.com/exprcel/cel/common/types/ref"
)

// Unknown is a set of attribute-pattern identifiers (spec §3, reserved
// for partial evaluation). It is never produced by a fully-bound
// evaluation in this core module — no attribute-pattern-seeded partial
// evaluator is implemented (see SPEC_FULL.md) — but the value variant
// and its merge/absorption semantics are complete so a host that wires
// one in gets correct propagation for free.
type Unknown struct {
	Attributes []string
}

var _ ref.Val = (*Unknown)(nil)

// NewUnknown returns an Unknown carrying the given attribute patterns.
func NewUnknown(attrs ...string) *Unknown {
	return &Unknown{Attributes: attrs}
}

// Type implements ref.Val.
func (u *Unknown) Type() ref.Type { return UnknownType }

// Value implements ref.Val.
func (u *Unknown) Value() interface{} { return u.Attributes }

// Equal implements ref.Val; merging, not comparison, is the meaningful
// operation over Unknown, so equality degrades to an error like Err does.
func (u *Unknown) Equal(other ref.Val) ref.Val {
	return NewErr("no such overload: unknown.equal(%T)", other)
}

// ConvertToType implements ref.Val.
func (u *Unknown) ConvertToType(typeVal ref.Type) ref.Val {
	return u
}

// ConvertToNative implements ref.Val.
func (u *Unknown) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	return nil, NewErrKind(ErrUnsupportedType, "unknown value has no native representation").(*Err)
}

// MergeUnknowns returns the union of two Unknown sets' attribute
// patterns, deduplicated and sorted for deterministic rendering.
func MergeUnknowns(a, b *Unknown) *Unknown {
	seen := make(map[string]bool, len(a.Attributes)+len(b.Attributes))
	var merged []string
	for _, attr := range append(append([]string{}, a.Attributes...), b.Attributes...) {
		if !seen[attr] {
			seen[attr] = true
			merged = append(merged, attr)
		}
	}
	sort.Strings(merged)
	return &Unknown{Attributes: merged}
}

func (u *Unknown) String() string {
	return "unknown{" + strings.Join(u.Attributes, ", ") + "}"
}

// IsUnknown reports whether val is an Unknown.
func IsUnknown(val ref.Val) bool {
	_, ok := val.(*Unknown)
	return ok
}
