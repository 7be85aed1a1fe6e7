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
	"strings"

	"github.com/exprcel/cel/common/types/ref"
)

// Type is the concrete ref.Type implementation for every CelType variant
// named in spec §3: Null, Bool, Int, Uint, Double, String, Bytes,
// Duration, Timestamp, Any, Dyn, Error, Type(inner), List(elem),
// Map(k,v), Optional(inner), TypeParam(name), Struct(name), Enum(name).
type Type struct {
	kind       Kind
	name       string
	parameters []*Type

	// enumValues backs EnumKind: numeric value by name.
	enumValues map[string]int64
}

var _ ref.Type = (*Type)(nil)
var _ ref.Val = (*Type)(nil)

// NewPrimitiveType returns a singleton-style Type for a primitive kind.
func NewPrimitiveType(kind Kind) *Type {
	return &Type{kind: kind, name: kind.String()}
}

// NewListType returns `list(elem)`.
func NewListType(elem *Type) *Type {
	return &Type{kind: ListKind, name: "list", parameters: []*Type{elem}}
}

// NewMapType returns `map(k, v)`.
func NewMapType(k, v *Type) *Type {
	return &Type{kind: MapKind, name: "map", parameters: []*Type{k, v}}
}

// NewOptionalType returns `optional(inner)`.
func NewOptionalType(inner *Type) *Type {
	return &Type{kind: OptionalKind, name: "optional_type", parameters: []*Type{inner}}
}

// NewTypeType returns the type-of-a-type value `type(inner)`. When inner
// is nil this is the meta type `type` used as every Type's own Type().
func NewTypeType(inner *Type) *Type {
	t := &Type{kind: TypeKind, name: "type"}
	if inner != nil {
		t.parameters = []*Type{inner}
	}
	return t
}

// NewStructType returns a named struct/message type.
func NewStructType(name string) *Type {
	return &Type{kind: StructKind, name: name}
}

// NewEnumType returns a named enum type with its value table.
func NewEnumType(name string, values map[string]int64) *Type {
	return &Type{kind: EnumKind, name: name, enumValues: values}
}

// NewTypeParamType returns an unbound type parameter, e.g. the `T` in
// `list(T)` generic overload declarations.
func NewTypeParamType(name string) *Type {
	return &Type{kind: TypeParamKind, name: name}
}

// NewOpaqueType returns a named parameterized type outside the built-in
// list/map/optional families, e.g. an extension library's `vector(T)`.
// Environment configuration resolves these by name against the set of
// opaque types a library registers rather than against struct
// descriptors.
func NewOpaqueType(name string, params ...*Type) *Type {
	return &Type{kind: OpaqueKind, name: name, parameters: params}
}

// Well-known singleton types.
var (
	NullType      = NewPrimitiveType(NullKind)
	BoolType      = NewPrimitiveType(BoolKind)
	IntType       = NewPrimitiveType(IntKind)
	UintType      = NewPrimitiveType(UintKind)
	DoubleType    = NewPrimitiveType(DoubleKind)
	StringType    = NewPrimitiveType(StringKind)
	BytesType     = NewPrimitiveType(BytesKind)
	DurationType  = NewPrimitiveType(DurationKind)
	TimestampType = NewPrimitiveType(TimestampKind)
	DynType       = NewPrimitiveType(DynKind)
	AnyType       = NewPrimitiveType(AnyKind)
	ErrorType     = NewPrimitiveType(ErrorKind)
	UnknownType   = NewPrimitiveType(UnknownKind)
	TypeTypeMeta  = NewTypeType(nil)
)

// Kind returns the type's tag.
func (t *Type) Kind() Kind { return t.kind }

// TypeName returns the fully qualified name of the type.
func (t *Type) TypeName() string { return t.name }

// Parameters returns the type's parameter list (elem for list, (k,v)
// for map, inner for optional/type), or nil if unparameterized.
func (t *Type) Parameters() []*Type { return t.parameters }

// EnumValue returns the numeric value for a declared enum constant name.
func (t *Type) EnumValue(name string) (int64, bool) {
	v, found := t.enumValues[name]
	return v, found
}

func (t *Type) String() string {
	switch t.kind {
	case ListKind:
		return fmt.Sprintf("list(%s)", t.parameters[0])
	case MapKind:
		return fmt.Sprintf("map(%s, %s)", t.parameters[0], t.parameters[1])
	case OptionalKind:
		return fmt.Sprintf("optional(%s)", t.parameters[0])
	case TypeKind:
		if len(t.parameters) == 1 {
			return fmt.Sprintf("type(%s)", t.parameters[0])
		}
		return "type"
	case OpaqueKind:
		if len(t.parameters) == 0 {
			return t.name
		}
		params := make([]string, len(t.parameters))
		for i, p := range t.parameters {
			params[i] = p.String()
		}
		return fmt.Sprintf("%s(%s)", t.name, strings.Join(params, ", "))
	default:
		return t.name
	}
}

// Type implements ref.Val: every Type's own type is the meta `type`.
func (t *Type) Type() ref.Type { return TypeTypeMeta }

// Value implements ref.Val, returning the type itself.
func (t *Type) Value() interface{} { return t }

// Equal implements ref.Val.
func (t *Type) Equal(other ref.Val) ref.Val {
	o, ok := other.(*Type)
	if !ok {
		return NewErr("no such overload: type.equal(%T)", other)
	}
	return Bool(typeEqual(t, o))
}

func typeEqual(a, b *Type) bool {
	if a.kind != b.kind || a.name != b.name || len(a.parameters) != len(b.parameters) {
		return false
	}
	for i := range a.parameters {
		if !typeEqual(a.parameters[i], b.parameters[i]) {
			return false
		}
	}
	return true
}

// ConvertToType implements ref.Val; a Type only converts to itself or to
// the meta type (dyn/type).
func (t *Type) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal.(*Type).kind {
	case TypeKind, DynKind:
		return t
	}
	return NewErr("type conversion error from 'type' to '%s'", typeVal.TypeName())
}

// ConvertToNative implements ref.Val.
func (t *Type) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	if reflect.TypeOf(t).AssignableTo(typeDesc) {
		return t, nil
	}
	return nil, fmt.Errorf("type conversion not supported from 'type' to %v", typeDesc)
}

// Substitution is a type-parameter binding produced by Assignable/Unify.
type Substitution map[string]*Type

// Assignable reports whether a value of type `from` may be used where
// `to` is expected (spec §4.1), accumulating type-parameter bindings
// into subst (which may be nil if the caller doesn't need them).
func Assignable(from, to *Type, subst Substitution) bool {
	if from == nil || to == nil {
		return false
	}
	if to.kind == DynKind || to.kind == AnyKind || from.kind == DynKind || from.kind == AnyKind {
		return true
	}
	if to.kind == ErrorKind || from.kind == ErrorKind {
		return true
	}
	if to.kind == TypeParamKind {
		if subst != nil {
			if bound, found := subst[to.name]; found {
				return Assignable(from, bound, subst)
			}
			subst[to.name] = from
		}
		return true
	}
	if from.kind == TypeParamKind {
		if subst != nil {
			if bound, found := subst[from.name]; found {
				return Assignable(bound, to, subst)
			}
			subst[from.name] = to
		}
		return true
	}
	if from.kind != to.kind {
		return false
	}
	switch from.kind {
	case ListKind:
		return Assignable(from.parameters[0], to.parameters[0], subst)
	case MapKind:
		// Keys are invariant, values covariant.
		return typeEqual(from.parameters[0], to.parameters[0]) &&
			Assignable(from.parameters[1], to.parameters[1], subst)
	case OptionalKind:
		return Assignable(from.parameters[0], to.parameters[0], subst)
	case StructKind, EnumKind:
		return from.name == to.name
	case OpaqueKind:
		if from.name != to.name || len(from.parameters) != len(to.parameters) {
			return false
		}
		for i := range from.parameters {
			if !Assignable(from.parameters[i], to.parameters[i], subst) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// IsAssignableType reports whether a value of type t may be used where
// target is expected, per Assignable, without tracking substitutions.
func (t *Type) IsAssignableType(target *Type) bool {
	return Assignable(t, target, nil)
}

// IsExactMatch reports whether from and to are identical without any
// dyn/any/type-param relaxation, used to prefer exact overloads over
// promoted ones during overload resolution tie-breaks.
func IsExactMatch(from, to *Type) bool {
	return typeEqual(from, to)
}

// MoreSpecific returns true if candidate is a strictly more specific
// choice than incumbent for the same argument position: that is, when
// incumbent is dyn or any and candidate is neither the same type nor
// that same dyn/any kind. No other ordering is applied.
func MoreSpecific(candidate, incumbent *Type) bool {
	if typeEqual(candidate, incumbent) {
		return false
	}
	if incumbent.kind == DynKind && candidate.kind != DynKind {
		return true
	}
	if incumbent.kind == AnyKind && candidate.kind != AnyKind {
		return true
	}
	return false
}
