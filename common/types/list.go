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
	"github.com/exprcel/cel/common/types/traits"
)

// List implements ref.Val and traits.Lister over a slice of ref.Val.
// It is immutable: every mutating-looking op (Add) returns a new List.
type List struct {
	elems []ref.Val
}

var (
	_ ref.Val       = &List{}
	_ traits.Lister = &List{}
)

// NewList returns a List wrapping the given elements without copying.
func NewList(elems []ref.Val) *List {
	return &List{elems: elems}
}

// Type returns the dyn-parameterized list type; concrete element typing
// is a checker-time concern carried on the AST, not on the runtime value.
func (l *List) Type() ref.Type { return NewListType(DynType) }

func (l *List) Value() interface{} {
	native := make([]interface{}, len(l.elems))
	for i, e := range l.elems {
		native[i] = e.Value()
	}
	return native
}

func (l *List) Get(index ref.Val) ref.Val {
	i, ok := index.(Int)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: list.get(%T)", index)
	}
	if i < 0 || int(i) >= len(l.elems) {
		return NewErrKind(ErrNoSuchKey, "index %d out of range", i)
	}
	return l.elems[i]
}

func (l *List) Size() ref.Val { return Int(len(l.elems)) }

func (l *List) Add(other ref.Val) ref.Val {
	o, ok := other.(*List)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: list.add(%T)", other)
	}
	out := make([]ref.Val, 0, len(l.elems)+len(o.elems))
	out = append(out, l.elems...)
	out = append(out, o.elems...)
	return NewList(out)
}

func (l *List) Contains(value ref.Val) ref.Val {
	for _, e := range l.elems {
		if eq, ok := e.Equal(value).(Bool); ok && bool(eq) {
			return True
		}
	}
	return False
}

func (l *List) Iterator() traits.Iterator {
	return &listIterator{list: l, pos: 0}
}

func (l *List) Equal(other ref.Val) ref.Val {
	o, ok := other.(*List)
	if !ok {
		return False
	}
	if len(l.elems) != len(o.elems) {
		return False
	}
	for i, e := range l.elems {
		eq, ok := e.Equal(o.elems[i]).(Bool)
		if !ok || !bool(eq) {
			return False
		}
	}
	return True
}

func (l *List) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case DynType, AnyType:
		return l
	case TypeTypeMeta:
		return NewListType(DynType)
	}
	if typeVal.TypeName() == "list" {
		return l
	}
	return NewErr("type conversion error from 'list' to '%s'", typeVal.TypeName())
}

func (l *List) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	if typeDesc.Kind() == reflect.Slice {
		out := reflect.MakeSlice(typeDesc, len(l.elems), len(l.elems))
		for i, e := range l.elems {
			nv, err := e.ConvertToNative(typeDesc.Elem())
			if err != nil {
				return nil, err
			}
			out.Index(i).Set(reflect.ValueOf(nv))
		}
		return out.Interface(), nil
	}
	if typeDesc.Kind() == reflect.Interface {
		return l.Value(), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'list' to %v", typeDesc)
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range l.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", e.Value())
	}
	sb.WriteByte(']')
	return sb.String()
}

type listIterator struct {
	list *List
	pos  int
}

func (it *listIterator) HasNext() ref.Val {
	return Bool(it.pos < len(it.list.elems))
}

func (it *listIterator) Next() ref.Val {
	if it.pos >= len(it.list.elems) {
		return NewErrKind(ErrInvalidArgument, "iterator exhausted")
	}
	v := it.list.elems[it.pos]
	it.pos++
	return v
}
