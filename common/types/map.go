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
	"sort"
	"strings"

	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/common/types/traits"
)

// mapKey is the hashable representation of a CEL map key: bool, int64,
// uint64, or string, per spec §4.3's supported key type set.
type mapKey interface{}

// Map implements ref.Val and traits.Mapper over an insertion-ordered set
// of key/value pairs. Key normalization follows CEL's integral key
// equivalence: 1 and 1u index the same entry. Double keys are not
// supported.
type Map struct {
	keys   []ref.Val
	values []ref.Val
	index  map[mapKey]int
}

var (
	_ ref.Val       = &Map{}
	_ traits.Mapper = &Map{}
)

// NewMap returns an empty, mutable-during-construction Map. Entries are
// added with Insert before the Map is published to evaluation.
func NewMap() *Map {
	return &Map{index: make(map[mapKey]int)}
}

func mapKeyOf(key ref.Val) (mapKey, error) {
	switch k := key.(type) {
	case Bool:
		return bool(k), nil
	case Int:
		return int64(k), nil
	case Uint:
		if uint64(k) > uint64(MaxIntValue) {
			return uint64(k), nil
		}
		return int64(k), nil
	case String:
		return string(k), nil
	}
	return nil, fmt.Errorf("unsupported map key type: %s", key.Type().TypeName())
}

// Insert adds or overwrites a key/value pair, preserving first-seen
// ordering for iteration and String rendering.
func (m *Map) Insert(key, value ref.Val) error {
	mk, err := mapKeyOf(key)
	if err != nil {
		return err
	}
	if i, ok := m.index[mk]; ok {
		m.values[i] = value
		return nil
	}
	m.index[mk] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	return nil
}

func (m *Map) Type() ref.Type { return NewMapType(DynType, DynType) }

func (m *Map) Value() interface{} {
	native := make(map[interface{}]interface{}, len(m.keys))
	for i, k := range m.keys {
		native[k.Value()] = m.values[i].Value()
	}
	return native
}

func (m *Map) Get(index ref.Val) ref.Val {
	mk, err := mapKeyOf(index)
	if err != nil {
		return NewErrKind(ErrInvalidArgument, "%s", err.Error())
	}
	i, ok := m.index[mk]
	if !ok {
		return NewErrKind(ErrNoSuchKey, "key not found: %v", index.Value())
	}
	return m.values[i]
}

func (m *Map) Find(index ref.Val) (ref.Val, bool) {
	mk, err := mapKeyOf(index)
	if err != nil {
		return nil, false
	}
	i, ok := m.index[mk]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

func (m *Map) Size() ref.Val { return Int(len(m.keys)) }

func (m *Map) Contains(value ref.Val) ref.Val {
	_, found := m.Find(value)
	return Bool(found)
}

func (m *Map) IsSet(field ref.Val) ref.Val {
	_, found := m.Find(field)
	return Bool(found)
}

func (m *Map) Iterator() traits.Iterator {
	return &mapIterator{m: m, pos: 0}
}

func (m *Map) Equal(other ref.Val) ref.Val {
	o, ok := other.(*Map)
	if !ok {
		return False
	}
	if len(m.keys) != len(o.keys) {
		return False
	}
	for i, k := range m.keys {
		ov, found := o.Find(k)
		if !found {
			return False
		}
		eq, ok := m.values[i].Equal(ov).(Bool)
		if !ok || !bool(eq) {
			return False
		}
	}
	return True
}

func (m *Map) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case DynType, AnyType:
		return m
	case TypeTypeMeta:
		return NewMapType(DynType, DynType)
	}
	if typeVal.TypeName() == "map" {
		return m
	}
	return NewErr("type conversion error from 'map' to '%s'", typeVal.TypeName())
}

func (m *Map) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	if typeDesc.Kind() == reflect.Map {
		out := reflect.MakeMapWithSize(typeDesc, len(m.keys))
		for i, k := range m.keys {
			nk, err := k.ConvertToNative(typeDesc.Key())
			if err != nil {
				return nil, err
			}
			nv, err := m.values[i].ConvertToNative(typeDesc.Elem())
			if err != nil {
				return nil, err
			}
			out.SetMapIndex(reflect.ValueOf(nk), reflect.ValueOf(nv))
		}
		return out.Interface(), nil
	}
	if typeDesc.Kind() == reflect.Interface {
		return m.Value(), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'map' to %v", typeDesc)
}

func (m *Map) String() string {
	parts := make([]string, len(m.keys))
	for i, k := range m.keys {
		parts[i] = fmt.Sprintf("%v:%v", k.Value(), m.values[i].Value())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

type mapIterator struct {
	m   *Map
	pos int
}

func (it *mapIterator) HasNext() ref.Val {
	return Bool(it.pos < len(it.m.keys))
}

func (it *mapIterator) Next() ref.Val {
	if it.pos >= len(it.m.keys) {
		return NewErrKind(ErrInvalidArgument, "iterator exhausted")
	}
	k := it.m.keys[it.pos]
	it.pos++
	return k
}
