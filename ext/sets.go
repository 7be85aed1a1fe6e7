// Copyright 2023 Google LLC
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

package ext

import (
	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Sets returns a cel.EnvOption configuring set-style functions over lists,
// treating each list as an unordered, duplicate-tolerant collection:
// sets.contains, sets.equivalent, sets.intersects. Element comparison
// follows the same cross-type numeric equality (int/uint/double) the core
// equality operator already uses, so [1] and [1u, 1.0] are interchangeable.
//
//	sets.contains(<list(T)>, <list(T)>) -> <bool>
//	sets.equivalent(<list(T)>, <list(T)>) -> <bool>
//	sets.intersects(<list(T)>, <list(T)>) -> <bool>
func Sets() cel.EnvOption {
	return cel.Lib(setsLib{})
}

type setsLib struct{}

func (setsLib) LibraryName() string { return "cel.lib.ext.sets" }

func (setsLib) CompileOptions() []cel.EnvOption {
	listOfT := cel.ListType(cel.TypeParamType("T"))
	return []cel.EnvOption{
		cel.Function("sets.contains",
			cel.Overload("sets_contains_list_list", []*types.Type{listOfT, listOfT}, cel.BoolType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return types.Bool(setContains(lhs.(*types.List), rhs.(*types.List)))
				}))),
		cel.Function("sets.equivalent",
			cel.Overload("sets_equivalent_list_list", []*types.Type{listOfT, listOfT}, cel.BoolType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					l, r := lhs.(*types.List), rhs.(*types.List)
					return types.Bool(setContains(l, r) && setContains(r, l))
				}))),
		cel.Function("sets.intersects",
			cel.Overload("sets_intersects_list_list", []*types.Type{listOfT, listOfT}, cel.BoolType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return types.Bool(setIntersects(lhs.(*types.List), rhs.(*types.List)))
				}))),
	}
}

func (setsLib) ProgramOptions() []cel.ProgramOption { return nil }

// setContains reports whether every element of sub has an Equal match in
// super, following sets.contains' superset semantics.
func setContains(super, sub *types.List) bool {
	subN := int64(sub.Size().(types.Int))
	superN := int64(super.Size().(types.Int))
	for i := int64(0); i < subN; i++ {
		elem := sub.Get(types.Int(i))
		found := false
		for j := int64(0); j < superN; j++ {
			if eq := super.Get(types.Int(j)).Equal(elem); eq == types.True {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func setIntersects(a, b *types.List) bool {
	aN := int64(a.Size().(types.Int))
	bN := int64(b.Size().(types.Int))
	for i := int64(0); i < aN; i++ {
		elem := a.Get(types.Int(i))
		for j := int64(0); j < bN; j++ {
			if eq := b.Get(types.Int(j)).Equal(elem); eq == types.True {
				return true
			}
		}
	}
	return false
}
