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
	"sort"

	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Lists returns a cel.EnvOption configuring extended list functions: slice,
// flatten, distinct, reverse, and sort, all as instance methods. All
// indices are zero-based.
//
//	<list(T)>.slice(<int>, <int>) -> <list(T)>
//	<list(list(T))>.flatten() -> <list(T)>
//	<list(dyn)>.flatten(<int>) -> <list(dyn)>
//	<list(T)>.distinct() -> <list(T)>
//	<list(T)>.reverse() -> <list(T)>
//	<list(T)>.sort() -> <list(T)>, T comparable
func Lists() cel.EnvOption {
	return cel.Lib(listsLib{})
}

type listsLib struct{}

func (listsLib) LibraryName() string { return "cel.lib.ext.lists" }

func (listsLib) CompileOptions() []cel.EnvOption {
	paramT := cel.TypeParamType("T")
	listOfT := cel.ListType(paramT)
	listOfListT := cel.ListType(listOfT)
	listDyn := cel.ListType(cel.DynType)
	return []cel.EnvOption{
		cel.Function("slice",
			cel.MemberOverload("list_slice",
				[]*types.Type{listOfT, cel.IntType, cel.IntType}, listOfT,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return listSlice(args[0], args[1], args[2])
				}))),
		cel.Function("flatten",
			cel.MemberOverload("list_flatten",
				[]*types.Type{listOfListT}, listOfT,
				cel.UnaryBinding(func(val ref.Val) ref.Val { return listFlatten(val, 1) })),
			cel.MemberOverload("list_flatten_int",
				[]*types.Type{listDyn, cel.IntType}, listDyn,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return listFlatten(lhs, int64(rhs.(types.Int)))
				}))),
		cel.Function("distinct",
			cel.MemberOverload("list_distinct", []*types.Type{listOfT}, listOfT,
				cel.UnaryBinding(listDistinct))),
		cel.Function("reverse",
			cel.MemberOverload("list_reverse", []*types.Type{listOfT}, listOfT,
				cel.UnaryBinding(listReverse))),
		cel.Function("sort",
			cel.MemberOverload("list_sort", []*types.Type{listOfT}, listOfT,
				cel.UnaryBinding(listSort))),
	}
}

func (listsLib) ProgramOptions() []cel.ProgramOption { return nil }

func listSlice(val, startVal, endVal ref.Val) ref.Val {
	lst := val.(*types.List)
	n := int64(lst.Size().(types.Int))
	start := int64(startVal.(types.Int))
	end := int64(endVal.(types.Int))
	if start < 0 || end < 0 {
		return types.NewErrKind(types.ErrInvalidArgument, "slice: negative index not supported")
	}
	if start > end {
		return types.NewErrKind(types.ErrInvalidArgument, "slice: start index must be <= end index")
	}
	if end > n {
		return types.NewErrKind(types.ErrInvalidArgument, "slice: list is length %d", n)
	}
	elems := make([]ref.Val, 0, end-start)
	for i := start; i < end; i++ {
		elems = append(elems, lst.Get(types.Int(i)))
	}
	return types.NewList(elems)
}

func listFlatten(val ref.Val, depth int64) ref.Val {
	if depth < 0 {
		return types.NewErrKind(types.ErrInvalidArgument, "flatten: negative depth not supported")
	}
	lst := val.(*types.List)
	elems, err := flattenLevels(lst, depth)
	if err != nil {
		return err
	}
	return types.NewList(elems)
}

func flattenLevels(lst *types.List, depth int64) ([]ref.Val, ref.Val) {
	n := int64(lst.Size().(types.Int))
	out := make([]ref.Val, 0, n)
	for i := int64(0); i < n; i++ {
		elem := lst.Get(types.Int(i))
		if depth > 0 {
			if sub, ok := elem.(*types.List); ok {
				subOut, errVal := flattenLevels(sub, depth-1)
				if errVal != nil {
					return nil, errVal
				}
				out = append(out, subOut...)
				continue
			}
		}
		out = append(out, elem)
	}
	return out, nil
}

func listDistinct(val ref.Val) ref.Val {
	lst := val.(*types.List)
	n := int64(lst.Size().(types.Int))
	out := make([]ref.Val, 0, n)
	for i := int64(0); i < n; i++ {
		cur := lst.Get(types.Int(i))
		seen := false
		for _, kept := range out {
			if eq := kept.Equal(cur); eq == types.True {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, cur)
		}
	}
	return types.NewList(out)
}

func listReverse(val ref.Val) ref.Val {
	lst := val.(*types.List)
	n := int64(lst.Size().(types.Int))
	out := make([]ref.Val, n)
	for i := int64(0); i < n; i++ {
		out[n-1-i] = lst.Get(types.Int(i))
	}
	return types.NewList(out)
}

func listSort(val ref.Val) ref.Val {
	lst := val.(*types.List)
	n := int64(lst.Size().(types.Int))
	out := make([]ref.Val, n)
	for i := int64(0); i < n; i++ {
		out[i] = lst.Get(types.Int(i))
	}
	var sortErr ref.Val
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		cmp, ok := out[i].(interface{ Compare(ref.Val) ref.Val })
		if !ok {
			sortErr = types.NewErrKind(types.ErrUnsupportedType, "sort: non-comparable element")
			return false
		}
		c := cmp.Compare(out[j])
		if types.IsError(c) {
			sortErr = c
			return false
		}
		return int64(c.(types.Int)) < 0
	})
	if sortErr != nil {
		return sortErr
	}
	return types.NewList(out)
}
