// Copyright 2020 Google LLC
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
	"fmt"
	"strings"

	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Strings returns a cel.EnvOption configuring extended string
// manipulation functions: charAt, indexOf, lastIndexOf, join,
// lowerAscii, upperAscii, replace, split, substring, trim, and reverse as
// instance methods on <string> (join takes a <list<string>> receiver),
// plus the global function strings.quote.
//
//	<string>.charAt(<int>) -> <string>
//	<string>.indexOf(<string>) -> <int>
//	<string>.indexOf(<string>, <int>) -> <int>
//	<string>.lastIndexOf(<string>) -> <int>
//	<string>.lastIndexOf(<string>, <int>) -> <int>
//	<list<string>>.join() -> <string>
//	<list<string>>.join(<string>) -> <string>
//	<string>.lowerAscii() -> <string>
//	<string>.upperAscii() -> <string>
//	<string>.replace(<string>, <string>) -> <string>
//	<string>.split(<string>) -> <list<string>>
//	<string>.substring(<int>) -> <string>
//	<string>.substring(<int>, <int>) -> <string>
//	<string>.trim() -> <string>
//	<string>.reverse() -> <string>
//	strings.quote(<string>) -> <string>
func Strings() cel.EnvOption {
	return cel.Lib(stringsLib{})
}

type stringsLib struct{}

func (stringsLib) LibraryName() string { return "cel.lib.ext.strings" }

func (stringsLib) CompileOptions() []cel.EnvOption {
	listOfString := cel.ListType(cel.StringType)
	return []cel.EnvOption{
		cel.Function("charAt",
			cel.MemberOverload("string_char_at_int",
				[]*types.Type{cel.StringType, cel.IntType}, cel.StringType,
				cel.BinaryBinding(strCharAt))),
		cel.Function("indexOf",
			cel.MemberOverload("string_index_of_string",
				[]*types.Type{cel.StringType, cel.StringType}, cel.IntType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return strIndexOf(lhs, rhs, types.Int(0))
				})),
			cel.MemberOverload("string_index_of_string_int",
				[]*types.Type{cel.StringType, cel.StringType, cel.IntType}, cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return strIndexOf(args[0], args[1], args[2])
				}))),
		cel.Function("lastIndexOf",
			cel.MemberOverload("string_last_index_of_string",
				[]*types.Type{cel.StringType, cel.StringType}, cel.IntType,
				cel.BinaryBinding(strLastIndexOf)),
			cel.MemberOverload("string_last_index_of_string_int",
				[]*types.Type{cel.StringType, cel.StringType, cel.IntType}, cel.IntType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return strLastIndexOfFrom(args[0], args[1], args[2])
				}))),
		cel.Function("join",
			cel.MemberOverload("list_join",
				[]*types.Type{listOfString}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val { return strJoin(val, "") })),
			cel.MemberOverload("list_join_string",
				[]*types.Type{listOfString, cel.StringType}, cel.StringType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val { return strJoin(lhs, string(rhs.(types.String))) }))),
		cel.Function("lowerAscii",
			cel.MemberOverload("string_lower_ascii", []*types.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(strMapASCII(func(r rune) rune {
					if r >= 'A' && r <= 'Z' {
						return r + ('a' - 'A')
					}
					return r
				})))),
		cel.Function("upperAscii",
			cel.MemberOverload("string_upper_ascii", []*types.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(strMapASCII(func(r rune) rune {
					if r >= 'a' && r <= 'z' {
						return r - ('a' - 'A')
					}
					return r
				})))),
		cel.Function("replace",
			cel.MemberOverload("string_replace_string_string",
				[]*types.Type{cel.StringType, cel.StringType, cel.StringType}, cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					s := string(args[0].(types.String))
					old := string(args[1].(types.String))
					newStr := string(args[2].(types.String))
					return types.String(strings.ReplaceAll(s, old, newStr))
				}))),
		cel.Function("split",
			cel.MemberOverload("string_split_string",
				[]*types.Type{cel.StringType, cel.StringType}, listOfString,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					parts := strings.Split(string(lhs.(types.String)), string(rhs.(types.String)))
					elems := make([]ref.Val, len(parts))
					for i, p := range parts {
						elems[i] = types.String(p)
					}
					return types.NewList(elems)
				}))),
		cel.Function("substring",
			cel.MemberOverload("string_substring_int",
				[]*types.Type{cel.StringType, cel.IntType}, cel.StringType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return strSubstring(lhs, rhs, types.Int(-1))
				})),
			cel.MemberOverload("string_substring_int_int",
				[]*types.Type{cel.StringType, cel.IntType, cel.IntType}, cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return strSubstring(args[0], args[1], args[2])
				}))),
		cel.Function("trim",
			cel.MemberOverload("string_trim", []*types.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.String(strings.TrimSpace(string(val.(types.String))))
				}))),
		cel.Function("reverse",
			cel.MemberOverload("string_reverse", []*types.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					runes := []rune(string(val.(types.String)))
					for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
						runes[i], runes[j] = runes[j], runes[i]
					}
					return types.String(runes)
				}))),
		cel.Function("strings.quote",
			cel.Overload("strings_quote_string", []*types.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.String(fmt.Sprintf("%q", string(val.(types.String))))
				}))),
	}
}

func (stringsLib) ProgramOptions() []cel.ProgramOption { return nil }

func strMapASCII(f func(rune) rune) func(ref.Val) ref.Val {
	return func(val ref.Val) ref.Val {
		s := string(val.(types.String))
		runes := []rune(s)
		for i, r := range runes {
			runes[i] = f(r)
		}
		return types.String(runes)
	}
}

func strCharAt(lhs, rhs ref.Val) ref.Val {
	runes := []rune(string(lhs.(types.String)))
	idx := int64(rhs.(types.Int))
	if idx < 0 || idx > int64(len(runes)) {
		return types.NewErrKind(types.ErrInvalidArgument, "charAt: index out of range: %d", idx)
	}
	if idx == int64(len(runes)) {
		return types.String("")
	}
	return types.String(string(runes[idx]))
}

func strIndexOf(str, substr, offset ref.Val) ref.Val {
	s := []rune(string(str.(types.String)))
	sub := string(substr.(types.String))
	off := int64(offset.(types.Int))
	if off < 0 || off > int64(len(s)) {
		return types.NewErrKind(types.ErrInvalidArgument, "indexOf: index out of range: %d", off)
	}
	idx := strings.Index(string(s[off:]), sub)
	if idx < 0 {
		return types.Int(-1)
	}
	return types.Int(off + int64(len([]rune(string(s[off:])[:idx]))))
}

func strLastIndexOf(lhs, rhs ref.Val) ref.Val {
	return strLastIndexOfFrom(lhs, rhs, types.Int(int64(len([]rune(string(lhs.(types.String)))))-1))
}

func strLastIndexOfFrom(str, substr, fromIdx ref.Val) ref.Val {
	s := []rune(string(str.(types.String)))
	sub := string(substr.(types.String))
	from := int64(fromIdx.(types.Int))
	if from < -1 || from >= int64(len(s)) {
		if !(from == -1 && len(s) == 0) {
			return types.NewErrKind(types.ErrInvalidArgument, "lastIndexOf: index out of range: %d", from)
		}
	}
	upper := from + int64(len(sub))
	if upper > int64(len(s)) {
		upper = int64(len(s))
	}
	idx := strings.LastIndex(string(s[:upper]), sub)
	if idx < 0 {
		return types.Int(-1)
	}
	return types.Int(int64(len([]rune(string(s[:upper])[:idx]))))
}

func strJoin(val ref.Val, sep string) ref.Val {
	lst := val.(*types.List)
	n := int64(lst.Size().(types.Int))
	parts := make([]string, n)
	for i := int64(0); i < n; i++ {
		parts[i] = string(lst.Get(types.Int(i)).(types.String))
	}
	return types.String(strings.Join(parts, sep))
}

func strSubstring(str, start, end ref.Val) ref.Val {
	runes := []rune(string(str.(types.String)))
	s := int64(start.(types.Int))
	e := int64(end.(types.Int))
	if e < 0 {
		e = int64(len(runes))
	}
	if s < 0 || e > int64(len(runes)) || s > e {
		return types.NewErrKind(types.ErrInvalidArgument, "substring: invalid range [%d, %d)", s, e)
	}
	return types.String(runes[s:e])
}
