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

// Package traits declares narrow capability interfaces that runtime
// values optionally implement; standard library function bindings type
// assert against these rather than switching on concrete value types,
// so a host-provided value need only implement the traits it supports.
package traits

import "github.com/exprcel/cel/common/types/ref"

// Adder supports the `+` overload.
type Adder interface {
	Add(other ref.Val) ref.Val
}

// Subtractor supports the `-` binary overload.
type Subtractor interface {
	Subtract(other ref.Val) ref.Val
}

// Multiplier supports the `*` overload.
type Multiplier interface {
	Multiply(other ref.Val) ref.Val
}

// Divider supports the `/` overload.
type Divider interface {
	Divide(other ref.Val) ref.Val
}

// Modder supports the `%` overload.
type Modder interface {
	Modulo(other ref.Val) ref.Val
}

// Negater supports unary `-`.
type Negater interface {
	Negate() ref.Val
}

// Comparer supports ordering comparisons, returning an Int in {-1,0,1}
// or an error value if the operands are not ordered against one another.
type Comparer interface {
	Compare(other ref.Val) ref.Val
}

// Sizer supports `size()`.
type Sizer interface {
	Size() ref.Val
}

// Indexer supports `[]` access.
type Indexer interface {
	Get(index ref.Val) ref.Val
}

// Iterable produces an Iterator over a list or map value, used by
// comprehension execution.
type Iterable interface {
	Iterator() Iterator
}

// Iterator walks the elements (or keys, for a map) of an Iterable.
type Iterator interface {
	HasNext() ref.Val
	Next() ref.Val
}

// Container supports the `in` overload, i.e. `x in y`.
type Container interface {
	Contains(value ref.Val) ref.Val
}

// FieldTester supports presence testing (`has(x.f)`) without raising on
// a missing field or key.
type FieldTester interface {
	IsSet(field ref.Val) ref.Val
}

// Indexable supports field lookup by name, used for struct Select.
type Indexable interface {
	Indexer
	FieldTester
}

// Mapper exposes map-specific operations beyond Indexer/Iterable.
type Mapper interface {
	Indexer
	Iterable
	Sizer
	Container
}

// Lister exposes list-specific operations beyond Indexer/Iterable.
type Lister interface {
	Indexer
	Iterable
	Sizer
	Container
	Adder
}

// Matcher supports the `matches` regular-expression overload.
type Matcher interface {
	Match(pattern ref.Val) ref.Val
}
