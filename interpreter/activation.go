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

// Package interpreter plans a checked or parse-only AST into a tree of
// Interpretable nodes and evaluates that tree against an Activation.
package interpreter

import (
	"sync"

	"github.com/exprcel/cel/common/types/ref"
)

// Activation binds the variable names a program references to runtime
// values. A single immutable Activation may be evaluated concurrently
// from many goroutines, each with its own ExecutionFrame.
type Activation interface {
	// ResolveName returns the bound value for name, along with whether
	// the binding exists at all. A lazily-bound value is a func()
	// interface{} that is resolved (and the result cached) the first
	// time it is looked up.
	ResolveName(name string) (interface{}, bool)

	// Parent returns the Activation this one was extended from, or nil
	// if this is the root.
	Parent() Activation
}

// NewActivation wraps a map of name to either a ref.Val or a
// lazy-binding func() interface{}. The evaluator uses only bindings that
// hold (or lazily produce) a ref.Val; a host-native Go value is not
// converted and the name resolves as unbound.
func NewActivation(bindings map[string]interface{}) Activation {
	return &mapActivation{bindings: bindings}
}

type mapActivation struct {
	mu       sync.Mutex
	bindings map[string]interface{}
}

func (a *mapActivation) ResolveName(name string) (interface{}, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, found := a.bindings[name]
	if !found {
		return nil, false
	}
	if lazy, ok := v.(func() interface{}); ok {
		resolved := lazy()
		a.bindings[name] = resolved
		return resolved, true
	}
	return v, true
}

func (a *mapActivation) Parent() Activation { return nil }

// varActivation is a single-variable scope pushed over a parent
// Activation, used by comprehension and fold evaluation to bind loop
// variables without allocating a map per iteration.
type varActivation struct {
	parent Activation
	name   string
	val    ref.Val
}

func newVarActivation(parent Activation, name string) *varActivation {
	return &varActivation{parent: parent, name: name}
}

func (v *varActivation) ResolveName(name string) (interface{}, bool) {
	if name == v.name {
		return v.val, true
	}
	return v.parent.ResolveName(name)
}

func (v *varActivation) Parent() Activation { return v.parent }

// ExtendActivation returns an Activation that resolves names against
// child first, falling back to parent.
func ExtendActivation(parent, child Activation) Activation {
	return &hierarchicalActivation{parent: parent, child: child}
}

type hierarchicalActivation struct {
	parent Activation
	child  Activation
}

func (a *hierarchicalActivation) ResolveName(name string) (interface{}, bool) {
	if v, found := a.child.ResolveName(name); found {
		return v, true
	}
	return a.parent.ResolveName(name)
}

func (a *hierarchicalActivation) Parent() Activation { return a.parent }
