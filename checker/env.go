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

package checker

import (
	"fmt"

	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types/ref"
)

// Env is the symbol table a Check pass resolves identifiers and
// function calls against: a namespace container, a struct/enum type
// provider, and the variable/function declarations registered with
// AddIdents/AddFunctions.
type Env struct {
	container *containers.Container
	provider  ref.TypeProvider

	functions map[string]*decls.FunctionDecl
	vars      *scopes

	crossTypeNumericComparisons bool
}

// NewEnv builds a checking environment rooted at container and resolving
// struct/enum names through provider, applying opts in order.
func NewEnv(container *containers.Container, provider ref.TypeProvider, opts ...Option) (*Env, error) {
	e := &Env{
		container: container,
		provider:  provider,
		functions: map[string]*decls.FunctionDecl{},
		vars:      newScopes(),
	}
	var err error
	for _, opt := range opts {
		e, err = opt(e)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Option configures an Env during NewEnv.
type Option func(*Env) (*Env, error)

// CrossTypeNumericComparisons toggles whether list/map literals may mix
// int, uint, and double elements/values under a single dyn-promoted
// aggregate type instead of being rejected as a type mismatch.
func CrossTypeNumericComparisons(enabled bool) Option {
	return func(e *Env) (*Env, error) {
		e.crossTypeNumericComparisons = enabled
		return e, nil
	}
}

// AddIdents declares variables in the environment's global scope,
// rejecting a name already declared with an incompatible type.
func (e *Env) AddIdents(vars ...*decls.VariableDecl) error {
	for _, v := range vars {
		if existing, found := e.vars.blocks[0][v.Name()]; found && !existing.DeclarationEquals(v) {
			return fmt.Errorf("overlapping variable declaration for %s", v.Name())
		}
		e.vars.blocks[0][v.Name()] = v
	}
	return nil
}

// AddFunctions declares or merges function overload sets in the
// environment's function table.
func (e *Env) AddFunctions(funcs ...*decls.FunctionDecl) error {
	for _, fn := range funcs {
		existing, found := e.functions[fn.Name()]
		if !found {
			e.functions[fn.Name()] = fn
			continue
		}
		merged, err := existing.Merge(fn)
		if err != nil {
			return err
		}
		e.functions[fn.Name()] = merged
	}
	return nil
}

// enterScope pushes a block for a comprehension's loop-local variables.
func (e *Env) enterScope() { e.vars.push() }

// exitScope pops the block pushed by the matching enterScope.
func (e *Env) exitScope() { e.vars.pop() }

// addLoopVar declares a comprehension's iteration or accumulator
// variable in the current (innermost) scope.
func (e *Env) addLoopVar(v *decls.VariableDecl) { e.vars.addIdent(v) }

// lookupIdent resolves name to a declared variable, trying the
// innermost scope directly (comprehension loop variables are always
// simple, unqualified names) before falling back to the container's
// candidate resolution order against the global scope.
func (e *Env) lookupIdent(name string) (*decls.VariableDecl, bool) {
	if len(e.vars.blocks) > 1 {
		for i := len(e.vars.blocks) - 1; i >= 1; i-- {
			if v, found := e.vars.blocks[i][name]; found {
				return v, true
			}
		}
	}
	for _, candidate := range e.container.ResolveCandidateNames(name) {
		if v, found := e.vars.blocks[0][candidate]; found {
			return v, true
		}
	}
	return nil, false
}

// lookupEnumValue resolves name against the type provider's registered
// enum constants, trying each container-qualified candidate in turn.
func (e *Env) lookupEnumValue(name string) (ref.Val, bool) {
	if e.provider == nil {
		return nil, false
	}
	for _, candidate := range e.container.ResolveCandidateNames(name) {
		if v, found := e.provider.EnumValue(candidate); found {
			return v, true
		}
	}
	return nil, false
}

// lookupFunction resolves a free function name against the container's
// candidate resolution order. Member-call syntax (`x.f(...)`) looks up
// the function by its bare, undecorated name instead: member overloads
// are disambiguated by receiver type, not namespace.
func (e *Env) lookupFunction(name string, isMemberCall bool) (*decls.FunctionDecl, bool) {
	if isMemberCall {
		fn, found := e.functions[name]
		return fn, found
	}
	for _, candidate := range e.container.ResolveCandidateNames(name) {
		if fn, found := e.functions[candidate]; found {
			return fn, true
		}
	}
	return nil, false
}

// lookupStructType resolves a container-qualified type name through the
// type provider, used when a Struct literal's TypeName() or a
// `has`-style type reference needs to become a concrete struct type.
func (e *Env) lookupStructType(name string) (ref.Type, string, bool) {
	if e.provider == nil {
		return nil, "", false
	}
	for _, candidate := range e.container.ResolveCandidateNames(name) {
		if t, found := e.provider.FindStructType(candidate); found {
			return t, candidate, true
		}
	}
	return nil, "", false
}
