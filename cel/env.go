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

// Package cel is the public facade tying the environment (C4), checker
// (C5), optimizers (C9), unparser (C10), and planner/runtime (C6/C7)
// into the single entry point a host application embeds: build an Env,
// Check an externally-parsed Ast against it, optionally Compile it
// through a chosen set of optimizer passes, then Program it into an
// evaluable, concurrency-safe Program.
package cel

import (
	"fmt"

	"github.com/exprcel/cel/checker"
	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/stdlib"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/interpreter"
	"github.com/exprcel/cel/optimizer"
)

// Env encapsulates the declarations, container, and type registry
// needed to Check and Program expressions built by an external parser
// collaborator (spec §1: the concrete grammar/lexer is out of scope
// here; an Env consumes the ast.AST it yields).
type Env struct {
	container *containers.Container
	provider  *types.Registry

	vars      []*decls.VariableDecl
	functions map[string]*decls.FunctionDecl

	crossTypeNumericComparisons bool
	libraries                   map[string]bool

	// customVars/customFunctions track declarations added beyond the
	// stdlib seed, the set Export(e) (spec §6's environment
	// serialization) writes out rather than every stdlib symbol.
	customVars      []*decls.VariableDecl
	customFunctions map[string]bool

	chk      *checker.Env
	progOpts []ProgramOption
}

// NewEnv builds an Env with the standard library and an empty (root)
// container, applying opts in order.
func NewEnv(opts ...EnvOption) (*Env, error) {
	container, err := containers.NewContainer()
	if err != nil {
		return nil, fmt.Errorf("cel: default container: %w", err)
	}
	e := &Env{
		container:       container,
		provider:        types.NewRegistry(),
		functions:       map[string]*decls.FunctionDecl{},
		libraries:       map[string]bool{},
		customFunctions: map[string]bool{},
	}
	if err := e.addFunctions(stdlib.Functions()...); err != nil {
		return nil, err
	}
	e.vars = append(e.vars, stdlib.Types()...)
	return e.configure(opts...)
}

// Extend produces a new Env carrying every declaration of e plus the
// additional opts, leaving e itself untouched (spec §4's "Environment
// is immutable once built").
func (e *Env) Extend(opts ...EnvOption) (*Env, error) {
	clone := &Env{
		container:                   e.container,
		provider:                    e.provider,
		vars:                        append([]*decls.VariableDecl{}, e.vars...),
		functions:                   copyFunctions(e.functions),
		crossTypeNumericComparisons: e.crossTypeNumericComparisons,
		libraries:                   copyLibrarySet(e.libraries),
		customVars:                  append([]*decls.VariableDecl{}, e.customVars...),
		customFunctions:             copyLibrarySet(e.customFunctions),
		progOpts:                    append([]ProgramOption{}, e.progOpts...),
	}
	return clone.configure(opts...)
}

func copyFunctions(in map[string]*decls.FunctionDecl) map[string]*decls.FunctionDecl {
	out := make(map[string]*decls.FunctionDecl, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyLibrarySet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (e *Env) addFunctions(fns ...*decls.FunctionDecl) error {
	for _, fn := range fns {
		existing, found := e.functions[fn.Name()]
		if !found {
			e.functions[fn.Name()] = fn
			continue
		}
		merged, err := existing.Merge(fn)
		if err != nil {
			return fmt.Errorf("cel: %w", err)
		}
		e.functions[fn.Name()] = merged
	}
	return nil
}

// configure applies opts in order, then rebuilds the checking
// environment so Check/Compile see a consistent, fully declared symbol
// table.
func (e *Env) configure(opts ...EnvOption) (*Env, error) {
	var err error
	for _, opt := range opts {
		e, err = opt(e)
		if err != nil {
			return nil, err
		}
	}
	var chkOpts []checker.Option
	if e.crossTypeNumericComparisons {
		chkOpts = append(chkOpts, checker.CrossTypeNumericComparisons(true))
	}
	ce, err := checker.NewEnv(e.container, e.provider, chkOpts...)
	if err != nil {
		return nil, err
	}
	if err := ce.AddIdents(e.vars...); err != nil {
		return nil, err
	}
	funcs := make([]*decls.FunctionDecl, 0, len(e.functions))
	for _, fn := range e.functions {
		funcs = append(funcs, fn)
	}
	if err := ce.AddFunctions(funcs...); err != nil {
		return nil, err
	}
	e.chk = ce
	return e, nil
}

// Check type-checks parsed (the output of an external parser
// collaborator, or of ast.NewExprFactory for a hand-built tree) against
// e, returning the annotated Ast or the Issues that explain why it was
// rejected.
func (e *Env) Check(src common.Source, parsed *ast.AST) (*ast.AST, *Issues) {
	checked, errs := checker.Check(parsed, src, e.chk)
	if !errs.Empty() {
		return nil, &Issues{errs: errs}
	}
	return checked, nil
}

// Compile checks parsed and then rewrites it through passes in order,
// re-checking between each (optimizer.StaticOptimizer's contract),
// returning the final optimized, checked Ast.
func (e *Env) Compile(src common.Source, parsed *ast.AST, passes ...optimizer.ASTOptimizer) (*ast.AST, *Issues) {
	checked, iss := e.Check(src, parsed)
	if iss != nil {
		return nil, iss
	}
	if len(passes) == 0 {
		return checked, nil
	}
	opt := optimizer.NewStaticOptimizer(e.chk, passes...)
	optimized, err := opt.Optimize(src, checked)
	if err != nil {
		return nil, &Issues{err: err}
	}
	return optimized, nil
}

// Program plans checked into an evaluable Program, registering the
// standard library's runtime bindings plus any bindings contributed by
// a library's ProgramOptions and opts' own Functions/CustomDispatcher
// entries.
func (e *Env) Program(checked *ast.AST, opts ...ProgramOption) (Program, error) {
	return e.newProgram(checked, opts...)
}

// TypeAdapter returns the ref.TypeAdapter e.Program-built programs use
// to lift host-native Go values into ref.Val.
func (e *Env) TypeAdapter() ref.TypeAdapter { return e.provider }

// TypeProvider returns the ref.TypeProvider backing e's struct/enum
// lookups.
func (e *Env) TypeProvider() ref.TypeProvider { return e.provider }

// Container returns e's namespace container, used for unqualified-name
// resolution during Check.
func (e *Env) Container() *containers.Container { return e.container }

// CustomVariables returns the variables declared beyond the stdlib
// seed, in declaration order.
func (e *Env) CustomVariables() []*decls.VariableDecl {
	return append([]*decls.VariableDecl{}, e.customVars...)
}

// CustomFunctions returns the functions declared beyond the stdlib
// seed, keyed by overload set so a caller sees the merged signature.
func (e *Env) CustomFunctions() map[string]*decls.FunctionDecl {
	out := make(map[string]*decls.FunctionDecl, len(e.customFunctions))
	for name := range e.customFunctions {
		if fn, found := e.functions[name]; found {
			out[name] = fn
		}
	}
	return out
}

// Libraries returns the names of every Library applied via Lib.
func (e *Env) Libraries() []string {
	out := make([]string, 0, len(e.libraries))
	for name := range e.libraries {
		out = append(out, name)
	}
	return out
}

// HasLibrary reports whether a Library registered under name (Library's
// CompileOptions/ProgramOptions having already been applied via the Lib
// EnvOption) is part of e, letting a second Lib(sameName) call at a
// different version be rejected rather than silently double-applied.
func (e *Env) HasLibrary(name string) bool { return e.libraries[name] }

// Issues reports why a Check or Compile call failed.
type Issues struct {
	errs *common.Errors
	err  error
}

// Err returns a single error summarizing every collected issue, or nil
// if there were none.
func (i *Issues) Err() error {
	if i.err != nil {
		return i.err
	}
	if i.errs != nil && !i.errs.Empty() {
		return fmt.Errorf("%s", i.errs.ToDisplayString())
	}
	return nil
}

// Errors returns the granular diagnostics, if this Issues came from a
// Check failure rather than an optimizer error.
func (i *Issues) Errors() []common.Error {
	if i.errs == nil {
		return nil
	}
	return i.errs.GetErrors()
}

// String renders every issue for display.
func (i *Issues) String() string {
	if err := i.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// StandardDispatcher is a convenience wrapper around
// interpreter.StandardDispatcher for callers assembling an
// interpreter.Interpreter directly rather than through Env.Program
// (e.g. a library's test harness that wants planner access without the
// full facade).
func StandardDispatcher(extra ...*decls.FunctionDecl) (interpreter.Dispatcher, error) {
	fns := append([]*decls.FunctionDecl{}, stdlib.Functions()...)
	fns = append(fns, extra...)
	return interpreter.StandardDispatcher(fns)
}
