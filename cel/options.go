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

package cel

import (
	"fmt"

	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
)

// EnvOption configures an Env during NewEnv or Extend.
type EnvOption func(*Env) (*Env, error)

// Declarations adds variables to the environment's global scope.
func Declarations(vars ...*decls.VariableDecl) EnvOption {
	return func(e *Env) (*Env, error) {
		e.vars = append(e.vars, vars...)
		e.customVars = append(e.customVars, vars...)
		return e, nil
	}
}

// Variable is shorthand for Declarations(decls.NewVariable(name, t)).
func Variable(name string, t *types.Type) EnvOption {
	return func(e *Env) (*Env, error) {
		v, err := decls.NewVariable(name, t)
		if err != nil {
			return nil, err
		}
		e.vars = append(e.vars, v)
		e.customVars = append(e.customVars, v)
		return e, nil
	}
}

// Function declares or extends a function's overload set.
func Function(name string, opts ...decls.FunctionOpt) EnvOption {
	return func(e *Env) (*Env, error) {
		fn, err := decls.NewFunction(name, opts...)
		if err != nil {
			return nil, err
		}
		if err := e.addFunctions(fn); err != nil {
			return nil, err
		}
		e.customFunctions[name] = true
		return e, nil
	}
}

// Container sets the namespace prefix unqualified names resolve
// against, along with any aliases/abbreviations.
func Container(name string, opts ...containers.ContainerOption) EnvOption {
	return func(e *Env) (*Env, error) {
		allOpts := append([]containers.ContainerOption{containers.Name(name)}, opts...)
		c, err := e.container.Extend(allOpts...)
		if err != nil {
			return nil, err
		}
		e.container = c
		return e, nil
	}
}

// CrossTypeNumericComparisons toggles whether list/map literals may mix
// int, uint, and double elements under dyn promotion instead of being
// rejected as a type mismatch. Relational comparisons across these types
// are declared by the standard library whether or not it is set.
func CrossTypeNumericComparisons(enabled bool) EnvOption {
	return func(e *Env) (*Env, error) {
		e.crossTypeNumericComparisons = enabled
		return e, nil
	}
}

// Types registers struct field layouts and enum constants with e's
// TypeProvider, the host-application boundary for struct/enum lookups
// (spec C1/C2's "conversion boundary with the host's native value
// types").
func Types(register func(*types.Registry) error) EnvOption {
	return func(e *Env) (*Env, error) {
		if err := register(e.provider); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Library bundles a named, versioned set of compile-time declarations
// (functions, macros-as-functions, variables) and their matching
// runtime bindings, the unit spec §4.4's "canonical extension
// libraries" are distributed as.
type Library interface {
	// LibraryName returns the stable name used by CompileOptions'
	// version-selection and by Env.HasLibrary.
	LibraryName() string

	// CompileOptions returns the EnvOptions needed to type-check
	// expressions using this library.
	CompileOptions() []EnvOption

	// ProgramOptions returns the ProgramOptions needed to evaluate
	// expressions using this library, typically runtime function
	// bindings matching the overloads CompileOptions declared.
	ProgramOptions() []ProgramOption
}

// Lib applies l's compile options to the environment and records l's
// program options for every subsequent Env.Program call, implementing
// the opt-in-by-name extension model of spec §4.4.
func Lib(l Library) EnvOption {
	return func(e *Env) (*Env, error) {
		if e.libraries[l.LibraryName()] {
			return nil, fmt.Errorf("cel: library %s already configured", l.LibraryName())
		}
		// Declarations a library contributes via its own CompileOptions
		// are re-derived from Extensions[] on Load, not restated under
		// Variables[]/Functions[], so custom-declaration tracking is
		// suspended for the duration of this loop.
		preVars := len(e.customVars)
		preFuncs := make(map[string]bool, len(e.customFunctions))
		for name := range e.customFunctions {
			preFuncs[name] = true
		}
		for _, opt := range l.CompileOptions() {
			var err error
			e, err = opt(e)
			if err != nil {
				return nil, fmt.Errorf("cel: library %s: %w", l.LibraryName(), err)
			}
		}
		e.customVars = e.customVars[:preVars]
		for name := range e.customFunctions {
			if !preFuncs[name] {
				delete(e.customFunctions, name)
			}
		}
		e.progOpts = append(e.progOpts, l.ProgramOptions()...)
		e.libraries[l.LibraryName()] = true
		return e, nil
	}
}
