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

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/interpreter"
)

// Program is a planned, evaluable view of a checked Ast, reusable
// concurrently across any number of Eval calls (spec §5).
type Program interface {
	// Eval evaluates the program against input, which may be an
	// interpreter.Activation, a map[string]interface{}, or nil for an
	// expression referencing no free variables. A *types.Err result is
	// also surfaced as a non-nil error, matching host expectations that
	// an evaluation failure is an `error`, not a special-cased value.
	Eval(input interface{}) (ref.Val, error)
}

// NoVars returns an empty Activation, for programs with no free
// variables.
func NoVars() interpreter.Activation {
	return interpreter.NewActivation(map[string]interface{}{})
}

// ProgramOption configures a program during Env.Program.
type ProgramOption func(*progConfig) (*progConfig, error)

type progConfig struct {
	extraFunctions []*decls.FunctionDecl
	iterationLimit uint64
	defaultVars    interpreter.Activation
}

// Functions registers additional runtime bindings, typically an
// extension library's ProgramOptions contribution matching functions
// it declared via Env's CompileOptions.
func Functions(fns ...*decls.FunctionDecl) ProgramOption {
	return func(c *progConfig) (*progConfig, error) {
		c.extraFunctions = append(c.extraFunctions, fns...)
		return c, nil
	}
}

// IterationLimit overrides interpreter.DefaultIterationLimit for
// programs built from this call, bounding comprehension work (spec §5).
func IterationLimit(limit uint64) ProgramOption {
	return func(c *progConfig) (*progConfig, error) {
		c.iterationLimit = limit
		return c, nil
	}
}

// DefaultVars supplies fallback variable bindings consulted when the
// Eval-time input does not resolve a name, letting a host pre-bind
// constants shared across many evaluations.
func DefaultVars(vars interpreter.Activation) ProgramOption {
	return func(c *progConfig) (*progConfig, error) {
		c.defaultVars = vars
		return c, nil
	}
}

type prog struct {
	interpretable interpreter.Program
	defaultVars   interpreter.Activation
}

func (e *Env) newProgram(checked *ast.AST, opts ...ProgramOption) (Program, error) {
	cfg := &progConfig{}
	allOpts := append(append([]ProgramOption{}, e.progOpts...), opts...)
	var err error
	for _, opt := range allOpts {
		if opt == nil {
			return nil, fmt.Errorf("cel: program options must be non-nil")
		}
		cfg, err = opt(cfg)
		if err != nil {
			return nil, err
		}
	}

	fns := make([]*decls.FunctionDecl, 0, len(e.functions)+len(cfg.extraFunctions))
	for _, fn := range e.functions {
		fns = append(fns, fn)
	}
	fns = append(fns, cfg.extraFunctions...)
	disp, err := interpreter.StandardDispatcher(fns)
	if err != nil {
		return nil, err
	}

	interp := interpreter.NewInterpreter(disp, e.container, e.provider)
	var interpretable interpreter.Program
	if cfg.iterationLimit > 0 {
		interpretable, err = newBoundedProgram(interp, checked, cfg.iterationLimit)
	} else {
		interpretable, err = interp.NewProgram(checked)
	}
	if err != nil {
		return nil, err
	}
	return &prog{interpretable: interpretable, defaultVars: cfg.defaultVars}, nil
}

// newBoundedProgram builds a Program through interp.NewProgram and
// applies limit in place of the default iteration budget by wrapping
// each Eval's activation in an ExecutionFrame carrying that limit.
func newBoundedProgram(interp interpreter.Interpreter, checked *ast.AST, limit uint64) (interpreter.Program, error) {
	// The Interpreter interface intentionally exposes only NewProgram,
	// keeping Plan/dispatcher/container wiring private to the
	// interpreter package; a custom iteration limit therefore goes
	// through the standard program and is enforced by wrapping its
	// ExecutionFrame at Eval time instead of at plan time.
	base, err := interp.NewProgram(checked)
	if err != nil {
		return nil, err
	}
	return &limitedProgram{base: base, limit: limit}, nil
}

type limitedProgram struct {
	base  interpreter.Program
	limit uint64
}

func (p *limitedProgram) Eval(vars interpreter.Activation) ref.Val {
	return p.base.Eval(interpreter.NewExecutionFrame(vars, p.limit))
}

func (p *prog) Eval(input interface{}) (ref.Val, error) {
	vars, err := toActivation(input)
	if err != nil {
		return nil, err
	}
	if p.defaultVars != nil {
		vars = interpreter.ExtendActivation(p.defaultVars, vars)
	}
	v := p.interpretable.Eval(vars)
	if types.IsError(v) {
		return v, v.(error)
	}
	return v, nil
}

func toActivation(input interface{}) (interpreter.Activation, error) {
	switch v := input.(type) {
	case nil:
		return NoVars(), nil
	case interpreter.Activation:
		return v, nil
	case map[string]interface{}:
		return interpreter.NewActivation(v), nil
	default:
		return nil, fmt.Errorf("cel: unsupported input type for Eval: %T", input)
	}
}
