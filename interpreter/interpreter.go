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

package interpreter

import (
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// DefaultIterationLimit bounds the number of comprehension loop
// iterations a single evaluation may perform, across every nested fold
// sharing the same root ExecutionFrame (spec §5).
const DefaultIterationLimit = 10_000_000

// ExecutionFrame sits at the root of the Activation chain for one
// evaluation and tracks state shared across every nested comprehension
// in that evaluation: the cooperative iteration budget. It implements
// Activation itself so evalFold's accumulator/loop-variable scopes can
// be pushed over it exactly as they would over any other Activation.
type ExecutionFrame struct {
	root           Activation
	iterations     uint64
	iterationLimit uint64
}

// NewExecutionFrame wraps root with an iteration budget of limit; a
// limit of 0 means DefaultIterationLimit.
func NewExecutionFrame(root Activation, limit uint64) *ExecutionFrame {
	if limit == 0 {
		limit = DefaultIterationLimit
	}
	return &ExecutionFrame{root: root, iterationLimit: limit}
}

func (f *ExecutionFrame) ResolveName(name string) (interface{}, bool) {
	return f.root.ResolveName(name)
}

func (f *ExecutionFrame) Parent() Activation { return nil }

// tickIteration counts one more comprehension step, returning a
// *types.Err once the frame's budget is exhausted and nil otherwise.
func (f *ExecutionFrame) tickIteration() ref.Val {
	f.iterations++
	if f.iterations > f.iterationLimit {
		return types.NewErrKind(types.ErrIterationLimitExceeded, "comprehension iteration limit exceeded: %d", f.iterationLimit)
	}
	return nil
}

// frameOf walks vars' Parent() chain to find the ExecutionFrame every
// Program.Eval call pushes at the root, falling back to an ad hoc frame
// with DefaultIterationLimit if vars was constructed without going through Eval (as
// in a unit test that drives an Interpretable directly).
func frameOf(vars Activation) *ExecutionFrame {
	for a := vars; a != nil; a = a.Parent() {
		if f, ok := a.(*ExecutionFrame); ok {
			return f
		}
	}
	return NewExecutionFrame(vars, DefaultIterationLimit)
}

// Interpreter plans checked or parse-only ASTs against a fixed
// Dispatcher, container, and type provider, producing reusable Programs
// (spec §4.4).
type Interpreter interface {
	NewProgram(checked *ast.AST) (Program, error)
}

// Program is a planned, immutable expression tree ready to evaluate
// against any number of Activations, including concurrently.
type Program interface {
	// Eval evaluates the program against vars, returning the resulting
	// ref.Val: a concrete value, a *types.Err, or a *types.Unknown.
	Eval(vars Activation) ref.Val
}

// NewInterpreter returns an Interpreter that plans through disp,
// resolving unqualified names via container and message field/enum
// lookups via provider.
func NewInterpreter(disp Dispatcher, container *containers.Container, provider ref.TypeProvider) Interpreter {
	return &exprInterpreter{disp: disp, container: container, provider: provider}
}

type exprInterpreter struct {
	disp      Dispatcher
	container *containers.Container
	provider  ref.TypeProvider
}

func (i *exprInterpreter) NewProgram(checked *ast.AST) (Program, error) {
	root, err := Plan(i.disp, i.container, i.provider, checked)
	if err != nil {
		return nil, err
	}
	return &execProgram{root: root, limit: DefaultIterationLimit}, nil
}

type execProgram struct {
	root  Interpretable
	limit uint64
}

func (p *execProgram) Eval(vars Activation) ref.Val {
	frame := NewExecutionFrame(vars, p.limit)
	return p.root.Eval(frame)
}

// StandardDispatcher builds a Dispatcher pre-populated with fns, the set
// of function declarations (typically the standard library plus any
// custom extensions) a program may call.
func StandardDispatcher(fns []*decls.FunctionDecl) (Dispatcher, error) {
	disp := NewDispatcher()
	for _, fn := range fns {
		if err := disp.Add(fn); err != nil {
			return nil, err
		}
	}
	return disp, nil
}
