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
	"fmt"

	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/functions"
)

// Dispatcher is the registry of runtime function bindings a planned
// program calls through: directly, when a call site resolved to exactly
// one overload at check time, or by name, when EvalLateBoundCall must
// pick among several candidate overload ids at evaluation time.
type Dispatcher interface {
	// Add registers fn's runtime bindings, keyed by every overload id it
	// has a binding for and, when present, the function-name-level
	// dynamic dispatch entry FunctionDecl.Bindings builds for functions
	// with more than one bound overload.
	Add(fn *decls.FunctionDecl) error

	// FindOverload returns the binding registered under id (an overload
	// id or a bare function name), if any.
	FindOverload(id string) (*functions.Overload, bool)
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() Dispatcher {
	return &defaultDispatcher{overloads: map[string]*functions.Overload{}}
}

type defaultDispatcher struct {
	overloads map[string]*functions.Overload
}

func (d *defaultDispatcher) Add(fn *decls.FunctionDecl) error {
	bindings, err := fn.Bindings()
	if err != nil {
		return fmt.Errorf("function %s: %w", fn.Name(), err)
	}
	for _, o := range bindings {
		if _, found := d.overloads[o.Operator]; found {
			return fmt.Errorf("overload already registered: %s", o.Operator)
		}
		d.overloads[o.Operator] = o
	}
	return nil
}

func (d *defaultDispatcher) FindOverload(id string) (*functions.Overload, bool) {
	o, found := d.overloads[id]
	return o, found
}
