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

import "github.com/exprcel/cel/common/decls"

// scopes is a stack of identifier blocks, innermost last. The checker
// pushes a new block on entering a comprehension's loop body (to scope
// its iteration and accumulator variables) and pops it on exit, so a
// nested comprehension's loop vars shadow an outer one's without
// leaking into sibling branches.
type scopes struct {
	blocks []map[string]*decls.VariableDecl
}

func newScopes() *scopes {
	return &scopes{blocks: []map[string]*decls.VariableDecl{{}}}
}

func (s *scopes) push() {
	s.blocks = append(s.blocks, map[string]*decls.VariableDecl{})
}

func (s *scopes) pop() {
	s.blocks = s.blocks[:len(s.blocks)-1]
}

// addIdent declares name in the innermost block, shadowing any outer
// declaration of the same name.
func (s *scopes) addIdent(v *decls.VariableDecl) {
	s.blocks[len(s.blocks)-1][v.Name()] = v
}

// findIdent searches blocks from innermost to outermost.
func (s *scopes) findIdent(name string) (*decls.VariableDecl, bool) {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if v, found := s.blocks[i][name]; found {
			return v, true
		}
	}
	return nil, false
}
