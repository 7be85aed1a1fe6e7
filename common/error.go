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

package common

import (
	"fmt"
	"strings"
)

// Error represents a single diagnostic raised while parsing, checking or
// optimizing an expression. Runtime faults are reported through the
// interpreter's own error kinds, not through this type, since they occur
// after compilation has produced a value the host consumes directly.
type Error struct {
	// Location within Source the diagnostic is anchored to.
	Location Location

	// Message is the human-readable description.
	Message string

	// Source is the text the Location is relative to; used only to render
	// a caret-annotated display string and may be nil.
	Source Source
}

// ToDisplayString renders the error with a source snippet and a caret
// pointing at the offending column.
func (e *Error) ToDisplayString() string {
	name := "<input>"
	if e.Source != nil {
		name = e.Source.Name()
	}
	result := fmt.Sprintf("ERROR: %s:%d:%d: %s", name, e.Location.Line(), e.Location.Column(), e.Message)
	if e.Source == nil {
		return result
	}
	if snippet, found := e.Source.Snippet(e.Location.Line()); found {
		result += "\n | " + snippet
		result += "\n | " + strings.Repeat(".", e.Location.Column()) + "^"
	}
	return result
}
