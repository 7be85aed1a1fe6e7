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

import "fmt"

// maxErrorsToReport bounds how many diagnostics a single Errors will
// render, so a pathological expression cannot flood the caller's console.
const maxErrorsToReport = 100

// Errors accumulates diagnostics raised by the parser, checker or an
// optimizer against a single Source.
type Errors struct {
	source    Source
	errors    []Error
	truncated int
}

// NewErrors returns a new Errors instance bound to source. Source may be
// nil, in which case display strings omit the snippet.
func NewErrors(source Source) *Errors {
	return &Errors{source: source}
}

// ReportError captures an error at the given location.
func (e *Errors) ReportError(l Location, format string, args ...interface{}) {
	if len(e.errors) >= maxErrorsToReport {
		e.truncated++
		return
	}
	e.errors = append(e.errors, Error{
		Location: l,
		Message:  fmt.Sprintf(format, args...),
		Source:   e.source,
	})
}

// GetErrors returns all errors accumulated so far, excluding any
// truncated past the reporting limit.
func (e *Errors) GetErrors() []Error {
	out := make([]Error, len(e.errors))
	copy(out, e.errors)
	return out
}

// Empty reports whether no errors were collected.
func (e *Errors) Empty() bool {
	return len(e.errors) == 0
}

// Append merges additional errors into the receiver, respecting the
// combined reporting limit, and returns the receiver for chaining.
func (e *Errors) Append(errs []Error) *Errors {
	for _, err := range errs {
		if len(e.errors) >= maxErrorsToReport {
			e.truncated++
			continue
		}
		e.errors = append(e.errors, err)
	}
	return e
}

// ToDisplayString renders every collected error, one per line block,
// followed by a truncation notice when the reporting limit was hit.
func (e *Errors) ToDisplayString() string {
	result := ""
	for i, err := range e.errors {
		if i > 0 {
			result += "\n"
		}
		result += err.ToDisplayString()
	}
	if e.truncated > 0 {
		if len(e.errors) > 0 {
			result += "\n"
		}
		result += fmt.Sprintf("%d more errors were truncated", e.truncated)
	}
	return result
}

func (e *Errors) String() string {
	return e.ToDisplayString()
}
