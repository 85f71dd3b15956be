// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

// Package telemetry forwards errors and their context to an error tracking service.
package telemetry

import (
	"errors"
	"fmt"
	"sync"
)

// A Capturer reports an error together with an identifier, contextual fields and additional arguments. fields may be
// nil. Capture has no result: failing to report an error must not alter the caller's control flow.
type Capturer interface {
	Capture(err error, id string, fields map[string]any, args ...string)
}

// CaptureFunc adapts a function to the Capturer interface
type CaptureFunc func(err error, id string, fields map[string]any, args ...string)

// Capture calls f
func (f CaptureFunc) Capture(err error, id string, fields map[string]any, args ...string) {
	f(err, id, fields, args...)
}

// Discard drops everything it captures
var Discard Capturer = CaptureFunc(func(error, string, map[string]any, ...string) {})

// Capture is one call to a Capturer
type Capture struct {
	Err    error
	ID     string
	Fields map[string]any
	Args   []string
}

// Recorder is a Capturer that keeps what it captures in memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	captures []Capture
}

// Capture records the call
func (r *Recorder) Capture(err error, id string, fields map[string]any, args ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures = append(r.captures, Capture{Err: err, ID: id, Fields: fields, Args: args})
}

// Captures returns a copy of the calls recorded so far
func (r *Recorder) Captures() []Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Capture(nil), r.captures...)
}

// Len returns the number of calls recorded
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.captures)
}

// Reset forgets all recorded calls
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures = nil
}

// ErrorFromPanic converts a recovered panic value into an error. Errors are returned as is.
func ErrorFromPanic(r any) error {
	switch x := r.(type) {
	case nil:
		return nil
	case error:
		return x
	case string:
		return errors.New(x)
	default:
		return fmt.Errorf("%v", x)
	}
}
