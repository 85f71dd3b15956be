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

package fixture

import (
	"bytes"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/telemetry"
	"github.com/google/go-cmp/cmp"
)

type failingLogger struct {
	err error
}

func (l failingLogger) Infof(string, ...any) {
	panic(l.err)
}

type countingLogger struct {
	messages []string
}

func (l *countingLogger) Infof(format string, _ ...any) {
	l.messages = append(l.messages, format)
}

func TestDoSomethingElseCapturesAndPropagatesFailure(t *testing.T) {
	rec := &telemetry.Recorder{}
	failure := errors.New("logging failed")

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		DoSomethingElse(rec, failingLogger{err: failure})
	}()

	if recovered != failure {
		t.Errorf("expected the logging failure to propagate, got %v", recovered)
	}
	captures := rec.Captures()
	if len(captures) != 1 {
		t.Fatalf("expected exactly one capture, got %d", len(captures))
	}
	c := captures[0]
	if c.Err != failure {
		t.Errorf("expected the failure to be captured, got %v", c.Err)
	}
	if c.ID != "" || c.Fields != nil || len(c.Args) != 0 {
		t.Errorf("the failure should be captured alone, got %+v", c)
	}
}

func TestDoSomethingElseNonErrorPanic(t *testing.T) {
	rec := &telemetry.Recorder{}
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		DoSomethingElse(rec, LoggerFunc(func(string, ...any) { panic("disk full") }))
	}()
	if recovered != "disk full" {
		t.Errorf("expected the panic value to be re-raised unchanged, got %v", recovered)
	}
	if rec.Len() != 1 || rec.Captures()[0].Err.Error() != "disk full" {
		t.Errorf("expected the panic to be captured as an error, got %+v", rec.Captures())
	}
}

func TestDoSomethingElseLogsUsername(t *testing.T) {
	rec := &telemetry.Recorder{}
	l := &countingLogger{}
	DoSomethingElse(rec, l)
	if rec.Len() != 0 {
		t.Errorf("nothing should be captured when logging succeeds")
	}
	if !cmp.Equal(l.messages, []string{Username}) {
		t.Errorf("expected the username to be logged once, got %v", l.messages)
	}
}

func TestDoSomething(t *testing.T) {
	rec := &telemetry.Recorder{}
	DoSomething(rec)

	captures := rec.Captures()
	if len(captures) != 1 {
		t.Fatalf("expected exactly one capture, got %d", len(captures))
	}
	c := captures[0]
	if c.Err == nil || c.Err.Error() != Username {
		t.Errorf("expected an error with message %q, got %v", Username, c.Err)
	}
	if c.ID != Username {
		t.Errorf("expected id %q, got %q", Username, c.ID)
	}
	expectedFields := map[string]any{
		"name":         "username",
		"email":        "email",
		"ssn":          "ssn",
		"age":          20,
		"first_name":   "first_name",
		"last_name":    "last_name",
		"credit_score": 800,
		"foo":          20,
	}
	if diff := cmp.Diff(expectedFields, c.Fields); diff != "" {
		t.Errorf("unexpected fields (-want +got):\n%s", diff)
	}
	expectedArgs := []string{"ssn", "username", "this is usernameusername"}
	if diff := cmp.Diff(expectedArgs, c.Args); diff != "" {
		t.Errorf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestPackageLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	Log.SetAllOutput(&buf)
	Log.SetAllFlags(0)
	defer func() {
		Log.SetAllOutput(os.Stderr)
		Log.SetAllFlags(log.LstdFlags)
	}()
	Log.Infof(FirstName)
	if strings.TrimSpace(buf.String()) != "[INFO] first_name" {
		t.Errorf("unexpected log output %q", buf.String())
	}
	if Log.Level() != config.InfoLevel {
		t.Errorf("package logger should log at info level")
	}
}

// TestInitLogsFirstName runs itself in a new process, where the package initialization writes to stderr before any
// test can redirect the logger.
func TestInitLogsFirstName(t *testing.T) {
	if os.Getenv("FIXTURE_INIT_CHILD") == "1" {
		return
	}
	var stderr bytes.Buffer
	cmd := exec.Command(os.Args[0], "-test.run=^TestInitLogsFirstName$")
	cmd.Env = append(os.Environ(), "FIXTURE_INIT_CHILD=1")
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("running %s: %v\n%s", os.Args[0], err, stderr.String())
	}
	n := 0
	for _, line := range strings.Split(stderr.String(), "\n") {
		if strings.HasPrefix(line, "[INFO] ") && strings.HasSuffix(line, " first_name") {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected init to log first_name once at info level, got %q", stderr.String())
	}
}

// LoggerFunc adapts a function to the Logger interface
type LoggerFunc func(format string, v ...any)

// Infof calls f
func (f LoggerFunc) Infof(format string, v ...any) {
	f(format, v...)
}
