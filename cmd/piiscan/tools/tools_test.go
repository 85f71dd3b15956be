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

package tools

import (
	"flag"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/telemetry"
	"github.com/google/go-cmp/cmp"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint %q; check and update error message if necessary", hint)
	}
}

func TestHintForFlagAfterDir(t *testing.T) {
	validateHint(t, "expected one directory, got [src -verbose]", "all command line flags should be before")
}

func TestHintForSeverity(t *testing.T) {
	validateHint(t, `fail-severity-threshold: unknown severity "hgih" (expected one of critical, medium, low)`,
		"severities are critical, medium and low")
}

func TestHintForConfig(t *testing.T) {
	validateHint(t, "failed to load config file piiscan.yaml: could not read config file", "path of the config file")
}

func TestHintForGit(t *testing.T) {
	validateHint(t, "could not read directory information: failed to get git branch", "PIISCAN_GIT_BRANCH")
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("context canceled"); hint != "" {
		t.Errorf("unexpected hint %q", hint)
	}
}

func TestStringList(t *testing.T) {
	var l StringList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&l, "skip", "")
	if err := fs.Parse([]string{"-skip", "ssn, email", "-skip", "age", "-skip", ","}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(StringList{"ssn", "email", "age"}, l); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}
	if l.String() != "ssn,email,age" {
		t.Errorf("unexpected string %q", l.String())
	}
}

func TestCommonFlags(t *testing.T) {
	flags, err := NewCommonFlags("rules", []string{"-verbose", "src"}, "usage")
	if err != nil {
		t.Fatal(err)
	}
	dir, err := flags.Dir()
	if err != nil || dir != "src" || !flags.Verbose || flags.ConfigPath != "" {
		t.Errorf("unexpected flags %+v (dir %q, err %v)", flags, dir, err)
	}
	flags, err = NewCommonFlags("rules", []string{"a", "b"}, "usage")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := flags.Dir(); err == nil {
		t.Errorf("expected an error for two directories")
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FindDataSink("go_logger") == nil {
		t.Errorf("default config should hold the builtin rules")
	}
	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Errorf("expected an error for a missing config file")
	}
}

func TestNewCapturerWithoutDsn(t *testing.T) {
	c, flush := NewCapturer(config.Environment{})
	defer flush()
	if _, ok := c.(telemetry.Sentry); ok {
		t.Errorf("expected the discarding capturer without dsn")
	}
}
