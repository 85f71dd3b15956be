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

package rules

import (
	"bytes"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
)

func TestPrint(t *testing.T) {
	formatutil.SetColors(false)
	cfg := config.NewDefault()
	if err := cfg.Update(func(o *config.Options) {
		o.SkipDataElements = []string{"ssn"}
		o.SkipDataSinks = []string{"python_print"}
	}); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := Print(&b, cfg); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, expected := range []string{"Data Elements", "Data Sinks", "Sanitizers", "credit_score", "go_logger",
		"CWE-532, A09:2021", "TypeScript"} {
		if !strings.Contains(out, expected) {
			t.Errorf("rules should contain %q:\n%s", expected, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, " ssn ") || strings.Contains(line, " python_print "):
			if !strings.Contains(line, "skipped") {
				t.Errorf("expected a skipped rule: %s", line)
			}
		case strings.Contains(line, " email ") || strings.Contains(line, " go_logger "):
			if !strings.Contains(line, "active") {
				t.Errorf("expected an active rule: %s", line)
			}
		}
	}
}
