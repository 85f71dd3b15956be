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

package info

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-pii/cmd/piiscan/tools"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
)

func TestRun(t *testing.T) {
	formatutil.SetColors(false)
	dir := t.TempDir()
	files := map[string]string{
		"main.go":           "package main\n\nfunc main() {}\n",
		"app/service.py":    "import logging\n",
		"web/report.ts":     "console.log('x')\n",
		"db/schema.sql":     "CREATE TABLE t (id INT);\n",
		"vendor/lib/lib.go": "package lib\n",
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	flags, err := tools.NewCommonFlags("info", []string{dir}, Usage)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := Run(context.Background(), &b, flags); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, expected := range []string{"local/" + filepath.Base(dir), "Branch:     main", "Python", "TypeScript",
		"SQL"} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected %q in:\n%s", expected, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " Go ") && !strings.Contains(line, " 1 ") {
			t.Errorf("vendored files should not be counted: %s", line)
		}
		if strings.Contains(line, " SQL ") && !strings.Contains(line, "no") {
			t.Errorf("SQL files are not scanned: %s", line)
		}
	}
}
