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

package analysisutil

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/google/go-cmp/cmp"
)

func TestIsExcluded(t *testing.T) {
	for _, tc := range []struct {
		rel      string
		patterns []string
		expected bool
	}{
		{"a/b_test.go", []string{"*_test.go"}, true},
		{"a/b.go", []string{"*_test.go"}, false},
		{"generated/x/y.py", []string{"generated/**"}, true},
		{"generated", []string{"generated/"}, true},
		{"src/generated.py", []string{"generated/**"}, false},
		{"web/app.ts", []string{"web/*.ts"}, true},
		{"web/sub/app.ts", []string{"web/*.ts"}, false},
		{"web/app.ts", []string{"/web/app.ts"}, true},
	} {
		if got := IsExcluded(tc.rel, tc.patterns); got != tc.expected {
			t.Errorf("IsExcluded(%q, %v) = %v, expected %v", tc.rel, tc.patterns, got, tc.expected)
		}
	}
}

func TestWalkFiles(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"main.go", "main_test.go", "lib/util.py", "node_modules/x/index.js", ".git/config", "gen/out.ts",
	} {
		p := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, config.IgnoreFile), []byte("# generated code\ngen/\n\n"), 0600); err != nil {
		t.Fatal(err)
	}
	ignored, err := ReadIgnoreFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"gen/"}, ignored); diff != "" {
		t.Errorf("unexpected ignore patterns (-want +got):\n%s", diff)
	}
	var files []string
	err = WalkFiles(dir, append(ignored, "*_test.go"), func(_ string, rel string) error {
		files = append(files, rel)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{".piiscanignore", "lib/util.py", "main.go"}, files); diff != "" {
		t.Errorf("unexpected files (-want +got):\n%s", diff)
	}
}

const src = `package p

type T struct{}

func (t *T) M() {}

type I interface{ N() }

func F() {}
`

func TestFuncCodeIdentifier(t *testing.T) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, 0)
	if err != nil {
		t.Fatal(err)
	}
	conf := types.Config{}
	pkg, err := conf.Check("example.com/p", fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatal(err)
	}
	lookupMethod := func(typ string, name string) *types.Func {
		obj, _, _ := types.LookupFieldOrMethod(pkg.Scope().Lookup(typ).Type(), true, pkg, name)
		return obj.(*types.Func)
	}
	for _, tc := range []struct {
		fn       *types.Func
		expected config.CodeIdentifier
	}{
		{pkg.Scope().Lookup("F").(*types.Func), config.CodeIdentifier{Package: "example.com/p", Method: "F"}},
		{lookupMethod("T", "M"), config.CodeIdentifier{Package: "example.com/p", Receiver: "*T", Method: "M"}},
		{lookupMethod("I", "N"), config.CodeIdentifier{Package: "example.com/p", Receiver: "I", Method: "N"}},
	} {
		got := FuncCodeIdentifier(tc.fn)
		if got.Package != tc.expected.Package || got.Receiver != tc.expected.Receiver || got.Method != tc.expected.Method {
			t.Errorf("expected %v, got %v", tc.expected, got)
		}
	}
}
