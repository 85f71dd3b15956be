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

package graphutil

import (
	"testing"

	"github.com/awslabs/ar-go-pii/internal/funcutil"
	"github.com/google/go-cmp/cmp"
)

func TestTree(t *testing.T) {
	root := NewTree("flows")
	root.AddPath("ssn", "app.py", "python_logging")
	root.AddPath("ssn", "app.py", "python_print")
	leaf := root.AddPath("email", "web.ts", "typescript_console")
	if got := root.Child("ssn").Child("app.py"); len(got.Children) != 2 {
		t.Errorf("expected 2 sinks below app.py, got %d", len(got.Children))
	}
	if len(root.Children) != 2 {
		t.Errorf("expected 2 elements, got %d", len(root.Children))
	}

	path := funcutil.Map(leaf.Ancestors(-1), Label[string])
	if diff := cmp.Diff([]string{"flows", "email", "web.ts", "typescript_console"}, path); diff != "" {
		t.Errorf("ancestors mismatch (-want +got):\n%s", diff)
	}
	if got := funcutil.Map(leaf.Ancestors(2), Label[string]); !cmp.Equal(got, []string{"web.ts", "typescript_console"}) {
		t.Errorf("unexpected ancestors %v", got)
	}

	leaves := funcutil.Map(root.Leaves(), Label[string])
	if diff := cmp.Diff([]string{"python_logging", "python_print", "typescript_console"}, leaves); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}

	n := 0
	root.Walk(func(*Tree[string]) { n++ })
	if n != 8 {
		t.Errorf("expected 8 nodes, got %d", n)
	}
}
