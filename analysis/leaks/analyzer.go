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

package leaks

import (
	"fmt"
	"go/ast"
	"os"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports calls sending data elements to data sinks. It loads the global config (see
// config.SetGlobalConfig), and uses the builtin rules when none is set.
var Analyzer = &analysis.Analyzer{
	Name:     "piiscan",
	Doc:      "reports sensitive data flowing into logging, error capture and other data sinks",
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	out := &collector{}
	var g *goScanner
	var failed error
	insp.Nodes(nil, func(n ast.Node, push bool) bool {
		if f, ok := n.(*ast.File); ok {
			if !push {
				return true
			}
			g = nil
			filename := pass.Fset.File(f.Pos()).Name()
			source, err := os.ReadFile(filename)
			if err != nil {
				failed = err
				return false
			}
			s := newFileScanner(cfg, nil, nil, config.Go, filename, filepath.Base(filename), source, out)
			g = newGoScanner(s, pass.Fset, f, pass.TypesInfo)
			g.onLeak = func(call *ast.CallExpr, v Vulnerability) {
				pass.Reportf(call.Pos(), "potential data leak: %s (%s) sent to %s",
					strings.Join(v.DataElementNames, ", "), v.Severity, v.DataSinkName)
			}
		}
		if g == nil {
			return false
		}
		return g.visit(n, push)
	})
	return nil, failed
}
