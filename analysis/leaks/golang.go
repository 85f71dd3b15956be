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
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/analysisutil"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// goScanner scans a Go file. When type information is available, callees are identified by their package, receiver
// type and name; otherwise they are identified syntactically from the imports of the file.
type goScanner struct {
	*fileScanner
	fset *token.FileSet
	file *ast.File
	info *types.Info

	// onLeak is called on every recorded vulnerability, with the call node
	onLeak func(call *ast.CallExpr, v Vulnerability)
}

// scanGoSource parses and scans Go source, without type information
func scanGoSource(s *fileScanner) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, s.absPath, s.source, parser.SkipObjectResolution)
	if err != nil {
		return err
	}
	g := newGoScanner(s, fset, f, nil)
	inspector.New([]*ast.File{f}).Nodes(nil, g.visit)
	return s.err
}

func newGoScanner(s *fileScanner, fset *token.FileSet, f *ast.File, info *types.Info) *goScanner {
	g := &goScanner{fileScanner: s, fset: fset, file: f, info: info}
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		local := importName(p)
		if spec.Name != nil {
			local = spec.Name.Name
		}
		if local == "_" || local == "." {
			continue
		}
		g.putAlias(local, p)
	}
	return g
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// importName guesses the name of the package imported from p: the last element of the path, without a major
// version suffix and without go- or -go affixes (github.com/getsentry/sentry-go is imported as sentry).
func importName(p string) string {
	base := path.Base(p)
	if majorVersion.MatchString(base) && path.Dir(p) != "." {
		base = path.Base(path.Dir(p))
	}
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, "-go")
	return strings.ReplaceAll(base, "-", "_")
}

// visit is the callback of the inspector. It returns false when the children of n must not be visited.
func (g *goScanner) visit(n ast.Node, push bool) bool {
	switch n := n.(type) {
	case *ast.FuncDecl:
		if push {
			scope := n.Name.Name
			if n.Recv != nil && len(n.Recv.List) > 0 {
				scope = g.exprText(n.Recv.List[0].Type) + "." + scope
			}
			g.enterScope(scope)
		} else {
			g.exitScope()
		}
		return true
	case *ast.FuncLit:
		if push {
			g.enterScope(anonymousScope("func", g.span(n)))
		} else {
			g.exitScope()
		}
		return true
	case *ast.ImportSpec, *ast.BasicLit, *ast.CommentGroup, *ast.Comment:
		return false
	}
	if !push {
		return true
	}
	switch n := n.(type) {
	case *ast.AssignStmt:
		for i, lhs := range n.Lhs {
			target, ok := selectorName(lhs)
			if !ok || target == "_" {
				continue
			}
			rhs := n.Rhs
			if len(n.Rhs) == len(n.Lhs) {
				rhs = n.Rhs[i : i+1]
			}
			g.assign(target, g.names(rhs))
		}
	case *ast.ValueSpec:
		for i, id := range n.Names {
			if id.Name == "_" {
				continue
			}
			values := n.Values
			if len(n.Values) == len(n.Names) {
				values = n.Values[i : i+1]
			}
			g.assign(id.Name, g.names(values))
		}
	case *ast.RangeStmt:
		sources := g.names([]ast.Expr{n.X})
		for _, e := range []ast.Expr{n.Key, n.Value} {
			if target, ok := selectorName(e); ok && target != "_" {
				g.assign(target, sources)
			}
		}
	case *ast.CallExpr:
		g.checkGoCall(n)
	case *ast.SelectorExpr:
		if text, ok := selectorName(n); ok && g.visitName(name{text: text, span: g.span(n)}) {
			return false
		}
	case *ast.Ident:
		g.visitName(name{text: n.Name, span: g.span(n)})
	}
	return true
}

func (g *goScanner) checkGoCall(call *ast.CallExpr) {
	sink := g.sinkByCode(g.callee(call))
	if sink == nil {
		return
	}
	v, ok := g.checkCall(sink, g.span(call), g.names(call.Args))
	if ok && g.onLeak != nil {
		g.onLeak(call, v)
	}
}

// callee returns the code identifier of the function called
func (g *goScanner) callee(call *ast.CallExpr) config.CodeIdentifier {
	if g.info != nil {
		if fn, ok := typeutil.Callee(g.info, call).(*types.Func); ok {
			return analysisutil.FuncCodeIdentifier(fn)
		}
		return config.CodeIdentifier{}
	}
	switch fun := ast.Unparen(call.Fun).(type) {
	case *ast.Ident:
		return config.CodeIdentifier{Method: fun.Name}
	case *ast.SelectorExpr:
		if x, ok := fun.X.(*ast.Ident); ok {
			if p, isImport := g.alias(x.Name); isImport {
				return config.CodeIdentifier{Package: p, Method: fun.Sel.Name}
			}
		}
		return config.CodeIdentifier{Receiver: g.exprText(fun.X), Method: fun.Sel.Name}
	}
	return config.CodeIdentifier{}
}

// names returns the names used in the expressions, in the order they appear. The function part of calls and the keys
// of key-value pairs are skipped, and so are calls to sanitizers and function literals. The receiver of a method call
// is kept unless it is an imported package.
func (g *goScanner) names(exprs []ast.Expr) []name {
	var res []name
	for _, e := range exprs {
		if e == nil {
			continue
		}
		ast.Inspect(e, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.CallExpr:
				if !g.isSanitizer(g.exprText(n.Fun)) {
					if sel, ok := ast.Unparen(n.Fun).(*ast.SelectorExpr); ok && !g.isPackage(sel.X) {
						res = append(res, g.names([]ast.Expr{sel.X})...)
					}
					res = append(res, g.names(n.Args)...)
				}
				return false
			case *ast.KeyValueExpr:
				res = append(res, g.names([]ast.Expr{n.Value})...)
				return false
			case *ast.FuncLit, *ast.BasicLit:
				return false
			case *ast.SelectorExpr:
				if text, ok := selectorName(n); ok {
					res = append(res, name{text: text, span: g.span(n)})
					return false
				}
			case *ast.Ident:
				res = append(res, name{text: n.Name, span: g.span(n)})
			}
			return true
		})
	}
	return res
}

// isPackage returns true if e names an imported package
func (g *goScanner) isPackage(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	if !ok {
		return false
	}
	if g.info != nil {
		if _, isPkg := g.info.Uses[id].(*types.PkgName); isPkg {
			return true
		}
	}
	return g.isImported(id.Name)
}

// selectorName returns the dotted name of an identifier or a chain of selectors on an identifier
func selectorName(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name, true
	case *ast.SelectorExpr:
		x, ok := selectorName(e.X)
		if !ok {
			return "", false
		}
		return x + "." + e.Sel.Name, true
	case *ast.StarExpr:
		return selectorName(e.X)
	case *ast.ParenExpr:
		return selectorName(e.X)
	}
	return "", false
}

func (g *goScanner) exprText(e ast.Expr) string {
	if text, ok := selectorName(e); ok {
		return text
	}
	return g.text(g.span(e))
}

func (g *goScanner) span(n ast.Node) span {
	start, end := g.fset.Position(n.Pos()), g.fset.Position(n.End())
	return span{
		startLine: start.Line,
		startCol:  start.Column,
		endLine:   end.Line,
		endCol:    end.Column,
		startByte: start.Offset,
		endByte:   end.Offset,
	}
}
