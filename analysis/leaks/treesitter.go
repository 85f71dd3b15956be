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
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// treeVisitor is implemented by the scanners of the languages parsed with tree-sitter
type treeVisitor interface {
	// visit is called before the children of n are visited, and returns false if they must be skipped
	visit(n *sitter.Node) bool
	// leave is called once n and its children have been visited, including when its children were skipped
	leave(n *sitter.Node)
}

func walkTree(n *sitter.Node, v treeVisitor) {
	if n == nil {
		return
	}
	if v.visit(n) {
		for i := 0; i < int(n.ChildCount()); i++ {
			walkTree(n.Child(i), v)
		}
	}
	v.leave(n)
}

// grammar returns the tree-sitter grammar of the file
func grammar(lang config.Language, filename string) (*sitter.Language, error) {
	switch lang {
	case config.Python:
		return python.GetLanguage(), nil
	case config.TypeScript:
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".tsx", ".jsx":
			return tsx.GetLanguage(), nil
		case ".js":
			return javascript.GetLanguage(), nil
		default:
			return typescript.GetLanguage(), nil
		}
	}
	return nil, fmt.Errorf("no grammar for %s", lang)
}

// scanTreeSource parses the source of the file scanner with tree-sitter and walks it with the visitor of its
// language
func scanTreeSource(ctx context.Context, s *fileScanner) error {
	lang, err := grammar(s.lang, s.absPath)
	if err != nil {
		return err
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, s.source)
	if err != nil {
		return err
	}
	defer tree.Close()
	var v treeVisitor
	switch s.lang {
	case config.Python:
		v = &pythonScanner{s}
	default:
		v = &typescriptScanner{s}
	}
	walkTree(tree.RootNode(), v)
	return s.err
}

func nodeSpan(n *sitter.Node) span {
	start, end := n.StartPoint(), n.EndPoint()
	return span{
		startLine: int(start.Row) + 1,
		startCol:  int(start.Column) + 1,
		endLine:   int(end.Row) + 1,
		endCol:    int(end.Column) + 1,
		startByte: int(n.StartByte()),
		endByte:   int(n.EndByte()),
	}
}

func (s *fileScanner) nodeText(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return s.text(nodeSpan(n))
}

func (s *fileScanner) fieldText(n *sitter.Node, field string) string {
	return s.nodeText(n.ChildByFieldName(field))
}

func (s *fileScanner) nodeName(n *sitter.Node) name {
	return name{text: s.nodeText(n), span: nodeSpan(n)}
}

// treeNames collects the names used in the expression n, in the order they appear. dotted tells which nodes are
// dotted names to be taken as a whole, skip which nodes are skipped with their children, and children which children
// of a node are walked instead of all of them.
// receiver returns the object of a method callee like user.email.lower, unless it is an imported module
func (s *fileScanner) receiver(callee *sitter.Node) []*sitter.Node {
	if callee == nil || (callee.Type() != "attribute" && callee.Type() != "member_expression") {
		return nil
	}
	obj := callee.ChildByFieldName("object")
	if obj == nil || s.isImported(s.nodeText(obj)) {
		return nil
	}
	return []*sitter.Node{obj}
}

func (s *fileScanner) treeNames(n *sitter.Node, dotted func(*sitter.Node) bool, skip func(*sitter.Node) bool,
	children func(*sitter.Node) ([]*sitter.Node, bool)) []name {
	var res []name
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || skip(n) {
			return
		}
		if dotted(n) {
			res = append(res, s.nodeName(n))
			return
		}
		if only, ok := children(n); ok {
			for _, c := range only {
				walk(c)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	return res
}

func unquote(s string) string {
	return strings.Trim(s, "'\"`")
}
