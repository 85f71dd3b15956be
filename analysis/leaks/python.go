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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

type pythonScanner struct {
	*fileScanner
}

func (p *pythonScanner) visit(n *sitter.Node) bool {
	switch n.Type() {
	case "class_definition", "function_definition":
		p.enterScope(p.fieldText(n, "name"))
	case "lambda", "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		p.enterScope(anonymousScope(n.Type(), nodeSpan(n)))
	case "comment":
		return false
	case "import_statement":
		// import a.b as c, d.e
		for i := 0; i < int(n.NamedChildCount()); i++ {
			switch c := n.NamedChild(i); c.Type() {
			case "aliased_import":
				p.putAlias(p.fieldText(c, "alias"), p.fieldText(c, "name"))
			case "dotted_name":
				head, _, _ := strings.Cut(p.nodeText(c), ".")
				p.putAlias(head, head)
			}
		}
		return false
	case "import_from_statement":
		// from m import f, g as h
		module := n.ChildByFieldName("module_name")
		prefix := p.nodeText(module)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if module != nil && c.StartByte() == module.StartByte() {
				continue
			}
			switch c.Type() {
			case "dotted_name":
				p.putAlias(p.nodeText(c), prefix+"."+p.nodeText(c))
			case "aliased_import":
				p.putAlias(p.fieldText(c, "alias"), prefix+"."+p.fieldText(c, "name"))
			}
		}
		return false
	case "identifier", "attribute":
		if p.isDotted(n) && p.visitName(p.nodeName(n)) {
			return false
		}
	case "call":
		if sink := p.sinkByName(p.fieldText(n, "function")); sink != nil {
			p.checkCall(sink, nodeSpan(n), p.names(n.ChildByFieldName("arguments")))
		}
	case "assignment", "augmented_assignment":
		p.assignPattern(n.ChildByFieldName("left"), n.ChildByFieldName("right"))
	case "for_statement", "for_in_clause":
		p.assignPattern(n.ChildByFieldName("left"), n.ChildByFieldName("right"))
	}
	return true
}

func (p *pythonScanner) leave(n *sitter.Node) {
	switch n.Type() {
	case "class_definition", "function_definition", "lambda", "list_comprehension", "set_comprehension",
		"dictionary_comprehension", "generator_expression":
		p.exitScope()
	}
}

// assignPattern records the flows of an assignment. Tuples on both sides of the same length are assigned element
// by element.
func (p *pythonScanner) assignPattern(left *sitter.Node, right *sitter.Node) {
	if left == nil || right == nil {
		return
	}
	if p.isDotted(left) {
		p.assign(p.nodeText(left), p.names(right))
		return
	}
	targets := namedChildren(left)
	values := namedChildren(right)
	for i, t := range targets {
		if !p.isDotted(t) {
			continue
		}
		if len(targets) == len(values) && isSequence(right) {
			p.assign(p.nodeText(t), p.names(values[i]))
		} else {
			p.assign(p.nodeText(t), p.names(right))
		}
	}
}

func isSequence(n *sitter.Node) bool {
	switch n.Type() {
	case "expression_list", "tuple", "list", "pattern_list", "tuple_pattern":
		return true
	}
	return false
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	res := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		res = append(res, n.NamedChild(i))
	}
	return res
}

// isDotted returns true for identifiers and attributes of dotted names, like self.user.email
func (p *pythonScanner) isDotted(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier":
		return true
	case "attribute":
		obj := n.ChildByFieldName("object")
		return obj != nil && p.isDotted(obj)
	}
	return false
}

func (p *pythonScanner) names(n *sitter.Node) []name {
	return p.treeNames(n, p.isDotted,
		func(n *sitter.Node) bool {
			switch n.Type() {
			case "lambda", "comment":
				return true
			case "call":
				return p.isSanitizer(p.fieldText(n, "function"))
			}
			return false
		},
		func(n *sitter.Node) ([]*sitter.Node, bool) {
			switch n.Type() {
			case "call":
				return append(p.receiver(n.ChildByFieldName("function")),
					n.ChildByFieldName("arguments")), true
			case "pair", "keyword_argument":
				return []*sitter.Node{n.ChildByFieldName("value")}, true
			}
			return nil, false
		})
}
