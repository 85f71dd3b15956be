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
	sitter "github.com/smacker/go-tree-sitter"
)

type typescriptScanner struct {
	*fileScanner
}

func (t *typescriptScanner) visit(n *sitter.Node) bool {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "method_definition", "class_declaration":
		t.enterScope(t.fieldText(n, "name"))
	case "arrow_function", "function_expression", "function", "generator_function":
		t.enterScope(anonymousScope("function", nodeSpan(n)))
	case "comment":
		return false
	case "import_statement":
		t.putImports(n)
		return false
	case "variable_declarator":
		if id := n.ChildByFieldName("name"); id != nil && id.Type() == "identifier" {
			t.assign(t.nodeText(id), t.names(n.ChildByFieldName("value")))
		}
	case "assignment_expression", "augmented_assignment_expression":
		if left := n.ChildByFieldName("left"); left != nil && t.isDotted(left) {
			t.assign(t.nodeText(left), t.names(n.ChildByFieldName("right")))
		}
	case "identifier", "property_identifier", "shorthand_property_identifier", "member_expression":
		if t.isDotted(n) && t.visitName(t.nodeName(n)) {
			return false
		}
	case "call_expression":
		if sink := t.sinkByName(t.fieldText(n, "function")); sink != nil {
			t.checkCall(sink, nodeSpan(n), t.names(n.ChildByFieldName("arguments")))
		}
	}
	return true
}

func (t *typescriptScanner) leave(n *sitter.Node) {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "method_definition", "class_declaration",
		"arrow_function", "function_expression", "function", "generator_function":
		t.exitScope()
	}
}

// putImports registers the aliases of an import statement:
//
//	import x from 'm'              x -> m
//	import * as x from 'm'         x -> m
//	import { a, b as c } from 'm'  a -> m.a, c -> m.b
func (t *typescriptScanner) putImports(n *sitter.Node) {
	module := unquote(t.fieldText(n, "source"))
	if module == "" {
		return
	}
	var walk func(c *sitter.Node)
	walk = func(c *sitter.Node) {
		switch c.Type() {
		case "import_specifier":
			orig := t.fieldText(c, "name")
			alias := t.fieldText(c, "alias")
			if alias == "" {
				alias = orig
			}
			t.putAlias(alias, module+"."+orig)
			return
		case "identifier":
			t.putAlias(t.nodeText(c), module)
			return
		case "string":
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			walk(c.NamedChild(i))
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i))
	}
}

// isDotted returns true for identifiers and member expressions of dotted names, like this.user.email
func (t *typescriptScanner) isDotted(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "property_identifier", "shorthand_property_identifier", "this":
		return true
	case "member_expression":
		obj, prop := n.ChildByFieldName("object"), n.ChildByFieldName("property")
		return obj != nil && prop != nil && prop.Type() == "property_identifier" && t.isDotted(obj)
	}
	return false
}

func (t *typescriptScanner) names(n *sitter.Node) []name {
	return t.treeNames(n,
		func(n *sitter.Node) bool {
			// property names are only taken as part of a member expression or a shorthand property
			return n.Type() != "property_identifier" && t.isDotted(n)
		},
		func(n *sitter.Node) bool {
			switch n.Type() {
			case "arrow_function", "function_expression", "function", "comment", "property_identifier":
				return true
			case "call_expression":
				return t.isSanitizer(t.fieldText(n, "function"))
			}
			return false
		},
		func(n *sitter.Node) ([]*sitter.Node, bool) {
			switch n.Type() {
			case "call_expression":
				return append(t.receiver(n.ChildByFieldName("function")),
					n.ChildByFieldName("arguments")), true
			case "new_expression":
				return []*sitter.Node{n.ChildByFieldName("arguments")}, true
			case "pair":
				return []*sitter.Node{n.ChildByFieldName("value")}, true
			}
			return nil, false
		})
}
