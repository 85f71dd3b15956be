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

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/internal/graphutil"
)

type flowKind int

const (
	flowRoot flowKind = iota
	flowElement
	flowFile
	flowSink
)

// A flowNode labels the nodes of a dataflow tree: data elements at the first level, the files where they reach a
// sink at the second level, and the sinks at the leaves.
type flowNode struct {
	kind flowKind
	text string
}

// dataflowTree builds the dataflow tree of the vulnerabilities
func dataflowTree(vulns []leaks.Vulnerability) *graphutil.Tree[flowNode] {
	root := graphutil.NewTree(flowNode{kind: flowRoot})
	for _, v := range vulns {
		for _, name := range v.DataElementNames {
			root.AddPath(
				flowNode{kind: flowElement, text: name},
				flowNode{kind: flowFile, text: v.RelativePath},
				flowNode{kind: flowSink, text: v.DataSinkName})
		}
	}
	return root
}

// WriteMermaid writes a Mermaid flowchart of the dataflow subtree t to w. The root of t is the first node of the
// chart.
func WriteMermaid(w io.Writer, t *graphutil.Tree[flowNode]) error {
	ids := map[*graphutil.Tree[flowNode]]string{}
	var b strings.Builder
	b.WriteString("flowchart LR\n")
	t.Walk(func(n *graphutil.Tree[flowNode]) {
		id := fmt.Sprintf("n%d", len(ids))
		ids[n] = id
		shape := mermaidShape(n.Label, id)
		if parent, ok := ids[n.Parent]; ok {
			fmt.Fprintf(&b, "  %s --> %s\n", parent, shape)
		} else {
			fmt.Fprintf(&b, "  %s\n", shape)
		}
	})
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("error while writing diagram: %w", err)
	}
	return nil
}

func mermaidShape(n flowNode, id string) string {
	text := strings.ReplaceAll(n.text, `"`, "#quot;")
	switch n.kind {
	case flowElement:
		return fmt.Sprintf(`%s(["%s"])`, id, text)
	case flowSink:
		return fmt.Sprintf(`%s[/"%s"/]`, id, text)
	default:
		return fmt.Sprintf(`%s["%s"]`, id, text)
	}
}
