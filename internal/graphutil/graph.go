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

// Package graphutil contains the flow graph used to propagate data elements through assignments, and adapters to the
// graph libraries the scanner uses.
package graphutil

import (
	"github.com/yourbasic/graph"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
)

// FlowGraph is a growable directed graph whose nodes are identified by string keys. An edge x -> y means that the
// value of x flows into y. It implements the graph.Iterator interface of yourbasic/graph and the graph.Directed
// interface of gonum.
type FlowGraph struct {
	keys  []string
	ids   map[string]int
	succ  [][]int
	pred  [][]int
	edges map[[2]int]bool

	// transposed is the transposed graph, computed on demand and reset when an edge is added
	transposed *graph.Immutable
}

// NewFlowGraph returns an empty graph
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{
		ids:   map[string]int{},
		edges: map[[2]int]bool{},
	}
}

// NodeID returns the id of the node with that key, adding the node if necessary
func (g *FlowGraph) NodeID(key string) int {
	if id, ok := g.ids[key]; ok {
		return id
	}
	id := len(g.keys)
	g.keys = append(g.keys, key)
	g.ids[key] = id
	g.succ = append(g.succ, nil)
	g.pred = append(g.pred, nil)
	g.transposed = nil
	return id
}

// Lookup returns the id of the node with that key, if it exists
func (g *FlowGraph) Lookup(key string) (int, bool) {
	id, ok := g.ids[key]
	return id, ok
}

// Key returns the key of the node with that id
func (g *FlowGraph) Key(id int) string {
	return g.keys[id]
}

// AddEdge adds an edge from the node with key from to the node with key to. Nodes are added if necessary.
// Returns false if the edge already existed.
func (g *FlowGraph) AddEdge(from string, to string) bool {
	x, y := g.NodeID(from), g.NodeID(to)
	if g.edges[[2]int{x, y}] {
		return false
	}
	g.edges[[2]int{x, y}] = true
	g.succ[x] = append(g.succ[x], y)
	g.pred[y] = append(g.pred[y], x)
	g.transposed = nil
	return true
}

// NumEdges returns the number of edges in the graph
func (g *FlowGraph) NumEdges() int {
	return len(g.edges)
}

// Order implements the order of the graph.Iterator interface for the FlowGraph
func (g *FlowGraph) Order() int {
	return len(g.keys)
}

// Visit implements the graph.Iterator interface for the FlowGraph
func (g *FlowGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(g.succ) {
		return false
	}
	for _, w := range g.succ[v] {
		if do(w, 1) {
			return true
		}
	}
	return false
}

// Reaching returns the keys of all the nodes from which the node with key can be reached, in breadth-first order.
// The node itself is never included.
func (g *FlowGraph) Reaching(key string) []string {
	v, ok := g.ids[key]
	if !ok {
		return nil
	}
	if g.transposed == nil {
		g.transposed = graph.Transpose(g)
	}
	var res []string
	seen := map[int]bool{}
	graph.BFS(g.transposed, v, func(_, w int, _ int64) {
		if !seen[w] {
			seen[w] = true
			res = append(res, g.keys[w])
		}
	})
	return res
}

// Path returns the keys of the nodes on a shortest path from the node with key from to the node with key to,
// both included. Returns nil if there is no such path.
func (g *FlowGraph) Path(from string, to string) []string {
	x, ok1 := g.ids[from]
	y, ok2 := g.ids[to]
	if !ok1 || !ok2 {
		return nil
	}
	shortest := path.DijkstraFrom(flowNode{g: g, id: x}, g)
	nodes, _ := shortest.To(int64(y))
	if len(nodes) == 0 {
		return nil
	}
	res := make([]string, len(nodes))
	for i, n := range nodes {
		res[i] = g.keys[n.ID()]
	}
	return res
}

// *************** gonum Directed interface implementation **********************

// Node implements the gonum Graph interface
func (g *FlowGraph) Node(id int64) gonum.Node {
	if id < 0 || id >= int64(len(g.keys)) {
		return nil
	}
	return flowNode{g: g, id: int(id)}
}

// Nodes returns the set of nodes in the graph
func (g *FlowGraph) Nodes() gonum.Nodes {
	ids := make([]int, len(g.keys))
	for i := range ids {
		ids[i] = i
	}
	return newNodeSet(g, ids)
}

// From returns the set of nodes reachable in one step from the node with that id
func (g *FlowGraph) From(id int64) gonum.Nodes {
	if id < 0 || id >= int64(len(g.keys)) {
		return newNodeSet(g, nil)
	}
	return newNodeSet(g, g.succ[id])
}

// To returns the set of nodes that reach the node with that id in one step
func (g *FlowGraph) To(id int64) gonum.Nodes {
	if id < 0 || id >= int64(len(g.keys)) {
		return newNodeSet(g, nil)
	}
	return newNodeSet(g, g.pred[id])
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (g *FlowGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.HasEdgeFromTo(xid, yid) || g.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo returns a boolean indicating whether a directed edge from uid to vid exists
func (g *FlowGraph) HasEdgeFromTo(uid, vid int64) bool {
	return g.edges[[2]int{int(uid), int(vid)}]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (g *FlowGraph) Edge(uid, vid int64) gonum.Edge {
	if g.HasEdgeFromTo(uid, vid) {
		return flowEdge{from: flowNode{g: g, id: int(uid)}, to: flowNode{g: g, id: int(vid)}}
	}
	return nil
}

// *************** Nodes implementation **********************

// flowNode implements the gonum graph.Node interface
type flowNode struct {
	g  *FlowGraph
	id int
}

// ID returns the id of the node
func (n flowNode) ID() int64 {
	return int64(n.id)
}

func (n flowNode) String() string {
	return n.g.keys[n.id]
}

// nodeSet implements the gonum graph.Nodes interface, an iterator over a set of nodes
type nodeSet struct {
	g   *FlowGraph
	ids []int

	// cur is the current index of the iterator. The current node is ids[cur]
	// invariant: -1 <= cur <= len(ids)
	cur int
}

func newNodeSet(g *FlowGraph, ids []int) *nodeSet {
	return &nodeSet{g: g, ids: ids, cur: -1}
}

// Next moves the current node to the next, and returns true if such a node exists.
func (ns *nodeSet) Next() bool {
	if ns.cur < len(ns.ids) {
		ns.cur++
	}
	return ns.cur < len(ns.ids)
}

// Len returns the number of nodes remaining in the iterator
func (ns *nodeSet) Len() int {
	if ns.cur >= len(ns.ids) {
		return 0
	}
	return len(ns.ids) - ns.cur - 1
}

// Reset resets the iterator to its initial state
func (ns *nodeSet) Reset() {
	ns.cur = -1
}

// Node return the current node in the set
func (ns *nodeSet) Node() gonum.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return flowNode{g: ns.g, id: ns.ids[ns.cur]}
}

// *************** Edge implementation **********************

// flowEdge implements the gonum graph.Edge interface
type flowEdge struct {
	from flowNode
	to   flowNode
}

// From returns the origin of the edge
func (e flowEdge) From() gonum.Node {
	return e.from
}

// To returns the destination of the edge
func (e flowEdge) To() gonum.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e flowEdge) ReversedEdge() gonum.Edge {
	return flowEdge{from: e.to, to: e.from}
}
