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

import "github.com/awslabs/ar-go-pii/internal/funcutil"

// Tree is a simple generic implementation of a tree. Children are kept in insertion order and have distinct labels.
type Tree[T comparable] struct {
	Parent   *Tree[T]
	Children []*Tree[T]
	Label    T
}

// NewTree returns a new tree with the labels of the type provided
func NewTree[T comparable](rootLabel T) *Tree[T] {
	return &Tree[T]{Label: rootLabel}
}

// Label returns the label of its argument
func Label[T comparable](t *Tree[T]) T {
	return t.Label
}

// Child returns the child of t labelled label, adding it if t has none.
func (t *Tree[T]) Child(label T) *Tree[T] {
	for _, c := range t.Children {
		if c.Label == label {
			return c
		}
	}
	c := &Tree[T]{Parent: t, Label: label}
	t.Children = append(t.Children, c)
	return c
}

// AddPath adds the chain of labels below t and returns the last node of the chain
func (t *Tree[T]) AddPath(labels ...T) *Tree[T] {
	cur := t
	for _, l := range labels {
		cur = cur.Child(l)
	}
	return cur
}

// Walk calls f on every node of the tree, parents before children
func (t *Tree[T]) Walk(f func(*Tree[T])) {
	f(t)
	for _, c := range t.Children {
		c.Walk(f)
	}
}

// Leaves returns the nodes without children, in depth-first order
func (t *Tree[T]) Leaves() []*Tree[T] {
	var res []*Tree[T]
	t.Walk(func(n *Tree[T]) {
		if len(n.Children) == 0 {
			res = append(res, n)
		}
	})
	return res
}

// Ancestors returns the chain of the n closest ancestors of t, root first. If n < 0, then it returns the chain up to
// the root of the tree
func (t *Tree[T]) Ancestors(n int) []*Tree[T] {
	var ans []*Tree[T]
	cur := t
	i := 0
	for cur != nil && (i < n || n < 0) {
		ans = append(ans, cur)
		cur = cur.Parent
		i++
	}
	funcutil.Reverse(ans)
	return ans
}
