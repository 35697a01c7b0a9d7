// Package render projects engine results onto the output tree consumed by
// themes and the JSON API.
package render

import (
	"sort"
	"strconv"
	"strings"
)

// Tree is a hierarchical document addressed by dotted paths such as
// "Posts.0.title". Numeric path segments index list entries.
type Tree struct {
	root *node
}

type node struct {
	value    *string
	list     bool
	children map[string]*node
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

func NewTree() *Tree {
	return &Tree{root: newNode()}
}

func (t *Tree) walk(path string, create bool) *node {
	n := t.root
	if path == "" {
		return n
	}
	for _, part := range strings.Split(path, ".") {
		child, ok := n.children[part]
		if !ok {
			if !create {
				return nil
			}
			child = newNode()
			n.children[part] = child
		}
		n = child
	}
	return n
}

// Set stores value at path, creating intermediate nodes.
func (t *Tree) Set(path, value string) {
	t.walk(path, true).value = &value
}

func (t *Tree) SetInt(path string, value int64) {
	t.Set(path, strconv.FormatInt(value, 10))
}

// SetList makes sure path exists and is rendered as a list, even when empty.
func (t *Tree) SetList(path string) {
	t.walk(path, true).list = true
}

// Get returns the value stored at path.
func (t *Tree) Get(path string) (string, bool) {
	n := t.walk(path, false)
	if n == nil || n.value == nil {
		return "", false
	}
	return *n.value, true
}

// Has reports whether path exists, with or without a value.
func (t *Tree) Has(path string) bool {
	return t.walk(path, false) != nil
}

// Len returns the number of children of path.
func (t *Tree) Len(path string) int {
	n := t.walk(path, false)
	if n == nil {
		return 0
	}
	return len(n.children)
}

// Map converts the tree into nested map[string]any, []any and string values.
// List nodes become slices ordered by index.
func (t *Tree) Map() map[string]any {
	m, _ := t.root.export().(map[string]any)
	return m
}

func (n *node) export() any {
	if n.list || (len(n.children) > 0 && allNumeric(n.children)) {
		keys := make([]int, 0, len(n.children))
		for k := range n.children {
			if i, err := strconv.Atoi(k); err == nil {
				keys = append(keys, i)
			}
		}
		sort.Ints(keys)

		items := make([]any, 0, len(keys))
		for _, k := range keys {
			items = append(items, n.children[strconv.Itoa(k)].export())
		}
		return items
	}

	if len(n.children) == 0 {
		if n.value == nil {
			return map[string]any{}
		}
		return *n.value
	}

	m := make(map[string]any, len(n.children))
	for k, child := range n.children {
		m[k] = child.export()
	}
	return m
}

func allNumeric(children map[string]*node) bool {
	for k := range children {
		if _, err := strconv.Atoi(k); err != nil {
			return false
		}
	}
	return true
}
