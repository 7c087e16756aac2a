// Package tree rebuilds the object forest from flat parent references.
package tree

import (
	"sort"

	"github.com/rpggio/plantree/internal/domain/object"
)

// Node is an object with its ordered children.
type Node struct {
	Object   object.Object
	Children []*Node
}

// Build turns a flat list of objects into a forest sorted by number at every
// level. Objects whose parent is not in the list are dropped together with
// their descendants. The input slice is not modified.
func Build(objects []object.Object) []*Node {
	nodes := make(map[string]*Node, len(objects))
	order := make([]*Node, 0, len(objects))
	for _, obj := range objects {
		if _, dup := nodes[obj.ID]; dup {
			continue
		}
		n := &Node{Object: obj}
		nodes[obj.ID] = n
		order = append(order, n)
	}

	var roots []*Node
	for _, n := range order {
		if n.Object.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*n.Object.ParentID]
		if !ok || parent == n {
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortLevel(roots, map[*Node]bool{})
	return roots
}

func sortLevel(level []*Node, visited map[*Node]bool) {
	sort.SliceStable(level, func(i, j int) bool {
		return level[i].Object.Number < level[j].Object.Number
	})
	for _, n := range level {
		if visited[n] {
			continue
		}
		visited[n] = true
		sortLevel(n.Children, visited)
	}
}

// Walk visits nodes depth-first, parents before children. depth starts at 0.
// Nodes reachable only through a parent cycle are never visited.
func Walk(roots []*Node, fn func(n *Node, depth int)) {
	visited := map[*Node]bool{}
	var visit func(level []*Node, depth int)
	visit = func(level []*Node, depth int) {
		for _, n := range level {
			if visited[n] {
				continue
			}
			visited[n] = true
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(roots, 0)
}

// Flatten returns the forest in pre-order.
func Flatten(roots []*Node) []object.Object {
	var out []object.Object
	Walk(roots, func(n *Node, _ int) {
		out = append(out, n.Object)
	})
	return out
}

// HasChildren reports, per object id, whether the node has children in the forest.
func HasChildren(roots []*Node) map[string]bool {
	out := map[string]bool{}
	Walk(roots, func(n *Node, _ int) {
		out[n.Object.ID] = len(n.Children) > 0
	})
	return out
}
