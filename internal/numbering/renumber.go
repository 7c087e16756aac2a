// Package numbering assigns dense sibling numbers and derives dotted labels.
package numbering

import (
	"sort"
	"strconv"

	"github.com/rpggio/plantree/internal/domain/object"
	"github.com/rpggio/plantree/internal/tree"
)

// Labeled is an object with its hierarchical label, e.g. "2.3.1".
type Labeled struct {
	object.Object
	Label string `json:"label"`
	Depth int    `json:"depth"`
}

// Renumber returns a copy of objects in input order where every group of
// siblings is numbered 1..N. Siblings keep their relative order by current
// number; ties keep input order.
func Renumber(objects []object.Object) []object.Object {
	out := make([]object.Object, len(objects))
	copy(out, objects)

	groups := map[string][]int{}
	var keys []string
	for i, obj := range out {
		key := groupKey(obj.ParentID)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range keys {
		idx := groups[key]
		sort.SliceStable(idx, func(a, b int) bool {
			return out[idx[a]].Number < out[idx[b]].Number
		})
		for pos, i := range idx {
			out[i].Number = pos + 1
		}
	}
	return out
}

// Changes lists the number writes needed to go from before to after, ordered
// by ascending new number. Applying them in that order never makes two
// siblings share a number, because a dense renumbering only moves numbers down.
func Changes(before, after []object.Object) []object.NumberChange {
	current := make(map[string]int, len(before))
	for _, obj := range before {
		current[obj.ID] = obj.Number
	}
	var changes []object.NumberChange
	for _, obj := range after {
		if n, ok := current[obj.ID]; ok && n == obj.Number {
			continue
		}
		changes = append(changes, object.NumberChange{ID: obj.ID, Number: obj.Number})
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Number < changes[j].Number
	})
	return changes
}

// Labels walks the forest in pre-order and labels each node with its
// parent's label plus its own number.
func Labels(roots []*tree.Node) []Labeled {
	var out []Labeled
	labels := map[string]string{}
	tree.Walk(roots, func(n *tree.Node, depth int) {
		label := strconv.Itoa(n.Object.Number)
		if n.Object.ParentID != nil {
			if parent, ok := labels[*n.Object.ParentID]; ok {
				label = parent + "." + label
			}
		}
		labels[n.Object.ID] = label
		out = append(out, Labeled{Object: n.Object, Label: label, Depth: depth})
	})
	return out
}

// Outline builds the forest of objects and labels it.
func Outline(objects []object.Object) []Labeled {
	return Labels(tree.Build(objects))
}

func groupKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return "p:" + *parentID
}
