package taxonomy

import (
	"fmt"

	"github.com/alexanderramin/taxonomy/internal/domain"
)

// SiblingIndex is a flat view of one taxonomy built once per operation:
// every node by id, and every sibling group by parent key in display order.
// Roots share the parent key "".
type SiblingIndex struct {
	nodes  map[string]*domain.Node
	parent map[string]string
	groups map[string][]*domain.Node
}

// IndexForest indexes a built forest. Sibling groups are taken from the
// forest itself (the root slice and each Children slice) rather than from
// parent ids, so the index always agrees with what the caller displayed.
func IndexForest(forest []*domain.Node) *SiblingIndex {
	idx := &SiblingIndex{
		nodes:  make(map[string]*domain.Node),
		parent: make(map[string]string),
		groups: make(map[string][]*domain.Node),
	}
	var walk func(level []*domain.Node, key string)
	walk = func(level []*domain.Node, key string) {
		for _, n := range level {
			if _, seen := idx.nodes[n.ID]; seen {
				continue
			}
			idx.nodes[n.ID] = n
			idx.parent[n.ID] = key
			idx.groups[key] = append(idx.groups[key], n)
			walk(n.Children, n.ID)
		}
	}
	walk(forest, "")
	return idx
}

// Node returns the node with id, if present.
func (idx *SiblingIndex) Node(id string) (*domain.Node, bool) {
	n, ok := idx.nodes[id]
	return n, ok
}

// Siblings returns the sibling group containing id and the group's parent key.
func (idx *SiblingIndex) Siblings(id string) ([]*domain.Node, string, error) {
	key, ok := idx.parent[id]
	if !ok {
		return nil, "", fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return idx.groups[key], key, nil
}

// SameParent reports whether a and b belong to the same sibling group.
func (idx *SiblingIndex) SameParent(a, b string) (bool, error) {
	pa, ok := idx.parent[a]
	if !ok {
		return false, fmt.Errorf("node %s: %w", a, domain.ErrNotFound)
	}
	pb, ok := idx.parent[b]
	if !ok {
		return false, fmt.Errorf("node %s: %w", b, domain.ErrNotFound)
	}
	return pa == pb, nil
}

// MoveBefore returns a copy of group with dragged removed from its position
// and reinserted at the index target held before the removal. Removal
// happens first, so dragging downward lands after the target and dragging
// upward lands before it. If either node is absent or they are the same
// node the group is returned unchanged.
func MoveBefore(group []*domain.Node, draggedID, targetID string) []*domain.Node {
	out := make([]*domain.Node, len(group))
	copy(out, group)
	if draggedID == targetID {
		return out
	}

	from, to := -1, -1
	for i, n := range out {
		switch n.ID {
		case draggedID:
			from = i
		case targetID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return out
	}

	dragged := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]*domain.Node{dragged}, out[to:]...)...)
	return out
}

// Renumber returns the sort order each node in group should take so the
// group reads 0..n-1 in slice order.
func Renumber(group []*domain.Node) map[string]int {
	orders := make(map[string]int, len(group))
	for i, n := range group {
		orders[n.ID] = i
	}
	return orders
}
