package taxonomy

import "github.com/alexanderramin/taxonomy/internal/domain"

// BuildTree links a flat list of nodes of one type into a forest. Children
// keep the input order, so a list sorted by sort order yields sorted sibling
// groups. A node whose parent id does not resolve in the list is returned
// as a root instead of failing the build. The input nodes are mutated: their
// Children slices are reset and refilled.
func BuildTree(nodes []*domain.Node) []*domain.Node {
	byID := make(map[string]*domain.Node, len(nodes))
	for _, n := range nodes {
		n.Children = []*domain.Node{}
		byID[n.ID] = n
	}

	roots := make([]*domain.Node, 0)
	for _, n := range nodes {
		if !n.IsRoot() {
			if parent, ok := byID[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	// A parent cycle leaves its members unreachable from any root. Break the
	// cycle at the first member in input order.
	reached := make(map[string]bool, len(nodes))
	for _, n := range Flatten(roots) {
		reached[n.ID] = true
	}
	for _, n := range nodes {
		if reached[n.ID] {
			continue
		}
		parent := byID[*n.ParentID]
		parent.Children = removeNode(parent.Children, n)
		roots = append(roots, n)
		for _, d := range Flatten([]*domain.Node{n}) {
			reached[d.ID] = true
		}
	}
	return roots
}

func removeNode(list []*domain.Node, target *domain.Node) []*domain.Node {
	out := list[:0]
	for _, n := range list {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// Flatten returns the forest in pre-order. Each node is emitted at most
// once even if corrupt data links it twice.
func Flatten(forest []*domain.Node) []*domain.Node {
	var out []*domain.Node
	seen := make(map[string]bool)
	var walk func([]*domain.Node)
	walk = func(level []*domain.Node) {
		for _, n := range level {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}
