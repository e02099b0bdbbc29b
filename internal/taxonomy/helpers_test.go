package taxonomy

import (
	"time"

	"github.com/alexanderramin/taxonomy/internal/domain"
)

func node(id, parent string, order int) *domain.Node {
	n := &domain.Node{
		ID:        id,
		Type:      domain.TypeClassification,
		Name:      "node " + id,
		SortOrder: order,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, order, 0, time.UTC),
	}
	if parent != "" {
		n.ParentID = &parent
	}
	return n
}

func ids(nodes []*domain.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
