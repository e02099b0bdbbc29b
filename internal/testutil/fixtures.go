package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/google/uuid"
)

// Node options
type NodeOption func(*domain.Node)

func WithParentID(id string) NodeOption {
	return func(n *domain.Node) {
		n.ParentID = &id
	}
}

func WithSortOrder(i int) NodeOption {
	return func(n *domain.Node) {
		n.SortOrder = i
	}
}

func WithRequired() NodeOption {
	return func(n *domain.Node) {
		n.IsRequired = true
	}
}

func NewTestNode(typ domain.NodeType, name string, opts ...NodeOption) *domain.Node {
	now := time.Now().UTC()
	n := &domain.Node{
		ID:        uuid.New().String(),
		Type:      typ,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewTestServicePoints builds count records under one governorate/district,
// named "<prefix>-<i>".
func NewTestServicePoints(prefix, governorateID, districtID string, count int) []*domain.ServicePoint {
	out := make([]*domain.ServicePoint, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, &domain.ServicePoint{
			Name:          fmt.Sprintf("%s-%d", prefix, i),
			GovernorateID: governorateID,
			DistrictID:    districtID,
		})
	}
	return out
}
