package repository

import (
	"context"

	"github.com/alexanderramin/taxonomy/internal/domain"
)

// NodePatch carries a partial update. Nil fields are left untouched.
type NodePatch struct {
	Name       *string
	IsRequired *bool
	SortOrder  *int
}

// Empty reports whether the patch changes nothing.
func (p NodePatch) Empty() bool {
	return p.Name == nil && p.IsRequired == nil && p.SortOrder == nil
}

// NodeRepo is the persistence collaborator for the taxonomy tables. Every
// method is scoped to one taxonomy type; an unknown type fails with
// domain.ErrUnknownType before any query is issued.
type NodeRepo interface {
	// List returns every node of the type ordered by sort order, then
	// creation order.
	List(ctx context.Context, typ domain.NodeType) ([]*domain.Node, error)
	ListChildren(ctx context.Context, typ domain.NodeType, parentID string) ([]*domain.Node, error)
	// NextSortOrder returns the sort order that appends a node to the end
	// of the sibling group under parentID (nil for roots).
	NextSortOrder(ctx context.Context, typ domain.NodeType, parentID *string) (int, error)
	GetByID(ctx context.Context, typ domain.NodeType, id string) (*domain.Node, error)
	Insert(ctx context.Context, n *domain.Node) error
	Update(ctx context.Context, typ domain.NodeType, id string, patch NodePatch) error
	Delete(ctx context.Context, typ domain.NodeType, id string) error
}

// ServicePointRepo is the downstream bulk-write collaborator for resolved
// import records.
type ServicePointRepo interface {
	// InsertMany writes records as one batch; the batch succeeds or fails
	// as a whole.
	InsertMany(ctx context.Context, records []*domain.ServicePoint) error
	ListByDistrict(ctx context.Context, districtID string) ([]*domain.ServicePoint, error)
	Count(ctx context.Context) (int, error)
}
