package service

import (
	"context"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/importer"
	"github.com/alexanderramin/taxonomy/internal/repository"
	tmpl "github.com/alexanderramin/taxonomy/internal/template"
)

// AddOptions carries the optional attributes of a new node.
type AddOptions struct {
	IsRequired bool
}

type NodeService interface {
	// Add creates a node at the end of its sibling group. Root-only types
	// ignore parentID.
	Add(ctx context.Context, typ domain.NodeType, name string, parentID *string, opts AddOptions) (*domain.Node, error)
	AddRoot(ctx context.Context, typ domain.NodeType, name string, opts AddOptions) (*domain.Node, error)
	AddChild(ctx context.Context, typ domain.NodeType, parentID, name string, opts AddOptions) (*domain.Node, error)
	Get(ctx context.Context, typ domain.NodeType, id string) (*domain.Node, error)
	Update(ctx context.Context, typ domain.NodeType, id string, patch repository.NodePatch) error
	// Delete removes id and its whole subtree, children first. Branches are
	// deleted independently; the report lists what was and was not removed.
	Delete(ctx context.Context, typ domain.NodeType, id string) (*DeleteReport, error)
	// Tree returns the forest of the type in display order.
	Tree(ctx context.Context, typ domain.NodeType) ([]*domain.Node, error)
}

type ReorderService interface {
	// Reorder moves dragged to target's position within their shared
	// sibling group of forest and persists the renumbered group. forest is
	// the tree the caller is displaying; it is not modified.
	Reorder(ctx context.Context, typ domain.NodeType, forest []*domain.Node, draggedID, targetID string) error
	// ReorderStored is Reorder against a freshly loaded forest.
	ReorderStored(ctx context.Context, typ domain.NodeType, draggedID, targetID string) error
}

type ImportService interface {
	// Plan parses matrix and reports which governorates and districts the
	// rows reference that do not exist yet. Nothing is written.
	Plan(ctx context.Context, typ domain.NodeType, matrix [][]string) (*PlanResult, error)
	// Confirm creates the missing locations, resolves every row and writes
	// the resulting service points in chunks.
	Confirm(ctx context.Context, missing MissingPlan, rows []importer.Record) (*ConfirmResult, error)
}

type SeedService interface {
	// Seed writes the nodes of a template into every taxonomy it names that
	// is still empty. All writes share one transaction.
	Seed(ctx context.Context, schema *tmpl.TemplateSchema) (*SeedReport, error)
}
