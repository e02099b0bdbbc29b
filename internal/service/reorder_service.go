package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/repository"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
	"golang.org/x/sync/errgroup"
)

type reorderService struct {
	nodes    repository.NodeRepo
	observer UseCaseObserver
}

func NewReorderService(nodes repository.NodeRepo, observers ...UseCaseObserver) ReorderService {
	return &reorderService{
		nodes:    nodes,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *reorderService) Reorder(ctx context.Context, typ domain.NodeType, forest []*domain.Node, draggedID, targetID string) (err error) {
	if err := checkType(typ); err != nil {
		return err
	}

	startedAt := time.Now()
	fields := map[string]any{"type": string(typ), "dragged": draggedID, "target": targetID}
	defer observe(ctx, s.observer, "reorder", startedAt, fields, &err)

	idx := taxonomy.IndexForest(forest)
	same, err := idx.SameParent(draggedID, targetID)
	if err != nil {
		return err
	}
	if !same {
		return fmt.Errorf("moving %s before %s: %w", draggedID, targetID, domain.ErrCrossParent)
	}
	if draggedID == targetID {
		return nil
	}

	group, _, err := idx.Siblings(draggedID)
	if err != nil {
		return err
	}
	moved := taxonomy.MoveBefore(group, draggedID, targetID)
	orders := taxonomy.Renumber(moved)
	fields["siblings"] = len(moved)

	g, gctx := errgroup.WithContext(ctx)
	for _, n := range moved {
		order := orders[n.ID]
		g.Go(func() error {
			if err := s.nodes.Update(gctx, typ, n.ID, repository.NodePatch{SortOrder: &order}); err != nil {
				return fmt.Errorf("setting sort order of %s: %w", n.ID, err)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return persistence("reordering siblings", err)
	}
	return nil
}

func (s *reorderService) ReorderStored(ctx context.Context, typ domain.NodeType, draggedID, targetID string) error {
	if err := checkType(typ); err != nil {
		return err
	}
	nodes, err := s.nodes.List(ctx, typ)
	if err != nil {
		return persistence("listing nodes", err)
	}
	return s.Reorder(ctx, typ, taxonomy.BuildTree(nodes), draggedID, targetID)
}
