package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/repository"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
)

// DeleteReport lists the ids removed by a cascade delete and those that
// could not be removed.
type DeleteReport struct {
	Deleted []string
	Failed  []string
}

// CascadeDeleteError aggregates the branch failures of a cascade delete.
type CascadeDeleteError struct {
	RootID string
	Errs   []error
}

func (e *CascadeDeleteError) Error() string {
	if len(e.Errs) == 1 {
		return fmt.Sprintf("deleting %s: %v", e.RootID, e.Errs[0])
	}
	return fmt.Sprintf("deleting %s: %d branches failed: %v", e.RootID, len(e.Errs), errors.Join(e.Errs...))
}

func (e *CascadeDeleteError) Unwrap() []error { return e.Errs }

type nodeService struct {
	nodes    repository.NodeRepo
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewNodeService(nodes repository.NodeRepo, logger *slog.Logger, observers ...UseCaseObserver) NodeService {
	return &nodeService{
		nodes:    nodes,
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

func checkType(typ domain.NodeType) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownType, string(typ))
	}
	return nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func (s *nodeService) Add(ctx context.Context, typ domain.NodeType, name string, parentID *string, opts AddOptions) (_ *domain.Node, err error) {
	if err := checkType(typ); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	if !typ.Hierarchical() || (parentID != nil && *parentID == "") {
		parentID = nil
	}

	startedAt := time.Now()
	fields := map[string]any{"type": string(typ)}
	defer observe(ctx, s.observer, "add-node", startedAt, fields, &err)

	if parentID != nil {
		if _, err = s.nodes.GetByID(ctx, typ, *parentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("parent: %w", err)
			}
			return nil, persistence("loading parent", err)
		}
	}

	order, err := s.nodes.NextSortOrder(ctx, typ, parentID)
	if err != nil {
		return nil, persistence("reading sibling order", err)
	}

	n := &domain.Node{
		Type:       typ,
		Name:       name,
		ParentID:   parentID,
		IsRequired: opts.IsRequired,
		SortOrder:  order,
	}
	if err = s.nodes.Insert(ctx, n); err != nil {
		return nil, persistence("inserting node", err)
	}
	fields["node_id"] = n.ID
	return n, nil
}

func (s *nodeService) AddRoot(ctx context.Context, typ domain.NodeType, name string, opts AddOptions) (*domain.Node, error) {
	return s.Add(ctx, typ, name, nil, opts)
}

func (s *nodeService) AddChild(ctx context.Context, typ domain.NodeType, parentID, name string, opts AddOptions) (*domain.Node, error) {
	return s.Add(ctx, typ, name, &parentID, opts)
}

func (s *nodeService) Get(ctx context.Context, typ domain.NodeType, id string) (*domain.Node, error) {
	if err := checkType(typ); err != nil {
		return nil, err
	}
	return s.nodes.GetByID(ctx, typ, id)
}

func (s *nodeService) Update(ctx context.Context, typ domain.NodeType, id string, patch repository.NodePatch) (err error) {
	if err := checkType(typ); err != nil {
		return err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return domain.ErrEmptyName
		}
		patch.Name = &trimmed
	}

	startedAt := time.Now()
	defer observe(ctx, s.observer, "update-node", startedAt, map[string]any{"type": string(typ), "node_id": id}, &err)

	if patch.Empty() {
		_, err = s.nodes.GetByID(ctx, typ, id)
		return err
	}
	if err = s.nodes.Update(ctx, typ, id, patch); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return persistence("updating node", err)
	}
	return nil
}

func (s *nodeService) Delete(ctx context.Context, typ domain.NodeType, id string) (_ *DeleteReport, err error) {
	if err := checkType(typ); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	fields := map[string]any{"type": string(typ), "node_id": id}
	defer observe(ctx, s.observer, "delete-node", startedAt, fields, &err)

	if _, err = s.nodes.GetByID(ctx, typ, id); err != nil {
		return nil, err
	}

	c := &cascade{svc: s, typ: typ, report: &DeleteReport{}}
	c.deleteSubtree(ctx, id)

	fields["deleted"] = len(c.report.Deleted)
	fields["failed"] = len(c.report.Failed)
	if len(c.errs) > 0 {
		return c.report, &CascadeDeleteError{RootID: id, Errs: c.errs}
	}
	return c.report, nil
}

// cascade walks a subtree depth first, deleting children before their
// parent. A failing branch is recorded and its siblings still run.
type cascade struct {
	svc       *nodeService
	typ       domain.NodeType
	report    *DeleteReport
	errs      []error
	cancelled bool
}

func (c *cascade) deleteSubtree(ctx context.Context, id string) {
	if err := ctx.Err(); err != nil {
		c.skip(id, err)
		return
	}

	children, err := c.svc.nodes.ListChildren(ctx, c.typ, id)
	if err != nil {
		c.fail(ctx, id, persistence("listing children of "+id, err))
	}
	for _, child := range children {
		c.deleteSubtree(ctx, child.ID)
	}

	if err := ctx.Err(); err != nil {
		c.skip(id, err)
		return
	}
	if err := c.svc.nodes.Delete(ctx, c.typ, id); err != nil {
		c.report.Failed = append(c.report.Failed, id)
		c.fail(ctx, id, persistence("deleting "+id, err))
		return
	}
	c.report.Deleted = append(c.report.Deleted, id)
}

// skip records id as not deleted because the context ended. The context
// error is reported once.
func (c *cascade) skip(id string, err error) {
	if !c.cancelled {
		c.cancelled = true
		c.errs = append(c.errs, err)
	}
	c.report.Failed = append(c.report.Failed, id)
}

func (c *cascade) fail(ctx context.Context, id string, err error) {
	c.svc.logger.WarnContext(ctx, "cascade delete branch failed",
		"type", string(c.typ), "node_id", id, "error", err)
	c.errs = append(c.errs, err)
}

func (s *nodeService) Tree(ctx context.Context, typ domain.NodeType) ([]*domain.Node, error) {
	if err := checkType(typ); err != nil {
		return nil, err
	}
	nodes, err := s.nodes.List(ctx, typ)
	if err != nil {
		return nil, persistence("listing nodes", err)
	}
	return taxonomy.BuildTree(nodes), nil
}
