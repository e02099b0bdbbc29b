package service

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/repository"
	"github.com/alexanderramin/taxonomy/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db     *sql.DB
	repo   *repository.SQLiteNodeRepo
	nodes  NodeService
	points *repository.SQLiteServicePointRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteNodeRepo(database)
	return &testEnv{
		db:     database,
		repo:   repo,
		nodes:  NewNodeService(repo, nil),
		points: repository.NewSQLiteServicePointRepo(database),
	}
}

func (e *testEnv) addRoot(t *testing.T, typ domain.NodeType, name string) *domain.Node {
	t.Helper()
	n, err := e.nodes.AddRoot(context.Background(), typ, name, AddOptions{})
	require.NoError(t, err)
	return n
}

func (e *testEnv) addChild(t *testing.T, typ domain.NodeType, parent *domain.Node, name string) *domain.Node {
	t.Helper()
	n, err := e.nodes.AddChild(context.Background(), typ, parent.ID, name, AddOptions{})
	require.NoError(t, err)
	return n
}

// exists reports whether id is still stored for typ.
func (e *testEnv) exists(t *testing.T, typ domain.NodeType, id string) bool {
	t.Helper()
	_, err := e.repo.GetByID(context.Background(), typ, id)
	return err == nil
}

func (e *testEnv) siblingNames(t *testing.T, typ domain.NodeType, parentID *string) []string {
	t.Helper()
	all, err := e.repo.List(context.Background(), typ)
	require.NoError(t, err)
	var names []string
	for _, n := range all {
		if (parentID == nil && n.ParentID == nil) || (parentID != nil && n.ParentID != nil && *n.ParentID == *parentID) {
			names = append(names, n.Name)
		}
	}
	return names
}

// failingNodeRepo wraps a NodeRepo and fails selected operations.
type failingNodeRepo struct {
	repository.NodeRepo
	failDelete map[string]error
	failUpdate error
	onDelete   func(id string)

	updates atomic.Int32
}

func (r *failingNodeRepo) Delete(ctx context.Context, typ domain.NodeType, id string) error {
	if err, ok := r.failDelete[id]; ok {
		return err
	}
	if err := r.NodeRepo.Delete(ctx, typ, id); err != nil {
		return err
	}
	if r.onDelete != nil {
		r.onDelete(id)
	}
	return nil
}

func (r *failingNodeRepo) Update(ctx context.Context, typ domain.NodeType, id string, patch repository.NodePatch) error {
	r.updates.Add(1)
	if r.failUpdate != nil {
		return r.failUpdate
	}
	return r.NodeRepo.Update(ctx, typ, id, patch)
}

// recordingObserver keeps every use-case event it receives.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}
