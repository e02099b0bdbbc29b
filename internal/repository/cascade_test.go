package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDelete_ParentWithChildrenIsRejected verifies the store never leaves
// orphans behind: a single-row delete of a parent fails while children exist.
func TestDelete_ParentWithChildrenIsRejected(t *testing.T) {
	repo := setupNodeRepo(t)
	ctx := context.Background()

	parent := testutil.NewTestNode(domain.TypeClassification, "Parent")
	require.NoError(t, repo.Insert(ctx, parent))
	child := testutil.NewTestNode(domain.TypeClassification, "Child", testutil.WithParentID(parent.ID))
	require.NoError(t, repo.Insert(ctx, child))

	err := repo.Delete(ctx, domain.TypeClassification, parent.ID)
	require.Error(t, err)

	_, err = repo.GetByID(ctx, domain.TypeClassification, parent.ID)
	assert.NoError(t, err, "parent must survive a rejected delete")
}

// TestDelete_ChildThenParent verifies the child-before-parent order succeeds.
func TestDelete_ChildThenParent(t *testing.T) {
	repo := setupNodeRepo(t)
	ctx := context.Background()

	parent := testutil.NewTestNode(domain.TypeLocation, "Aden")
	require.NoError(t, repo.Insert(ctx, parent))
	child := testutil.NewTestNode(domain.TypeLocation, "Crater", testutil.WithParentID(parent.ID))
	require.NoError(t, repo.Insert(ctx, child))

	require.NoError(t, repo.Delete(ctx, domain.TypeLocation, child.ID))
	require.NoError(t, repo.Delete(ctx, domain.TypeLocation, parent.ID))

	all, err := repo.List(ctx, domain.TypeLocation)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// TestForeignKey_ServicePointRequiresLocation verifies service points can
// only reference existing location nodes.
func TestForeignKey_ServicePointRequiresLocation(t *testing.T) {
	database := testutil.NewTestDB(t)
	spRepo := NewSQLiteServicePointRepo(database)

	records := testutil.NewTestServicePoints("sp", "no-gov", "no-district", 1)
	err := spRepo.InsertMany(context.Background(), records)
	assert.Error(t, err)
}

// TestForeignKey_LocationInUseCannotBeDeleted verifies a district referenced
// by a service point is protected.
func TestForeignKey_LocationInUseCannotBeDeleted(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	nodes := NewSQLiteNodeRepo(database)
	spRepo := NewSQLiteServicePointRepo(database)

	gov := testutil.NewTestNode(domain.TypeLocation, "Taiz")
	require.NoError(t, nodes.Insert(ctx, gov))
	dist := testutil.NewTestNode(domain.TypeLocation, "Al-Mudhaffar", testutil.WithParentID(gov.ID))
	require.NoError(t, nodes.Insert(ctx, dist))
	require.NoError(t, spRepo.InsertMany(ctx, testutil.NewTestServicePoints("sp", gov.ID, dist.ID, 1)))

	assert.Error(t, nodes.Delete(ctx, domain.TypeLocation, dist.ID))
}
