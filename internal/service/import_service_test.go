package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/taxonomy/internal/db"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/importer"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
	"github.com/alexanderramin/taxonomy/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pointHeader = []string{"الاسم", "المحافظة", "المديرية", "تاريخ البدء", "عدد الموظفين"}

func newImportService(env *testEnv, uow db.UnitOfWork, chunkSize int) ImportService {
	if uow == nil {
		uow = testutil.NewTestUoW(env.db)
	}
	return NewImportService(env.nodes, uow, chunkSize, nil)
}

func record(line int, name, gov, dist string) importer.Record {
	return importer.Record{Line: line, Fields: map[importer.Field]string{
		importer.FieldName:        name,
		importer.FieldGovernorate: gov,
		importer.FieldDistrict:    dist,
	}}
}

func TestImportPlan_RejectsNonLocation(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService(env, nil, 0)

	_, err := svc.Plan(context.Background(), domain.TypeClassification, nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedImport)

	_, err = svc.Plan(context.Background(), domain.NodeType("region"), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

func TestImportPlan_CountsAndSkipsInvalidRows(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(context.Background(), domain.TypeLocation, [][]string{
		{"تقرير نقاط الخدمة"},
		pointHeader,
		{"A", "صنعاء", "الوحدة"},
		{"B", "", "معين"},
		{"C", "عدن", "كريتر"},
	})
	require.NoError(t, err)

	assert.True(t, plan.HeaderFound)
	assert.Equal(t, 3, plan.Total)
	assert.Equal(t, 2, plan.Valid)
	assert.Len(t, plan.Rows, 2)
	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, 4, plan.Skipped[0].Line)
	assert.Contains(t, plan.Skipped[0].Reason, "governorate")
	assert.Equal(t, importer.PhasePlanned, plan.Phase)
}

func TestImportPlan_DeduplicatesMissingNodes(t *testing.T) {
	env := newTestEnv(t)
	sanaa := env.addRoot(t, domain.TypeLocation, "صنعاء")
	env.addChild(t, domain.TypeLocation, sanaa, "الوحدة")
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(context.Background(), domain.TypeLocation, [][]string{
		pointHeader,
		{"A", "صنعاء", "الوحدة"},
		{"B", "صنعاء", "جديدة"},
		{"C", "صنعاء", "جديده"},
		{"D", "محافظة جديدة", "مديرية أولى"},
		{"E", "محافظه جديده", "مديريه اولى"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, plan.Valid)

	require.Len(t, plan.Missing, 2)

	existing := plan.Missing[taxonomy.Normalize("صنعاء")]
	require.NotNil(t, existing)
	assert.True(t, existing.Exists)
	assert.Equal(t, map[string]string{taxonomy.Normalize("جديدة"): "جديدة"}, existing.Districts)

	fresh := plan.Missing[taxonomy.Normalize("محافظة جديدة")]
	require.NotNil(t, fresh)
	assert.False(t, fresh.Exists)
	assert.Equal(t, "محافظة جديدة", fresh.OriginalName)
	assert.Len(t, fresh.Districts, 1)

	govs, dists := plan.Missing.Counts()
	assert.Equal(t, 1, govs)
	assert.Equal(t, 2, dists)
}

func TestImportConfirm_CreatesOnlyMissingDistrict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sanaa := env.addRoot(t, domain.TypeLocation, "صنعاء")
	wahda := env.addChild(t, domain.TypeLocation, sanaa, "الوحدة")
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(ctx, domain.TypeLocation, [][]string{
		{"name", "governorate", "district"},
		{"A", "صنعاء", "الوحدة"},
		{"B", "صنعاء", "جديدة"},
	})
	require.NoError(t, err)

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)

	assert.Equal(t, 0, res.CreatedGovernorates)
	assert.Equal(t, 1, res.CreatedDistricts)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Zero(t, res.DroppedRows)
	assert.Equal(t, importer.PhaseDone, res.Phase)
	assert.Equal(t, OutcomeImportedWithNewTaxonomy, res.Outcome())

	districts, err := env.repo.ListChildren(ctx, domain.TypeLocation, sanaa.ID)
	require.NoError(t, err)
	require.Len(t, districts, 2)
	assert.Equal(t, "جديدة", districts[1].Name)

	inWahda, err := env.points.ListByDistrict(ctx, wahda.ID)
	require.NoError(t, err)
	require.Len(t, inWahda, 1)
	assert.Equal(t, "A", inWahda[0].Name)
	assert.Equal(t, sanaa.ID, inWahda[0].GovernorateID)

	inNew, err := env.points.ListByDistrict(ctx, districts[1].ID)
	require.NoError(t, err)
	require.Len(t, inNew, 1)
	assert.Equal(t, "B", inNew[0].Name)
}

func TestImportConfirm_CreatesGovernorateThenDistricts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(ctx, domain.TypeLocation, [][]string{
		pointHeader,
		{"A", "تعز", "المظفر", "03/2021", "٤"},
		{"B", "تعز", "القاهرة", "", "x"},
		{"C", "تعز", "المظفر"},
	})
	require.NoError(t, err)

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CreatedGovernorates)
	assert.Equal(t, 2, res.CreatedDistricts)
	assert.Equal(t, 3, res.InsertedCount)

	forest, err := env.nodes.Tree(ctx, domain.TypeLocation)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 2)

	var muzaffar *domain.Node
	for _, c := range forest[0].Children {
		if c.Name == "المظفر" {
			muzaffar = c
		}
	}
	require.NotNil(t, muzaffar)
	points, err := env.points.ListByDistrict(ctx, muzaffar.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)

	byName := map[string]*domain.ServicePoint{}
	for _, p := range points {
		byName[p.Name] = p
	}
	require.NotNil(t, byName["A"].StartDate)
	assert.Equal(t, time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC), byName["A"].StartDate.UTC())
	assert.Equal(t, 4, byName["A"].EmployeeCount)
	assert.Nil(t, byName["C"].StartDate)
}

func TestImportConfirm_SecondRunCreatesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newImportService(env, nil, 0)
	matrix := [][]string{pointHeader, {"A", "إب", "المشنة"}}

	plan, err := svc.Plan(ctx, domain.TypeLocation, matrix)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)

	plan, err = svc.Plan(ctx, domain.TypeLocation, matrix)
	require.NoError(t, err)
	assert.Empty(t, plan.Missing)

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)
	assert.Zero(t, res.CreatedGovernorates)
	assert.Zero(t, res.CreatedDistricts)
	assert.Equal(t, OutcomeImported, res.Outcome())
}

func TestImportConfirm_StalePlanReusesExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(ctx, domain.TypeLocation, [][]string{pointHeader, {"A", "أبين", "زنجبار"}})
	require.NoError(t, err)
	require.Len(t, plan.Missing, 1)

	// Someone else adds the governorate between plan and confirm.
	abyan := env.addRoot(t, domain.TypeLocation, "ابين")

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)
	assert.Zero(t, res.CreatedGovernorates)
	assert.Equal(t, 1, res.CreatedDistricts)

	children, err := env.repo.ListChildren(ctx, domain.TypeLocation, abyan.ID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

// racingNodes creates every governorate through a concurrent writer first,
// so the reconciler's own insert collides.
type racingNodes struct {
	NodeService
	rival NodeService
}

func (r *racingNodes) AddRoot(ctx context.Context, typ domain.NodeType, name string, opts AddOptions) (*domain.Node, error) {
	if _, err := r.rival.AddRoot(ctx, typ, name, opts); err != nil {
		return nil, err
	}
	return r.NodeService.AddRoot(ctx, typ, name, opts)
}

func TestImportConfirm_DuplicateCreationReusesWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	nodes := &racingNodes{NodeService: env.nodes, rival: NewNodeService(env.repo, nil)}
	svc := NewImportService(nodes, testutil.NewTestUoW(env.db), 0, nil)

	plan, err := svc.Plan(ctx, domain.TypeLocation, [][]string{pointHeader, {"A", "لحج", "الحوطة"}})
	require.NoError(t, err)

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)
	assert.Zero(t, res.CreatedGovernorates)
	assert.Equal(t, 1, res.CreatedDistricts)
	assert.Equal(t, 1, res.InsertedCount)

	forest, err := env.nodes.Tree(ctx, domain.TypeLocation)
	require.NoError(t, err)
	assert.Len(t, forest, 1, "exactly one governorate despite the race")
}

func seedLocation(t *testing.T, env *testEnv, gov, dist string) {
	t.Helper()
	g := env.addRoot(t, domain.TypeLocation, gov)
	env.addChild(t, domain.TypeLocation, g, dist)
}

func records(n int, gov, dist string) []importer.Record {
	out := make([]importer.Record, n)
	for i := range out {
		out[i] = record(i+2, fmt.Sprintf("point-%d", i), gov, dist)
	}
	return out
}

func TestImportConfirm_ChunksOfOneHundred(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedLocation(t, env, "حضرموت", "المكلا")
	uow := &testutil.FailOnNthTxUoW{DB: env.db}
	svc := newImportService(env, uow, 100)

	res, err := svc.Confirm(ctx, MissingPlan{}, records(250, "حضرموت", "المكلا"))
	require.NoError(t, err)

	assert.Equal(t, 3, uow.Calls())
	assert.Equal(t, 250, res.InsertedCount)
	assert.Empty(t, res.FailedChunks)
	assert.Equal(t, OutcomeImported, res.Outcome())

	count, err := env.points.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, count)
}

func TestImportConfirm_FailedChunkIsNotRolledBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedLocation(t, env, "حضرموت", "المكلا")
	injected := errors.New("bulk write rejected")
	uow := &testutil.FailOnNthTxUoW{DB: env.db, FailOn: 2, Err: injected}
	svc := newImportService(env, uow, 100)

	res, err := svc.Confirm(ctx, MissingPlan{}, records(250, "حضرموت", "المكلا"))
	require.NoError(t, err, "chunk failures are reported, not returned")

	assert.Equal(t, 3, uow.Calls())
	assert.Equal(t, 150, res.InsertedCount)
	assert.Equal(t, 100, res.FailedCount)
	require.Len(t, res.FailedChunks, 1)
	assert.Equal(t, 1, res.FailedChunks[0].Index)
	assert.Equal(t, 100, res.FailedChunks[0].Size)
	assert.ErrorIs(t, res.FailedChunks[0].Err, injected)
	assert.Equal(t, OutcomePartialFailure, res.Outcome())

	count, err := env.points.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 150, count)
}

// cancelAfterUoW cancels the run once the first transaction finishes.
type cancelAfterUoW struct {
	inner  db.UnitOfWork
	cancel context.CancelFunc
}

func (u *cancelAfterUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	err := u.inner.WithinTx(ctx, fn)
	u.cancel()
	return err
}

func TestImportConfirm_CancelBetweenChunks(t *testing.T) {
	env := newTestEnv(t)
	seedLocation(t, env, "حضرموت", "المكلا")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := newImportService(env, &cancelAfterUoW{inner: testutil.NewTestUoW(env.db), cancel: cancel}, 100)

	res, err := svc.Confirm(ctx, MissingPlan{}, records(250, "حضرموت", "المكلا"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, importer.PhaseCancelled, res.Phase)
	assert.Equal(t, 100, res.InsertedCount)

	count, err := env.points.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, count, "committed chunk is kept")
}

func TestImportConfirm_CancelBeforeCreation(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(context.Background(), domain.TypeLocation, [][]string{pointHeader, {"A", "مأرب", "المدينة"}})
	require.NoError(t, err)

	// Cancel after the snapshot is taken but before any creation.
	ctx, cancel := context.WithCancel(context.Background())
	cancelling := &cancelOnTree{NodeService: env.nodes, cancel: cancel}
	svc = NewImportService(cancelling, testutil.NewTestUoW(env.db), 0, nil)

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, importer.PhaseCancelled, res.Phase)
	assert.Zero(t, res.CreatedGovernorates)

	forest, err := env.nodes.Tree(context.Background(), domain.TypeLocation)
	require.NoError(t, err)
	assert.Empty(t, forest)
}

type cancelOnTree struct {
	NodeService
	cancel context.CancelFunc
}

func (c *cancelOnTree) Tree(ctx context.Context, typ domain.NodeType) ([]*domain.Node, error) {
	forest, err := c.NodeService.Tree(ctx, typ)
	c.cancel()
	return forest, err
}

// failingChildren rejects every district creation.
type failingChildren struct {
	NodeService
}

func (f *failingChildren) AddChild(context.Context, domain.NodeType, string, string, AddOptions) (*domain.Node, error) {
	return nil, fmt.Errorf("%w: injected", domain.ErrPersistence)
}

func TestImportConfirm_UnresolvedRowsAreDropped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedLocation(t, env, "صنعاء", "الوحدة")
	svc := NewImportService(&failingChildren{NodeService: env.nodes}, testutil.NewTestUoW(env.db), 0, nil)

	plan, err := svc.Plan(ctx, domain.TypeLocation, [][]string{
		pointHeader,
		{"A", "صنعاء", "الوحدة"},
		{"B", "صنعاء", "جديدة"},
	})
	require.NoError(t, err)

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FailedCreations)
	assert.Equal(t, 1, res.DroppedRows)
	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, OutcomePartialFailure, res.Outcome())
}

func TestImportConfirm_NothingImported(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(context.Background(), domain.TypeLocation, [][]string{pointHeader, {"", "", ""}})
	require.NoError(t, err)
	assert.Zero(t, plan.Valid)

	res, err := svc.Confirm(context.Background(), plan.Missing, plan.Rows)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingImported, res.Outcome())
	assert.Equal(t, importer.PhaseDone, res.Phase)
}

func TestImportConfirm_FuzzyMatchesExistingNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedLocation(t, env, "أمانة العاصمة", "مديرية الوحدة")
	svc := newImportService(env, nil, 0)

	plan, err := svc.Plan(ctx, domain.TypeLocation, [][]string{
		pointHeader,
		{"A", "امانه العاصمه", "الوحدة"},
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Missing, "variant spelling and contained district name both match")

	res, err := svc.Confirm(ctx, plan.Missing, plan.Rows)
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		res  ConfirmResult
		want ImportOutcome
	}{
		{"empty", ConfirmResult{}, OutcomeNothingImported},
		{"plain", ConfirmResult{InsertedCount: 3}, OutcomeImported},
		{"new taxonomy", ConfirmResult{InsertedCount: 3, CreatedDistricts: 1}, OutcomeImportedWithNewTaxonomy},
		{"chunk failed", ConfirmResult{InsertedCount: 3, CreatedGovernorates: 1, FailedCount: 2}, OutcomePartialFailure},
		{"all failed", ConfirmResult{FailedCount: 100}, OutcomePartialFailure},
		{"dropped", ConfirmResult{DroppedRows: 1}, OutcomePartialFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Outcome())
		})
	}
}
