package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alexanderramin/taxonomy/internal/db"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/importer"
	"github.com/alexanderramin/taxonomy/internal/repository"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
)

// DefaultChunkSize is the number of service points written per transaction.
const DefaultChunkSize = 100

// RowIssue explains why a row was left out of an import.
type RowIssue struct {
	Line   int
	Reason string
}

// MissingGovernorate is one entry of a MissingPlan. Exists is true when the
// governorate is already present and only districts are missing.
type MissingGovernorate struct {
	OriginalName string
	Exists       bool
	// Districts maps canonical district name to the name as first seen.
	Districts map[string]string
}

// MissingPlan maps canonical governorate name to the locations an import
// needs created under it.
type MissingPlan map[string]*MissingGovernorate

// Governorates returns the plan keys in a stable order.
func (p MissingPlan) Governorates() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Counts returns how many governorates and districts the plan would create.
func (p MissingPlan) Counts() (governorates, districts int) {
	for _, g := range p {
		if !g.Exists {
			governorates++
		}
		districts += len(g.Districts)
	}
	return governorates, districts
}

// PlanResult is the outcome of the parse and plan phases.
type PlanResult struct {
	Total       int
	Valid       int
	HeaderFound bool
	Missing     MissingPlan
	Rows        []importer.Record
	Skipped     []RowIssue
	Phase       importer.Phase
}

// ChunkFailure records one bulk write that did not commit.
type ChunkFailure struct {
	Index int
	Size  int
	Err   error
}

// ImportOutcome summarizes a confirmed import for the user.
type ImportOutcome string

const (
	OutcomeNothingImported         ImportOutcome = "nothing_imported"
	OutcomeImported                ImportOutcome = "imported"
	OutcomeImportedWithNewTaxonomy ImportOutcome = "imported_with_new_taxonomy"
	OutcomePartialFailure          ImportOutcome = "partial_failure"
)

// ConfirmResult is the outcome of the reconcile phase.
type ConfirmResult struct {
	CreatedGovernorates int
	CreatedDistricts    int
	FailedCreations     int
	InsertedCount       int
	FailedChunks        []ChunkFailure
	FailedCount         int
	DroppedRows         int
	Phase               importer.Phase
}

func (r *ConfirmResult) Outcome() ImportOutcome {
	switch {
	case r.InsertedCount == 0 && r.FailedCount == 0 && r.DroppedRows == 0:
		return OutcomeNothingImported
	case r.FailedCount > 0 || r.DroppedRows > 0 || r.FailedCreations > 0:
		return OutcomePartialFailure
	case r.CreatedGovernorates > 0 || r.CreatedDistricts > 0:
		return OutcomeImportedWithNewTaxonomy
	default:
		return OutcomeImported
	}
}

type importService struct {
	nodes     NodeService
	uow       db.UnitOfWork
	chunkSize int
	logger    *slog.Logger
	observer  UseCaseObserver
	now       func() time.Time
}

func NewImportService(nodes NodeService, uow db.UnitOfWork, chunkSize int, logger *slog.Logger, observers ...UseCaseObserver) ImportService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &importService{
		nodes:     nodes,
		uow:       uow,
		chunkSize: chunkSize,
		logger:    loggerOrDiscard(logger),
		observer:  useCaseObserverOrNoop(observers),
		now:       time.Now,
	}
}

func (s *importService) Plan(ctx context.Context, typ domain.NodeType, matrix [][]string) (_ *PlanResult, err error) {
	if err := checkType(typ); err != nil {
		return nil, err
	}
	if typ != domain.TypeLocation {
		return nil, fmt.Errorf("%w: got %s", domain.ErrUnsupportedImport, typ)
	}

	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "import-plan", startedAt, fields, &err)

	sheet := importer.ParseMatrix(matrix)
	res := &PlanResult{
		Total:       len(sheet.Rows),
		HeaderFound: sheet.HeaderFound,
		Missing:     MissingPlan{},
		Phase:       importer.PhaseParsed,
	}
	if !sheet.HeaderFound {
		s.logger.WarnContext(ctx, "import header row not found, using first row", "headers", sheet.Headers)
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	for _, row := range sheet.Rows {
		rec, exErr := importer.Extract(row)
		if exErr != nil {
			res.Skipped = append(res.Skipped, RowIssue{Line: row.Line, Reason: exErr.Error()})
			continue
		}
		res.Valid++
		res.Rows = append(res.Rows, rec)

		gov := snap.governorate(rec.Governorate())
		if gov != nil && gov.district(rec.District()) != nil {
			continue
		}
		key := taxonomy.Normalize(rec.Governorate())
		entry, ok := res.Missing[key]
		if !ok {
			entry = &MissingGovernorate{
				OriginalName: rec.Governorate(),
				Exists:       gov != nil,
				Districts:    map[string]string{},
			}
			res.Missing[key] = entry
		}
		dk := taxonomy.Normalize(rec.District())
		if _, seen := entry.Districts[dk]; !seen {
			entry.Districts[dk] = rec.District()
		}
	}

	res.Phase = importer.PhasePlanned
	newGovs, newDists := res.Missing.Counts()
	fields["total"] = res.Total
	fields["valid"] = res.Valid
	fields["missing_governorates"] = newGovs
	fields["missing_districts"] = newDists
	return res, nil
}

func (s *importService) Confirm(ctx context.Context, missing MissingPlan, rows []importer.Record) (_ *ConfirmResult, err error) {
	startedAt := time.Now()
	res := &ConfirmResult{Phase: importer.PhaseReconciling}
	fields := map[string]any{"rows": len(rows)}
	defer func() {
		fields["created_governorates"] = res.CreatedGovernorates
		fields["created_districts"] = res.CreatedDistricts
		fields["inserted"] = res.InsertedCount
		fields["failed"] = res.FailedCount
		fields["dropped"] = res.DroppedRows
		fields["phase"] = res.Phase.String()
		observe(ctx, s.observer, "import-confirm", startedAt, fields, &err)
	}()

	snap, err := s.snapshot(ctx)
	if err != nil {
		return res, err
	}

	for _, key := range missing.Governorates() {
		if err = ctx.Err(); err != nil {
			res.Phase = importer.PhaseCancelled
			return res, err
		}
		entry := missing[key]
		gov := snap.governorate(entry.OriginalName)
		if gov == nil {
			gov, err = s.ensureGovernorate(ctx, snap, entry.OriginalName, res)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					res.Phase = importer.PhaseCancelled
					return res, ctxErr
				}
				res.FailedCreations++
				s.logger.WarnContext(ctx, "creating governorate failed", "governorate", entry.OriginalName, "error", err)
				err = nil
				continue
			}
		}

		for _, dk := range sortedKeys(entry.Districts) {
			if err = ctx.Err(); err != nil {
				res.Phase = importer.PhaseCancelled
				return res, err
			}
			name := entry.Districts[dk]
			if gov.district(name) != nil {
				continue
			}
			if err = s.ensureDistrict(ctx, gov, name, res); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					res.Phase = importer.PhaseCancelled
					return res, ctxErr
				}
				res.FailedCreations++
				s.logger.WarnContext(ctx, "creating district failed",
					"governorate", entry.OriginalName, "district", name, "error", err)
				err = nil
			}
		}
	}

	now := s.now()
	records := make([]*domain.ServicePoint, 0, len(rows))
	for _, rec := range rows {
		gov := snap.governorate(rec.Governorate())
		if gov == nil {
			res.DroppedRows++
			continue
		}
		dist := gov.district(rec.District())
		if dist == nil {
			res.DroppedRows++
			continue
		}
		records = append(records, importer.Convert(rec, gov.node.ID, dist.node.ID, now))
	}
	if res.DroppedRows > 0 {
		s.logger.WarnContext(ctx, "import rows could not be resolved", "dropped", res.DroppedRows)
	}

	if err = s.writeChunks(ctx, records, res); err != nil {
		res.Phase = importer.PhaseCancelled
		return res, err
	}
	res.Phase = importer.PhaseDone
	return res, nil
}

// writeChunks writes records in independent transactions. A failing chunk
// is recorded and the rest still run; committed chunks are kept. Only
// cancellation stops the loop.
func (s *importService) writeChunks(ctx context.Context, records []*domain.ServicePoint, res *ConfirmResult) error {
	for i, start := 0, 0; start < len(records); i, start = i+1, start+s.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.chunkSize, len(records))
		chunk := records[start:end]

		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteServicePointRepo(tx).InsertMany(ctx, chunk)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			res.FailedChunks = append(res.FailedChunks, ChunkFailure{Index: i, Size: len(chunk), Err: err})
			res.FailedCount += len(chunk)
			s.logger.WarnContext(ctx, "import chunk failed", "chunk", i, "size", len(chunk), "error", err)
			continue
		}
		res.InsertedCount += len(chunk)
	}
	return nil
}

func (s *importService) ensureGovernorate(ctx context.Context, snap *locationSnapshot, name string, res *ConfirmResult) (*governorateEntry, error) {
	n, err := s.nodes.AddRoot(ctx, domain.TypeLocation, name, AddOptions{})
	if err == nil {
		res.CreatedGovernorates++
		return snap.addGovernorate(n), nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, err
	}
	// Another run created it first.
	if err := s.refresh(ctx, snap); err != nil {
		return nil, err
	}
	if gov := snap.governorate(name); gov != nil {
		return gov, nil
	}
	return nil, fmt.Errorf("governorate %q reported duplicate but not found: %w", name, domain.ErrNotFound)
}

func (s *importService) ensureDistrict(ctx context.Context, gov *governorateEntry, name string, res *ConfirmResult) error {
	n, err := s.nodes.AddChild(ctx, domain.TypeLocation, gov.node.ID, name, AddOptions{})
	if err == nil {
		res.CreatedDistricts++
		gov.addDistrict(n)
		return nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return err
	}
	forest, err := s.nodes.Tree(ctx, domain.TypeLocation)
	if err != nil {
		return err
	}
	for _, root := range forest {
		if root.ID != gov.node.ID {
			continue
		}
		for _, child := range root.Children {
			if taxonomy.Normalize(child.Name) == taxonomy.Normalize(name) {
				gov.addDistrict(child)
				return nil
			}
		}
	}
	return fmt.Errorf("district %q reported duplicate but not found: %w", name, domain.ErrNotFound)
}

func (s *importService) snapshot(ctx context.Context) (*locationSnapshot, error) {
	snap := &locationSnapshot{}
	if err := s.refresh(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *importService) refresh(ctx context.Context, snap *locationSnapshot) error {
	forest, err := s.nodes.Tree(ctx, domain.TypeLocation)
	if err != nil {
		return fmt.Errorf("loading location taxonomy: %w", err)
	}
	snap.load(forest)
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
