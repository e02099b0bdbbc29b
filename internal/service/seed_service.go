package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taxonomy/internal/db"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/repository"
	tmpl "github.com/alexanderramin/taxonomy/internal/template"
)

// SeedReport lists what a seed run wrote. Types that already held nodes
// are left untouched and reported as skipped.
type SeedReport struct {
	Created map[domain.NodeType]int
	Skipped []domain.NodeType
}

type seedService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewSeedService(uow db.UnitOfWork, observers ...UseCaseObserver) SeedService {
	return &seedService{
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *seedService) Seed(ctx context.Context, schema *tmpl.TemplateSchema) (_ *SeedReport, err error) {
	startedAt := time.Now()
	fields := map[string]any{"template": schema.ID}
	defer observe(ctx, s.observer, "seed", startedAt, fields, &err)

	var generated *tmpl.Generated
	generated, err = tmpl.Execute(schema, s.now())
	if err != nil {
		return nil, err
	}

	report := &SeedReport{Created: map[domain.NodeType]int{}}

	// Persist all types atomically
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		for _, typ := range generated.Types {
			existing, err := txNodes.List(ctx, typ)
			if err != nil {
				return persistence("listing "+string(typ), err)
			}
			if len(existing) > 0 {
				report.Skipped = append(report.Skipped, typ)
				continue
			}
			for _, n := range generated.Nodes[typ] {
				if err := txNodes.Insert(ctx, n); err != nil {
					return persistence(fmt.Sprintf("seeding %s %q", typ, n.Name), err)
				}
			}
			report.Created[typ] = len(generated.Nodes[typ])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range report.Created {
		total += n
	}
	fields["created"] = total
	fields["skipped"] = len(report.Skipped)
	return report, nil
}
