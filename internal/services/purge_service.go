package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fastapi1403/building-management/internal/metrics"
	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
	"github.com/fastapi1403/building-management/internal/utils"
)

// PurgeActor is recorded as the actor of retention deletes.
const PurgeActor = "system:retention"

// PurgeReport summarizes one retention run.
type PurgeReport struct {
	Purged  map[models.EntityType]int
	Skipped int
}

// PurgeService permanently removes records that have been soft-deleted for
// longer than the retention period. Records that still have children are
// skipped until a later run.
type PurgeService struct {
	lc        *LifecycleService
	retention time.Duration
}

// NewPurgeService returns a service that does nothing when retention is zero.
func NewPurgeService(lc *LifecycleService, retention time.Duration) *PurgeService {
	return &PurgeService{lc: lc, retention: retention}
}

// Run walks the types leaves first so that a floor whose units expire in
// the same run can go too.
func (p *PurgeService) Run(ctx context.Context) (PurgeReport, error) {
	report := PurgeReport{Purged: make(map[models.EntityType]int)}
	if p.retention <= 0 {
		return report, nil
	}
	cutoff := p.lc.now().Add(-p.retention)

	for _, t := range models.AllEntityTypes {
		rows, err := p.lc.store.Repos().For(t).List(ctx, repositories.ListFilter{OnlyDeleted: true, DeletedBefore: &cutoff})
		if err != nil {
			return report, err
		}
		for _, e := range rows {
			id := e.BaseRef().ID
			_, err := p.lc.HardDelete(ctx, PurgeActor, t, id, false)
			var (
				conflictErr *utils.ConflictError
				notFoundErr *utils.NotFoundError
			)
			switch {
			case err == nil:
				report.Purged[t]++
				metrics.PurgedRecords.WithLabelValues(string(t)).Inc()
			case errors.As(err, &conflictErr), errors.As(err, &notFoundErr):
				report.Skipped++
				utils.Logger.WithError(err).Debugf("Retention skipped %s %s", t, id)
			default:
				return report, err
			}
		}
	}

	utils.Logger.WithFields(logrus.Fields{
		"purged":  report.Purged,
		"skipped": report.Skipped,
		"cutoff":  cutoff,
	}).Info("Retention purge finished")
	return report, nil
}
