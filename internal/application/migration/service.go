package migrationapp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storekit/backend/internal/domain/bulk"
	"github.com/storekit/backend/internal/domain/integration"
	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/infrastructure/progress"
)

// jobCheckpointEvery is the number of processed items between
// incremental job saves, so the stored row reflects a run in flight
const jobCheckpointEvery = 25

// MigrationResult summarizes a full migration run
type MigrationResult struct {
	RunID  uuid.UUID         `json:"run_id"`
	Jobs   []*bulk.ImportJob `json:"jobs"`
	Assets *RelocationResult `json:"assets,omitempty"`
}

// Failed reports whether any entity job ended in failure
func (r *MigrationResult) Failed() bool {
	for _, job := range r.Jobs {
		if job.Status == bulk.JobStatusFailed {
			return true
		}
	}
	return false
}

// MigrationService pulls every supported entity type out of the source
// platform and upserts the records into the canonical store. Entity
// types import in dependency order; an individual record failure is
// recorded on its job and the run carries on, while a pagination
// failure fails that entity's job.
type MigrationService struct {
	source    integration.SourceClient
	upserters map[bulk.EntityType]entityUpserter
	jobs      bulk.ImportJobRepository
	relocator *AssetRelocator
	sink      progress.Sink
	logger    *zap.Logger
	sourceTag string
}

// MigrationOption configures a MigrationService
type MigrationOption func(*MigrationService)

// WithAssetRelocation enables the asset relocation phase after all
// entity types have imported
func WithAssetRelocation(relocator *AssetRelocator) MigrationOption {
	return func(s *MigrationService) {
		s.relocator = relocator
	}
}

// WithProgress sets the progress sink
func WithProgress(sink progress.Sink) MigrationOption {
	return func(s *MigrationService) {
		s.sink = sink
	}
}

// NewMigrationService creates a MigrationService
func NewMigrationService(
	source integration.SourceClient,
	deps UpsertDeps,
	jobs bulk.ImportJobRepository,
	sourceTag string,
	logger *zap.Logger,
	opts ...MigrationOption,
) *MigrationService {
	s := &MigrationService{
		source:    source,
		upserters: buildUpserters(deps),
		jobs:      jobs,
		sink:      progress.NopSink{},
		logger:    logger.Named("migration"),
		sourceTag: sourceTag,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run migrates every entity type for a store, then relocates assets
// when a relocator is configured. The returned result carries one job
// per entity type; inspect Failed() for run-level problems.
func (s *MigrationService) Run(ctx context.Context, storeID uuid.UUID) (*MigrationResult, error) {
	runID := uuid.New()
	result := &MigrationResult{RunID: runID}

	order := bulk.MigrationOrder()
	phases := len(order)
	if s.relocator != nil {
		phases++
	}

	for i, entityType := range order {
		job, err := s.runEntity(ctx, storeID, entityType, i, phases)
		if err != nil {
			return result, err
		}
		result.Jobs = append(result.Jobs, job)
	}

	if s.relocator != nil {
		assets, err := s.relocator.Relocate(ctx, storeID, runID)
		if err != nil {
			return result, fmt.Errorf("asset relocation: %w", err)
		}
		result.Assets = assets
	}

	s.sink.Publish(ctx, progress.Snapshot{
		StoreID: storeID,
		Phase:   "complete",
		Percent: 100,
	})
	return result, nil
}

// RunEntity migrates a single entity type for a store
func (s *MigrationService) RunEntity(ctx context.Context, storeID uuid.UUID, entityType bulk.EntityType) (*bulk.ImportJob, error) {
	return s.runEntity(ctx, storeID, entityType, 0, 1)
}

func (s *MigrationService) runEntity(ctx context.Context, storeID uuid.UUID, entityType bulk.EntityType, phase, phases int) (*bulk.ImportJob, error) {
	upsert, ok := s.upserters[entityType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unsupported import entity type")
	}

	job, err := bulk.NewImportJob(storeID, entityType)
	if err != nil {
		return nil, err
	}
	if err := job.Start(); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	log := s.logger.With(
		zap.String("store_id", storeID.String()),
		zap.String("entity_type", string(entityType)),
		zap.String("job_id", job.ID.String()),
	)
	log.Info("entity import started")

	processed := 0
	pageErr := upsert(ctx, s, storeID, job, func() {
		processed++
		s.publishEntityProgress(ctx, storeID, entityType, phase, phases, processed, job)
		if processed%jobCheckpointEvery == 0 {
			if err := s.jobs.Save(ctx, job); err != nil {
				log.Warn("job checkpoint save failed", zap.Error(err))
			}
		}
	})

	job.SetTotalCount(processed)
	if pageErr != nil {
		job.Fail(pageErr.Error())
		log.Error("entity import failed", zap.Error(pageErr))
	} else {
		if err := job.Complete(); err != nil {
			return nil, err
		}
		log.Info("entity import completed",
			zap.Int("imported", job.ImportedCount),
			zap.Int("failed", job.FailedCount),
		)
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	return job, nil
}

// publishEntityProgress credits each phase an equal slice of the
// overall run. Totals are unknown until a pager is exhausted, so the
// within-phase fraction grows asymptotically with the processed count.
func (s *MigrationService) publishEntityProgress(ctx context.Context, storeID uuid.UUID, entityType bulk.EntityType, phase, phases, processed int, job *bulk.ImportJob) {
	slice := 100.0 / float64(phases)
	within := float64(processed) / float64(processed+1)
	s.sink.Publish(ctx, progress.Snapshot{
		StoreID:    storeID,
		Phase:      "import",
		EntityType: string(entityType),
		Current:    processed,
		Percent:    slice*float64(phase) + slice*within,
		Counts: map[string]int{
			"imported": job.ImportedCount,
			"failed":   job.FailedCount,
		},
	})
}
