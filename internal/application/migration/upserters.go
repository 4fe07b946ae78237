package migrationapp

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storekit/backend/internal/domain/bulk"
	"github.com/storekit/backend/internal/domain/catalog"
	"github.com/storekit/backend/internal/domain/integration"
	"github.com/storekit/backend/internal/domain/partner"
	"github.com/storekit/backend/internal/domain/trade"
)

// UpsertDeps carries the repositories the per-entity upserters write to
type UpsertDeps struct {
	Products    catalog.ProductRepository
	Collections catalog.CollectionRepository
	Customers   partner.CustomerRepository
	Orders      trade.OrderRepository
}

// entityUpserter drains the source for one entity type, upserting each
// record and recording outcomes on the job. tick is called once per
// processed item. The returned error is a run-level pagination failure;
// individual record failures are recorded on the job instead.
type entityUpserter func(ctx context.Context, s *MigrationService, storeID uuid.UUID, job *bulk.ImportJob, tick func()) error

func buildUpserters(deps UpsertDeps) map[bulk.EntityType]entityUpserter {
	return map[bulk.EntityType]entityUpserter{
		bulk.EntityProducts: func(ctx context.Context, s *MigrationService, storeID uuid.UUID, job *bulk.ImportJob, tick func()) error {
			pager := integration.NewPager(s.source.ListProducts)
			for pager.Next(ctx) {
				for _, ext := range pager.Page() {
					s.upsertProduct(ctx, deps, storeID, job, ext)
					tick()
				}
			}
			return pager.Err()
		},
		bulk.EntityCollections: func(ctx context.Context, s *MigrationService, storeID uuid.UUID, job *bulk.ImportJob, tick func()) error {
			pager := integration.NewPager(s.source.ListCollections)
			for pager.Next(ctx) {
				for _, ext := range pager.Page() {
					s.upsertCollection(ctx, deps, storeID, job, ext)
					tick()
				}
			}
			return pager.Err()
		},
		bulk.EntityCustomers: func(ctx context.Context, s *MigrationService, storeID uuid.UUID, job *bulk.ImportJob, tick func()) error {
			pager := integration.NewPager(s.source.ListCustomers)
			for pager.Next(ctx) {
				for _, ext := range pager.Page() {
					s.upsertCustomer(ctx, deps, storeID, job, ext)
					tick()
				}
			}
			return pager.Err()
		},
		bulk.EntityOrders: func(ctx context.Context, s *MigrationService, storeID uuid.UUID, job *bulk.ImportJob, tick func()) error {
			pager := integration.NewPager(s.source.ListOrders)
			for pager.Next(ctx) {
				for _, ext := range pager.Page() {
					s.upsertOrder(ctx, deps, storeID, job, ext)
					tick()
				}
			}
			return pager.Err()
		},
	}
}

func (s *MigrationService) upsertProduct(ctx context.Context, deps UpsertDeps, storeID uuid.UUID, job *bulk.ImportJob, ext integration.ExternalProduct) {
	product, err := TransformProduct(storeID, s.sourceTag, ext)
	if err != nil {
		job.RecordFailure(ext.ID, err.Error())
		return
	}
	if err := deps.Products.Upsert(ctx, product); err != nil {
		job.RecordFailure(ext.ID, err.Error())
		s.logger.Warn("product upsert failed", zap.String("external_id", ext.ID), zap.Error(err))
		return
	}
	job.RecordImported()
}

func (s *MigrationService) upsertCollection(ctx context.Context, deps UpsertDeps, storeID uuid.UUID, job *bulk.ImportJob, ext integration.ExternalCollection) {
	collection, err := TransformCollection(storeID, s.sourceTag, ext)
	if err != nil {
		job.RecordFailure(ext.ID, err.Error())
		return
	}
	if err := deps.Collections.Upsert(ctx, collection); err != nil {
		job.RecordFailure(ext.ID, err.Error())
		s.logger.Warn("collection upsert failed", zap.String("external_id", ext.ID), zap.Error(err))
		return
	}
	job.RecordImported()
}

func (s *MigrationService) upsertCustomer(ctx context.Context, deps UpsertDeps, storeID uuid.UUID, job *bulk.ImportJob, ext integration.ExternalCustomer) {
	customer, addresses, err := TransformCustomer(storeID, s.sourceTag, ext)
	if err != nil {
		job.RecordFailure(ext.ID, err.Error())
		return
	}
	if err := deps.Customers.Upsert(ctx, customer); err != nil {
		job.RecordFailure(ext.ID, err.Error())
		s.logger.Warn("customer upsert failed", zap.String("external_id", ext.ID), zap.Error(err))
		return
	}
	if err := deps.Customers.ReplaceAddresses(ctx, customer.ID, addresses); err != nil {
		job.RecordFailure(ext.ID, err.Error())
		s.logger.Warn("customer address replace failed", zap.String("external_id", ext.ID), zap.Error(err))
		return
	}
	job.RecordImported()
}

func (s *MigrationService) upsertOrder(ctx context.Context, deps UpsertDeps, storeID uuid.UUID, job *bulk.ImportJob, ext integration.ExternalOrder) {
	order, lineItems, refunds, err := TransformOrder(storeID, s.sourceTag, ext)
	if err != nil {
		job.RecordFailure(ext.ID, err.Error())
		return
	}
	if err := deps.Orders.Upsert(ctx, order); err != nil {
		job.RecordFailure(ext.ID, err.Error())
		s.logger.Warn("order upsert failed", zap.String("external_id", ext.ID), zap.Error(err))
		return
	}
	if err := deps.Orders.ReplaceLineItems(ctx, order.ID, lineItems); err != nil {
		job.RecordFailure(ext.ID, err.Error())
		s.logger.Warn("order line item replace failed", zap.String("external_id", ext.ID), zap.Error(err))
		return
	}
	if err := deps.Orders.ReplaceRefunds(ctx, order.ID, refunds); err != nil {
		job.RecordFailure(ext.ID, err.Error())
		s.logger.Warn("order refund replace failed", zap.String("external_id", ext.ID), zap.Error(err))
		return
	}
	job.RecordImported()
}
