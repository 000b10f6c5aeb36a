package transfer

import (
	"context"

	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/receiving"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the repositories the
// transfer workflow touches. A transition and its ledger mutation commit
// or roll back together: an order is never dispatched without the source
// decrement and never completed without the destination increment.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories bound to the
// current transaction.
type TransactionalRepositories interface {
	// TransferOrders returns the transfer order repository scoped to the current transaction
	TransferOrders() transfer.TransferOrderRepository
	// StockRecords returns the stock record repository scoped to the current transaction
	StockRecords() inventory.StockRecordRepository
	// Schedules returns the receiving schedule repository scoped to the current transaction
	Schedules() receiving.ScheduleRepository
	// ReceivingLogs returns the receiving log repository scoped to the current transaction
	ReceivingLogs() receiving.LogRepository
	// Requests returns the replenishment request repository scoped to the current transaction
	Requests() replenishment.RequestRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	transferRepo transfer.TransferOrderRepository
	stockRepo    inventory.StockRecordRepository
	scheduleRepo receiving.ScheduleRepository
	logRepo      receiving.LogRepository
	requestRepo  replenishment.RequestRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transferRepo transfer.TransferOrderRepository,
	stockRepo inventory.StockRecordRepository,
	scheduleRepo receiving.ScheduleRepository,
	logRepo receiving.LogRepository,
	requestRepo replenishment.RequestRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transferRepo: transferRepo,
		stockRepo:    stockRepo,
		scheduleRepo: scheduleRepo,
		logRepo:      logRepo,
		requestRepo:  requestRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransferOrders returns the transfer order repository.
func (s *NoOpTransactionScope) TransferOrders() transfer.TransferOrderRepository {
	return s.transferRepo
}

// StockRecords returns the stock record repository.
func (s *NoOpTransactionScope) StockRecords() inventory.StockRecordRepository {
	return s.stockRepo
}

// Schedules returns the receiving schedule repository.
func (s *NoOpTransactionScope) Schedules() receiving.ScheduleRepository {
	return s.scheduleRepo
}

// ReceivingLogs returns the receiving log repository.
func (s *NoOpTransactionScope) ReceivingLogs() receiving.LogRepository {
	return s.logRepo
}

// Requests returns the replenishment request repository.
func (s *NoOpTransactionScope) Requests() replenishment.RequestRepository {
	return s.requestRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
