package persistence

import (
	"context"

	appinventory "github.com/retailops/backend/internal/application/inventory"
	apptransfer "github.com/retailops/backend/internal/application/transfer"
	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/receiving"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/transfer"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory application's
// TransactionScope on a real database transaction
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&inventoryTxRepositories{tx: tx})
	})
}

type inventoryTxRepositories struct {
	tx *gorm.DB
}

func (r *inventoryTxRepositories) StockRecords() inventory.StockRecordRepository {
	return NewGormStockRecordRepository(r.tx)
}

// GormTransferTransactionScope implements the transfer application's
// TransactionScope on a real database transaction
type GormTransferTransactionScope struct {
	db *gorm.DB
}

// NewGormTransferTransactionScope creates a new GormTransferTransactionScope
func NewGormTransferTransactionScope(db *gorm.DB) *GormTransferTransactionScope {
	return &GormTransferTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransferTransactionScope) Execute(ctx context.Context, fn func(repos apptransfer.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&transferTxRepositories{tx: tx})
	})
}

type transferTxRepositories struct {
	tx *gorm.DB
}

func (r *transferTxRepositories) TransferOrders() transfer.TransferOrderRepository {
	return NewGormTransferOrderRepository(r.tx)
}

func (r *transferTxRepositories) StockRecords() inventory.StockRecordRepository {
	return NewGormStockRecordRepository(r.tx)
}

func (r *transferTxRepositories) Schedules() receiving.ScheduleRepository {
	return NewGormScheduleRepository(r.tx)
}

func (r *transferTxRepositories) ReceivingLogs() receiving.LogRepository {
	return NewGormLogRepository(r.tx)
}

func (r *transferTxRepositories) Requests() replenishment.RequestRepository {
	return NewGormRequestRepository(r.tx)
}

var _ appinventory.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ apptransfer.TransactionScope = (*GormTransferTransactionScope)(nil)
