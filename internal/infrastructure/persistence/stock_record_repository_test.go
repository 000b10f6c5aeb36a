package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockStockRecordRepository creates a GormStockRecordRepository with a mocked SQL connection
func newMockStockRecordRepository(t *testing.T) (*GormStockRecordRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockRecordRepository(gormDB), mock, mockDB
}

func stockRecordRows(record *inventory.StockRecord) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "product_id", "product_name", "location_id", "location_name",
		"region", "total_stock", "available", "version",
	}).AddRow(
		record.ID, record.ProductID, record.ProductName, record.LocationID, record.LocationName,
		record.Region, record.TotalStock, record.Available, record.Version,
	)
}

func TestGormStockRecordRepository_FindByKey(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		record, err := inventory.NewStockRecord("PROD-001", "STORE-EAST-01", "Espresso Beans 1kg", "Downtown East", "EAST", decimal.NewFromInt(200))
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE product_id = \$1 AND location_id = \$2`).
			WithArgs("PROD-001", "STORE-EAST-01", 1).
			WillReturnRows(stockRecordRows(record))

		found, err := repo.FindByKey(context.Background(), "PROD-001", "STORE-EAST-01")

		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, "PROD-001", found.ProductID)
		assert.Equal(t, "STORE-EAST-01", found.LocationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing record", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE product_id = \$1 AND location_id = \$2`).
			WithArgs("PROD-001", "STORE-EAST-01", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByKey(context.Background(), "PROD-001", "STORE-EAST-01")

		assert.Error(t, err)
		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockRecordRepository_FindByLocation(t *testing.T) {
	t.Run("finds records at a location", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		record, err := inventory.NewStockRecord("PROD-001", "WH-EAST", "Espresso Beans 1kg", "East Region DC", "EAST", decimal.NewFromInt(1000))
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE location_id = \$1`).
			WillReturnRows(stockRecordRows(record))

		records, err := repo.FindByLocation(context.Background(), "WH-EAST", shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "WH-EAST", records[0].LocationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockRecordRepository_Count(t *testing.T) {
	t.Run("counts records matching filter", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_records" WHERE region = \$1`).
			WithArgs("EAST").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

		filter := shared.Filter{Filters: map[string]interface{}{"region": "EAST"}}
		count, err := repo.Count(context.Background(), filter)

		assert.NoError(t, err)
		assert.Equal(t, int64(6), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockRecordRepository_ApplyDelta(t *testing.T) {
	prototype := func(t *testing.T) *inventory.StockRecord {
		record, err := inventory.NewStockRecord("PROD-001", "STORE-EAST-01", "Espresso Beans 1kg", "Downtown East", "EAST", decimal.NewFromInt(200))
		require.NoError(t, err)
		return record
	}

	t.Run("applies delta to existing record", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		proto := prototype(t)

		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		after := prototype(t)
		after.Available = decimal.NewFromInt(30)
		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE product_id = \$1 AND location_id = \$2`).
			WithArgs("PROD-001", "STORE-EAST-01", 1).
			WillReturnRows(stockRecordRows(after))

		record, err := repo.ApplyDelta(context.Background(), proto, decimal.NewFromInt(30))

		assert.NoError(t, err)
		assert.NotNil(t, record)
		assert.True(t, record.Available.Equal(decimal.NewFromInt(30)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates missing record then applies delta", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		proto := prototype(t)

		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "stock_records"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		after := prototype(t)
		after.Available = decimal.NewFromInt(10)
		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE product_id = \$1 AND location_id = \$2`).
			WithArgs("PROD-001", "STORE-EAST-01", 1).
			WillReturnRows(stockRecordRows(after))

		record, err := repo.ApplyDelta(context.Background(), proto, decimal.NewFromInt(10))

		assert.NoError(t, err)
		assert.True(t, record.Available.Equal(decimal.NewFromInt(10)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects negative delta below zero", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		proto := prototype(t)

		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "stock_records"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		current := prototype(t)
		current.Available = decimal.NewFromInt(10)
		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE product_id = \$1 AND location_id = \$2`).
			WithArgs("PROD-001", "STORE-EAST-01", 1).
			WillReturnRows(stockRecordRows(current))

		record, err := repo.ApplyDelta(context.Background(), proto, decimal.NewFromInt(-20))

		assert.Nil(t, record)
		assert.Equal(t, shared.ErrOutOfStock, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects delta above capacity", func(t *testing.T) {
		repo, mock, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		proto := prototype(t)

		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "stock_records"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE "stock_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		current := prototype(t)
		current.Available = decimal.NewFromInt(190)
		mock.ExpectQuery(`SELECT \* FROM "stock_records" WHERE product_id = \$1 AND location_id = \$2`).
			WithArgs("PROD-001", "STORE-EAST-01", 1).
			WillReturnRows(stockRecordRows(current))

		record, err := repo.ApplyDelta(context.Background(), proto, decimal.NewFromInt(50))

		assert.Nil(t, record)
		assert.Equal(t, shared.ErrCapacityExceeded, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects zero delta without touching the database", func(t *testing.T) {
		repo, _, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		record, err := repo.ApplyDelta(context.Background(), prototype(t), decimal.Zero)

		assert.Nil(t, record)
		assert.Equal(t, shared.ErrInvalidQuantity, err)
	})
}

func TestGormStockRecordRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements StockRecordRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockStockRecordRepository(t)
		defer mockDB.Close()

		var _ inventory.StockRecordRepository = repo
	})
}
