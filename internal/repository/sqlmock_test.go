package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestLotRepository_SetQtyIf_SQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLotRepository(db)

	mock.ExpectExec(`UPDATE "stock_lots" SET "qty"=\$1 WHERE .*id = \$2 AND qty = \$3`).
		WithArgs(1.5, 7, 2.5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err := repo.SetQtyIfTx(db, 7, 2.5, 1.5)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(`UPDATE "stock_lots" SET "qty"=\$1`).
		WithArgs(1.5, 7, 2.5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err = repo.SetQtyIfTx(db, 7, 2.5, 1.5)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLotRepository_DeleteIfQty_PropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLotRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectExec(`DELETE FROM "stock_lots" WHERE .*id = \$1 AND qty = \$2`).
		WithArgs(3, 1.0).
		WillReturnError(boom)

	ok, err := repo.DeleteIfQtyTx(db, 3, 1.0)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepository_RollsBackWithCaller(t *testing.T) {
	db, mock := newMockDB(t)
	movements := NewMovementRepository(db)
	events := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "movements" WHERE lot_id IN \(\$1,\$2\)`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "events"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := movements.DeleteByLotIDsTx(tx, []uint{1, 2}); err != nil {
			return err
		}
		_, err := events.ClearTx(tx)
		return err
	})
	assert.EqualError(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}
