package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/repositories"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return Wrap(sqlDB, zap.NewNop()), mock
}

var cityRowColumns = []string{"id", "lat_d", "ns", "long_d", "ew", "city", "state", "created_at", "updated_at"}

func TestCityRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCityRepository(db, zap.NewNop())

	city := models.NewCity(41, "N", 80, "W", "Youngstown", "OH")
	mock.ExpectQuery("INSERT INTO cities").
		WithArgs(41, "N", 80, "W", "Youngstown", "OH", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	err := repo.Create(context.Background(), city)
	require.NoError(t, err)
	assert.Equal(t, int64(7), city.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_GetByID(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCityRepository(db, zap.NewNop())

		mock.ExpectQuery("SELECT (.+) FROM cities WHERE id = \\$1").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(cityRowColumns).
				AddRow(3, 39, "N", 75, "W", "Wilmington", "DE", now, now))

		city, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Wilmington", city.Name)
		assert.Equal(t, 39, city.LatD)
		assert.Equal(t, "DE", city.State)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCityRepository(db, zap.NewNop())

		mock.ExpectQuery("SELECT (.+) FROM cities WHERE id = \\$1").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(cityRowColumns))

		_, err := repo.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCityRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCityRepository(db, zap.NewNop())
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM cities ORDER BY id").
		WillReturnRows(sqlmock.NewRows(cityRowColumns).
			AddRow(1, 41, "N", 80, "W", "Youngstown", "OH", now, now).
			AddRow(2, 42, "N", 97, "W", "Yankton", "SD", now, now))

	cities, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Yankton", cities[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCityRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM cities").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(128))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(128), n)
}

func TestCityRepository_Update(t *testing.T) {
	t.Run("updates row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCityRepository(db, zap.NewNop())

		city := &models.City{ID: 5, LatD: 10, NS: "S", LongD: 20, EW: "E", Name: "Lima", State: "LI"}
		mock.ExpectExec("UPDATE cities").
			WithArgs(int64(5), 10, "S", 20, "E", "Lima", "LI", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), city))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows affected", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCityRepository(db, zap.NewNop())

		mock.ExpectExec("UPDATE cities").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), &models.City{ID: 404})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCityRepository_Delete(t *testing.T) {
	t.Run("deletes row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCityRepository(db, zap.NewNop())

		mock.ExpectExec("DELETE FROM cities WHERE id = \\$1").
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), 5))
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCityRepository(db, zap.NewNop())

		mock.ExpectExec("DELETE FROM cities").WillReturnError(errors.New("connection reset"))

		err := repo.Delete(context.Background(), 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete city")
		assert.NotErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCityRepository_CreateBatchInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCityRepository(db, zap.NewNop())
	txMgr := NewTransactionManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO cities").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO cities").WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	cities := []*models.City{
		models.NewCity(1, "N", 1, "W", "A", "AA"),
		models.NewCity(2, "N", 2, "W", "B", "BB"),
	}
	err := txMgr.InTransaction(context.Background(), func(ctx context.Context, _ repositories.Transaction) error {
		return repo.CreateBatch(ctx, cities)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch row 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_InitSchema(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(schemaVersion).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_HealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB, zap.NewNop())

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	require.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
