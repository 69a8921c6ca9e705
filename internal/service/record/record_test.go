package record

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/guregu/null/v6"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mock       sqlmock.Sqlmock
	redis      *miniredis.Miniredis
	order      *OrderService
	analysis   *AnalysisService
	migrations *MigrationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rawDB.Close() })
	db := sqlx.NewDb(rawDB, "postgres")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	lock := repository.NewRequestLockRepository(client, "stocknotifier")

	return &fixture{
		mock:       mock,
		redis:      mr,
		order:      NewOrderService(repository.NewOrderRepository(db), lock, nil),
		analysis:   NewAnalysisService(repository.NewAnalysisRepository(db), lock, nil),
		migrations: NewMigrationService(repository.NewMigrationRepository(db)),
	}
}

func expectOrderInsert(mock sqlmock.Sqlmock, id int64) {
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, time.Now()))
}

func TestOrderServiceCreate(t *testing.T) {
	f := newFixture(t)
	expectOrderInsert(f.mock, 1)

	order, err := f.order.Create(context.Background(), &entity.Order{Symbol: " 2330 ", Action: null.StringFrom("BUY")}, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), order.ID)
	require.Equal(t, "2330", order.Symbol)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestOrderServiceCreateRequiresSymbol(t *testing.T) {
	f := newFixture(t)

	_, err := f.order.Create(context.Background(), &entity.Order{Symbol: "  "}, "")
	require.ErrorIs(t, err, ErrInvalidPayload)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestOrderServiceCreateRejectsReplay(t *testing.T) {
	f := newFixture(t)
	expectOrderInsert(f.mock, 1)

	_, err := f.order.Create(context.Background(), &entity.Order{Symbol: "2330"}, "key-1")
	require.NoError(t, err)

	_, err = f.order.Create(context.Background(), &entity.Order{Symbol: "2330"}, "key-1")
	require.ErrorIs(t, err, ErrDuplicateRequest)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestOrderServiceCreateFailureReleasesKey(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).WillReturnError(errors.New("connection reset"))
	expectOrderInsert(f.mock, 2)

	_, err := f.order.Create(context.Background(), &entity.Order{Symbol: "2330"}, "key-2")
	require.ErrorIs(t, err, ErrCreateRecordFailed)
	require.False(t, f.redis.Exists("stocknotifier:idempotency:orders:key-2"))

	order, err := f.order.Create(context.Background(), &entity.Order{Symbol: "2330"}, "key-2")
	require.NoError(t, err)
	require.Equal(t, int64(2), order.ID)
}

func TestOrderServiceCreateLockUnavailable(t *testing.T) {
	f := newFixture(t)
	f.redis.Close()

	_, err := f.order.Create(context.Background(), &entity.Order{Symbol: "2330"}, "key-3")
	require.ErrorIs(t, err, ErrRequestLockFailed)
}

func TestOrderServiceGetByIDNotFound(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := f.order.GetByID(context.Background(), 5)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderServiceGetOpenFailure(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE terminate_time IS NULL")).
		WillReturnError(errors.New("timeout"))

	_, err := f.order.GetOpen(context.Background())
	require.ErrorIs(t, err, ErrFetchRecordFailed)
}

func TestAnalysisServiceCreateValidatesMetrics(t *testing.T) {
	f := newFixture(t)

	_, err := f.analysis.Create(context.Background(), &entity.IndicatorAnalysisRecord{Metrics: []byte(`{bad`)}, "")
	require.ErrorIs(t, err, ErrInvalidPayload)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnalysisServiceCreateNullMetrics(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO indicator_analysis_records")).
		WithArgs("2330", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), time.Now()))

	record, err := f.analysis.Create(context.Background(), &entity.IndicatorAnalysisRecord{
		Symbol:  null.StringFrom("2330"),
		Metrics: []byte("null"),
	}, "")
	require.NoError(t, err)
	require.Equal(t, int64(4), record.ID)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAnalysisServiceGetByIDNotFound(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM indicator_analysis_records WHERE id = $1")).
		WillReturnError(sql.ErrNoRows)

	_, err := f.analysis.GetByID(context.Background(), 9)
	require.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestMigrationServiceGetApplied(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM goose_db_version")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version_id", "is_applied", "tstamp"}).
			AddRow(int64(1), int64(20240501000001), true, time.Now()))

	migrations, err := f.migrations.GetApplied(context.Background())
	require.NoError(t, err)
	require.Len(t, migrations, 1)
}
