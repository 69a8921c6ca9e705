package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guregu/null/v6"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var orderColumns = []string{
	"id", "symbol", "price", "qty", "quote_order_qty", "action", "trader_no", "strategy",
	"created_at", "terminate_time", "terminate_price",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestOrderRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	createdAt := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO orders (symbol,price,qty,quote_order_qty,action,trader_no,strategy) VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at",
	)).
		WithArgs("2330", "612.5", "1000", nil, "BUY", "T01", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), createdAt))

	order := &entity.Order{
		Symbol:   "2330",
		Price:    decimal.NewNullDecimal(decimal.RequireFromString("612.5")),
		Qty:      decimal.NewNullDecimal(decimal.RequireFromString("1000")),
		Action:   null.StringFrom("BUY"),
		TraderNo: null.StringFrom("T01"),
	}
	require.NoError(t, repo.Create(context.Background(), order))

	require.Equal(t, int64(7), order.ID)
	require.Equal(t, createdAt, order.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryGetOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE terminate_time IS NULL ORDER BY created_at desc, id desc")).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(int64(2), "2317", "101.5", "2000", nil, "BUY", nil, "breakout", now, nil, nil))

	orders, err := repo.GetOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "2317", orders[0].Symbol)
	require.Equal(t, "101.5", orders[0].Price.Decimal.String())
	require.False(t, orders[0].QuoteOrderQty.Valid)
	require.Equal(t, "breakout", orders[0].Strategy.String)
	require.False(t, orders[0].TerminateTime.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryGetAllEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders ORDER BY created_at desc, id desc")).
		WillReturnRows(sqlmock.NewRows(orderColumns))

	orders, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, orders)
	require.Empty(t, orders)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	order, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.Nil(t, order)
	require.NoError(t, mock.ExpectationsWereMet())
}
