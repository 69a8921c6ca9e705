package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guregu/null/v6"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var analysisColumns = []string{
	"id", "symbol", "strategy", "timeframe", "metrics", "analysis_time",
	"rsi_status", "rsi_value", "macd_status", "macd_value", "macd_signal_value",
	"kd_status", "k_value", "d_value", "created_at",
}

func TestAnalysisRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalysisRepository(db)

	createdAt := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO indicator_analysis_records (symbol,strategy,timeframe,metrics,analysis_time,")).
		WithArgs("2330", "rsi-macd", "1d", `{"rsi":28.4}`, "2024-05-01T09:00:00Z",
			"oversold", "28.4", nil, nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), createdAt))

	record := &entity.IndicatorAnalysisRecord{
		Symbol:       null.StringFrom("2330"),
		Strategy:     null.StringFrom("rsi-macd"),
		Timeframe:    null.StringFrom("1d"),
		Metrics:      []byte(`{"rsi":28.4}`),
		AnalysisTime: null.StringFrom("2024-05-01T09:00:00Z"),
		RsiStatus:    null.StringFrom("oversold"),
		RsiValue:     decimal.NewNullDecimal(decimal.RequireFromString("28.4")),
	}
	require.NoError(t, repo.Create(context.Background(), record))
	require.Equal(t, int64(11), record.ID)
	require.Equal(t, createdAt, record.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryCreateWithoutMetrics(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalysisRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO indicator_analysis_records")).
		WithArgs("2330", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), time.Now()))

	record := &entity.IndicatorAnalysisRecord{Symbol: null.StringFrom("2330")}
	require.NoError(t, repo.Create(context.Background(), record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryGetAllBySymbol(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalysisRepository(db)

	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM indicator_analysis_records WHERE symbol = $1 ORDER BY created_at desc, id desc")).
		WithArgs("2330").
		WillReturnRows(sqlmock.NewRows(analysisColumns).
			AddRow(int64(3), "2330", "rsi-macd", "1d", []byte(`{"rsi":70.2}`), nil,
				"overbought", "70.2", "bullish", "1.25", "0.9", nil, nil, nil, now))

	records, err := repo.GetAll(context.Background(), " 2330 ")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.JSONEq(t, `{"rsi":70.2}`, string(records[0].Metrics))
	require.Equal(t, "overbought", records[0].RsiStatus.String)
	require.Equal(t, "0.9", records[0].MacdSignalValue.Decimal.String())
	require.False(t, records[0].KValue.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryGetAllWithoutFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalysisRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM indicator_analysis_records ORDER BY created_at desc, id desc")).
		WillReturnRows(sqlmock.NewRows(analysisColumns))

	records, err := repo.GetAll(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}
