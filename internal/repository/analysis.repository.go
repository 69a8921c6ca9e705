package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/stocknotifier-service/internal/entity"
)

type AnalysisRepository struct {
	db *sqlx.DB
}

func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(ctx context.Context, record *entity.IndicatorAnalysisRecord) error {
	var metrics any
	if len(record.Metrics) > 0 {
		metrics = string(record.Metrics)
	}

	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(record.TableName()).
		Columns(
			"symbol",
			"strategy",
			"timeframe",
			"metrics",
			"analysis_time",
			"rsi_status",
			"rsi_value",
			"macd_status",
			"macd_value",
			"macd_signal_value",
			"kd_status",
			"k_value",
			"d_value",
		).
		Values(
			record.Symbol,
			record.Strategy,
			record.Timeframe,
			metrics,
			record.AnalysisTime,
			record.RsiStatus,
			record.RsiValue,
			record.MacdStatus,
			record.MacdValue,
			record.MacdSignalValue,
			record.KdStatus,
			record.KValue,
			record.DValue,
		).
		Suffix("RETURNING id, created_at")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRowxContext(ctx, query, args...).Scan(&record.ID, &record.CreatedAt)
}

// GetAll returns records newest first, filtered by symbol when one is given.
func (r *AnalysisRepository) GetAll(ctx context.Context, symbol string) ([]entity.IndicatorAnalysisRecord, error) {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From(entity.IndicatorAnalysisRecord{}.TableName()).
		OrderBy("created_at desc", "id desc")

	if symbol = strings.TrimSpace(symbol); symbol != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"symbol": symbol})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	records := []entity.IndicatorAnalysisRecord{}
	err = r.db.SelectContext(ctx, &records, query, args...)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id int64) (*entity.IndicatorAnalysisRecord, error) {
	var record entity.IndicatorAnalysisRecord
	err := r.db.GetContext(ctx, &record, "SELECT * FROM indicator_analysis_records WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
