package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/stocknotifier-service/internal/entity"
)

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert(order.TableName()).
		Columns(
			"symbol",
			"price",
			"qty",
			"quote_order_qty",
			"action",
			"trader_no",
			"strategy",
		).
		Values(
			order.Symbol,
			order.Price,
			order.Qty,
			order.QuoteOrderQty,
			order.Action,
			order.TraderNo,
			order.Strategy,
		).
		Suffix("RETURNING id, created_at")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRowxContext(ctx, query, args...).Scan(&order.ID, &order.CreatedAt)
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	return r.selectOrders(ctx, nil)
}

// GetOpen returns orders that were never terminated.
func (r *OrderRepository) GetOpen(ctx context.Context) ([]entity.Order, error) {
	return r.selectOrders(ctx, sq.Eq{"terminate_time": nil})
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	var order entity.Order
	err := r.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) selectOrders(ctx context.Context, where sq.Sqlizer) ([]entity.Order, error) {
	queryBuilder := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From(entity.Order{}.TableName()).
		OrderBy("created_at desc", "id desc")
	if where != nil {
		queryBuilder = queryBuilder.Where(where)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	orders := []entity.Order{}
	err = r.db.SelectContext(ctx, &orders, query, args...)
	if err != nil {
		return nil, err
	}

	return orders, nil
}
