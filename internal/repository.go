package internal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/cornell-dti/curaise-sub000/internal/migrations"
	"github.com/cornell-dti/curaise-sub000/internal/model"
)

const orderFields = "id, buyer_id, fundraiser_id, payment_method, payment_status, picked_up, created_at, updated_at"

type IRepository interface {
	GetOrderByID(context.Context, string) (model.Order, error)
	GetItemsByID(context.Context, []string) ([]model.Item, error)
	UpdateOrderPayment(context.Context, string, string, string) (model.Order, error)
	ListOrdersByFundraiser(context.Context, string) ([]model.Order, error)
	SetPickupCompleted(context.Context, string) error
}

type Repository struct {
	Conn   *sql.DB
	Logger *zap.SugaredLogger
}

func NewRepository(connString string, logger *zap.SugaredLogger) (*Repository, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err = migrate(db); err != nil {
		return nil, err
	}

	return &Repository{Conn: db, Logger: logger}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

func (r Repository) GetOrderByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	row := r.Conn.QueryRowContext(ctx, "SELECT "+orderFields+" FROM orders WHERE id = $1", orderID)
	err := row.Scan(&o.ID, &o.BuyerID, &o.FundraiserID, &o.PaymentMethod, &o.PaymentStatus, &o.PickedUp, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, err
	}

	rows, err := r.Conn.QueryContext(ctx, "SELECT item_id, quantity FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return model.Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var l model.OrderLine
		if err = rows.Scan(&l.ItemID, &l.Quantity); err != nil {
			return model.Order{}, err
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

func (r Repository) GetItemsByID(ctx context.Context, ids []string) ([]model.Item, error) {
	items := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		var i model.Item
		row := r.Conn.QueryRowContext(ctx, "SELECT id, fundraiser_id, name, price, on_sale FROM items WHERE id = $1", id)
		err := row.Scan(&i.ID, &i.FundraiserID, &i.Name, &i.Price, &i.OnSale)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, nil
}

// UpdateOrderPayment advances the payment state. The status guard in the
// WHERE clause makes a repeated confirmation a no-op and keeps the update
// safe under concurrent duplicate deliveries.
func (r Repository) UpdateOrderPayment(ctx context.Context, orderID, method, status string) (model.Order, error) {
	_, err := r.Conn.ExecContext(ctx,
		"UPDATE orders SET payment_method = $1, payment_status = $2, updated_at = $3 WHERE id = $4 AND payment_status <> $2",
		method, status, time.Now(), orderID)
	if err != nil {
		return model.Order{}, err
	}

	return r.GetOrderByID(ctx, orderID)
}

func (r Repository) ListOrdersByFundraiser(ctx context.Context, fundraiserID string) ([]model.Order, error) {
	rows, err := r.Conn.QueryContext(ctx,
		"SELECT "+orderFields+" FROM orders WHERE fundraiser_id = $1 ORDER BY created_at DESC, id", fundraiserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	index := make(map[string]int)
	for rows.Next() {
		var o model.Order
		err = rows.Scan(&o.ID, &o.BuyerID, &o.FundraiserID, &o.PaymentMethod, &o.PaymentStatus, &o.PickedUp, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := r.Conn.QueryContext(ctx,
		"SELECT oi.order_id, oi.item_id, i.name, i.price, oi.quantity FROM order_items oi "+
			"JOIN items i ON i.id = oi.item_id JOIN orders o ON o.id = oi.order_id "+
			"WHERE o.fundraiser_id = $1 ORDER BY oi.order_id, oi.id", fundraiserID)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID string
		var l model.OrderLine
		err = lineRows.Scan(&orderID, &l.ItemID, &l.Name, &l.UnitPrice, &l.Quantity)
		if err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return orders, lineRows.Err()
}

func (r Repository) SetPickupCompleted(ctx context.Context, orderID string) error {
	res, err := r.Conn.ExecContext(ctx,
		"UPDATE orders SET picked_up = TRUE, updated_at = $1 WHERE id = $2", time.Now(), orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
