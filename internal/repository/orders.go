package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/shoes_shop/internal/domain"
)

const orderHeaderColumns = `o.id, o.order_date, o.delivery_date, o.pickup_code,
	o.customer_id, u.full_name, o.status_id, s.name, o.pickup_point_id, pp.address`

const orderHeaderJoins = `FROM orders o
	JOIN users u ON u.id = o.customer_id
	JOIN order_statuses s ON s.id = o.status_id
	JOIN pickup_points pp ON pp.id = o.pickup_point_id`

// CreateOrder inserts the header and every line item in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO orders (order_date, delivery_date, pickup_code, customer_id, status_id, pickup_point_id)
		          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := tx.QueryRowContext(ctx, query,
			order.OrderDate,
			order.DeliveryDate,
			order.PickupCode,
			order.CustomerID,
			order.StatusID,
			order.PickupPointID,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return insertItems(ctx, tx, id, order.Items)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ReplaceOrder drops the stored lines of the order, updates its header and
// inserts the new lines, all in one transaction.
func (r *Repository) ReplaceOrder(ctx context.Context, order *domain.Order) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}

		query := `UPDATE orders
		          SET order_date = $1, delivery_date = $2, pickup_code = $3,
		              customer_id = $4, status_id = $5, pickup_point_id = $6
		          WHERE id = $7`
		res, err := tx.ExecContext(ctx, query,
			order.OrderDate,
			order.DeliveryDate,
			order.PickupCode,
			order.CustomerID,
			order.StatusID,
			order.PickupPointID,
			order.ID,
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := requireAffected(res, ErrOrderNotFound); err != nil {
			return err
		}

		return insertItems(ctx, tx, order.ID, order.Items)
	})
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []domain.LineItem) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("prepare insert order item: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, orderID, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return fmt.Errorf("insert order item %d: %w", item.ProductID, err)
		}
	}
	return nil
}

// DeleteOrder removes the order; its line items go with it through ON DELETE CASCADE.
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return requireAffected(res, ErrOrderNotFound)
	})
}

func (r *Repository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderHeaderColumns + ` ` + orderHeaderJoins + ` WHERE o.id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.listItems(ctx, `WHERE oi.order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []domain.LineItem{}
	}
	return order, nil
}

// ListOrders returns every order with its lines, newest order date first.
func (r *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderHeaderColumns + ` ` + orderHeaderJoins + ` ORDER BY o.order_date DESC, o.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	items, err := r.listItems(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = items[order.ID]
		if order.Items == nil {
			order.Items = []domain.LineItem{}
		}
	}
	return orders, nil
}

func (r *Repository) listItems(ctx context.Context, where string, args ...any) (map[int64][]domain.LineItem, error) {
	query := `SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price
	          FROM order_items oi
	          JOIN products p ON p.id = oi.product_id ` + where + ` ORDER BY oi.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]domain.LineItem)
	for rows.Next() {
		var (
			orderID int64
			item    domain.LineItem
		)
		if err := rows.Scan(
			&item.ID,
			&orderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.OrderDate,
		&order.DeliveryDate,
		&order.PickupCode,
		&order.CustomerID,
		&order.CustomerName,
		&order.StatusID,
		&order.StatusName,
		&order.PickupPointID,
		&order.PickupPointAddress,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM order_statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query statuses: %w", err)
	}
	defer rows.Close()

	var statuses []domain.Status
	for rows.Next() {
		var s domain.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return statuses, nil
}

func (r *Repository) ListPickupPoints(ctx context.Context) ([]domain.PickupPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, address FROM pickup_points ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("query pickup points: %w", err)
	}
	defer rows.Close()

	var points []domain.PickupPoint
	for rows.Next() {
		var p domain.PickupPoint
		if err := rows.Scan(&p.ID, &p.Address); err != nil {
			return nil, fmt.Errorf("scan pickup point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return points, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
