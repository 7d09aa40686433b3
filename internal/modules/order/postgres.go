package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// CreateOrder inserts the order and all its items inside a single transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders
		  (service_type, customer_name, customer_phone, neighborhood_id,
		   delivery_fee, total, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		o.ServiceType, o.CustomerName, o.CustomerPhone, o.NeighborhoodID,
		o.DeliveryFee, o.Total, o.Status, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o := &Order{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, service_type, customer_name, customer_phone, neighborhood_id,
		       delivery_fee, total, status, notes, created_at, updated_at
		FROM orders WHERE id=$1`, id,
	).Scan(&o.ID, &o.ServiceType, &o.CustomerName, &o.CustomerPhone, &o.NeighborhoodID,
		&o.DeliveryFee, &o.Total, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListOrders(ctx context.Context, status string) ([]*Order, error) {
	query := `SELECT id, service_type, customer_name, customer_phone, neighborhood_id,
	                 delivery_fee, total, status, notes, created_at, updated_at
	          FROM orders`
	var args []interface{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o := &Order{}
		err := rows.Scan(&o.ID, &o.ServiceType, &o.CustomerName, &o.CustomerPhone, &o.NeighborhoodID,
			&o.DeliveryFee, &o.Total, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := r.loadChildren(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateOrder replaces the order row and its items. Payments are untouched;
// they only ever change through AppendPayment and RemovePayment.
func (r *postgresRepo) UpdateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET total=$1, status=$2, notes=$3, updated_at=$4 WHERE id=$5`,
		o.Total, o.Status, o.Notes, time.Now(), o.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendPayment writes the payment row and the order's derived status in a
// single transaction so the ledger and the status can never diverge.
func (r *postgresRepo) AppendPayment(ctx context.Context, o *Order, p *Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, order_id, method_id, method_name, amount, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.OrderID, p.MethodID, p.MethodName, p.Amount, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`,
		o.Status, time.Now(), o.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) RemovePayment(ctx context.Context, o *Order, paymentID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id=$1 AND order_id=$2`, paymentID, o.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPaymentNotFound
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`,
		o.Status, time.Now(), o.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func insertItems(ctx context.Context, tx *sql.Tx, o *Order) error {
	for _, item := range o.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, o.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		for pos, a := range item.Addons {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_item_addons (item_id, product_id, price, position)
				VALUES ($1,$2,$3,$4)`,
				item.ID, a.ProductID, a.Price, pos)
			if err != nil {
				return fmt.Errorf("insert item addon: %w", err)
			}
		}
	}
	return nil
}

func (r *postgresRepo) loadChildren(ctx context.Context, o *Order) error {
	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, quantity, unit_price, line_total
		FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item := &LineItem{}
		if err := itemRows.Scan(&item.ID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	for _, item := range o.Items {
		addonRows, err := r.db.QueryContext(ctx, `
			SELECT product_id, price FROM order_item_addons
			WHERE item_id=$1 ORDER BY position`, item.ID)
		if err != nil {
			return err
		}
		for addonRows.Next() {
			a := &ItemAddon{}
			if err := addonRows.Scan(&a.ProductID, &a.Price); err != nil {
				addonRows.Close()
				return err
			}
			item.Addons = append(item.Addons, a)
		}
		if err := addonRows.Err(); err != nil {
			addonRows.Close()
			return err
		}
		addonRows.Close()
	}

	payRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, method_id, method_name, amount, created_at
		FROM payments WHERE order_id=$1 ORDER BY created_at, id`, o.ID)
	if err != nil {
		return err
	}
	defer payRows.Close()

	for payRows.Next() {
		p := &Payment{}
		if err := payRows.Scan(&p.ID, &p.OrderID, &p.MethodID, &p.MethodName, &p.Amount, &p.CreatedAt); err != nil {
			return err
		}
		o.Payments = append(o.Payments, p)
	}
	return payRows.Err()
}
