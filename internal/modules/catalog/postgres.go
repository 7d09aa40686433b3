package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, category, price, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Category, p.Price, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *postgresRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p := &Product{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, category, price, is_active, created_at, updated_at
		FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error) {
	query := `SELECT id, name, category, price, is_active, created_at, updated_at FROM products`
	var clauses []string
	var args []interface{}
	if category != "" {
		args = append(args, category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if activeOnly {
		clauses = append(clauses, "is_active")
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p := &Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products SET name=$1, category=$2, price=$3, is_active=$4, updated_at=$5
		WHERE id=$6`,
		p.Name, p.Category, p.Price, p.IsActive, time.Now(), p.ID)
	return err
}

// SaveRule replaces the rule and its items inside a single transaction.
func (r *postgresRepo) SaveRule(ctx context.Context, rule *AddonRule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM addon_rules WHERE product_id=$1`, rule.ProductID)
	if err != nil {
		return fmt.Errorf("delete old rule: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO addon_rules (product_id, free_quantity)
		VALUES ($1, $2) RETURNING id`,
		rule.ProductID, rule.FreeQuantity,
	).Scan(&rule.ID)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}

	for _, item := range rule.Items {
		item.RuleID = rule.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO addon_rule_items (rule_id, addon_product_id, always_charged, position)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			item.RuleID, item.AddonProductID, item.AlwaysCharged, item.Position,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert rule item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetRuleByProduct(ctx context.Context, productID int64) (*AddonRule, error) {
	rule := &AddonRule{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, free_quantity FROM addon_rules WHERE product_id=$1`,
		productID,
	).Scan(&rule.ID, &rule.ProductID, &rule.FreeQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, rule_id, addon_product_id, always_charged, position
		FROM addon_rule_items WHERE rule_id=$1 ORDER BY position`, rule.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := &AddonRuleItem{}
		if err := rows.Scan(&item.ID, &item.RuleID, &item.AddonProductID, &item.AlwaysCharged, &item.Position); err != nil {
			return nil, err
		}
		rule.Items = append(rule.Items, item)
	}
	return rule, rows.Err()
}

func (r *postgresRepo) CreateMethod(ctx context.Context, m *PaymentMethod) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO payment_methods (name, cash_like, is_active)
		VALUES ($1, $2, $3) RETURNING id`,
		m.Name, m.CashLike, m.IsActive,
	).Scan(&m.ID)
}

func (r *postgresRepo) GetMethod(ctx context.Context, id int64) (*PaymentMethod, error) {
	m := &PaymentMethod{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, cash_like, is_active FROM payment_methods WHERE id=$1`, id,
	).Scan(&m.ID, &m.Name, &m.CashLike, &m.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) ListMethods(ctx context.Context) ([]*PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, cash_like, is_active FROM payment_methods ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PaymentMethod
	for rows.Next() {
		m := &PaymentMethod{}
		if err := rows.Scan(&m.ID, &m.Name, &m.CashLike, &m.IsActive); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) CreateNeighborhood(ctx context.Context, n *Neighborhood) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO neighborhoods (name, delivery_fee)
		VALUES ($1, $2) RETURNING id`,
		n.Name, n.DeliveryFee,
	).Scan(&n.ID)
}

func (r *postgresRepo) GetNeighborhood(ctx context.Context, id int64) (*Neighborhood, error) {
	n := &Neighborhood{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, delivery_fee FROM neighborhoods WHERE id=$1`, id,
	).Scan(&n.ID, &n.Name, &n.DeliveryFee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNeighborhoodNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *postgresRepo) ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, delivery_fee FROM neighborhoods ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Neighborhood
	for rows.Next() {
		n := &Neighborhood{}
		if err := rows.Scan(&n.ID, &n.Name, &n.DeliveryFee); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
