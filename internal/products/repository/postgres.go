package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"product-inventory/internal/products"

	"github.com/lib/pq"
)

const (
	healthCheckTimeout = 2 * time.Second

	// SQLSTATE unique_violation.
	pgUniqueViolation = "23505"
)

const productColumns = `id, article, name, price, quantity, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, in products.Input) (products.Product, error) {
	query := `
		INSERT INTO products (article, name, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query, in.Article, in.Name, in.Price, in.Quantity)
	p, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return products.Product{}, products.ErrDuplicateArticle
		}
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) FindByArticle(ctx context.Context, article string) (products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE article = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, article))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("find product by article: %w", err)
	}
	return p, nil
}

// Update writes the mutable columns only; id and created_at never change.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in products.Input) error {
	query := `
		UPDATE products
		SET article = $1, name = $2, price = $3, quantity = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query, in.Article, in.Name, in.Price, in.Quantity, id)
	if err != nil {
		if isUniqueViolation(err) {
			return products.ErrDuplicateArticle
		}
		return fmt.Errorf("update product %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return products.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return products.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]products.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]products.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func scanProduct(row rowScanner) (products.Product, error) {
	var p products.Product
	err := row.Scan(&p.ID, &p.Article, &p.Name, &p.Price, &p.Quantity, &p.CreatedAt)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}
