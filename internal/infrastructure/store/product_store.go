package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/lib/pq"
)

const productColumns = `product_id, name, description, price, category, stock, image_url, is_active, created_at, updated_at`

// PostgresProductStore implements product.Repository.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) Insert(ctx context.Context, p *product.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ProductID, p.Name, p.Description, p.Price, p.Category, p.Stock, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return apperror.Storage("insert product", err)
}

func (s *PostgresProductStore) Update(ctx context.Context, p *product.Product) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			name = $2, description = $3, price = $4, category = $5,
			stock = $6, image_url = $7, is_active = $8, updated_at = $9
		WHERE product_id = $1
	`, p.ProductID, p.Name, p.Description, p.Price, p.Category, p.Stock, p.ImageURL, p.IsActive, p.UpdatedAt)
	return apperror.Storage("update product", err)
}

func (s *PostgresProductStore) FindByID(ctx context.Context, productID string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, productID)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Storage("find product", err)
	}
	return p, nil
}

func (s *PostgresProductStore) FindByIDs(ctx context.Context, productIDs []string) ([]*product.Product, error) {
	if len(productIDs) == 0 {
		return []*product.Product{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_id = ANY($1)`,
		pq.Array(productIDs),
	)
	if err != nil {
		return nil, apperror.Storage("find products", err)
	}
	return collectProducts(rows)
}

func (s *PostgresProductStore) List(ctx context.Context, opts product.ListOptions) ([]*product.Product, error) {
	var (
		conds []string
		args  []any
	)
	if opts.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		conds = append(conds, "(name ILIKE $1 OR description ILIKE $1)")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Storage("list products", err)
	}
	return collectProducts(rows)
}

func (s *PostgresProductStore) Delete(ctx context.Context, productID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return false, apperror.Storage("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Storage("delete product", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ProductID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]*product.Product, error) {
	defer rows.Close()

	products := make([]*product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.Storage("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("scan product", err)
	}
	return products, nil
}

// escapeLike escapes the LIKE wildcards in s.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
