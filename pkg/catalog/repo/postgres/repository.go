package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

//go:embed schema.sql
var schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements catalog.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// EnsureSchema creates the products table when it does not exist yet
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return r.handlePostgresError("ensure schema", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrProductNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", catalog.ErrUniqueViolation, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%s violates constraint %s", operation, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const productColumns = `id, sku, name, price, images, created_at, updated_at`

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Images, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list products", err)
	}
	defer rows.Close()

	products := []*catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, r.handlePostgresError("list products", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list products", err)
	}

	return products, nil
}

func (r *Repository) ListSKUs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT sku FROM products ORDER BY created_at`)
	if err != nil {
		return nil, r.handlePostgresError("list skus", err)
	}

	skus, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, r.handlePostgresError("list skus", err)
	}
	if skus == nil {
		skus = []string{}
	}
	return skus, nil
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get product", err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *catalog.Product) error {
	query := `
		INSERT INTO products (sku, name, price, images)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	images := product.Images
	if images == nil {
		images = []string{}
	}

	err := r.db.QueryRow(ctx, query, product.SKU, product.Name, product.Price, images).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create product", err)
	}

	product.Images = images
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *catalog.Product) error {
	query := `
		UPDATE products SET
			sku = $2, name = $3, price = $4, images = $5, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	images := product.Images
	if images == nil {
		images = []string{}
	}

	err := r.db.QueryRow(ctx, query, product.ID, product.SKU, product.Name, product.Price, images).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update product", err)
	}

	product.Images = images
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, r.handlePostgresError("delete product", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ catalog.Repository = (*Repository)(nil)
