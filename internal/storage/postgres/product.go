package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/velostore/internal/domain/product"
)

const (
	productColumns = `id, name, category, price, description, image,
		spec_frame, spec_gears, spec_brakes, spec_weight,
		detail_frame, detail_gears, detail_brakes, detail_cockpit,
		performance, featured, featured_badge, featured_reason, sales_count`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			description = EXCLUDED.description,
			image = EXCLUDED.image,
			spec_frame = EXCLUDED.spec_frame,
			spec_gears = EXCLUDED.spec_gears,
			spec_brakes = EXCLUDED.spec_brakes,
			spec_weight = EXCLUDED.spec_weight,
			detail_frame = EXCLUDED.detail_frame,
			detail_gears = EXCLUDED.detail_gears,
			detail_brakes = EXCLUDED.detail_brakes,
			detail_cockpit = EXCLUDED.detail_cockpit,
			performance = EXCLUDED.performance,
			featured = EXCLUDED.featured,
			featured_badge = EXCLUDED.featured_badge,
			featured_reason = EXCLUDED.featured_reason,
			sales_count = EXCLUDED.sales_count`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts or replaces products in a single batch.
func (r *ProductRepository) Upsert(ctx context.Context, products []product.Product) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProductSQL,
			p.ID, p.Name, string(p.Category), p.Price, p.Description, p.Image,
			p.Specs.Frame, p.Specs.Gears, p.Specs.Brakes, p.Specs.Weight,
			p.DetailImages.Frame, p.DetailImages.Gears, p.DetailImages.Brakes, p.DetailImages.Cockpit,
			p.Performance, p.Featured.Enabled, p.Featured.Badge, p.Featured.Reason, p.Featured.SalesCount,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting products: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p        product.Product
		category string
	)
	err := row.Scan(
		&p.ID, &p.Name, &category, &p.Price, &p.Description, &p.Image,
		&p.Specs.Frame, &p.Specs.Gears, &p.Specs.Brakes, &p.Specs.Weight,
		&p.DetailImages.Frame, &p.DetailImages.Gears, &p.DetailImages.Brakes, &p.DetailImages.Cockpit,
		&p.Performance, &p.Featured.Enabled, &p.Featured.Badge, &p.Featured.Reason, &p.Featured.SalesCount,
	)
	p.Category = product.Category(category)
	return p, err
}
