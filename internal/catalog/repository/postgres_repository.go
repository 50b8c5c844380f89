package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/domain"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	// DecrementStock takes one unit off the product's stock as a single
	// conditional write: the update applies only while stock > 0, so two
	// concurrent purchasers can never both take the last unit.
	DecrementStock(ctx context.Context, id string) error
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

const productColumns = `id, name, description, price, category, image_url, placeholder_glyph, stock, created_at, updated_at`

func scanProduct(row interface {
	Scan(dest ...interface{}) error
}, p *domain.Product) error {
	var imageURL, glyph sql.NullString
	var category string
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &category,
		&imageURL, &glyph, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	p.Category = domain.Category(category)
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	if glyph.Valid {
		p.PlaceholderGlyph = &glyph.String
	}
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ListProducts: query failed", err)
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			logger.Error("ListProducts: scan failed", err)
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		logger.Error("ListProducts: rows iteration error", err)
		return nil, err
	}
	return products, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	var p domain.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO products (name, description, price, category, image_url, placeholder_glyph, stock, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at, updated_at`

	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, string(product.Category),
		nullable(product.ImageURL), nullable(product.PlaceholderGlyph),
		product.Stock, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		// '23514' is check_violation (stock < 0 guard in the schema)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			logger.Error("CreateProduct: check violation", err)
			return &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
		}
		logger.Error("CreateProduct: failed to insert product", err)
		return err
	}
	return nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `UPDATE products
              SET name = $1, description = $2, price = $3, category = $4,
                  image_url = $5, placeholder_glyph = $6, stock = $7, updated_at = $8
              WHERE id = $9`

	product.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, string(product.Category),
		nullable(product.ImageURL), nullable(product.PlaceholderGlyph),
		product.Stock, product.UpdatedAt, product.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			logger.Error("UpdateProduct: check violation", err)
			return &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
		}
		logger.Error("UpdateProduct: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.Error("DeleteProduct: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresProductRepository) DecrementStock(ctx context.Context, id string) error {
	query := `UPDATE products SET stock = stock - 1, updated_at = NOW()
              WHERE id = $1 AND stock > 0`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("DecrementStock: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 1 {
		return nil
	}

	// Zero rows affected: either the product does not exist or its
	// stock is already zero. Probe to tell the two apart.
	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		logger.Error("DecrementStock: existence probe failed", err)
		return err
	}
	if !exists {
		return ErrProductNotFound
	}
	return ErrOutOfStock
}

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
