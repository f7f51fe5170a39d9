package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tonmoys423/teashop/internal/domain"
)

type ProductRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByCategory(ctx context.Context, category domain.TeaCategory) ([]domain.Product, error)
}

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(p *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: p}
}

const productColumns = `id, title, price, description, content, image_url,
	category, inventory_count, is_available, weight_grams, origin_country, created_at`

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM teashop.products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category domain.TeaCategory) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM teashop.products WHERE category = $1 ORDER BY created_at, id`,
		category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM teashop.products WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Price, &p.Description, &p.Content, &p.ImageURL,
			&p.Category, &p.InventoryCount, &p.IsAvailable, &p.WeightGrams,
			&p.OriginCountry, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
