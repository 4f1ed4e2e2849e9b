package repositories

import (
	"context"
	"time"

	"mini-shop/models"

	"github.com/shopspring/decimal"
)

type productRepo struct {
	db DBTX
}

const productColumns = `id, name, description, price::text, stock, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	var p models.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByID(ctx context.Context, id int) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err = classify(err, "Product"); models.KindOf(err) == models.KindNotFound {
			return nil, models.ProductNotFound(id)
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, classify(err, "list products")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, classify(err, "scan product")
		}
		products = append(products, *p)
	}
	return products, classify(rows.Err(), "list products")
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.Price.String(), product.Stock, now, now,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return classify(err, "create product")
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products SET name = $1, description = $2, price = $3::numeric, stock = $4, updated_at = $5
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.Price.String(), product.Stock, time.Now(), product.ID,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if err = classify(err, "Product"); models.KindOf(err) == models.KindNotFound {
			return models.ProductNotFound(product.ID)
		}
		return err
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return models.Conflict("Product is referenced by existing orders", err)
		}
		return classify(err, "delete product")
	}
	if tag.RowsAffected() == 0 {
		return models.ProductNotFound(id)
	}
	return nil
}
