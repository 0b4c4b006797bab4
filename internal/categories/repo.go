package categories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/product"
)

// Repo reads categories off the products table; there is no separate
// categories table.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) List(ctx context.Context) ([]product.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category, count(*)
		FROM products
		GROUP BY category
		ORDER BY category ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []product.Category{}
	for rows.Next() {
		var c product.Category
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
