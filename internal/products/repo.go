package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/product"
	"storefront/internal/util"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrSlugTaken = errors.New("product slug already exists")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const productColumns = `id, name, slug, category, images, brand, description, stock, price, rating, num_reviews, is_featured, banner, created_at`

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Category, &p.Images, &p.Brand, &p.Description,
		&p.Stock, &p.Price, &p.Rating, &p.NumReviews, &p.IsFeatured, &p.Banner, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, ErrNotFound
	}
	return p, err
}

func collect(rows pgx.Rows) ([]product.Product, error) {
	defer rows.Close()
	out := []product.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Latest(ctx context.Context, limit int) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) Featured(ctx context.Context, limit int) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_featured = true
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

type ListFilter struct {
	Category string
	Query    string
	Page     int
	Limit    int
}

// List returns one page of products plus the total number of matches.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]product.Product, int, error) {
	where := []string{"true"}
	args := []any{}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	_, offset := util.Page(f.Page, f.Limit)
	args = append(args, f.Limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, productColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (product.Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (product.Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

type CreateProductInput struct {
	Name        string
	Category    string
	Brand       string
	Description string
	Images      []string
	Stock       int
	Price       string
	IsFeatured  bool
	Banner      *string
}

func (r *Repo) Create(ctx context.Context, in CreateProductInput) (product.Product, error) {
	if in.Images == nil {
		in.Images = []string{}
	}
	p, err := scanProduct(r.db.QueryRow(ctx, `
		INSERT INTO products (name, slug, category, images, brand, description, stock, price, is_featured, banner)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8::numeric,$9,$10)
		RETURNING `+productColumns,
		in.Name, util.Slugify(in.Name, "product"), in.Category, in.Images, in.Brand, in.Description,
		in.Stock, in.Price, in.IsFeatured, in.Banner))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return product.Product{}, ErrSlugTaken
	}
	return p, err
}
