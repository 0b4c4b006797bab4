package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/user"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already exists")
)

const pgUniqueViolation = "23505"

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, COALESCE(password_hash, ''), role, address, COALESCE(payment_method, ''), created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Address, &u.PaymentMethod, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, ErrUserNotFound
	}
	return u, err
}

func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1,$2,$3,$4)
		RETURNING `+userColumns,
		name, email, passwordHash, role))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return user.User{}, ErrEmailTaken
	}
	return u, err
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *UserRepo) ByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *UserRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET name=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+userColumns, id, name))
}

func (r *UserRepo) UpdateAddress(ctx context.Context, id uuid.UUID, addr user.ShippingAddress) error {
	return r.exec(ctx, `UPDATE users SET address=$2, updated_at=now() WHERE id=$1`, id, addr)
}

func (r *UserRepo) UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method string) error {
	return r.exec(ctx, `UPDATE users SET payment_method=$2, updated_at=now() WHERE id=$1`, id, method)
}

func (r *UserRepo) exec(ctx context.Context, sql string, args ...any) error {
	ct, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
