package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/Aquabet/webapp/internal/model"
)

// ErrDuplicateEmail reports an insert that hit the email unique constraint.
var ErrDuplicateEmail = errors.New("duplicate email")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Ping(ctx context.Context) error
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, account_created, account_updated, verification_token`

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, account_created, account_updated, verification_token)
		VALUES (:id, :email, :password_hash, :first_name, :last_name, :account_created, :account_updated, :verification_token)
	`
	_, err := r.db.NamedExecContext(ctx, query, user)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresUserRepository) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	if err := r.db.GetContext(ctx, &user, query, token); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET password_hash = :password_hash,
		    first_name = :first_name,
		    last_name = :last_name,
		    account_updated = :account_updated,
		    verification_token = :verification_token
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Ping runs a trivial round-trip query so reachability failures surface the
// same way regular queries do.
func (r *postgresUserRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRowxContext(ctx, `SELECT 1`).Scan(&one)
}
