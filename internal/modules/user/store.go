// README: User store backed by PostgreSQL; runs on the pool or inside a transaction.
package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"travelbook/internal/infra"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("username or email already taken")
)

const uniqueViolation = "23505"

type Store struct {
	db infra.DBTX
}

func NewStore(db infra.DBTX) *Store {
	return &Store{db: db}
}

// Drivers lists every user with the driver role.
func (s *Store) Drivers(ctx context.Context) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, phone FROM users WHERE role = $1`, string(RoleDriver))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// FindByIdentifier resolves a username or a numeric id. Returns ErrNotFound when neither matches.
func (s *Store) FindByIdentifier(ctx context.Context, ident string) (*User, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, username, name, email, phone, address, role, password_hash, created_at
		FROM users
		WHERE username = $1 OR id::text = $1
		ORDER BY (username = $1) DESC
		LIMIT 1`, ident,
	))
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, username, name, email, phone, address, role, password_hash, created_at
		FROM users
		WHERE username = $1`, username,
	))
}

func (s *Store) Create(ctx context.Context, u *User) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (username, name, email, phone, address, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		u.Username, u.Name, u.Email, u.Phone, u.Address, string(u.Role), u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) scanOne(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Phone, &u.Address, &role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
