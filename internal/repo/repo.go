// Package repo stores inspector accounts and profiles in PostgreSQL.
package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

var ErrNotFound = errors.New("inspector not found")

// Profile is the public view of an inspector account.
type Profile struct {
	ID                 int       `json:"id"`
	Login              string    `json:"login"`
	Email              string    `json:"email"`
	Description        string    `json:"description"`
	AvatarURL          string    `json:"avatar_url"`
	CertificationLevel string    `json:"certification_level"`
	DefaultStandard    string    `json:"default_standard"`
	CreatedAt          time.Time `json:"created_at"`
}

type ProfileUpdate struct {
	Login              string
	Description        string
	CertificationLevel string
	DefaultStandard    string
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	// GetBylogin returns id 0 and no error when the login is unknown.
	GetBylogin(ctx context.Context, login string) (int, string, error)
	GetProfileByID(ctx context.Context, id int) (Profile, error)
	UpdateProfile(ctx context.Context, id int, u ProfileUpdate) (Profile, error)
	UpdateAvatar(ctx context.Context, id int, url string) error
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Migrate creates the inspectors table when missing.
func (r *PostgresUserRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO inspectors (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM inspectors WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

const profileColumns = "id, login, email, description, avatar_url, certification_level, default_standard, created_at"

func scanProfile(row *sql.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Login, &p.Email, &p.Description, &p.AvatarURL,
		&p.CertificationLevel, &p.DefaultStandard, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresUserRepository) GetProfileByID(ctx context.Context, id int) (Profile, error) {
	query := "SELECT " + profileColumns + " FROM inspectors WHERE id=$1"
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id int, u ProfileUpdate) (Profile, error) {
	query := `UPDATE inspectors
		SET login=$2, description=$3, certification_level=$4, default_standard=$5
		WHERE id=$1
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, query, id, u.Login, u.Description, u.CertificationLevel, u.DefaultStandard))
}

func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id int, url string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE inspectors SET avatar_url=$2 WHERE id=$1", id, url)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
