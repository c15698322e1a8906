package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	authDomain "kospi-treasure/internal/domain/auth"
	authinfra "kospi-treasure/internal/infrastructure/auth"
)

// AuthRepo 提供後台帳號的存取。
type AuthRepo struct {
	db *sql.DB
}

// NewAuthRepo 建立 AuthRepo。
func NewAuthRepo(db *sql.DB) *AuthRepo {
	return &AuthRepo{db: db}
}

const userColumns = `id, email, display_name, password_hash, role, status`

// FindByEmail 依 email 查詢使用者。
func (r *AuthRepo) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1;`
	return r.scanUser(r.db.QueryRowContext(ctx, q, authDomain.NormalizeEmail(email)))
}

// FindByID 依 ID 查詢使用者。
func (r *AuthRepo) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1;`
	return r.scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *AuthRepo) scanUser(row *sql.Row) (authDomain.User, error) {
	var (
		u            authDomain.User
		role, status string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &role, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.User{}, authDomain.ErrUserNotFound
		}
		return authDomain.User{}, err
	}
	u.Role = authDomain.Role(role)
	u.Status = authDomain.Status(status)
	return u, nil
}

// UpsertUser 以 email 為唯一鍵寫入帳號並回傳 id；passwordHash 需為 bcrypt 雜湊。
func (r *AuthRepo) UpsertUser(ctx context.Context, email, name, passwordHash string, role authDomain.Role) (string, error) {
	const q = `
INSERT INTO users (email, display_name, password_hash, role, status)
VALUES ($1, $2, $3, $4, 'active')
ON CONFLICT (email)
DO UPDATE SET display_name = EXCLUDED.display_name, password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
RETURNING id;
`
	var id string
	if err := r.db.QueryRowContext(ctx, q, authDomain.NormalizeEmail(email), name, passwordHash, string(role)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// SeedDefaults 建立預設帳號（admin/analyst/user）。
func (r *AuthRepo) SeedDefaults(ctx context.Context, password string) error {
	hash, err := authinfra.HashPassword(password)
	if err != nil {
		return err
	}
	users := []struct {
		email string
		name  string
		role  authDomain.Role
	}{
		{"admin@example.com", "Admin", authDomain.RoleAdmin},
		{"analyst@example.com", "Analyst", authDomain.RoleAnalyst},
		{"user@example.com", "User", authDomain.RoleUser},
	}
	for _, u := range users {
		if _, err := r.UpsertUser(ctx, u.email, u.name, hash, u.role); err != nil {
			return fmt.Errorf("seed %s: %w", u.email, err)
		}
	}
	return nil
}
