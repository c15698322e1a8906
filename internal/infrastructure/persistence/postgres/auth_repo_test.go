package postgres

import (
	"context"
	"errors"
	"testing"

	authDomain "kospi-treasure/internal/domain/auth"

	"github.com/DATA-DOG/go-sqlmock"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "display_name", "password_hash", "role", "status"})
}

func TestAuthRepo_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewAuthRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("test@example.com").
		WillReturnRows(userRows().AddRow("u-1", "test@example.com", "Test User", "hash", "admin", "active"))

	u, err := repo.FindByEmail(context.Background(), " Test@Example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if u.ID != "u-1" || u.Role != authDomain.RoleAdmin || !u.IsActive() {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestAuthRepo_FindByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(userRows())

	_, err = NewAuthRepo(db).FindByID(context.Background(), "missing")
	if !errors.Is(err, authDomain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthRepo_SeedDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	for i, email := range []string{"admin@example.com", "analyst@example.com", "user@example.com"} {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(email, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(i + 1))
	}

	if err := NewAuthRepo(db).SeedDefaults(context.Background(), "password123"); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
