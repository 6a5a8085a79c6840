package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/mydutch/internal/common"
	"github.com/dmitrijs2005/mydutch/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userColumns() []string {
	return []string{"id", "email", "password_hash", "full_name", "auth_provider", "provider_id",
		"is_active", "is_verified", "created_at", "updated_at", "last_login_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\b.*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("a@x.com", sqlmock.AnyArg(), sqlmock.AnyArg(), "email", nil, true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("u1", now, now))

	hash := "digest"
	u, err := repo.Create(context.Background(), &models.User{
		Email:        "a@x.com",
		PasswordHash: &hash,
		AuthProvider: models.AuthProviderEmail,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("expected DB-assigned id, got %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\b`

	mock.ExpectQuery(q).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	hash := "digest"
	_, err := repo.Create(context.Background(), &models.User{
		Email:        "a@x.com",
		PasswordHash: &hash,
		AuthProvider: models.AuthProviderEmail,
		IsActive:     true,
	})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users\b`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@x.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`

	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow("u1", "a@x.com", "digest", "Alice", "email", nil, true, false, now, now, nil)

	mock.ExpectQuery(q).WithArgs("a@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u1" || got.PasswordHash == nil || *got.PasswordHash != "digest" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.LastLoginAt != nil {
		t.Fatalf("expected nil last_login_at, got %v", got.LastLoginAt)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`).
		WithArgs("missing@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_NullableFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`

	now := time.Now()
	rows := sqlmock.NewRows(userColumns()).
		AddRow("u2", "oauth@x.com", nil, nil, "google", "google-123", true, true, now, now, now)

	mock.ExpectQuery(q).WithArgs("u2").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PasswordHash != nil {
		t.Fatalf("OAuth user must have nil password hash, got %v", *got.PasswordHash)
	}
	if got.ProviderID == nil || *got.ProviderID != "google-123" {
		t.Fatalf("unexpected provider id: %+v", got)
	}
	if got.LastLoginAt == nil {
		t.Fatalf("expected last_login_at to be set")
	}
}

func TestUpdateLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+last_login_at\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1\s*$`

	at := time.Now()
	mock.ExpectExec(q).WithArgs("u1", at).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLastLogin(context.Background(), "u1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateLastLogin_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+users\s+SET\s+last_login_at`).
		WillReturnError(errors.New("db err"))

	err := repo.UpdateLastLogin(context.Background(), "u1", time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
