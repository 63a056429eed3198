package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/hci-itam/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users \(username, password_hash, role\)`).
		WithArgs("alice", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).AddRow(1, "alice", "admin"))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Role != models.RoleAdmin || user.PasswordHash != "" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create_HashesPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("bob", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).AddRow(2, "bob", "viewer"))

	user, err := NewUserRepo(db).Create(context.Background(), "bob", "hunter22")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")) != nil {
		t.Errorf("password hash does not verify: %q", user.PasswordHash)
	}
	if user.CanWrite() {
		t.Error("second user should be a viewer")
	}
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs("charlie").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role"}).AddRow(2, "charlie", nil, "viewer"))

	repo := NewUserRepo(db)
	user, err := repo.GetByUsername(context.Background(), "charlie")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if user.ID != 2 || user.Username != "charlie" || user.PasswordHash != "" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, password_hash, role`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err = NewUserRepo(db).GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
}

func TestAuditRepo_LogAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_log \(user_id, action, resource_id, details\)`).
		WithArgs(1, models.AuditUpdate, "SRV-001", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT a.id, a.user_id, COALESCE\(u.username, ''\), .* FROM audit_log a LEFT JOIN users u`).
		WithArgs("SRV-001", "", 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "action", "resource_id", "details", "created_at"}).
			AddRow(1, 1, "alice", "update", "SRV-001", "", time.Now()))

	repo := NewAuditRepo(db)
	if err := repo.Log(context.Background(), 1, models.AuditUpdate, "SRV-001", ""); err != nil {
		t.Fatalf("Log: %v", err)
	}
	entries, err := repo.List(context.Background(), AuditFilter{ResourceID: "SRV-001", Limit: 50})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ResourceID != "SRV-001" || entries[0].Username != "alice" {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
