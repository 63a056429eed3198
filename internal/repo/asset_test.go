package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/hci-itam/internal/models"
	"github.com/lib/pq"
)

var recordColumns = []string{
	"asset_id", "category", "type", "brand", "model", "serial_number", "asset_tag", "department",
	"location", "condition", "status", "notes", "os_name", "os_version", "firmware_version",
	"ip_address", "created_at", "updated_at",
}

func TestAssetRepo_ListByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT asset_id, category, .* FROM assets WHERE category = \$1 ORDER BY asset_id`).
		WithArgs("server").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("SRV-001", "server", "rack", "Dell", "R740", "SN-9", "", "IT", "DC1", "good", "in_use",
				"Server: db-1 | Description:  | Asset Checked: Yes | Remark: ", "Ubuntu", "24.04", "", "", now, now).
			AddRow("SRV-002", "server", "", "", "", nil, "", "", "", "", "available", "", "", "", "", "", now, now))

	repo := NewAssetRepo(db)
	recs, err := repo.ListByCategory(context.Background(), "server")
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].SerialNumber == nil || *recs[0].SerialNumber != "SN-9" || recs[0].OSName != "Ubuntu" {
		t.Errorf("unexpected first record: %+v", recs[0])
	}
	if recs[1].SerialNumber != nil || recs[1].Status != models.StatusAvailable {
		t.Errorf("unexpected second record: %+v", recs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_ListByCategory_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT asset_id, category`).
		WithArgs("printer").
		WillReturnRows(sqlmock.NewRows(recordColumns))

	recs, err := NewAssetRepo(db).ListByCategory(context.Background(), "printer")
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", recs)
	}
}

func TestAssetRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO assets \(asset_id, category, .*\) VALUES .* RETURNING created_at, updated_at`).
		WithArgs("RTR-001", "router", "", "Cisco", "ISR", nil, "", "", "", "", "available",
			"Router: edge-1 | Description:  | Asset Checked: No | Remark: ", "", "", "17.3", "10.0.0.1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewAssetRepo(db)
	rec, err := repo.Create(context.Background(), models.Record{
		AssetID: "RTR-001", Category: "router", Brand: "Cisco", Model: "ISR", Status: models.StatusAvailable,
		Notes:           "Router: edge-1 | Description:  | Asset Checked: No | Remark: ",
		FirmwareVersion: "17.3", IPAddress: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.AssetID != "RTR-001" || !rec.CreatedAt.Equal(now) {
		t.Errorf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO assets`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err = NewAssetRepo(db).Create(context.Background(), models.Record{AssetID: "SRV-001", Category: "server"})
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
}

func TestAssetRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE assets`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	_, err = NewAssetRepo(db).Update(context.Background(), "SW-404", models.Record{Category: "switch"})
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Now().Add(-time.Hour)
	now := time.Now()
	mock.ExpectQuery(`UPDATE assets\s+SET category = \$2, .* WHERE asset_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, now))

	rec, err := NewAssetRepo(db).Update(context.Background(), "SW-001", models.Record{AssetID: "ignored", Category: "switch"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.AssetID != "SW-001" || !rec.UpdatedAt.Equal(now) {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestAssetRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM assets WHERE asset_id = \$1`).
		WithArgs("LAP-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM assets WHERE asset_id = \$1`).
		WithArgs("LAP-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAssetRepo(db)
	if err := repo.Delete(context.Background(), "LAP-001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "LAP-404"); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_DeleteByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM assets WHERE category = \$1`).
		WithArgs("monitor").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewAssetRepo(db).DeleteByCategory(context.Background(), "monitor")
	if err != nil || n != 4 {
		t.Errorf("DeleteByCategory = %d, %v", n, err)
	}
}

func TestAssetRepo_Import_SkipsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO assets .* ON CONFLICT \(asset_id\) DO NOTHING`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	imported, skipped, err := NewAssetRepo(db).Import(context.Background(), []models.Record{
		{AssetID: "DESK-001", Category: "desktop"},
		{AssetID: "DESK-002", Category: "desktop"},
		{AssetID: "DESK-003", Category: "desktop"},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported != 2 || skipped != 1 {
		t.Errorf("imported=%d skipped=%d, want 2/1", imported, skipped)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_Import_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO assets`)
	prep.ExpectExec().WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err = NewAssetRepo(db).Import(context.Background(), []models.Record{{AssetID: "PRT-001", Category: "printer"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAssetRepo_IDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT asset_id FROM assets WHERE category = \$1`).
		WithArgs("firewall").
		WillReturnRows(sqlmock.NewRows([]string{"asset_id"}).AddRow("FW-001").AddRow("FW-007"))

	ids, err := NewAssetRepo(db).IDs(context.Background(), "firewall")
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	if len(ids) != 2 || ids[1] != "FW-007" {
		t.Errorf("ids = %v", ids)
	}
}

func TestAssetRepo_Summary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT status, type, department, COUNT\(\*\) FROM assets\s+WHERE category = \$1\s+GROUP BY status, type, department`).
		WithArgs("laptop").
		WillReturnRows(sqlmock.NewRows([]string{"status", "type", "department", "count"}).
			AddRow("in_use", "ultrabook", "IT", 3).
			AddRow("in_use", "ultrabook", "Finance", 1).
			AddRow("available", "workstation", "", 2))

	s, err := NewAssetRepo(db).Summary(context.Background(), models.MustCategory(models.CategoryLaptop))
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Category != "laptop" || s.Total != 6 {
		t.Errorf("unexpected totals: %+v", s)
	}
	if s.ByStatus[models.StatusInUse] != 4 || s.ByStatus[models.StatusAvailable] != 2 {
		t.Errorf("by status: %v", s.ByStatus)
	}
	if n, ok := s.ByStatus[models.StatusMaintenance]; !ok || n != 0 {
		t.Errorf("maintenance must be present at zero: %v", s.ByStatus)
	}
	if _, ok := s.ByStatus[models.StatusPendingForSignature]; ok {
		t.Errorf("laptops have no signature-pending status: %v", s.ByStatus)
	}
	if s.ByType["ultrabook"] != 4 || s.ByType["workstation"] != 2 {
		t.Errorf("by type: %v", s.ByType)
	}
	if s.ByDepartment["IT"] != 3 || s.ByDepartment["Finance"] != 1 || s.ByDepartment[""] != 2 {
		t.Errorf("by department: %v", s.ByDepartment)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
