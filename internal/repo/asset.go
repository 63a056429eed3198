package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/hci-itam/internal/models"
	"github.com/lib/pq"
)

// ErrAssetNotFound is returned when no row has the requested asset_id.
var ErrAssetNotFound = errors.New("asset not found")

// ========================
// REPOSITORY STRUCT
// ========================

type AssetRepo struct {
	DB *sql.DB
}

func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{DB: db}
}

const assetColumns = `asset_id, category, type, brand, model, serial_number, asset_tag, department, location, condition, status, notes, os_name, os_version, firmware_version, ip_address, created_at, updated_at`

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (models.Record, error) {
	var (
		rec    models.Record
		serial sql.NullString
	)
	err := s.Scan(
		&rec.AssetID, &rec.Category, &rec.Type, &rec.Brand, &rec.Model, &serial,
		&rec.AssetTag, &rec.Department, &rec.Location, &rec.Condition, &rec.Status, &rec.Notes,
		&rec.OSName, &rec.OSVersion, &rec.FirmwareVersion, &rec.IPAddress,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return models.Record{}, err
	}
	if serial.Valid {
		rec.SerialNumber = &serial.String
	}
	return rec, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ========================
// LIST BY CATEGORY
// ========================

// ListByCategory returns every record of category ordered by asset_id.
func (r *AssetRepo) ListByCategory(ctx context.Context, category string) ([]models.Record, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE category = $1 ORDER BY asset_id`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ========================
// GET BY ASSET ID
// ========================

func (r *AssetRepo) Get(ctx context.Context, assetID string) (models.Record, error) {
	rec, err := scanRecord(r.DB.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE asset_id = $1`,
		assetID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrAssetNotFound
	}
	return rec, err
}

// ========================
// SUMMARY
// ========================

// Summary counts the records of c by status, type and department.
func (r *AssetRepo) Summary(ctx context.Context, c models.Category) (models.Summary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, type, department, COUNT(*) FROM assets
		 WHERE category = $1
		 GROUP BY status, type, department`,
		c.Name,
	)
	if err != nil {
		return models.Summary{}, err
	}
	defer rows.Close()

	s := models.NewSummary(c)
	for rows.Next() {
		var (
			status          models.Status
			typ, department string
			n               int
		)
		if err := rows.Scan(&status, &typ, &department, &n); err != nil {
			return models.Summary{}, err
		}
		s.Total += n
		s.ByStatus[status] += n
		s.ByType[typ] += n
		s.ByDepartment[department] += n
	}
	if err := rows.Err(); err != nil {
		return models.Summary{}, err
	}
	return s, nil
}

// ========================
// CREATE
// ========================

// Create inserts rec. A duplicate asset_id fails with a unique violation.
func (r *AssetRepo) Create(ctx context.Context, rec models.Record) (models.Record, error) {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO assets (asset_id, category, type, brand, model, serial_number, asset_tag, department, location, condition, status, notes, os_name, os_version, firmware_version, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at, updated_at`,
		insertArgs(rec)...,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

func insertArgs(rec models.Record) []any {
	return []any{
		rec.AssetID, rec.Category, rec.Type, rec.Brand, rec.Model, nullable(rec.SerialNumber),
		rec.AssetTag, rec.Department, rec.Location, rec.Condition, string(rec.Status), rec.Notes,
		rec.OSName, rec.OSVersion, rec.FirmwareVersion, rec.IPAddress,
	}
}

// ========================
// UPDATE BY ASSET ID
// ========================

// Update replaces every writable column of the row keyed by assetID.
func (r *AssetRepo) Update(ctx context.Context, assetID string, rec models.Record) (models.Record, error) {
	rec.AssetID = assetID
	err := r.DB.QueryRowContext(ctx,
		`UPDATE assets
		 SET category = $2, type = $3, brand = $4, model = $5, serial_number = $6, asset_tag = $7,
		     department = $8, location = $9, condition = $10, status = $11, notes = $12,
		     os_name = $13, os_version = $14, firmware_version = $15, ip_address = $16, updated_at = NOW()
		 WHERE asset_id = $1
		 RETURNING created_at, updated_at`,
		insertArgs(rec)...,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrAssetNotFound
	}
	if err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

// ========================
// DELETE
// ========================

func (r *AssetRepo) Delete(ctx context.Context, assetID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM assets WHERE asset_id = $1`, assetID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// DeleteByCategory removes every record of category and returns how many went.
func (r *AssetRepo) DeleteByCategory(ctx context.Context, category string) (int, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM assets WHERE category = $1`, category)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// ========================
// IMPORT
// ========================

// IDs returns every asset_id in use for category.
func (r *AssetRepo) IDs(ctx context.Context, category string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT asset_id FROM assets WHERE category = $1`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Import inserts recs in one transaction. Rows whose asset_id already exists
// are skipped, not overwritten.
func (r *AssetRepo) Import(ctx context.Context, recs []models.Record) (imported, skipped int, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assets (asset_id, category, type, brand, model, serial_number, asset_tag, department, location, condition, status, notes, os_name, os_version, firmware_version, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (asset_id) DO NOTHING`)
	if err != nil {
		return 0, 0, err
	}
	defer stmt.Close()

	for _, rec := range recs {
		res, execErr := stmt.ExecContext(ctx, insertArgs(rec)...)
		if execErr != nil {
			err = execErr
			return 0, 0, err
		}
		n, raErr := res.RowsAffected()
		if raErr != nil {
			err = raErr
			return 0, 0, err
		}
		if n == 0 {
			skipped++
		} else {
			imported++
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	return imported, skipped, nil
}
