// Package client talks to the asset store and converts between its raw records
// and decoded models.Asset values. Notes text never leaves this package and the
// store's import path; callers only see AttributeBundle.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/crucial707/hci-itam/internal/codec"
	"github.com/crucial707/hci-itam/internal/models"
)

// Store is the set of operations the inventory needs from the backend.
type Store interface {
	List(ctx context.Context, category string) ([]RawRecord, error)
	Create(ctx context.Context, rec RawRecord) (RawRecord, error)
	Update(ctx context.Context, id string, rec RawRecord) (RawRecord, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, category string) (BulkDeleteResult, error)
	ImportRows(ctx context.Context, category, filename string, file io.Reader) (ImportResult, error)
	DownloadTemplate(ctx context.Context, category string) ([]byte, error)
}

// RawRecord is a record as the store keeps it, notes still encoded.
type RawRecord = models.Record

// BulkDeleteResult is returned by BulkDelete.
type BulkDeleteResult struct {
	DeletedCount int `json:"deleted_count"`
}

// ImportResult is returned by ImportRows.
type ImportResult struct {
	ImportedCount int `json:"imported_count"`
	SkippedCount  int `json:"skipped_count"`
}

// TransportError means no response reached the client.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StoreError is a rejection returned by the store, e.g. a validation failure.
type StoreError struct {
	StatusCode int
	Message    string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsStoreError returns the store rejection inside err, if any.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	ok := errors.As(err, &se)
	return se, ok
}

// ToAsset decodes rec using the codec of its category. Records of unknown
// categories are decoded with the generic asset labels.
func ToAsset(rec RawRecord) models.Asset {
	c, err := models.LookupCategory(rec.Category)
	if err != nil {
		c = models.MustCategory(models.CategoryAsset)
	}
	return models.Asset{
		ID:              rec.AssetID,
		Category:        rec.Category,
		Type:            rec.Type,
		Brand:           rec.Brand,
		Model:           rec.Model,
		SerialNumber:    rec.SerialNumber,
		AssetTag:        rec.AssetTag,
		Department:      rec.Department,
		Location:        rec.Location,
		Condition:       rec.Condition,
		Status:          rec.Status,
		Attributes:      codec.New(c).Decode(rec.Notes),
		OSName:          rec.OSName,
		OSVersion:       rec.OSVersion,
		FirmwareVersion: rec.FirmwareVersion,
		IPAddress:       rec.IPAddress,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// FromAsset encodes a for category c. Extension columns c does not carry are dropped.
func FromAsset(c models.Category, a models.Asset) RawRecord {
	rec := RawRecord{
		AssetID:      a.ID,
		Category:     c.Name,
		Type:         a.Type,
		Brand:        a.Brand,
		Model:        a.Model,
		SerialNumber: a.SerialNumber,
		AssetTag:     a.AssetTag,
		Department:   a.Department,
		Location:     a.Location,
		Condition:    a.Condition,
		Status:       a.Status,
		Notes:        codec.New(c).Encode(a.Attributes),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if c.Has(models.ExtOSName) {
		rec.OSName = a.OSName
	}
	if c.Has(models.ExtOSVersion) {
		rec.OSVersion = a.OSVersion
	}
	if c.Has(models.ExtFirmwareVersion) {
		rec.FirmwareVersion = a.FirmwareVersion
	}
	if c.Has(models.ExtIPAddress) {
		rec.IPAddress = a.IPAddress
	}
	return rec
}

// ToAssets decodes every record.
func ToAssets(recs []RawRecord) []models.Asset {
	out := make([]models.Asset, len(recs))
	for i, r := range recs {
		out[i] = ToAsset(r)
	}
	return out
}
