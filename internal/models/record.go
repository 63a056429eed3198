package models

import "time"

// Record is an asset row as the store keeps it. The name, description, checked
// flag and remark are packed into Notes; see package codec.
type Record struct {
	AssetID         string    `json:"asset_id" validate:"required,max=64"`
	Category        string    `json:"category" validate:"required"`
	Type            string    `json:"type" validate:"max=255"`
	Brand           string    `json:"brand" validate:"max=255"`
	Model           string    `json:"model" validate:"max=255"`
	SerialNumber    *string   `json:"serial_number" validate:"omitempty,max=255"`
	AssetTag        string    `json:"asset_tag" validate:"max=255"`
	Department      string    `json:"department" validate:"max=255"`
	Location        string    `json:"location" validate:"max=255"`
	Condition       string    `json:"condition" validate:"max=255"`
	Status          Status    `json:"status" validate:"omitempty,oneof=available pending_for_signature in_use maintenance retired"`
	Notes           string    `json:"notes" validate:"max=4000"`
	OSName          string    `json:"os_name,omitempty" validate:"max=255"`
	OSVersion       string    `json:"os_version,omitempty" validate:"max=255"`
	FirmwareVersion string    `json:"firmware_version,omitempty" validate:"max=255"`
	IPAddress       string    `json:"ip_address,omitempty" validate:"omitempty,ip"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}
