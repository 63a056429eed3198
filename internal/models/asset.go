package models

import "time"

// Status is the lifecycle state stored in the status column.
type Status string

const (
	StatusAvailable           Status = "available"
	StatusPendingForSignature Status = "pending_for_signature"
	StatusInUse               Status = "in_use"
	StatusMaintenance         Status = "maintenance"
	StatusRetired             Status = "retired"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusAvailable, StatusPendingForSignature, StatusInUse, StatusMaintenance, StatusRetired,
}

// ValidFor reports whether s is an allowed status for the category.
// The signature-pending state only exists for servers.
func (s Status) ValidFor(c Category) bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusRetired:
		return true
	case StatusPendingForSignature:
		return c.Name == CategoryServer
	}
	return false
}

// AttributeBundle holds the attributes that have no column of their own and
// therefore travel inside the notes field.
type AttributeBundle struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Checked     bool   `json:"checked"`
	Remark      string `json:"remark"`
}

// Asset is one tracked record with its notes already decoded.
type Asset struct {
	ID           string          `json:"asset_id"`
	Category     string          `json:"category"`
	Type         string          `json:"type"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	SerialNumber *string         `json:"serial_number,omitempty"`
	AssetTag     string          `json:"asset_tag"`
	Department   string          `json:"department"`
	Location     string          `json:"location"`
	Condition    string          `json:"condition"`
	Status       Status          `json:"status"`
	Attributes   AttributeBundle `json:"attributes"`

	// Category-specific columns.
	OSName          string `json:"os_name,omitempty"`
	OSVersion       string `json:"os_version,omitempty"`
	FirmwareVersion string `json:"firmware_version,omitempty"`
	IPAddress       string `json:"ip_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssetIDs returns the identifiers of list in order.
func AssetIDs(list []Asset) []string {
	ids := make([]string, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	return ids
}
