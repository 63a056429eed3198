// Package filter evaluates list criteria against decoded assets. The same
// predicate builds the on-screen list and the exported CSV rows.
package filter

import (
	"strings"

	"github.com/crucial707/hci-itam/internal/models"
)

// Criteria are AND-combined; an empty field always matches.
type Criteria struct {
	// Search is matched case-insensitively as a substring of the identifier,
	// label, description, model or asset tag.
	Search string        `json:"search,omitempty"`
	Status models.Status `json:"status,omitempty"`
	// Type is the appliance subtype, matched exactly.
	Type       string `json:"type,omitempty"`
	Department string `json:"department,omitempty"`
	// Location is matched case-insensitively as a substring.
	Location string `json:"location,omitempty"`
}

// Matches reports whether a satisfies every present predicate of c.
func Matches(a models.Asset, c Criteria) bool {
	if c.Status != "" && a.Status != c.Status {
		return false
	}
	if c.Type != "" && a.Type != c.Type {
		return false
	}
	if c.Department != "" && a.Department != c.Department {
		return false
	}
	if c.Location != "" && !containsFold(a.Location, c.Location) {
		return false
	}
	if c.Search != "" && !searchMatches(a, c.Search) {
		return false
	}
	return true
}

func searchMatches(a models.Asset, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{
		a.ID,
		a.Attributes.Label,
		a.Attributes.Description,
		a.Model,
		a.AssetTag,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Apply returns the assets of list that match c, in their original order.
func Apply(list []models.Asset, c Criteria) []models.Asset {
	out := make([]models.Asset, 0, len(list))
	for _, a := range list {
		if Matches(a, c) {
			out = append(out, a)
		}
	}
	return out
}
