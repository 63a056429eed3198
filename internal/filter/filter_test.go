package filter

import (
	"slices"
	"testing"

	"github.com/crucial707/hci-itam/internal/models"
)

func fortigate() models.Asset {
	return models.Asset{
		ID:       "FW-001",
		Category: models.CategoryFirewall,
		Type:     "utm",
		Model:    "FortiGate 60F",
		AssetTag: "TAG-7781",
		Location: "HQ Rack 2",
		Status:   models.StatusMaintenance,
		Attributes: models.AttributeBundle{
			Label:       "fw-hq",
			Description: "Perimeter firewall",
		},
	}
}

func TestMatches_AndCombination(t *testing.T) {
	a := fortigate()

	if !Matches(a, Criteria{Search: "fortigate", Status: models.StatusMaintenance}) {
		t.Error("expected match for search+maintenance")
	}
	if Matches(a, Criteria{Search: "fortigate", Status: models.StatusAvailable}) {
		t.Error("expected no match for search+available")
	}
}

func TestMatches_SearchFields(t *testing.T) {
	a := fortigate()

	for _, term := range []string{"fw-001", "FW-HQ", "perimeter", "60f", "tag-77"} {
		if !Matches(a, Criteria{Search: term}) {
			t.Errorf("search %q: expected match", term)
		}
	}
	// Location and remark are not part of the free-text search.
	a.Attributes.Remark = "spare unit"
	for _, term := range []string{"rack 2", "spare"} {
		if Matches(a, Criteria{Search: term}) {
			t.Errorf("search %q: expected no match", term)
		}
	}
}

func TestMatches_CategoricalFields(t *testing.T) {
	a := fortigate()

	cases := []struct {
		c    Criteria
		want bool
	}{
		{Criteria{}, true},
		{Criteria{Type: "utm"}, true},
		{Criteria{Type: "UTM"}, false},
		{Criteria{Location: "hq rack"}, true},
		{Criteria{Location: "branch"}, false},
		{Criteria{Department: "IT"}, false},
		{Criteria{Type: "utm", Location: "rack", Status: models.StatusMaintenance}, true},
	}
	for _, tc := range cases {
		if got := Matches(a, tc.c); got != tc.want {
			t.Errorf("Matches(%+v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestApply_PreservesOrder(t *testing.T) {
	list := []models.Asset{
		{ID: "SRV-003", Status: models.StatusInUse},
		{ID: "SRV-001", Status: models.StatusAvailable},
		{ID: "SRV-002", Status: models.StatusInUse},
	}
	got := models.AssetIDs(Apply(list, Criteria{Status: models.StatusInUse}))
	if !slices.Equal(got, []string{"SRV-003", "SRV-002"}) {
		t.Errorf("Apply = %v", got)
	}
	if len(Apply(nil, Criteria{})) != 0 {
		t.Error("Apply(nil) should be empty")
	}
}
