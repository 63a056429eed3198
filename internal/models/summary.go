package models

// Summary counts the records of one category. An empty type or department is
// counted under the empty key.
type Summary struct {
	Category     string         `json:"category"`
	Total        int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
	ByType       map[string]int `json:"by_type"`
	ByDepartment map[string]int `json:"by_department"`
}

// NewSummary returns an empty summary for category with every status of the
// category present at zero.
func NewSummary(c Category) Summary {
	s := Summary{
		Category:     c.Name,
		ByStatus:     map[Status]int{},
		ByType:       map[string]int{},
		ByDepartment: map[string]int{},
	}
	for _, st := range AllStatuses {
		if st.ValidFor(c) {
			s.ByStatus[st] = 0
		}
	}
	return s
}
