// Package ident mints category-scoped identifiers such as SRV-004 from the
// identifiers the client currently holds.
//
// There is no central sequence. Two callers allocating from the same snapshot
// get the same identifier; the store's unique index on asset_id is what rejects
// the second insert.
package ident

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crucial707/hci-itam/internal/models"
)

// Allocate returns the next identifier for category c given the identifiers
// already known. Identifiers of other prefixes are ignored, as are suffixes that
// are not plain decimal numbers.
func Allocate(c models.Category, known []string) string {
	prefix := c.Prefix + "-"
	width := c.Width
	highest := 0
	for _, id := range known {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		n, ok := parseSequence(suffix)
		if !ok {
			continue
		}
		if len(suffix) > width {
			width = len(suffix)
		}
		if n > highest {
			highest = n
		}
	}
	return Format(c, highest+1, width)
}

// Format renders sequence n for category c, zero-padded to at least width digits.
func Format(c models.Category, n, width int) string {
	if width < c.Width {
		width = c.Width
	}
	return fmt.Sprintf("%s-%0*d", c.Prefix, width, n)
}

func parseSequence(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Belongs reports whether id carries the prefix of category c.
func Belongs(c models.Category, id string) bool {
	return strings.HasPrefix(id, c.Prefix+"-")
}
