// Package drive resolves SKU folders against a Drive-style backend,
// including shared-drive routing and a deterministic offline stub.
package drive

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultRouting mirrors the production routing table: the first character
// of a SKU selects the shared drive that holds its job folder.
var DefaultRouting = map[string]string{
	"0-9": "0AJmknNqOWBvjUk9PVA",
	"A-F": "0ALFcGfxuw7zqUk9PVA",
	"G-N": "0AMvwxfXxfIqkUk9PVA",
	"O-S": "0AGrHdqem4gtCUk9PVA",
	"T-Z": "0ABuvdtBlCWzGUk9PVA",
}

// Router maps SKUs onto shared drive IDs by leading character ranges.
type Router struct {
	ranges []driveRange
}

type driveRange struct {
	lo, hi  byte
	driveID string
}

// NewRouter builds a Router from a range table keyed like "A-F". A nil or
// empty table falls back to DefaultRouting.
func NewRouter(table map[string]string) (*Router, error) {
	if len(table) == 0 {
		table = DefaultRouting
	}
	ranges := make([]driveRange, 0, len(table))
	for key, id := range table {
		lo, hi, ok := strings.Cut(key, "-")
		if !ok || len(lo) != 1 || len(hi) != 1 {
			return nil, fmt.Errorf("invalid routing range %q", key)
		}
		ranges = append(ranges, driveRange{lo: lo[0], hi: hi[0], driveID: id})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].lo < ranges[j].lo })
	return &Router{ranges: ranges}, nil
}

// SharedDriveFor returns the shared drive ID responsible for sku.
func (r *Router) SharedDriveFor(sku string) (string, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return "", fmt.Errorf("SKU is required")
	}
	first := strings.ToUpper(sku)[0]
	for _, rng := range r.ranges {
		if first >= rng.lo && first <= rng.hi {
			return rng.driveID, nil
		}
	}
	return "", fmt.Errorf("no shared drive mapping for SKU starting with %q", string(first))
}
