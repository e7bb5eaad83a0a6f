package booking

import (
	"fmt"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// NormalizeDates collapses duplicates and sorts the requested calendar days.
// Idempotent and order-independent; rejects empty input and anything that is
// not a canonical ISO day string.
func NormalizeDates(dates []string) ([]string, error) {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(dateLayout, d)
		if err != nil || t.Format(dateLayout) != d {
			return nil, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrBadRequest, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one date is required", ErrBadRequest)
	}
	sort.Strings(out)
	return out, nil
}
