// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package executions

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var compactDurationPattern = regexp.MustCompile(`^([1-9][0-9]*)([smhd])$`)

// ParseDuration parses the compact interval format used by rule schedules
// and backfills ("30s", "5m", "1h", "2d").
func ParseDuration(s string) (time.Duration, error) {
	m := compactDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q: must be of the form {number}x, e.g. 5s, 5m, 5h or 5d", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	unit := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
	}[m[2]]
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("invalid duration %q: out of range", s)
	}
	return time.Duration(n) * unit, nil
}
