// Package formatting provides human-readable formatting and parsing utilities
// for byte sizes and model output.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n with base-1024 units, e.g. "1.5 MB".
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)
	if n < 1024 && n > -1024 {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := math.Abs(float64(n))
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if n < 0 {
		size = -size
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses sizes such as "1KB", "100 MB", "1.5GiB" or a bare byte
// count. Units are base-1024 and case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	end := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end == -1 {
		end = len(s)
	}
	if end == 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	exp, err := unitExponent(strings.TrimSpace(s[end:]))
	if err != nil {
		return 0, err
	}

	n := value * math.Pow(1024, float64(exp))
	if n >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size overflows: %q", s)
	}
	return int64(n), nil
}

func unitExponent(unit string) (int, error) {
	u := strings.ToUpper(unit)
	if u == "" {
		return 0, nil
	}
	if len(u) == 3 && u[1] == 'I' && u[2] == 'B' {
		u = u[:1] + "B"
	}
	for i, known := range units {
		if u == known {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}
