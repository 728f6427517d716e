package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// units time.ParseDuration does not know about
var longUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// largest whole-second count a time.Duration can hold
const maxSeconds = math.MaxInt64 / int64(time.Second)

// parses a token lifetime: a bare integer is seconds, otherwise a Go duration
// string extended with "d" (days) and "w" (weeks), e.g. "15m", "7d", "3600"
func ParseTTL(value string) (time.Duration, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs > maxSeconds || secs < -maxSeconds {
			return 0, fmt.Errorf("duration %q is out of range", value)
		}

		return time.Duration(secs) * time.Second, nil
	}

	for suffix, unit := range longUnits {
		if !strings.HasSuffix(v, suffix) {
			continue
		}

		n, err := strconv.ParseFloat(strings.TrimSuffix(v, suffix), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}

		d := n * float64(unit)
		if math.IsNaN(d) || d >= math.MaxInt64 || d <= math.MinInt64 {
			return 0, fmt.Errorf("duration %q is out of range", value)
		}

		return time.Duration(d), nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	return d, nil
}
