package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Period is a provider lookback window such as "6mo" or "1y"
type Period string

// DefaultPeriod is used when no period is given
const DefaultPeriod Period = "6mo"

var periodSpans = map[Period]struct{ years, months int }{
	"1mo": {0, 1},
	"3mo": {0, 3},
	"6mo": {0, 6},
	"1y":  {1, 0},
	"2y":  {2, 0},
	"5y":  {5, 0},
	"10y": {10, 0},
}

// ParsePeriod validates a lookback window
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return DefaultPeriod, nil
	}
	if _, ok := periodSpans[p]; ok || p == "ytd" || p == "max" {
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Start returns the first date covered by the period, relative to now.
// "max" returns the zero time.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case "max":
		return time.Time{}
	case "ytd":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	}

	span, ok := periodSpans[p]
	if !ok {
		span = periodSpans[DefaultPeriod]
	}
	return now.AddDate(-span.years, -span.months, 0)
}

func (p Period) String() string {
	return string(p)
}
