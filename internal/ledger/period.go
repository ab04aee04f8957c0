package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

type PeriodKind string

const (
	PeriodMonth   PeriodKind = "month"
	PeriodQuarter PeriodKind = "quarter"
	PeriodYear    PeriodKind = "year"
	PeriodRange   PeriodKind = "range"
)

// Period is an inclusive calendar window.
type Period struct {
	Kind  PeriodKind `json:"kind"`
	Key   string     `json:"key"`
	Start Date       `json:"start"`
	End   Date       `json:"end"`
}

func MonthPeriod(year int, month time.Month) Period {
	start := NewDate(year, month, 1)
	return Period{
		Kind:  PeriodMonth,
		Key:   fmt.Sprintf("%04d-%02d", year, int(month)),
		Start: start,
		End:   Date{start.AddDate(0, 1, -1)},
	}
}

func QuarterPeriod(year, quarter int) (Period, error) {
	if quarter < 1 || quarter > 4 {
		return Period{}, fmt.Errorf("%w: quarter %d", ErrInvalidPeriod, quarter)
	}
	start := NewDate(year, time.Month((quarter-1)*3+1), 1)
	return Period{
		Kind:  PeriodQuarter,
		Key:   fmt.Sprintf("%04d-Q%d", year, quarter),
		Start: start,
		End:   Date{start.AddDate(0, 3, -1)},
	}, nil
}

func YearPeriod(year int) Period {
	return Period{
		Kind:  PeriodYear,
		Key:   fmt.Sprintf("%04d", year),
		Start: NewDate(year, time.January, 1),
		End:   NewDate(year, time.December, 31),
	}
}

// RangePeriod builds an arbitrary inclusive window.
func RangePeriod(from, to Date) (Period, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return Period{}, fmt.Errorf("%w: range %s..%s", ErrInvalidPeriod, from, to)
	}
	return Period{
		Kind:  PeriodRange,
		Key:   from.String() + ".." + to.String(),
		Start: from,
		End:   to,
	}, nil
}

var (
	monthKeyRe   = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	quarterKeyRe = regexp.MustCompile(`^(\d{4})-[Qq]([1-4])$`)
	yearKeyRe    = regexp.MustCompile(`^(\d{4})$`)
)

// ParsePeriod reads "2024-05", "2024-Q2" or "2024".
func ParsePeriod(key string) (Period, error) {
	if m := monthKeyRe.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
		}
		return MonthPeriod(year, time.Month(month)), nil
	}
	if m := quarterKeyRe.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return QuarterPeriod(year, q)
	}
	if m := yearKeyRe.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		return YearPeriod(year), nil
	}
	return Period{}, fmt.Errorf("%w: %q (want YYYY-MM, YYYY-Qn or YYYY)", ErrInvalidPeriod, key)
}

// Contains reports whether d falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) String() string {
	return p.Key
}

// Months returns the number of calendar months the period spans.
func (p Period) Months() int {
	return (p.End.Year()-p.Start.Year())*12 + int(p.End.Month()) - int(p.Start.Month()) + 1
}

type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// FiscalPeriod is a fiscal year. Once closed, nothing dated inside it may be
// appended to the cash ledger or VAT journal.
type FiscalPeriod struct {
	Year     int          `json:"year"`
	Status   PeriodStatus `json:"status"`
	ClosedAt *time.Time   `json:"closed_at,omitempty"`
	ClosedBy string       `json:"closed_by,omitempty"`
}

func (fp FiscalPeriod) IsClosed() bool {
	return fp.Status == PeriodClosed
}

// OpenPeriod is the state of a year that was never closed.
func OpenPeriod(year int) FiscalPeriod {
	return FiscalPeriod{Year: year, Status: PeriodOpen}
}
