// Package dues holds the monthly dues (IPL) reconciliation rules: period
// parsing, zone resolution, tariff selection and bill planning. It performs
// no I/O; services load the inputs and persist the plan.
package dues

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

var periodPattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)

// ErrInvalidPeriod is returned for inputs not of the form YYYY-MM.
var ErrInvalidPeriod = errors.New("period must match YYYY-MM")

// Period is a calendar month. Its canonical form is the first day of the
// month, e.g. 2024-03-01.
type Period struct {
	year  int
	month time.Month
}

// ParsePeriod parses a YYYY-MM string.
func ParsePeriod(input string) (Period, error) {
	m := periodPattern.FindStringSubmatch(input)
	if m == nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, input)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return Period{year: year, month: time.Month(month)}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// IsZero reports whether p was never set.
func (p Period) IsZero() bool { return p.year == 0 }

// String returns the YYYY-MM form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// Canonical returns the YYYY-MM-01 form used as the billing key.
func (p Period) Canonical() string {
	return p.String() + "-01"
}

// Time returns midnight UTC on the first day of the month.
func (p Period) Time() time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
}

// Date returns the period as a storable calendar date.
func (p Period) Date() datatypes.Date {
	return datatypes.Date(p.Time())
}

// Next returns the following month.
func (p Period) Next() Period {
	return PeriodOf(p.Time().AddDate(0, 1, 0))
}
