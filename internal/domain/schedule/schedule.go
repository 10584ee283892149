package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidStartDate = errors.New("invalid start date")

const (
	DateLayout = "2006-01-02"

	// FollowUpIntervalDays: controles cada dos semanas.
	FollowUpIntervalDays = 14
)

// ParseDate acepta YYYY-MM-DD y devuelve medianoche UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing", ErrInvalidStartDate)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q must be YYYY-MM-DD", ErrInvalidStartDate, s)
	}
	return t, nil
}

func Validate(start time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: missing", ErrInvalidStartDate)
	}
	return nil
}

// Day trunca a medianoche conservando la zona horaria.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndDate suma totalMonths meses calendario: índice de mes módulo 12, año + índice/12,
// y conserva el día del mes sin recortarlo. Si el mes destino es más corto, time.Date
// desborda al mes siguiente (31 ene + 1 mes => 2/3 mar).
func EndDate(start time.Time, totalMonths int) time.Time {
	start = Day(start)
	idx := int(start.Month()-1) + totalMonths
	year := start.Year() + idx/12
	month := time.Month(idx%12 + 1)
	return time.Date(year, month, start.Day(), 0, 0, 0, 0, start.Location())
}

// FollowUpDates genera start+14d, start+28d, ... mientras la fecha sea <= end.
func FollowUpDates(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)

	out := make([]time.Time, 0)
	for d := start.AddDate(0, 0, FollowUpIntervalDays); !d.After(end); d = d.AddDate(0, 0, FollowUpIntervalDays) {
		out = append(out, d)
	}
	return out
}

// FormatDates es útil para respuestas y payloads.
func FormatDates(ds []time.Time) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Format(DateLayout))
	}
	return out
}
