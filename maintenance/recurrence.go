// Package maintenance projects recurring-service schedules onto the
// calendar. The projector is pure: no store access, no side effects; the
// handlers feed its output straight to the calendar-highlight view.
package maintenance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date form schedules are stored and
// projected in.
const DateLayout = "2006-01-02"

// DefaultOccurrences is how many forward dates a schedule projects.
const DefaultOccurrences = 10

// ErrInvalidStartDate indicates the start date is not an ISO calendar date.
var ErrInvalidStartDate = errors.New("maintenance: start date must be yyyy-mm-dd")

// ErrInvalidFrequency indicates the frequency is malformed or not positive.
var ErrInvalidFrequency = errors.New("maintenance: invalid frequency")

// ParseFrequency decodes the stored `"<N> día(s)"` form into a day count.
func ParseFrequency(frequency string) (int, error) {
	fields := strings.Fields(frequency)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}
	days, err := strconv.Atoi(fields[0])
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}
	return days, nil
}

// FormatFrequency encodes a day count back into the stored form.
func FormatFrequency(days int) string {
	if days == 1 {
		return "1 día"
	}
	return fmt.Sprintf("%d días", days)
}

// ProjectOccurrences computes count forward calendar dates starting at
// startDate, each frequencyDays after the previous. Month and year
// rollover follow civil-calendar arithmetic. count <= 0 falls back to
// DefaultOccurrences.
func ProjectOccurrences(startDate string, frequencyDays, count int) ([]string, error) {
	if frequencyDays <= 0 {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidFrequency, frequencyDays)
	}
	start, err := time.ParseInLocation(DateLayout, startDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartDate, startDate)
	}
	if count <= 0 {
		count = DefaultOccurrences
	}

	dates := make([]string, 0, count)
	for i, d := 0, start; i < count; i, d = i+1, d.AddDate(0, 0, frequencyDays) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}
