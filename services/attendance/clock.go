package attendance

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimeWindow is the start/end pair of a course session, both "HH:MM".
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseTimeWindow parses the legacy single-string representation
// "HH:MM - HH:MM" still accepted on import endpoints.
func ParseTimeWindow(raw string) (TimeWindow, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return TimeWindow{}, fmt.Errorf("invalid time window %q: expected \"HH:MM - HH:MM\"", raw)
	}
	win := TimeWindow{
		Start: strings.TrimSpace(parts[0]),
		End:   strings.TrimSpace(parts[1]),
	}
	if err := win.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return win, nil
}

// Validate checks both bounds parse and that the window starts before it ends.
func (w TimeWindow) Validate() error {
	sh, sm, err := parseHourMinute(w.Start)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	eh, em, err := parseHourMinute(w.End)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if sh*60+sm >= eh*60+em {
		return fmt.Errorf("time window start %s must be before end %s", w.Start, w.End)
	}
	return nil
}

// EndOn returns the instant the window closes on the given calendar date,
// in that date's location. Calendar-naive: no timezone conversion happens.
func (w TimeWindow) EndOn(date time.Time) (time.Time, error) {
	hour, minute, err := parseHourMinute(w.End)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// Ended reports whether the window has closed relative to ref, evaluated on
// ref's own calendar date. An unparseable window returns an error; callers
// treat that as "cannot determine" and fail open (editable).
func (w TimeWindow) Ended(ref time.Time) (bool, error) {
	end, err := w.EndOn(ref)
	if err != nil {
		return false, err
	}
	return ref.After(end), nil
}

// SessionEndedOn decides whether the session occurrence on the SELECTED date
// has concluded, given the current instant. A past date has always concluded,
// a future date never has, and today compares now against the end of window.
func SessionEndedOn(w TimeWindow, date, now time.Time) (bool, error) {
	day := DateOnly(date)
	today := DateOnly(now)
	switch {
	case day.Before(today):
		return true, nil
	case day.After(today):
		return false, nil
	default:
		return w.Ended(now)
	}
}

// DateOnly truncates an instant to its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

// WeekdayName returns the lowercase Spanish name for a date's weekday.
func WeekdayName(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

func normalizeWeekday(day string) string {
	day = strings.ToLower(strings.TrimSpace(day))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")
	return replacer.Replace(day)
}

// MeetsOn reports whether a session scheduled on daysOfWeek meets on the
// given date. Accent-insensitive so "miercoles" and "miércoles" both match.
func MeetsOn(daysOfWeek []string, date time.Time) bool {
	want := normalizeWeekday(WeekdayName(date))
	for _, day := range daysOfWeek {
		if normalizeWeekday(day) == want {
			return true
		}
	}
	return false
}

func parseHourMinute(value string) (int, int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, 0, fmt.Errorf("time value cannot be empty")
	}

	layout := "15:04"
	if colonCount := strings.Count(value, ":"); colonCount >= 2 {
		layout = "15:04:05"
	}

	if t, err := time.Parse(layout, value); err == nil {
		return t.Hour(), t.Minute(), nil
	} else {
		fallbackLayouts := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
			"2006-01-02 15:04",
			"2006-01-02T15:04",
		}

		for _, layout := range fallbackLayouts {
			if parsed, altErr := time.Parse(layout, value); altErr == nil {
				return parsed.Hour(), parsed.Minute(), nil
			}
		}

		timePattern := regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?`)
		if match := timePattern.FindString(value); match != "" && match != value {
			return parseHourMinute(match)
		}

		return 0, 0, fmt.Errorf("invalid time format %q: %w", value, err)
	}
}
