package attendance

import (
	"testing"
	"time"
)

func TestWindowEnded(t *testing.T) {
	day := func(hour, min, sec int) time.Time {
		return time.Date(2025, 3, 10, hour, min, sec, 0, time.Local)
	}

	win := TimeWindow{Start: "08:00", End: "10:00"}

	tests := []struct {
		name     string
		ref      time.Time
		expEnded bool
	}{
		{name: "one second after end", ref: day(10, 0, 1), expEnded: true},
		{name: "one second before end", ref: day(9, 59, 59), expEnded: false},
		{name: "exactly at end", ref: day(10, 0, 0), expEnded: false},
		{name: "well before start", ref: day(6, 30, 0), expEnded: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ended, err := win.Ended(tc.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ended != tc.expEnded {
				t.Fatalf("expected ended=%v at %s, got %v", tc.expEnded, tc.ref, ended)
			}
		})
	}
}

func TestWindowEndedMalformed(t *testing.T) {
	// Fail open: a malformed window reports an error instead of panicking,
	// and callers treat it as "not ended / editable".
	malformed := []TimeWindow{
		{Start: "08:00", End: ""},
		{Start: "", End: "x"},
		{Start: "08:00", End: "veinticinco"},
	}
	for _, win := range malformed {
		ended, err := win.Ended(time.Now())
		if err == nil {
			t.Fatalf("expected error for window %+v", win)
		}
		if ended {
			t.Fatalf("malformed window %+v must not report ended", win)
		}
	}
}

func TestParseTimeWindow(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		expWin  TimeWindow
		wantErr bool
	}{
		{name: "simple", input: "08:00 - 10:00", expWin: TimeWindow{Start: "08:00", End: "10:00"}},
		{name: "no spaces", input: "14:30-16:00", expWin: TimeWindow{Start: "14:30", End: "16:00"}},
		{name: "missing separator", input: "08:00", wantErr: true},
		{name: "start after end", input: "12:00 - 09:00", wantErr: true},
		{name: "garbage", input: "asistencia", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			win, err := ParseTimeWindow(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if win != tc.expWin {
				t.Fatalf("expected %+v, got %+v", tc.expWin, win)
			}
		})
	}
}

func TestSessionEndedOnSelectedDate(t *testing.T) {
	win := TimeWindow{Start: "08:00", End: "10:00"}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local) // mid-session today

	tests := []struct {
		name     string
		date     time.Time
		expEnded bool
	}{
		{name: "past date always ended", date: now.AddDate(0, 0, -1), expEnded: true},
		{name: "future date never ended", date: now.AddDate(0, 0, 1), expEnded: false},
		{name: "today mid-window", date: now, expEnded: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ended, err := SessionEndedOn(win, tc.date, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ended != tc.expEnded {
				t.Fatalf("expected ended=%v for %s, got %v", tc.expEnded, tc.date.Format("2006-01-02"), ended)
			}
		})
	}

	after := time.Date(2025, 3, 10, 10, 0, 1, 0, time.Local)
	ended, err := SessionEndedOn(win, after, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ended {
		t.Fatalf("expected today's session ended after the window closed")
	}
}

func TestMeetsOn(t *testing.T) {
	monday := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	wednesday := time.Date(2025, 3, 12, 12, 0, 0, 0, time.Local)

	days := []string{"lunes", "miercoles"} // accent-less on purpose

	if !MeetsOn(days, monday) {
		t.Fatalf("expected session to meet on monday")
	}
	if !MeetsOn(days, wednesday) {
		t.Fatalf("expected accent-insensitive match for miércoles")
	}
	if MeetsOn(days, monday.AddDate(0, 0, 1)) {
		t.Fatalf("did not expect session to meet on tuesday")
	}
}

func TestParseHourMinute(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		expHour    int
		expMinutes int
	}{
		{name: "simple time", input: "08:30", expHour: 8, expMinutes: 30},
		{name: "with seconds", input: "13:45:00", expHour: 13, expMinutes: 45},
		{name: "iso datetime", input: "2007-11-30T00:00:00+07:00", expHour: 0, expMinutes: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h, m, err := parseHourMinute(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h != tc.expHour || m != tc.expMinutes {
				t.Fatalf("expected %02d:%02d, got %02d:%02d", tc.expHour, tc.expMinutes, h, m)
			}
		})
	}

	if _, _, err := parseHourMinute("invalid"); err == nil {
		t.Fatalf("expected error for invalid input")
	}
}
