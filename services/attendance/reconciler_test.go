package attendance

import (
	"academia_go/models"
	"context"
	"testing"
	"time"
)

// monday 2025-03-10; the reference instant is after the 08:00-10:00 window.
var reconcileNow = time.Date(2025, 3, 10, 11, 0, 0, 0, time.Local)

func activeSession(id uint, days []string, start, end string) models.CourseSession {
	s := models.CourseSession{
		DaysOfWeek: days,
		StartTime:  start,
		EndTime:    end,
		Status:     models.SessionActive,
	}
	s.ID = id
	s.Subject = models.Subject{Name: "Matemáticas"}
	s.Teacher = models.Teacher{FirstName: "Laura", LastName: "Mendoza"}
	return s
}

func TestReconcilerBackfillsEndedSession(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.sessions = []models.CourseSession{activeSession(1, []string{"lunes"}, "08:00", "10:00")}
	dir.enroll(1, 101, 102, 103)

	rec := NewReconciler(dir, store)
	result, err := rec.Run(context.Background(), reconcileNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.Details) != 1 {
		t.Fatalf("expected 1 session detail, got %d", len(result.Details))
	}
	detail := result.Details[0]
	if detail.SessionID != 1 || detail.StudentCount != 3 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.SubjectName != "Matemáticas" || detail.TeacherName != "Laura Mendoza" {
		t.Fatalf("expected subject and teacher names in detail, got %+v", detail)
	}

	rows, _ := store.Find(context.Background(), 1, reconcileNow)
	if len(rows) != 3 {
		t.Fatalf("expected 3 records created, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Status != models.AttendancePresent {
			t.Fatalf("expected Presente, got %s", row.Status)
		}
		if row.Comment != OmissionComment {
			t.Fatalf("expected omission comment, got %q", row.Comment)
		}
	}
}

func TestReconcilerIdempotent(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.sessions = []models.CourseSession{activeSession(1, []string{"lunes"}, "08:00", "10:00")}
	dir.enroll(1, 101, 102)

	rec := NewReconciler(dir, store)
	if _, err := rec.Run(context.Background(), reconcileNow); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second, err := rec.Run(context.Background(), reconcileNow)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second.Details) != 0 {
		t.Fatalf("second run must skip already-populated sessions, got %+v", second.Details)
	}

	rows, _ := store.Find(context.Background(), 1, reconcileNow)
	if len(rows) != 2 {
		t.Fatalf("expected no duplicates after second run, got %d rows", len(rows))
	}
}

func TestReconcilerSkipsSessions(t *testing.T) {
	tests := []struct {
		name    string
		session models.CourseSession
	}{
		{name: "weekday mismatch", session: activeSession(1, []string{"martes"}, "08:00", "10:00")},
		{name: "window not ended", session: activeSession(2, []string{"lunes"}, "08:00", "18:00")},
		{name: "malformed window", session: activeSession(3, []string{"lunes"}, "08:00", "")},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			dir := newFakeDirectory()
			dir.sessions = []models.CourseSession{tc.session}
			dir.enroll(tc.session.ID, 101)

			result, err := NewReconciler(dir, store).Run(context.Background(), reconcileNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Details) != 0 {
				t.Fatalf("expected session skipped, got %+v", result.Details)
			}
			if len(store.records) != 0 {
				t.Fatalf("expected no rows created, got %d", len(store.records))
			}
		})
	}
}

func TestReconcilerSkipsRecordedSession(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.sessions = []models.CourseSession{activeSession(1, []string{"lunes"}, "08:00", "10:00")}
	dir.enroll(1, 101, 102)

	// One row already recorded for today means the teacher handled it.
	prior := models.AttendanceRecord{
		CourseSessionID: 1,
		StudentID:       101,
		Date:            reconcileNow,
		Status:          models.AttendanceAbsent,
	}
	if err := store.Create(context.Background(), &prior); err != nil {
		t.Fatalf("seed record failed: %v", err)
	}

	result, err := NewReconciler(dir, store).Run(context.Background(), reconcileNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Details) != 0 {
		t.Fatalf("expected recorded session skipped, got %+v", result.Details)
	}

	rows, _ := store.Find(context.Background(), 1, reconcileNow)
	if len(rows) != 1 {
		t.Fatalf("expected only the pre-existing row, got %d", len(rows))
	}
}

func TestReconcilerReportsPartialFailure(t *testing.T) {
	store := newFakeStore()
	store.failCreateFor[102] = true
	dir := newFakeDirectory()
	dir.sessions = []models.CourseSession{activeSession(1, []string{"lunes"}, "08:00", "10:00")}
	dir.enroll(1, 101, 102, 103)

	result, err := NewReconciler(dir, store).Run(context.Background(), reconcileNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure to be reported")
	}
	if !result.Partial {
		t.Fatalf("expected partial outcome, got %+v", result)
	}
	if result.Rows.Succeeded != 2 || result.Rows.Failed != 1 {
		t.Fatalf("expected 2 succeeded / 1 failed, got %+v", result.Rows)
	}
}
