package attendance

import (
	"academia_go/models"
	"context"
	"errors"
	"testing"
	"time"
)

var workflowNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

func workflowSession(start, end string) models.CourseSession {
	s := models.CourseSession{
		DaysOfWeek: []string{"lunes"},
		StartTime:  start,
		EndTime:    end,
		Status:     models.SessionActive,
	}
	s.ID = 1
	return s
}

func loadSheet(t *testing.T, store *fakeStore, dir *fakeDirectory, session models.CourseSession, now time.Time) *Sheet {
	t.Helper()
	mgr := NewManager(store, dir)
	sheet, err := mgr.Load(context.Background(), session, now, now)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return sheet
}

func TestSubmitRejectsIncompleteStatuses(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.enroll(1, 101, 102, 103)

	sheet := loadSheet(t, store, dir, workflowSession("08:00", "10:00"), workflowNow)

	if err := sheet.SetStatus(101, models.AttendancePresent); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if err := sheet.SetStatus(102, models.AttendanceAbsent); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	err := sheet.Submit()
	if !errors.Is(err, ErrIncompleteStatuses) {
		t.Fatalf("expected ErrIncompleteStatuses, got %v", err)
	}
	if sheet.State() != StateRecording {
		t.Fatalf("expected to stay in recording, got %s", sheet.State())
	}

	// Entered statuses must survive the rejection.
	if st, ok := sheet.Status(101); !ok || st != models.AttendancePresent {
		t.Fatalf("expected entered status kept for 101, got %v %v", st, ok)
	}
	if st, ok := sheet.Status(102); !ok || st != models.AttendanceAbsent {
		t.Fatalf("expected entered status kept for 102, got %v %v", st, ok)
	}
}

func TestSetStatusRejectsUnknownAndUnenrolled(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.enroll(1, 101)

	sheet := loadSheet(t, store, dir, workflowSession("08:00", "10:00"), workflowNow)

	if err := sheet.SetStatus(101, "Desconocido"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if err := sheet.SetStatus(999, models.AttendancePresent); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestConfirmCreatesFreshRecords(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.enroll(1, 101, 102)

	sheet := loadSheet(t, store, dir, workflowSession("08:00", "10:00"), workflowNow)
	if sheet.Editing() {
		t.Fatalf("fresh sheet must not be in editing mode")
	}
	if !sheet.CanEditFreely() {
		t.Fatalf("mid-window sheet must be freely editable")
	}

	sheet.SetStatus(101, models.AttendancePresent)
	sheet.SetStatus(102, models.AttendanceLate)
	if err := sheet.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	result, err := sheet.Confirm(context.Background(), workflowNow, 5)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 0 {
		t.Fatalf("expected 2 rows saved, got %+v", result)
	}
	if sheet.State() != StateSaved {
		t.Fatalf("expected saved state, got %s", sheet.State())
	}

	rows, _ := store.Find(context.Background(), 1, workflowNow)
	for _, row := range rows {
		// Presente and Tardanza both capture the entry instant.
		if row.RecordedAt == nil || !row.RecordedAt.Equal(workflowNow) {
			t.Fatalf("expected recorded_at set for %s, got %v", row.Status, row.RecordedAt)
		}
		if row.RecordedByID == nil || *row.RecordedByID != 5 {
			t.Fatalf("expected recorded_by 5, got %v", row.RecordedByID)
		}
	}
}

func TestConfirmUpdatesExistingRecord(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.enroll(1, 7)

	prior := models.AttendanceRecord{
		CourseSessionID: 1,
		StudentID:       7,
		Date:            workflowNow,
		Status:          models.AttendanceAbsent,
	}
	if err := store.Create(context.Background(), &prior); err != nil {
		t.Fatalf("seed record failed: %v", err)
	}
	createsBefore := store.createCalls

	sheet := loadSheet(t, store, dir, workflowSession("08:00", "10:00"), workflowNow)
	if !sheet.Editing() {
		t.Fatalf("expected editing mode with existing records")
	}
	if st, ok := sheet.Status(7); !ok || st != models.AttendanceAbsent {
		t.Fatalf("expected prefilled status Ausente, got %v %v", st, ok)
	}

	sheet.SetStatus(7, models.AttendancePresent)
	if err := sheet.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := sheet.Confirm(context.Background(), workflowNow, 5); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Exactly one update, no second create.
	if store.updateCalls != 1 {
		t.Fatalf("expected exactly 1 update call, got %d", store.updateCalls)
	}
	if store.createCalls != createsBefore {
		t.Fatalf("expected no additional create calls, got %d", store.createCalls-createsBefore)
	}

	rows, _ := store.Find(context.Background(), 1, workflowNow)
	if len(rows) != 1 {
		t.Fatalf("expected a single stored row, got %d", len(rows))
	}
	if rows[0].Status != models.AttendancePresent {
		t.Fatalf("expected final status Presente, got %s", rows[0].Status)
	}
}

func TestConfirmFailureReturnsToPending(t *testing.T) {
	store := newFakeStore()
	store.failCreateFor[102] = true
	dir := newFakeDirectory()
	dir.enroll(1, 101, 102)

	sheet := loadSheet(t, store, dir, workflowSession("08:00", "10:00"), workflowNow)
	sheet.SetStatus(101, models.AttendancePresent)
	sheet.SetStatus(102, models.AttendancePresent)
	if err := sheet.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	result, err := sheet.Confirm(context.Background(), workflowNow, 5)
	if !errors.Is(err, ErrRowFailures) {
		t.Fatalf("expected ErrRowFailures, got %v", err)
	}
	if !result.Partial() {
		t.Fatalf("expected partial result, got %+v", result)
	}
	// Back to PendingConfirmation, not Recording: the teacher retries the
	// submission without re-entering statuses.
	if sheet.State() != StatePendingConfirmation {
		t.Fatalf("expected pending confirmation, got %s", sheet.State())
	}

	// Retry after the transient failure clears.
	delete(store.failCreateFor, 102)
	retry, err := sheet.Confirm(context.Background(), workflowNow, 5)
	if err != nil {
		t.Fatalf("retry confirm failed: %v", err)
	}
	if retry.Failed != 0 {
		t.Fatalf("expected clean retry, got %+v", retry)
	}
	if sheet.State() != StateSaved {
		t.Fatalf("expected saved after retry, got %s", sheet.State())
	}
}

func TestCancelKeepsStatuses(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.enroll(1, 101)

	sheet := loadSheet(t, store, dir, workflowSession("08:00", "10:00"), workflowNow)
	sheet.SetStatus(101, models.AttendanceLate)
	if err := sheet.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := sheet.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if sheet.State() != StateRecording {
		t.Fatalf("expected recording after cancel, got %s", sheet.State())
	}
	if st, ok := sheet.Status(101); !ok || st != models.AttendanceLate {
		t.Fatalf("expected status kept after cancel, got %v %v", st, ok)
	}
}

func TestLoadFlagsLateModification(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.enroll(1, 101)

	// Window already closed at the reference instant.
	afterWindow := time.Date(2025, 3, 10, 10, 30, 0, 0, time.Local)
	mgr := NewManager(store, dir)
	sheet, err := mgr.Load(context.Background(), workflowSession("08:00", "10:00"), afterWindow, afterWindow)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sheet.CanEditFreely() {
		t.Fatalf("expected late-modification mode after window end")
	}
	if sheet.Warning() != LateModificationWarning {
		t.Fatalf("expected late modification warning, got %q", sheet.Warning())
	}

	// Editing remains permitted.
	if err := sheet.SetStatus(101, models.AttendancePresent); err != nil {
		t.Fatalf("late edits must still be allowed: %v", err)
	}
}

func TestLoadFailsOpenOnMalformedWindow(t *testing.T) {
	store := newFakeStore()
	dir := newFakeDirectory()
	dir.enroll(1, 101)

	mgr := NewManager(store, dir)
	sheet, err := mgr.Load(context.Background(), workflowSession("08:00", ""), workflowNow, workflowNow)
	if err != nil {
		t.Fatalf("load must not fail on a malformed window: %v", err)
	}
	if !sheet.CanEditFreely() {
		t.Fatalf("expected fail-open editable sheet")
	}
	if sheet.Warning() != UnknownWindowWarning {
		t.Fatalf("expected unknown-window warning, got %q", sheet.Warning())
	}
}
