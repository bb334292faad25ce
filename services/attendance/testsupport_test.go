package attendance

import (
	"academia_go/models"
	"context"
	"fmt"
	"time"
)

// fakeStore is an in-memory RecordStore used by the workflow and reconciler
// tests. failCreateFor simulates per-row transient store failures.
type fakeStore struct {
	nextID        uint
	records       map[uint]models.AttendanceRecord
	createCalls   int
	updateCalls   int
	failCreateFor map[uint]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:       make(map[uint]models.AttendanceRecord),
		failCreateFor: make(map[uint]bool),
	}
}

func (f *fakeStore) key(sessionID, studentID uint, date time.Time) string {
	return fmt.Sprintf("%d:%d:%s", sessionID, studentID, DateOnly(date).Format("2006-01-02"))
}

func (f *fakeStore) lookup(sessionID, studentID uint, date time.Time) (models.AttendanceRecord, bool) {
	want := f.key(sessionID, studentID, date)
	for _, rec := range f.records {
		if f.key(rec.CourseSessionID, rec.StudentID, rec.Date) == want {
			return rec, true
		}
	}
	return models.AttendanceRecord{}, false
}

func (f *fakeStore) Find(_ context.Context, sessionID uint, date time.Time) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	day := DateOnly(date)
	for _, rec := range f.records {
		if rec.CourseSessionID == sessionID && DateOnly(rec.Date).Equal(day) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) FindBySession(_ context.Context, sessionID uint) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range f.records {
		if rec.CourseSessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByStudent(_ context.Context, studentID uint) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, rec *models.AttendanceRecord) error {
	f.createCalls++
	if f.failCreateFor[rec.StudentID] {
		return fmt.Errorf("simulated store failure for student %d", rec.StudentID)
	}
	if _, exists := f.lookup(rec.CourseSessionID, rec.StudentID, rec.Date); exists {
		return ErrConflict
	}
	f.nextID++
	rec.ID = f.nextID
	rec.Date = DateOnly(rec.Date)
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeStore) Update(_ context.Context, id uint, patch RecordPatch) (models.AttendanceRecord, error) {
	f.updateCalls++
	rec, ok := f.records[id]
	if !ok {
		return models.AttendanceRecord{}, ErrNotFound
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	if patch.Comment != nil {
		rec.Comment = *patch.Comment
	}
	if patch.RecordedAt != nil {
		rec.RecordedAt = patch.RecordedAt
	}
	if patch.RecordedByID != nil {
		rec.RecordedByID = patch.RecordedByID
	}
	f.records[id] = rec
	return rec, nil
}

func (f *fakeStore) Upsert(_ context.Context, rec *models.AttendanceRecord) (bool, error) {
	if f.failCreateFor[rec.StudentID] {
		return false, fmt.Errorf("simulated store failure for student %d", rec.StudentID)
	}
	if _, exists := f.lookup(rec.CourseSessionID, rec.StudentID, rec.Date); exists {
		return false, nil
	}
	f.nextID++
	rec.ID = f.nextID
	rec.Date = DateOnly(rec.Date)
	f.records[rec.ID] = *rec
	return true, nil
}

func (f *fakeStore) BulkCreate(ctx context.Context, recs []models.AttendanceRecord) (BatchResult, error) {
	var result BatchResult
	for i := range recs {
		created, err := f.Upsert(ctx, &recs[i])
		outcome := RowOutcome{StudentID: recs[i].StudentID, Created: created}
		if err != nil {
			outcome.Error = err.Error()
		}
		result.add(outcome)
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("bulk create: %d rows failed", result.Failed)
	}
	return result, nil
}

// fakeDirectory is an in-memory SessionDirectory.
type fakeDirectory struct {
	sessions    []models.CourseSession
	enrollments map[uint][]models.Enrollment
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{enrollments: make(map[uint][]models.Enrollment)}
}

func (f *fakeDirectory) ActiveSessions(_ context.Context) ([]models.CourseSession, error) {
	var out []models.CourseSession
	for _, s := range f.sessions {
		if s.Status == models.SessionActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ActiveEnrollments(_ context.Context, sessionID uint) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range f.enrollments[sessionID] {
		if e.Status == models.EnrollmentActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDirectory) enroll(sessionID uint, studentIDs ...uint) {
	for _, id := range studentIDs {
		f.enrollments[sessionID] = append(f.enrollments[sessionID], models.Enrollment{
			CourseSessionID: sessionID,
			StudentID:       id,
			Status:          models.EnrollmentActive,
		})
	}
}
