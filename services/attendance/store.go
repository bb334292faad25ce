package attendance

import (
	"academia_go/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("attendance record not found")
	// ErrConflict is returned when the (session, student, date) key already exists.
	ErrConflict = errors.New("attendance record already exists for this session, student and date")
)

// RecordPatch is a partial update for an existing attendance record.
type RecordPatch struct {
	Status       *models.AttendanceStatus
	Comment      *string
	RecordedAt   *time.Time
	RecordedByID *uint
}

// RowOutcome is the per-row result of a batch write.
type RowOutcome struct {
	StudentID uint   `json:"student_id"`
	Created   bool   `json:"created"`
	Error     string `json:"error,omitempty"`
}

// BatchResult tracks per-row outcomes so a partially failed batch is reported
// as such instead of collapsing into a single all-or-nothing error.
type BatchResult struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Rows      []RowOutcome `json:"rows,omitempty"`
}

// Partial reports whether some rows landed while others failed.
func (r BatchResult) Partial() bool {
	return r.Succeeded > 0 && r.Failed > 0
}

func (r *BatchResult) add(outcome RowOutcome) {
	if outcome.Error == "" {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.Rows = append(r.Rows, outcome)
}

// RecordStore abstracts attendance persistence. The manual workflow, the
// reconciler and the statistics endpoints all go through it, and tests run
// against an in-memory implementation.
type RecordStore interface {
	Find(ctx context.Context, sessionID uint, date time.Time) ([]models.AttendanceRecord, error)
	FindBySession(ctx context.Context, sessionID uint) ([]models.AttendanceRecord, error)
	FindByStudent(ctx context.Context, studentID uint) ([]models.AttendanceRecord, error)
	Create(ctx context.Context, rec *models.AttendanceRecord) error
	Update(ctx context.Context, id uint, patch RecordPatch) (models.AttendanceRecord, error)
	// Upsert inserts on the natural key and does nothing on conflict, so
	// reconciler re-runs and concurrent submissions stay idempotent.
	// It reports whether a row was actually created.
	Upsert(ctx context.Context, rec *models.AttendanceRecord) (bool, error)
	BulkCreate(ctx context.Context, recs []models.AttendanceRecord) (BatchResult, error)
}

// SessionDirectory exposes the read-only course/enrollment lookups the
// attendance core needs.
type SessionDirectory interface {
	ActiveSessions(ctx context.Context) ([]models.CourseSession, error)
	ActiveEnrollments(ctx context.Context, sessionID uint) ([]models.Enrollment, error)
}

// GormStore is the Postgres-backed RecordStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Find(ctx context.Context, sessionID uint, date time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("course_session_id = ? AND date = ?", sessionID, DateOnly(date)).
		Order("student_id ASC").
		Find(&records).Error
	return records, err
}

func (s *GormStore) FindBySession(ctx context.Context, sessionID uint) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("course_session_id = ?", sessionID).
		Order("date ASC, student_id ASC").
		Find(&records).Error
	return records, err
}

func (s *GormStore) FindByStudent(ctx context.Context, studentID uint) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date ASC, course_session_id ASC").
		Find(&records).Error
	return records, err
}

func (s *GormStore) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	rec.Date = DateOnly(rec.Date)
	err := s.db.WithContext(ctx).Create(rec).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (s *GormStore) Update(ctx context.Context, id uint, patch RecordPatch) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AttendanceRecord{}, ErrNotFound
		}
		return models.AttendanceRecord{}, err
	}

	updates := map[string]interface{}{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Comment != nil {
		updates["comment"] = *patch.Comment
	}
	if patch.RecordedAt != nil {
		updates["recorded_at"] = *patch.RecordedAt
	}
	if patch.RecordedByID != nil {
		updates["recorded_by_id"] = *patch.RecordedByID
	}
	if len(updates) == 0 {
		return rec, nil
	}

	if err := s.db.WithContext(ctx).Model(&rec).Updates(updates).Error; err != nil {
		return models.AttendanceRecord{}, err
	}
	return rec, nil
}

func (s *GormStore) Upsert(ctx context.Context, rec *models.AttendanceRecord) (bool, error) {
	rec.Date = DateOnly(rec.Date)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "course_session_id"},
			{Name: "student_id"},
			{Name: "date"},
		},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) BulkCreate(ctx context.Context, recs []models.AttendanceRecord) (BatchResult, error) {
	var result BatchResult
	for i := range recs {
		created, err := s.Upsert(ctx, &recs[i])
		outcome := RowOutcome{StudentID: recs[i].StudentID, Created: created}
		if err != nil {
			outcome.Error = err.Error()
		}
		result.add(outcome)
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("bulk create: %d of %d rows failed", result.Failed, len(recs))
	}
	return result, nil
}

// GormDirectory is the Postgres-backed SessionDirectory.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) ActiveSessions(ctx context.Context) ([]models.CourseSession, error) {
	var sessions []models.CourseSession
	err := d.db.WithContext(ctx).
		Preload("Subject").
		Preload("Teacher").
		Where("status = ?", models.SessionActive).
		Find(&sessions).Error
	return sessions, err
}

func (d *GormDirectory) ActiveEnrollments(ctx context.Context, sessionID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := d.db.WithContext(ctx).
		Preload("Student").
		Where("course_session_id = ? AND status = ?", sessionID, models.EnrollmentActive).
		Order("student_id ASC").
		Find(&enrollments).Error
	return enrollments, err
}
