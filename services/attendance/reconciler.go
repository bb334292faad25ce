package attendance

import (
	"academia_go/models"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// OmissionComment marks rows the reconciler backfilled because the teacher
// never recorded the session.
const OmissionComment = "El profesor no registró la asistencia"

// SessionFill reports one session the reconciler backfilled.
type SessionFill struct {
	SessionID    uint   `json:"session_id"`
	SubjectName  string `json:"subject_name"`
	TeacherName  string `json:"teacher_name"`
	StudentCount int    `json:"student_count"`
}

// Result is the reconciler's caller-facing outcome.
type Result struct {
	Success bool          `json:"success"`
	Partial bool          `json:"partial"`
	Message string        `json:"message"`
	Details []SessionFill `json:"details"`
	Rows    BatchResult   `json:"rows"`
}

// Reconciler backfills a default Presente row for every enrolled student of
// each active session whose window ended today without any recorded
// attendance. Writes are natural-key upserts, so running it twice for the
// same date never duplicates rows.
type Reconciler struct {
	directory SessionDirectory
	records   RecordStore
}

func NewReconciler(directory SessionDirectory, records RecordStore) *Reconciler {
	return &Reconciler{directory: directory, records: records}
}

// Run executes one reconciliation pass for now's calendar date. Row creation
// is purely additive: existing rows are never updated or deleted, and a
// session with any row for today is treated as already recorded by the
// teacher. A row failure does not stop the pass; per-row outcomes are
// reported so partial success is visible to the caller.
func (r *Reconciler) Run(ctx context.Context, now time.Time) (Result, error) {
	today := DateOnly(now)

	sessions, err := r.directory.ActiveSessions(ctx)
	if err != nil {
		return Result{Message: "No se pudieron cargar las sesiones activas"}, fmt.Errorf("load active sessions: %w", err)
	}

	result := Result{Details: []SessionFill{}}

	for _, session := range sessions {
		if !MeetsOn(session.DaysOfWeek, today) {
			continue
		}

		win := TimeWindow{Start: session.StartTime, End: session.EndTime}
		ended, err := win.Ended(now)
		if err != nil {
			// Cannot determine the window; never auto-fill on guesswork.
			logrus.WithFields(logrus.Fields{
				"course_session_id": session.ID,
				"error":             err.Error(),
			}).Warn("Skipping session with unparseable time window")
			continue
		}
		if !ended {
			continue
		}

		existing, err := r.records.Find(ctx, session.ID, today)
		if err != nil {
			logrus.WithError(err).WithField("course_session_id", session.ID).
				Error("Failed to query existing attendance, skipping session")
			continue
		}
		if len(existing) > 0 {
			// Teacher already recorded this date.
			continue
		}

		enrollments, err := r.directory.ActiveEnrollments(ctx, session.ID)
		if err != nil {
			logrus.WithError(err).WithField("course_session_id", session.ID).
				Error("Failed to load enrollments, skipping session")
			continue
		}
		if len(enrollments) == 0 {
			continue
		}

		created := 0
		for _, enrollment := range enrollments {
			rec := models.AttendanceRecord{
				CourseSessionID: session.ID,
				StudentID:       enrollment.StudentID,
				Date:            today,
				Status:          models.AttendancePresent,
				Comment:         OmissionComment,
			}
			wasCreated, err := r.records.Upsert(ctx, &rec)
			outcome := RowOutcome{StudentID: enrollment.StudentID, Created: wasCreated}
			if err != nil {
				outcome.Error = err.Error()
			}
			result.Rows.add(outcome)
			if wasCreated {
				created++
			}
		}

		if created > 0 {
			result.Details = append(result.Details, SessionFill{
				SessionID:    session.ID,
				SubjectName:  session.Subject.Name,
				TeacherName:  teacherDisplayName(session.Teacher),
				StudentCount: created,
			})
		}
	}

	result.Partial = result.Rows.Partial()
	result.Success = result.Rows.Failed == 0

	switch {
	case len(result.Details) == 0 && result.Rows.Failed == 0:
		result.Message = "No hay sesiones pendientes de asistencia"
	case result.Success:
		result.Message = fmt.Sprintf("Se completó la asistencia de %d sesión(es)", len(result.Details))
	case result.Partial:
		result.Message = fmt.Sprintf("Asistencia completada parcialmente: %d fila(s) fallaron", result.Rows.Failed)
	default:
		result.Message = "No se pudo completar la asistencia automática"
	}

	return result, nil
}

func teacherDisplayName(t models.Teacher) string {
	if t.FirstName == "" && t.LastName == "" {
		return ""
	}
	return t.FirstName + " " + t.LastName
}
