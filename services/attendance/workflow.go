package attendance

import (
	"academia_go/models"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// LateModificationWarning is surfaced when a teacher edits attendance after
// the session window closed. Editing is still permitted.
const LateModificationWarning = "Modificación tardía: la sesión ya finalizó"

// UnknownWindowWarning is surfaced when the session's time window cannot be
// parsed. The workflow fails open and stays editable.
const UnknownWindowWarning = "No se pudo determinar el horario de la sesión"

// State is the manual registration workflow state for one (session, date).
type State int

const (
	StateNoRecord State = iota
	StateRecording
	StatePendingConfirmation
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateNoRecord:
		return "no_record"
	case StateRecording:
		return "recording"
	case StatePendingConfirmation:
		return "pending_confirmation"
	case StateSaved:
		return "saved"
	default:
		return "unknown"
	}
}

var (
	// ErrIncompleteStatuses rejects submission while any enrolled student
	// has no status assigned.
	ErrIncompleteStatuses = errors.New("every enrolled student needs an attendance status")
	// ErrUnknownStatus rejects status strings outside the closed set.
	ErrUnknownStatus = errors.New("unknown attendance status")
	// ErrNotEnrolled rejects statuses for students not enrolled in the session.
	ErrNotEnrolled = errors.New("student is not enrolled in this course session")
	// ErrInvalidTransition signals a call that the current state does not allow.
	ErrInvalidTransition = errors.New("operation not allowed in current workflow state")
	// ErrRowFailures signals that confirmation left one or more rows unsaved;
	// the sheet stays in PendingConfirmation so the teacher can retry.
	ErrRowFailures = errors.New("one or more attendance rows failed to save")
)

// Manager owns the registration workflow. A per-(session, date) mutex
// serializes concurrent confirms from two teachers; the natural-key upsert in
// the store is the second line of defense.
type Manager struct {
	store     RecordStore
	directory SessionDirectory

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(store RecordStore, directory SessionDirectory) *Manager {
	return &Manager{
		store:     store,
		directory: directory,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(sessionID uint, date time.Time) *sync.Mutex {
	key := fmt.Sprintf("%d:%s", sessionID, DateOnly(date).Format("2006-01-02"))
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	m.locks[key] = l
	return l
}

// Sheet is one workflow instance: a teacher recording or amending attendance
// for a session on a selected date.
type Sheet struct {
	manager *Manager
	session models.CourseSession
	date    time.Time

	state         State
	editing       bool
	canEditFreely bool
	warning       string

	enrollments []models.Enrollment
	existing    map[uint]models.AttendanceRecord
	statuses    map[uint]models.AttendanceStatus
}

// Load opens the workflow for a session and date. With zero existing rows the
// sheet enters Recording fresh; with existing rows it enters Recording in
// editing mode pre-populated from the stored statuses. The session clock is
// evaluated against the selected date's own window, so editing a past date is
// always flagged as a late modification and a future date never is.
func (m *Manager) Load(ctx context.Context, session models.CourseSession, date, now time.Time) (*Sheet, error) {
	day := DateOnly(date)

	enrollments, err := m.directory.ActiveEnrollments(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	records, err := m.store.Find(ctx, session.ID, day)
	if err != nil {
		return nil, fmt.Errorf("load attendance records: %w", err)
	}

	sheet := &Sheet{
		manager:     m,
		session:     session,
		date:        day,
		state:       StateRecording,
		enrollments: enrollments,
		existing:    make(map[uint]models.AttendanceRecord, len(records)),
		statuses:    make(map[uint]models.AttendanceStatus, len(enrollments)),
	}

	for _, rec := range records {
		sheet.existing[rec.StudentID] = rec
	}
	if len(records) > 0 {
		sheet.editing = true
		for _, rec := range records {
			sheet.statuses[rec.StudentID] = rec.Status
		}
	}

	win := TimeWindow{Start: session.StartTime, End: session.EndTime}
	ended, err := SessionEndedOn(win, day, now)
	if err != nil {
		// Fail open: an unparseable window must not block the workflow.
		sheet.canEditFreely = true
		sheet.warning = UnknownWindowWarning
	} else if ended {
		sheet.canEditFreely = false
		sheet.warning = LateModificationWarning
	} else {
		sheet.canEditFreely = true
	}

	return sheet, nil
}

func (s *Sheet) State() State        { return s.state }
func (s *Sheet) Editing() bool       { return s.editing }
func (s *Sheet) CanEditFreely() bool { return s.canEditFreely }
func (s *Sheet) Warning() string     { return s.warning }
func (s *Sheet) Date() time.Time     { return s.date }
func (s *Sheet) SessionID() uint     { return s.session.ID }

// Enrollments lists the active enrollees the sheet covers.
func (s *Sheet) Enrollments() []models.Enrollment { return s.enrollments }

// Existing returns the stored record for a student, if any.
func (s *Sheet) Existing(studentID uint) (models.AttendanceRecord, bool) {
	rec, ok := s.existing[studentID]
	return rec, ok
}

// Status returns the currently entered status for a student.
func (s *Sheet) Status(studentID uint) (models.AttendanceStatus, bool) {
	st, ok := s.statuses[studentID]
	return st, ok
}

// SetStatus assigns a status to an enrolled student while recording.
func (s *Sheet) SetStatus(studentID uint, status models.AttendanceStatus) error {
	if s.state != StateRecording {
		return ErrInvalidTransition
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	enrolled := false
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return fmt.Errorf("%w: student %d", ErrNotEnrolled, studentID)
	}
	s.statuses[studentID] = status
	return nil
}

// Submit moves Recording to PendingConfirmation. Every enrolled student must
// have a status; otherwise the transition is rejected and all entered
// statuses are kept.
func (s *Sheet) Submit() error {
	if s.state != StateRecording {
		return ErrInvalidTransition
	}
	for _, e := range s.enrollments {
		if _, ok := s.statuses[e.StudentID]; !ok {
			return fmt.Errorf("%w: student %d has none", ErrIncompleteStatuses, e.StudentID)
		}
	}
	s.state = StatePendingConfirmation
	return nil
}

// Cancel returns from PendingConfirmation to Recording without discarding
// entered statuses.
func (s *Sheet) Cancel() error {
	if s.state != StatePendingConfirmation {
		return ErrInvalidTransition
	}
	s.state = StateRecording
	return nil
}

// Confirm persists the entered statuses: an update for each student that
// already has a row on this date, a create otherwise. Presente and Tardanza
// rows get the entry wall-clock time as RecordedAt. On any row failure the
// sheet returns to PendingConfirmation (not Recording) so the teacher can
// retry without re-entering statuses; per-row outcomes are always reported.
func (s *Sheet) Confirm(ctx context.Context, now time.Time, recordedByID uint) (BatchResult, error) {
	if s.state != StatePendingConfirmation {
		return BatchResult{}, ErrInvalidTransition
	}

	lock := s.manager.lockFor(s.session.ID, s.date)
	lock.Lock()
	defer lock.Unlock()

	var result BatchResult
	for _, e := range s.enrollments {
		status := s.statuses[e.StudentID]

		var recordedAt *time.Time
		if status == models.AttendancePresent || status == models.AttendanceLate {
			t := now
			recordedAt = &t
		}

		// Rows created by an earlier partially-failed confirm live in
		// existing too, so a retry amends them instead of duplicating.
		outcome := RowOutcome{StudentID: e.StudentID}
		if prior, ok := s.existing[e.StudentID]; ok && prior.ID != 0 {
			patch := RecordPatch{
				Status:       &status,
				RecordedAt:   recordedAt,
				RecordedByID: &recordedByID,
			}
			updated, err := s.manager.store.Update(ctx, prior.ID, patch)
			if err != nil {
				outcome.Error = err.Error()
			} else {
				s.existing[e.StudentID] = updated
			}
		} else {
			rec := models.AttendanceRecord{
				CourseSessionID: s.session.ID,
				StudentID:       e.StudentID,
				Date:            s.date,
				Status:          status,
				RecordedAt:      recordedAt,
				RecordedByID:    &recordedByID,
			}
			if err := s.manager.store.Create(ctx, &rec); err != nil {
				outcome.Error = err.Error()
			} else {
				outcome.Created = true
				s.existing[e.StudentID] = rec
			}
		}
		result.add(outcome)
	}

	if result.Failed > 0 {
		s.state = StatePendingConfirmation
		return result, ErrRowFailures
	}

	s.state = StateSaved
	return result, nil
}
