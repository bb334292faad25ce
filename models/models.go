package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch s := value.(type) {
	case []byte:
		*j = append((*j)[0:0], s...)
	case string:
		*j = append((*j)[0:0], s...)
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// AttendanceStatus is the closed set of per-student statuses for one class date.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Presente"
	AttendanceAbsent  AttendanceStatus = "Ausente"
	AttendanceLate    AttendanceStatus = "Tardanza"
	AttendanceExcused AttendanceStatus = "Justificado"
)

// Valid returns true when the status is a supported value. Unknown strings are
// rejected at the API boundary instead of being stored as-is.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// CountsAsPresent reports whether the status counts toward the attendance
// percentage. Justificado is tracked distinctly but folds into present.
func (s AttendanceStatus) CountsAsPresent() bool {
	switch s {
	case AttendancePresent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// CourseSession status values
const (
	SessionActive    = "Activo"
	SessionInactive  = "Inactivo"
	SessionCancelled = "Cancelado"
	SessionFinished  = "Finalizado"
)

// Enrollment status values
const (
	EnrollmentActive    = "Inscrito"
	EnrollmentWithdrawn = "Retirado"
)

// User model. Admins manage the directory and the reconciler; teachers record
// attendance for their own course sessions.
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Email    string `json:"email" gorm:"size:255;uniqueIndex"`
	Phone    string `json:"phone" gorm:"size:20"`
	Role     string `json:"role" gorm:"size:50;not null;default:'teacher'"` // admin, teacher
	Status   string `json:"status" gorm:"size:50;not null;default:'active'"` // active, inactive
	Avatar   string `json:"avatar" gorm:"size:500"`

	// Relationships
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:UserID"`
}

// Teacher model
type Teacher struct {
	BaseModel
	UserID    uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	FirstName string `json:"first_name" gorm:"size:100;not null"`
	LastName  string `json:"last_name" gorm:"size:100;not null"`
	Specialty string `json:"specialty" gorm:"size:100"`
	Phone     string `json:"phone" gorm:"size:20"`
	Active    bool   `json:"active" gorm:"default:true"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Student model
type Student struct {
	BaseModel
	FirstName     string     `json:"first_name" gorm:"size:100;not null"`
	LastName      string     `json:"last_name" gorm:"size:100;not null"`
	DocumentID    string     `json:"document_id" gorm:"size:50;uniqueIndex"`
	Email         string     `json:"email" gorm:"size:255"`
	Phone         string     `json:"phone" gorm:"size:20"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	GuardianName  string     `json:"guardian_name" gorm:"size:200"`
	GuardianPhone string     `json:"guardian_phone" gorm:"size:20"`
	Address       string     `json:"address" gorm:"size:500"`
	Status        string     `json:"status" gorm:"size:50;not null;default:'active'"` // active, inactive
}

// Subject model
type Subject struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null"`
	Code        string `json:"code" gorm:"size:50;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`
}

// Classroom model
type Classroom struct {
	BaseModel
	Name     string `json:"name" gorm:"size:100;not null"`
	Capacity int    `json:"capacity" gorm:"not null"`
	Location string `json:"location" gorm:"size:255"`
	Active   bool   `json:"active" gorm:"default:true"`
}

// CourseSession is a recurring scheduled class: a subject taught by one teacher
// in one classroom on a fixed set of weekdays within a fixed time window.
// DaysOfWeek holds lowercase Spanish weekday names ("lunes", "martes", ...)
// as a proper array column. StartTime/EndTime are "HH:MM" strings with
// StartTime < EndTime enforced at the controller boundary.
type CourseSession struct {
	BaseModel
	SubjectID   uint           `json:"subject_id" gorm:"not null"`
	TeacherID   uint           `json:"teacher_id" gorm:"not null"`
	ClassroomID uint           `json:"classroom_id" gorm:"not null"`
	DaysOfWeek  pq.StringArray `json:"days_of_week" gorm:"type:text[];not null"`
	StartTime   string         `json:"start_time" gorm:"size:5;not null"`
	EndTime     string         `json:"end_time" gorm:"size:5;not null"`
	Capacity    int            `json:"capacity" gorm:"not null"`
	Status      string         `json:"status" gorm:"size:50;not null;default:'Activo'"`

	// Relationships
	Subject   Subject   `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Teacher   Teacher   `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Classroom Classroom `json:"classroom,omitempty" gorm:"foreignKey:ClassroomID"`
}

// Enrollment links a student to a course session. The composite unique index
// guarantees at most one enrollment per (session, student) pair.
type Enrollment struct {
	BaseModel
	CourseSessionID uint   `json:"course_session_id" gorm:"not null;uniqueIndex:idx_enrollment_session_student"`
	StudentID       uint   `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_session_student"`
	Status          string `json:"status" gorm:"size:50;not null;default:'Inscrito'"`

	// Relationships
	CourseSession CourseSession `json:"course_session,omitempty" gorm:"foreignKey:CourseSessionID"`
	Student       Student       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// AttendanceRecord is one status entry per (session, student, calendar date).
// The composite unique index backs the natural-key upsert: concurrent
// submissions and reconciler re-runs cannot duplicate a row. RecordedAt is the
// wall-clock instant the status was entered (previously smuggled inside the
// free-text comment); Comment remains for annotations such as the reconciler's
// omission marker.
type AttendanceRecord struct {
	BaseModel
	CourseSessionID uint             `json:"course_session_id" gorm:"not null;uniqueIndex:idx_attendance_natural_key"`
	StudentID       uint             `json:"student_id" gorm:"not null;uniqueIndex:idx_attendance_natural_key"`
	Date            time.Time        `json:"date" gorm:"type:date;not null;uniqueIndex:idx_attendance_natural_key"`
	Status          AttendanceStatus `json:"status" gorm:"size:50;not null"`
	Comment         string           `json:"comment" gorm:"size:500"`
	RecordedAt      *time.Time       `json:"recorded_at"`
	RecordedByID    *uint            `json:"recorded_by_id"`

	// Relationships
	CourseSession CourseSession `json:"course_session,omitempty" gorm:"foreignKey:CourseSessionID"`
	Student       Student       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	RecordedBy    *User         `json:"recorded_by,omitempty" gorm:"foreignKey:RecordedByID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:jsonb"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID  uint       `json:"user_id" gorm:"not null"`
	Title   string     `json:"title" gorm:"size:255;not null"`
	Message string     `json:"message" gorm:"type:text;not null"`
	Type    string     `json:"type" gorm:"size:50;not null"` // info, warning, error, success
	Read    bool       `json:"read" gorm:"default:false"`
	ReadAt  *time.Time `json:"read_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending'"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
