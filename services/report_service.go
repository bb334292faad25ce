package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"academia_go/database"
	"academia_go/models"
	"academia_go/services/attendance"
	"academia_go/storage"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService builds attendance spreadsheets for a course session: one row
// per enrolled student, one column per recorded date, plus summary columns.
type ReportService struct {
	store *storage.Service
}

func NewReportService(store *storage.Service) *ReportService {
	return &ReportService{store: store}
}

// Report is a generated spreadsheet plus its suggested file name. S3Key is set
// only when the archive upload succeeded.
type Report struct {
	FileName string
	Content  []byte
	S3Key    string
}

var statusAbbreviations = map[models.AttendanceStatus]string{
	models.AttendancePresent: "P",
	models.AttendanceAbsent:  "A",
	models.AttendanceLate:    "T",
	models.AttendanceExcused: "J",
}

// BuildCourseReport generates the attendance matrix for one course session.
// When the S3 side is configured the file is also archived; an upload failure
// degrades to returning the file inline only.
func (rs *ReportService) BuildCourseReport(ctx context.Context, sessionID uint) (*Report, error) {
	var session models.CourseSession
	err := database.DB.
		Preload("Subject").
		Preload("Teacher").
		First(&session, sessionID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("course session not found")
		}
		return nil, fmt.Errorf("failed to load course session: %v", err)
	}

	var enrollments []models.Enrollment
	err = database.DB.
		Preload("Student").
		Where("course_session_id = ? AND status = ?", sessionID, models.EnrollmentActive).
		Order("student_id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %v", err)
	}

	records, err := attendance.NewGormStore(database.DB).FindBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance records: %v", err)
	}

	content, err := rs.buildWorkbook(session, enrollments, records)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report := &Report{
		FileName: fmt.Sprintf("asistencia_%s_%s.xlsx",
			session.Subject.Code, now.Format("2006-01-02")),
		Content: content,
	}

	if rs.store.Configured() {
		key := storage.ReportKey(sessionID, now)
		if err := rs.store.Upload(ctx, key, content, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
			logrus.WithError(err).WithField("course_session_id", sessionID).
				Warn("Failed to archive attendance report to S3")
		} else {
			report.S3Key = key
		}
	}

	return report, nil
}

func (rs *ReportService) buildWorkbook(session models.CourseSession, enrollments []models.Enrollment, records []models.AttendanceRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Asistencia"
	f.SetSheetName("Sheet1", sheet)

	// Distinct dates, ascending, become the matrix columns.
	dateSet := make(map[time.Time]bool)
	statusByKey := make(map[string]models.AttendanceStatus)
	for _, rec := range records {
		day := attendance.DateOnly(rec.Date)
		dateSet[day] = true
		statusByKey[fmt.Sprintf("%d:%s", rec.StudentID, day.Format("2006-01-02"))] = rec.Status
	}
	dates := make([]time.Time, 0, len(dateSet))
	for day := range dateSet {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	f.SetCellValue(sheet, "A1", session.Subject.Name)
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Docente: %s %s", session.Teacher.FirstName, session.Teacher.LastName))
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Horario: %s - %s", session.StartTime, session.EndTime))

	headerRow := 5
	f.SetCellValue(sheet, cell(1, headerRow), "Documento")
	f.SetCellValue(sheet, cell(2, headerRow), "Estudiante")
	for i, day := range dates {
		f.SetCellValue(sheet, cell(3+i, headerRow), day.Format("02/01"))
	}
	pctCol := 3 + len(dates)
	f.SetCellValue(sheet, cell(pctCol, headerRow), "% Asistencia")

	summaries := attendance.SummarizeByStudent(records)
	pctByStudent := make(map[uint]float64, len(summaries))
	for _, s := range summaries {
		pctByStudent[s.StudentID] = s.AttendancePercentage
	}

	for i, enrollment := range enrollments {
		row := headerRow + 1 + i
		f.SetCellValue(sheet, cell(1, row), enrollment.Student.DocumentID)
		f.SetCellValue(sheet, cell(2, row), fmt.Sprintf("%s %s",
			enrollment.Student.LastName, enrollment.Student.FirstName))
		for j, day := range dates {
			key := fmt.Sprintf("%d:%s", enrollment.StudentID, day.Format("2006-01-02"))
			if status, ok := statusByKey[key]; ok {
				f.SetCellValue(sheet, cell(3+j, row), statusAbbreviations[status])
			}
		}
		if pct, ok := pctByStudent[enrollment.StudentID]; ok {
			f.SetCellValue(sheet, cell(pctCol, row), fmt.Sprintf("%.1f%%", pct))
		}
	}

	legendRow := headerRow + len(enrollments) + 2
	f.SetCellValue(sheet, cell(1, legendRow), "P=Presente  A=Ausente  T=Tardanza  J=Justificado")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %v", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
