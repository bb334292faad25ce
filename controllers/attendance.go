package controllers

import (
	"errors"
	"strconv"
	"time"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/services"
	"academia_go/services/attendance"
	"academia_go/storage"

	"github.com/gofiber/fiber/v2"
)

// AttendanceController exposes the recording workflow, the aggregates and the
// reconciler trigger over HTTP. The stateful workflow lives in the attendance
// package; each request rebuilds a sheet from storage so the API stays
// stateless between calls.
type AttendanceController struct {
	manager *attendance.Manager
	store   attendance.RecordStore
	reports *services.ReportService
}

func NewAttendanceController(archive *storage.Service) *AttendanceController {
	store := attendance.NewGormStore(database.DB)
	directory := attendance.NewGormDirectory(database.DB)
	return &AttendanceController{
		manager: attendance.NewManager(store, directory),
		store:   store,
		reports: services.NewReportService(archive),
	}
}

type SubmitAttendanceRequest struct {
	CourseSessionID uint                               `json:"course_session_id"`
	Date            string                             `json:"date"`
	Statuses        map[string]models.AttendanceStatus `json:"statuses"`
}

// loadSession resolves the session and enforces that teachers only touch
// their own sessions. Admins may touch any.
func (ac *AttendanceController) loadSession(c *fiber.Ctx, sessionID uint) (*models.CourseSession, int, string) {
	var session models.CourseSession
	if err := database.DB.Preload("Subject").Preload("Teacher").
		First(&session, sessionID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Sesión no encontrada"
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return nil, fiber.StatusUnauthorized, "Usuario no autenticado"
	}
	if user.Role == "teacher" {
		var teacher models.Teacher
		if err := database.DB.Where("user_id = ?", user.ID).First(&teacher).Error; err != nil {
			return nil, fiber.StatusForbidden, "Perfil de docente no encontrado"
		}
		if session.TeacherID != teacher.ID {
			return nil, fiber.StatusForbidden, "Solo puede registrar asistencia de sus propias sesiones"
		}
	}

	return &session, 0, ""
}

func parseSheetDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

// GetSheet returns the recording sheet for a session and date: enrolled
// students, any stored statuses, and the late-modification flag.
func (ac *AttendanceController) GetSheet(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Query("course_session_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	date, err := parseSheetDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fecha inválida. Formato esperado: YYYY-MM-DD",
		})
	}

	session, status, errMsg := ac.loadSession(c, uint(sessionID))
	if errMsg != "" {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	sheet, err := ac.manager.Load(c.Context(), *session, date, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo cargar la hoja de asistencia",
		})
	}

	type sheetRow struct {
		StudentID uint                    `json:"student_id"`
		Student   models.Student          `json:"student"`
		Status    models.AttendanceStatus `json:"status,omitempty"`
		Comment   string                  `json:"comment,omitempty"`
	}

	rows := make([]sheetRow, 0, len(sheet.Enrollments()))
	for _, enrollment := range sheet.Enrollments() {
		row := sheetRow{
			StudentID: enrollment.StudentID,
			Student:   enrollment.Student,
		}
		if st, ok := sheet.Status(enrollment.StudentID); ok {
			row.Status = st
		}
		if rec, ok := sheet.Existing(enrollment.StudentID); ok {
			row.Comment = rec.Comment
		}
		rows = append(rows, row)
	}

	return c.JSON(fiber.Map{
		"course_session":  session,
		"date":            sheet.Date().Format("2006-01-02"),
		"editing":         sheet.Editing(),
		"can_edit_freely": sheet.CanEditFreely(),
		"warning":         sheet.Warning(),
		"rows":            rows,
	})
}

// Submit records attendance for a session and date in one round trip: all
// statuses are validated, then confirmed. Partial persistence failures come
// back as 207 with per-row outcomes so the client can retry.
func (ac *AttendanceController) Submit(c *fiber.Ctx) error {
	var req SubmitAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}
	if req.CourseSessionID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "La sesión es obligatoria",
		})
	}

	date, err := parseSheetDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fecha inválida. Formato esperado: YYYY-MM-DD",
		})
	}

	session, status, errMsg := ac.loadSession(c, req.CourseSessionID)
	if errMsg != "" {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	now := time.Now()
	sheet, err := ac.manager.Load(c.Context(), *session, date, now)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo cargar la hoja de asistencia",
		})
	}

	for rawID, st := range req.Statuses {
		studentID, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "ID de estudiante inválido: " + rawID,
			})
		}
		if err := sheet.SetStatus(uint(studentID), st); err != nil {
			switch {
			case errors.Is(err, attendance.ErrUnknownStatus):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Estado de asistencia inválido: " + string(st),
				})
			case errors.Is(err, attendance.ErrNotEnrolled):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "El estudiante " + rawID + " no está inscrito en esta sesión",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "No se pudo registrar el estado",
				})
			}
		}
	}

	if err := sheet.Submit(); err != nil {
		if errors.Is(err, attendance.ErrIncompleteStatuses) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Todos los estudiantes inscritos deben tener un estado de asistencia",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo procesar el registro",
		})
	}

	result, err := sheet.Confirm(c.Context(), now, user.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrRowFailures) {
			return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
				"error":  "Algunas filas no se pudieron guardar; reintente",
				"result": result,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo guardar la asistencia",
		})
	}

	middleware.LogActivity(c, "CREATE", "attendance_records", req.CourseSessionID, fiber.Map{
		"date":    sheet.Date().Format("2006-01-02"),
		"rows":    result.Succeeded,
		"editing": sheet.Editing(),
		"warning": sheet.Warning(),
	})

	return c.JSON(fiber.Map{
		"message": "Asistencia guardada exitosamente",
		"warning": sheet.Warning(),
		"result":  result,
	})
}

// GetSessionHistory lists a session's attendance records, optionally for one date
func (ac *AttendanceController) GetSessionHistory(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("course_session_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	_, status, errMsg := ac.loadSession(c, uint(sessionID))
	if errMsg != "" {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	var records []models.AttendanceRecord
	if raw := c.Query("date"); raw != "" {
		date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Fecha inválida. Formato esperado: YYYY-MM-DD",
			})
		}
		records, err = ac.store.Find(c.Context(), uint(sessionID), date)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo obtener la asistencia",
			})
		}
	} else {
		records, err = ac.store.FindBySession(c.Context(), uint(sessionID))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo obtener la asistencia",
			})
		}
	}

	return c.JSON(fiber.Map{
		"records": records,
		"total":   len(records),
	})
}

// GetStudentHistory lists every attendance record of one student
func (ac *AttendanceController) GetStudentHistory(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de estudiante inválido",
		})
	}

	records, err := ac.store.FindByStudent(c.Context(), uint(studentID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo obtener la asistencia",
		})
	}

	return c.JSON(fiber.Map{
		"records": records,
		"total":   len(records),
	})
}

// GetCourseStats aggregates a course session by date, by student and overall
func (ac *AttendanceController) GetCourseStats(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("course_session_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	session, status, errMsg := ac.loadSession(c, uint(sessionID))
	if errMsg != "" {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	records, err := ac.store.FindBySession(c.Context(), uint(sessionID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron calcular las estadísticas",
		})
	}

	return c.JSON(fiber.Map{
		"course_session": session,
		"by_date":        attendance.SummarizeByDate(records),
		"by_student":     attendance.SummarizeByStudent(records),
		"totals":         attendance.Totals(records),
	})
}

// GetStudentStats aggregates one student's attendance across every course
func (ac *AttendanceController) GetStudentStats(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de estudiante inválido",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(studentID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Estudiante no encontrado",
		})
	}

	records, err := ac.store.FindByStudent(c.Context(), uint(studentID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron calcular las estadísticas",
		})
	}

	// Per-course breakdown on top of the overall totals
	bySession := make(map[uint][]models.AttendanceRecord)
	for _, rec := range records {
		bySession[rec.CourseSessionID] = append(bySession[rec.CourseSessionID], rec)
	}
	type courseStats struct {
		CourseSessionID uint                    `json:"course_session_id"`
		Totals          attendance.CourseTotals `json:"totals"`
	}
	perCourse := make([]courseStats, 0, len(bySession))
	for sessionID, recs := range bySession {
		perCourse = append(perCourse, courseStats{
			CourseSessionID: sessionID,
			Totals:          attendance.Totals(recs),
		})
	}

	return c.JSON(fiber.Map{
		"student":    student,
		"totals":     attendance.Totals(records),
		"per_course": perCourse,
	})
}

// ExportCourseReport streams the attendance spreadsheet for a course session
func (ac *AttendanceController) ExportCourseReport(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("course_session_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	_, status, errMsg := ac.loadSession(c, uint(sessionID))
	if errMsg != "" {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	report, err := ac.reports.BuildCourseReport(c.Context(), uint(sessionID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo generar el reporte",
		})
	}

	middleware.LogActivity(c, "EXPORT", "attendance_records", uint(sessionID), fiber.Map{
		"file":   report.FileName,
		"s3_key": report.S3Key,
	})

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	return c.Send(report.Content)
}

// Reconcile triggers a manual reconciliation pass. Admin only.
func (ac *AttendanceController) Reconcile(c *fiber.Ctx) error {
	scheduler := services.NewReconcilerScheduler()
	result, err := scheduler.RunOnce(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "No se pudo completar la asistencia automática",
			"result": result,
		})
	}

	middleware.LogActivity(c, "RECONCILE", "attendance_records", 0, fiber.Map{
		"sessions_filled": len(result.Details),
		"rows_failed":     result.Rows.Failed,
	})

	return c.JSON(result)
}
