package controllers

import (
	"strconv"
	"strings"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/services/attendance"
	"academia_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
)

type CourseSessionController struct{}

type CourseSessionRequest struct {
	SubjectID   uint     `json:"subject_id"`
	TeacherID   uint     `json:"teacher_id"`
	ClassroomID uint     `json:"classroom_id"`
	DaysOfWeek  []string `json:"days_of_week"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	// TimeWindow accepts the legacy "HH:MM - HH:MM" form on imports
	TimeWindow string `json:"time_window"`
	Capacity   int    `json:"capacity"`
	Status     string `json:"status"`
}

func (req *CourseSessionRequest) window() (attendance.TimeWindow, error) {
	if req.TimeWindow != "" {
		return attendance.ParseTimeWindow(req.TimeWindow)
	}
	win := attendance.TimeWindow{Start: req.StartTime, End: req.EndTime}
	if err := win.Validate(); err != nil {
		return attendance.TimeWindow{}, err
	}
	return win, nil
}

func validateDaysOfWeek(days []string) (normalized []string, ok bool) {
	if len(days) == 0 {
		return nil, false
	}
	seen := make(map[string]bool)
	for _, day := range days {
		day = strings.ToLower(strings.TrimSpace(day))
		if !utils.IsValidWeekday(day) {
			return nil, false
		}
		if !seen[day] {
			seen[day] = true
			normalized = append(normalized, day)
		}
	}
	return normalized, true
}

// GetCourseSessions returns all course sessions with pagination
func (csc *CourseSessionController) GetCourseSessions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var sessions []models.CourseSession
	var total int64

	query := database.DB.Model(&models.CourseSession{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}

	query.Count(&total)

	if err := query.Preload("Subject").Preload("Teacher").Preload("Classroom").
		Offset(offset).Limit(limit).Order("id ASC").Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener las sesiones",
		})
	}

	return c.JSON(fiber.Map{
		"course_sessions": sessions,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetCourseSession returns a specific course session by ID
func (csc *CourseSessionController) GetCourseSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	var session models.CourseSession
	if err := database.DB.Preload("Subject").Preload("Teacher").Preload("Classroom").
		First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}

	return c.JSON(fiber.Map{"course_session": session})
}

// GetMyCourseSessions returns the sessions assigned to the authenticated teacher
func (csc *CourseSessionController) GetMyCourseSessions(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var teacher models.Teacher
	if err := database.DB.Where("user_id = ?", user.ID).First(&teacher).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Perfil de docente no encontrado",
		})
	}

	var sessions []models.CourseSession
	query := database.DB.Preload("Subject").Preload("Classroom").
		Where("teacher_id = ?", teacher.ID)
	if status := c.Query("status", models.SessionActive); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("id ASC").Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener las sesiones",
		})
	}

	return c.JSON(fiber.Map{
		"course_sessions": sessions,
		"total":           len(sessions),
	})
}

// CreateCourseSession creates a new course session
func (csc *CourseSessionController) CreateCourseSession(c *fiber.Ctx) error {
	var req CourseSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if req.SubjectID == 0 || req.TeacherID == 0 || req.ClassroomID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Materia, docente y aula son obligatorios",
		})
	}
	if req.Capacity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "La capacidad debe ser mayor a 0",
		})
	}

	days, ok := validateDaysOfWeek(req.DaysOfWeek)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Días de la semana inválidos. Use nombres en español: lunes, martes, ...",
		})
	}

	win, err := req.window()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Horario inválido: la hora de inicio debe ser anterior a la de fin (HH:MM)",
		})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, req.SubjectID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Materia no encontrada",
		})
	}
	var teacher models.Teacher
	if err := database.DB.First(&teacher, req.TeacherID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Docente no encontrado",
		})
	}
	var classroom models.Classroom
	if err := database.DB.First(&classroom, req.ClassroomID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Aula no encontrada",
		})
	}
	if req.Capacity > classroom.Capacity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "La capacidad de la sesión supera la del aula",
		})
	}

	status := req.Status
	if status == "" {
		status = models.SessionActive
	}
	if !utils.IsValidSessionStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Estado inválido. Debe ser: Activo, Inactivo, Cancelado o Finalizado",
		})
	}

	session := models.CourseSession{
		SubjectID:   req.SubjectID,
		TeacherID:   req.TeacherID,
		ClassroomID: req.ClassroomID,
		DaysOfWeek:  days,
		StartTime:   win.Start,
		EndTime:     win.End,
		Capacity:    req.Capacity,
		Status:      status,
	}

	if err := database.DB.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo crear la sesión",
		})
	}

	database.DB.Preload("Subject").Preload("Teacher").Preload("Classroom").
		First(&session, session.ID)

	middleware.LogActivity(c, "CREATE", "course_sessions", session.ID, fiber.Map{
		"subject_id": session.SubjectID,
		"teacher_id": session.TeacherID,
		"days":       days,
		"window":     win.Start + " - " + win.End,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Sesión creada exitosamente",
		"course_session": session,
	})
}

// UpdateCourseSession updates an existing course session
func (csc *CourseSessionController) UpdateCourseSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	var session models.CourseSession
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}

	var req CourseSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	updates := map[string]interface{}{}

	if req.SubjectID != 0 {
		var subject models.Subject
		if err := database.DB.First(&subject, req.SubjectID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Materia no encontrada",
			})
		}
		updates["subject_id"] = req.SubjectID
	}
	if req.TeacherID != 0 {
		var teacher models.Teacher
		if err := database.DB.First(&teacher, req.TeacherID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Docente no encontrado",
			})
		}
		updates["teacher_id"] = req.TeacherID
	}
	if req.ClassroomID != 0 {
		var classroom models.Classroom
		if err := database.DB.First(&classroom, req.ClassroomID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Aula no encontrada",
			})
		}
		updates["classroom_id"] = req.ClassroomID
	}
	if len(req.DaysOfWeek) > 0 {
		days, ok := validateDaysOfWeek(req.DaysOfWeek)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Días de la semana inválidos",
			})
		}
		updates["days_of_week"] = pq.StringArray(days)
	}
	if req.StartTime != "" || req.EndTime != "" || req.TimeWindow != "" {
		// Partial window edits validate against the stored counterpart
		if req.TimeWindow == "" {
			if req.StartTime == "" {
				req.StartTime = session.StartTime
			}
			if req.EndTime == "" {
				req.EndTime = session.EndTime
			}
		}
		win, err := req.window()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Horario inválido: la hora de inicio debe ser anterior a la de fin (HH:MM)",
			})
		}
		updates["start_time"] = win.Start
		updates["end_time"] = win.End
	}
	if req.Capacity != 0 {
		if req.Capacity < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "La capacidad debe ser mayor a 0",
			})
		}
		updates["capacity"] = req.Capacity
	}
	if req.Status != "" {
		if !utils.IsValidSessionStatus(req.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Estado inválido. Debe ser: Activo, Inactivo, Cancelado o Finalizado",
			})
		}
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&session).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo actualizar la sesión",
			})
		}
	}

	database.DB.Preload("Subject").Preload("Teacher").Preload("Classroom").
		First(&session, session.ID)

	middleware.LogActivity(c, "UPDATE", "course_sessions", session.ID, updates)

	return c.JSON(fiber.Map{
		"message":        "Sesión actualizada exitosamente",
		"course_session": session,
	})
}

// DeleteCourseSession soft-deletes a course session and withdraws its enrollments
func (csc *CourseSessionController) DeleteCourseSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	var session models.CourseSession
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}

	database.DB.Model(&models.Enrollment{}).
		Where("course_session_id = ? AND status = ?", session.ID, models.EnrollmentActive).
		Update("status", models.EnrollmentWithdrawn)

	if err := database.DB.Delete(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo eliminar la sesión",
		})
	}

	middleware.LogActivity(c, "DELETE", "course_sessions", session.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Sesión eliminada exitosamente",
	})
}
