package controllers

import (
	"strconv"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct{}

type EnrollRequest struct {
	CourseSessionID uint `json:"course_session_id"`
	StudentID       uint `json:"student_id"`
}

type BulkEnrollRequest struct {
	CourseSessionID uint   `json:"course_session_id"`
	StudentIDs      []uint `json:"student_ids"`
}

// GetEnrollmentsBySession lists enrollments of a course session
func (ec *EnrollmentController) GetEnrollmentsBySession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseUint(c.Params("course_session_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	query := database.DB.Preload("Student").
		Where("course_session_id = ?", uint(sessionID))
	if status := c.Query("status", models.EnrollmentActive); status != "" {
		query = query.Where("status = ?", status)
	}

	var enrollments []models.Enrollment
	if err := query.Order("student_id ASC").Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener las inscripciones",
		})
	}

	return c.JSON(fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}

// GetEnrollmentsByStudent lists a student's enrollments
func (ec *EnrollmentController) GetEnrollmentsByStudent(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de estudiante inválido",
		})
	}

	var enrollments []models.Enrollment
	if err := database.DB.
		Preload("CourseSession").
		Preload("CourseSession.Subject").
		Preload("CourseSession.Teacher").
		Where("student_id = ?", uint(studentID)).
		Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener las inscripciones",
		})
	}

	return c.JSON(fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}

func enrollOne(sessionID, studentID uint) (models.Enrollment, int, string) {
	var session models.CourseSession
	if err := database.DB.First(&session, sessionID).Error; err != nil {
		return models.Enrollment{}, fiber.StatusNotFound, "Sesión no encontrada"
	}
	if session.Status != models.SessionActive {
		return models.Enrollment{}, fiber.StatusBadRequest, "La sesión no está activa"
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		return models.Enrollment{}, fiber.StatusNotFound, "Estudiante no encontrado"
	}

	// Re-activate a withdrawn enrollment instead of violating the unique pair
	var existing models.Enrollment
	if err := database.DB.Unscoped().
		Where("course_session_id = ? AND student_id = ?", sessionID, studentID).
		First(&existing).Error; err == nil {
		if existing.DeletedAt.Valid {
			database.DB.Unscoped().Model(&existing).Updates(map[string]interface{}{
				"deleted_at": nil,
				"status":     models.EnrollmentActive,
			})
			return existing, fiber.StatusCreated, ""
		}
		if existing.Status == models.EnrollmentActive {
			return models.Enrollment{}, fiber.StatusConflict, "El estudiante ya está inscrito en esta sesión"
		}
		database.DB.Model(&existing).Update("status", models.EnrollmentActive)
		return existing, fiber.StatusCreated, ""
	}

	var activeCount int64
	database.DB.Model(&models.Enrollment{}).
		Where("course_session_id = ? AND status = ?", sessionID, models.EnrollmentActive).
		Count(&activeCount)
	if int(activeCount) >= session.Capacity {
		return models.Enrollment{}, fiber.StatusConflict, "La sesión alcanzó su capacidad máxima"
	}

	enrollment := models.Enrollment{
		CourseSessionID: sessionID,
		StudentID:       studentID,
		Status:          models.EnrollmentActive,
	}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		return models.Enrollment{}, fiber.StatusInternalServerError, "No se pudo crear la inscripción"
	}
	return enrollment, fiber.StatusCreated, ""
}

// Enroll enrolls one student into a course session
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}
	if req.CourseSessionID == 0 || req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Sesión y estudiante son obligatorios",
		})
	}

	enrollment, status, errMsg := enrollOne(req.CourseSessionID, req.StudentID)
	if errMsg != "" {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	database.DB.Preload("Student").First(&enrollment, enrollment.ID)

	middleware.LogActivity(c, "CREATE", "enrollments", enrollment.ID, fiber.Map{
		"course_session_id": req.CourseSessionID,
		"student_id":        req.StudentID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Inscripción creada exitosamente",
		"enrollment": enrollment,
	})
}

// BulkEnroll enrolls several students at once, reporting per-student outcomes
func (ec *EnrollmentController) BulkEnroll(c *fiber.Ctx) error {
	var req BulkEnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}
	if req.CourseSessionID == 0 || len(req.StudentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Sesión y lista de estudiantes son obligatorios",
		})
	}

	type outcome struct {
		StudentID uint   `json:"student_id"`
		Enrolled  bool   `json:"enrolled"`
		Error     string `json:"error,omitempty"`
	}

	var outcomes []outcome
	succeeded := 0
	for _, studentID := range req.StudentIDs {
		_, _, errMsg := enrollOne(req.CourseSessionID, studentID)
		o := outcome{StudentID: studentID, Enrolled: errMsg == ""}
		o.Error = errMsg
		if o.Enrolled {
			succeeded++
		}
		outcomes = append(outcomes, o)
	}

	middleware.LogActivity(c, "CREATE", "enrollments", req.CourseSessionID, fiber.Map{
		"bulk":      true,
		"requested": len(req.StudentIDs),
		"enrolled":  succeeded,
	})

	status := fiber.StatusCreated
	if succeeded == 0 {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"message":  "Inscripción masiva procesada",
		"enrolled": succeeded,
		"failed":   len(req.StudentIDs) - succeeded,
		"outcomes": outcomes,
	})
}

// Withdraw marks an enrollment as withdrawn. Attendance history is preserved.
func (ec *EnrollmentController) Withdraw(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de inscripción inválido",
		})
	}

	var enrollment models.Enrollment
	if err := database.DB.First(&enrollment, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Inscripción no encontrada",
		})
	}

	if enrollment.Status == models.EnrollmentWithdrawn {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "La inscripción ya fue retirada",
		})
	}

	if err := database.DB.Model(&enrollment).
		Update("status", models.EnrollmentWithdrawn).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo retirar la inscripción",
		})
	}

	middleware.LogActivity(c, "UPDATE", "enrollments", enrollment.ID, fiber.Map{
		"action": "withdraw",
	})

	return c.JSON(fiber.Map{
		"message": "Inscripción retirada exitosamente",
	})
}
