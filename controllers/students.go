package controllers

import (
	"strconv"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/utils"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct{}

type CreateStudentRequest struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	DocumentID    string `json:"document_id" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	DateOfBirth   string `json:"date_of_birth"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	Address       string `json:"address"`
}

// GetStudents returns all students with pagination
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var students []models.Student
	var total int64

	query := database.DB.Model(&models.Student{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR document_id ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Offset(offset).Limit(limit).
		Order("last_name ASC, first_name ASC").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener los estudiantes",
		})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudent returns a specific student by ID
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de estudiante inválido",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Estudiante no encontrado",
		})
	}

	return c.JSON(fiber.Map{"student": student})
}

// CreateStudent creates a new student
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Datos del estudiante inválidos: " + err.Error(),
		})
	}

	var existing models.Student
	if err := database.DB.Where("document_id = ?", req.DocumentID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Ya existe un estudiante con ese documento",
		})
	}

	student := models.Student{
		FirstName:     utils.SanitizeString(req.FirstName),
		LastName:      utils.SanitizeString(req.LastName),
		DocumentID:    utils.SanitizeString(req.DocumentID),
		Email:         utils.SanitizeString(req.Email),
		Phone:         utils.SanitizeString(req.Phone),
		GuardianName:  utils.SanitizeString(req.GuardianName),
		GuardianPhone: utils.SanitizeString(req.GuardianPhone),
		Address:       utils.SanitizeString(req.Address),
		Status:        "active",
	}

	if req.DateOfBirth != "" {
		dob, err := utils.ParseDate(req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Fecha de nacimiento inválida. Formato esperado: YYYY-MM-DD",
			})
		}
		student.DateOfBirth = &dob
	}

	if err := database.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo crear el estudiante",
		})
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID, fiber.Map{
		"name":        student.FirstName + " " + student.LastName,
		"document_id": student.DocumentID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Estudiante creado exitosamente",
		"student": student,
	})
}

// UpdateStudent updates an existing student
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de estudiante inválido",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Estudiante no encontrado",
		})
	}

	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = utils.SanitizeString(req.FirstName)
	}
	if req.LastName != "" {
		updates["last_name"] = utils.SanitizeString(req.LastName)
	}
	if req.Email != "" {
		updates["email"] = utils.SanitizeString(req.Email)
	}
	if req.Phone != "" {
		updates["phone"] = utils.SanitizeString(req.Phone)
	}
	if req.GuardianName != "" {
		updates["guardian_name"] = utils.SanitizeString(req.GuardianName)
	}
	if req.GuardianPhone != "" {
		updates["guardian_phone"] = utils.SanitizeString(req.GuardianPhone)
	}
	if req.Address != "" {
		updates["address"] = utils.SanitizeString(req.Address)
	}
	if req.DocumentID != "" && req.DocumentID != student.DocumentID {
		var existing models.Student
		if err := database.DB.Where("document_id = ? AND id != ?", req.DocumentID, student.ID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Ya existe un estudiante con ese documento",
			})
		}
		updates["document_id"] = utils.SanitizeString(req.DocumentID)
	}
	if req.DateOfBirth != "" {
		dob, err := utils.ParseDate(req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Fecha de nacimiento inválida. Formato esperado: YYYY-MM-DD",
			})
		}
		updates["date_of_birth"] = dob
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&student).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo actualizar el estudiante",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Estudiante actualizado exitosamente",
		"student": student,
	})
}

// DeleteStudent soft-deletes a student and withdraws their active enrollments
func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de estudiante inválido",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Estudiante no encontrado",
		})
	}

	database.DB.Model(&models.Enrollment{}).
		Where("student_id = ? AND status = ?", student.ID, models.EnrollmentActive).
		Update("status", models.EnrollmentWithdrawn)

	if err := database.DB.Delete(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo eliminar el estudiante",
		})
	}

	middleware.LogActivity(c, "DELETE", "students", student.ID, fiber.Map{
		"name": student.FirstName + " " + student.LastName,
	})

	return c.JSON(fiber.Map{
		"message": "Estudiante eliminado exitosamente",
	})
}
