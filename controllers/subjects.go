package controllers

import (
	"strconv"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/utils"

	"github.com/gofiber/fiber/v2"
)

type SubjectController struct{}

// GetSubjects returns all subjects
func (sc *SubjectController) GetSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject

	query := database.DB.Model(&models.Subject{})
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Order("name ASC").Find(&subjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener las materias",
		})
	}

	return c.JSON(fiber.Map{
		"subjects": subjects,
		"total":    len(subjects),
	})
}

// GetSubject returns a specific subject by ID
func (sc *SubjectController) GetSubject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de materia inválido",
		})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Materia no encontrada",
		})
	}

	return c.JSON(fiber.Map{"subject": subject})
}

// CreateSubject creates a new subject
func (sc *SubjectController) CreateSubject(c *fiber.Ctx) error {
	var subject models.Subject
	if err := c.BodyParser(&subject); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if subject.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El nombre de la materia es obligatorio",
		})
	}
	if subject.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El código de la materia es obligatorio",
		})
	}

	var existing models.Subject
	if err := database.DB.Where("code = ?", subject.Code).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Ya existe una materia con ese código",
		})
	}

	subject.Name = utils.SanitizeString(subject.Name)
	subject.Code = utils.SanitizeString(subject.Code)
	subject.Active = true

	if err := database.DB.Create(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo crear la materia",
		})
	}

	middleware.LogActivity(c, "CREATE", "subjects", subject.ID, subject)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Materia creada exitosamente",
		"subject": subject,
	})
}

// UpdateSubject updates an existing subject
func (sc *SubjectController) UpdateSubject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de materia inválido",
		})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Materia no encontrada",
		})
	}

	var req struct {
		Name        string `json:"name"`
		Code        string `json:"code"`
		Description string `json:"description"`
		Active      *bool  `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = utils.SanitizeString(req.Name)
	}
	if req.Description != "" {
		updates["description"] = utils.SanitizeString(req.Description)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Code != "" && req.Code != subject.Code {
		var existing models.Subject
		if err := database.DB.Where("code = ? AND id != ?", req.Code, subject.ID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Ya existe una materia con ese código",
			})
		}
		updates["code"] = utils.SanitizeString(req.Code)
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&subject).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo actualizar la materia",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "subjects", subject.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Materia actualizada exitosamente",
		"subject": subject,
	})
}

// DeleteSubject soft-deletes a subject. Rejected while active course sessions reference it.
func (sc *SubjectController) DeleteSubject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de materia inválido",
		})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Materia no encontrada",
		})
	}

	var sessionCount int64
	database.DB.Model(&models.CourseSession{}).
		Where("subject_id = ? AND status = ?", subject.ID, models.SessionActive).
		Count(&sessionCount)
	if sessionCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "La materia tiene sesiones activas asignadas",
		})
	}

	if err := database.DB.Delete(&subject).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo eliminar la materia",
		})
	}

	middleware.LogActivity(c, "DELETE", "subjects", subject.ID, subject)

	return c.JSON(fiber.Map{
		"message": "Materia eliminada exitosamente",
	})
}
