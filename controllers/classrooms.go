package controllers

import (
	"strconv"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/utils"

	"github.com/gofiber/fiber/v2"
)

type ClassroomController struct{}

// GetClassrooms returns all classrooms
func (cc *ClassroomController) GetClassrooms(c *fiber.Ctx) error {
	var classrooms []models.Classroom

	query := database.DB.Model(&models.Classroom{})
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}
	if minCapacity := c.Query("min_capacity"); minCapacity != "" {
		query = query.Where("capacity >= ?", minCapacity)
	}

	if err := query.Order("name ASC").Find(&classrooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener las aulas",
		})
	}

	return c.JSON(fiber.Map{
		"classrooms": classrooms,
		"total":      len(classrooms),
	})
}

// GetClassroom returns a specific classroom by ID
func (cc *ClassroomController) GetClassroom(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de aula inválido",
		})
	}

	var classroom models.Classroom
	if err := database.DB.First(&classroom, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Aula no encontrada",
		})
	}

	return c.JSON(fiber.Map{"classroom": classroom})
}

// CreateClassroom creates a new classroom
func (cc *ClassroomController) CreateClassroom(c *fiber.Ctx) error {
	var classroom models.Classroom
	if err := c.BodyParser(&classroom); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if classroom.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "El nombre del aula es obligatorio",
		})
	}
	if classroom.Capacity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "La capacidad debe ser mayor a 0",
		})
	}

	var existing models.Classroom
	if err := database.DB.Where("name = ?", classroom.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Ya existe un aula con ese nombre",
		})
	}

	classroom.Name = utils.SanitizeString(classroom.Name)
	classroom.Location = utils.SanitizeString(classroom.Location)
	classroom.Active = true

	if err := database.DB.Create(&classroom).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo crear el aula",
		})
	}

	middleware.LogActivity(c, "CREATE", "classrooms", classroom.ID, classroom)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Aula creada exitosamente",
		"classroom": classroom,
	})
}

// UpdateClassroom updates an existing classroom
func (cc *ClassroomController) UpdateClassroom(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de aula inválido",
		})
	}

	var classroom models.Classroom
	if err := database.DB.First(&classroom, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Aula no encontrada",
		})
	}

	var req struct {
		Name     string `json:"name"`
		Capacity *int   `json:"capacity"`
		Location string `json:"location"`
		Active   *bool  `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != "" && req.Name != classroom.Name {
		var existing models.Classroom
		if err := database.DB.Where("name = ? AND id != ?", req.Name, classroom.ID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Ya existe un aula con ese nombre",
			})
		}
		updates["name"] = utils.SanitizeString(req.Name)
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "La capacidad debe ser mayor a 0",
			})
		}
		updates["capacity"] = *req.Capacity
	}
	if req.Location != "" {
		updates["location"] = utils.SanitizeString(req.Location)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&classroom).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo actualizar el aula",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "classrooms", classroom.ID, updates)

	return c.JSON(fiber.Map{
		"message":   "Aula actualizada exitosamente",
		"classroom": classroom,
	})
}

// DeleteClassroom soft-deletes a classroom. Rejected while active course sessions reference it.
func (cc *ClassroomController) DeleteClassroom(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de aula inválido",
		})
	}

	var classroom models.Classroom
	if err := database.DB.First(&classroom, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Aula no encontrada",
		})
	}

	var sessionCount int64
	database.DB.Model(&models.CourseSession{}).
		Where("classroom_id = ? AND status = ?", classroom.ID, models.SessionActive).
		Count(&sessionCount)
	if sessionCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "El aula tiene sesiones activas asignadas",
		})
	}

	if err := database.DB.Delete(&classroom).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo eliminar el aula",
		})
	}

	middleware.LogActivity(c, "DELETE", "classrooms", classroom.ID, classroom)

	return c.JSON(fiber.Map{
		"message": "Aula eliminada exitosamente",
	})
}
