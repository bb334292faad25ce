package controllers

import (
	"strconv"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TeacherController struct{}

type CreateTeacherRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=100"`
	Password  string `json:"password" validate:"required,min=6"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
}

// GetTeachers returns all teachers with pagination
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var teachers []models.Teacher
	var total int64

	query := database.DB.Model(&models.Teacher{})

	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Preload("User").
		Offset(offset).Limit(limit).Order("last_name ASC").Find(&teachers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener los docentes",
		})
	}

	return c.JSON(fiber.Map{
		"teachers": teachers,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetTeacher returns a specific teacher by ID
func (tc *TeacherController) GetTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de docente inválido",
		})
	}

	var teacher models.Teacher
	if err := database.DB.Preload("User").First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Docente no encontrado",
		})
	}

	return c.JSON(fiber.Map{"teacher": teacher})
}

// CreateTeacher creates a user account and its teacher profile in one step
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var req CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Datos del docente inválidos: " + err.Error(),
		})
	}

	var existing models.User
	if err := database.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "El nombre de usuario ya existe",
		})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo procesar la contraseña",
		})
	}

	var teacher models.Teacher
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Username: utils.SanitizeString(req.Username),
			Password: hashed,
			Email:    utils.SanitizeString(req.Email),
			Phone:    utils.SanitizeString(req.Phone),
			Role:     "teacher",
			Status:   "active",
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		teacher = models.Teacher{
			UserID:    user.ID,
			FirstName: utils.SanitizeString(req.FirstName),
			LastName:  utils.SanitizeString(req.LastName),
			Specialty: utils.SanitizeString(req.Specialty),
			Phone:     utils.SanitizeString(req.Phone),
			Active:    true,
		}
		return tx.Create(&teacher).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo crear el docente",
		})
	}

	database.DB.Preload("User").First(&teacher, teacher.ID)

	middleware.LogActivity(c, "CREATE", "teachers", teacher.ID, fiber.Map{
		"name": req.FirstName + " " + req.LastName,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Docente creado exitosamente",
		"teacher": teacher,
	})
}

// UpdateTeacher updates an existing teacher profile
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de docente inválido",
		})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Docente no encontrado",
		})
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Specialty string `json:"specialty"`
		Phone     string `json:"phone"`
		Active    *bool  `json:"active"`
	}
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
	if req.Specialty != "" {
		updates["specialty"] = utils.SanitizeString(req.Specialty)
	}
	if req.Phone != "" {
		updates["phone"] = utils.SanitizeString(req.Phone)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&teacher).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo actualizar el docente",
			})
		}
	}

	database.DB.Preload("User").First(&teacher, teacher.ID)

	middleware.LogActivity(c, "UPDATE", "teachers", teacher.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Docente actualizado exitosamente",
		"teacher": teacher,
	})
}

// DeleteTeacher soft-deletes a teacher. Rejected while active course sessions reference them.
func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de docente inválido",
		})
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Docente no encontrado",
		})
	}

	var sessionCount int64
	database.DB.Model(&models.CourseSession{}).
		Where("teacher_id = ? AND status = ?", teacher.ID, models.SessionActive).
		Count(&sessionCount)
	if sessionCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "El docente tiene sesiones activas asignadas",
		})
	}

	if err := database.DB.Delete(&teacher).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo eliminar el docente",
		})
	}

	middleware.LogActivity(c, "DELETE", "teachers", teacher.ID, fiber.Map{
		"name": teacher.FirstName + " " + teacher.LastName,
	})

	return c.JSON(fiber.Map{
		"message": "Docente eliminado exitosamente",
	})
}
