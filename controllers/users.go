package controllers

import (
	"strconv"

	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct{}

// GetUsers returns all users with pagination
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := database.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("username ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Preload("Teacher").
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener los usuarios",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetUser returns a specific user by ID
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de usuario inválido",
		})
	}

	var user models.User
	if err := database.DB.Preload("Teacher").First(&user, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}

	return c.JSON(fiber.Map{"user": user})
}

// UpdateUser updates a user's profile fields
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de usuario inválido",
		})
	}

	var user models.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}

	var req struct {
		Email  string `json:"email"`
		Phone  string `json:"phone"`
		Role   string `json:"role"`
		Status string `json:"status"`
		Avatar string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	updates := map[string]interface{}{}
	if req.Email != "" {
		updates["email"] = utils.SanitizeString(req.Email)
	}
	if req.Phone != "" {
		updates["phone"] = utils.SanitizeString(req.Phone)
	}
	if req.Avatar != "" {
		updates["avatar"] = utils.SanitizeString(req.Avatar)
	}
	if req.Role != "" {
		if !utils.IsValidRole(req.Role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Rol inválido. Debe ser: admin o teacher",
			})
		}
		updates["role"] = req.Role
	}
	if req.Status != "" {
		if !utils.IsValidUserStatus(req.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Estado inválido. Debe ser: active o inactive",
			})
		}
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "No se pudo actualizar el usuario",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Usuario actualizado exitosamente",
		"user":    user,
	})
}

// DeleteUser soft-deletes a user. The last active admin cannot be removed.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de usuario inválido",
		})
	}

	current, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	if current.ID == uint(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No puede eliminar su propia cuenta",
		})
	}

	var user models.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}

	if user.Role == "admin" {
		var adminCount int64
		database.DB.Model(&models.User{}).
			Where("role = ? AND status = ?", "admin", "active").Count(&adminCount)
		if adminCount <= 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No se puede eliminar el último administrador activo",
			})
		}
	}

	if err := database.DB.Delete(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo eliminar el usuario",
		})
	}

	middleware.LogActivity(c, "DELETE", "users", user.ID, fiber.Map{
		"username": user.Username,
	})

	return c.JSON(fiber.Map{
		"message": "Usuario eliminado exitosamente",
	})
}
