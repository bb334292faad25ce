package controllers

import (
	"context"
	"time"

	"academia_go/config"
	"academia_go/database"
	"academia_go/middleware"
	"academia_go/models"
	"academia_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthController struct{}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// Login authenticates a user and returns a JWT token
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Usuario y contraseña son obligatorios",
		})
	}

	var user models.User
	if err := database.DB.Where("username = ? AND status = ?", req.Username, "active").
		First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Credenciales inválidas",
		})
	}

	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Credenciales inválidas",
		})
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate JWT token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo generar el token",
		})
	}

	middleware.LogActivity(c, "LOGIN", "users", user.ID, fiber.Map{
		"username": user.Username,
	})

	return c.JSON(fiber.Map{
		"message": "Inicio de sesión exitoso",
		"token":   token,
		"user":    user,
	})
}

// Register creates a new user account. Admin only.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Datos de registro inválidos: " + err.Error(),
		})
	}

	if !utils.IsValidRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rol inválido. Debe ser: admin o teacher",
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

	user := models.User{
		Username: utils.SanitizeString(req.Username),
		Password: hashed,
		Email:    utils.SanitizeString(req.Email),
		Phone:    utils.SanitizeString(req.Phone),
		Role:     req.Role,
		Status:   "active",
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo crear el usuario",
		})
	}

	middleware.LogActivity(c, "CREATE", "users", user.ID, fiber.Map{
		"username": user.Username,
		"role":     user.Role,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Usuario creado exitosamente",
		"user":    user,
	})
}

// Logout blacklists the current token until its natural expiry
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	tokenString := ""
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenString = authHeader[7:]
	}

	if tokenString != "" {
		if rc := database.GetRedisClient(); rc != nil {
			ctx := context.Background()
			if err := rc.Set(ctx, "blacklist:jwt:"+tokenString, "1",
				config.AppConfig.JWTExpiresIn).Err(); err != nil {
				logrus.WithError(err).Warn("Failed to blacklist token on logout")
			}
		}
	}

	if user, err := middleware.GetCurrentUser(c); err == nil {
		middleware.LogActivity(c, "LOGOUT", "users", user.ID, nil)
	}

	return c.JSON(fiber.Map{
		"message": "Sesión cerrada exitosamente",
	})
}

// GetProfile returns the authenticated user's profile
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	// Teachers also get their teacher profile
	if user.Role == "teacher" {
		var full models.User
		if err := database.DB.Preload("Teacher").First(&full, user.ID).Error; err == nil {
			return c.JSON(fiber.Map{"user": full})
		}
	}

	return c.JSON(fiber.Map{"user": user})
}

// ChangePassword updates the authenticated user's password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cuerpo de la solicitud inválido",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "La nueva contraseña debe tener al menos 6 caracteres",
		})
	}

	if err := utils.CheckPassword(req.CurrentPassword, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "La contraseña actual es incorrecta",
		})
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo procesar la contraseña",
		})
	}

	if err := database.DB.Model(user).Updates(map[string]interface{}{
		"password":   hashed,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo actualizar la contraseña",
		})
	}

	middleware.LogActivity(c, "UPDATE", "users", user.ID, fiber.Map{
		"action": "password_change",
	})

	return c.JSON(fiber.Map{
		"message": "Contraseña actualizada exitosamente",
	})
}
