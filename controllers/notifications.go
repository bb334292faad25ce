package controllers

import (
	"strconv"

	"academia_go/middleware"
	"academia_go/services"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	service *services.NotificationService
}

func NewNotificationController() *NotificationController {
	return &NotificationController{service: services.NewNotificationService()}
}

// GetNotifications lists the authenticated user's notifications
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	notifications, err := nc.service.ListForUser(user.ID, unreadOnly, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener las notificaciones",
		})
	}

	unread, _ := nc.service.UnreadCount(user.ID)

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread_count":  unread,
		"total":         len(notifications),
	})
}

// MarkRead marks one notification as read
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de notificación inválido",
		})
	}

	if err := nc.service.MarkRead(user.ID, uint(id)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notificación no encontrada",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notificación marcada como leída",
	})
}

// MarkAllRead marks every unread notification of the user as read
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	updated, err := nc.service.MarkAllRead(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron actualizar las notificaciones",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notificaciones marcadas como leídas",
		"updated": updated,
	})
}
