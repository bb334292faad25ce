package services

import (
	"fmt"
	"time"

	"academia_go/database"
	"academia_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NotificationService creates and queries in-app notifications.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// Notify creates a notification for a single user.
func (ns *NotificationService) Notify(userID uint, title, message, notifType string) error {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
	}
	if err := database.DB.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %v", err)
	}
	return nil
}

// NotifyAdmins fans a notification out to every active admin user.
func (ns *NotificationService) NotifyAdmins(title, message, notifType string) error {
	var admins []models.User
	err := database.DB.
		Where("role = ? AND status = ?", "admin", "active").
		Find(&admins).Error
	if err != nil {
		return fmt.Errorf("failed to load admin users: %v", err)
	}

	for _, admin := range admins {
		if err := ns.Notify(admin.ID, title, message, notifType); err != nil {
			logrus.WithError(err).WithField("user_id", admin.ID).
				Error("Failed to notify admin")
		}
	}
	return nil
}

// ListForUser returns a user's notifications, newest first.
func (ns *NotificationService) ListForUser(userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := database.DB.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %v", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read.
func (ns *NotificationService) MarkRead(userID, notificationID uint) error {
	var notification models.Notification
	err := database.DB.
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("notification not found")
		}
		return fmt.Errorf("failed to load notification: %v", err)
	}

	if notification.Read {
		return nil
	}

	now := time.Now()
	return database.DB.Model(&notification).Updates(map[string]interface{}{
		"read":    true,
		"read_at": now,
	}).Error
}

// MarkAllRead marks every unread notification of the user as read.
func (ns *NotificationService) MarkAllRead(userID uint) (int64, error) {
	now := time.Now()
	result := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		})
	return result.RowsAffected, result.Error
}

// UnreadCount returns the number of unread notifications for a user.
func (ns *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
