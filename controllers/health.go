package controllers

import (
	"context"
	"time"

	"academia_go/database"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct{}

// Health reports service, database and cache status
func (hc *HealthController) Health(c *fiber.Ctx) error {
	status := fiber.StatusOK
	dbStatus := "ok"
	redisStatus := "ok"

	sqlDB, err := database.DB.DB()
	if err != nil {
		dbStatus = "unavailable"
		status = fiber.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unavailable"
			status = fiber.StatusServiceUnavailable
		}
	}

	if rc := database.GetRedisClient(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			redisStatus = "unavailable"
		}
	} else {
		redisStatus = "disabled"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"database": dbStatus,
		"redis":    redisStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
