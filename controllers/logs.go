package controllers

import (
	"strconv"

	"academia_go/database"
	"academia_go/models"
	"academia_go/services"
	"academia_go/storage"

	"github.com/gofiber/fiber/v2"
)

type LogController struct {
	archive *services.LogArchiveService
}

func NewLogController(store *storage.Service) *LogController {
	return &LogController{archive: services.NewLogArchiveService(store)}
}

// GetLogs returns activity logs with pagination. Admin only.
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset := (page - 1) * limit

	var logs []models.ActivityLog
	var total int64

	query := database.DB.Model(&models.ActivityLog{})

	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	query.Count(&total)

	if err := query.Preload("User").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener los registros",
		})
	}

	return c.JSON(fiber.Map{
		"logs": logs,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// FlushLogs forces cached logs from Redis into the database. Admin only.
func (lc *LogController) FlushLogs(c *fiber.Ctx) error {
	if err := lc.archive.FlushCachedLogsToDatabase(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron volcar los registros en caché",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Registros volcados a la base de datos",
	})
}

// GetArchives lists archived log files. Admin only.
func (lc *LogController) GetArchives(c *fiber.Ctx) error {
	archives, err := lc.archive.GetArchivedLogs()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudieron obtener los archivos",
		})
	}
	return c.JSON(fiber.Map{
		"archives": archives,
		"total":    len(archives),
	})
}

// DownloadArchive streams an archived log file from S3. Admin only.
func (lc *LogController) DownloadArchive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID de archivo inválido",
		})
	}

	reader, fileName, err := lc.archive.DownloadArchivedLogs(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Archivo no encontrado",
		})
	}

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	return c.SendStream(reader)
}
