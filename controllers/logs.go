package controllers

import (
	"io"

	"sekoly_go/database"
	"sekoly_go/models"
	"sekoly_go/services"

	"github.com/gofiber/fiber/v2"
)

type LogController struct {
	archive *services.LogArchiveService
}

func NewLogController(archive *services.LogArchiveService) *LogController {
	return &LogController{archive: archive}
}

// GetActivityLogs returns recent activity logs, newest first
func (lc *LogController) GetActivityLogs(c *fiber.Ctx) error {
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

	var logs []models.ActivityLog
	if err := query.Preload("User").Order("created_at DESC").Limit(200).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch activity logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": len(logs),
	})
}

// GetLogArchives returns the list of archived log files
func (lc *LogController) GetLogArchives(c *fiber.Ctx) error {
	archives, err := lc.archive.GetArchivedLogs()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch log archives",
		})
	}

	return c.JSON(fiber.Map{
		"archives": archives,
		"total":    len(archives),
	})
}

// DownloadLogArchive streams an archived log file from S3
func (lc *LogController) DownloadLogArchive(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	reader, fileName, err := lc.archive.DownloadArchivedLogs(id)
	if err != nil {
		return serviceError(c, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read archive",
		})
	}

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	return c.Send(content)
}

// FlushLogs forces an immediate flush of the Redis log cache to the database
func (lc *LogController) FlushLogs(c *fiber.Ctx) error {
	if err := lc.archive.FlushCachedLogsToDatabase(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to flush cached logs",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cached logs flushed to database",
	})
}
