package controllers

import (
	"strconv"

	"sekoly_go/middleware"
	"sekoly_go/services/notifications"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationController struct {
	notifications *notifications.Service
}

func NewNotificationController(notifService *notifications.Service) *NotificationController {
	return &NotificationController{notifications: notifService}
}

// GetNotifications returns the authenticated user's notifications
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	result, err := nc.notifications.ListForUser(user.ID, unreadOnly, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}

	return c.JSON(fiber.Map{
		"notifications": result,
		"total":         len(result),
	})
}

// MarkNotificationRead marks one notification as read
func (nc *NotificationController) MarkNotificationRead(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := nc.notifications.MarkRead(user.ID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notification as read",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead marks every unread notification as read
func (nc *NotificationController) MarkAllNotificationsRead(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	updated, err := nc.notifications.MarkAllRead(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notifications as read",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notifications marked as read",
		"updated": updated,
	})
}
