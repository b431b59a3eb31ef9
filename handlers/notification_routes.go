package handlers

import (
	"errors"
	"strconv"

	"challenge-streak-system/middleware"
	"challenge-streak-system/stores"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupNotificationRoutes(app *fiber.App, notifications stores.NotificationStore) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/s/notifications", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		unreadOnly := c.Query("unread") == "true"
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		list, err := notifications.ListByUser(c.Context(), userID, unreadOnly, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch notifications"})
		}
		return c.JSON(list)
	})

	// Poll-friendly counts endpoint.
	securedGroup.Get("/s/notifications/counts", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		total, unread, err := notifications.Counts(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count notifications"})
		}
		return c.JSON(fiber.Map{
			"total_count":  total,
			"unread_count": unread,
		})
	})

	securedGroup.Post("/s/notifications/:id/read", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid notification ID"})
		}

		if err := notifications.MarkRead(c.Context(), userID, id); err != nil {
			if errors.Is(err, stores.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found or not owned"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark as read"})
		}
		return c.JSON(fiber.Map{"message": "OK", "notification_id": id, "read": true})
	})

	securedGroup.Post("/s/notifications/read-all", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		marked, err := notifications.MarkAllRead(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update notifications"})
		}
		return c.JSON(fiber.Map{
			"message":      "OK",
			"marked_count": marked,
		})
	})
}
