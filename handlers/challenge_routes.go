package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"challenge-streak-system/middleware"
	"challenge-streak-system/models"
	"challenge-streak-system/services"
	"challenge-streak-system/stores"
	"challenge-streak-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errStatus translates the service error taxonomy to HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func SetupChallengeRoutes(app *fiber.App, catalog stores.CatalogStore, challengeService *services.ChallengeService, streakService *services.StreakService, notificationService *services.NotificationService) {
	// --- Public catalog browsing ---

	app.Get("/challenges", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "50"))
		if page < 1 {
			page = 1
		}

		filter := stores.CatalogFilter{
			Category:   models.ChallengeCategory(c.Query("category")),
			Difficulty: models.ChallengeDifficulty(c.Query("difficulty")),
			DailyOnly:  c.Query("daily") == "true",
			Limit:      size,
			Offset:     (page - 1) * size,
		}

		challenges, err := catalog.List(c.Context(), filter)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch challenges"})
		}
		return c.JSON(challenges)
	})

	app.Get("/challenges/nearby", func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lng are required"})
		}
		radiusKM, err := strconv.ParseFloat(c.Query("radius_km", "10"), 64)
		if err != nil || radiusKM <= 0 {
			radiusKM = 10
		}
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		challenges, err := catalog.ListNearby(c.Context(), lat, lng, radiusKM, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch nearby challenges"})
		}
		return c.JSON(challenges)
	})

	app.Get("/challenges/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge ID"})
		}
		ch, err := catalog.GetByID(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "challenge not found"})
		}
		return c.JSON(ch)
	})

	// --- Secured routes: require user context from the Gateway ---

	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/s/challenges/:id/accept", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		challengeID := c.Params("id")
		if _, err := uuid.Parse(challengeID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge ID"})
		}

		result, err := challengeService.Accept(c.Context(), userID, challengeID)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		status := fiber.StatusCreated
		if result.AlreadyAccepted {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(result)
	})

	// Completion accepts either a multipart photo upload or a JSON body with a
	// photo_url. A 200 here does NOT mean verified; clients must inspect
	// verification.verified in the body.
	securedGroup.Post("/s/challenges/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		challengeID := c.Params("id")
		if _, err := uuid.Parse(challengeID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge ID"})
		}

		photoURL, loc, err := resolveCompletionInput(c, userID, challengeID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		// A missing photo surfaces as ErrValidation from the service.
		result, err := challengeService.Complete(c.Context(), userID, challengeID, photoURL, loc)
		if err != nil {
			return c.Status(errStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(result)
	})

	securedGroup.Get("/s/user/challenges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var status *models.UserChallengeStatus
		if s := c.Query("status"); s != "" {
			st := models.UserChallengeStatus(s)
			status = &st
		}

		rels, err := challengeService.ListForUser(c.Context(), userID, status)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch challenges"})
		}
		return c.JSON(rels)
	})

	securedGroup.Get("/s/user/streak", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		snapshot, err := streakService.Snapshot(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch streak"})
		}
		return c.JSON(snapshot)
	})

	securedGroup.Post("/s/user/streak/reminder", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		snapshot, err := streakService.Snapshot(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch streak"})
		}
		if err := notificationService.SendStreakReminder(c.Context(), userID, snapshot.CurrentStreak); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send reminder"})
		}
		return c.JSON(fiber.Map{"message": "reminder sent", "current_streak": snapshot.CurrentStreak})
	})
}

// resolveCompletionInput pulls the photo and optional location out of the
// request. Multipart uploads are stored (R2, or local disk when R2 is not
// configured) and replaced by their public URL.
func resolveCompletionInput(c *fiber.Ctx, userID, challengeID string) (string, *models.GeoPoint, error) {
	if file, err := c.FormFile("photo"); err == nil && file != nil {
		key := fmt.Sprintf("photos/%s/%s/%s%s", userID, challengeID, uuid.NewString(), filepath.Ext(file.Filename))

		var photoURL string
		if utils.R2Enabled() {
			photoURL, err = utils.UploadPhotoToR2(file, key)
		} else {
			var path string
			path, err = utils.SavePhoto(file, key)
			photoURL = c.BaseURL() + "/" + path
		}
		if err != nil {
			return "", nil, fmt.Errorf("photo upload failed: %w", err)
		}

		loc := parseFormLocation(c)
		return photoURL, loc, nil
	}

	var body struct {
		PhotoURL string           `json:"photo_url"`
		Location *models.GeoPoint `json:"location"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return "", nil, fmt.Errorf("invalid request body")
		}
	}
	return body.PhotoURL, body.Location, nil
}

func parseFormLocation(c *fiber.Ctx) *models.GeoPoint {
	lat, errLat := strconv.ParseFloat(c.FormValue("latitude"), 64)
	lng, errLng := strconv.ParseFloat(c.FormValue("longitude"), 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return &models.GeoPoint{Latitude: lat, Longitude: lng}
}
