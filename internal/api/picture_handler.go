package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Aquabet/webapp/internal/service"
)

// multipart form field carrying the picture
const pictureFormField = "profilePic"

type PictureHandler struct {
	pictures service.PictureService
}

func NewPictureHandler(pictures service.PictureService) *PictureHandler {
	return &PictureHandler{pictures: pictures}
}

func (h *PictureHandler) Upload(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)

	fileHeader, err := c.FormFile(pictureFormField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Profile picture file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("failed to open uploaded file", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not read uploaded file"})
	}
	defer file.Close()

	image, err := h.pictures.Upload(c.Context(), user.ID, fileHeader.Filename, file, fileHeader.Header.Get(fiber.HeaderContentType))
	if err != nil {
		slog.Error("failed to store profile picture", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not store profile picture"})
	}

	return c.Status(fiber.StatusCreated).JSON(image)
}

func (h *PictureHandler) Get(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)

	image, err := h.pictures.Get(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile picture not found"})
		}
		slog.Error("failed to load profile picture", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch profile picture"})
	}
	return c.Status(fiber.StatusOK).JSON(image)
}

func (h *PictureHandler) Delete(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)

	if err := h.pictures.Delete(c.Context(), user.ID); err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile picture not found"})
		}
		slog.Error("failed to delete profile picture", "user_id", user.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete profile picture"})
	}
	return status(c, fiber.StatusNoContent)
}
