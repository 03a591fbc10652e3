package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Aquabet/webapp/internal/service"
)

// emailPattern is an RFC-5322 subset: local@domain.tld.
var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+\.[\w.-]+$`)

type UserHandler struct {
	users    service.UserService
	validate *validator.Validate
}

func NewUserHandler(users service.UserService) *UserHandler {
	v := validator.New()
	v.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &UserHandler{users: users, validate: v}
}

type CreateUserRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	// validation order is part of the contract: first failure wins
	if err := h.validate.Var(req.Email, "required"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
	}
	if err := h.validate.Var(req.Password, "required"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password is required"})
	}
	if err := h.validate.Var(req.Email, "account_email"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email address"})
	}

	res, err := h.users.Register(c.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User already exists"})
		}
		slog.Error("failed to register user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create user"})
	}

	if res.Resent {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Verification email resent"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      res.User.ID,
		"message": "User created successfully",
	})
}

func (h *UserHandler) GetSelf(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)
	if !user.Verified() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "User not verified"})
	}

	// re-read so a concurrent deletion surfaces as 404, not stale data
	fresh, err := h.users.GetByEmail(c.Context(), user.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		slog.Error("failed to load user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch user"})
	}
	return c.Status(fiber.StatusOK).JSON(fresh)
}

func (h *UserHandler) UpdateSelf(c *fiber.Ctx) error {
	user := AuthenticatedUser(c)

	upd, offending, err := parseProfileUpdate(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if offending != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("Invalid field: %s", offending)})
	}
	if upd.Password != nil && *upd.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password cannot be empty"})
	}

	if err := h.users.UpdateProfile(c.Context(), user, upd); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		slog.Error("failed to update user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update user"})
	}
	return status(c, fiber.StatusNoContent)
}

func (h *UserHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Verification token is required"})
	}

	if err := h.users.VerifyEmail(c.Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invalid verification token"})
		}
		slog.Error("failed to verify email", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not verify email"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Email verified successfully"})
}

// parseProfileUpdate walks the top-level object in document order so the
// first key outside {first_name, last_name, password} is the one reported.
// Nothing is applied when any key is rejected.
func parseProfileUpdate(body []byte) (service.ProfileUpdate, string, error) {
	var upd service.ProfileUpdate

	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return upd, "", err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return upd, "", errors.New("expected a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return upd, "", err
		}
		key, ok := keyTok.(string)
		if !ok {
			return upd, "", errors.New("expected an object key")
		}

		var val *string
		switch key {
		case "first_name":
			if err := dec.Decode(&val); err != nil {
				return upd, "", err
			}
			upd.FirstName = val
		case "last_name":
			if err := dec.Decode(&val); err != nil {
				return upd, "", err
			}
			upd.LastName = val
		case "password":
			if err := dec.Decode(&val); err != nil {
				return upd, "", err
			}
			upd.Password = val
		default:
			return service.ProfileUpdate{}, key, nil
		}
	}
	return upd, "", nil
}
