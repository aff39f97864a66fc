package handlers

import (
	"github.com/gofiber/fiber/v2"

	"basket/internal/log"
	"basket/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "auth.signup")
	}
	u, err := h.Auth.Signup(c.UserContext(), in)
	if err != nil {
		return fail(c, "auth.signup", err)
	}
	log.Audit(c, "auth.signup", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully"})
}

// POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "auth.login")
	}
	tok, u, err := h.Auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return fail(c, "auth.login", err)
	}
	c.Locals(log.LocalSubject, u.ID)
	log.Audit(c, "auth.login.success", nil)
	return c.JSON(fiber.Map{
		"token": tok,
		"user": fiber.Map{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
			"phone": u.Phone,
		},
	})
}

// GET /api/user/profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u, err := h.Auth.Profile(c.UserContext(), subject(c))
	if err != nil {
		return fail(c, "user.profile", err)
	}
	return c.JSON(fiber.Map{"user": u})
}

// PUT /api/user/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileUpdate
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "user.profile.update")
	}
	u, err := h.Auth.UpdateProfile(c.UserContext(), subject(c), in)
	if err != nil {
		return fail(c, "user.profile.update", err)
	}
	log.Audit(c, "user.profile.update", nil)
	return c.JSON(fiber.Map{"user": u})
}
