package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentnest/rentnest-server/internal/middleware"
	"github.com/rentnest/rentnest-server/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in services.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	res, err := h.auth.Signup(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	res, err := h.auth.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := h.auth.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var in struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	p, err := h.auth.UpdateMe(c.UserContext(), middleware.UserID(c), in.FullName, in.Phone)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}
