package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentnest/rentnest-server/internal/middleware"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/services"
)

type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// Resolve finds or creates the caller's conversation for a property and
// returns it; calling it twice yields the same conversation.
func (h *ChatHandler) Resolve(c *fiber.Ctx) error {
	var in struct {
		PropertyID string `json:"property_id"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	conv, err := h.chats.Resolve(c.UserContext(), middleware.UserID(c), in.PropertyID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(conv)
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	out, err := h.chats.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	if out == nil {
		out = []*models.Conversation{}
	}
	return c.JSON(out)
}

func (h *ChatHandler) Detail(c *fiber.Ctx) error {
	d, err := h.chats.Detail(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(d)
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	out, err := h.chats.History(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	if out == nil {
		out = []*models.Message{}
	}
	return c.JSON(out)
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var in struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	m, err := h.chats.Append(c.UserContext(), c.Params("id"), middleware.UserID(c), in.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.chats.MarkRead(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
