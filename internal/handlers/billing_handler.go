package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentnest/rentnest-server/internal/middleware"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/services"
)

type BillingHandler struct {
	billing *services.BillingService
}

func NewBillingHandler(billing *services.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

func (h *BillingHandler) Plans(c *fiber.Ctx) error {
	return c.JSON(h.billing.Plans())
}

func (h *BillingHandler) Subscribe(c *fiber.Ctx) error {
	var in struct {
		PlanID        string `json:"plan_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	sub, err := h.billing.Subscribe(c.UserContext(), middleware.UserID(c), in.PlanID, in.PaymentMethod)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *BillingHandler) History(c *fiber.Ctx) error {
	out, err := h.billing.History(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	if out == nil {
		out = []*models.Subscription{}
	}
	return c.JSON(out)
}
