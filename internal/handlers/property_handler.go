package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rentnest/rentnest-server/internal/middleware"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/services"
)

type PropertyHandler struct {
	props *services.PropertyService
}

func NewPropertyHandler(props *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{props: props}
}

func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	var in services.PropertyInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	p, err := h.props.Create(c.UserContext(), middleware.UserID(c), middleware.Role(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *PropertyHandler) List(c *fiber.Ctx) error {
	f := models.PropertyFilter{
		City:          c.Query("city"),
		PropertyType:  c.Query("property_type"),
		AvailableOnly: c.QueryBool("available", false),
		LandlordID:    c.Query("landlord_id"),
	}
	if v := c.Query("min_price"); v != "" {
		f.MinPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("max_price"); v != "" {
		f.MaxPrice, _ = strconv.ParseFloat(v, 64)
	}
	out, err := h.props.List(c.UserContext(), f)
	if err != nil {
		return fail(c, err)
	}
	if out == nil {
		out = []*models.Property{}
	}
	return c.JSON(out)
}

func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	d, err := h.props.Detail(c.UserContext(), c.Params("id"), middleware.UserID(c), c.Get("X-Session-ID"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(d)
}

func (h *PropertyHandler) Update(c *fiber.Ctx) error {
	var in services.PropertyInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	p, err := h.props.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (h *PropertyHandler) Delete(c *fiber.Ctx) error {
	if err := h.props.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PropertyHandler) AddInterest(c *fiber.Ctx) error {
	var in struct {
		ContactMethod string `json:"contact_method"`
	}
	_ = c.BodyParser(&in) // body optional
	err := h.props.SetInterest(c.UserContext(), middleware.UserID(c), c.Params("id"), in.ContactMethod, true)
	if err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PropertyHandler) RemoveInterest(c *fiber.Ctx) error {
	err := h.props.SetInterest(c.UserContext(), middleware.UserID(c), c.Params("id"), "", false)
	if err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
