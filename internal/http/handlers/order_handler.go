package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "basket/internal/log"
	"basket/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

// POST /api/order
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in services.PlaceInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "order.place")
	}
	o, err := h.Order.Place(c.UserContext(), subject(c), in)
	if err != nil {
		return fail(c, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.TotalAmount,
		"items":    len(o.Items),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order": fiber.Map{
			"id":          o.ID,
			"totalAmount": o.TotalAmount,
			"status":      o.Status,
			"orderDate":   o.OrderDate,
		},
	})
}

// GET /api/user/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.ForUser(c.UserContext(), subject(c))
	if err != nil {
		return fail(c, "orders.history", err)
	}
	return c.JSON(orders)
}
