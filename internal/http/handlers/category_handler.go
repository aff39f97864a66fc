package handlers

import (
	"github.com/gofiber/fiber/v2"

	"basket/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return c.JSON(cats)
}

// GET /api/categories/:id
func (h *CategoryHandler) Detail(c *fiber.Ctx) error {
	cat, err := h.Catalog.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "categories.detail", err)
	}
	return c.JSON(cat)
}
