package handlers

import (
	"github.com/gofiber/fiber/v2"

	"basket/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Catalog.ListProducts(c.UserContext())
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(ps)
}

// GET /api/products/featured
func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	ps, err := h.Catalog.Featured(c.UserContext())
	if err != nil {
		return fail(c, "products.featured", err)
	}
	return c.JSON(ps)
}

// GET /api/products/category/:categoryId
func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	ps, err := h.Catalog.ByCategory(c.UserContext(), c.Params("categoryId"))
	if err != nil {
		return fail(c, "products.by_category", err)
	}
	return c.JSON(ps)
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "products.detail", err)
	}
	return c.JSON(p)
}
