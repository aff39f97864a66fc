package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "basket/internal/log"
	"basket/internal/services"
)

type AdminHandler struct {
	Admins  *services.AdminService
	Catalog *services.CatalogService
	Orders  *services.OrderService
}

// ---------- Accounts ----------

// POST /api/admin/setup
func (h *AdminHandler) Setup(c *fiber.Ctx) error {
	var in services.AdminInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.setup")
	}
	a, err := h.Admins.Setup(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.setup", err)
	}
	applog.Audit(c, "admin.setup", map[string]any{"admin_id": a.ID})
	return c.JSON(fiber.Map{"message": "First admin created successfully", "email": a.Email, "username": a.Username})
}

// POST /api/admin/login
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.login")
	}
	tok, a, err := h.Admins.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return fail(c, "admin.login", err)
	}
	c.Locals(applog.LocalSubject, a.ID)
	applog.Audit(c, "admin.login.success", map[string]any{"role": a.Role})
	return c.JSON(fiber.Map{"token": tok, "admin": a})
}

// GET /api/admin/admins
func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	as, err := h.Admins.List(c.UserContext())
	if err != nil {
		return fail(c, "admin.admins.list", err)
	}
	return c.JSON(as)
}

// POST /api/admin/register
func (h *AdminHandler) Register(c *fiber.Ctx) error {
	var in services.AdminInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.register")
	}
	a, err := h.Admins.Register(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.register", err)
	}
	applog.Audit(c, "admin.register", map[string]any{"admin_id": a.ID, "role": a.Role})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Admin created successfully", "admin": a})
}

// PUT /api/admin/admins/:id
func (h *AdminHandler) UpdateAdmin(c *fiber.Ctx) error {
	var in services.AdminUpdate
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.admins.update")
	}
	a, err := h.Admins.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, "admin.admins.update", err)
	}
	applog.Audit(c, "admin.admins.update", map[string]any{"admin_id": a.ID, "role": a.Role, "active": a.Active})
	return c.JSON(fiber.Map{"message": "Admin updated successfully", "admin": a})
}

// PUT /api/admin/admins/:id/password
func (h *AdminHandler) ChangePassword(c *fiber.Ctx) error {
	var in struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.admins.password")
	}
	if err := h.Admins.ChangePassword(c.UserContext(), c.Params("id"), in.NewPassword); err != nil {
		return fail(c, "admin.admins.password", err)
	}
	applog.Audit(c, "admin.admins.password", map[string]any{"admin_id": c.Params("id")})
	return c.JSON(fiber.Map{"message": "Admin password updated successfully"})
}

// DELETE /api/admin/admins/:id
func (h *AdminHandler) DeleteAdmin(c *fiber.Ctx) error {
	if err := h.Admins.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, "admin.admins.delete", err)
	}
	applog.Audit(c, "admin.admins.delete", map[string]any{"admin_id": c.Params("id")})
	return c.JSON(fiber.Map{"message": "Admin deleted successfully"})
}

// ---------- Catalog ----------

// GET /api/admin/products
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	ps, err := h.Catalog.AllProducts(c.UserContext())
	if err != nil {
		return fail(c, "admin.products.list", err)
	}
	return c.JSON(ps)
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.products.create")
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.products.create", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "stock": p.Stock})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.products.update")
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, "admin.products.update", err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": p.ID, "stock": p.Stock, "price": p.Price})
	return c.JSON(p)
}

// DELETE /api/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, "admin.products.delete", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": c.Params("id")})
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// GET /api/admin/categories
func (h *AdminHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.AllCategories(c.UserContext())
	if err != nil {
		return fail(c, "admin.categories.list", err)
	}
	return c.JSON(cats)
}

// POST /api/admin/categories
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.categories.create")
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), in)
	if err != nil {
		return fail(c, "admin.categories.create", err)
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category_id": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

// PUT /api/admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.categories.update")
	}
	cat, err := h.Catalog.UpdateCategory(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, "admin.categories.update", err)
	}
	applog.Audit(c, "admin.categories.update", map[string]any{"category_id": cat.ID})
	return c.JSON(cat)
}

// DELETE /api/admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, "admin.categories.delete", err)
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category_id": c.Params("id")})
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}

// ---------- Shoppers ----------

// GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	us, err := h.Admins.ListUsers(c.UserContext())
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	return c.JSON(us)
}

// PUT /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var in services.UserUpdate
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.users.update")
	}
	u, err := h.Admins.UpdateUser(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, "admin.users.update", err)
	}
	applog.Audit(c, "admin.users.update", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"message": "User updated successfully", "user": u})
}

// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.Admins.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, "admin.users.delete", err)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": c.Params("id")})
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// ---------- Orders ----------

// GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	list, err := h.Orders.All(c.UserContext())
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	return c.JSON(list)
}

// PUT /api/admin/orders/:id
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, "admin.orders.update")
	}
	o, err := h.Orders.UpdateStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return fail(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": o.ID, "status": o.Status})
	return c.JSON(fiber.Map{"message": "Order updated successfully", "order": o})
}

// GET /api/admin/orders/:id/next
func (h *AdminHandler) NextStatuses(c *fiber.Ctx) error {
	next, err := h.Orders.NextStatuses(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "admin.orders.next", err)
	}
	return c.JSON(fiber.Map{"statuses": next})
}

// DELETE /api/admin/orders/:id
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	if err := h.Orders.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, "admin.orders.delete", err)
	}
	applog.Audit(c, "admin.orders.delete", map[string]any{"order_id": c.Params("id")})
	return c.JSON(fiber.Map{"message": "Order deleted successfully"})
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Orders.Stats(c.UserContext())
	if err != nil {
		return fail(c, "admin.stats", err)
	}
	return c.JSON(st)
}
