package handlers_test

import (
	"net/http"
	"testing"
)

func TestAdminSetupOnlyOnce(t *testing.T) {
	app, _ := newTestApp(t)
	setupAdmin(t, app)

	status, body := call(t, app, http.MethodPost, "/api/admin/setup", "", map[string]string{
		"username": "late", "email": "late@basket.test", "password": "latepass",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("second setup: %d %v", status, body)
	}

	status, body = call(t, app, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "root@basket.test", "password": "nope"})
	if status != http.StatusUnauthorized || message(t, body) != "Invalid credentials" {
		t.Fatalf("bad admin login: %d %v", status, body)
	}
}

func TestAdminRoutesNeedAdminToken(t *testing.T) {
	app, _ := newTestApp(t)

	if status, _ := call(t, app, http.MethodGet, "/api/admin/orders", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", status)
	}
	shopper := loginUser(t, app, "alice@basket.test")
	if status, _ := call(t, app, http.MethodGet, "/api/admin/orders", shopper, nil); status != http.StatusForbidden {
		t.Fatalf("shopper token: %d", status)
	}
}

func TestRoleGate(t *testing.T) {
	app, _ := newTestApp(t)
	root := setupAdmin(t, app)

	status, body := call(t, app, http.MethodPost, "/api/admin/register", root, map[string]any{
		"username": "staff", "email": "staff@basket.test", "password": "staffpass",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: %d %v", status, body)
	}
	a := obj(t, obj(t, body)["admin"])
	if a["role"] != "admin" || len(list(t, a["permissions"])) != 2 {
		t.Fatalf("registered admin defaults: %v", a)
	}
	staffID := a["id"].(string)

	staff := loginAdmin(t, app, "staff@basket.test", "staffpass")

	status, body = call(t, app, http.MethodPost, "/api/admin/register", staff, map[string]any{
		"username": "sneaky", "email": "sneaky@basket.test", "password": "sneakypass",
	})
	if status != http.StatusForbidden || message(t, body) != "Super admin or God access required" {
		t.Fatalf("staff register: %d %v", status, body)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/admin/products", staff, nil); status != http.StatusOK {
		t.Fatalf("staff products: %d", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/admin/admins", staff, nil); status != http.StatusOK {
		t.Fatalf("staff list admins: %d", status)
	}

	status, body = call(t, app, http.MethodPut, "/api/admin/admins/"+staffID, root, map[string]any{"role": "super_admin"})
	if status != http.StatusOK || obj(t, obj(t, body)["admin"])["role"] != "super_admin" {
		t.Fatalf("promote: %d %v", status, body)
	}
	status, _ = call(t, app, http.MethodPut, "/api/admin/admins/"+staffID+"/password", root, map[string]string{"newPassword": "freshpass"})
	if status != http.StatusOK {
		t.Fatalf("password: %d", status)
	}
	status, _ = call(t, app, http.MethodDelete, "/api/admin/admins/"+staffID, root, nil)
	if status != http.StatusOK {
		t.Fatalf("delete admin: %d", status)
	}
	status, _ = call(t, app, http.MethodDelete, "/api/admin/admins/"+staffID, root, nil)
	if status != http.StatusNotFound {
		t.Fatalf("delete admin twice: %d", status)
	}
}

func TestAdminCatalog(t *testing.T) {
	app, _ := newTestApp(t)
	root := setupAdmin(t, app)

	status, body := call(t, app, http.MethodPost, "/api/admin/products", root, map[string]any{"name": "Curd"})
	if status != http.StatusBadRequest || message(t, body) != "Missing required fields: description, price, category, stock, unit, image" {
		t.Fatalf("missing fields: %d %v", status, body)
	}

	status, body = call(t, app, http.MethodPost, "/api/admin/products", root, map[string]any{
		"name": "Curd", "description": "Set curd", "price": 45, "category": "dairy-eggs",
		"stock": 12, "unit": "pack", "image": "products/curd.jpg", "isFeatured": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("create product: %d %v", status, body)
	}
	p := obj(t, body)
	id := p["id"].(string)
	if obj(t, p["category"])["id"] != "dairy-eggs" {
		t.Fatalf("created product category: %v", p)
	}

	status, body = call(t, app, http.MethodPut, "/api/admin/products/"+id, root, map[string]any{
		"name": "Curd", "description": "Set curd", "price": 40, "category": "dairy-eggs",
		"stock": 20, "unit": "pack",
	})
	if status != http.StatusOK || obj(t, body)["price"] != 40.0 || obj(t, body)["image"] != "products/curd.jpg" {
		t.Fatalf("update product: %d %v", status, body)
	}

	status, body = call(t, app, http.MethodDelete, "/api/admin/categories/dairy-eggs", root, nil)
	if status != http.StatusConflict || message(t, body) != "Cannot delete category with existing products" {
		t.Fatalf("referenced category delete: %d %v", status, body)
	}

	status, body = call(t, app, http.MethodPost, "/api/admin/categories", root, map[string]any{"name": "Bakery", "description": "Bread"})
	if status != http.StatusCreated {
		t.Fatalf("create category: %d %v", status, body)
	}
	catID := obj(t, body)["id"].(string)
	status, _ = call(t, app, http.MethodPost, "/api/admin/categories", root, map[string]any{"name": "bakery"})
	if status != http.StatusConflict {
		t.Fatalf("duplicate category: %d", status)
	}
	if status, _ := call(t, app, http.MethodDelete, "/api/admin/categories/"+catID, root, nil); status != http.StatusOK {
		t.Fatalf("delete empty category: %d", status)
	}

	if status, _ := call(t, app, http.MethodDelete, "/api/admin/products/"+id, root, nil); status != http.StatusOK {
		t.Fatalf("delete product: %d", status)
	}
	if status, _ := call(t, app, http.MethodGet, "/api/products/"+id, "", nil); status != http.StatusNotFound {
		t.Fatalf("deleted product still served: %d", status)
	}
}

func TestAdminOrders(t *testing.T) {
	app, _ := newTestApp(t)
	root := setupAdmin(t, app)
	alice := loginUser(t, app, "alice@basket.test")

	status, body := call(t, app, http.MethodPost, "/api/order", alice, map[string]any{
		"items": []map[string]any{{"productId": "tomato-001", "quantity": 3}},
	})
	if status != http.StatusCreated {
		t.Fatalf("place: %d %v", status, body)
	}
	id := obj(t, obj(t, body)["order"])["id"].(string)

	_, body = call(t, app, http.MethodGet, "/api/admin/orders", root, nil)
	orders := list(t, body)
	if len(orders) != 1 || obj(t, orders[0])["userName"] != "Alice" || obj(t, orders[0])["userEmail"] != "alice@basket.test" {
		t.Fatalf("admin orders: %v", orders)
	}

	_, body = call(t, app, http.MethodGet, "/api/admin/orders/"+id+"/next", root, nil)
	if n := len(list(t, obj(t, body)["statuses"])); n != 6 {
		t.Fatalf("next statuses for pending: %d", n)
	}

	status, body = call(t, app, http.MethodPut, "/api/admin/orders/"+id, root, map[string]string{"status": "shipped"})
	if status != http.StatusOK {
		t.Fatalf("ship: %d %v", status, body)
	}
	if _, ok := obj(t, obj(t, body)["order"])["deliveredDate"]; ok {
		t.Fatalf("deliveredDate set before delivery: %v", body)
	}

	status, body = call(t, app, http.MethodPut, "/api/admin/orders/"+id, root, map[string]string{"status": "delivered"})
	if status != http.StatusOK {
		t.Fatalf("deliver: %d %v", status, body)
	}
	if d, _ := obj(t, obj(t, body)["order"])["deliveredDate"].(string); d == "" {
		t.Fatalf("deliveredDate missing: %v", body)
	}

	if status, _ := call(t, app, http.MethodPut, "/api/admin/orders/"+id, root, map[string]string{"status": "teleported"}); status != http.StatusBadRequest {
		t.Fatalf("invalid status: %d", status)
	}
	status, body = call(t, app, http.MethodPut, "/api/admin/orders/missing", root, map[string]string{"status": "shipped"})
	if status != http.StatusNotFound || message(t, body) != "Order not found" {
		t.Fatalf("missing order: %d %v", status, body)
	}

	_, body = call(t, app, http.MethodGet, "/api/admin/stats", root, nil)
	st := obj(t, body)
	if st["totalOrders"] != 1.0 || st["totalRevenue"] != 90.0 || st["totalUsers"] != 2.0 || st["totalProducts"] != 5.0 {
		t.Fatalf("stats: %v", st)
	}

	if status, _ := call(t, app, http.MethodDelete, "/api/admin/orders/"+id, root, nil); status != http.StatusOK {
		t.Fatalf("delete order: %d", status)
	}
	_, body = call(t, app, http.MethodGet, "/api/user/orders", alice, nil)
	if len(list(t, body)) != 0 {
		t.Fatalf("deleted order still listed: %v", body)
	}
}

func TestAdminUsers(t *testing.T) {
	app, _ := newTestApp(t)
	root := setupAdmin(t, app)

	_, body := call(t, app, http.MethodGet, "/api/admin/users", root, nil)
	if n := len(list(t, body)); n != 2 {
		t.Fatalf("users: %d", n)
	}
	status, body := call(t, app, http.MethodPut, "/api/admin/users/u-bob", root, map[string]string{"phone": "9111111111"})
	if status != http.StatusOK || obj(t, obj(t, body)["user"])["phone"] != "9111111111" {
		t.Fatalf("update user: %d %v", status, body)
	}
	if status, _ := call(t, app, http.MethodDelete, "/api/admin/users/u-bob", root, nil); status != http.StatusOK {
		t.Fatalf("delete user: %d", status)
	}
	if status, _ := call(t, app, http.MethodDelete, "/api/admin/users/u-bob", root, nil); status != http.StatusNotFound {
		t.Fatalf("delete user twice: %d", status)
	}
}
