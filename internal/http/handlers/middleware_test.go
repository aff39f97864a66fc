package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"basket/internal/config"
)

func TestLoginRateLimited(t *testing.T) {
	app, _ := newTestApp(t)
	creds := map[string]string{"email": "alice@basket.test", "password": "wrong-password"}

	var entries []logEntry
	entries = captureLogs(t, func() {
		for i := 0; i < 6; i++ {
			status, _ := call(t, app, http.MethodPost, "/api/login", "", creds)
			if i < 5 && status == http.StatusTooManyRequests {
				t.Fatalf("limited too early at attempt %d", i)
			}
			if i == 5 && status != http.StatusTooManyRequests {
				t.Fatalf("expected 429 after limit, got %d", status)
			}
		}
	})
	if findLog(entries, "warn", "rate.login.hit") == nil {
		t.Fatalf("missing rate limit log: %+v", entries)
	}

	// admin login counts separately
	status, _ := call(t, app, http.MethodPost, "/api/admin/login", "", creds)
	if status == http.StatusTooManyRequests {
		t.Fatal("admin login shares the shopper limit")
	}
}

func TestGlobalRateLimit(t *testing.T) {
	cfg := config.Test()
	cfg.RateLimit = 3
	app, _ := newTestAppWith(t, cfg)

	var entries []logEntry
	entries = captureLogs(t, func() {
		for i := 0; i < 3; i++ {
			if status, _ := call(t, app, http.MethodGet, "/api/products", "", nil); status != http.StatusOK {
				t.Fatalf("request %d: got %d", i, status)
			}
		}
		status, body := call(t, app, http.MethodGet, "/api/categories", "", nil)
		if status != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", status)
		}
		if message(t, body) != "Too many requests, please slow down." {
			t.Fatalf("unexpected body %v", body)
		}
	})
	if findLog(entries, "warn", "rate.global.hit") == nil {
		t.Fatalf("missing rate limit log: %+v", entries)
	}

	// health checks are never throttled
	if status, _ := call(t, app, http.MethodGet, "/healthz", "", nil); status != http.StatusOK {
		t.Fatalf("healthz throttled: %d", status)
	}
}

func TestBodySizeLimit(t *testing.T) {
	app, _ := newTestApp(t)

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		// fasthttp may drop the connection instead of answering
		return
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestMalformedBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAuditAndSecurityLogs(t *testing.T) {
	app, _ := newTestApp(t)
	tok := loginUser(t, app, "alice@basket.test")

	entries := captureLogs(t, func() {
		call(t, app, http.MethodPost, "/api/order", tok, map[string]any{
			"items": []map[string]any{{"productId": "milk-001", "quantity": 1}},
		})
		call(t, app, http.MethodPost, "/api/order", tok, map[string]any{
			"items": []map[string]any{{"productId": "eggs-001", "quantity": 99}},
		})
		call(t, app, http.MethodGet, "/api/user/orders", "forged", nil)
	})

	placed := findLog(entries, "audit", "order.place")
	if placed == nil {
		t.Fatalf("missing order audit log: %+v", entries)
	}
	if placed.Subject != "u-alice" || placed.Fields["order_id"] == nil {
		t.Fatalf("audit entry lacks subject or order id: %+v", placed)
	}
	if e := findLog(entries, "warn", "order.place.fail"); e == nil || e.Fields["reason"] != "Insufficient stock for Brown Eggs" {
		t.Fatalf("missing rejected order log: %+v", entries)
	}
	if findLog(entries, "warn", "access.denied.user") == nil {
		t.Fatalf("missing access denied log: %+v", entries)
	}
}
