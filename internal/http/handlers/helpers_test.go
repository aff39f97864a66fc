package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"basket/internal/cache"
	"basket/internal/config"
	"basket/internal/http/handlers"
	"basket/internal/repos"
	"basket/internal/services"
)

func init() { services.HashCost = bcrypt.MinCost }

// newTestApp wires the full router against a fresh in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *handlers.Deps) {
	t.Helper()
	return newTestAppWith(t, config.Test())
}

func newTestAppWith(t *testing.T, cfg config.Config) (*fiber.App, *handlers.Deps) {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	deps := handlers.NewDeps(db, cfg, cache.Noop{})
	return handlers.NewApp(deps), deps
}

// call sends a JSON request and decodes the JSON response into a generic value.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: non-JSON body %q", method, path, raw)
		}
	}
	return resp.StatusCode, out
}

func obj(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T: %v", v, v)
	}
	return m
}

func list(t *testing.T, v any) []any {
	t.Helper()
	l, ok := v.([]any)
	if !ok {
		t.Fatalf("expected array, got %T: %v", v, v)
	}
	return l
}

func message(t *testing.T, v any) string {
	t.Helper()
	s, _ := obj(t, v)["message"].(string)
	return s
}

func loginUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "Passw0rd!"})
	if status != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, status, body)
	}
	return obj(t, body)["token"].(string)
}

// setupAdmin creates the first super admin and returns its token.
func setupAdmin(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/admin/setup", "", map[string]string{
		"username": "root", "email": "root@basket.test", "password": "rootpass",
	})
	if status != http.StatusOK {
		t.Fatalf("setup: %d %v", status, body)
	}
	return loginAdmin(t, app, "root@basket.test", "rootpass")
}

func loginAdmin(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/admin/login", "", map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("admin login %s: %d %v", email, status, body)
	}
	return obj(t, body)["token"].(string)
}

type logEntry struct {
	Level   string         `json:"level"`
	Action  string         `json:"action"`
	Subject string         `json:"subject"`
	Fields  map[string]any `json:"fields"`
}

// captureLogs swaps the standard logger output while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findLog(entries []logEntry, level, action string) *logEntry {
	for i := range entries {
		if entries[i].Level == level && entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
