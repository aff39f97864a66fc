package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"basket/internal/cart"
	"basket/internal/client"
)

// fakeAPI serves two products and accepts orders unless reject is set.
func fakeAPI(t *testing.T, reject *bool, placed *[]client.OrderRequest) *httptest.Server {
	t.Helper()
	products := map[string]string{
		"banana-001": `{"id":"banana-001","name":"Banana","price":40,"unit":"dozen","stock":10}`,
		"juice-001":  `{"id":"juice-001","name":"Orange Juice","price":120,"unit":"l","stock":5}`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pricing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"deliveryFee":50,"freeDeliveryAbove":500}`))
	})
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-1"}`))
	})
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		body, ok := products[filepath.Base(r.URL.Path)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Product not found"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/api/order", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if *reject {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Insufficient stock for Banana"}`))
			return
		}
		var in client.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		*placed = append(*placed, in)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order":{"id":"o-1","totalAmount":200,"status":"pending","orderDate":"2026-01-01T00:00:00.000000Z"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, api, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"basketctl", "--api", api, "--dir", dir}, args...))
	return out.String(), err
}

func savedCart(t *testing.T, dir string) []cart.Item {
	t.Helper()
	items, err := cart.NewFileStore(dir).Load()
	require.NoError(t, err)
	return items
}

func TestCartCommands(t *testing.T) {
	reject := false
	var placed []client.OrderRequest
	srv := fakeAPI(t, &reject, &placed)
	dir := t.TempDir()

	_, err := run(t, srv.URL, dir, "cart", "add", "banana-001")
	require.NoError(t, err)
	_, err = run(t, srv.URL, dir, "cart", "add", "banana-001")
	require.NoError(t, err)
	out, err := run(t, srv.URL, dir, "cart", "add", "juice-001")
	require.NoError(t, err)
	assert.Contains(t, out, "subtotal 200.00  delivery 50.00  total 250.00")

	_, err = run(t, srv.URL, dir, "cart", "set", "juice-001", "0")
	require.NoError(t, err)
	items := savedCart(t, dir)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	_, err = run(t, srv.URL, dir, "cart", "add", "ghost")
	assert.Error(t, err)

	out, err = run(t, srv.URL, dir, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")
}

func TestCheckoutKeepsCartOnFailure(t *testing.T) {
	reject := true
	var placed []client.OrderRequest
	srv := fakeAPI(t, &reject, &placed)
	dir := t.TempDir()

	_, err := run(t, srv.URL, dir, "login", "--email", "alice@basket.test", "--password", "Passw0rd!")
	require.NoError(t, err)
	tok, err := os.ReadFile(filepath.Join(dir, tokenFile))
	require.NoError(t, err)
	assert.Equal(t, "tok-1", string(tok))

	_, err = run(t, srv.URL, dir, "cart", "add", "banana-001")
	require.NoError(t, err)

	checkout := []string{"checkout", "--street", "1 Lane", "--city", "Pune", "--state", "MH", "--pincode", "411001"}
	_, err = run(t, srv.URL, dir, checkout...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock for Banana")
	assert.Len(t, savedCart(t, dir), 1)

	reject = false
	out, err := run(t, srv.URL, dir, checkout...)
	require.NoError(t, err)
	assert.Contains(t, out, "order o-1 placed")
	assert.Empty(t, savedCart(t, dir))

	require.Len(t, placed, 1)
	assert.Equal(t, "banana-001", placed[0].Items[0].ProductID)
	assert.Equal(t, "cod", placed[0].PaymentMethod)
	assert.Equal(t, "411001", placed[0].ShippingAddress.Pincode)
}

func TestCartEditsStayLocal(t *testing.T) {
	var hits int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/api/login":
			_, _ = w.Write([]byte(`{"token":"tok-1"}`))
		case "/api/pricing":
			_, _ = w.Write([]byte(`{"deliveryFee":30,"freeDeliveryAbove":1000}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(api.Close)
	dir := t.TempDir()

	_, err := run(t, api.URL, dir, "login", "--email", "alice@basket.test", "--password", "Passw0rd!")
	require.NoError(t, err)
	require.NoError(t, cart.NewFileStore(dir).Save([]cart.Item{
		{ProductID: "banana-001", Name: "Banana", Price: 40, Unit: "dozen", Quantity: 1},
	}))

	before := atomic.LoadInt32(&hits)

	_, err = run(t, api.URL, dir, "cart", "set", "banana-001", "3")
	require.NoError(t, err)
	out, err := run(t, api.URL, dir, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "subtotal 120.00  delivery 30.00  total 150.00")
	_, err = run(t, api.URL, dir, "cart", "rm", "banana-001")
	require.NoError(t, err)
	out, err = run(t, api.URL, dir, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")

	assert.Equal(t, before, atomic.LoadInt32(&hits))
}
