package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/guard"
	"storefront/internal/httpclient"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/state"
	"storefront/internal/testutil"
)

type console struct {
	backend *testutil.Backend
	session *session.Store
	store   *state.Store
	router  *gin.Engine
}

func newConsole(t *testing.T) *console {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := testutil.NewBackend(t)
	sess := session.NewStore(session.NewMemoryStorage(), "storefront.auth", "storefront.token")
	client, err := httpclient.New(backend.URL, httpclient.WithTokenSource(sess))
	require.NoError(t, err)
	a := api.New(client)
	store := state.New(context.Background(), a, sess)
	policy, err := guard.NewPolicy()
	require.NoError(t, err)

	r := gin.New()
	Mount(r, Deps{Store: store, API: a, Policy: policy})
	return &console{backend: backend, session: sess, store: store, router: r}
}

func (c *console) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c *console) multipart(t *testing.T, method, path string, fields map[string]string, fileField, fileName string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

// anonymous finishes the initial session probe with nobody signed in.
func (c *console) anonymous(t *testing.T) {
	t.Helper()
	_ = c.store.Auth.LoadUser(context.Background())
	require.True(t, c.store.Auth.Snapshot().Data.InitialCheckComplete)
}

// signIn logs in through the console and completes the initial probe.
func (c *console) signIn(t *testing.T, user models.User) models.User {
	t.Helper()
	seeded := c.backend.SeedUser(user, "secret")
	path := "/login"
	if seeded.IsAdmin() {
		path = "/admin/login"
	}
	rec := c.do(t, http.MethodPost, path, models.Credentials{Identifier: seeded.Email, Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(t, http.MethodPost, "/session/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return seeded
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func validAddress() models.Address {
	return models.Address{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Line1:    "12 Lake Road",
		City:     "Pune",
		State:    "MH",
		Pincode:  "411001",
	}
}

func TestGuardAnswersCheckingBeforeProbe(t *testing.T) {
	c := newConsole(t)

	rec := c.do(t, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "checking", decodeBody(t, rec)["status"])
	assert.Zero(t, c.backend.Requests(http.MethodGet, "/cart"))
}

func TestGuardRedirects(t *testing.T) {
	t.Run("anonymous to login", func(t *testing.T) {
		c := newConsole(t)
		c.anonymous(t)

		rec := c.do(t, http.MethodGet, "/cart", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, guard.LoginPath, rec.Header().Get("Location"))
	})

	t.Run("customer away from admin", func(t *testing.T) {
		c := newConsole(t)
		c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})

		rec := c.do(t, http.MethodGet, "/admin/dashboard", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, guard.HomePath, rec.Header().Get("Location"))
		assert.Zero(t, c.backend.Requests(http.MethodGet, "/admin/dashboard"))
	})

	t.Run("admin reaches both areas", func(t *testing.T) {
		c := newConsole(t)
		c.signIn(t, models.User{Name: "Root", Email: "root@x.com", Role: models.RoleAdmin})

		assert.Equal(t, http.StatusOK, c.do(t, http.MethodGet, "/admin/dashboard", nil).Code)
		assert.Equal(t, http.StatusOK, c.do(t, http.MethodGet, "/cart", nil).Code)
	})
}

func TestLogin(t *testing.T) {
	c := newConsole(t)
	c.backend.SeedUser(models.User{Name: "Asha", Email: "asha@x.com"}, "secret")

	rec := c.do(t, http.MethodPost, "/login", models.Credentials{Identifier: "asha@x.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])
	assert.Equal(t, "Invalid credentials", c.store.Auth.Snapshot().Error)

	rec = c.do(t, http.MethodPost, "/login", map[string]string{"identifier": "asha@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", decodeBody(t, rec)["error"])

	rec = c.do(t, http.MethodPost, "/login", models.Credentials{Identifier: "asha@x.com", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["isAuthenticated"])
	assert.Equal(t, "", body["error"])
}

func TestLogoutClearsSessionWhenServerFails(t *testing.T) {
	c := newConsole(t)
	c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})
	c.backend.Fail(http.MethodGet, "/api/auth/user/logout", http.StatusInternalServerError, "boom")

	rec := c.do(t, http.MethodPost, "/logout", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "server logout failed", body["warning"])
	assert.Equal(t, guard.LoginPath, body["redirect"])
	snap := c.store.Auth.Snapshot()
	assert.False(t, snap.Data.IsAuthenticated)
	assert.Nil(t, snap.Data.User)
	token, err := c.session.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)

	rec = c.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestCatalog(t *testing.T) {
	c := newConsole(t)
	c.backend.SetProductShape(testutil.ShapeCloths)
	shirt := c.backend.SeedProduct(models.Product{Title: "Shirt", Price: 40, Category: "Tops", Stock: 2})
	c.backend.SeedProduct(models.Product{Title: "Jeans", Price: 90, Category: "Bottoms"})

	rec := c.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["products"], 2)

	rec = c.do(t, http.MethodGet, "/products?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodGet, "/products/"+shirt.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["inStock"])
	assert.Equal(t, "Shirt", body["product"].(map[string]any)["title"])

	rec = c.do(t, http.MethodGet, "/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(t, http.MethodGet, "/products/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackendFailuresMapToConsoleStatuses(t *testing.T) {
	c := newConsole(t)

	c.backend.Fail(http.MethodGet, "/api/cloth", http.StatusInternalServerError, "")
	rec := c.do(t, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, httpclient.ServerErrorMessage, decodeBody(t, rec)["error"])

	c.backend.FailNetwork(http.MethodGet, "/api/cloth")
	rec = c.do(t, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, httpclient.ServerErrorMessage, decodeBody(t, rec)["error"])
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	c := newConsole(t)
	c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})
	c.backend.Fail(http.MethodGet, "/cart", http.StatusUnauthorized, "Not authorized, token failed")

	rec := c.do(t, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, guard.LoginPath, rec.Header().Get("Location"))
}

func TestCartAndCoupon(t *testing.T) {
	c := newConsole(t)
	user := c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})
	shirt := c.backend.SeedProduct(models.Product{Title: "Shirt", Price: 60, Category: "Tops", Stock: 5})
	c.backend.SeedCoupon(models.Coupon{Code: "SAVE10PCT", DiscountType: models.DiscountPercentage, Value: 10, IsActive: true})

	rec := c.do(t, http.MethodPost, "/cart", models.CartAddition{ProductID: shirt.ID, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, c.backend.CartOf(user.ID).Items, 1)

	rec = c.do(t, http.MethodPost, "/cart/coupon", map[string]string{"code": "SHORT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ErrCouponCodeTooShort.Error(), decodeBody(t, rec)["error"])
	assert.Zero(t, c.backend.Requests(http.MethodPost, "/cart/coupon"))

	rec = c.do(t, http.MethodPost, "/cart/coupon", map[string]string{"code": "SAVE10PCT"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	totals := decodeBody(t, rec)["totals"].(map[string]any)
	assert.Equal(t, 120.0, totals["subtotal"])
	assert.Equal(t, 12.0, totals["discount"])
	assert.Equal(t, 108.0, totals["total"])

	rec = c.do(t, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Zero(t, c.backend.Requests(http.MethodDelete, "/cart"))

	rec = c.do(t, http.MethodDelete, "/cart?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, c.backend.CartOf(user.ID).Items)
}

func TestAddresses(t *testing.T) {
	c := newConsole(t)
	user := c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})

	bad := validAddress()
	bad.Pincode = "12"
	rec := c.do(t, http.MethodPost, "/addresses", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.backend.Requests(http.MethodPost, "/api/addresses"))

	first := c.backend.SeedAddress(user.ID, validAddress())
	second := validAddress()
	second.City = "Mumbai"
	rec = c.do(t, http.MethodPost, "/addresses", second)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(t, http.MethodPatch, "/addresses/"+first.ID+"/default", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	defaults := 0
	for _, a := range decodeBody(t, rec)["addresses"].([]any) {
		if a.(map[string]any)["isDefault"] == true {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	rec = c.do(t, http.MethodDelete, "/addresses/"+first.ID, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Len(t, c.backend.Addresses(user.ID), 2)

	rec = c.do(t, http.MethodDelete, "/addresses/"+first.ID, nil, "X-Confirm", "true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, c.backend.Addresses(user.ID), 1)
}

func TestCheckout(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		c := newConsole(t)
		user := c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})
		addr := validAddress()
		addr.IsDefault = true
		c.backend.SeedAddress(user.ID, addr)

		rec := c.do(t, http.MethodPost, "/checkout", checkoutRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, state.ErrEmptyCart.Error(), decodeBody(t, rec)["error"])
		assert.Empty(t, c.backend.Orders())
	})

	t.Run("unknown address", func(t *testing.T) {
		c := newConsole(t)
		c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})

		rec := c.do(t, http.MethodPost, "/checkout", checkoutRequest{AddressID: "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("places order and clears cart", func(t *testing.T) {
		c := newConsole(t)
		user := c.signIn(t, models.User{Name: "Asha", Email: "asha@x.com"})
		shirt := c.backend.SeedProduct(models.Product{Title: "Shirt", Price: 25, Category: "Tops", Stock: 5})
		addr := c.backend.SeedAddress(user.ID, validAddress())
		require.Equal(t, http.StatusOK, c.do(t, http.MethodPost, "/cart", models.CartAddition{ProductID: shirt.ID, Quantity: 2}).Code)

		rec := c.do(t, http.MethodPost, "/checkout", checkoutRequest{AddressID: addr.ID, PaymentMethod: models.PaymentCOD})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Nil(t, body["warning"])
		orders := c.backend.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, 50.0, orders[0].Total)
		assert.Equal(t, "Pune", orders[0].ShippingAddress.City)
		assert.Empty(t, c.backend.CartOf(user.ID).Items)
	})
}

func TestAdminProductLifecycle(t *testing.T) {
	c := newConsole(t)
	c.signIn(t, models.User{Name: "Root", Email: "root@x.com", Role: models.RoleAdmin})

	rec := c.multipart(t, http.MethodPost, "/admin/products", map[string]string{
		"title": "Shirt", "price": "40", "category": "Tops", "stock": "3",
	}, "image", "shirt.jpg")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody(t, rec)["product"].(map[string]any)["id"].(string)

	rec = c.multipart(t, http.MethodPut, "/admin/products/"+id, map[string]string{"price": "35"}, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	product := decodeBody(t, rec)["product"].(map[string]any)
	assert.Equal(t, 35.0, product["price"])
	assert.Equal(t, "Shirt", product["title"])
	assert.Equal(t, []any{"uploads/products/shirt.jpg"}, product["images"])

	uploads := c.backend.Uploads()
	require.Len(t, uploads, 2)
	assert.Contains(t, uploads[0].Files, "image")
	assert.NotContains(t, uploads[1].Files, "image")

	rec = c.multipart(t, http.MethodPut, "/admin/products/"+id, map[string]string{"comparePrice": "20"}, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, c.backend.Uploads(), 2)

	rec = c.do(t, http.MethodDelete, "/admin/products/"+id, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Zero(t, c.backend.Requests(http.MethodDelete, "/api/cloth/del/:id"))

	rec = c.do(t, http.MethodDelete, "/admin/products/"+id+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, c.backend.Requests(http.MethodDelete, "/api/cloth/del/:id"))
}

func TestAdminVideos(t *testing.T) {
	c := newConsole(t)
	c.signIn(t, models.User{Name: "Root", Email: "root@x.com", Role: models.RoleAdmin})

	rec := c.multipart(t, http.MethodPost, "/admin/videos", map[string]string{"title": "Lookbook"}, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.backend.Requests(http.MethodPost, "/api/videos"))

	rec = c.multipart(t, http.MethodPost, "/admin/videos", map[string]string{"title": "Lookbook"}, "video", "look.exe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.multipart(t, http.MethodPost, "/admin/videos", map[string]string{"title": "Lookbook"}, "video", "look.mp4")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody(t, rec)["video"].(map[string]any)["id"].(string)

	rec = c.multipart(t, http.MethodPut, "/admin/videos/"+id, map[string]string{"isActive": "false"}, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	video := decodeBody(t, rec)["video"].(map[string]any)
	assert.Equal(t, "Lookbook", video["title"])
	assert.Equal(t, false, video["isActive"])
}

func TestAdminUsersAndOrders(t *testing.T) {
	c := newConsole(t)
	c.signIn(t, models.User{Name: "Root", Email: "root@x.com", Role: models.RoleAdmin})
	asha := c.backend.SeedUser(models.User{Name: "Asha", Email: "asha@x.com"}, "secret")
	order := c.backend.SeedOrder(models.Order{User: models.Ref{ID: asha.ID}, Total: 10})

	rec := c.do(t, http.MethodPut, "/admin/users/"+asha.ID+"/role", map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodPut, "/admin/users/"+asha.ID+"/status", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodPut, "/admin/users/"+asha.ID+"/status", map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, decodeBody(t, rec)["user"].(map[string]any)["isActive"])

	rec = c.do(t, http.MethodGet, "/admin/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["orders"], 1)

	rec = c.do(t, http.MethodPut, "/admin/orders/"+order.ID+"/status", map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodPut, "/admin/orders/"+order.ID+"/status", map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderShipped, c.backend.Orders()[0].Status)

	rec = c.do(t, http.MethodDelete, "/admin/users/"+asha.ID, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Zero(t, c.backend.Requests(http.MethodDelete, "/admin/users/:id"))
}

func TestAdminCoupons(t *testing.T) {
	c := newConsole(t)
	c.signIn(t, models.User{Name: "Root", Email: "root@x.com", Role: models.RoleAdmin})

	rec := c.do(t, http.MethodPost, "/admin/coupons", models.Coupon{Code: "short", DiscountType: models.DiscountFixed, Value: 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.backend.Requests(http.MethodPost, "/admin/coupons"))

	rec = c.do(t, http.MethodPost, "/admin/coupons", models.Coupon{Code: "welcome25", DiscountType: models.DiscountFixed, Value: 25, IsActive: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "WELCOME25", decodeBody(t, rec)["coupon"].(map[string]any)["code"])
}

func TestSubscribeValidatesEmail(t *testing.T) {
	c := newConsole(t)

	rec := c.do(t, http.MethodPost, "/subscribe", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.backend.Requests(http.MethodPost, "/api/subscribe"))

	rec = c.do(t, http.MethodPost, "/subscribe", map[string]string{"email": "fan@x.com"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
