// Package testutil runs an in-memory copy of the storefront backend REST contract for
// package tests.
package testutil

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/models"
)

// Product listing shapes the fake can answer with.
const (
	ShapeArray    = "array"
	ShapeCloths   = "cloths"
	ShapeProducts = "products"
	ShapeData     = "data"
	ShapeEmpty    = "empty"
)

type account struct {
	user     models.User
	password string
}

type failure struct {
	status  int
	message string
	network bool
}

// Backend is a gin router serving the backend routes from memory. All exported
// methods are safe to call while requests are in flight.
type Backend struct {
	Server *httptest.Server
	URL    string

	secret   []byte
	tokenTTL time.Duration

	mu          sync.Mutex
	seq         int
	accounts    map[string]*account
	products    []models.Product
	reviews     map[string][]models.Review
	carts       map[string]*models.Cart
	addresses   map[string][]models.Address
	orders      []models.Order
	coupons     []models.Coupon
	videos      []models.Video
	subscribers []models.Subscriber
	newsletters []models.Newsletter
	shape       string

	failures map[string]failure
	holds    map[string]chan struct{}
	requests map[string]int
	uploads  []Upload
}

// Upload records what a multipart request carried.
type Upload struct {
	Route  string
	Fields map[string][]string
	Files  map[string]string
}

// NewBackend starts the fake and closes it when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		secret:    []byte("storefront-test-secret"),
		tokenTTL:  time.Hour,
		accounts:  map[string]*account{},
		reviews:   map[string][]models.Review{},
		carts:     map[string]*models.Cart{},
		addresses: map[string][]models.Address{},
		shape:     ShapeCloths,
		failures:  map[string]failure{},
		holds:     map[string]chan struct{}{},
		requests:  map[string]int{},
	}
	b.Server = httptest.NewServer(b.router())
	b.URL = b.Server.URL
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) Close() {
	b.mu.Lock()
	for key, hold := range b.holds {
		close(hold)
		delete(b.holds, key)
	}
	b.mu.Unlock()
	b.Server.Close()
}

func routeKey(method, route string) string { return method + " " + route }

// Fail makes every request to route answer status with message until Reset.
func (b *Backend) Fail(method, route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[routeKey(method, route)] = failure{status: status, message: message}
}

// FailNetwork drops the connection of every request to route until Reset.
func (b *Backend) FailNetwork(method, route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[routeKey(method, route)] = failure{network: true}
}

func (b *Backend) Reset(method, route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, routeKey(method, route))
}

// Hold blocks the next request to route until release is called.
func (b *Backend) Hold(method, route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.holds[routeKey(method, route)] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Requests counts requests that matched route, failed ones included.
func (b *Backend) Requests(method, route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[routeKey(method, route)]
}

// TotalRequests counts every request the fake received.
func (b *Backend) TotalRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.requests {
		total += n
	}
	return total
}

func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// SetProductShape picks the envelope GET /api/cloth answers with.
func (b *Backend) SetProductShape(shape string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shape = shape
}

func (b *Backend) SetTokenTTL(ttl time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenTTL = ttl
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s%d", prefix, b.seq)
}

// SeedUser stores an account. Role "admin" makes an administrator.
func (b *Backend) SeedUser(user models.User, password string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user.ID == "" {
		user.ID = b.nextID("u")
	}
	if user.Role == "" {
		user.Role = "user"
	}
	user.IsActive = true
	b.accounts[user.ID] = &account{user: user, password: password}
	return user
}

func (b *Backend) SeedProduct(p models.Product) models.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = b.nextID("p")
	}
	b.products = append(b.products, p)
	return p
}

func (b *Backend) SeedAddress(userID string, addr models.Address) models.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr.ID == "" {
		addr.ID = b.nextID("a")
	}
	b.addresses[userID] = append(b.addresses[userID], addr)
	return addr
}

func (b *Backend) SeedCoupon(c models.Coupon) models.Coupon {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.ID == "" {
		c.ID = b.nextID("c")
	}
	b.coupons = append(b.coupons, c)
	return c
}

func (b *Backend) SeedOrder(o models.Order) models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o.ID == "" {
		o.ID = b.nextID("o")
	}
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	b.orders = append(b.orders, o)
	return o
}

func (b *Backend) SeedVideo(v models.Video) models.Video {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v.ID == "" {
		v.ID = b.nextID("v")
	}
	b.videos = append(b.videos, v)
	return v
}

// Addresses returns the server-side address book of a user.
func (b *Backend) Addresses(userID string) []models.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Address(nil), b.addresses[userID]...)
}

func (b *Backend) CartOf(userID string) models.Cart {
	b.mu.Lock()
	defer b.mu.Unlock()
	cart := b.cartLocked(userID)
	return models.Cart{Items: append([]models.CartItem(nil), cart.Items...), Coupon: cart.Coupon}
}

func (b *Backend) Orders() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Order(nil), b.orders...)
}

func (b *Backend) Newsletters() []models.Newsletter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Newsletter(nil), b.newsletters...)
}

// TokenFor signs a token for userID that expires after ttl.
func (b *Backend) TokenFor(userID string, ttl time.Duration) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[userID]
	role := "user"
	if ok {
		role = acct.user.Role
	}
	return b.signLocked(userID, role, ttl)
}

func (b *Backend) signLocked(userID, role string, ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (b *Backend) cartLocked(userID string) *models.Cart {
	cart, ok := b.carts[userID]
	if !ok {
		cart = &models.Cart{Items: []models.CartItem{}}
		b.carts[userID] = cart
	}
	return cart
}

func (b *Backend) productLocked(id string) (int, bool) {
	for i := range b.products {
		if b.products[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (b *Backend) accountByLoginLocked(identifier string) *account {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	for _, acct := range b.accounts {
		if strings.ToLower(acct.user.Email) == identifier || strings.ToLower(acct.user.Username) == identifier {
			return acct
		}
	}
	return nil
}

func respond(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
