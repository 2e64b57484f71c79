package state

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/httpclient"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/testutil"
)

const (
	sessionKey = "storefront.auth"
	tokenKey   = "storefront.token"
)

type fixture struct {
	backend *testutil.Backend
	storage *session.MemoryStorage
	session *session.Store
	api     *api.API
	store   *Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend: testutil.NewBackend(t),
		storage: session.NewMemoryStorage(),
	}
	f.session = session.NewStore(f.storage, sessionKey, tokenKey)
	f.reload(t)
	return f
}

// reload simulates an application restart over the same durable storage.
func (f *fixture) reload(t *testing.T) {
	t.Helper()
	client, err := httpclient.New(f.backend.URL, httpclient.WithTokenSource(f.session))
	require.NoError(t, err)
	f.api = api.New(client)
	f.store = New(context.Background(), f.api, f.session)
}

func (f *fixture) signIn(t *testing.T, user models.User) models.User {
	t.Helper()
	seeded := f.backend.SeedUser(user, "secret")
	require.NoError(t, f.session.SetToken(context.Background(), f.backend.TokenFor(seeded.ID, time.Hour)))
	return seeded
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, ok, err := f.storage.Get(context.Background(), key)
	require.NoError(t, err)
	return value, ok
}

func TestLoginPersistsSessionAndSurvivesReload(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	ctx := context.Background()

	require.NoError(t, f.store.Auth.Login(ctx, models.Credentials{Identifier: "user@x.com", Password: "secret"}))

	snap := f.store.Auth.Snapshot()
	assert.True(t, snap.Data.IsAuthenticated)
	require.NotNil(t, snap.Data.User)
	assert.Equal(t, "user@x.com", snap.Data.User.Email)
	assert.False(t, snap.IsLoading)
	assert.Empty(t, snap.Error)

	raw, ok := f.stored(t, sessionKey)
	require.True(t, ok)
	assert.Contains(t, raw, `"isAuthenticated":true`)
	assert.Contains(t, raw, snap.Data.User.ID)
	token, ok := f.stored(t, tokenKey)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	before := f.backend.TotalRequests()
	f.reload(t)
	hydrated := f.store.Auth.Snapshot()
	assert.True(t, hydrated.Data.IsAuthenticated)
	assert.Equal(t, snap.Data.User.ID, hydrated.Data.User.ID)
	assert.False(t, hydrated.Data.InitialCheckComplete)
	assert.Equal(t, before, f.backend.TotalRequests())
}

func TestRegisterAndAdminLoginPersist(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser(models.User{Name: "Root", Email: "root@x.com", Role: "admin"}, "secret")
	ctx := context.Background()

	require.NoError(t, f.store.Auth.Register(ctx, models.Registration{Name: "Asha", Email: "asha@x.com", Password: "secret"}))
	assert.True(t, f.store.Auth.Snapshot().Data.IsAuthenticated)

	require.NoError(t, f.store.Auth.AdminLogin(ctx, models.Credentials{Identifier: "root@x.com", Password: "secret"}))
	snap := f.store.Auth.Snapshot()
	assert.True(t, snap.Data.User.IsAdmin())

	rec, ok, err := f.session.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.Data.User.ID, rec.User.ID)
}

func TestLoginFailureStoresMessage(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")

	err := f.store.Auth.Login(context.Background(), models.Credentials{Identifier: "user@x.com", Password: "nope"})
	require.Error(t, err)

	snap := f.store.Auth.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Equal(t, "Invalid credentials", snap.Error)
	assert.False(t, snap.Data.IsAuthenticated)
	_, ok := f.stored(t, sessionKey)
	assert.False(t, ok)
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	for _, failing := range []bool{false, true} {
		f := newFixture(t)
		f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
		ctx := context.Background()
		require.NoError(t, f.store.Auth.Login(ctx, models.Credentials{Identifier: "user@x.com", Password: "secret"}))

		if failing {
			f.backend.Fail(http.MethodGet, "/api/auth/user/logout", http.StatusInternalServerError, "boom")
		}
		err := f.store.Auth.Logout(ctx)
		assert.Equal(t, failing, err != nil)

		snap := f.store.Auth.Snapshot()
		assert.False(t, snap.Data.IsAuthenticated)
		assert.Nil(t, snap.Data.User)
		assert.False(t, snap.IsLoading)
		assert.Empty(t, snap.Error)
		_, ok := f.stored(t, sessionKey)
		assert.False(t, ok)
		_, ok = f.stored(t, tokenKey)
		assert.False(t, ok)
	}
}

func TestAdminLogoutNetworkFailureStillClears(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser(models.User{Name: "Root", Email: "root@x.com", Role: "admin"}, "secret")
	ctx := context.Background()
	require.NoError(t, f.store.Auth.AdminLogin(ctx, models.Credentials{Identifier: "root@x.com", Password: "secret"}))

	f.backend.FailNetwork(http.MethodGet, "/api/auth/admin/logout")
	err := f.store.Auth.AdminLogout(ctx)
	assert.True(t, httpclient.IsNetwork(err))
	assert.False(t, f.store.Auth.Snapshot().Data.IsAuthenticated)
	_, ok := f.stored(t, sessionKey)
	assert.False(t, ok)
}

func TestExpireDropsSessionWithoutRequest(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	ctx := context.Background()
	require.NoError(t, f.store.Auth.Login(ctx, models.Credentials{Identifier: "user@x.com", Password: "secret"}))
	before := f.backend.TotalRequests()

	f.store.Auth.Expire(ctx)

	snap := f.store.Auth.Snapshot()
	assert.False(t, snap.Data.IsAuthenticated)
	assert.Nil(t, snap.Data.User)
	_, ok := f.stored(t, sessionKey)
	assert.False(t, ok)
	_, ok = f.stored(t, tokenKey)
	assert.False(t, ok)
	assert.Equal(t, before, f.backend.TotalRequests())
}

// cancelAwareStorage fails like a network store once the caller's context is done.
type cancelAwareStorage struct {
	*session.MemoryStorage
}

func (s cancelAwareStorage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStorage.Set(ctx, key, value)
}

func (s cancelAwareStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStorage.Delete(ctx, key)
}

func TestLogoutClearsStorageWhenCallerCancelled(t *testing.T) {
	f := newFixture(t)
	f.session = session.NewStore(cancelAwareStorage{f.storage}, sessionKey, tokenKey)
	f.reload(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	require.NoError(t, f.store.Auth.Login(context.Background(), models.Credentials{Identifier: "user@x.com", Password: "secret"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, f.store.Auth.Logout(ctx))

	assert.False(t, f.store.Auth.Snapshot().Data.IsAuthenticated)
	_, ok := f.stored(t, sessionKey)
	assert.False(t, ok)
	_, ok = f.stored(t, tokenKey)
	assert.False(t, ok)
}

func TestExpireClearsStorageWhenCallerCancelled(t *testing.T) {
	f := newFixture(t)
	f.session = session.NewStore(cancelAwareStorage{f.storage}, sessionKey, tokenKey)
	f.reload(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	require.NoError(t, f.store.Auth.Login(context.Background(), models.Credentials{Identifier: "user@x.com", Password: "secret"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.store.Auth.Expire(ctx)

	_, ok := f.stored(t, sessionKey)
	assert.False(t, ok)
}

func TestLateLoadUserAfterLogoutIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	ctx := context.Background()
	require.NoError(t, f.store.Auth.Login(ctx, models.Credentials{Identifier: "user@x.com", Password: "secret"}))

	release := f.backend.Hold(http.MethodGet, "/api/auth/profile")
	done := make(chan error, 1)
	go func() { done <- f.store.Auth.LoadUser(ctx) }()
	require.Eventually(t, func() bool {
		return f.backend.Requests(http.MethodGet, "/api/auth/profile") == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.store.Auth.Logout(ctx))
	release()
	<-done

	snap := f.store.Auth.Snapshot()
	assert.False(t, snap.Data.IsAuthenticated)
	assert.Nil(t, snap.Data.User)
	assert.True(t, snap.Data.InitialCheckComplete)
	assert.False(t, snap.IsLoading)
	_, ok := f.stored(t, sessionKey)
	assert.False(t, ok)
}

func TestLateRefreshAfterLogoutKeepsTokenCleared(t *testing.T) {
	f := newFixture(t)
	user := f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	ctx := context.Background()
	require.NoError(t, f.store.Auth.Login(ctx, models.Credentials{Identifier: "user@x.com", Password: "secret"}))
	require.NoError(t, f.session.SetToken(ctx, f.backend.TokenFor(user.ID, time.Minute)))

	release := f.backend.Hold(http.MethodPost, "/api/auth/refresh")
	done := make(chan error, 1)
	go func() {
		_, err := f.store.Auth.RefreshIfExpiring(ctx, 2*time.Minute, time.Now())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return f.backend.Requests(http.MethodPost, "/api/auth/refresh") == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.store.Auth.Logout(ctx))
	release()
	<-done

	assert.False(t, f.store.Auth.Snapshot().Data.IsAuthenticated)
	_, ok := f.stored(t, tokenKey)
	assert.False(t, ok)
	_, ok = f.stored(t, sessionKey)
	assert.False(t, ok)
}

func TestHydrateDropsUnauthenticatedUser(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.storage.Set(context.Background(), sessionKey, `{"user":{"id":"u1","name":"Asha"},"isAuthenticated":false}`))
	f.reload(t)

	snap := f.store.Auth.Snapshot()
	assert.False(t, snap.Data.IsAuthenticated)
	assert.Nil(t, snap.Data.User)
}

// slowStorage blocks writes until release is closed.
type slowStorage struct {
	*session.MemoryStorage
	entered chan struct{}
	release chan struct{}
}

func (s slowStorage) Set(ctx context.Context, key, value string) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return s.MemoryStorage.Set(ctx, key, value)
}

func TestSnapshotNotBlockedBySessionWrite(t *testing.T) {
	f := newFixture(t)
	slow := slowStorage{MemoryStorage: f.storage, entered: make(chan struct{}, 1), release: make(chan struct{})}
	f.session = session.NewStore(slow, sessionKey, tokenKey)
	f.reload(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")

	done := make(chan error, 1)
	go func() {
		done <- f.store.Auth.Login(context.Background(), models.Credentials{Identifier: "user@x.com", Password: "secret"})
	}()
	select {
	case <-slow.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("session write never started")
	}

	read := make(chan Snapshot[AuthState], 1)
	go func() { read <- f.store.Auth.Snapshot() }()
	select {
	case snap := <-read:
		assert.True(t, snap.Data.IsAuthenticated)
	case <-time.After(time.Second):
		t.Fatal("snapshot waited for storage")
	}

	close(slow.release)
	require.NoError(t, <-done)
	_, ok := f.stored(t, sessionKey)
	assert.True(t, ok)
}

func TestLoadUser(t *testing.T) {
	t.Run("success completes the check", func(t *testing.T) {
		f := newFixture(t)
		user := f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})

		require.NoError(t, f.store.Auth.LoadUser(context.Background()))
		snap := f.store.Auth.Snapshot()
		assert.True(t, snap.Data.InitialCheckComplete)
		assert.True(t, snap.Data.IsAuthenticated)
		assert.Equal(t, user.ID, snap.Data.User.ID)
		_, ok := f.stored(t, sessionKey)
		assert.True(t, ok)
	})

	t.Run("failure without a local user clears", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.storage.Set(context.Background(), sessionKey, `{"user":null,"isAuthenticated":false}`))

		err := f.store.Auth.LoadUser(context.Background())
		require.Error(t, err)
		assert.False(t, httpclient.IsLoginRedirect(err))
		snap := f.store.Auth.Snapshot()
		assert.True(t, snap.Data.InitialCheckComplete)
		assert.False(t, snap.Data.IsAuthenticated)
		_, ok := f.stored(t, sessionKey)
		assert.False(t, ok)
	})

	t.Run("failure keeps a local user", func(t *testing.T) {
		f := newFixture(t)
		f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
		ctx := context.Background()
		require.NoError(t, f.store.Auth.Login(ctx, models.Credentials{Identifier: "user@x.com", Password: "secret"}))

		f.backend.Fail(http.MethodGet, "/api/auth/profile", http.StatusUnauthorized, "expired")
		require.Error(t, f.store.Auth.LoadUser(ctx))
		snap := f.store.Auth.Snapshot()
		assert.True(t, snap.Data.InitialCheckComplete)
		assert.True(t, snap.Data.IsAuthenticated)
		assert.NotNil(t, snap.Data.User)
		_, ok := f.stored(t, sessionKey)
		assert.True(t, ok)
	})
}

func TestInitialCheckCompleteFlipsOnce(t *testing.T) {
	f := newFixture(t)
	var mu sync.Mutex
	flips := 0
	last := false
	unsubscribe := f.store.Auth.Subscribe(func(s Snapshot[AuthState]) {
		mu.Lock()
		defer mu.Unlock()
		if s.Data.InitialCheckComplete && !last {
			flips++
		}
		last = s.Data.InitialCheckComplete
	})
	defer unsubscribe()

	ctx := context.Background()
	_ = f.store.Auth.LoadUser(ctx)
	_ = f.store.Auth.LoadUser(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, flips)
	assert.True(t, last)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	ctx := context.Background()
	require.NoError(t, f.store.Auth.Login(ctx, models.Credentials{Identifier: "user@x.com", Password: "secret"}))

	require.NoError(t, f.store.Auth.UpdateProfile(ctx, models.ProfileUpdate{Name: "Asha K"}))
	assert.Equal(t, "Asha K", f.store.Auth.Snapshot().Data.User.Name)
	rec, _, err := f.session.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", rec.User.Name)

	err = f.store.Auth.ChangePassword(ctx, models.PasswordChange{CurrentPassword: "bad", NewPassword: "secret2"})
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", f.store.Auth.Snapshot().Error)
	require.NoError(t, f.store.Auth.ChangePassword(ctx, models.PasswordChange{CurrentPassword: "secret", NewPassword: "secret2"}))
	assert.Empty(t, f.store.Auth.Snapshot().Error)
}

func TestRefreshIfExpiring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	refreshed, err := f.store.Auth.RefreshIfExpiring(ctx, 2*time.Minute, time.Now())
	require.NoError(t, err)
	assert.False(t, refreshed)

	user := f.backend.SeedUser(models.User{Name: "Asha", Email: "user@x.com"}, "secret")
	require.NoError(t, f.session.SetToken(ctx, f.backend.TokenFor(user.ID, time.Hour)))
	refreshed, err = f.store.Auth.RefreshIfExpiring(ctx, 2*time.Minute, time.Now())
	require.NoError(t, err)
	assert.False(t, refreshed)

	soon := f.backend.TokenFor(user.ID, time.Minute)
	require.NoError(t, f.session.SetToken(ctx, soon))
	refreshed, err = f.store.Auth.RefreshIfExpiring(ctx, 2*time.Minute, time.Now())
	require.NoError(t, err)
	assert.True(t, refreshed)

	current, err := f.session.Token(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, soon, current)
	info, err := session.InspectToken(current)
	require.NoError(t, err)
	assert.Equal(t, user.ID, info.Subject)
}

func TestSetDefaultAddressExclusive(t *testing.T) {
	f := newFixture(t)
	user := f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	a := f.backend.SeedAddress(user.ID, models.Address{FullName: "A", City: "Pune", IsDefault: true})
	b := f.backend.SeedAddress(user.ID, models.Address{FullName: "B", City: "Goa"})
	ctx := context.Background()
	require.NoError(t, f.store.Addresses.Fetch(ctx))

	var mu sync.Mutex
	var seen [][]models.Address
	unsubscribe := f.store.Addresses.Subscribe(func(s Snapshot[[]models.Address]) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Data)
	})
	defer unsubscribe()

	require.NoError(t, f.store.Addresses.SetDefault(ctx, b.ID))
	require.NoError(t, f.store.Addresses.SetDefault(ctx, b.ID))

	list := f.store.Addresses.Snapshot().Data
	defaults := 0
	for _, addr := range list {
		if addr.IsDefault {
			defaults++
			assert.Equal(t, b.ID, addr.ID)
		}
		if addr.ID == a.ID {
			assert.False(t, addr.IsDefault)
		}
	}
	assert.Equal(t, 1, defaults)

	mu.Lock()
	defer mu.Unlock()
	for _, snapshot := range seen {
		count := 0
		for _, addr := range snapshot {
			if addr.IsDefault {
				count++
			}
		}
		assert.Equal(t, 1, count, "every observed state has exactly one default")
	}
}

func TestAddAddressThenFetchPreservesFields(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	ctx := context.Background()

	in := models.Address{
		FullName: "Asha K",
		Phone:    "9876543210",
		Line1:    "12 MG Road",
		City:     "Pune",
		State:    "MH",
		Pincode:  "411001",
		Country:  "India",
	}
	created, err := f.store.Addresses.Add(ctx, in)
	require.NoError(t, err)
	require.NoError(t, f.store.Addresses.Fetch(ctx))

	got, err := f.store.Addresses.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Pincode, got.Pincode)
	assert.Equal(t, in.City, got.City)
	assert.Equal(t, in.State, got.State)
	assert.Equal(t, in.Line1, got.Line1)
	assert.Equal(t, in.Phone, got.Phone)

	def, err := f.store.Addresses.Default()
	require.NoError(t, err)
	assert.Equal(t, created.ID, def.ID)

	_, err = f.store.Addresses.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddressUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	user := f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	valid := models.Address{FullName: "B", Phone: "9876543210", Line1: "1 Beach Rd", City: "Goa", State: "GA", Pincode: "403001"}
	a := f.backend.SeedAddress(user.ID, models.Address{FullName: "A", IsDefault: true})
	b := f.backend.SeedAddress(user.ID, valid)
	ctx := context.Background()
	require.NoError(t, f.store.Addresses.Fetch(ctx))

	valid.IsDefault = true
	_, err := f.store.Addresses.Update(ctx, b.ID, valid)
	require.NoError(t, err)
	got, err := f.store.Addresses.Default()
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	require.NoError(t, f.store.Addresses.Delete(ctx, a.ID))
	assert.Len(t, f.store.Addresses.Snapshot().Data, 1)
}

func TestFailedAddToCartLeavesItems(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	p := f.backend.SeedProduct(models.Product{Title: "Linen shirt", Price: 40})
	ctx := context.Background()
	require.NoError(t, f.store.Cart.Add(ctx, models.CartAddition{ProductID: p.ID, Quantity: 1}))
	before := f.store.Cart.Snapshot().Data.Items

	f.backend.FailNetwork(http.MethodPost, "/cart")
	err := f.store.Cart.Add(ctx, models.CartAddition{ProductID: p.ID, Quantity: 1})
	require.Error(t, err)

	snap := f.store.Cart.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.NotEmpty(t, snap.Error)
	assert.Equal(t, before, snap.Data.Items)
}

func TestCartOperationsReplaceCart(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	p := f.backend.SeedProduct(models.Product{Title: "Linen shirt", Price: 40})
	f.backend.SeedCoupon(models.Coupon{Code: "TENPERCENT", DiscountType: models.DiscountPercentage, Value: 10, IsActive: true})
	ctx := context.Background()

	require.NoError(t, f.store.Cart.Add(ctx, models.CartAddition{ProductID: p.ID, Quantity: 2}))
	item := f.store.Cart.Snapshot().Data.Items[0]
	require.NoError(t, f.store.Cart.UpdateItem(ctx, item.ID, 3))
	require.NoError(t, f.store.Cart.ApplyCoupon(ctx, "TENPERCENT"))

	totals := f.store.Cart.Totals(time.Now())
	assert.Equal(t, 3, totals.ItemCount)
	assert.Equal(t, 120.0, totals.Subtotal)
	assert.Equal(t, 12.0, totals.Discount)
	assert.Equal(t, 108.0, totals.Total)

	require.NoError(t, f.store.Cart.RemoveCoupon(ctx))
	assert.Nil(t, f.store.Cart.Snapshot().Data.Coupon)
	require.NoError(t, f.store.Cart.RemoveItem(ctx, item.ID))
	assert.Empty(t, f.store.Cart.Snapshot().Data.Items)

	require.NoError(t, f.store.Cart.Fetch(ctx))
}

func TestShortCouponRejectedWithoutRequest(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})

	err := f.store.Cart.ApplyCoupon(context.Background(), "ABCDEFG")
	assert.ErrorIs(t, err, models.ErrCouponCodeTooShort)
	assert.Equal(t, models.ErrCouponCodeTooShort.Error(), f.store.Cart.Snapshot().Error)
	assert.Zero(t, f.backend.Requests(http.MethodPost, "/cart/coupon"))
}

func TestProductFetchNormalizesShapes(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedProduct(models.Product{Title: "Linen shirt", Price: 40})
	ctx := context.Background()

	var results [][]models.Product
	for _, shape := range []string{testutil.ShapeArray, testutil.ShapeProducts, testutil.ShapeData} {
		f.backend.SetProductShape(shape)
		require.NoError(t, f.store.Products.Fetch(ctx, models.ProductQuery{}))
		results = append(results, f.store.Products.Snapshot().Data.Items)
	}
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])
	assert.Len(t, results[0], 1)
}

func TestLatestFetchWins(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedProduct(models.Product{Title: "Linen shirt", Category: "shirts"})
	f.backend.SeedProduct(models.Product{Title: "Denim", Category: "jeans"})
	ctx := context.Background()

	release := f.backend.Hold(http.MethodGet, "/api/cloth")
	done := make(chan error, 1)
	go func() {
		done <- f.store.Products.Fetch(ctx, models.ProductQuery{Category: "shirts"})
	}()
	require.Eventually(t, func() bool {
		return f.backend.Requests(http.MethodGet, "/api/cloth") == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.store.Products.Fetch(ctx, models.ProductQuery{Category: "jeans"}))
	release()
	require.NoError(t, <-done)

	snap := f.store.Products.Snapshot()
	require.Len(t, snap.Data.Items, 1)
	assert.Equal(t, "Denim", snap.Data.Items[0].Title)
	assert.Equal(t, "jeans", snap.Data.Query.Category)
	assert.False(t, snap.IsLoading)
}

func TestProductMutationsSplice(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, models.User{Name: "Root", Email: "root@x.com", Role: "admin"})
	existing := f.backend.SeedProduct(models.Product{Title: "Denim", Price: 60, Category: "jeans"})
	ctx := context.Background()
	require.NoError(t, f.store.Products.Fetch(ctx, models.ProductQuery{}))
	require.NoError(t, f.store.Products.FetchCategories(ctx))
	assert.Equal(t, []models.Category{{Name: "jeans"}}, f.store.Products.Snapshot().Data.Categories)

	created, err := f.store.Products.Create(ctx, models.ProductForm{Title: "Linen shirt", Price: 40, Category: "shirts"})
	require.NoError(t, err)
	assert.Len(t, f.store.Products.Snapshot().Data.Items, 2)

	require.NoError(t, f.store.Products.FetchOne(ctx, existing.ID))
	_, err = f.store.Products.Update(ctx, existing.ID, models.ProductForm{Title: "Denim slim", Price: 65, Category: "jeans"})
	require.NoError(t, err)
	snap := f.store.Products.Snapshot()
	assert.Equal(t, "Denim slim", snap.Data.Selected.Title)
	got, err := f.store.Products.Lookup(existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Denim slim", got.Title)

	require.NoError(t, f.store.Products.Delete(ctx, created.ID))
	_, err = f.store.Products.Lookup(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.store.Products.Search(ctx, "slim"))
	assert.Len(t, f.store.Products.Snapshot().Data.Items, 1)
}

func TestSubscribeSeesPendingThenFulfilled(t *testing.T) {
	f := newFixture(t)
	var mu sync.Mutex
	var phases []Lifecycle
	unsubscribe := f.store.Products.Subscribe(func(s Snapshot[ProductState]) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Lifecycle)
	})

	require.NoError(t, f.store.Products.Fetch(context.Background(), models.ProductQuery{}))
	unsubscribe()
	require.NoError(t, f.store.Products.Fetch(context.Background(), models.ProductQuery{}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Lifecycle{{IsLoading: true}, {IsLoading: false}}, phases)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	p := f.backend.SeedProduct(models.Product{Title: "Linen shirt", Price: 40})
	ctx := context.Background()
	address := models.Address{FullName: "Asha K", Phone: "9876543210", Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"}

	_, err := f.store.Checkout(ctx, CheckoutRequest{ShippingAddress: address, PaymentMethod: models.PaymentCOD})
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, f.store.Cart.Add(ctx, models.CartAddition{ProductID: p.ID, Quantity: 2}))
	order, err := f.store.Checkout(ctx, CheckoutRequest{ShippingAddress: address, PaymentMethod: models.PaymentCOD})
	require.NoError(t, err)
	assert.Equal(t, 80.0, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Linen shirt", order.Items[0].Title)
	assert.Empty(t, f.store.Cart.Snapshot().Data.Items)
	assert.Len(t, f.store.Orders.Snapshot().Data, 1)
}

func TestCheckoutKeepsOrderWhenClearFails(t *testing.T) {
	f := newFixture(t)
	user := f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	p := f.backend.SeedProduct(models.Product{Title: "Linen shirt", Price: 40})
	ctx := context.Background()
	require.NoError(t, f.store.Cart.Add(ctx, models.CartAddition{ProductID: p.ID, Quantity: 1}))

	f.backend.Fail(http.MethodDelete, "/cart", http.StatusInternalServerError, "cart store down")
	order, err := f.store.Checkout(ctx, CheckoutRequest{
		ShippingAddress: models.Address{FullName: "Asha K", Phone: "9876543210", Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"},
		PaymentMethod:   models.PaymentOnline,
	})
	require.Error(t, err)
	require.NotNil(t, order)
	assert.Len(t, f.backend.Orders(), 1)
	assert.Len(t, f.backend.CartOf(user.ID).Items, 1)
	assert.Equal(t, "cart store down", f.store.Cart.Snapshot().Error)
}

func TestOrderSlice(t *testing.T) {
	f := newFixture(t)
	admin := f.signIn(t, models.User{Name: "Root", Email: "root@x.com", Role: "admin"})
	o := f.backend.SeedOrder(models.Order{User: models.Ref{ID: admin.ID}, Total: 10})
	ctx := context.Background()

	require.NoError(t, f.store.Orders.Fetch(ctx))
	assert.Len(t, f.store.Orders.Snapshot().Data, 1)

	_, err := f.store.Orders.UpdateStatus(ctx, o.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, f.store.Orders.Snapshot().Data[0].Status)

	require.NoError(t, f.store.Orders.Delete(ctx, o.ID))
	assert.Empty(t, f.store.Orders.Snapshot().Data)
}

func TestResetUserDataDropsInFlightResults(t *testing.T) {
	f := newFixture(t)
	user := f.signIn(t, models.User{Name: "Asha", Email: "user@x.com"})
	f.backend.SeedAddress(user.ID, models.Address{FullName: "A"})
	ctx := context.Background()

	release := f.backend.Hold(http.MethodGet, "/api/addresses")
	done := make(chan error, 1)
	go func() { done <- f.store.Addresses.Fetch(ctx) }()
	require.Eventually(t, func() bool {
		return f.backend.Requests(http.MethodGet, "/api/addresses") == 1
	}, 2*time.Second, 5*time.Millisecond)

	f.store.ResetUserData()
	release()
	require.NoError(t, <-done)

	snap := f.store.Addresses.Snapshot()
	assert.Empty(t, snap.Data)
	assert.False(t, snap.IsLoading)
}
