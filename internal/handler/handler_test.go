package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/auth"
	"CosmicOutfits_OutfitBuilder/internal/cache"
	"CosmicOutfits_OutfitBuilder/internal/catalog"
	"CosmicOutfits_OutfitBuilder/internal/config"
	"CosmicOutfits_OutfitBuilder/internal/models"
	"CosmicOutfits_OutfitBuilder/internal/realtime"
	"CosmicOutfits_OutfitBuilder/internal/shop"
	"CosmicOutfits_OutfitBuilder/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminKey = "admin-key-for-tests"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router http.Handler
	store  *storage.Store
	hub    *realtime.Hub
	cfg    config.Config
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop().Sugar()

	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "handler.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = catalog.Seed(ctx, store)
	require.NoError(t, err)

	cfg := config.Config{
		Auth:      config.AuthConfig{JWTSecret: "handler-test-secret-000", TokenTTL: time.Hour, Issuer: "test"},
		Admin:     config.AdminConfig{APIKey: testAdminKey},
		Cache:     config.CacheConfig{CatalogTTL: time.Minute},
		RateLimit: config.RateLimitConfig{AuthRPS: 1000, AuthBurst: 1000},
		Shop:      config.ShopConfig{Currency: "USD", FreeShippingCents: 10000, ShippingCents: 599, TaxBPS: 1000},
		Assets:    config.AssetsConfig{ModelsDir: t.TempDir()},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	mem := cache.NewMemory(time.Minute)
	hub := realtime.NewHub(log)
	h := New(Deps{
		Store:   store,
		Shop:    shop.NewService(store, hub, cfg.Shop, log),
		Tokens:  auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer),
		Revoked: auth.NewRevocations(mem),
		Cache:   mem,
		Hub:     hub,
		Config:  cfg,
		Log:     log,
	})
	return &testEnv{router: NewRouter(h), store: store, hub: hub, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers email and returns the auth response.
func (e *testEnv) signup(t *testing.T, email string) AuthResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/signup", "", SignupRequest{Email: email, Password: "password123", FullName: "Test User"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[AuthResponse](t, w)
}

var testAddress = models.Address{
	Name:       "Ada Lovelace",
	Line1:      "1 Orbit Way",
	City:       "Houston",
	PostalCode: "77058",
	Country:    "US",
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	res := env.signup(t, "Astro@Example.com")
	require.Equal(t, "astro@example.com", res.User.Email)
	require.NotEmpty(t, res.Token)

	w := env.do(t, http.MethodPost, "/auth/signup", "", SignupRequest{Email: "astro@example.com", Password: "password123"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/auth/signup", "", SignupRequest{Email: "not-an-email", Password: "password123"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/auth/signup", "", SignupRequest{Email: "short@example.com", Password: "1234"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "astro@example.com", Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ASTRO@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[AuthResponse](t, w).Token

	w = env.do(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[SessionResponse](t, w)
	require.Equal(t, res.User.ID, session.User.ID)
	require.Equal(t, "Test User", session.Profile.FullName)
	require.False(t, session.ExpiresAt.IsZero())

	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/session", "", nil).Code)

	w = env.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// the signup token is a different session and still works
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/session", res.Token, nil).Code)
}

func TestAuthRateLimitUsesSocketPeer(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{AuthRPS: 0.001, AuthBurst: 1}
	})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(mustJSON(t, LoginRequest{Email: "nobody@example.com", Password: "password123"})))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.RemoteAddr = "203.0.113.7:5000"
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	require.Equal(t, []int{
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	a := env.signup(t, "a@example.com")
	b := env.signup(t, "b@example.com")

	w := env.do(t, http.MethodGet, "/api/profile", a.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.ThemeCosmic, decode[models.Profile](t, w).Settings.Theme)

	w = env.do(t, http.MethodPatch, "/api/profile", a.Token, map[string]any{
		"username": "stargazer",
		"settings": map[string]any{"theme": "dark"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[models.Profile](t, w)
	require.Equal(t, "stargazer", *p.Username)
	require.Equal(t, models.ThemeDark, p.Settings.Theme)
	require.Equal(t, models.UnitsMetric, p.Settings.Units)
	require.Equal(t, "Test User", p.FullName)

	w = env.do(t, http.MethodPatch, "/api/profile", b.Token, map[string]any{"username": "stargazer"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, "/api/profile", a.Token, map[string]any{"username": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Nil(t, decode[models.Profile](t, w).Username)

	w = env.do(t, http.MethodPatch, "/api/profile", b.Token, map[string]any{"username": "stargazer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, name := range []string{"ab", "star gazer", strings.Repeat("x", 31)} {
		w = env.do(t, http.MethodPatch, "/api/profile", a.Token, map[string]any{"username": name})
		require.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	w = env.do(t, http.MethodPatch, "/api/profile", b.Token, map[string]any{"settings": map[string]any{"theme": "neon"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductsCacheAndAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/products?category=top", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "MISS", w.Header().Get(headerCache))
	list := decode[ProductListResponse](t, w)
	require.NotZero(t, list.Count)
	for _, p := range list.Products {
		require.Equal(t, models.CategoryTop, p.Category)
	}

	w = env.do(t, http.MethodGet, "/api/products?category=top", "", nil)
	require.Equal(t, "HIT", w.Header().Get(headerCache))

	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/products?category=hats", "", nil).Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/products/missing", "", nil).Code)

	body := CreateProductRequest{
		ID: "meteor-vest",
		ProductInput: models.ProductInput{
			Name:       "Meteor Vest",
			Category:   models.CategoryTop,
			PriceCents: 3900,
			ModelURL:   "/assets/models/meteor-vest.glb",
			Sizes:      []string{"M"},
			Stock:      3,
		},
	}
	require.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/admin/products", "", body).Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(mustJSON(t, body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Key", testAdminKey)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// the write invalidated the cached list
	w = env.do(t, http.MethodGet, "/api/products?category=top", "", nil)
	require.Equal(t, "MISS", w.Header().Get(headerCache))
	require.Equal(t, list.Count+1, decode[ProductListResponse](t, w).Count)

	req = httptest.NewRequest(http.MethodDelete, "/admin/products/meteor-vest", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/products/meteor-vest", "", nil).Code)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestOutfitsAndGallery(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "owner@example.com")
	fan := env.signup(t, "fan@example.com")

	in := models.OutfitInput{
		Name: "Launch Day",
		Items: []models.OutfitItem{
			{Slot: models.CategoryTop, ProductID: "orbit-tee", Color: "black", Size: "M"},
			{Slot: models.CategoryShoes, ProductID: "lunar-runners", Size: "42"},
		},
		IsPublic: true,
	}
	w := env.do(t, http.MethodPost, "/api/outfits", owner.Token, in)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	public := decode[models.SavedOutfit](t, w)

	in.Name, in.IsPublic = "Secret Look", false
	w = env.do(t, http.MethodPost, "/api/outfits", owner.Token, in)
	require.Equal(t, http.StatusCreated, w.Code)
	private := decode[models.SavedOutfit](t, w)

	bad := in
	bad.Items = []models.OutfitItem{{Slot: models.CategoryShoes, ProductID: "orbit-tee"}}
	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/outfits", owner.Token, bad).Code)

	w = env.do(t, http.MethodGet, "/api/outfits", owner.Token, nil)
	require.Len(t, decode[OutfitListResponse](t, w).Outfits, 2)

	w = env.do(t, http.MethodGet, "/api/gallery", "", nil)
	gallery := decode[OutfitListResponse](t, w).Outfits
	require.Len(t, gallery, 1)
	require.Equal(t, public.ID, gallery[0].ID)

	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/gallery?sort=oldest", "", nil).Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/gallery/"+private.ID, "", nil).Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/outfits/"+private.ID, fan.Token, nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/outfits/"+private.ID, owner.Token, nil).Code)

	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodPost, "/api/gallery/"+public.ID+"/like", fan.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, decode[LikeResponse](t, w).Likes)
	}
	w = env.do(t, http.MethodDelete, "/api/gallery/"+public.ID+"/like", fan.Token, nil)
	require.Equal(t, 0, decode[LikeResponse](t, w).Likes)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/gallery/"+private.ID+"/like", fan.Token, nil).Code)

	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/outfits/"+public.ID, fan.Token, nil).Code)
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/outfits/"+public.ID, owner.Token, nil).Code)
}

func TestCartCheckoutAndCancel(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "shopper@example.com")

	require.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/checkout/quote", user.Token, nil).Code)

	w := env.do(t, http.MethodPost, "/api/cart/items", user.Token,
		models.CartItemInput{ProductID: "nebula-hoodie", Size: "M", Color: "midnight", Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart := decode[models.Cart](t, w)
	require.Equal(t, 2, cart.ItemCount)
	require.Equal(t, int64(11800), cart.SubtotalCents)

	w = env.do(t, http.MethodPost, "/api/cart/items", user.Token,
		models.CartItemInput{ProductID: "nebula-hoodie", Size: "XXL", Color: "midnight", Quantity: 1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/cart/items", user.Token,
		models.CartItemInput{ProductID: "orbit-tee", Size: "S", Color: "white", Quantity: 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, "/api/cart/items/orbit-tee?size=S&color=white", user.Token, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[models.Cart](t, w).Items, 1)

	w = env.do(t, http.MethodPost, "/api/checkout/quote", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[QuoteResponse](t, w)
	require.Equal(t, models.Totals{Currency: "USD", SubtotalCents: 11800, ShippingCents: 0, TaxCents: 1180, TotalCents: 12980}, quote.Totals)

	w = env.do(t, http.MethodPost, "/api/checkout", user.Token, map[string]any{"shipping_address": map[string]string{"name": "x"}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	sub := env.hub.Subscribe(user.User.ID, models.TableOrders, models.TableCart)
	defer sub.Close()

	w = env.do(t, http.MethodPost, "/api/checkout", user.Token, models.CheckoutInput{ShippingAddress: testAddress})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.Order](t, w)
	require.Equal(t, models.OrderStatusConfirmed, order.Status)
	require.Equal(t, int64(12980), order.TotalCents)
	require.Equal(t, "shopper@example.com", order.Email)

	ev := <-sub.C()
	require.Equal(t, models.TableOrders, ev.Table)
	require.Equal(t, models.EventInsert, ev.Type)
	ev = <-sub.C()
	require.Equal(t, models.TableCart, ev.Table)

	w = env.do(t, http.MethodGet, "/api/cart", user.Token, nil)
	require.Empty(t, decode[models.Cart](t, w).Items)

	w = env.do(t, http.MethodGet, "/api/products/nebula-hoodie", "", nil)
	require.Equal(t, 38, decode[models.Product](t, w).Stock)

	w = env.do(t, http.MethodGet, "/api/orders", user.Token, nil)
	require.Len(t, decode[OrderListResponse](t, w).Orders, 1)

	w = env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.OrderStatusCancelled, decode[models.Order](t, w).Status)

	require.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", user.Token, nil).Code)

	w = env.do(t, http.MethodGet, "/api/products/nebula-hoodie", "", nil)
	require.Equal(t, 40, decode[models.Product](t, w).Stock)

	other := env.signup(t, "other@example.com")
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/orders/"+order.ID, other.Token, nil).Code)
}

func TestMergeCartAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "guest@example.com")

	env.do(t, http.MethodPost, "/api/cart/items", user.Token,
		models.CartItemInput{ProductID: "orbit-tee", Size: "M", Color: "black", Quantity: 8})

	w := env.do(t, http.MethodPost, "/api/cart/merge", user.Token, models.CartMergeInput{Items: []models.CartItemInput{
		{ProductID: "orbit-tee", Size: "M", Color: "black", Quantity: 5},
		{ProductID: "ghost-item", Quantity: 1},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	merged := decode[MergeCartResponse](t, w)
	require.Equal(t, models.MaxItemQuantity, merged.Cart.ItemCount)
	require.Len(t, merged.Skipped, 1)
	require.Equal(t, "ghost-item", merged.Skipped[0].ProductID)

	w = env.do(t, http.MethodGet, "/api/dashboard", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[DashboardResponse](t, w)
	require.Equal(t, models.MaxItemQuantity, dash.Stats.CartItems)
	require.Empty(t, dash.RecentOrders)
	require.Equal(t, user.User.ID, dash.Profile.UserID)

	w = env.do(t, http.MethodDelete, "/api/cart", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, decode[models.Cart](t, w).ItemCount)
}

func TestDashboardFeed(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "live@example.com")

	srv := httptest.NewServer(env.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard?token=" + user.Token

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/dashboard", nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, frameHello, hello.Type)
	require.Equal(t, user.User.ID, hello.UserID)

	w := env.do(t, http.MethodPatch, "/api/profile", user.Token, map[string]any{"bio": "orbiting"})
	require.Equal(t, http.StatusOK, w.Code)

	var change Frame
	require.NoError(t, conn.ReadJSON(&change))
	require.Equal(t, frameChange, change.Type)
	require.Equal(t, models.TableProfiles, change.Event.Table)
	require.Equal(t, models.EventUpdate, change.Event.Type)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return env.hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// dialFeed opens the dashboard feed and consumes the hello frame.
func dialFeed(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/dashboard?"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, frameHello, hello.Type)
	return conn
}

// readChange reads the next change frame and decodes its record.
func readChange(t *testing.T, conn *websocket.Conn) (models.ChangeEvent, map[string]any) {
	t.Helper()
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	require.Equal(t, frameChange, f.Type)
	require.NotNil(t, f.Event)
	record, _ := f.Event.Record.(map[string]any)
	return *f.Event, record
}

func TestDashboardFeedRejects(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "reject@example.com")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing token", query: "tables=orders", want: http.StatusUnauthorized},
		{name: "bad token", query: "token=not-a-jwt", want: http.StatusUnauthorized},
		{name: "unknown table", query: "token=" + user.Token + "&tables=users", want: http.StatusBadRequest},
		{name: "one unknown among known", query: "token=" + user.Token + "&tables=orders&tables=secrets", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/dashboard?"+tt.query, nil)
			if conn != nil {
				_ = conn.Close()
			}
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			require.Equal(t, tt.want, resp.StatusCode)
		})
	}
	require.Zero(t, env.hub.Subscribers())
}

func TestDashboardFeedTableFilter(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "filter@example.com")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialFeed(t, srv, "token="+user.Token+"&tables="+models.TableOutfits)

	w := env.do(t, http.MethodPatch, "/api/profile", user.Token, map[string]any{"bio": "filtered out"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/cart/items", user.Token, models.CartItemInput{ProductID: "orbit-tee", Size: "M", Color: "black", Quantity: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/outfits", user.Token, models.OutfitInput{
		Name:  "Filtered",
		Items: []models.OutfitItem{{Slot: models.CategoryTop, ProductID: "orbit-tee", Color: "black", Size: "M"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.SavedOutfit](t, w)

	// profile and cart events were dropped, so the outfit insert comes first
	ev, record := readChange(t, conn)
	require.Equal(t, models.TableOutfits, ev.Table)
	require.Equal(t, models.EventInsert, ev.Type)
	require.Equal(t, created.ID, record["id"])
}

func TestDashboardFeedSessionExpired(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "expiring@example.com")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	short := auth.NewManager(env.cfg.Auth.JWTSecret, 3*time.Second, env.cfg.Auth.Issuer)
	token, expiresAt, err := short.GenerateToken(user.User.ID, user.User.Email)
	require.NoError(t, err)

	conn := dialFeed(t, srv, "token="+token)

	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	require.Equal(t, frameExpired, f.Type)
	require.False(t, time.Now().Before(expiresAt.Add(-time.Second)))

	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	require.Eventually(t, func() bool { return env.hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestDashboardFeedPublicOutfits(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "designer@example.com")
	viewer := env.signup(t, "watcher@example.com")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialFeed(t, srv, "token="+viewer.Token+"&tables="+models.TableOutfits)

	create := func(name string, public bool) models.SavedOutfit {
		w := env.do(t, http.MethodPost, "/api/outfits", owner.Token, models.OutfitInput{
			Name:     name,
			Items:    []models.OutfitItem{{Slot: models.CategoryTop, ProductID: "orbit-tee", Color: "black", Size: "M"}},
			IsPublic: public,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decode[models.SavedOutfit](t, w)
	}

	shown := create("Shown", true)
	hidden := create("Hidden", false)

	unpublish := models.OutfitInput{
		Name:  "Shown",
		Items: []models.OutfitItem{{Slot: models.CategoryTop, ProductID: "orbit-tee", Color: "black", Size: "M"}},
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/outfits/"+shown.ID, owner.Token, unpublish).Code)
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/outfits/"+hidden.ID, owner.Token, nil).Code)

	gone := create("Gone", true)
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/outfits/"+gone.ID, owner.Token, nil).Code)

	tests := []struct {
		typ      string
		id       string
		isPublic bool
	}{
		{typ: models.EventInsert, id: shown.ID, isPublic: true},
		{typ: models.EventUpdate, id: shown.ID, isPublic: false},
		{typ: models.EventInsert, id: gone.ID, isPublic: true},
		{typ: models.EventDelete, id: gone.ID, isPublic: true},
	}
	// 비공개 아웃핏의 생성과 삭제는 다른 사용자에게 보이지 않는다
	for _, tt := range tests {
		ev, record := readChange(t, conn)
		require.Equal(t, tt.typ, ev.Type)
		require.Empty(t, ev.UserID)
		require.Equal(t, tt.id, record["id"])
		require.Equal(t, tt.isPublic, record["is_public"])
	}
}

func TestServeModelAsset(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.cfg.Assets.ModelsDir, "orbit-tee.glb"), []byte("glTF"), 0o644))

	w := env.do(t, http.MethodGet, "/assets/models/orbit-tee.glb", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "model/gltf-binary", w.Header().Get("Content-Type"))
	require.Equal(t, "glTF", w.Body.String())

	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/assets/models/missing.glb", "", nil).Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/assets/models/orbit-tee.exe", "", nil).Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/assets/models/..%2F..%2Fhandler.db", "", nil).Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}
