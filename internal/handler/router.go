package handler

import (
	"time"

	"CosmicOutfits_OutfitBuilder/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	// 프록시를 명시하지 않으면 X-Forwarded-For 를 믿지 않는다
	if err := router.SetTrustedProxies(h.cfg.Server.TrustedProxies); err != nil {
		h.log.Warnw("invalid trusted proxies, trusting none", "proxies", h.cfg.Server.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), middleware.RequestLogger(h.log.Named("http")), middleware.Metrics())

	config := cors.DefaultConfig()
	if len(h.cfg.CORS.AllowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = h.cfg.CORS.AllowedOrigins
	}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "X-Admin-Key", "X-Request-ID")
	config.ExposeHeaders = []string{"X-Request-ID", headerCache}
	config.MaxAge = 12 * time.Hour
	router.Use(cors.New(config))

	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/assets/models/:filename", h.ServeModelAsset)

	requireAuth := middleware.Auth(h.tokens, h.revoked, h.log)

	authGroup := router.Group("/auth")
	{
		limited := authGroup.Group("", middleware.RateLimit(h.cfg.RateLimit.AuthRPS, h.cfg.RateLimit.AuthBurst))
		limited.POST("/signup", h.Signup)
		limited.POST("/login", h.Login)
		authGroup.POST("/logout", requireAuth, h.Logout)
	}

	public := router.Group("/api")
	{
		public.GET("/products", h.ListProducts)
		public.GET("/products/:id", h.GetProduct)
		public.GET("/gallery", h.ListGallery)
		public.GET("/gallery/:id", h.GetGalleryOutfit)
	}

	protected := router.Group("/api", requireAuth)
	{
		protected.GET("/session", h.Session)
		protected.GET("/profile", h.GetProfile)
		protected.PATCH("/profile", h.UpdateProfile)

		protected.GET("/outfits", h.ListOutfits)
		protected.POST("/outfits", h.CreateOutfit)
		protected.GET("/outfits/:id", h.GetOutfit)
		protected.PUT("/outfits/:id", h.UpdateOutfit)
		protected.DELETE("/outfits/:id", h.DeleteOutfit)
		protected.POST("/gallery/:id/like", h.LikeOutfit)
		protected.DELETE("/gallery/:id/like", h.UnlikeOutfit)

		protected.GET("/cart", h.GetCart)
		protected.DELETE("/cart", h.ClearCart)
		protected.POST("/cart/items", h.AddCartItem)
		protected.PATCH("/cart/items/:productId", h.UpdateCartItem)
		protected.DELETE("/cart/items/:productId", h.RemoveCartItem)
		protected.POST("/cart/merge", h.MergeCart)

		protected.POST("/checkout/quote", h.Quote)
		protected.POST("/checkout", h.Checkout)
		protected.GET("/orders", h.ListOrders)
		protected.GET("/orders/:id", h.GetOrder)
		protected.POST("/orders/:id/cancel", h.CancelOrder)

		protected.GET("/dashboard", h.Dashboard)
	}

	admin := router.Group("/admin", middleware.AdminKey(h.cfg.Admin.APIKey))
	{
		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
	}

	router.GET("/ws/dashboard", requireAuth, h.DashboardFeed)
	return router
}
