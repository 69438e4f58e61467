package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "CosmicOutfits_OutfitBuilder/docs"
	"CosmicOutfits_OutfitBuilder/internal/auth"
	"CosmicOutfits_OutfitBuilder/internal/cache"
	"CosmicOutfits_OutfitBuilder/internal/catalog"
	"CosmicOutfits_OutfitBuilder/internal/config"
	"CosmicOutfits_OutfitBuilder/internal/handler"
	"CosmicOutfits_OutfitBuilder/internal/logger"
	"CosmicOutfits_OutfitBuilder/internal/realtime"
	"CosmicOutfits_OutfitBuilder/internal/shop"
	"CosmicOutfits_OutfitBuilder/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title                       Cosmic Outfits API
// @version                     1.0
// @description                 3D 아웃핏 빌더 쇼핑몰 백엔드 API
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 "Bearer " 뒤에 JWT 토큰을 붙여 전달합니다.
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.SeedCatalog {
		n, err := catalog.Seed(ctx, store)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Infow("catalog seeded", "products", n)
		}
	}

	kv, err := newCache(cfg, log)
	if err != nil {
		return err
	}
	defer kv.Close()

	hub := realtime.NewHub(log)
	h := handler.New(handler.Deps{
		Store:   store,
		Shop:    shop.NewService(store, hub, cfg.Shop, log),
		Tokens:  auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer),
		Revoked: auth.NewRevocations(kv),
		Cache:   kv,
		Hub:     hub,
		Config:  *cfg,
		Log:     log,
	})

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           handler.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCache picks redis when an address is configured, the in-process cache otherwise.
func newCache(cfg *config.Config, log *zap.SugaredLogger) (cache.Cache, error) {
	if cfg.Redis.Addr == "" {
		log.Infow("using in-memory cache")
		return cache.NewMemory(10 * time.Minute), nil
	}
	rc, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	log.Infow("using redis cache", "addr", cfg.Redis.Addr)
	return rc, nil
}
