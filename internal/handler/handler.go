/**
* Name: 			handler.go
* Description: 		HTTP 핸들러 공통 의존성과 에러 응답
 */
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/auth"
	"CosmicOutfits_OutfitBuilder/internal/cache"
	"CosmicOutfits_OutfitBuilder/internal/config"
	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/realtime"
	"CosmicOutfits_OutfitBuilder/internal/shop"
	"CosmicOutfits_OutfitBuilder/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error" example:"에러 원인 및 설명"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Signed out"`
}

// Deps are the collaborators shared by every handler.
type Deps struct {
	Store   *storage.Store
	Shop    *shop.Service
	Tokens  *auth.Manager
	Revoked *auth.Revocations
	Cache   cache.Cache
	Hub     *realtime.Hub
	Config  config.Config
	Log     *zap.SugaredLogger
}

type Handler struct {
	store   *storage.Store
	shop    *shop.Service
	tokens  *auth.Manager
	revoked *auth.Revocations
	cache   cache.Cache
	hub     *realtime.Hub
	cfg     config.Config
	log     *zap.SugaredLogger
}

func New(d Deps) *Handler {
	return &Handler{
		store:   d.Store,
		shop:    d.Shop,
		tokens:  d.Tokens,
		revoked: d.Revoked,
		cache:   d.Cache,
		hub:     d.Hub,
		cfg:     d.Config,
		log:     d.Log.Named("handler"),
	}
}

// statusFor maps domain errors to HTTP status codes. Zero means unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrEmailExists),
		errors.Is(err, storage.ErrUsernameTaken),
		errors.Is(err, storage.ErrProductExists),
		errors.Is(err, storage.ErrOutOfStock),
		errors.Is(err, storage.ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, storage.ErrEmptyCart),
		errors.Is(err, storage.ErrInvalidOption),
		errors.Is(err, shop.ErrInvalidAddress):
		return http.StatusBadRequest
	}
	return 0
}

// fail writes the error response for err. Unexpected errors are logged and hidden.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	if status := statusFor(err); status != 0 {
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	if errors.Is(err, context.Canceled) {
		c.Status(499)
		return
	}
	h.log.Errorw(op+" failed", "error", err, "path", c.FullPath(), "request_id", c.GetString(middleware.KeyRequestID))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request: " + err.Error()})
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// Healthz godoc
// @Summary      상태 확인
// @Description  데이터베이스 연결을 포함한 서버 상태를 반환합니다.
// @Tags         System
// @Produce      json
// @Success      200 {object} object{status=string}
// @Failure      503 {object} handler.ErrorResponse
// @Router       /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "subscribers": h.hub.Subscribers()})
}
