package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/cache"
	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	catalogGenKey    = "catalog:gen"
	catalogKeyPrefix = "catalog:"
	headerCache      = "X-Cache"
)

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
}

// CreateProductRequest is ProductInput plus an optional fixed id.
type CreateProductRequest struct {
	ID string `json:"id" binding:"omitempty,max=64" example:"nebula-hoodie"`
	models.ProductInput
}

// ListProducts godoc
// @Summary      상품 목록
// @Description  아웃핏 피커에 표시할 상품을 카테고리/검색어로 조회합니다.
// @Tags         Products
// @Produce      json
// @Param        category query string false "top, bottom, shoes, outerwear, accessory"
// @Param        q        query string false "이름/설명 검색어"
// @Param        limit    query int    false "기본 50, 최대 100"
// @Param        offset   query int    false "건너뛸 개수"
// @Success      200 {object} handler.ProductListResponse
// @Failure      400 {object} handler.ErrorResponse "알 수 없는 카테고리"
// @Router       /api/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	f := models.ProductFilter{
		Category: c.Query("category"),
		Query:    strings.TrimSpace(c.Query("q")),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	}
	if f.Category != "" && !models.IsCategory(f.Category) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown category: " + f.Category})
		return
	}

	ctx := c.Request.Context()
	key := h.catalogKey(ctx, fmt.Sprintf("list:%s:%s:%d:%d", f.Category, f.Query, f.Limit, f.Offset))
	h.cached(c, key, func() (any, error) {
		products, err := h.store.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		return ProductListResponse{Products: products, Count: len(products)}, nil
	})
}

// GetProduct godoc
// @Summary      상품 상세
// @Tags         Products
// @Produce      json
// @Param        id path string true "상품 ID"
// @Success      200 {object} models.Product
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	h.cached(c, h.catalogKey(ctx, "item:"+id), func() (any, error) {
		return h.store.GetProduct(ctx, id)
	})
}

// CreateProduct godoc
// @Summary      상품 등록 (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key header string true "관리자 키"
// @Param        request body handler.CreateProductRequest true "상품 정보"
// @Success      201 {object} models.Product
// @Failure      400 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse
// @Router       /admin/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := req.ProductInput
	p, err := h.store.CreateProduct(c.Request.Context(), models.Product{
		ID:           req.ID,
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		PriceCents:   in.PriceCents,
		Currency:     in.Currency,
		ModelURL:     in.ModelURL,
		ThumbnailURL: in.ThumbnailURL,
		Colors:       in.Colors,
		Sizes:        in.Sizes,
		Stock:        in.Stock,
	})
	if err != nil {
		h.fail(c, "create product", err)
		return
	}
	h.invalidateCatalog(c.Request.Context())
	h.hub.Emit(models.TableProducts, models.EventInsert, "", p)
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct godoc
// @Summary      상품 수정 (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Key header string true "관리자 키"
// @Param        id path string true "상품 ID"
// @Param        request body models.ProductInput true "상품 정보"
// @Success      200 {object} models.Product
// @Failure      400 {object} handler.ErrorResponse
// @Failure      403 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /admin/products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.store.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, "update product", err)
		return
	}
	h.invalidateCatalog(c.Request.Context())
	h.hub.Emit(models.TableProducts, models.EventUpdate, "", p)
	c.JSON(http.StatusOK, p)
}

// DeleteProduct godoc
// @Summary      상품 삭제 (Admin)
// @Description  장바구니의 해당 상품 라인도 함께 삭제됩니다.
// @Tags         Admin
// @Param        X-Admin-Key header string true "관리자 키"
// @Param        id path string true "상품 ID"
// @Success      204
// @Failure      403 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /admin/products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, "delete product", err)
		return
	}
	h.invalidateCatalog(c.Request.Context())
	h.hub.Emit(models.TableProducts, models.EventDelete, "", gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

// catalogKey namespaces key under the current catalog generation, so bumping
// the generation orphans every cached list and item at once.
func (h *Handler) catalogKey(ctx context.Context, key string) string {
	gen := "0"
	if b, err := h.cache.Get(ctx, catalogGenKey); err == nil {
		gen = string(b)
	}
	return catalogKeyPrefix + gen + ":" + key
}

func (h *Handler) invalidateCatalog(ctx context.Context) {
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	if err := h.cache.Set(ctx, catalogGenKey, []byte(gen), 0); err != nil {
		h.log.Warnw("catalog cache invalidation failed", "error", err)
	}
}

// cached serves key from the cache, or calls load and stores its JSON encoding.
// Cache failures degrade to uncached reads.
func (h *Handler) cached(c *gin.Context, key string, load func() (any, error)) {
	ctx := c.Request.Context()
	if b, err := h.cache.Get(ctx, key); err == nil {
		c.Header(headerCache, "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		h.log.Warnw("cache read failed", "key", key, "error", err)
	}

	v, err := load()
	if err != nil {
		h.fail(c, "load catalog", err)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		h.fail(c, "encode catalog", err)
		return
	}
	if err := h.cache.Set(ctx, key, b, h.cfg.Cache.CatalogTTL); err != nil {
		h.log.Warnw("cache write failed", "key", key, "error", err)
	}
	c.Header(headerCache, "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}
