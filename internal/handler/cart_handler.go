package handler

import (
	"net/http"

	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/gin-gonic/gin"
)

type QuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=10" example:"2"`
}

type MergeCartResponse struct {
	Cart    models.Cart            `json:"cart"`
	Skipped []models.CartItemInput `json:"skipped"`
}

// cartLine reads the line identity from the path and the size/color query.
func cartLine(c *gin.Context) models.CartItemInput {
	return models.CartItemInput{
		ProductID: c.Param("productId"),
		Size:      c.Query("size"),
		Color:     c.Query("color"),
	}
}

// GetCart godoc
// @Summary      장바구니 조회
// @Description  현재 카탈로그 가격으로 계산된 장바구니를 반환합니다.
// @Tags         Cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.Cart
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/cart [get]
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.store.GetCart(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.fail(c, "get cart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddCartItem godoc
// @Summary      장바구니 담기
// @Description  같은 상품/사이즈/색상 라인이 있으면 수량을 더합니다. 한 라인은 최대 10개입니다.
// @Tags         Cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.CartItemInput true "담을 상품"
// @Success      200 {object} models.Cart
// @Failure      400 {object} handler.ErrorResponse "옵션 오류"
// @Failure      404 {object} handler.ErrorResponse "상품 없음"
// @Failure      409 {object} handler.ErrorResponse "재고 부족"
// @Router       /api/cart/items [post]
func (h *Handler) AddCartItem(c *gin.Context) {
	var in models.CartItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	userID := c.GetString(middleware.KeyUserID)
	cart, err := h.store.AddCartItem(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, "add cart item", err)
		return
	}
	h.hub.Emit(models.TableCart, models.EventInsert, userID, cart)
	c.JSON(http.StatusOK, cart)
}

// UpdateCartItem godoc
// @Summary      장바구니 수량 변경
// @Description  수량 0은 라인을 삭제합니다.
// @Tags         Cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        productId path  string true  "상품 ID"
// @Param        size      query string false "사이즈"
// @Param        color     query string false "색상"
// @Param        request   body  handler.QuantityRequest true "새 수량"
// @Success      200 {object} models.Cart
// @Failure      400 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse
// @Router       /api/cart/items/{productId} [patch]
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := cartLine(c)
	in.Quantity = *req.Quantity

	userID := c.GetString(middleware.KeyUserID)
	cart, err := h.store.SetCartItemQuantity(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, "update cart item", err)
		return
	}
	typ := models.EventUpdate
	if in.Quantity == 0 {
		typ = models.EventDelete
	}
	h.hub.Emit(models.TableCart, typ, userID, cart)
	c.JSON(http.StatusOK, cart)
}

// RemoveCartItem godoc
// @Summary      장바구니 라인 삭제
// @Tags         Cart
// @Produce      json
// @Security     BearerAuth
// @Param        productId path  string true  "상품 ID"
// @Param        size      query string false "사이즈"
// @Param        color     query string false "색상"
// @Success      200 {object} models.Cart
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/cart/items/{productId} [delete]
func (h *Handler) RemoveCartItem(c *gin.Context) {
	in := cartLine(c)
	userID := c.GetString(middleware.KeyUserID)
	cart, err := h.store.RemoveCartItem(c.Request.Context(), userID, in.ProductID, in.Size, in.Color)
	if err != nil {
		h.fail(c, "remove cart item", err)
		return
	}
	h.hub.Emit(models.TableCart, models.EventDelete, userID, cart)
	c.JSON(http.StatusOK, cart)
}

// ClearCart godoc
// @Summary      장바구니 비우기
// @Tags         Cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.Cart
// @Router       /api/cart [delete]
func (h *Handler) ClearCart(c *gin.Context) {
	userID := c.GetString(middleware.KeyUserID)
	if err := h.store.ClearCart(c.Request.Context(), userID); err != nil {
		h.fail(c, "clear cart", err)
		return
	}
	cart := models.NewCart(userID, nil)
	h.hub.Emit(models.TableCart, models.EventDelete, userID, cart)
	c.JSON(http.StatusOK, cart)
}

// MergeCart godoc
// @Summary      게스트 장바구니 병합
// @Description  로그인 전 브라우저에 보관한 장바구니를 합칩니다. 수량은 더해지고 10개로 제한됩니다.
// @Description  존재하지 않는 상품, 잘못된 옵션, 재고 초과 라인은 skipped로 반환됩니다.
// @Tags         Cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.CartMergeInput true "게스트 장바구니"
// @Success      200 {object} handler.MergeCartResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/cart/merge [post]
func (h *Handler) MergeCart(c *gin.Context) {
	var in models.CartMergeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	userID := c.GetString(middleware.KeyUserID)
	cart, skipped, err := h.store.MergeCart(c.Request.Context(), userID, in.Items)
	if err != nil {
		h.fail(c, "merge cart", err)
		return
	}
	if skipped == nil {
		skipped = []models.CartItemInput{}
	}
	if len(skipped) < len(in.Items) {
		h.hub.Emit(models.TableCart, models.EventUpdate, userID, cart)
	}
	h.log.Infow("guest cart merged", "user_id", userID, "lines", len(in.Items), "skipped", len(skipped))
	c.JSON(http.StatusOK, MergeCartResponse{Cart: cart, Skipped: skipped})
}
