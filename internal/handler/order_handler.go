package handler

import (
	"net/http"

	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/gin-gonic/gin"
)

type QuoteResponse struct {
	Cart   models.Cart   `json:"cart"`
	Totals models.Totals `json:"totals"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
}

// Quote godoc
// @Summary      결제 금액 미리보기
// @Description  장바구니의 소계, 배송비, 세금, 합계를 계산합니다. 주문은 생성되지 않습니다.
// @Tags         Checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.QuoteResponse
// @Failure      400 {object} handler.ErrorResponse "빈 장바구니"
// @Router       /api/checkout/quote [post]
func (h *Handler) Quote(c *gin.Context) {
	cart, totals, err := h.shop.Quote(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.fail(c, "quote", err)
		return
	}
	c.JSON(http.StatusOK, QuoteResponse{Cart: cart, Totals: totals})
}

// Checkout godoc
// @Summary      주문하기
// @Description  장바구니를 현재 가격으로 주문으로 전환하고 재고를 차감한 뒤 장바구니를 비웁니다.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.CheckoutInput true "배송지"
// @Success      201 {object} models.Order
// @Failure      400 {object} handler.ErrorResponse "빈 장바구니 또는 잘못된 주소"
// @Failure      409 {object} handler.ErrorResponse "재고 부족"
// @Router       /api/checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	var in models.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	order, err := h.shop.Checkout(ctx, c.GetString(middleware.KeyUserID), c.GetString(middleware.KeyEmail), in.ShippingAddress)
	if err != nil {
		h.fail(c, "checkout", err)
		return
	}
	// 재고가 바뀌었으므로 캐시된 카탈로그를 버린다
	h.invalidateCatalog(ctx)
	c.JSON(http.StatusCreated, order)
}

// ListOrders godoc
// @Summary      주문 내역
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "기본 20, 최대 100"
// @Success      200 {object} handler.OrderListResponse
// @Router       /api/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.store.ListOrders(c.Request.Context(), c.GetString(middleware.KeyUserID), queryInt(c, "limit"))
	if err != nil {
		h.fail(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, OrderListResponse{Orders: orders})
}

// GetOrder godoc
// @Summary      주문 상세
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "주문 ID"
// @Success      200 {object} models.Order
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.store.GetOrder(c.Request.Context(), c.Param("id"), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.fail(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder godoc
// @Summary      주문 취소
// @Description  confirmed 상태의 주문만 취소할 수 있으며 재고가 복구됩니다.
// @Tags         Orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "주문 ID"
// @Success      200 {object} models.Order
// @Failure      404 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse "취소 불가 상태"
// @Router       /api/orders/{id}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.shop.Cancel(ctx, c.Param("id"), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.fail(c, "cancel order", err)
		return
	}
	h.invalidateCatalog(ctx)
	c.JSON(http.StatusOK, order)
}
