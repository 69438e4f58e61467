package handler

import (
	"net/http"

	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/gin-gonic/gin"
)

const dashboardRecent = 5

type DashboardResponse struct {
	Profile       *models.Profile      `json:"profile"`
	Stats         models.UserStats     `json:"stats"`
	RecentOrders  []models.Order       `json:"recent_orders"`
	RecentOutfits []models.SavedOutfit `json:"recent_outfits"`
}

// Dashboard godoc
// @Summary      대시보드
// @Description  프로필, 통계, 최근 주문과 최근 아웃핏을 한 번에 반환합니다.
// @Description  이후 변경 사항은 /ws/dashboard 로 실시간 전달됩니다.
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.DashboardResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(middleware.KeyUserID)

	profile, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		h.fail(c, "dashboard profile", err)
		return
	}
	stats, err := h.store.UserStats(ctx, userID)
	if err != nil {
		h.fail(c, "dashboard stats", err)
		return
	}
	orders, err := h.store.ListOrders(ctx, userID, dashboardRecent)
	if err != nil {
		h.fail(c, "dashboard orders", err)
		return
	}
	outfits, err := h.store.ListOutfitsByUser(ctx, userID, dashboardRecent)
	if err != nil {
		h.fail(c, "dashboard outfits", err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Profile:       profile,
		Stats:         stats,
		RecentOrders:  orders,
		RecentOutfits: outfits,
	})
}
