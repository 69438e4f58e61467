package handler

import (
	"net/http"

	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/gin-gonic/gin"
)

type OutfitListResponse struct {
	Outfits []models.SavedOutfit `json:"outfits"`
}

type LikeResponse struct {
	OutfitID string `json:"outfit_id"`
	Likes    int    `json:"likes"`
}

// emitOutfit announces an outfit change. An outfit that is public before or
// after the change reaches every subscriber so open gallery pages refresh.
func (h *Handler) emitOutfit(typ string, o *models.SavedOutfit, wasPublic bool) {
	audience := o.UserID
	if o.IsPublic || wasPublic {
		audience = ""
	}
	h.hub.Emit(models.TableOutfits, typ, audience, o)
}

// ListOutfits godoc
// @Summary      내 아웃핏 목록
// @Tags         Outfits
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "최대 개수"
// @Success      200 {object} handler.OutfitListResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/outfits [get]
func (h *Handler) ListOutfits(c *gin.Context) {
	outfits, err := h.store.ListOutfitsByUser(c.Request.Context(), c.GetString(middleware.KeyUserID), queryInt(c, "limit"))
	if err != nil {
		h.fail(c, "list outfits", err)
		return
	}
	c.JSON(http.StatusOK, OutfitListResponse{Outfits: outfits})
}

// CreateOutfit godoc
// @Summary      아웃핏 저장
// @Description  슬롯별 상품 조합을 저장합니다. 각 상품은 슬롯과 같은 카테고리여야 합니다.
// @Tags         Outfits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.OutfitInput true "아웃핏 정보"
// @Success      201 {object} models.SavedOutfit
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/outfits [post]
func (h *Handler) CreateOutfit(c *gin.Context) {
	var in models.OutfitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.store.CreateOutfit(c.Request.Context(), c.GetString(middleware.KeyUserID), in)
	if err != nil {
		h.fail(c, "create outfit", err)
		return
	}
	h.emitOutfit(models.EventInsert, o, false)
	c.JSON(http.StatusCreated, o)
}

// GetOutfit godoc
// @Summary      아웃핏 조회
// @Description  본인 아웃핏 또는 공개 아웃핏을 조회합니다.
// @Tags         Outfits
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "아웃핏 ID"
// @Success      200 {object} models.SavedOutfit
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/outfits/{id} [get]
func (h *Handler) GetOutfit(c *gin.Context) {
	o, err := h.store.GetOutfit(c.Request.Context(), c.Param("id"), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.fail(c, "get outfit", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// UpdateOutfit godoc
// @Summary      아웃핏 수정
// @Tags         Outfits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "아웃핏 ID"
// @Param        request body models.OutfitInput true "아웃핏 정보"
// @Success      200 {object} models.SavedOutfit
// @Failure      400 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/outfits/{id} [put]
func (h *Handler) UpdateOutfit(c *gin.Context) {
	var in models.OutfitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	o, wasPublic, err := h.store.UpdateOutfit(c.Request.Context(), c.Param("id"), c.GetString(middleware.KeyUserID), in)
	if err != nil {
		h.fail(c, "update outfit", err)
		return
	}
	h.emitOutfit(models.EventUpdate, o, wasPublic)
	c.JSON(http.StatusOK, o)
}

// DeleteOutfit godoc
// @Summary      아웃핏 삭제
// @Tags         Outfits
// @Security     BearerAuth
// @Param        id path string true "아웃핏 ID"
// @Success      204
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/outfits/{id} [delete]
func (h *Handler) DeleteOutfit(c *gin.Context) {
	o, err := h.store.DeleteOutfit(c.Request.Context(), c.Param("id"), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.fail(c, "delete outfit", err)
		return
	}
	h.emitOutfit(models.EventDelete, o, false)
	c.Status(http.StatusNoContent)
}

// ListGallery godoc
// @Summary      갤러리
// @Description  공개된 아웃핏을 최신순 또는 인기순으로 조회합니다.
// @Tags         Gallery
// @Produce      json
// @Param        sort   query string false "newest (기본) 또는 popular"
// @Param        limit  query int    false "기본 20, 최대 100"
// @Param        offset query int    false "건너뛸 개수"
// @Success      200 {object} handler.OutfitListResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/gallery [get]
func (h *Handler) ListGallery(c *gin.Context) {
	sort := c.DefaultQuery("sort", models.GallerySortNewest)
	if sort != models.GallerySortNewest && sort != models.GallerySortPopular {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "sort must be newest or popular"})
		return
	}
	outfits, err := h.store.ListPublicOutfits(c.Request.Context(), sort, queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		h.fail(c, "list gallery", err)
		return
	}
	c.JSON(http.StatusOK, OutfitListResponse{Outfits: outfits})
}

// GetGalleryOutfit godoc
// @Summary      갤러리 아웃핏 상세
// @Tags         Gallery
// @Produce      json
// @Param        id path string true "아웃핏 ID"
// @Success      200 {object} models.SavedOutfit
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/gallery/{id} [get]
func (h *Handler) GetGalleryOutfit(c *gin.Context) {
	// 비로그인 조회이므로 공개 아웃핏만 보인다
	o, err := h.store.GetOutfit(c.Request.Context(), c.Param("id"), "")
	if err != nil {
		h.fail(c, "get gallery outfit", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// LikeOutfit godoc
// @Summary      좋아요
// @Description  같은 사용자의 중복 좋아요는 무시됩니다.
// @Tags         Gallery
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "아웃핏 ID"
// @Success      200 {object} handler.LikeResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/gallery/{id}/like [post]
func (h *Handler) LikeOutfit(c *gin.Context) {
	h.setLike(c, true)
}

// UnlikeOutfit godoc
// @Summary      좋아요 취소
// @Tags         Gallery
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "아웃핏 ID"
// @Success      200 {object} handler.LikeResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/gallery/{id}/like [delete]
func (h *Handler) UnlikeOutfit(c *gin.Context) {
	h.setLike(c, false)
}

func (h *Handler) setLike(c *gin.Context, like bool) {
	ctx := c.Request.Context()
	id := c.Param("id")
	userID := c.GetString(middleware.KeyUserID)

	var (
		likes int
		err   error
	)
	if like {
		likes, err = h.store.LikeOutfit(ctx, id, userID)
	} else {
		likes, err = h.store.UnlikeOutfit(ctx, id, userID)
	}
	if err != nil {
		h.fail(c, "set like", err)
		return
	}
	resp := LikeResponse{OutfitID: id, Likes: likes}
	h.hub.Emit(models.TableOutfits, models.EventUpdate, "", resp)
	c.JSON(http.StatusOK, resp)
}
