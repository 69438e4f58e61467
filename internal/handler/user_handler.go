/**
* Name: 			user_handler.go
* Description: 		프로필 조회/수정, 3D 모델 에셋 제공
 */
package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/models"

	"github.com/gin-gonic/gin"
)

// 뷰어가 요청할 수 있는 에셋 확장자
var assetTypes = map[string]string{
	".glb":  "model/gltf-binary",
	".gltf": "model/gltf+json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".webp": "image/webp",
}

// GetProfile godoc
// @Summary      프로필 조회 (Profile)
// @Description  인증된 사용자의 프로필과 설정을 조회합니다.
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.Profile
// @Failure      401 {object} handler.ErrorResponse "인증 토큰 누락 또는 만료"
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.store.GetProfile(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		h.fail(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary      프로필 수정
// @Description  전달된 필드만 병합합니다. settings 역시 필드 단위로 병합됩니다.
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.ProfileUpdate true "수정할 필드"
// @Success      200 {object} models.Profile
// @Failure      400 {object} handler.ErrorResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse "이미 사용 중인 username"
// @Router       /api/profile [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	userID := c.GetString(middleware.KeyUserID)
	profile, changed, err := h.store.UpdateProfile(c.Request.Context(), userID, upd)
	if err != nil {
		h.fail(c, "update profile", err)
		return
	}
	if changed {
		h.hub.Emit(models.TableProfiles, models.EventUpdate, userID, profile)
	}
	c.JSON(http.StatusOK, profile)
}

// ServeModelAsset godoc
// @Summary      3D 모델 / 썸네일 에셋
// @Description  상품의 glTF 모델(.glb/.gltf)과 썸네일 이미지를 반환합니다.
// @Tags         Assets
// @Produce      octet-stream
// @Param        filename path     string true "에셋 파일명 (예: nebula-hoodie.glb)"
// @Success      200      {file}   file   "에셋 바이너리 데이터"
// @Failure      404      {object} handler.ErrorResponse "해당 파일을 찾을 수 없음"
// @Router       /assets/models/{filename} [get]
func (h *Handler) ServeModelAsset(c *gin.Context) {
	// 경로 조작 방지
	cleanFilename := filepath.Base(c.Param("filename"))
	contentType, ok := assetTypes[strings.ToLower(filepath.Ext(cleanFilename))]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Asset not found"})
		return
	}

	filePath := filepath.Join(h.cfg.Assets.ModelsDir, cleanFilename)
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Asset not found"})
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(filePath)
}
