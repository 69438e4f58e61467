/**
* Name: 			auth_handler.go
* Description: 		회원가입, 로그인, 세션 조회, 로그아웃
 */
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/auth"
	"CosmicOutfits_OutfitBuilder/internal/middleware"
	"CosmicOutfits_OutfitBuilder/internal/models"
	"CosmicOutfits_OutfitBuilder/internal/storage"

	"github.com/gin-gonic/gin"
)

// /auth/signup 요청 바디
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254" example:"astro@example.com"`
	Password string `json:"password" binding:"required,min=8,max=72" example:"password123"`
	FullName string `json:"full_name" binding:"max=100" example:"Ada Lovelace"`
}

// /auth/login 요청 바디
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"astro@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time    `json:"expires_at"`
}

type SessionResponse struct {
	User      *models.User    `json:"user"`
	Profile   *models.Profile `json:"profile"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Signup godoc
// @Summary      회원가입 (Signup)
// @Description  새로운 사용자 계정과 빈 프로필을 생성하고 JWT 토큰을 발급합니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.SignupRequest true "회원가입 요청 정보"
// @Success      201 {object} handler.AuthResponse
// @Failure      400 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse "이미 등록된 이메일"
// @Failure      429 {object} handler.ErrorResponse
// @Router       /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	// " "으로 입력되는 케이스 방지
	if strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Password cannot be blank"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(c, "hash password", err)
		return
	}
	user, err := h.store.CreateUser(c.Request.Context(), req.Email, hash, strings.TrimSpace(req.FullName))
	if err != nil {
		h.fail(c, "create user", err)
		return
	}

	token, exp, err := h.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.fail(c, "generate token", err)
		return
	}
	h.log.Infow("user signed up", "user_id", user.ID)
	c.JSON(http.StatusCreated, AuthResponse{User: user, Token: token, ExpiresAt: exp})
}

// Login godoc
// @Summary      로그인 (Login)
// @Description  이메일과 비밀번호로 로그인하고 JWT 토큰을 발급받습니다.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handler.LoginRequest true "로그인 요청 정보"
// @Success      200 {object} handler.AuthResponse
// @Failure      400 {object} handler.ErrorResponse "잘못된 요청"
// @Failure      401 {object} handler.ErrorResponse "인증 실패 (자격 증명 오류)"
// @Failure      429 {object} handler.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		h.fail(c, "get user", err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
		return
	}

	token, exp, err := h.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.fail(c, "generate token", err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{User: user, Token: token, ExpiresAt: exp})
}

// Session godoc
// @Summary      현재 세션 조회
// @Description  토큰의 사용자, 프로필, 만료 시각을 반환합니다.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.SessionResponse
// @Failure      401 {object} handler.ErrorResponse "인증 토큰 누락 또는 만료"
// @Router       /api/session [get]
func (h *Handler) Session(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(middleware.KeyUserID)

	user, err := h.store.GetUserByID(ctx, userID)
	if err != nil {
		// 토큰은 유효하지만 계정이 삭제된 경우
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Account no longer exists"})
			return
		}
		h.fail(c, "get user", err)
		return
	}
	profile, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		h.fail(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{User: user, Profile: profile, ExpiresAt: c.GetTime(middleware.KeyTokenExpiry)})
}

// Logout godoc
// @Summary      로그아웃
// @Description  현재 토큰을 만료 시각까지 폐기합니다.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.MessageResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	tokenID := c.GetString(middleware.KeyTokenID)
	if err := h.revoked.Revoke(c.Request.Context(), tokenID, c.GetTime(middleware.KeyTokenExpiry)); err != nil {
		h.fail(c, "revoke token", err)
		return
	}
	h.log.Infow("user signed out", "user_id", c.GetString(middleware.KeyUserID))
	c.JSON(http.StatusOK, MessageResponse{Message: "Signed out"})
}
