package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
	"github.com/linkfolio/linkfolio/pkg/helpers"
	"github.com/linkfolio/linkfolio/pkg/response"
	"github.com/linkfolio/linkfolio/pkg/validation"
)

const maxAvatarBytes = 5 << 20

type AccountHandler struct {
	Svc     *application.AccountService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
	Username    string `json:"username" binding:"omitempty,max=50"`
	IsPublic    *bool  `json:"is_public"`
	UserType    string `json:"user_type" binding:"omitempty,oneof=creator standard"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func accountView(a *entity.Account) gin.H {
	return gin.H{
		"id":                   a.ID,
		"username":             a.Username,
		"email":                a.Email,
		"display_name":         a.DisplayName,
		"bio":                  a.Bio,
		"avatar_url":           a.AvatarURL,
		"is_public":            a.IsPublic,
		"onboarding_completed": a.OnboardingCompleted,
		"user_type":            a.UserType,
		"email_confirmed":      a.EmailConfirmed(),
		"created_at":           a.CreatedAt,
		"updated_at":           a.UpdatedAt,
	}
}

func (h *AccountHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	a, pair, err := h.Svc.SignUp(c.Request.Context(), application.SignUpInput{
		Email:           req.Email,
		Password:        req.Password,
		DisplayName:     req.DisplayName,
		DesiredUsername: req.Username,
		IsPublic:        isPublic,
		UserType:        entity.UserType(req.UserType),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)
	response.Success(c, http.StatusCreated, accountView(a), "account created", gin.H{
		"access_expires_at":  pair.AccessExpiresAt,
		"refresh_expires_at": pair.RefreshExpiresAt,
	})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)
	response.Success(c, http.StatusOK, accountView(a), "login successful", gin.H{
		"access_expires_at":  pair.AccessExpiresAt,
		"refresh_expires_at": pair.RefreshExpiresAt,
	})
}

func (h *AccountHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", gin.H{
		"access_expires_at":  pair.AccessExpiresAt,
		"refresh_expires_at": pair.RefreshExpiresAt,
	})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountIDKey)
	sessionID := c.GetString(middleware.CtxSessionIDKey)
	if err := h.Svc.Logout(c.Request.Context(), accountID, sessionID); err != nil {
		h.Logger.WithError(err).Warn("session removal failed on logout")
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *AccountHandler) Me(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accountView(a), "account", nil)
}

type updateAccountRequest struct {
	DisplayName         *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	Bio                 *string `json:"bio" binding:"omitempty,max=500"`
	IsPublic            *bool   `json:"is_public"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
}

func (h *AccountHandler) Update(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), application.UpdateAccountInput{
		DisplayName:         req.DisplayName,
		Bio:                 req.Bio,
		IsPublic:            req.IsPublic,
		OnboardingCompleted: req.OnboardingCompleted,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accountView(a), "account updated", nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeDomainError(c, err)
		return
	}
	// Always report success so the endpoint cannot probe for accounts.
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "reset instructions sent if the email exists", nil)
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password reset", nil)
}

func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	defer file.Close()
	if header.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "avatar too large", nil)
		return
	}
	contentType := header.Header.Get("Content-Type")
	a, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), header.Filename, contentType, file)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, accountView(a), "avatar uploaded", nil)
}

func (h *AccountHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	docs, err := h.Svc.Search(c.Request.Context(), q, limit)
	if err != nil {
		h.Logger.WithError(err).Warn("account search failed")
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, docs, "search results", gin.H{"count": len(docs)})
}
