package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/auth"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/config"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/dtos"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/middleware"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/services"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	Provider auth.Provider
	Users    *services.UserService
	cfg      *config.Config
}

func NewAuthHandler(cfg *config.Config, provider auth.Provider, users *services.UserService) *AuthHandler {
	return &AuthHandler{Provider: provider, Users: users, cfg: cfg}
}

// GoogleLogin redirects to the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.Provider == nil {
		respondError(c, auth.ErrGoogleDisabled)
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.Provider.AuthCodeURL(state))
}

// GoogleCallback finishes the OAuth flow and hands a session token to the
// frontend through its callback URL.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.Provider == nil {
		respondError(c, auth.ErrGoogleDisabled)
		return
	}
	ctx := c.Request.Context()

	if e := c.Query("error"); e != "" {
		h.redirectFrontend(c, url.Values{"error": {e}})
		return
	}

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		badRequest(c, "Invalid OAuth state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		badRequest(c, "Missing authorization code")
		return
	}

	tok, err := h.Provider.Exchange(ctx, code)
	if err != nil {
		logger.Warn(ctx, "oauth code exchange failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Google sign-in failed"})
		return
	}
	gu, err := h.Provider.UserInfo(ctx, tok)
	if err != nil {
		logger.Warn(ctx, "google userinfo failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Google sign-in failed"})
		return
	}

	user, err := h.Users.UpsertGoogleUser(ctx, gu, tok)
	if err != nil {
		respondError(c, err)
		return
	}

	token, _, err := auth.IssueToken(user.ID, user.Email, &h.cfg.Auth)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirectFrontend(c, url.Values{"token": {token}})
}

func (h *AuthHandler) redirectFrontend(c *gin.Context, q url.Values) {
	c.Redirect(http.StatusFound, h.cfg.Server.FrontendURL+"/auth/callback?"+q.Encode())
}

// GetCurrentUser returns the signed-in user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewUserResponse(user))
}

// Logout drops the stored Google tokens. The session token itself expires
// on its own.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Users.ClearTokens(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
