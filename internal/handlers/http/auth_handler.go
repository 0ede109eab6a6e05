package http

import (
	"net/http"
	"strings"

	"sourcehub/internal/core/services"
	"sourcehub/pkg/errors"
	"sourcehub/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessionService services.SessionService
	sessionTTL     int
}

func NewAuthHandler(sessionService services.SessionService, sessionTTLSeconds int) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
		sessionTTL:     sessionTTLSeconds,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/bootstrap", h.Bootstrap)
		api.POST("/login", h.Login)
	}
}

type BootstrapRequest struct {
	ReturnTo string `json:"return_to" binding:"max=2048"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// Bootstrap establishes a usable session for the caller. An already valid
// bearer token is kept as is; otherwise the service signs in, creating its
// account first if needed. The response always names the route to continue at.
func (h *AuthHandler) Bootstrap(c *gin.Context) {
	var req BootstrapRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	result, err := h.sessionService.Bootstrap(c.Request.Context(), bearerToken(c), req.ReturnTo)
	if err != nil {
		c.Error(errors.NewInternalError("session bootstrap failed").WithContext("cause", err.Error()))
		return
	}

	resp := gin.H{
		"redirect_to": result.Route,
		"expires_in":  h.sessionTTL,
	}
	if result.Token != "" {
		resp["token"] = result.Token
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	req.Email = utils.NormalizeEmail(req.Email)

	token, err := h.sessionService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": h.sessionTTL,
	})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
