package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/averyk/lifeledger/internal/api/response"
	"github.com/averyk/lifeledger/internal/service"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}

func (ctrl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register params invalid", "error", err)
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	if err := ctrl.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		slog.Error("register failed", "email", req.Email, "error", err)
		fail(c, err)
		return
	}

	slog.Info("user registered", "email", req.Email)
	response.Success(c, nil)
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}

	token, userID, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "email", req.Email, "error", err)
		// Vague on purpose, to not leak which part was wrong.
		response.Error(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	slog.Info("user logged in", "user_id", userID)
	response.Success(c, LoginResponse{Token: token, UserID: userID})
}

// SetPushToken stores the device token the notification jobs will use.
// An empty token unsubscribes.
func (ctrl *AuthController) SetPushToken(c *gin.Context) {
	userID := c.GetString("userID")

	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}

	if err := ctrl.authService.SetNotificationToken(c.Request.Context(), userID, req.Token); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
