package handler

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/gin-gonic/gin"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/model/dto"
	"github.com/obunabot/obuna_go_server/internal/pkg/jwt"
	"github.com/obunabot/obuna_go_server/internal/pkg/response"
)

// AuthHandler serves the dashboard login. The dashboard is a single
// shared admin account protected by one bcrypt hash from config.
type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login exchanges the admin password for a JWT.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(h.cfg.Admin.PasswordHash), []byte(req.Password)); err != nil {
		response.AuthError(c, "invalid password")
		return
	}

	token, err := jwt.GenerateToken(h.dashboardAdminID(), h.cfg.JWT.Secret, h.cfg.JWT.ExpireHours)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.LoginResponse{Token: token})
}

// dashboardAdminID is the identity stamped on decisions made through the
// dashboard. The first configured Telegram admin stands in for the
// shared account.
func (h *AuthHandler) dashboardAdminID() int64 {
	if len(h.cfg.Admin.TelegramIDs) > 0 {
		return h.cfg.Admin.TelegramIDs[0]
	}
	return 0
}
