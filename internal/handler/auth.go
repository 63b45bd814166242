package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   logrus.FieldLogger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type forgotReq struct {
	Email string `json:"email"`
}

// Login verifies the demo credentials and returns a signed access token.
// Unknown emails and wrong passwords get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	u, err := h.Users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials", "message": "Invalid email or password"})
		}
		return writeError(c, h.Log, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials", "message": "Invalid email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Claims{UserID: u.ID, Role: u.Role, Name: u.Name}, h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	h.Log.WithFields(logrus.Fields{"user": u.ID, "role": u.Role}).Info("login")
	return c.JSON(http.StatusOK, loginResp{Token: access.Token, Name: u.Name, Role: u.Role})
}

// ForgotPassword only acknowledges the request; there is no mail channel.
// The reply does not reveal whether the address exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" {
		return badRequest(c, "email is required")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "If the account exists, a reset link has been sent."})
}
