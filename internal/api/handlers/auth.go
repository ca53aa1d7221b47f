package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authpkg "github.com/your-org/attendance/internal/auth"
	"github.com/your-org/attendance/internal/identity"
	"github.com/your-org/attendance/internal/observability"
	"github.com/your-org/attendance/pkg/dto"
)

type AuthHandler struct {
	identity *identity.Service
}

func NewAuthHandler(svc *identity.Service) *AuthHandler {
	return &AuthHandler{identity: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			observability.LoginFailures.Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token:     res.Token,
		ExpiresIn: res.ExpiresIn,
		Identity:  identityResponse(res.Identity),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.identity.Register(c.Request.Context(), identity.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	observability.Registrations.Inc()

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Token:     res.Token,
		ExpiresIn: res.ExpiresIn,
		Identity:  identityResponse(res.Identity),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.identity.Logout(c.Request.Context(), authpkg.SessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
