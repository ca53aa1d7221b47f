package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authpkg "github.com/your-org/attendance/internal/auth"
	"github.com/your-org/attendance/internal/identity"
	"github.com/your-org/attendance/internal/models"
	"github.com/your-org/attendance/internal/storage"
	"github.com/your-org/attendance/pkg/dto"
)

type ProfileHandler struct {
	identity *identity.Service
	minio    *storage.MinIOStore
}

func NewProfileHandler(svc *identity.Service, minio *storage.MinIOStore) *ProfileHandler {
	return &ProfileHandler{identity: svc, minio: minio}
}

func identityResponse(ident *models.Identity) dto.IdentityResponse {
	resp := dto.IdentityResponse{
		ID:         ident.ID,
		Email:      ident.Email,
		Name:       ident.Name,
		Department: ident.Department,
		Position:   ident.Position,
		CreatedAt:  ident.CreatedAt.Format(time.RFC3339),
	}
	if ident.AvatarKey != "" {
		resp.AvatarURL = "/v1/me/avatar"
	}
	return resp
}

func (h *ProfileHandler) Me(c *gin.Context) {
	ident, err := h.identity.Get(c.Request.Context(), authpkg.IdentityID(c))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "identity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, identityResponse(ident))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident, err := h.identity.UpdateProfile(c.Request.Context(), authpkg.IdentityID(c), identity.ProfileUpdate{
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "identity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, identityResponse(ident))
}

// UploadAvatar accepts a multipart image upload and stores it as the
// identity's avatar.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	identityID := authpkg.IdentityID(c)

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read avatar failed"})
		return
	}

	key := storage.AvatarKey(identityID)
	if err := h.minio.PutObject(c.Request.Context(), key, imageData, header.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store avatar failed"})
		return
	}

	ident, err := h.identity.UpdateProfile(c.Request.Context(), identityID, identity.ProfileUpdate{
		AvatarKey: &key,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, identityResponse(ident))
}

// Avatar serves the identity's stored avatar image.
func (h *ProfileHandler) Avatar(c *gin.Context) {
	ident, err := h.identity.Get(c.Request.Context(), authpkg.IdentityID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "identity not found"})
		return
	}
	if ident.AvatarKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no avatar set"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), ident.AvatarKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}
