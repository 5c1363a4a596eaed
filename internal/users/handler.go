package users

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"talexus-backend/internal/shared/server/middleware"
	"talexus-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PUT("/me", h.syncMe)
	rg.PUT("/resumes/:id/name", h.renameResume)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
	}
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if err == ErrNotFound {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
	})
}

// syncMe upserts the caller's identity from the trusted headers.
func (h *Handler) syncMe(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
			return
		}
	}

	user := User{
		ID:       middleware.UserIDFromContext(c),
		Email:    middleware.UserEmailFromContext(c),
		FullName: middleware.UserNameFromContext(c),
	}
	if err := h.Svc.UpsertFromIdentity(c.Request.Context(), user); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
	})
}

type renameRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *Handler) renameResume(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "displayName is required", nil)
		return
	}

	if err := h.Svc.SetResumeName(c.Request.Context(), userID, resumeID, req.DisplayName); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to rename resume", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"resumeId":    resumeID,
		"displayName": strings.TrimSpace(req.DisplayName),
	})
}
