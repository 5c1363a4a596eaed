package coverletters

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"talexus-backend/internal/shared/server/middleware"
	"talexus-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the cover letter service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches cover letter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cover-letters", h.generate)
}

type generateRequest struct {
	ResumeID       string `json:"resumeId"`
	JobDescription string `json:"jobDescription"`
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	letter, err := h.Svc.Generate(c.Request.Context(), userID, req.ResumeID, req.JobDescription)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "cover letter generation is not configured", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate cover letter", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"resumeId":    req.ResumeID,
		"coverLetter": letter,
	})
}
