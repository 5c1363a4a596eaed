package resumes

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"talexus-backend/internal/reconcile"
	"talexus-backend/internal/shared/server/middleware"
	"talexus-backend/internal/shared/server/respond"
)

const maxSectionBody = 1 << 20 // 1MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes/:id/status", h.status)

	for _, section := range []reconcile.Section{
		reconcile.SectionEducation,
		reconcile.SectionExperience,
		reconcile.SectionSkills,
		reconcile.SectionProjects,
		reconcile.SectionContactInfo,
	} {
		section := section
		rg.GET("/resumes/:id/"+string(section), h.getSection(section))
		rg.PUT("/resumes/:id/"+string(section), h.putSection(section))
	}
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	summaries, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	respond.OK(c, summaries)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("resumeId", id)

	resume, err := h.Svc.Canonical(c.Request.Context(), userID, id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resume", nil)
		return
	}
	respond.OK(c, resume)
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	job, err := h.Svc.Status(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch status", nil)
		}
		return
	}
	respond.OK(c, toStatusResponse(job))
}

func (h *Handler) getSection(section reconcile.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		id := c.Param("id")

		value, err := h.Svc.Section(c.Request.Context(), userID, id, section)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load section", nil)
			return
		}
		respond.OK(c, value)
	}
}

func (h *Handler) putSection(section reconcile.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		id := c.Param("id")
		c.Set("resumeId", id)

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSectionBody))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read request body", nil)
			return
		}

		value, err := h.Svc.UpdateSection(c.Request.Context(), userID, id, section, body)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidSection):
				respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			default:
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update section", nil)
			}
			return
		}
		respond.OK(c, value)
	}
}
