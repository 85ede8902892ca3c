package api

import (
	"context"
	"net/http"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/avoronov/fitbook/internal/repository"
	"github.com/avoronov/fitbook/internal/schedule"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MaintainerRunner interface {
	Run(ctx context.Context) (schedule.Summary, error)
}

type AdminHandler struct {
	templates  repository.TemplateRepository
	maintainer MaintainerRunner
}

func NewAdminHandler(templates repository.TemplateRepository, maintainer MaintainerRunner) *AdminHandler {
	return &AdminHandler{templates: templates, maintainer: maintainer}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/templates", h.listTemplates)
	router.POST("/templates", h.addTemplate)
	router.PUT("/templates/:id", h.updateTemplate)
	router.DELETE("/templates/:id", h.deleteTemplate)
	router.POST("/maintenance/run", h.runMaintainer)
}

type templateRequest struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Instructor      string   `json:"instructor"`
	Weekday         int      `json:"weekday"`
	StartTime       string   `json:"start_time"`
	DurationMinutes int      `json:"duration_minutes"`
	Capacity        int      `json:"capacity"`
	Difficulty      string   `json:"difficulty"`
	AgeGroup        string   `json:"age_group"`
	PriceCents      int64    `json:"price_cents"`
	Tags            []string `json:"tags"`
	InviteOnly      bool     `json:"invite_only"`
}

func (r templateRequest) toDomain() domain.ClassTemplate {
	return domain.ClassTemplate{
		ID:              r.ID,
		Name:            r.Name,
		Instructor:      r.Instructor,
		Weekday:         r.Weekday,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		Capacity:        r.Capacity,
		Difficulty:      r.Difficulty,
		AgeGroup:        r.AgeGroup,
		PriceCents:      r.PriceCents,
		Tags:            r.Tags,
		IsInviteOnly:    r.InviteOnly,
	}
}

func (h *AdminHandler) listTemplates(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *AdminHandler) addTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	t := req.toDomain()
	if err := h.templates.Upsert(c.Request.Context(), &t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *AdminHandler) updateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = c.Param("id")
	t := req.toDomain()
	if err := h.templates.Upsert(c.Request.Context(), &t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *AdminHandler) deleteTemplate(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *AdminHandler) runMaintainer(c *gin.Context) {
	summary, err := h.maintainer.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pruned":  summary.Pruned,
		"created": summary.Created,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	})
}
