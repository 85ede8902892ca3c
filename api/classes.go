package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/avoronov/fitbook/internal/service/classes"
	"github.com/gin-gonic/gin"
)

type ClassHandler struct {
	service classes.ClassUseCase
}

func NewClassHandler(service classes.ClassUseCase) *ClassHandler {
	return &ClassHandler{service: service}
}

func (h *ClassHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

type classResponse struct {
	ID            int64    `json:"id"`
	TemplateID    string   `json:"template_id"`
	StartDatetime string   `json:"start_datetime"`
	EndDatetime   string   `json:"end_datetime"`
	Capacity      int      `json:"capacity"`
	SpotsLeft     int      `json:"spots_left"`
	Roster        []string `json:"roster"`
}

func toClassResponse(inst domain.ClassInstance) classResponse {
	return classResponse{
		ID:            inst.ID,
		TemplateID:    inst.TemplateID,
		StartDatetime: inst.StartDatetime.Format(time.RFC3339),
		EndDatetime:   inst.EndDatetime().Format(time.RFC3339),
		Capacity:      inst.Capacity,
		SpotsLeft:     inst.SpotsLeft,
		Roster:        inst.BookedMemberIDs,
	}
}

// list serves the weekly schedule. ?week=YYYY-MM-DD selects a specific week,
// ?days=N selects the next N days; default is the current week.
func (h *ClassHandler) list(c *gin.Context) {
	ctx := c.Request.Context()

	if daysParam := c.Query("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		instances, err := h.service.ListUpcoming(ctx, days)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toClassResponses(instances))
		return
	}

	week := time.Now()
	if weekParam := c.Query("week"); weekParam != "" {
		parsed, err := time.Parse("2006-01-02", weekParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week, expected YYYY-MM-DD"})
			return
		}
		week = parsed
	}

	instances, err := h.service.ListWeek(ctx, week)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClassResponses(instances))
}

func toClassResponses(instances []domain.ClassInstance) []classResponse {
	out := make([]classResponse, 0, len(instances))
	for _, inst := range instances {
		out = append(out, toClassResponse(inst))
	}
	return out
}

func (h *ClassHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	inst, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClassResponse(*inst))
}
