package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/service"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/response"
)

type scheduleService interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Timetable(ctx context.Context, grade, group string) (models.Timetable, bool, error)
	Calendar(ctx context.Context, grade, group string) (string, []byte, error)
	Create(ctx context.Context, req service.CreateScheduleRequest) (*models.Schedule, error)
	Delete(ctx context.Context, id string) error
}

const calendarContentType = "text/calendar; charset=utf-8"

// ScheduleHandler serves the weekly class schedule.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedule entries
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param grade query string false "Grade level"
// @Param group query string false "Group"
// @Param teacherId query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter := models.ScheduleFilter{
		GradeLevel: c.Query("grade"),
		Group:      c.Query("group"),
		TeacherID:  c.Query("teacherId"),
	}
	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"total": len(entries)})
}

// Get godoc
// @Summary Get schedule entry
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Timetable godoc
// @Summary Weekly timetable of a class group
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param grade query string true "Grade level"
// @Param group query string true "Group"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/timetable [get]
func (h *ScheduleHandler) Timetable(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	tt, hit, err := h.service.Timetable(c.Request.Context(), c.Query("grade"), c.Query("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt, cacheMeta(hit, start))
}

// Calendar godoc
// @Summary Timetable as an iCalendar feed
// @Tags Schedules
// @Produce text/calendar
// @Security BearerAuth
// @Param grade query string true "Grade level"
// @Param group query string true "Group"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedules/timetable.ics [get]
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	name, body, err := h.service.Calendar(c.Request.Context(), c.Query("grade"), c.Query("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, name, calendarContentType, body)
}

// Create godoc
// @Summary Book a class into a free slot
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Delete godoc
// @Summary Free a schedule slot
// @Tags Schedules
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
