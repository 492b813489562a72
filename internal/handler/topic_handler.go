package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/service"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/response"
)

type topicService interface {
	List(ctx context.Context, filter models.TopicFilter) ([]models.CurriculumTopic, error)
	Get(ctx context.Context, id string) (*models.CurriculumTopic, error)
	Create(ctx context.Context, actor service.Actor, req service.TopicRequest) (*models.CurriculumTopic, error)
	Update(ctx context.Context, actor service.Actor, id string, req service.UpdateTopicRequest) (*models.CurriculumTopic, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// TopicHandler serves the curriculum planner ("parcelador").
type TopicHandler struct {
	service topicService
}

// NewTopicHandler constructs the handler.
func NewTopicHandler(svc topicService) *TopicHandler {
	return &TopicHandler{service: svc}
}

// List godoc
// @Summary List curriculum topics
// @Tags Topics
// @Produce json
// @Security BearerAuth
// @Param profesorId query string false "Teacher ID"
// @Param materiaId query string false "Subject ID"
// @Param grado query string false "Grade level"
// @Param grupo query string false "Group"
// @Success 200 {object} response.Envelope
// @Router /topics [get]
func (h *TopicHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter := models.TopicFilter{
		ProfesorID: c.Query("profesorId"),
		MateriaID:  c.Query("materiaId"),
		Grado:      c.Query("grado"),
		Grupo:      c.Query("grupo"),
	}
	topics, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, topics, map[string]interface{}{"total": len(topics)})
}

// Get godoc
// @Summary Get curriculum topic
// @Tags Topics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /topics/{id} [get]
func (h *TopicHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	topic, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, topic)
}

// Create godoc
// @Summary Plan a curriculum topic
// @Tags Topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.TopicRequest true "Topic payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /topics [post]
func (h *TopicHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	topic, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, topic)
}

// Update godoc
// @Summary Update curriculum topic
// @Tags Topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Param payload body service.UpdateTopicRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /topics/{id} [patch]
func (h *TopicHandler) Update(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	topic, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, topic)
}

// Delete godoc
// @Summary Delete curriculum topic
// @Tags Topics
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /topics/{id} [delete]
func (h *TopicHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
