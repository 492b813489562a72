package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/service"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/export"
	"github.com/noah-isme/colegio-api/pkg/response"
)

type gradeService interface {
	List(ctx context.Context, actor service.Actor, filter models.GradeFilter) ([]models.Grade, error)
	Get(ctx context.Context, actor service.Actor, id string) (*models.Grade, error)
	ForStudent(ctx context.Context, actor service.Actor, studentID string) ([]models.GradeWithSubject, error)
	ReportCard(ctx context.Context, actor service.Actor, studentID string) (models.ReportCard, bool, error)
	Create(ctx context.Context, actor service.Actor, req service.CreateGradeRequest) (*models.Grade, error)
	Update(ctx context.Context, actor service.Actor, id string, req service.UpdateGradeRequest) (*models.Grade, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

type reportCardExporter interface {
	ReportCard(ctx context.Context, actor service.Actor, studentID string, format export.Format) (*service.ExportFile, error)
	Publish(ctx context.Context, actor service.Actor, studentID string, format export.Format) (*service.ExportLink, error)
}

// GradeHandler serves grade records and student report cards.
type GradeHandler struct {
	service gradeService
	export  reportCardExporter
}

// NewGradeHandler constructs the handler. exporter may be nil, which
// disables the report card download.
func NewGradeHandler(svc gradeService, exporter reportCardExporter) *GradeHandler {
	return &GradeHandler{service: svc, export: exporter}
}

// List godoc
// @Summary List grades
// @Description Students only ever see their own grades.
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student ID"
// @Param teacherId query string false "Teacher ID"
// @Param subjectId query string false "Subject ID"
// @Param period query string false "Term label"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.GradeFilter{
		StudentID: c.Query("studentId"),
		TeacherID: c.Query("teacherId"),
		SubjectID: c.Query("subjectId"),
		Period:    c.Query("period"),
	}
	grades, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, map[string]interface{}{"total": len(grades)})
}

// Get godoc
// @Summary Get grade by id
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade)
}

// Create godoc
// @Summary Record a grade
// @Description Teachers may only grade their own subjects.
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	grade, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Update a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade ID"
// @Param payload body service.UpdateGradeRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [patch]
func (h *GradeHandler) Update(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	grade, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade)
}

// Delete godoc
// @Summary Delete a grade
// @Tags Grades
// @Security BearerAuth
// @Param id path string true "Grade ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
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

// StudentGrades godoc
// @Summary Grades of a student with subject names
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *GradeHandler) StudentGrades(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grades, err := h.service.ForStudent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades)
}

// ReportCard godoc
// @Summary Report card grouped by subject and term
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/report [get]
func (h *GradeHandler) ReportCard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	card, hit, err := h.service.ReportCard(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card, cacheMeta(hit, start))
}

// ExportReportCard godoc
// @Summary Download the report card
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param format query string false "csv (default), pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/report-card [get]
func (h *GradeHandler) ExportReportCard(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	file, err := h.export.ReportCard(c.Request.Context(), actor, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Body)
}

// PublishReportCard godoc
// @Summary Create a shareable report card link
// @Description The link downloads the file without a session until it expires.
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param format query string false "csv (default), pdf or xlsx"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/report-card/link [post]
func (h *GradeHandler) PublishReportCard(c *gin.Context) {
	if h.export == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	actor, err := actorFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	link, err := h.export.Publish(c.Request.Context(), actor, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}
