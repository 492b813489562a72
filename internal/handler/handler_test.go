package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/colegio-api/internal/middleware"
	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/service"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/export"
)

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newContext(method, target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type fakeDashboardSrv struct {
	hit       bool
	err       error
	lastActor service.Actor
	lastID    string
}

func (f *fakeDashboardSrv) Admin(context.Context) (models.AdminDashboard, bool, error) {
	return models.AdminDashboard{TotalUsers: 7}, f.hit, f.err
}

func (f *fakeDashboardSrv) Teacher(_ context.Context, actor service.Actor, id string) (models.TeacherDashboard, bool, error) {
	f.lastActor, f.lastID = actor, id
	return models.TeacherDashboard{GradesRecorded: 3}, f.hit, f.err
}

func (f *fakeDashboardSrv) Student(_ context.Context, actor service.Actor, id string) (models.StudentDashboard, bool, error) {
	f.lastActor, f.lastID = actor, id
	return models.StudentDashboard{}, f.hit, f.err
}

func TestDashboardHandlerAdminReportsCacheHit(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{hit: true})
	c, rec := newContext(http.MethodGet, "/dashboard/admin", &models.JWTClaims{UserID: "1", Role: models.RoleAdmin})

	h.Admin(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
	assert.Equal(t, float64(7), env.Data["totalUsers"])
}

func TestDashboardHandlerTeacherPassesActor(t *testing.T) {
	srv := &fakeDashboardSrv{}
	h := NewDashboardHandler(srv)
	c, rec := newContext(http.MethodGet, "/dashboard/teacher/2", &models.JWTClaims{UserID: "2", Role: models.RoleTeacher})
	c.Params = gin.Params{{Key: "id", Value: "2"}}

	h.Teacher(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Actor{ID: "2", Role: models.RoleTeacher}, srv.lastActor)
	assert.Equal(t, "2", srv.lastID)
}

func TestDashboardHandlerErrors(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.Clone(appErrors.ErrForbidden, "nope")})

	c, rec := newContext(http.MethodGet, "/dashboard/student/4", nil)
	h.Student(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newContext(http.MethodGet, "/dashboard/student/4", &models.JWTClaims{UserID: "5", Role: models.RoleStudent})
	h.Student(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec).Error["code"])

	c, rec = newContext(http.MethodGet, "/dashboard/admin", nil)
	NewDashboardHandler(nil).Admin(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type fakeExporter struct {
	format export.Format
	err    error
}

func (f *fakeExporter) ReportCard(_ context.Context, _ service.Actor, id string, format export.Format) (*service.ExportFile, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Name: "boletin_" + id + ".csv", ContentType: "text/csv; charset=utf-8", Body: []byte("Materia\n")}, nil
}

func (f *fakeExporter) Publish(_ context.Context, _ service.Actor, id string, format export.Format) (*service.ExportLink, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportLink{URL: "/api/v1/exports/tok", Token: "tok", Name: "boletin_" + id + ".pdf", Format: format}, nil
}

func TestPublishReportCardReturnsLink(t *testing.T) {
	exp := &fakeExporter{}
	h := NewGradeHandler(nil, exp)
	c, rec := newContext(http.MethodPost, "/students/4/report-card/link?format=pdf", &models.JWTClaims{UserID: "1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "4"}}

	h.PublishReportCard(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, export.FormatPDF, exp.format)
	env := decode(t, rec)
	assert.Equal(t, "/api/v1/exports/tok", env.Data["url"])
	assert.Equal(t, "boletin_4.pdf", env.Data["name"])
}

func TestExportReportCardAttachment(t *testing.T) {
	exp := &fakeExporter{}
	h := NewGradeHandler(nil, exp)
	c, rec := newContext(http.MethodGet, "/students/4/report-card", &models.JWTClaims{UserID: "4", Role: models.RoleStudent})
	c.Params = gin.Params{{Key: "id", Value: "4"}}

	h.ExportReportCard(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatCSV, exp.format)
	assert.Equal(t, `attachment; filename="boletin_4.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Materia\n", rec.Body.String())
}

func TestExportReportCardInvalidFormat(t *testing.T) {
	exp := &fakeExporter{err: appErrors.Validation("format must be one of csv, pdf, xlsx")}
	h := NewGradeHandler(nil, exp)
	c, rec := newContext(http.MethodGet, "/students/4/report-card?format=docx", &models.JWTClaims{UserID: "1", Role: models.RoleAdmin})

	h.ExportReportCard(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, export.Format("docx"), exp.format)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestReadyReportsFailingChecks(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"store": func() error { return nil },
		"redis": func() error { return assert.AnError },
	})
	c, rec := newContext(http.MethodGet, "/ready", nil)

	h.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "ok", body["checks"].(map[string]interface{})["store"])

	c, rec = newContext(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
