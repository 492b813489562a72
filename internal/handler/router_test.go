package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/colegio-api/internal/service"
	"github.com/noah-isme/colegio-api/internal/store"
	"github.com/noah-isme/colegio-api/pkg/storage"
)

func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hasher := service.BcryptHasher{Cost: bcrypt.MinCost}
	st := store.New()
	require.NoError(t, st.Seed(hasher))

	deps := service.Dependencies{}
	auth := service.NewAuthService(st, hasher, nil, nil, service.AuthConfig{AccessTokenSecret: "test-secret", Issuer: "colegio-api"})
	grades := service.NewGradeService(st, nil, deps)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exports := service.NewExportService(grades, st, &service.ExportLinks{
		Files:    files,
		Signer:   storage.NewSignedURLSigner("link-secret", time.Hour),
		BasePath: "/api/v1/exports",
	}, nil)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), auth, Handlers{
		Auth:      NewAuthHandler(auth),
		Users:     NewUserHandler(service.NewUserService(st, hasher, deps)),
		Subjects:  NewSubjectHandler(service.NewSubjectService(st, deps)),
		Grades:    NewGradeHandler(grades, exports),
		Schedules: NewScheduleHandler(service.NewScheduleService(st, nil, service.DefaultScheduleConfig(), deps)),
		Topics:    NewTopicHandler(service.NewTopicService(st, deps)),
		Dashboard: NewDashboardHandler(service.NewDashboardService(st, nil, deps)),
		Exports:   NewExportHandler(exports),
	})
	return r
}

func call(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	rec := call(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	token, _ := env.Data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLoginAndMe(t *testing.T) {
	r := newTestAPI(t)

	rec := call(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, rec).Error["code"])

	token := login(t, r, "teacher1@example.com", "teacher123")
	rec = call(r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Juan Pérez", env.Data["name"])
	assert.Equal(t, "teacher", env.Data["role"])

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/auth/me", "", nil).Code)
}

func TestRoleGates(t *testing.T) {
	r := newTestAPI(t)
	student := login(t, r, "student1@example.com", "student123")
	admin := login(t, r, "admin@example.com", "admin123")

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/users", student, nil).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/users/4", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/users/5", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/dashboard/admin", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/students/5/report", student, nil).Code)

	rec := call(r, http.MethodGet, "/api/v1/users?role=student", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []map[string]interface{} `json:"data"`
		Meta map[string]interface{}   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data, 4)
	assert.Equal(t, float64(4), list.Meta["total"])
	assert.NotContains(t, list.Data[0], "password")
}

func TestSubjectLifecycleOverHTTP(t *testing.T) {
	r := newTestAPI(t)
	admin := login(t, r, "admin@example.com", "admin123")

	rec := call(r, http.MethodDelete, "/api/v1/subjects/1", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "REFERENTIAL_INTEGRITY", decode(t, rec).Error["code"])

	rec = call(r, http.MethodPost, "/api/v1/subjects", admin, map[string]string{"name": "Música"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "6", decode(t, rec).Data["id"])

	assert.Equal(t, http.StatusNoContent, call(r, http.MethodDelete, "/api/v1/subjects/6", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/api/v1/subjects/6", admin, nil).Code)
}

func TestGradeRulesOverHTTP(t *testing.T) {
	r := newTestAPI(t)
	maria := login(t, r, "teacher2@example.com", "teacher123")

	// Matemáticas is not one of María's subjects
	rec := call(r, http.MethodPost, "/api/v1/grades", maria, map[string]interface{}{
		"studentId": "4", "subjectId": "1", "value": 70, "period": "3er Trimestre",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(r, http.MethodPost, "/api/v1/grades", maria, map[string]interface{}{
		"studentId": "4", "subjectId": "3", "value": 101, "period": "3er Trimestre",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(r, http.MethodPost, "/api/v1/grades", maria, map[string]interface{}{
		"studentId": "4", "subjectId": "3", "value": 80, "period": "3er Trimestre", "date": "2025-09-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "3", decode(t, rec).Data["teacherId"])
}

func TestExportsOverHTTP(t *testing.T) {
	r := newTestAPI(t)
	student := login(t, r, "student1@example.com", "student123")

	rec := call(r, http.MethodGet, "/api/v1/students/4/report-card", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="boletin_4.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Materia,1er Trimestre"))

	rec = call(r, http.MethodGet, "/api/v1/schedules/timetable.ics?grade=1%C2%B0&group=1", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="horario_1_1.ics"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")

	rec = call(r, http.MethodGet, "/api/v1/schedules/timetable?grade=12%C2%B0&group=1", student, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSharedReportCardLink(t *testing.T) {
	r := newTestAPI(t)
	student := login(t, r, "student1@example.com", "student123")

	rec := call(r, http.MethodPost, "/api/v1/students/4/report-card/link?format=pdf", student, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	url, _ := decode(t, rec).Data["url"].(string)
	require.True(t, strings.HasPrefix(url, "/api/v1/exports/"))

	// the signed link needs no session
	rec = call(r, http.MethodGet, url, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="boletin_4.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = call(r, http.MethodGet, url+"x", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
