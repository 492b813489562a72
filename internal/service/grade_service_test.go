package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

func newGradeService(t *testing.T, cache *CacheService, inv CacheInvalidator) *GradeService {
	t.Helper()
	svc := NewGradeService(seededStore(t), cache, Dependencies{Invalidator: inv})
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestGradeServiceTeacherDefaultsToSelf(t *testing.T) {
	inv := &recordingInvalidator{}
	svc := newGradeService(t, nil, inv)

	grade, err := svc.Create(context.Background(), juanActor, CreateGradeRequest{
		StudentID: "4",
		SubjectID: "1",
		Value:     ptr(95),
		Period:    models.PeriodThird,
	})
	require.NoError(t, err)
	assert.Equal(t, "2", grade.TeacherID)
	assert.Equal(t, "2025-09-01", grade.Date)
	assert.Equal(t, "16", grade.ID)
	assert.Contains(t, inv.all(), "report:4")
	assert.Contains(t, inv.all(), "dashboard:admin")
}

func TestGradeServiceAuthorization(t *testing.T) {
	svc := newGradeService(t, nil, nil)
	ctx := context.Background()
	base := CreateGradeRequest{StudentID: "4", SubjectID: "1", Value: ptr(70), Period: models.PeriodThird, Date: "2025-09-01"}

	cases := []struct {
		name   string
		actor  Actor
		mutate func(*CreateGradeRequest)
	}{
		{"subject not assigned", juanActor, func(r *CreateGradeRequest) { r.SubjectID = "3" }},
		{"grading as someone else", juanActor, func(r *CreateGradeRequest) { r.TeacherID = "3" }},
		{"student", carlosActor, func(r *CreateGradeRequest) { r.TeacherID = "2" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := svc.Create(ctx, tc.actor, req)
			assert.ErrorIs(t, err, appErrors.ErrForbidden)
		})
	}

	// admins may record any grade on behalf of a teacher
	req := base
	req.SubjectID = "3"
	req.TeacherID = "3"
	_, err := svc.Create(ctx, adminActor, req)
	assert.NoError(t, err)
}

func TestGradeServiceCreateValidation(t *testing.T) {
	svc := newGradeService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor, CreateGradeRequest{StudentID: "4", SubjectID: "1", TeacherID: "2", Period: models.PeriodFirst})
	assert.ErrorIs(t, err, appErrors.ErrValidation, "value is required")

	_, err = svc.Create(ctx, adminActor, CreateGradeRequest{StudentID: "4", SubjectID: "1", TeacherID: "2", Value: ptr(101), Period: models.PeriodFirst})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, adminActor, CreateGradeRequest{StudentID: "4", SubjectID: "1", TeacherID: "2", Value: ptr(50), Period: "4to Trimestre"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, adminActor, CreateGradeRequest{StudentID: "4", SubjectID: "1", TeacherID: "2", Value: ptr(50), Period: models.PeriodFirst, Date: "15/03/2023"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	zero, err := svc.Create(ctx, adminActor, CreateGradeRequest{StudentID: "4", SubjectID: "1", TeacherID: "2", Value: ptr(0), Period: models.PeriodFirst})
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Value)

	_, err = svc.Create(ctx, adminActor, CreateGradeRequest{StudentID: "99", SubjectID: "1", TeacherID: "2", Value: ptr(50), Period: models.PeriodFirst})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestGradeServiceUpdateAndDeleteOwnership(t *testing.T) {
	svc := newGradeService(t, nil, nil)
	ctx := context.Background()

	// grade 2 was recorded by María
	_, err := svc.Update(ctx, juanActor, "2", UpdateGradeRequest{Value: ptr(90)})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, juanActor, "2"), appErrors.ErrForbidden)

	updated, err := svc.Update(ctx, juanActor, "1", UpdateGradeRequest{Value: ptr(99)})
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Value)

	_, err = svc.Update(ctx, juanActor, "1", UpdateGradeRequest{TeacherID: ptr("3")})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, juanActor, "1"))
	assert.ErrorIs(t, svc.Delete(ctx, adminActor, "1"), appErrors.ErrNotFound)
}

func TestGradeServiceStudentsSeeOnlyTheirOwn(t *testing.T) {
	svc := newGradeService(t, nil, nil)
	ctx := context.Background()

	grades, err := svc.List(ctx, carlosActor, models.GradeFilter{})
	require.NoError(t, err)
	assert.Len(t, grades, 6)
	for _, g := range grades {
		assert.Equal(t, "4", g.StudentID)
	}

	_, err = svc.List(ctx, carlosActor, models.GradeFilter{StudentID: "5"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Get(ctx, carlosActor, "4")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.ForStudent(ctx, anaActor, "4")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	joined, err := svc.ForStudent(ctx, juanActor, "4")
	require.NoError(t, err)
	assert.Equal(t, "Matemáticas", joined[0].Subject.Name)
}

func TestGradeServiceReportCardIsCached(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	svc := newGradeService(t, cache, nil)
	ctx := context.Background()

	card, hit, err := svc.ReportCard(ctx, carlosActor, "4")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 86.5, card["1"].Average)
	assert.True(t, repo.has("report:4"))

	again, hit, err := svc.ReportCard(ctx, carlosActor, "4")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, card, again)
	assert.Nil(t, again["1"].Periods[models.PeriodThird])
}
