package service

import (
	"context"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

type dashboardStore interface {
	AdminStats() models.AdminDashboard
	TeacherStats(teacherID string) (models.TeacherDashboard, error)
	StudentStats(studentID string) (models.StudentDashboard, error)
}

// DashboardService serves the per-role summary pages. Each call reports
// whether the payload came from the cache.
type DashboardService struct {
	stats dashboardStore
	cache *CacheService
	deps  Dependencies
}

// NewDashboardService constructs the service. cache may be nil.
func NewDashboardService(stats dashboardStore, cache *CacheService, deps Dependencies) *DashboardService {
	return &DashboardService{stats: stats, cache: cache, deps: deps.withDefaults()}
}

func (s *DashboardService) Admin(ctx context.Context) (models.AdminDashboard, bool, error) {
	return cached(ctx, s.cache, cacheKeyAdminDashboard, func() (models.AdminDashboard, error) {
		return s.stats.AdminStats(), nil
	})
}

// Teacher is available to admins and to the teacher themself.
func (s *DashboardService) Teacher(ctx context.Context, actor Actor, teacherID string) (models.TeacherDashboard, bool, error) {
	if !actor.IsAdmin() && actor.ID != teacherID {
		return models.TeacherDashboard{}, false, appErrors.Clone(appErrors.ErrForbidden, "teachers may only view their own dashboard")
	}
	return cached(ctx, s.cache, cacheKeyTeacherDashboard+teacherID, func() (models.TeacherDashboard, error) {
		return s.stats.TeacherStats(teacherID)
	})
}

func (s *DashboardService) Student(ctx context.Context, actor Actor, studentID string) (models.StudentDashboard, bool, error) {
	if err := actor.canSeeStudent(studentID); err != nil {
		return models.StudentDashboard{}, false, err
	}
	return cached(ctx, s.cache, cacheKeyStudentDashboard+studentID, func() (models.StudentDashboard, error) {
		return s.stats.StudentStats(studentID)
	})
}
