package service

import (
	"context"
	"time"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/store"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

type gradeStore interface {
	ListGrades(filter models.GradeFilter) []models.Grade
	GetGrade(id string) (models.Grade, error)
	GetUser(id string) (models.User, error)
	GradesForStudent(studentID string) []models.GradeWithSubject
	GradesForStudentBySubjectAndPeriod(studentID string) models.ReportCard
	CreateGrade(fields store.GradeFields) (models.Grade, error)
	UpdateGrade(id string, patch store.GradePatch) (models.Grade, error)
	DeleteGrade(id string) error
}

// CreateGradeRequest records a score. TeacherID defaults to the caller when
// the caller is a teacher; Date defaults to today.
type CreateGradeRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	TeacherID string `json:"teacherId"`
	Value     *int   `json:"value" validate:"required,min=0,max=100"`
	Period    string `json:"period" validate:"required,oneof='1er Trimestre' '2do Trimestre' '3er Trimestre'"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateGradeRequest changes a recorded score.
type UpdateGradeRequest struct {
	SubjectID *string `json:"subjectId"`
	TeacherID *string `json:"teacherId"`
	Value     *int    `json:"value" validate:"omitempty,min=0,max=100"`
	Period    *string `json:"period" validate:"omitempty,oneof='1er Trimestre' '2do Trimestre' '3er Trimestre'"`
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// GradeService records grades and builds report cards.
type GradeService struct {
	grades gradeStore
	cache  *CacheService
	deps   Dependencies
	now    func() time.Time
}

// NewGradeService constructs the service. cache may be nil.
func NewGradeService(grades gradeStore, cache *CacheService, deps Dependencies) *GradeService {
	return &GradeService{grades: grades, cache: cache, deps: deps.withDefaults(), now: time.Now}
}

// List returns grades matching filter. Students only ever see their own.
func (s *GradeService) List(ctx context.Context, actor Actor, filter models.GradeFilter) ([]models.Grade, error) {
	if actor.Role == models.RoleStudent {
		if filter.StudentID != "" && filter.StudentID != actor.ID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own records")
		}
		filter.StudentID = actor.ID
	}
	return s.grades.ListGrades(filter), nil
}

func (s *GradeService) Get(ctx context.Context, actor Actor, id string) (*models.Grade, error) {
	grade, err := s.grades.GetGrade(id)
	if err != nil {
		return nil, err
	}
	if err := actor.canSeeStudent(grade.StudentID); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ForStudent returns the student's grades joined with their subjects.
func (s *GradeService) ForStudent(ctx context.Context, actor Actor, studentID string) ([]models.GradeWithSubject, error) {
	if err := actor.canSeeStudent(studentID); err != nil {
		return nil, err
	}
	return s.grades.GradesForStudent(studentID), nil
}

// ReportCard groups the student's grades by subject and period. The bool
// reports whether the view came from the cache.
func (s *GradeService) ReportCard(ctx context.Context, actor Actor, studentID string) (models.ReportCard, bool, error) {
	if err := actor.canSeeStudent(studentID); err != nil {
		return nil, false, err
	}
	return cached(ctx, s.cache, cacheKeyReportCard+studentID, func() (models.ReportCard, error) {
		return s.grades.GradesForStudentBySubjectAndPeriod(studentID), nil
	})
}

// Create records a grade. Teachers may only grade their own subjects, as
// themselves.
func (s *GradeService) Create(ctx context.Context, actor Actor, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.deps.validate(req, "invalid grade payload"); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTeacher && req.TeacherID == "" {
		req.TeacherID = actor.ID
	}
	if req.Date == "" {
		req.Date = s.now().Format(store.DateLayout)
	}
	if err := s.authorize(actor, req.TeacherID, req.SubjectID); err != nil {
		return nil, err
	}

	grade, err := s.grades.CreateGrade(store.GradeFields{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Value:     *req.Value,
		Period:    req.Period,
		Date:      req.Date,
	})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("grade", "created", grade.ID, s.stale(grade)...)
	return &grade, nil
}

// Update changes a grade. Teachers may only touch grades they recorded.
func (s *GradeService) Update(ctx context.Context, actor Actor, id string, req UpdateGradeRequest) (*models.Grade, error) {
	if err := s.deps.validate(req, "invalid grade payload"); err != nil {
		return nil, err
	}
	current, err := s.grades.GetGrade(id)
	if err != nil {
		return nil, err
	}
	if err := s.ownsGrade(actor, current); err != nil {
		return nil, err
	}
	teacherID, subjectID := current.TeacherID, current.SubjectID
	if req.TeacherID != nil {
		teacherID = *req.TeacherID
	}
	if req.SubjectID != nil {
		subjectID = *req.SubjectID
	}
	if err := s.authorize(actor, teacherID, subjectID); err != nil {
		return nil, err
	}

	grade, err := s.grades.UpdateGrade(id, store.GradePatch{
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Value:     req.Value,
		Period:    req.Period,
		Date:      req.Date,
	})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("grade", "updated", id, s.stale(grade)...)
	return &grade, nil
}

// Delete removes a grade. Teachers may only delete grades they recorded.
func (s *GradeService) Delete(ctx context.Context, actor Actor, id string) error {
	current, err := s.grades.GetGrade(id)
	if err != nil {
		return err
	}
	if err := s.ownsGrade(actor, current); err != nil {
		return err
	}
	if err := s.grades.DeleteGrade(id); err != nil {
		return err
	}
	s.deps.mutated("grade", "deleted", id, s.stale(current)...)
	return nil
}

func (s *GradeService) authorize(actor Actor, teacherID, subjectID string) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		if teacherID != actor.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "teachers may only record grades as themselves")
		}
		teacher, err := s.grades.GetUser(actor.ID)
		if err != nil {
			return appErrors.Clone(appErrors.ErrForbidden, "teacher account not found")
		}
		profile, ok := teacher.Teacher()
		if !ok || !profile.Teaches(subjectID) {
			return appErrors.Clone(appErrors.ErrForbidden, "subject is not assigned to this teacher")
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "only staff may record grades")
	}
}

func (s *GradeService) ownsGrade(actor Actor, g models.Grade) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		if g.TeacherID == actor.ID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "grade was recorded by another teacher")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "only staff may change grades")
	}
}

// stale lists the cached views a change to g invalidates.
func (s *GradeService) stale(g models.Grade) []string {
	return []string{
		cacheKeyReportCard + g.StudentID,
		cacheKeyStudentDashboard + g.StudentID,
		cacheKeyTeacherDashboard + "*",
		cacheKeyAdminDashboard,
	}
}
