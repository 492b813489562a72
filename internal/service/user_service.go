package service

import (
	"context"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/store"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

type userStore interface {
	ListUsers(filter models.UserFilter) []models.User
	GetUser(id string) (models.User, error)
	CreateUser(fields store.UserFields) (models.User, error)
	UpdateUser(id string, patch store.UserPatch) (models.User, error)
	SetTeacherSubjects(teacherID string, subjectIDs []string) (models.User, error)
	DeleteUser(id string) error
	SubjectsForTeacher(teacherID string) []models.Subject
	ScheduleForTeacher(teacherID string) []models.Schedule
}

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required,oneof=admin teacher student"`
	Grade    string          `json:"grade"`
	Group    string          `json:"group"`
	Subjects []string        `json:"subjects"`
}

// UpdateUserRequest carries the fields to change; omitted fields are kept.
type UpdateUserRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	Password *string          `json:"password"`
	Role     *models.UserRole `json:"role" validate:"omitempty,oneof=admin teacher student"`
	Grade    *string          `json:"grade"`
	Group    *string          `json:"group"`
	Subjects *[]string        `json:"subjects"`
}

// SetSubjectsRequest replaces a teacher's subject set.
type SetSubjectsRequest struct {
	Subjects []string `json:"subjects" validate:"required"`
}

// UserService handles user management workflows.
type UserService struct {
	users  userStore
	hasher store.PasswordHasher
	deps   Dependencies
}

// NewUserService creates an instance of UserService.
func NewUserService(users userStore, hasher store.PasswordHasher, deps Dependencies) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &UserService{users: users, hasher: hasher, deps: deps.withDefaults()}
}

// List returns users matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, appErrors.Validation("role must be one of admin, teacher, student")
	}
	return s.users.ListUsers(filter), nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetUser(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create hashes the password and adds a new user.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.deps.validate(req, "invalid create user payload"); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user, err := s.users.CreateUser(store.UserFields{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		GradeLevel:   req.Grade,
		Group:        req.Group,
		SubjectIDs:   req.Subjects,
	})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("user", "created", user.ID, "dashboard:*")
	return &user, nil
}

// Update merges the request into the stored user.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.deps.validate(req, "invalid update user payload"); err != nil {
		return nil, err
	}
	patch := store.UserPatch{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		GradeLevel: req.Grade,
		Group:      req.Group,
		SubjectIDs: req.Subjects,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		patch.PasswordHash = &hash
	}

	user, err := s.users.UpdateUser(id, patch)
	if err != nil {
		return nil, err
	}
	s.deps.mutated("user", "updated", id, "dashboard:*", cacheKeyTimetable+"*", cacheKeyReportCard+id)
	return &user, nil
}

// SetSubjects replaces the subjects a teacher may grade.
func (s *UserService) SetSubjects(ctx context.Context, id string, req SetSubjectsRequest) (*models.User, error) {
	if err := s.deps.validate(req, "subjects is required"); err != nil {
		return nil, err
	}
	user, err := s.users.SetTeacherSubjects(id, req.Subjects)
	if err != nil {
		return nil, err
	}
	s.deps.mutated("user", "subjects_set", id, cacheKeyTeacherDashboard+id)
	return &user, nil
}

// Delete removes a user that nothing references.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(id); err != nil {
		return err
	}
	s.deps.mutated("user", "deleted", id, "dashboard:*", cacheKeyReportCard+id)
	return nil
}

// Subjects lists the subjects a teacher is assigned.
func (s *UserService) Subjects(ctx context.Context, teacherID string) ([]models.Subject, error) {
	return s.users.SubjectsForTeacher(teacherID), nil
}

// Schedule lists the weekly classes a teacher gives.
func (s *UserService) Schedule(ctx context.Context, teacherID string) ([]models.Schedule, error) {
	return s.users.ScheduleForTeacher(teacherID), nil
}
