package service

import (
	"context"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/store"
)

type subjectStore interface {
	ListSubjects() []models.Subject
	GetSubject(id string) (models.Subject, error)
	CreateSubject(fields store.SubjectFields) (models.Subject, error)
	UpdateSubject(id string, patch store.SubjectPatch) (models.Subject, error)
	DeleteSubject(id string) error
}

// SubjectRequest is the payload for creating a subject.
type SubjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateSubjectRequest changes name and/or description.
type UpdateSubjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SubjectService manages the subject catalogue.
type SubjectService struct {
	subjects subjectStore
	deps     Dependencies
}

// NewSubjectService constructs the service.
func NewSubjectService(subjects subjectStore, deps Dependencies) *SubjectService {
	return &SubjectService{subjects: subjects, deps: deps.withDefaults()}
}

func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	return s.subjects.ListSubjects(), nil
}

func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.GetSubject(id)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.deps.validate(req, "invalid subject payload"); err != nil {
		return nil, err
	}
	subject, err := s.subjects.CreateSubject(store.SubjectFields{Name: req.Name, Description: req.Description})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("subject", "created", subject.ID, "dashboard:*")
	return &subject, nil
}

// Update renames or re-describes a subject. Names appear in report cards,
// timetables and dashboards, so all of them are invalidated.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	subject, err := s.subjects.UpdateSubject(id, store.SubjectPatch{Name: req.Name, Description: req.Description})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("subject", "updated", id, cacheKeyReportCard+"*", cacheKeyTimetable+"*", "dashboard:*")
	return &subject, nil
}

// Delete removes a subject no grade refers to.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if err := s.subjects.DeleteSubject(id); err != nil {
		return err
	}
	s.deps.mutated("subject", "deleted", id, cacheKeyTimetable+"*", "dashboard:*")
	return nil
}
