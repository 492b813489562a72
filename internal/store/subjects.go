package store

import (
	"strings"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// SubjectFields are the attributes of a new subject.
type SubjectFields struct {
	Name        string
	Description string
}

// SubjectPatch replaces the non-nil fields of a subject.
type SubjectPatch struct {
	Name        *string
	Description *string
}

// ListSubjects returns every subject in insertion order.
func (s *Store) ListSubjects() []models.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(&s.subjects, nil, identity[models.Subject])
}

// GetSubject returns the subject with id.
func (s *Store) GetSubject(id string) (models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subjects.get(id)
	if !ok {
		return models.Subject{}, appErrors.NotFound("subject not found")
	}
	return sub, nil
}

// CreateSubject appends a new subject.
func (s *Store) CreateSubject(fields SubjectFields) (models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return models.Subject{}, appErrors.Validation("name is required")
	}
	sub := models.Subject{ID: s.subjects.nextID(), Name: name, Description: strings.TrimSpace(fields.Description)}
	s.subjects.put(sub.ID, sub)
	return sub, nil
}

// UpdateSubject merges patch into the subject with id.
func (s *Store) UpdateSubject(id string, patch SubjectPatch) (models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subjects.get(id)
	if !ok {
		return models.Subject{}, appErrors.NotFound("subject not found")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.Subject{}, appErrors.Validation("name is required")
		}
		sub.Name = name
	}
	if patch.Description != nil {
		sub.Description = strings.TrimSpace(*patch.Description)
	}
	s.subjects.put(id, sub)
	return sub, nil
}

// DeleteSubject removes the subject unless a grade references it.
func (s *Store) DeleteSubject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subjects.get(id); !ok {
		return appErrors.NotFound("subject not found")
	}
	if s.grades.some(func(g models.Grade) bool { return g.SubjectID == id }) {
		return appErrors.Clone(appErrors.ErrReferenced, "subject has grades")
	}
	s.subjects.remove(id)
	return nil
}
