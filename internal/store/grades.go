package store

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// DateLayout is the calendar date format used by grades and topics.
const DateLayout = "2006-01-02"

// GradeFields are the attributes of a new grade.
type GradeFields struct {
	StudentID string
	SubjectID string
	TeacherID string
	Value     int
	Period    string
	Date      string
}

// GradePatch replaces the non-nil fields of a grade. The student is fixed.
type GradePatch struct {
	SubjectID *string
	TeacherID *string
	Value     *int
	Period    *string
	Date      *string
}

// ListGrades returns grades matching the filter in insertion order.
func (s *Store) ListGrades(f models.GradeFilter) []models.Grade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(&s.grades, func(g models.Grade) bool {
		return (f.StudentID == "" || g.StudentID == f.StudentID) &&
			(f.TeacherID == "" || g.TeacherID == f.TeacherID) &&
			(f.SubjectID == "" || g.SubjectID == f.SubjectID) &&
			(f.Period == "" || g.Period == f.Period)
	}, identity[models.Grade])
}

// GetGrade returns the grade with id.
func (s *Store) GetGrade(id string) (models.Grade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grades.get(id)
	if !ok {
		return models.Grade{}, appErrors.NotFound("grade not found")
	}
	return g, nil
}

// GradesForStudent returns each grade of the student joined with its subject.
// Grades whose subject no longer exists are skipped.
func (s *Store) GradesForStudent(studentID string) []models.GradeWithSubject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.GradeWithSubject, 0)
	s.grades.each(func(g models.Grade) bool {
		if g.StudentID != studentID {
			return true
		}
		if sub, ok := s.subjects.get(g.SubjectID); ok {
			out = append(out, models.GradeWithSubject{Grade: g, Subject: sub})
		}
		return true
	})
	return out
}

// GradesForStudentBySubjectAndPeriod groups the student's grades by subject.
// Every period appears in each entry; a nil score means none was recorded.
// The average covers recorded periods only, rounded to one decimal, and is 0
// when nothing was recorded. A later grade for the same subject and period
// replaces an earlier one.
func (s *Store) GradesForStudentBySubjectAndPeriod(studentID string) models.ReportCard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card := make(models.ReportCard)
	s.grades.each(func(g models.Grade) bool {
		if g.StudentID != studentID {
			return true
		}
		sub, ok := s.subjects.get(g.SubjectID)
		if !ok {
			return true
		}
		entry, exists := card[sub.ID]
		if !exists {
			entry = models.SubjectPeriodScores{SubjectName: sub.Name, Periods: make(map[string]*int, len(models.Periods))}
			for _, p := range models.Periods {
				entry.Periods[p] = nil
			}
		}
		value := g.Value
		entry.Periods[g.Period] = &value
		card[sub.ID] = entry
		return true
	})

	for id, entry := range card {
		sum, count := 0, 0
		for _, p := range models.Periods {
			if score := entry.Periods[p]; score != nil {
				sum += *score
				count++
			}
		}
		if count > 0 {
			entry.Average = roundOne(float64(sum) / float64(count))
		}
		card[id] = entry
	}
	return card
}

// CreateGrade validates and appends a new grade.
func (s *Store) CreateGrade(fields GradeFields) (models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := models.Grade{
		StudentID: fields.StudentID,
		SubjectID: fields.SubjectID,
		TeacherID: fields.TeacherID,
		Value:     fields.Value,
		Period:    fields.Period,
		Date:      fields.Date,
	}
	if err := s.checkGrade(g); err != nil {
		return models.Grade{}, err
	}
	g.ID = s.grades.nextID()
	s.grades.put(g.ID, g)
	return g, nil
}

// UpdateGrade merges patch into the grade with id. Only the links the patch
// sets are re-checked.
func (s *Store) UpdateGrade(id string, patch GradePatch) (models.Grade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.grades.get(id)
	if !ok {
		return models.Grade{}, appErrors.NotFound("grade not found")
	}
	if patch.SubjectID != nil {
		g.SubjectID = *patch.SubjectID
	}
	if patch.TeacherID != nil {
		g.TeacherID = *patch.TeacherID
	}
	if patch.Value != nil {
		g.Value = *patch.Value
	}
	if patch.Period != nil {
		g.Period = *patch.Period
	}
	if patch.Date != nil {
		g.Date = *patch.Date
	}
	if err := checkGradeFields(g); err != nil {
		return models.Grade{}, err
	}
	if patch.TeacherID != nil {
		if err := s.checkRole(g.TeacherID, models.RoleTeacher); err != nil {
			return models.Grade{}, err
		}
	}
	if patch.SubjectID != nil {
		if _, ok := s.subjects.get(g.SubjectID); !ok {
			return models.Grade{}, appErrors.NotFound("subject not found")
		}
	}
	s.grades.put(id, g)
	return g, nil
}

// DeleteGrade removes the grade with id.
func (s *Store) DeleteGrade(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.grades.remove(id) {
		return appErrors.NotFound("grade not found")
	}
	return nil
}

func (s *Store) checkGrade(g models.Grade) error {
	if err := checkGradeFields(g); err != nil {
		return err
	}
	if err := s.checkRole(g.StudentID, models.RoleStudent); err != nil {
		return err
	}
	if err := s.checkRole(g.TeacherID, models.RoleTeacher); err != nil {
		return err
	}
	if _, ok := s.subjects.get(g.SubjectID); !ok {
		return appErrors.NotFound("subject not found")
	}
	return nil
}

func checkGradeFields(g models.Grade) error {
	if g.StudentID == "" || g.SubjectID == "" || g.TeacherID == "" {
		return appErrors.Validation("studentId, subjectId and teacherId are required")
	}
	if g.Value < models.MinGradeValue || g.Value > models.MaxGradeValue {
		return appErrors.Validation(fmt.Sprintf("value must be between %d and %d", models.MinGradeValue, models.MaxGradeValue))
	}
	if !models.ValidPeriod(g.Period) {
		return appErrors.Validation("unknown period")
	}
	return checkDate(g.Date, "date")
}

// checkRole verifies that id names an existing user holding role.
func (s *Store) checkRole(id string, role models.UserRole) error {
	u, ok := s.users.get(id)
	if !ok {
		return appErrors.NotFound(string(role) + " not found")
	}
	if u.Role() != role {
		return appErrors.Validation(fmt.Sprintf("user %s is not a %s", id, role))
	}
	return nil
}

func checkDate(value, field string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, field+" must be a YYYY-MM-DD date")
	}
	return nil
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
