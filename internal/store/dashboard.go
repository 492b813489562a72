package store

import (
	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// AdminStats summarises the whole school. Every subject is listed, with an
// average of 0 when it has no grades.
func (s *Store) AdminStats() models.AdminDashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := models.AdminDashboard{
		UsersByRole: map[models.UserRole]int{
			models.RoleAdmin:   0,
			models.RoleTeacher: 0,
			models.RoleStudent: 0,
		},
		TotalUsers:    s.users.len(),
		TotalSubjects: s.subjects.len(),
		TotalGrades:   s.grades.len(),
	}
	s.users.each(func(u models.User) bool {
		out.UsersByRole[u.Role()]++
		return true
	})
	out.AverageBySubject = s.averages(func(models.Grade) bool { return true }, false)
	return out
}

// TeacherStats summarises the grades recorded by a teacher. Subjects the
// teacher never graded are omitted.
func (s *Store) TeacherStats(teacherID string) (models.TeacherDashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(teacherID)
	if !ok || u.Role() != models.RoleTeacher {
		return models.TeacherDashboard{}, appErrors.NotFound("teacher not found")
	}
	profile, _ := u.Teacher()

	mine := func(g models.Grade) bool { return g.TeacherID == teacherID }
	out := models.TeacherDashboard{
		TeacherID:        teacherID,
		TotalSubjects:    len(profile.SubjectIDs),
		AverageBySubject: s.averages(mine, true),
	}
	s.users.each(func(u models.User) bool {
		if u.Role() == models.RoleStudent {
			out.TotalStudents++
		}
		return true
	})
	s.grades.each(func(g models.Grade) bool {
		if mine(g) {
			out.GradesRecorded++
		}
		return true
	})
	return out, nil
}

// StudentStats summarises a student's grades.
func (s *Store) StudentStats(studentID string) (models.StudentDashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(studentID)
	if !ok || u.Role() != models.RoleStudent {
		return models.StudentDashboard{}, appErrors.NotFound("student not found")
	}

	mine := func(g models.Grade) bool { return g.StudentID == studentID }
	out := models.StudentDashboard{StudentID: studentID, BySubject: s.averages(mine, true)}
	sum := 0
	s.grades.each(func(g models.Grade) bool {
		if !mine(g) {
			return true
		}
		out.GradesRecorded++
		sum += g.Value
		if out.Highest == nil || g.Value > *out.Highest {
			v := g.Value
			out.Highest = &v
		}
		return true
	})
	if out.GradesRecorded > 0 {
		out.Average = roundOne(float64(sum) / float64(out.GradesRecorded))
	}
	return out, nil
}

// averages computes the mean value per subject over the grades accepted by
// pred, in subject order. With skipEmpty, subjects without grades are left out.
func (s *Store) averages(pred func(models.Grade) bool, skipEmpty bool) []models.SubjectAverage {
	sums := make(map[string]int)
	counts := make(map[string]int)
	s.grades.each(func(g models.Grade) bool {
		if pred(g) {
			sums[g.SubjectID] += g.Value
			counts[g.SubjectID]++
		}
		return true
	})

	out := make([]models.SubjectAverage, 0)
	s.subjects.each(func(sub models.Subject) bool {
		n := counts[sub.ID]
		if n == 0 && skipEmpty {
			return true
		}
		avg := models.SubjectAverage{SubjectID: sub.ID, SubjectName: sub.Name, Count: n}
		if n > 0 {
			avg.Average = roundOne(float64(sums[sub.ID]) / float64(n))
		}
		out = append(out, avg)
		return true
	})
	return out
}
