package store

import (
	"slices"
	"strings"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// UserFields are the attributes of a new user. Attributes that do not apply
// to Role are ignored.
type UserFields struct {
	Name         string
	Email        string
	PasswordHash string
	Role         models.UserRole
	GradeLevel   string
	Group        string
	SubjectIDs   []string
}

// UserPatch replaces the non-nil fields of an existing user.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *models.UserRole
	GradeLevel   *string
	Group        *string
	SubjectIDs   *[]string
}

// ListUsers returns users matching the filter in insertion order.
func (s *Store) ListUsers(filter models.UserFilter) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	return cloneUsers(&s.users, func(u models.User) bool {
		if filter.Role != nil && u.Role() != *filter.Role {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			return false
		}
		if filter.GradeLevel != "" || filter.Group != "" {
			p, ok := u.Student()
			if !ok {
				return false
			}
			if filter.GradeLevel != "" && p.GradeLevel != filter.GradeLevel {
				return false
			}
			if filter.Group != "" && p.Group != filter.Group {
				return false
			}
		}
		return true
	})
}

// ListByRole returns all users with the given role.
func (s *Store) ListByRole(role models.UserRole) []models.User {
	return s.ListUsers(models.UserFilter{Role: &role})
}

// StudentsBy returns students filtered by the optional grade level and group.
// Empty filters match everything.
func (s *Store) StudentsBy(gradeLevel, group string) []models.User {
	role := models.RoleStudent
	return s.ListUsers(models.UserFilter{Role: &role, GradeLevel: gradeLevel, Group: group})
}

// GetUser returns the user with id.
func (s *Store) GetUser(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(id)
	if !ok {
		return models.User{}, appErrors.NotFound("user not found")
	}
	return u.Clone(), nil
}

// FindUserByCredentials returns the user whose email matches exactly and whose
// credential hash the verifier accepts for password. Verification runs
// outside the lock since hash comparison is deliberately slow.
func (s *Store) FindUserByCredentials(email, password string, verifier CredentialVerifier) (models.User, bool) {
	s.mu.RLock()
	var match models.User
	found := false
	s.users.each(func(u models.User) bool {
		if u.Email == email {
			match = u.Clone()
			found = true
		}
		return !found
	})
	s.mu.RUnlock()

	if !found || verifier == nil || !verifier.Verify(match.PasswordHash, password) {
		return models.User{}, false
	}
	return match, true
}

// SubjectsForTeacher returns the subjects in the teacher's set, in subject
// insertion order. Unknown users and non-teachers yield an empty slice.
func (s *Store) SubjectsForTeacher(teacherID string) []models.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.get(teacherID)
	if !ok {
		return []models.Subject{}
	}
	profile, ok := u.Teacher()
	if !ok {
		return []models.Subject{}
	}
	return filter(&s.subjects, func(sub models.Subject) bool {
		return profile.Teaches(sub.ID)
	}, identity[models.Subject])
}

// CreateUser validates and appends a new user.
func (s *Store) CreateUser(fields UserFields) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(fields.Name)
	email := strings.TrimSpace(fields.Email)
	if name == "" {
		return models.User{}, appErrors.Validation("name is required")
	}
	if email == "" {
		return models.User{}, appErrors.Validation("email is required")
	}
	if fields.PasswordHash == "" {
		return models.User{}, appErrors.Validation("password is required")
	}
	if s.emailTaken(email, "") {
		return models.User{}, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	}

	var subjectIDs []string
	if fields.Role == models.RoleTeacher {
		ids, err := s.checkSubjects(fields.SubjectIDs)
		if err != nil {
			return models.User{}, err
		}
		subjectIDs = ids
	}
	profile, err := s.buildProfile(fields.Role, fields.GradeLevel, fields.Group, subjectIDs, true)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           s.users.nextID(),
		Name:         name,
		Email:        email,
		PasswordHash: fields.PasswordHash,
		Profile:      profile,
	}
	s.users.put(user.ID, user)
	return user.Clone(), nil
}

// UpdateUser merges patch into the user with id. When the role changes the old
// role's attributes are dropped and the new role starts from the values in
// the patch; teachers default to an empty subject set.
func (s *Store) UpdateUser(id string, patch UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users.get(id)
	if !ok {
		return models.User{}, appErrors.NotFound("user not found")
	}
	updated := current.Clone()

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.User{}, appErrors.Validation("name is required")
		}
		updated.Name = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return models.User{}, appErrors.Validation("email is required")
		}
		if s.emailTaken(email, id) {
			return models.User{}, appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
		updated.Email = email
	}
	if patch.PasswordHash != nil && *patch.PasswordHash != "" {
		updated.PasswordHash = *patch.PasswordHash
	}

	role := current.Role()
	if patch.Role != nil {
		role = *patch.Role
	}

	var gradeLevel, group string
	var subjectIDs []string
	if role == current.Role() {
		switch p := current.Profile.(type) {
		case models.StudentProfile:
			gradeLevel, group = p.GradeLevel, p.Group
		case models.TeacherProfile:
			subjectIDs = p.SubjectIDs
		}
	}
	if patch.GradeLevel != nil {
		gradeLevel = *patch.GradeLevel
	}
	if patch.Group != nil {
		group = *patch.Group
	}
	if patch.SubjectIDs != nil && role == models.RoleTeacher {
		ids, err := s.checkSubjects(*patch.SubjectIDs)
		if err != nil {
			return models.User{}, err
		}
		subjectIDs = ids
	}

	profile, err := s.buildProfile(role, gradeLevel, group, subjectIDs, false)
	if err != nil {
		return models.User{}, err
	}
	updated.Profile = profile

	s.users.put(id, updated)
	return updated.Clone(), nil
}

// SetTeacherSubjects replaces the teacher's full subject set.
func (s *Store) SetTeacherSubjects(teacherID string, subjectIDs []string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.get(teacherID)
	if !ok || u.Role() != models.RoleTeacher {
		return models.User{}, appErrors.NotFound("teacher not found")
	}
	ids, err := s.checkSubjects(subjectIDs)
	if err != nil {
		return models.User{}, err
	}
	u = u.Clone()
	u.Profile = models.TeacherProfile{SubjectIDs: ids}
	s.users.put(teacherID, u)
	return u.Clone(), nil
}

// DeleteUser removes the user unless a grade, schedule or curriculum topic
// still references it.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(id); !ok {
		return appErrors.NotFound("user not found")
	}
	if s.grades.some(func(g models.Grade) bool { return g.StudentID == id || g.TeacherID == id }) {
		return appErrors.Clone(appErrors.ErrReferenced, "user has grades")
	}
	if s.schedules.some(func(sc models.Schedule) bool { return sc.TeacherID == id }) {
		return appErrors.Clone(appErrors.ErrReferenced, "user has scheduled classes")
	}
	if s.topics.some(func(t models.CurriculumTopic) bool { return t.ProfesorID == id }) {
		return appErrors.Clone(appErrors.ErrReferenced, "user has curriculum topics")
	}
	s.users.remove(id)
	return nil
}

func (s *Store) emailTaken(email, excludeID string) bool {
	return s.users.some(func(u models.User) bool {
		return u.Email == email && u.ID != excludeID
	})
}

// buildProfile validates the role-specific attributes. Student grade level and
// group are mandatory only when strict is set; when present they must be
// known values. Teacher subject ids are checked by the caller.
func (s *Store) buildProfile(role models.UserRole, gradeLevel, group string, subjectIDs []string, strict bool) (models.Profile, error) {
	if !role.Valid() {
		return nil, appErrors.Validation("role must be one of admin, teacher, student")
	}
	switch role {
	case models.RoleStudent:
		if strict && (gradeLevel == "" || group == "") {
			return nil, appErrors.Validation("students require grade and group")
		}
		if gradeLevel != "" && !models.ValidGradeLevel(gradeLevel) {
			return nil, appErrors.Validation("unknown grade level")
		}
		if group != "" && !models.ValidGroup(group) {
			return nil, appErrors.Validation("unknown group")
		}
	}
	profile, err := models.NewProfile(role, gradeLevel, group, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role")
	}
	return profile, nil
}

// checkSubjects verifies every id exists and drops duplicates, keeping order.
func (s *Store) checkSubjects(subjectIDs []string) ([]string, error) {
	ids := make([]string, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		if _, ok := s.subjects.get(id); !ok {
			return nil, appErrors.NotFound("subject " + id + " not found")
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func cloneUsers(c *collection[models.User], pred func(models.User) bool) []models.User {
	return filter(c, pred, models.User.Clone)
}

func identity[T any](v T) T { return v }
