package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

func TestListByRoleAndStudentsBy(t *testing.T) {
	s := seeded(t)

	assert.Len(t, s.ListByRole(models.RoleTeacher), 2)
	assert.Len(t, s.ListByRole(models.RoleAdmin), 1)
	assert.Len(t, s.StudentsBy("", ""), 4)

	firstGrade := s.StudentsBy("1°", "")
	require.Len(t, firstGrade, 2)
	assert.Equal(t, "4", firstGrade[0].ID)
	assert.Equal(t, "5", firstGrade[1].ID)

	one := s.StudentsBy("2°", "2")
	require.Len(t, one, 1)
	assert.Equal(t, "Laura Gómez", one[0].Name)

	assert.Len(t, s.StudentsBy("", "1"), 2)
	assert.Empty(t, s.StudentsBy("11°", ""))
}

func TestListUsersSearch(t *testing.T) {
	s := seeded(t)

	users := s.ListUsers(models.UserFilter{Search: "LÓPEZ"})
	require.Len(t, users, 1)
	assert.Equal(t, "3", users[0].ID)

	users = s.ListUsers(models.UserFilter{Search: "student"})
	assert.Len(t, users, 4)
}

func TestFindUserByCredentials(t *testing.T) {
	s := seeded(t)

	user, ok := s.FindUserByCredentials("teacher1@example.com", "teacher123", plainHasher{})
	require.True(t, ok)
	assert.Equal(t, "2", user.ID)

	_, ok = s.FindUserByCredentials("teacher1@example.com", "wrong", plainHasher{})
	assert.False(t, ok)

	// emails match exactly as stored
	_, ok = s.FindUserByCredentials("TEACHER1@example.com", "teacher123", plainHasher{})
	assert.False(t, ok)

	_, ok = s.FindUserByCredentials("nobody@example.com", "teacher123", plainHasher{})
	assert.False(t, ok)
}

func TestSubjectsForTeacher(t *testing.T) {
	s := seeded(t)

	subjects := s.SubjectsForTeacher("3")
	require.Len(t, subjects, 2)
	assert.Equal(t, "Historia", subjects[0].Name)
	assert.Equal(t, "Literatura", subjects[1].Name)

	assert.Empty(t, s.SubjectsForTeacher("4"))
	assert.Empty(t, s.SubjectsForTeacher("999"))
}

func TestCreateUserRoundTrip(t *testing.T) {
	s := seeded(t)

	created, err := s.CreateUser(UserFields{
		Name:         "Sofía Ruiz",
		Email:        "sofia@example.com",
		PasswordHash: "hashed:secret",
		Role:         models.RoleStudent,
		GradeLevel:   "3°",
		Group:        "2",
		SubjectIDs:   []string{"1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "8", created.ID)

	got, err := s.GetUser(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, models.StudentProfile{GradeLevel: "3°", Group: "2"}, got.Profile)
}

func TestCreateUserValidation(t *testing.T) {
	s := seeded(t)

	cases := []struct {
		name   string
		fields UserFields
		target *appErrors.Error
	}{
		{"missing name", UserFields{Email: "x@example.com", PasswordHash: "h", Role: models.RoleAdmin}, appErrors.ErrValidation},
		{"missing email", UserFields{Name: "X", PasswordHash: "h", Role: models.RoleAdmin}, appErrors.ErrValidation},
		{"missing password", UserFields{Name: "X", Email: "x@example.com", Role: models.RoleAdmin}, appErrors.ErrValidation},
		{"unknown role", UserFields{Name: "X", Email: "x@example.com", PasswordHash: "h", Role: "janitor"}, appErrors.ErrValidation},
		{"student without group", UserFields{Name: "X", Email: "x@example.com", PasswordHash: "h", Role: models.RoleStudent, GradeLevel: "1°"}, appErrors.ErrValidation},
		{"unknown grade level", UserFields{Name: "X", Email: "x@example.com", PasswordHash: "h", Role: models.RoleStudent, GradeLevel: "12°", Group: "1"}, appErrors.ErrValidation},
		{"duplicate email", UserFields{Name: "X", Email: "admin@example.com", PasswordHash: "h", Role: models.RoleAdmin}, appErrors.ErrConflict},
		{"unknown subject", UserFields{Name: "X", Email: "x@example.com", PasswordHash: "h", Role: models.RoleTeacher, SubjectIDs: []string{"42"}}, appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateUser(tc.fields)
			assert.ErrorIs(t, err, tc.target)
		})
	}
	assert.Len(t, s.ListUsers(models.UserFilter{}), 7)
}

func TestCreateTeacherDropsDuplicateSubjects(t *testing.T) {
	s := seeded(t)

	teacher, err := s.CreateUser(UserFields{Name: "T", Email: "t@example.com", PasswordHash: "h", Role: models.RoleTeacher, SubjectIDs: []string{"2", "1", "2"}})
	require.NoError(t, err)
	p, ok := teacher.Teacher()
	require.True(t, ok)
	assert.Equal(t, []string{"2", "1"}, p.SubjectIDs)
}

func TestUpdateUserTeacherToStudentStripsSubjects(t *testing.T) {
	s := seeded(t)

	updated, err := s.UpdateUser("3", UserPatch{Role: ptr(models.RoleStudent)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, updated.Role())
	assert.Equal(t, models.StudentProfile{}, updated.Profile)

	raw, err := json.Marshal(updated)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, body, "subjects")
	assert.NotContains(t, body, "grade")
	assert.NotContains(t, body, "group")
	assert.NotContains(t, body, "PasswordHash")
	assert.Equal(t, "student", body["role"])
}

func TestUpdateUserStudentToTeacherDefaultsToNoSubjects(t *testing.T) {
	s := seeded(t)

	updated, err := s.UpdateUser("7", UserPatch{Role: ptr(models.RoleTeacher)})
	require.NoError(t, err)
	p, ok := updated.Teacher()
	require.True(t, ok)
	assert.Empty(t, p.SubjectIDs)

	raw, err := json.Marshal(updated)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subjects":[]`)
	assert.NotContains(t, string(raw), `"grade"`)
}

func TestUpdateUserKeepsRoleAttributes(t *testing.T) {
	s := seeded(t)

	updated, err := s.UpdateUser("4", UserPatch{Name: ptr("Carlos R."), Group: ptr("3")})
	require.NoError(t, err)
	assert.Equal(t, "Carlos R.", updated.Name)
	assert.Equal(t, models.StudentProfile{GradeLevel: "1°", Group: "3"}, updated.Profile)
	assert.Equal(t, "hashed:student123", updated.PasswordHash)

	updated, err = s.UpdateUser("2", UserPatch{PasswordHash: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "hashed:teacher123", updated.PasswordHash)
	p, _ := updated.Teacher()
	assert.Equal(t, []string{"1", "2"}, p.SubjectIDs)
}

func TestUpdateUserErrors(t *testing.T) {
	s := seeded(t)

	_, err := s.UpdateUser("999", UserPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = s.UpdateUser("4", UserPatch{Email: ptr("student2@example.com")})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = s.UpdateUser("4", UserPatch{Email: ptr("student1@example.com")})
	assert.NoError(t, err)

	_, err = s.UpdateUser("4", UserPatch{GradeLevel: ptr("13°")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	// a rejected update leaves the user untouched
	user, err := s.GetUser("4")
	require.NoError(t, err)
	assert.Equal(t, models.StudentProfile{GradeLevel: "1°", Group: "1"}, user.Profile)
}

func TestUpdateUserIgnoresSubjectsForNonTeachers(t *testing.T) {
	s := seeded(t)

	updated, err := s.UpdateUser("3", UserPatch{
		Role:       ptr(models.RoleStudent),
		GradeLevel: ptr("2°"),
		Group:      ptr("1"),
		SubjectIDs: &[]string{"404"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StudentProfile{GradeLevel: "2°", Group: "1"}, updated.Profile)

	_, err = s.UpdateUser("2", UserPatch{SubjectIDs: &[]string{"404"}})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCreateUserTrimsNameAndEmail(t *testing.T) {
	s := New()

	created, err := s.CreateUser(UserFields{Name: "  Sofía Ruiz ", Email: " sofia@example.com ", PasswordHash: "h", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Sofía Ruiz", created.Name)
	assert.Equal(t, "sofia@example.com", created.Email)

	_, err = s.CreateUser(UserFields{Name: "Otra", Email: "sofia@example.com", PasswordHash: "h", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestSetTeacherSubjectsReplacesSet(t *testing.T) {
	s := seeded(t)

	updated, err := s.SetTeacherSubjects("2", []string{"5"})
	require.NoError(t, err)
	p, _ := updated.Teacher()
	assert.Equal(t, []string{"5"}, p.SubjectIDs)

	subjects := s.SubjectsForTeacher("2")
	require.Len(t, subjects, 1)
	assert.Equal(t, "Inglés", subjects[0].Name)

	_, err = s.SetTeacherSubjects("4", []string{"1"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = s.SetTeacherSubjects("999", nil)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = s.SetTeacherSubjects("2", []string{"77"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDeleteUserReferentialIntegrity(t *testing.T) {
	s := seeded(t)

	// student with grades
	err := s.DeleteUser("4")
	assert.ErrorIs(t, err, appErrors.ErrReferenced)
	// teacher with grades, schedules and topics
	err = s.DeleteUser("2")
	assert.ErrorIs(t, err, appErrors.ErrReferenced)
	assert.Len(t, s.ListUsers(models.UserFilter{}), 7)

	// student 7 has no grades
	require.NoError(t, s.DeleteUser("7"))
	_, err = s.GetUser("7")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.ErrorIs(t, s.DeleteUser("7"), appErrors.ErrNotFound)
}

func TestDeleteUserBlockedByScheduleOnly(t *testing.T) {
	s := seeded(t)

	teacher, err := s.CreateUser(UserFields{Name: "T", Email: "t@example.com", PasswordHash: "h", Role: models.RoleTeacher})
	require.NoError(t, err)
	sc, err := s.CreateSchedule(ScheduleFields{GradeLevel: "5°", Group: "1", DayOfWeek: 3, TimeSlot: 4, SubjectID: "1", TeacherID: teacher.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteUser(teacher.ID), appErrors.ErrReferenced)
	require.NoError(t, s.DeleteSchedule(sc.ID))
	assert.NoError(t, s.DeleteUser(teacher.ID))
}

func TestDeleteUserBlockedByTopicOnly(t *testing.T) {
	s := seeded(t)

	teacher, err := s.CreateUser(UserFields{Name: "T", Email: "t@example.com", PasswordHash: "h", Role: models.RoleTeacher})
	require.NoError(t, err)
	topic, err := s.CreateTopic(TopicFields{Titulo: "Poesía", MateriaID: "4", ProfesorID: teacher.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteUser(teacher.ID), appErrors.ErrReferenced)
	require.NoError(t, s.DeleteTopic(topic.ID))
	assert.NoError(t, s.DeleteUser(teacher.ID))
}
