package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Profile carries the role-specific attributes of a user. Only the three
// implementations below satisfy it.
type Profile interface {
	Role() UserRole
	clone() Profile
}

// AdminProfile has no role-specific attributes.
type AdminProfile struct{}

// Role implements Profile.
func (AdminProfile) Role() UserRole { return RoleAdmin }

func (p AdminProfile) clone() Profile { return p }

// TeacherProfile lists the subjects a teacher is authorized to grade.
type TeacherProfile struct {
	SubjectIDs []string
}

// Role implements Profile.
func (TeacherProfile) Role() UserRole { return RoleTeacher }

func (p TeacherProfile) clone() Profile {
	ids := make([]string, len(p.SubjectIDs))
	copy(ids, p.SubjectIDs)
	return TeacherProfile{SubjectIDs: ids}
}

// Teaches reports whether the subject is in the teacher's set.
func (p TeacherProfile) Teaches(subjectID string) bool {
	return slices.Contains(p.SubjectIDs, subjectID)
}

// StudentProfile places a student in a grade level and group.
type StudentProfile struct {
	GradeLevel string
	Group      string
}

// Role implements Profile.
func (StudentProfile) Role() UserRole { return RoleStudent }

func (p StudentProfile) clone() Profile { return p }

// NewProfile builds the profile for role. Attributes that do not apply to the
// role are dropped; teachers default to an empty subject set.
func NewProfile(role UserRole, gradeLevel, group string, subjectIDs []string) (Profile, error) {
	switch role {
	case RoleAdmin:
		return AdminProfile{}, nil
	case RoleTeacher:
		ids := make([]string, 0, len(subjectIDs))
		ids = append(ids, subjectIDs...)
		return TeacherProfile{SubjectIDs: ids}, nil
	case RoleStudent:
		return StudentProfile{GradeLevel: gradeLevel, Group: group}, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

// User represents an application user.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Profile      Profile
}

// Role returns the role derived from the profile.
func (u User) Role() UserRole {
	if u.Profile == nil {
		return RoleAdmin
	}
	return u.Profile.Role()
}

// Teacher returns the teacher profile when the user is a teacher.
func (u User) Teacher() (TeacherProfile, bool) {
	p, ok := u.Profile.(TeacherProfile)
	return p, ok
}

// Student returns the student profile when the user is a student.
func (u User) Student() (StudentProfile, bool) {
	p, ok := u.Profile.(StudentProfile)
	return p, ok
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	if u.Profile != nil {
		u.Profile = u.Profile.clone()
	}
	return u
}

type userJSON struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     UserRole  `json:"role"`
	Grade    string    `json:"grade,omitempty"`
	Group    string    `json:"group,omitempty"`
	Subjects *[]string `json:"subjects,omitempty"`
}

// MarshalJSON flattens the profile into the user record. The credential hash
// is never serialised.
func (u User) MarshalJSON() ([]byte, error) {
	out := userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role()}
	switch p := u.Profile.(type) {
	case TeacherProfile:
		ids := p.SubjectIDs
		if ids == nil {
			ids = []string{}
		}
		out.Subjects = &ids
	case StudentProfile:
		out.Grade = p.GradeLevel
		out.Group = p.Group
	}
	return json.Marshal(out)
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	Search     string
	GradeLevel string
	Group      string
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}
