package models

import "slices"

// Period labels for the three academic terms.
const (
	PeriodFirst  = "1er Trimestre"
	PeriodSecond = "2do Trimestre"
	PeriodThird  = "3er Trimestre"
)

// Periods lists the academic terms in calendar order.
var Periods = []string{PeriodFirst, PeriodSecond, PeriodThird}

// ValidPeriod reports whether p is a known period label.
func ValidPeriod(p string) bool {
	return slices.Contains(Periods, p)
}

// Score bounds for a grade value.
const (
	MinGradeValue = 0
	MaxGradeValue = 100
)

// Grade is a score a teacher assigns a student for a subject in a period.
type Grade struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	SubjectID string `json:"subjectId"`
	TeacherID string `json:"teacherId"`
	Value     int    `json:"value"`
	Period    string `json:"period"`
	Date      string `json:"date"`
}

// GradeWithSubject joins a grade with its subject.
type GradeWithSubject struct {
	Grade
	Subject Subject `json:"subject"`
}

// GradeFilter allows querying of grade entries.
type GradeFilter struct {
	StudentID string
	TeacherID string
	SubjectID string
	Period    string
}

// SubjectPeriodScores summarises one subject of a student's report card.
// A nil period score means nothing was recorded for that term.
type SubjectPeriodScores struct {
	SubjectName string          `json:"subjectName"`
	Periods     map[string]*int `json:"periods"`
	Average     float64         `json:"average"`
}

// ReportCard maps subject id to the per-period summary.
type ReportCard map[string]SubjectPeriodScores
