package models

// SubjectAverage is the mean grade value recorded for a subject.
type SubjectAverage struct {
	SubjectID   string  `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	Average     float64 `json:"average"`
	Count       int     `json:"count"`
}

// AdminDashboard summarises the whole school.
type AdminDashboard struct {
	UsersByRole      map[UserRole]int `json:"usersByRole"`
	TotalUsers       int              `json:"totalUsers"`
	TotalSubjects    int              `json:"totalSubjects"`
	TotalGrades      int              `json:"totalGrades"`
	AverageBySubject []SubjectAverage `json:"averageBySubject"`
}

// TeacherDashboard summarises the grades a teacher has recorded.
type TeacherDashboard struct {
	TeacherID        string           `json:"teacherId"`
	TotalStudents    int              `json:"totalStudents"`
	TotalSubjects    int              `json:"totalSubjects"`
	GradesRecorded   int              `json:"gradesRecorded"`
	AverageBySubject []SubjectAverage `json:"averageBySubject"`
}

// StudentDashboard summarises a student's grades.
type StudentDashboard struct {
	StudentID      string           `json:"studentId"`
	GradesRecorded int              `json:"gradesRecorded"`
	Average        float64          `json:"average"`
	Highest        *int             `json:"highest,omitempty"`
	BySubject      []SubjectAverage `json:"bySubject"`
}
