package models

import (
	"fmt"
	"slices"
)

// GradeLevels enumerates the cohort labels, preschool through 11th.
var GradeLevels = []string{"Preescolar", "1°", "2°", "3°", "4°", "5°", "6°", "7°", "8°", "9°", "10°", "11°"}

// Groups enumerates the subdivisions within a grade level.
var Groups = []string{"1", "2", "3"}

// ValidGradeLevel reports whether g is a known grade level.
func ValidGradeLevel(g string) bool {
	return slices.Contains(GradeLevels, g)
}

// ValidGroup reports whether g is a known group.
func ValidGroup(g string) bool {
	return slices.Contains(Groups, g)
}

// Weekday and slot bounds for the weekly timetable.
const (
	FirstSchoolDay = 1
	LastSchoolDay  = 5
	FirstTimeSlot  = 1
	LastTimeSlot   = 8
)

var dayNames = map[int]string{1: "Lunes", 2: "Martes", 3: "Miércoles", 4: "Jueves", 5: "Viernes"}

var timeSlotRanges = map[int]string{
	1: "6:00-6:45",
	2: "6:45-7:30",
	3: "7:30-8:15",
	4: "8:15-9:00",
	5: "9:00-9:45",
	6: "10:15-11:00",
	7: "11:00-11:45",
	8: "11:45-12:30",
}

// DayName returns the Spanish weekday name for a school day.
func DayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return fmt.Sprintf("Día %d", day)
}

// TimeSlotRange returns the wall-clock range of a slot.
func TimeSlotRange(slot int) string {
	if r, ok := timeSlotRanges[slot]; ok {
		return r
	}
	return fmt.Sprintf("%dª hora", slot)
}

// Schedule places a subject and teacher in a weekly slot for a grade level and group.
type Schedule struct {
	ID         string `json:"id"`
	GradeLevel string `json:"grade"`
	Group      string `json:"group"`
	DayOfWeek  int    `json:"dayOfWeek"`
	TimeSlot   int    `json:"timeSlot"`
	SubjectID  string `json:"subjectId"`
	TeacherID  string `json:"teacherId"`
}

// SlotKey identifies the uniqueness tuple of a schedule entry.
type SlotKey struct {
	GradeLevel string
	Group      string
	DayOfWeek  int
	TimeSlot   int
}

// Slot returns the uniqueness tuple of the entry.
func (s Schedule) Slot() SlotKey {
	return SlotKey{GradeLevel: s.GradeLevel, Group: s.Group, DayOfWeek: s.DayOfWeek, TimeSlot: s.TimeSlot}
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	GradeLevel string
	Group      string
	TeacherID  string
}

// TimetableEntry is a schedule entry decorated for display.
type TimetableEntry struct {
	Schedule
	DayName     string `json:"dayName"`
	Hours       string `json:"hours"`
	SubjectName string `json:"subjectName"`
	TeacherName string `json:"teacherName"`
}

// TimetableDay groups the entries of one school day, ordered by slot.
type TimetableDay struct {
	DayOfWeek int              `json:"dayOfWeek"`
	DayName   string           `json:"dayName"`
	Entries   []TimetableEntry `json:"entries"`
}

// Timetable is the weekly view for a grade level and group.
type Timetable struct {
	GradeLevel string         `json:"grade"`
	Group      string         `json:"group"`
	Days       []TimetableDay `json:"days"`
}
