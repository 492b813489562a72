package store

import (
	"fmt"
	"sort"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// ScheduleFields are the attributes of a new schedule entry.
type ScheduleFields struct {
	GradeLevel string
	Group      string
	DayOfWeek  int
	TimeSlot   int
	SubjectID  string
	TeacherID  string
}

// ListSchedules returns entries matching the filter in insertion order.
func (s *Store) ListSchedules(f models.ScheduleFilter) []models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(&s.schedules, func(sc models.Schedule) bool {
		return (f.GradeLevel == "" || sc.GradeLevel == f.GradeLevel) &&
			(f.Group == "" || sc.Group == f.Group) &&
			(f.TeacherID == "" || sc.TeacherID == f.TeacherID)
	}, identity[models.Schedule])
}

// ScheduleFor returns every entry for the grade level and group.
func (s *Store) ScheduleFor(gradeLevel, group string) []models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(&s.schedules, func(sc models.Schedule) bool {
		return sc.GradeLevel == gradeLevel && sc.Group == group
	}, identity[models.Schedule])
}

// ScheduleForTeacher returns every entry taught by the teacher.
func (s *Store) ScheduleForTeacher(teacherID string) []models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(&s.schedules, func(sc models.Schedule) bool {
		return sc.TeacherID == teacherID
	}, identity[models.Schedule])
}

// GetSchedule returns the entry with id.
func (s *Store) GetSchedule(id string) (models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schedules.get(id)
	if !ok {
		return models.Schedule{}, appErrors.NotFound("schedule not found")
	}
	return sc, nil
}

// Timetable builds the weekly view for a grade level and group: one day per
// school day, entries ordered by slot and decorated with names and hours.
func (s *Store) Timetable(gradeLevel, group string) models.Timetable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tt := models.Timetable{GradeLevel: gradeLevel, Group: group}
	byDay := make(map[int][]models.TimetableEntry)
	s.schedules.each(func(sc models.Schedule) bool {
		if sc.GradeLevel != gradeLevel || sc.Group != group {
			return true
		}
		entry := models.TimetableEntry{
			Schedule: sc,
			DayName:  models.DayName(sc.DayOfWeek),
			Hours:    models.TimeSlotRange(sc.TimeSlot),
		}
		if sub, ok := s.subjects.get(sc.SubjectID); ok {
			entry.SubjectName = sub.Name
		}
		if teacher, ok := s.users.get(sc.TeacherID); ok {
			entry.TeacherName = teacher.Name
		}
		byDay[sc.DayOfWeek] = append(byDay[sc.DayOfWeek], entry)
		return true
	})
	for day := models.FirstSchoolDay; day <= models.LastSchoolDay; day++ {
		entries := byDay[day]
		sort.Slice(entries, func(i, j int) bool { return entries[i].TimeSlot < entries[j].TimeSlot })
		if entries == nil {
			entries = []models.TimetableEntry{}
		}
		tt.Days = append(tt.Days, models.TimetableDay{DayOfWeek: day, DayName: models.DayName(day), Entries: entries})
	}
	return tt
}

// CreateSchedule appends a new entry; the (grade, group, day, slot) tuple
// must be free.
func (s *Store) CreateSchedule(fields ScheduleFields) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := models.Schedule{
		GradeLevel: fields.GradeLevel,
		Group:      fields.Group,
		DayOfWeek:  fields.DayOfWeek,
		TimeSlot:   fields.TimeSlot,
		SubjectID:  fields.SubjectID,
		TeacherID:  fields.TeacherID,
	}
	if err := s.checkSchedule(sc); err != nil {
		return models.Schedule{}, err
	}
	slot := sc.Slot()
	if s.schedules.some(func(existing models.Schedule) bool { return existing.Slot() == slot }) {
		return models.Schedule{}, appErrors.Clone(appErrors.ErrConflict, "a class is already scheduled for this day and time slot")
	}
	sc.ID = s.schedules.nextID()
	s.schedules.put(sc.ID, sc)
	return sc, nil
}

// DeleteSchedule removes the entry with id.
func (s *Store) DeleteSchedule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.schedules.remove(id) {
		return appErrors.NotFound("schedule not found")
	}
	return nil
}

func (s *Store) checkSchedule(sc models.Schedule) error {
	if sc.SubjectID == "" || sc.TeacherID == "" {
		return appErrors.Validation("subjectId and teacherId are required")
	}
	if !models.ValidGradeLevel(sc.GradeLevel) {
		return appErrors.Validation("unknown grade level")
	}
	if !models.ValidGroup(sc.Group) {
		return appErrors.Validation("unknown group")
	}
	if sc.DayOfWeek < models.FirstSchoolDay || sc.DayOfWeek > models.LastSchoolDay {
		return appErrors.Validation(fmt.Sprintf("dayOfWeek must be between %d and %d", models.FirstSchoolDay, models.LastSchoolDay))
	}
	if sc.TimeSlot < models.FirstTimeSlot || sc.TimeSlot > models.LastTimeSlot {
		return appErrors.Validation(fmt.Sprintf("timeSlot must be between %d and %d", models.FirstTimeSlot, models.LastTimeSlot))
	}
	if _, ok := s.subjects.get(sc.SubjectID); !ok {
		return appErrors.NotFound("subject not found")
	}
	return s.checkRole(sc.TeacherID, models.RoleTeacher)
}
