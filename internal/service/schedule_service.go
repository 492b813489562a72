package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/store"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/export"
)

type scheduleStore interface {
	ListSchedules(filter models.ScheduleFilter) []models.Schedule
	GetSchedule(id string) (models.Schedule, error)
	Timetable(gradeLevel, group string) models.Timetable
	CreateSchedule(fields store.ScheduleFields) (models.Schedule, error)
	DeleteSchedule(id string) error
}

// CreateScheduleRequest books a weekly class.
type CreateScheduleRequest struct {
	Grade     string `json:"grade" validate:"required"`
	Group     string `json:"group" validate:"required"`
	DayOfWeek int    `json:"dayOfWeek" validate:"required,min=1,max=5"`
	TimeSlot  int    `json:"timeSlot" validate:"required,min=1,max=8"`
	SubjectID string `json:"subjectId" validate:"required"`
	TeacherID string `json:"teacherId" validate:"required"`
}

// ScheduleConfig anchors the iCalendar export on the school calendar.
type ScheduleConfig struct {
	// TermStart is the Monday of the first school week.
	TermStart time.Time
	// Weeks bounds the recurrence of exported classes.
	Weeks int
}

// Colombia does not observe daylight saving time.
var schoolZone = time.FixedZone("COT", -5*60*60)

// DefaultScheduleConfig starts the year on Monday 3 February 2025 and runs
// forty weeks.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{TermStart: time.Date(2025, time.February, 3, 0, 0, 0, 0, schoolZone), Weeks: 40}
}

// ScheduleService manages weekly timetables.
type ScheduleService struct {
	schedules scheduleStore
	cache     *CacheService
	deps      Dependencies
	cfg       ScheduleConfig
	calendar  *export.CalendarExporter
}

// NewScheduleService constructs the service. cache may be nil.
func NewScheduleService(schedules scheduleStore, cache *CacheService, cfg ScheduleConfig, deps Dependencies) *ScheduleService {
	def := DefaultScheduleConfig()
	if cfg.TermStart.IsZero() {
		cfg.TermStart = def.TermStart
	}
	if cfg.Weeks <= 0 {
		cfg.Weeks = def.Weeks
	}
	return &ScheduleService{
		schedules: schedules,
		cache:     cache,
		deps:      deps.withDefaults(),
		cfg:       cfg,
		calendar:  export.NewCalendarExporter("-//colegio-api//horario//ES", cfg.Weeks),
	}
}

func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	return s.schedules.ListSchedules(filter), nil
}

func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	sc, err := s.schedules.GetSchedule(id)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// Timetable returns the weekly view for a grade level and group.
func (s *ScheduleService) Timetable(ctx context.Context, grade, group string) (models.Timetable, bool, error) {
	if err := checkCohort(grade, group); err != nil {
		return models.Timetable{}, false, err
	}
	return cached(ctx, s.cache, timetableKey(grade, group), func() (models.Timetable, error) {
		return s.schedules.Timetable(grade, group), nil
	})
}

// Calendar renders the timetable as an iCalendar feed with one weekly
// recurring event per class. It returns the file name and body.
func (s *ScheduleService) Calendar(ctx context.Context, grade, group string) (string, []byte, error) {
	tt, _, err := s.Timetable(ctx, grade, group)
	if err != nil {
		return "", nil, err
	}

	cohort := fmt.Sprintf("%s - %s", grade, group)
	var events []export.CalendarEvent
	for _, day := range tt.Days {
		date := s.cfg.TermStart.AddDate(0, 0, day.DayOfWeek-1)
		for _, entry := range day.Entries {
			start, end, err := slotBounds(date, entry.Hours)
			if err != nil {
				return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid time slot")
			}
			events = append(events, export.CalendarEvent{
				UID:         fmt.Sprintf("schedule-%s@colegio-api", entry.ID),
				Summary:     entry.SubjectName,
				Description: entry.TeacherName,
				Location:    cohort,
				Start:       start,
				End:         end,
			})
		}
	}

	body, err := s.calendar.Render("Horario "+cohort, events)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar")
	}
	name := fmt.Sprintf("horario_%s_%s.%s", strings.TrimSuffix(grade, "°"), group, s.calendar.Extension())
	return name, body, nil
}

// Create books a class into a free slot.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.deps.validate(req, "invalid schedule payload"); err != nil {
		return nil, err
	}
	sc, err := s.schedules.CreateSchedule(store.ScheduleFields{
		GradeLevel: req.Grade,
		Group:      req.Group,
		DayOfWeek:  req.DayOfWeek,
		TimeSlot:   req.TimeSlot,
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
	})
	if err != nil {
		return nil, err
	}
	s.deps.mutated("schedule", "created", sc.ID, timetableKey(sc.GradeLevel, sc.Group))
	return &sc, nil
}

// Delete frees a slot.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	sc, err := s.schedules.GetSchedule(id)
	if err != nil {
		return err
	}
	if err := s.schedules.DeleteSchedule(id); err != nil {
		return err
	}
	s.deps.mutated("schedule", "deleted", id, timetableKey(sc.GradeLevel, sc.Group))
	return nil
}

func checkCohort(grade, group string) error {
	if !models.ValidGradeLevel(grade) {
		return appErrors.Validation("grade must be a known grade level")
	}
	if !models.ValidGroup(group) {
		return appErrors.Validation("group must be one of 1, 2, 3")
	}
	return nil
}

func timetableKey(grade, group string) string {
	return cacheKeyTimetable + grade + ":" + group
}

// slotBounds turns a range such as "6:45-7:30" into instants on date.
func slotBounds(date time.Time, hours string) (time.Time, time.Time, error) {
	from, to, ok := strings.Cut(hours, "-")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed range %q", hours)
	}
	start, err := clockOn(date, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := clockOn(date, to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func clockOn(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
