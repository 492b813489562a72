package export

import (
	"errors"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is a class meeting that repeats every week.
type CalendarEvent struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// CalendarExporter renders weekly recurring events as an iCalendar feed.
type CalendarExporter struct {
	ProductID string
	// Weeks bounds the recurrence; zero repeats indefinitely.
	Weeks int
	now   func() time.Time
}

// NewCalendarExporter constructs an iCalendar exporter.
func NewCalendarExporter(productID string, weeks int) *CalendarExporter {
	return &CalendarExporter{ProductID: productID, Weeks: weeks, now: time.Now}
}

func (e *CalendarExporter) ContentType() string { return "text/calendar; charset=utf-8" }

func (e *CalendarExporter) Extension() string { return "ics" }

// Render serialises the named calendar.
func (e *CalendarExporter) Render(name string, events []CalendarEvent) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	rule := "FREQ=WEEKLY"
	if e.Weeks > 0 {
		rule += ";COUNT=" + strconv.Itoa(e.Weeks)
	}

	stamp := e.now().UTC()
	for _, ev := range events {
		if ev.UID == "" {
			return nil, errors.New("calendar event requires a uid")
		}
		if !ev.End.After(ev.Start) {
			return nil, errors.New("calendar event must end after it starts")
		}
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(ev.Start)
		vevent.SetEndAt(ev.End)
		vevent.SetSummary(ev.Summary)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		vevent.AddRrule(rule)
	}
	return []byte(cal.Serialize()), nil
}
