// Package export serializes date lists as iCalendar feeds and CSV files.
package export

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
)

// Event is one all-day entry.
type Event struct {
	Date        calendar.Date
	Title       string
	Description string
	// Key identifies the series the event belongs to. Two events with the
	// same key and date get the same UID across exports. Defaults to Title.
	Key string
	// Alarm is an ISO 8601 trigger such as -P1D. Empty means no VALARM.
	Alarm string
}

// FromDates turns a date list into events sharing one title.
func FromDates(dates []calendar.Date, title, description string) []Event {
	events := make([]Event, len(dates))
	for i, d := range dates {
		events[i] = Event{Date: d, Title: title, Description: description}
	}
	return events
}

// CalendarOptions sets the calendar-level properties.
type CalendarOptions struct {
	Name    string        // X-WR-CALNAME, omitted when empty
	Refresh time.Duration // REFRESH-INTERVAL, omitted when zero
}

// UID returns the deterministic UID of an event.
func UID(e Event) string {
	key := e.Key
	if key == "" {
		key = e.Title
	}
	input := fmt.Sprintf(config.FormatHashInput, key, e.Date.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}

// BuildCalendar assembles a VCALENDAR of all-day VEVENTs. DTEND is the day
// after DTSTART as required for VALUE=DATE events.
func BuildCalendar(events []Event, opts CalendarOptions, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)
	if opts.Name != "" {
		// Extension props default to no value type, so SetText would add
		// VALUE=TEXT. Calendar clients expect the bare form.
		nameProp := ical.NewProp(config.PropXWRCalName)
		nameProp.Value = textEscaper.Replace(opts.Name)
		cal.Props.Set(nameProp)
	}
	if opts.Refresh > 0 {
		refreshProp := ical.NewProp(config.PropRefresh)
		refreshProp.SetDuration(opts.Refresh)
		cal.Props.Set(refreshProp)
	}

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, e := range events {
		if !e.Date.IsValid() {
			continue
		}
		title := e.Title
		if title == "" {
			title = config.FallbackEventTitle
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, UID(e))
		event.Props.Set(dtStampProp)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(e.Date.Time())
		event.Props.Set(dtStartProp)

		dtEndProp := ical.NewProp(config.PropDTEnd)
		dtEndProp.SetDate(e.Date.AddDays(1).Time())
		event.Props.Set(dtEndProp)

		event.Props.SetText(config.PropSummary, title)
		if e.Description != "" {
			event.Props.SetText(config.PropDescription, e.Description)
		}
		event.Props.SetText(config.PropStatus, config.ICalStatus)
		event.Props.SetText(config.PropTransp, config.ICalTransparent)
		if e.Alarm != "" {
			addAlarm(event, e.Alarm, title)
		}

		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// addAlarm appends a DISPLAY alarm to the event.
var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value so no VALUE=TEXT parameter is emitted.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// WriteICS encodes the events. A list without valid events still produces a
// minimal valid VCALENDAR so subscribers do not flag the feed as broken.
func WriteICS(w io.Writer, events []Event, opts CalendarOptions, now time.Time) error {
	cal := BuildCalendar(events, opts, now)
	if len(cal.Children) == 0 {
		_, err := io.WriteString(w, config.StubVCalendar)
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return nil
}

// ICS is WriteICS into a byte slice.
func ICS(events []Event, opts CalendarOptions, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteICS(&buf, events, opts, now); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
