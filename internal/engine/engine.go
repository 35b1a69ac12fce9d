package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/export"
	"github.com/tartampluch/go-koyomi/internal/holiday"
)

// SyncConfig lists the external sources of a synchronization. Every source
// is optional; with none configured the feed holds the computed holidays.
type SyncConfig struct {
	HolidayCSVURL      string // Cabinet Office syukujitsu.csv, takes precedence over the path
	HolidayCSVPath     string
	CustomHolidaysPath string // YAML list of company holidays

	ContactsMode    string // "", config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP Basic Auth username
	WebPass         string // HTTP Basic Auth password
	ReminderTrigger string // ISO 8601 duration (e.g. "-P1D") for birthday alarms
}

// SyncResult is the outcome of RunSync.
type SyncResult struct {
	ICS            []byte
	Holidays       *holiday.Overlay
	Contacts       []Contact
	BirthdaysToday int
	Events         int
}

// Generator loads the holiday and contact sources and renders the feed.
type Generator struct {
	Clock   calendar.Clock
	Fetcher Fetcher

	// FeedName is the X-WR-CALNAME of the feed. Defaults to config.ICalCalName.
	FeedName string

	// FormatSummary lets the caller inject localized birthday titles.
	// ageKnown is false when the birth year is unknown.
	FormatSummary func(name string, age int, ageKnown bool) string
}

// RunSync fetches the sources, builds the holiday overlay and encodes the
// iCalendar feed for the current year and its neighbours.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (*SyncResult, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.ContactsMode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	official, err := g.loadOfficial(ctx, cfg)
	if err != nil {
		return nil, g.wrap(ctx, config.ErrHolidayCSV, err)
	}
	custom, err := loadCustom(cfg.CustomHolidaysPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCustomHolidays, err)
	}
	overlay := holiday.NewOverlay(official, custom)

	now := g.Clock.Now()
	today := calendar.FromTime(now)

	var contacts []Contact
	processed := 0
	if cfg.ContactsMode != "" {
		reader, err := g.acquireContacts(ctx, cfg)
		if err != nil {
			return nil, g.wrap(ctx, config.ErrContactsSource, err)
		}
		contacts, processed, err = parseContacts(ctx, reader, today)
		_ = reader.Close()
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events, birthdaysToday := g.feedEvents(overlay, contacts, today, cfg.ReminderTrigger)

	name := g.FeedName
	if name == "" {
		name = config.ICalCalName
	}
	ics, err := export.ICS(events, export.CalendarOptions{Name: name, Refresh: config.DefaultICalRefresh}, now)
	if err != nil {
		return nil, err
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyHolidays, len(official)),
			slog.Int(config.LogKeyTotal, processed),
			slog.Int(config.LogKeyFound, len(contacts)),
			slog.Int(config.LogKeyToday, birthdaysToday),
		),
	)
	log.Debug(config.MsgSyncSuccess, config.LogKeyDuration, time.Since(start).Milliseconds())

	return &SyncResult{
		ICS:            ics,
		Holidays:       overlay,
		Contacts:       contacts,
		BirthdaysToday: birthdaysToday,
		Events:         len(events),
	}, nil
}

// wrap returns the context error untouched when the context ended.
func (g *Generator) wrap(ctx context.Context, prefix string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// loadOfficial returns nil when no official source is configured. Rows that
// fail to parse are logged; the rest are used.
func (g *Generator) loadOfficial(ctx context.Context, cfg SyncConfig) ([]holiday.Holiday, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	switch {
	case cfg.HolidayCSVURL != "":
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		rc, err = g.Fetcher.Fetch(ctx, cfg.HolidayCSVURL, "", "")
	case cfg.HolidayCSVPath != "":
		rc, err = os.Open(cfg.HolidayCSVPath)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	hs, err := ParseHolidayCSV(rc)
	if err != nil && len(hs) == 0 {
		return nil, err
	}
	if err != nil {
		slog.Warn(config.MsgSkippedRow,
			config.LogKeyComponent, config.CompHoliday,
			config.LogKeyError, err)
	}
	slog.Info(config.MsgHolidaysRead,
		config.LogKeyComponent, config.CompHoliday,
		config.LogKeyRows, len(hs))
	return hs, nil
}

// loadCustom reads the company holiday file. Invalid entries are logged and
// dropped.
func loadCustom(path string) ([]holiday.Holiday, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	hs, err := holiday.LoadCustom(f)
	if err != nil {
		slog.Warn(config.ErrCustomHolidays,
			config.LogKeyComponent, config.CompHoliday,
			config.LogKeyFile, path,
			config.LogKeyError, err)
	}
	slog.Info(config.MsgCustomLoaded,
		config.LogKeyComponent, config.CompHoliday,
		config.LogKeyCount, len(hs))
	return hs, nil
}

// acquireContacts opens the vCard source selected by the mode.
func (g *Generator) acquireContacts(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.ContactsMode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.ContactsMode)
	}
}

// feedEvents lists the holidays and birthdays of the years around today.
// No birthday event is produced for a year before the person was born.
func (g *Generator) feedEvents(p holiday.Provider, contacts []Contact, today calendar.Date, reminder string) ([]export.Event, int) {
	var events []export.Event
	birthdaysToday := 0

	for y := today.Year - config.FeedYearsAround; y <= today.Year+config.FeedYearsAround; y++ {
		for _, h := range p.ForYear(y) {
			events = append(events, export.Event{Date: h.Date, Title: h.Name})
		}

		for _, c := range contacts {
			if c.YearKnown && y < c.Birth.Year {
				continue
			}
			age := 0
			if c.YearKnown {
				age = y - c.Birth.Year
			}
			date := c.BirthdayOn(y)
			if date == today {
				birthdaysToday++
				slog.Info(config.MsgBdayToday,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyName, c.Name,
					config.LogKeyDOB, c.Birth.String())
			}
			events = append(events, export.Event{
				Date:  date,
				Title: g.summary(c.Name, age, c.YearKnown),
				Key:   c.UID,
				Alarm: reminder,
			})
		}
	}
	return events, birthdaysToday
}

func (g *Generator) summary(name string, age int, ageKnown bool) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(name, age, ageKnown)
	}
	if ageKnown {
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
	return fmt.Sprintf(config.FallbackSummary, name)
}
