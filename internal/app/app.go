// Package app keeps the server's feed, holiday overlay and contact list
// current by running the sync pipeline on a schedule.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/engine"
	"github.com/tartampluch/go-koyomi/internal/i18n"
	"github.com/zalando/go-keyring"
)

// Installer receives sync outcomes. *server.Server implements it.
type Installer interface {
	Apply(res *engine.SyncResult)
	RecordSyncFailure()
}

// App wires the settings to the generator and the server.
type App struct {
	Settings   *config.Settings
	Server     Installer
	Fetcher    engine.Fetcher
	Clock      calendar.Clock
	Translator *i18n.Translator

	// Password looks up the contacts password for a user name.
	Password func(user string) (string, error)
}

// New returns an App using the real clock and the OS keyring.
func New(settings *config.Settings, srv Installer, fetcher engine.Fetcher, tr *i18n.Translator) *App {
	return &App{
		Settings:   settings,
		Server:     srv,
		Fetcher:    fetcher,
		Clock:      calendar.RealClock{},
		Translator: tr,
		Password:   keyringPassword,
	}
}

func keyringPassword(user string) (string, error) {
	return keyring.Get(config.KeyringService, user)
}

// Run syncs once, then every RefreshInterval until ctx is done. A zero
// interval returns after the first sync.
func (a *App) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = a.Sync(ctx)

	interval := a.Settings.RefreshInterval()
	if interval <= config.DisabledInterval {
		log.Info(config.MsgRefreshOff)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			_ = a.Sync(ctx)
		}
	}
}

// Sync runs the pipeline once and hands the result to the server. Failures
// are counted and logged; the previous feed stays in place.
func (a *App) Sync(ctx context.Context) error {
	slog.Info(config.MsgSyncStarted,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyMode, a.Settings.ContactsMode,
	)

	gen := &engine.Generator{
		Clock:         a.Clock,
		Fetcher:       a.Fetcher,
		FeedName:      a.msg(config.TKeyFeedName, nil),
		FormatSummary: a.summaryFormatter(),
	}

	res, err := gen.RunSync(ctx, a.syncConfig())
	if err != nil {
		slog.Error(config.ErrSyncFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err,
		)
		a.Server.RecordSyncFailure()
		return err
	}

	a.Server.Apply(res)
	slog.Info(config.MsgSyncSuccess,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyToday, res.BirthdaysToday,
		config.LogKeyContacts, len(res.Contacts),
	)
	return nil
}

// syncConfig maps the settings onto the engine and resolves the password.
func (a *App) syncConfig() engine.SyncConfig {
	s := a.Settings
	cfg := engine.SyncConfig{
		HolidayCSVURL:      s.HolidayCSVURL,
		HolidayCSVPath:     s.HolidayCSVPath,
		CustomHolidaysPath: s.CustomHolidays,
		ContactsMode:       s.ContactsMode,
		LocalPath:          s.ContactsPath,
		WebURL:             s.ContactsURL,
		WebUser:            s.ContactsUser,
		ReminderTrigger:    s.ReminderTrigger,
	}

	if cfg.WebUser != "" && a.Password != nil {
		if p, err := a.Password(cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
			)
		}
	}
	return cfg
}

// summaryFormatter localizes birthday summaries, falling back to the
// built-in formats when the catalog has no entry.
func (a *App) summaryFormatter() func(name string, age int, ageKnown bool) string {
	return func(name string, age int, ageKnown bool) string {
		if ageKnown {
			if msg := a.msg(config.TKeyEvtBirthdayAge, map[string]any{"Name": name, "Age": age}); msg != "" {
				return msg
			}
			return fmt.Sprintf(config.FallbackSummaryAge, name, age)
		}
		if msg := a.msg(config.TKeyEvtBirthday, map[string]any{"Name": name}); msg != "" {
			return msg
		}
		return fmt.Sprintf(config.FallbackSummary, name)
	}
}

// msg returns "" when key has no translation.
func (a *App) msg(key string, data map[string]any) string {
	if s := a.Translator.MsgData(key, data); s != key {
		return s
	}
	return ""
}
