package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"cloudeng.io/errors"
	"github.com/joho/godotenv"
)

// Settings holds the runtime configuration read from KOYOMI_* environment variables.
type Settings struct {
	Port     string
	BindAddr string

	HistoryDriver string // HistoryMemory or HistorySQLite
	HistoryPath   string
	HistoryMax    int

	HolidayCSVURL  string
	HolidayCSVPath string
	CustomHolidays string

	ContactsMode string // SourceModeWeb, SourceModeLocal or empty
	ContactsURL  string
	ContactsPath string
	ContactsUser string

	RefreshMin int

	// ReminderTrigger is an ISO 8601 duration such as -P1D added as a VALARM
	// to birthday events. Empty disables reminders.
	ReminderTrigger string
}

// Load reads the settings from the environment. If envFile is not empty it is
// loaded first; otherwise a .env in the working directory is used when present.
func Load(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrEnvFile, err)
		}
	} else {
		_ = godotenv.Load(EnvFileName)
	}

	s := &Settings{
		Port:           getEnv(EnvPort, DefaultPort),
		BindAddr:       getEnv(EnvBindAddr, LocalhostBindAddr),
		HistoryDriver:  getEnv(EnvHistoryDriver, HistoryMemory),
		HistoryPath:    getEnv(EnvHistoryPath, ""),
		HistoryMax:     getEnvInt(EnvHistoryMax, HistoryMaxItems),
		HolidayCSVURL:  getEnv(EnvHolidayCSVURL, ""),
		HolidayCSVPath: getEnv(EnvHolidayCSVPath, ""),
		CustomHolidays: getEnv(EnvCustomHolidays, ""),
		ContactsMode:   getEnv(EnvContactsMode, ""),
		ContactsURL:    getEnv(EnvContactsURL, ""),
		ContactsPath:   getEnv(EnvContactsPath, ""),
		ContactsUser:   getEnv(EnvContactsUser, ""),
		RefreshMin:     getEnvInt(EnvRefreshMin, DefaultRefreshMin),

		ReminderTrigger: getEnv(EnvReminder, ""),
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigInvalid, err)
	}
	return s, nil
}

// Validate reports every configuration problem at once.
func (s *Settings) Validate() error {
	var errs errors.M

	errs.Append(ValidatePort(s.Port))

	switch s.HistoryDriver {
	case HistoryMemory, HistorySQLite:
	default:
		errs.Append(fmt.Errorf("%s: %q", ErrHistoryDriver, s.HistoryDriver))
	}
	if s.HistoryMax <= 0 {
		errs.Append(errors.New(ErrHistoryMax))
	}
	if s.RefreshMin < 0 {
		errs.Append(errors.New(ErrRefreshNegative))
	}

	switch s.ContactsMode {
	case "":
	case SourceModeLocal:
		if s.ContactsPath == "" {
			errs.Append(errors.New(ErrLocalPathEmpty))
		}
	case SourceModeWeb:
		if s.ContactsURL == "" {
			errs.Append(errors.New(ErrWebURLEmpty))
		}
	default:
		errs.Append(fmt.Errorf("%s: %q", ErrModeUnsupport, s.ContactsMode))
	}

	return errs.Err()
}

// RefreshInterval converts RefreshMin into a duration. Zero disables refreshing.
func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshMin) * time.Minute
}

// ValidatePort checks that port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
