package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/duration"
)

// Contact is a person from the vCard source with a usable birthday.
type Contact struct {
	// UID is a stable hash of the name and birthday.
	UID       string        `json:"uid"`
	Name      string        `json:"name"`
	Birth     calendar.Date `json:"birth"`
	YearKnown bool          `json:"yearKnown"` // false for --MM-DD birthdays

	NextBirthday calendar.Date `json:"nextBirthday"`
	AgeNext      int           `json:"ageNext"` // only meaningful when YearKnown
	DaysUntil    int           `json:"daysUntil"`

	// Age is the current age, nil when the year is unknown or the birthday
	// is in the future.
	Age *duration.AgeResult `json:"age,omitempty"`
}

// BirthdayOn returns the date the birthday falls on in year. Feb 29 moves to
// Mar 1 in common years.
func (c Contact) BirthdayOn(year int) calendar.Date {
	return calendar.FromTime(time.Date(year, c.Birth.Month, c.Birth.Day, 0, 0, 0, 0, time.UTC))
}

// At returns a copy of c with the relative fields computed for today.
func (c Contact) At(today calendar.Date) Contact {
	next, ageNext := duration.NextBirthday(today, c.Birth, c.YearKnown)
	c.NextBirthday = next
	c.AgeNext = ageNext
	c.DaysUntil = today.DaysUntil(next)
	c.Age = nil
	if c.YearKnown {
		if age, ok := duration.Age(c.Birth, today); ok {
			c.Age = &age
		}
	}
	return c
}

// SortByNextBirthday orders contacts by their upcoming birthday.
func SortByNextBirthday(contacts []Contact) {
	slices.SortStableFunc(contacts, func(a, b Contact) int { return a.NextBirthday.Compare(b.NextBirthday) })
}

func contactUID(name string, birth calendar.Date) string {
	input := fmt.Sprintf(config.FormatHashInput, name, birth.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// parseContacts decodes a vCard stream. Cards without a parseable BDAY are
// skipped. The result is sorted by next birthday.
func parseContacts(ctx context.Context, r io.Reader, today calendar.Date) ([]Contact, int, error) {
	decoder := vcard.NewDecoder(r)
	processed := 0
	contacts := []Contact{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, processed, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going so one broken card does not hide the others.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, yearKnown, err := parseBirthday(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}

		// FN (formatted) > N (structured) > fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		c := Contact{
			UID:       contactUID(name, birth),
			Name:      name,
			Birth:     birth,
			YearKnown: yearKnown,
		}
		contacts = append(contacts, c.At(today))
	}

	SortByNextBirthday(contacts)
	return contacts, processed, nil
}

// parseBirthday handles the BDAY forms found in the wild. Dates without a
// year are placed in config.DefaultLeapYear so Feb 29 survives.
func parseBirthday(value string) (calendar.Date, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return calendar.FromTime(t), true, nil
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return calendar.New(config.DefaultLeapYear, t.Month(), t.Day()), false, nil
		}
	}

	return calendar.Date{}, false, errors.New(config.ErrDateParse)
}
