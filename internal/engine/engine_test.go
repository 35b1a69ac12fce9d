package engine_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/engine"
	"golang.org/x/text/encoding/japanese"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

func webFetcher(vcard string) *MockFetcher {
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(body(vcard), nil)
	return f
}

var webCfg = engine.SyncConfig{ContactsMode: config.SourceModeWeb, WebURL: "http://test.local"}

func birthdayEvents(ics string) int {
	return strings.Count(ics, "SUMMARY:誕生日")
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRunSync_HolidaysOnly(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.Contains(t, ics, "X-WR-CALNAME:"+config.ICalCalName)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240101")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250505")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20261123")
	assert.Contains(t, ics, "SUMMARY:元日")
	assert.Zero(t, birthdayEvents(ics))
	assert.Empty(t, res.Contacts)
	assert.Equal(t, strings.Count(ics, "BEGIN:VEVENT"), res.Events)

	assert.Len(t, res.Holidays.ForYear(2025), 19, "2025 has 16 named holidays and 3 substitutes")
}

func TestRunSync_Local_Success(t *testing.T) {
	vcardContent := `BEGIN:VCARD
VERSION:4.0
FN:山田太郎
BDAY:2000-01-01
END:VCARD`

	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(vcardContent), 0o600))

	gen := &engine.Generator{
		Clock:    MockClock{CurrentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
		FeedName: "テスト",
	}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		ContactsMode: config.SourceModeLocal,
		LocalPath:    path,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.BirthdaysToday)

	require.Len(t, res.Contacts, 1)
	c := res.Contacts[0]
	assert.Equal(t, "山田太郎", c.Name)
	assert.Equal(t, 25, c.AgeNext)
	assert.Equal(t, 0, c.DaysUntil)
	require.NotNil(t, c.Age)
	assert.Equal(t, 25, c.Age.Years)

	ics := string(res.ICS)
	assert.Contains(t, ics, "X-WR-CALNAME:テスト")
	assert.Contains(t, ics, "SUMMARY:誕生日: 山田太郎 (25歳)")
}

func TestRunSync_Web_LeapYear(t *testing.T) {
	vcardContent := `BEGIN:VCARD
VERSION:3.0
FN:Leap Baby
BDAY:2000-02-29
END:VCARD`

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com", "user", "secret").
		Return(body(vcardContent), nil)

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
	}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		ContactsMode: config.SourceModeWeb,
		WebURL:       "http://example.com",
		WebUser:      "user",
		WebPass:      "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.BirthdaysToday, "Feb 29 birthdays fall on Mar 1 in common years")

	require.Len(t, res.Contacts, 1)
	assert.Equal(t, calendar.New(2025, 3, 1), res.Contacts[0].NextBirthday)
	assert.Contains(t, string(res.ICS), "DTSTART;VALUE=DATE:20240229")
	assert.Contains(t, string(res.ICS), "DTSTART;VALUE=DATE:20250301")

	mockFetcher.AssertExpectations(t)
}

func TestRunSync_ContactsSortedByNextBirthday(t *testing.T) {
	vcardContent := `BEGIN:VCARD
VERSION:3.0
FN:Past Birthday
BDAY:1990-01-01
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Future Birthday
BDAY:1990-12-31
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Today Birthday
BDAY:1990-06-01
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Birthday
END:VCARD`

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		Fetcher: webFetcher(vcardContent),
	}

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)
	require.Len(t, res.Contacts, 3)

	assert.Equal(t, "Today Birthday", res.Contacts[0].Name)
	assert.Equal(t, calendar.New(2025, 6, 1), res.Contacts[0].NextBirthday)
	assert.Equal(t, "Future Birthday", res.Contacts[1].Name)
	assert.Equal(t, calendar.New(2025, 12, 31), res.Contacts[1].NextBirthday)
	assert.Equal(t, 213, res.Contacts[1].DaysUntil)
	assert.Equal(t, "Past Birthday", res.Contacts[2].Name)
	assert.Equal(t, calendar.New(2026, 1, 1), res.Contacts[2].NextBirthday)
	assert.Equal(t, 36, res.Contacts[2].AgeNext)
}

func TestRunSync_Web_NetworkError(t *testing.T) {
	mockFetcher := new(MockFetcher)
	expectedErr := errors.New("network unreachable")
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, expectedErr)

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Now()},
		Fetcher: mockFetcher,
	}

	res, err := gen.RunSync(context.Background(), webCfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), config.ErrContactsSource)
	assert.Nil(t, res)
}

func TestRunSync_ConfigErrors(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}}

	tests := []struct {
		name    string
		cfg     engine.SyncConfig
		wantErr string
	}{
		{"LocalWithoutPath", engine.SyncConfig{ContactsMode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"WebWithoutURL", engine.SyncConfig{ContactsMode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"WebWithoutFetcher", webCfg, config.ErrFetcherMissing},
		{"UnknownMode", engine.SyncConfig{ContactsMode: "ftp"}, config.ErrModeUnsupport},
		{"MissingHolidayFile", engine.SyncConfig{HolidayCSVPath: filepath.Join(t.TempDir(), "none.csv")}, config.ErrHolidayCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSync_WithReminders(t *testing.T) {
	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Fetcher: webFetcher("BEGIN:VCARD\nVERSION:3.0\nFN:Alarm Test\nBDAY:1990-01-01\nEND:VCARD"),
	}

	cfg := webCfg
	cfg.ReminderTrigger = "-P1D"
	res, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VALARM"), "Only birthdays carry alarms")
	assert.Contains(t, ics, "TRIGGER:-P1D")
	assert.Contains(t, ics, "ACTION:DISPLAY")
}

func TestRunSync_GeneratesYearRange(t *testing.T) {
	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Fetcher: webFetcher("BEGIN:VCARD\nVERSION:3.0\nFN:Range Test\nBDAY:1990-12-31\nEND:VCARD"),
	}

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20241231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20251231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20261231")
	assert.Equal(t, 3, birthdayEvents(ics))
}

func TestRunSync_BabyBornThisYear(t *testing.T) {
	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Fetcher: webFetcher("BEGIN:VCARD\nVERSION:3.0\nFN:Baby\nBDAY:2025-05-01\nEND:VCARD"),
		FormatSummary: func(name string, age int, yearKnown bool) string {
			if age == 0 {
				return fmt.Sprintf("誕生日: %s (誕生)", name)
			}
			return fmt.Sprintf("誕生日: %s (%d)", name, age)
		},
	}

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.NotContains(t, ics, "DTSTART;VALUE=DATE:20240501", "No event before birth")
	assert.Contains(t, ics, "SUMMARY:誕生日: Baby (誕生)")
	assert.Contains(t, ics, "SUMMARY:誕生日: Baby (1)")
	assert.Equal(t, 2, birthdayEvents(ics))

	require.Len(t, res.Contacts, 1)
	assert.Nil(t, res.Contacts[0].Age, "No current age before birth")
}

func TestRunSync_FutureBirth(t *testing.T) {
	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Fetcher: webFetcher("BEGIN:VCARD\nVERSION:3.0\nFN:Future Baby\nBDAY:2027-01-01\nEND:VCARD"),
	}

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)
	assert.Zero(t, birthdayEvents(string(res.ICS)))
}

func TestRunSync_YearlessBirthday(t *testing.T) {
	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		Fetcher: webFetcher("BEGIN:VCARD\nVERSION:3.0\nFN:Nameless Year\nBDAY:--10-25\nEND:VCARD"),
	}

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.Contains(t, ics, "SUMMARY:誕生日: Nameless Year")
	assert.NotContains(t, ics, "Nameless Year (")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20241025", "Yearless birthdays are not bounded by the placeholder year")
	require.Len(t, res.Contacts, 1)
	assert.False(t, res.Contacts[0].YearKnown)
	assert.Nil(t, res.Contacts[0].Age)
}

func TestRunSync_DateFormats_TableDriven(t *testing.T) {
	tests := []struct {
		name      string
		bdayValue string
		expectEvt bool
	}{
		{"ISO8601 Standard", "1990-10-25", true},
		{"Basic Format", "19901025", true},
		{"RFC3339", "1990-10-25T00:00:00Z", true},
		{"Truncated (Month-Day)", "--10-25", true},
		{"Truncated Basic", "--1025", true},
		{"Garbage Data", "not-a-date", false},
		{"Empty Date", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:" + tt.bdayValue + "\nEND:VCARD"
			gen := &engine.Generator{
				Clock:   MockClock{CurrentTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
				Fetcher: webFetcher(content),
			}

			res, err := gen.RunSync(context.Background(), webCfg)
			require.NoError(t, err)
			if tt.expectEvt {
				assert.Equal(t, 3, birthdayEvents(string(res.ICS)))
			} else {
				assert.Zero(t, birthdayEvents(string(res.ICS)), "Invalid dates are skipped silently")
			}
		})
	}
}

func TestRunSync_OfficialAndCustomHolidays(t *testing.T) {
	csvText := "国民の祝日・休日月日,国民の祝日・休日名称\r\n2025/1/1,元日\r\n2025/1/13,成人の日\r\n"
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(csvText))
	require.NoError(t, err)

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "https://example.jp/syukujitsu.csv", "", "").
		Return(io.NopCloser(bytes.NewReader(sjis)), nil)

	customPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(customPath, []byte("holidays:\n  - date: 2025-12-29\n    name: 年末休暇\n"), 0o600))

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
	}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		HolidayCSVURL:      "https://example.jp/syukujitsu.csv",
		CustomHolidaysPath: customPath,
	})
	require.NoError(t, err)

	got := res.Holidays.ForYear(2025)
	require.Len(t, got, 3, "Official data replaces the rules for the years it covers")
	assert.Equal(t, "成人の日", got[1].Name)
	assert.Equal(t, "年末休暇", got[2].Name)
	assert.Equal(t, []int{2025}, res.Holidays.OfficialYears())

	ics := string(res.ICS)
	assert.Contains(t, ics, "SUMMARY:年末休暇")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260211", "Other years fall back to the rules")

	mockFetcher.AssertExpectations(t)
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Now()},
		Fetcher: webFetcher("BEGIN:VCARD\nVERSION:3.0\nFN:X\nBDAY:1990-01-01\nEND:VCARD"),
	}

	_, err := gen.RunSync(ctx, webCfg)
	assert.ErrorIs(t, err, context.Canceled)
}
