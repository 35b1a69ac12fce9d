package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"cloudeng.io/errors"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/holiday"
	"golang.org/x/text/encoding/japanese"
)

const utf8BOM = "\uFEFF"

// ParseHolidayCSV reads the Cabinet Office holiday list (syukujitsu.csv):
// a header row then "2025/1/1,元日" rows. The file is published in Shift_JIS;
// UTF-8 copies are accepted as well. Malformed rows are skipped and reported
// together in the returned error, alongside the rows that did parse.
func ParseHolidayCSV(r io.Reader) ([]holiday.Holiday, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrHolidayCSV, err)
	}
	if !utf8.Valid(data) {
		if data, err = japanese.ShiftJIS.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrHolidayCSV, err)
		}
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrHolidayCSV, err)
	}

	var (
		out  []holiday.Holiday
		errs errors.M
	)
	for i, rec := range records {
		line := i + 1
		if len(rec) < 2 {
			errs.Append(fmt.Errorf("%s: line %d", config.ErrHolidayRow, line))
			continue
		}
		t, err := time.Parse(config.DateFormatSlash, strings.TrimSpace(rec[0]))
		if err != nil {
			if line == 1 {
				continue // header
			}
			slog.Debug(config.MsgSkippedRow,
				config.LogKeyComponent, config.CompHoliday,
				config.LogKeyLine, line,
				config.LogKeyValue, rec[0])
			errs.Append(fmt.Errorf("%s: line %d: %q", config.ErrHolidayRow, line, rec[0]))
			continue
		}
		out = append(out, holiday.Holiday{
			Date: calendar.FromTime(t),
			Name: strings.TrimSpace(rec[1]),
			Kind: holiday.Official,
		})
	}
	return out, errs.Err()
}
