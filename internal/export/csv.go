package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// CSVOptions controls the CSV layout.
type CSVOptions struct {
	WithTitle bool // add a タイトル column
	ShiftJIS  bool // encode for spreadsheet tools that expect Shift_JIS
}

// WriteCSV writes a 日付,曜日 table, one row per event. Characters Shift_JIS
// cannot represent are replaced rather than failing the export.
func WriteCSV(w io.Writer, events []Event, opts CSVOptions) (err error) {
	if opts.ShiftJIS {
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
		defer func() {
			if cerr := tw.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("%s: %w", config.ErrCSVEncode, cerr)
			}
		}()
		w = tw
	}

	cw := csv.NewWriter(w)
	header := []string{config.CSVHeaderDate, config.CSVHeaderWeekday}
	if opts.WithTitle {
		header = append(header, config.CSVHeaderTitle)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCSVEncode, err)
	}

	for _, e := range events {
		row := []string{e.Date.String(), calendar.WeekdayOf(e.Date.Weekday(), true)}
		if opts.WithTitle {
			row = append(row, e.Title)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("%s: %w", config.ErrCSVEncode, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCSVEncode, err)
	}
	return nil
}
