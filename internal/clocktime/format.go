package clocktime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Preset is a named display pattern.
type Preset struct {
	Label   string `json:"label"`
	Pattern string `json:"pattern"`
}

// Presets are the patterns offered for custom formatting.
var Presets = []Preset{
	{"YYYY-MM-DD", "yyyy-MM-dd"},
	{"YYYY/MM/DD", "yyyy/MM/dd"},
	{"YYYY年MM月DD日", "yyyy年MM月dd日"},
	{"MM/DD/YYYY", "MM/dd/yyyy"},
	{"DD/MM/YYYY", "dd/MM/yyyy"},
	{"YYYY-MM-DD HH:mm:ss", "yyyy-MM-dd HH:mm:ss"},
	{"YYYY/MM/DD HH:mm:ss", "yyyy/MM/dd HH:mm:ss"},
	{"HH:mm:ss", "HH:mm:ss"},
	{"HH:mm", "HH:mm"},
	{"YYYY-MM-DD'T'HH:mm:ss", "yyyy-MM-dd'T'HH:mm:ss"},
	{"EEEE, MMMM d, yyyy", "EEEE, MMMM d, yyyy"},
	{"yyyy年M月d日(E)", "yyyy年M月d日(E)"},
}

const (
	patternJapanese = "yyyy年M月d日 H:mm:ss"
	patternAmerican = "MM/dd/yyyy HH:mm:ss"
	patternEuropean = "dd/MM/yyyy HH:mm:ss"

	// FormatErrorText replaces a custom rendering that failed.
	FormatErrorText = "フォーマットエラー"
)

// Formats is an instant rendered in every supported style.
type Formats struct {
	ISO8601    string `json:"iso8601"`
	RFC2822    string `json:"rfc2822"`
	Unix       int64  `json:"unix"`
	UnixMillis int64  `json:"unixMillis"`
	Japanese   string `json:"japanese"`
	American   string `json:"american"`
	European   string `json:"european"`
	Custom     string `json:"custom,omitempty"`
}

// Render formats t in the fixed styles plus custom when it is not empty.
// A bad custom pattern yields FormatErrorText rather than an error.
func Render(t time.Time, custom string) Formats {
	f := Formats{
		ISO8601:    t.UTC().Format(isoMillis),
		RFC2822:    t.Format(time.RFC1123Z),
		Unix:       t.Unix(),
		UnixMillis: t.UnixMilli(),
		Japanese:   fixedFormat(t, patternJapanese),
		American:   fixedFormat(t, patternAmerican),
		European:   fixedFormat(t, patternEuropean),
	}
	if custom != "" {
		out, err := Format(t, custom)
		if err != nil {
			out = FormatErrorText
		}
		f.Custom = out
	}
	return f
}

// fixedFormat is for the fixed patterns above, which always parse.
func fixedFormat(t time.Time, pattern string) string {
	out, _ := Format(t, pattern)
	return out
}

var (
	errUnknownToken = errors.New("unknown pattern letter")
	errOpenQuote    = errors.New("unterminated quote")
)

// Format renders t with a Unicode-style pattern (yyyy, MM, d, HH, mm, ss,
// EEEE, MMMM, a). Text in single quotes is copied, and '' is a literal
// quote. Any other ASCII letter is an error.
func Format(t time.Time, pattern string) (string, error) {
	var b strings.Builder
	rs := []rune(pattern)
	for i := 0; i < len(rs); {
		r := rs[i]
		if r == '\'' {
			if i+1 < len(rs) && rs[i+1] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			end, lit, err := quoted(rs, i+1)
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
			i = end
			continue
		}
		if !isASCIILetter(r) {
			b.WriteRune(r)
			i++
			continue
		}

		n := 1
		for i+n < len(rs) && rs[i+n] == r {
			n++
		}
		field, err := formatField(t, r, n)
		if err != nil {
			return "", fmt.Errorf("%w: %s", err, string(rs[i:i+n]))
		}
		b.WriteString(field)
		i += n
	}
	return b.String(), nil
}

// quoted reads literal text starting after an opening quote and returns the
// index past the closing quote. A doubled quote inside is one quote.
func quoted(rs []rune, i int) (int, string, error) {
	var b strings.Builder
	for i < len(rs) {
		if rs[i] != '\'' {
			b.WriteRune(rs[i])
			i++
			continue
		}
		if i+1 < len(rs) && rs[i+1] == '\'' {
			b.WriteRune('\'')
			i += 2
			continue
		}
		return i + 1, b.String(), nil
	}
	return 0, "", errOpenQuote
}

func formatField(t time.Time, letter rune, n int) (string, error) {
	switch letter {
	case 'y':
		if n == 2 {
			return fmt.Sprintf("%02d", t.Year()%100), nil
		}
		return pad(t.Year(), n), nil
	case 'M':
		switch {
		case n >= 4:
			return t.Month().String(), nil
		case n == 3:
			return t.Month().String()[:3], nil
		}
		return pad(int(t.Month()), n), nil
	case 'd':
		return pad(t.Day(), n), nil
	case 'E':
		if n >= 4 {
			return t.Weekday().String(), nil
		}
		return t.Weekday().String()[:3], nil
	case 'H':
		return pad(t.Hour(), n), nil
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, n), nil
	case 'm':
		return pad(t.Minute(), n), nil
	case 's':
		return pad(t.Second(), n), nil
	case 'S':
		ms := fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
		if n < len(ms) {
			return ms[:n], nil
		}
		return ms, nil
	case 'a':
		if t.Hour() < 12 {
			return "AM", nil
		}
		return "PM", nil
	}
	return "", errUnknownToken
}

func pad(v, width int) string {
	return fmt.Sprintf("%0*d", width, v)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
