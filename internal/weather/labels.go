package weather

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

type labelNames struct {
	weekdays [7]string
	months   [12]string
	// withMonth renders weekday, day and month names.
	withMonth func(weekday string, day int, month string) string
}

var supportedLocales = []language.Tag{language.English, language.Indonesian}

var localeMatcher = language.NewMatcher(supportedLocales)

var localeNames = []labelNames{
	{
		weekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		months:   [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		withMonth: func(wd string, d int, m string) string {
			return fmt.Sprintf("%s, %s %d", wd, m, d)
		},
	},
	{
		weekdays: [7]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"},
		months:   [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
		withMonth: func(wd string, d int, m string) string {
			return fmt.Sprintf("%s, %d %s", wd, d, m)
		},
	},
}

// LabelFormatter renders daily summary labels. The zero value formats English
// labels without the month.
type LabelFormatter struct {
	locale       int
	IncludeMonth bool
}

// NewLabelFormatter picks the closest supported locale for a BCP 47 tag or an
// Accept-Language value. Unknown or empty input falls back to English.
func NewLabelFormatter(lang string, includeMonth bool) LabelFormatter {
	_, idx := language.MatchStrings(localeMatcher, lang)
	if idx < 0 || idx >= len(localeNames) {
		idx = 0
	}
	return LabelFormatter{locale: idx, IncludeMonth: includeMonth}
}

// Locale returns the matched locale tag.
func (f LabelFormatter) Locale() string {
	return supportedLocales[f.locale].String()
}

// Format renders the label for a calendar date. Only the date part is used.
func (f LabelFormatter) Format(date time.Time) string {
	names := localeNames[f.locale]
	wd := names.weekdays[date.Weekday()]
	if !f.IncludeMonth {
		return fmt.Sprintf("%s %d", wd, date.Day())
	}
	return names.withMonth(wd, date.Day(), names.months[date.Month()-1])
}
