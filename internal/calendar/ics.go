// Package calendar exports fixtures as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/larraunpilota/fnp-results/internal/match"
)

// Duration is the length given to every fixture
const Duration = 90 * time.Minute

// TimeZone is the zone the federation publishes its times in
const TimeZone = "Europe/Madrid"

// uidNamespace scopes the name-based fixture UIDs
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://www.fnpelota.com/"))

// GenerateICS generates one iCalendar (.ics) document holding a VEVENT per
// fixture. Fixtures whose date cannot be parsed are left out. name, when set,
// becomes the calendar's display name.
func GenerateICS(fixtures []*match.Fixture, name string) string {
	return generate(fixtures, name, location(), time.Now())
}

func location() *time.Location {
	loc, err := time.LoadLocation(TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func generate(fixtures []*match.Fixture, name string, loc *time.Location, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//fnp-results//fnp-results//EU\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if name != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(name)))
		ics.WriteString(fmt.Sprintf("X-WR-TIMEZONE:%s\r\n", loc.String()))
	}

	for _, f := range fixtures {
		start := f.Start(loc)
		if start.IsZero() {
			continue
		}
		writeEvent(&ics, f, start, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, f *match.Fixture, start, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:%s@fnpelota.com\r\n", UID(f)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(start.Add(Duration))))

	summary := fmt.Sprintf("%s - %s", f.HomeTeam, f.AwayTeam)
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))

	var description []string
	if f.Competition != "" {
		description = append(description, f.Competition)
	}
	if f.Number != "" {
		description = append(description, "Zkia: "+f.Number)
	}
	if len(description) > 0 {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(strings.Join(description, "\n"))))
	}

	if f.Venue != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(f.Venue)))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// UID returns a stable identifier for a fixture, so re-exports update the same
// calendar entries instead of duplicating them
func UID(f *match.Fixture) string {
	key := strings.Join([]string{f.Date, f.HomeTeam, f.AwayTeam, f.Competition}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String()
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
