// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Event is the calendar entry guests download from the info page.
type Event struct {
	UID         string
	Title       string
	Description string
	Location    string
	TZID        string
	Start       time.Time
	End         time.Time
	Stamp       time.Time
}

// Housewarming is the party itself.
func Housewarming() Event {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
	return Event{
		UID:         "housewarming@dzakandasri.party",
		Title:       "Asri and Dzak's Housewarming Party!",
		Description: "Join us for our housewarming party! Food, drinks, and good times.",
		Location:    "Flat 21, Sporle Court, London, SW11 2EP",
		TZID:        "Europe/London",
		Start:       time.Date(2025, time.October, 25, 11, 0, 0, 0, london),
		End:         time.Date(2025, time.October, 25, 21, 0, 0, 0, london),
		Stamp:       time.Now().UTC(),
	}
}

const icsTimeLayout = "20060102T150405"

// WriteICS writes a single-event VCALENDAR. Lines are CRLF separated per
// RFC 5545.
func WriteICS(w io.Writer, ev Event) error {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Housewarming//EN",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s", ev.UID),
		fmt.Sprintf("DTSTAMP:%sZ", ev.Stamp.UTC().Format(icsTimeLayout)),
		fmt.Sprintf("DTSTART;TZID=%s:%s", ev.TZID, ev.Start.Format(icsTimeLayout)),
		fmt.Sprintf("DTEND;TZID=%s:%s", ev.TZID, ev.End.Format(icsTimeLayout)),
		fmt.Sprintf("SUMMARY:%s", escapeICS(ev.Title)),
		fmt.Sprintf("DESCRIPTION:%s", escapeICS(ev.Description)),
		fmt.Sprintf("LOCATION:%s", escapeICS(ev.Location)),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	var b strings.Builder
	for _, line := range lines {
		for _, folded := range foldICS(line) {
			b.WriteString(folded)
			b.WriteString("\r\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// foldICS splits a content line into chunks of at most 75 octets, continuation
// lines start with a single space (RFC 5545, section 3.1).
func foldICS(line string) []string {
	const width = 75
	if len(line) <= width {
		return []string{line}
	}
	out := []string{line[:width]}
	for rest := line[width:]; len(rest) > 0; {
		n := width - 1
		if n > len(rest) {
			n = len(rest)
		}
		out = append(out, " "+rest[:n])
		rest = rest[n:]
	}
	return out
}

// escapeICS escapes the characters RFC 5545 reserves in text values.
func escapeICS(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}
