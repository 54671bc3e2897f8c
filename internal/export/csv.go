// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Package export produces the organizer downloads: a CSV of all guest
// registrations, a plain emails list and the party's iCalendar file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/catalog"
	"github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"
)

// WriteCSV writes all RSVPs ordered by creation time. Station ids are
// resolved to display names, unknown ids are written as-is.
func WriteCSV(w io.Writer, rsvps []*model.RSVP) error {
	sorted := make([]*model.RSVP, len(rsvps))
	copy(sorted, rsvps)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Email", "Station", "Friend Group", "Created At"}); err != nil {
		return err
	}
	for _, r := range sorted {
		stationName := r.StationID
		if station, ok := catalog.StationByID(r.StationID); ok {
			stationName = station.Name
		}
		record := []string{
			r.Name,
			r.Email,
			stationName,
			r.FriendGroup,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEmails writes one email address per line, skipping guests who left the
// field empty.
func WriteEmails(w io.Writer, rsvps []*model.RSVP) error {
	for _, r := range rsvps {
		if r.Email == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, r.Email); err != nil {
			return err
		}
	}
	return nil
}
