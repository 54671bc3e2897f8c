// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

// Package catalog bundles the read-only reference data of the party: the
// station list guests pick their nearest stop from, the bookable arrival
// sessions and the friend groups. Nothing in here is ever written to the
// store.
package catalog

import "github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/model"

var stations = []model.Station{
	{ID: "baker-street", Name: "Baker Street", Line: model.LineBakerloo},
	{ID: "oxford-circus", Name: "Oxford Circus", Line: model.LineCentral},
	{ID: "liverpool-street", Name: "Liverpool Street", Line: model.LineCentral},
	{ID: "kings-cross", Name: "King's Cross St. Pancras", Line: model.LineCircle},
	{ID: "embankment", Name: "Embankment", Line: model.LineCircle},
	{ID: "earls-court", Name: "Earl's Court", Line: model.LineDistrict},
	{ID: "wimbledon", Name: "Wimbledon", Line: model.LineDistrict},
	{ID: "whitechapel", Name: "Whitechapel", Line: model.LineHammersmithCity},
	{ID: "canary-wharf", Name: "Canary Wharf", Line: model.LineJubilee},
	{ID: "london-bridge", Name: "London Bridge", Line: model.LineJubilee},
	{ID: "wembley-park", Name: "Wembley Park", Line: model.LineMetropolitan},
	{ID: "camden-town", Name: "Camden Town", Line: model.LineNorthern},
	{ID: "clapham-common", Name: "Clapham Common", Line: model.LineNorthern},
	{ID: "piccadilly-circus", Name: "Piccadilly Circus", Line: model.LinePiccadilly},
	{ID: "heathrow-t23", Name: "Heathrow Terminals 2 & 3", Line: model.LinePiccadilly},
	{ID: "brixton", Name: "Brixton", Line: model.LineVictoria},
	{ID: "victoria", Name: "Victoria", Line: model.LineVictoria},
	{ID: "waterloo", Name: "Waterloo", Line: model.LineWaterlooCity},
	{ID: "greenwich", Name: "Greenwich", Line: model.LineDLR},
	{ID: "clapham-junction", Name: "Clapham Junction", Line: model.LineOverground},
	{ID: "shoreditch-high-street", Name: "Shoreditch High Street", Line: model.LineOverground},
	{ID: "paddington", Name: "Paddington", Line: model.LineElizabeth},
}

var sessions = []model.Session{
	{ID: "s1", Time: "11:00 - 13:00", Capacity: 12},
	{ID: "s2", Time: "13:00 - 15:00", Capacity: 12},
	{ID: "s3", Time: "15:00 - 18:00", Capacity: 14},
	{ID: "s4", Time: "18:00 - 21:00", Capacity: 14},
}

var friendGroups = []string{
	"Work",
	"Uni",
	"Football",
	"Family",
	"Neighbours",
}

// lineColors are the official TfL line colours used by the frontend to tint
// station pills.
var lineColors = map[model.Line]string{
	model.LineBakerloo:        "#B36305",
	model.LineCentral:         "#E32017",
	model.LineCircle:          "#FFD300",
	model.LineDistrict:        "#00782A",
	model.LineHammersmithCity: "#F3A9BB",
	model.LineJubilee:         "#A0A5A9",
	model.LineMetropolitan:    "#9B0056",
	model.LineNorthern:        "#000000",
	model.LinePiccadilly:      "#003688",
	model.LineVictoria:        "#0098D4",
	model.LineWaterlooCity:    "#95CDBA",
	model.LineDLR:             "#00A4A7",
	model.LineOverground:      "#EE7C0E",
	model.LineElizabeth:       "#6950A1",
}

func Stations() []model.Station {
	out := make([]model.Station, len(stations))
	copy(out, stations)
	return out
}

func Sessions() []model.Session {
	out := make([]model.Session, len(sessions))
	copy(out, sessions)
	return out
}

func FriendGroups() []string {
	out := make([]string, len(friendGroups))
	copy(out, friendGroups)
	return out
}

func StationByID(id string) (model.Station, bool) {
	for _, s := range stations {
		if s.ID == id {
			return s, true
		}
	}
	return model.Station{}, false
}

func SessionByID(id string) (model.Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return model.Session{}, false
}

// LineColor falls back to black for unknown lines.
func LineColor(line model.Line) string {
	if c, ok := lineColors[line]; ok {
		return c
	}
	return "#000000"
}
