// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package model

// Line is a London Underground (or adjacent TfL) line.
type Line string

const (
	LineBakerloo        Line = "Bakerloo"
	LineCentral         Line = "Central"
	LineCircle          Line = "Circle"
	LineDistrict        Line = "District"
	LineHammersmithCity Line = "Hammersmith & City"
	LineJubilee         Line = "Jubilee"
	LineMetropolitan    Line = "Metropolitan"
	LineNorthern        Line = "Northern"
	LinePiccadilly      Line = "Piccadilly"
	LineVictoria        Line = "Victoria"
	LineWaterlooCity    Line = "Waterloo & City"
	LineDLR             Line = "DLR"
	LineOverground      Line = "Overground"
	LineElizabeth       Line = "Elizabeth"
)

// Station is immutable reference data, never written to the store.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Line Line   `json:"line"`
}

// Session is a bookable arrival time slot with a fixed capacity.
type Session struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Capacity int    `json:"capacity"`
}
