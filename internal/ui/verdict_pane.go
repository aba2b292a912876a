package ui

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/isitfrozen/internal/models"
	"github.com/ngmaloney/isitfrozen/internal/verdict"
)

// verdictView is everything the verdict pane shows. Rendering reads only this.
type verdictView struct {
	Verdict  models.Verdict
	Loading  bool
	Dots     int      // Ellipsis grown while loading
	Readings []string // Formatted readings, in response order
	NoData   bool
	Station  models.Station
	Location string // e.g. "New York, NY 10001"
}

// verdictText returns the answer text, with the loading ellipsis appended
func verdictText(v verdictView) string {
	return v.Verdict.String() + strings.Repeat(".", v.Dots)
}

// renderVerdict renders the YES!/NOPE/? box
func renderVerdict(v verdictView) string {
	text := verdictText(v)
	switch v.Verdict {
	case models.VerdictFrozen:
		return frozenStyle.Render(text)
	case models.VerdictNotFrozen:
		return thawedStyle.Render(text)
	default:
		return unknownStyle.Render(text)
	}
}

// renderReadings renders the observations heading and numbered list
func renderReadings(v verdictView) string {
	if v.NoData {
		return strings.Join([]string{
			errorStyle.Render("Observations"),
			"  1. " + verdict.NoObservationsText,
		}, "\n")
	}

	if len(v.Readings) == 0 {
		if v.Loading {
			return sectionHeaderStyle.Render("Observations")
		}
		return mutedStyle.Render("No observations loaded")
	}

	lines := []string{sectionHeaderStyle.Render("Observations")}
	for i, r := range v.Readings {
		lines = append(lines, fmt.Sprintf("%3d. %s", i+1, valueStyle.Render(r)))
	}
	return strings.Join(lines, "\n")
}

// renderStationLine describes which station the verdict is for
func renderStationLine(v verdictView) string {
	if v.Station.Identifier == "" {
		return ""
	}
	name := v.Station.Identifier
	if v.Station.Name != "" {
		name = fmt.Sprintf("%s (%s)", v.Station.Name, v.Station.Identifier)
	}
	if v.Location != "" {
		return mutedStyle.Render(fmt.Sprintf("📍 %s • %s", v.Location, name))
	}
	return mutedStyle.Render("📍 " + name)
}
