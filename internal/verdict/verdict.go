// Package verdict reduces temperature observations to a frozen/not-frozen answer
package verdict

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ngmaloney/isitfrozen/internal/models"
)

// ReadingLayout is the short date/time layout used for each reading
const ReadingLayout = "1/2/06, 3:04 PM"

// NoObservationsText is shown in place of the reading list when a station has no valid readings
const NoObservationsText = "No observations found, try a different station"

// Result is the outcome of reducing a set of observations
type Result struct {
	Verdict  models.Verdict
	Readings []models.Observation // Valid observations, in response order
}

// Compute walks the observations in order and reports frozen only if every
// valid reading is at or below zero in its reported unit.
func Compute(observations []models.Observation) Result {
	frozen := true
	var readings []models.Observation

	for _, obs := range observations {
		if !obs.Valid() {
			continue
		}
		frozen = frozen && *obs.Temperature <= 0
		readings = append(readings, obs)
	}

	if len(readings) == 0 {
		return Result{Verdict: models.VerdictNoData}
	}

	v := models.VerdictNotFrozen
	if frozen {
		v = models.VerdictFrozen
	}
	return Result{Verdict: v, Readings: readings}
}

// UnitSuffix returns the last character of a unit code ("wmoUnit:degC" -> "C").
// This is an approximation, not a unit parser.
func UnitSuffix(unitCode string) string {
	if unitCode == "" {
		return ""
	}
	r := []rune(unitCode)
	return string(r[len(r)-1])
}

// FormatReading renders one observation as "<date/time>: <value><unit>".
// Observations without a temperature render an empty string.
func FormatReading(obs models.Observation, loc *time.Location) string {
	if !obs.Valid() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	ts := obs.Timestamp.In(loc).Format(ReadingLayout)
	value := strconv.FormatFloat(*obs.Temperature, 'f', -1, 64)
	return fmt.Sprintf("%s: %s%s", ts, value, UnitSuffix(obs.UnitCode))
}

// FormatReadings renders every valid observation in order
func FormatReadings(observations []models.Observation, loc *time.Location) []string {
	lines := make([]string, 0, len(observations))
	for _, obs := range observations {
		if !obs.Valid() {
			continue
		}
		lines = append(lines, FormatReading(obs, loc))
	}
	return lines
}
