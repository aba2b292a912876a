package models

import (
	"sort"
	"strings"
)

// Station represents a NWS observation station
type Station struct {
	Identifier string `json:"stationIdentifier"` // e.g. "KNYC"
	Name       string `json:"name"`
}

// SortStations orders stations by name, ignoring case. Names that compare
// equal ignoring case fall back to a plain lexical comparison.
func SortStations(stations []Station) {
	sort.SliceStable(stations, func(i, j int) bool {
		a, b := strings.ToLower(stations[i].Name), strings.ToLower(stations[j].Name)
		if a != b {
			return a < b
		}
		return stations[i].Name < stations[j].Name
	})
}
