package models

import "time"

// Observation is a single temperature reading reported by a station
type Observation struct {
	Timestamp   time.Time
	Temperature *float64 // nil when the station reported no value
	UnitCode    string   // e.g. "wmoUnit:degC"
}

// Valid reports whether the observation carries a temperature value.
// A reading of exactly zero is valid.
func (o Observation) Valid() bool {
	return o.Temperature != nil
}

// Verdict is the answer to "is it frozen?"
type Verdict int

const (
	VerdictUnknown   Verdict = iota // Initial state and while a lookup is in flight
	VerdictFrozen                   // Every valid reading is at or below zero
	VerdictNotFrozen                // At least one valid reading is above zero
	VerdictNoData                   // The station returned no valid readings
)

// String returns the text shown for the verdict
func (v Verdict) String() string {
	switch v {
	case VerdictFrozen:
		return "YES!"
	case VerdictNotFrozen:
		return "NOPE"
	default:
		return "?"
	}
}
