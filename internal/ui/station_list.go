package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/ngmaloney/isitfrozen/internal/geocoding"
	"github.com/ngmaloney/isitfrozen/internal/models"
)

// stationItem wraps a Station for use in a list
type stationItem struct {
	station models.Station
}

// FilterValue implements list.Item
func (s stationItem) FilterValue() string {
	return s.station.Identifier + " " + s.station.Name
}

// Title implements list.DefaultItem
func (s stationItem) Title() string {
	return s.station.Name
}

// Description implements list.DefaultItem
func (s stationItem) Description() string {
	return s.station.Identifier
}

// stateItem wraps a State for use in a list
type stateItem struct {
	state geocoding.State
}

// FilterValue implements list.Item
func (s stateItem) FilterValue() string {
	return s.state.Code + " " + s.state.Name
}

// Title implements list.DefaultItem
func (s stateItem) Title() string {
	return s.state.Name
}

// Description implements list.DefaultItem
func (s stateItem) Description() string {
	return s.state.Code
}

// createStationList creates a list.Model from stations, already sorted by name
func createStationList(stations []models.Station, width, height int) list.Model {
	items := make([]list.Item, len(stations))
	for i, station := range stations {
		items[i] = stationItem{station: station}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Select a Station"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(false)

	return l
}

// createStateList creates a list.Model of every state
func createStateList(width, height int) list.Model {
	states := geocoding.States()
	items := make([]list.Item, len(states))
	for i, state := range states {
		items[i] = stateItem{state: state}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Select a State"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(false)

	return l
}

// selectStateByCode moves the state list cursor to code, reporting whether it was found
func selectStateByCode(l *list.Model, code string) bool {
	for i, item := range l.Items() {
		if s, ok := item.(stateItem); ok && s.state.Code == code {
			l.Select(i)
			return true
		}
	}
	return false
}

// selectStationByID moves the station list cursor to id and returns the station
func selectStationByID(l *list.Model, id string) (models.Station, bool) {
	for i, item := range l.Items() {
		if s, ok := item.(stationItem); ok && s.station.Identifier == id {
			l.Select(i)
			return s.station, true
		}
	}
	return models.Station{}, false
}
