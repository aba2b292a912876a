package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/isitfrozen/internal/models"
)

func TestNewModel(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup()})

	if m.mode != ModeZip {
		t.Errorf("NewModel() mode = %v, want ModeZip", m.mode)
	}

	if m.focus != FocusZipInput {
		t.Errorf("NewModel() focus = %v, want FocusZipInput", m.focus)
	}

	if m.view.Verdict != models.VerdictUnknown {
		t.Errorf("NewModel() verdict = %v, want VerdictUnknown", m.view.Verdict)
	}

	if m.startup != nil {
		t.Error("NewModel() without a saved selection should not run a lookup")
	}
}

func TestNewModel_StateMode(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup(), Mode: ModeState, State: "MN"})

	if m.focus != FocusStateList {
		t.Errorf("focus = %v, want FocusStateList", m.focus)
	}

	if !m.loadingStations {
		t.Error("Expected saved state to start loading stations")
	}

	item, ok := m.stateList.SelectedItem().(stateItem)
	if !ok || item.state.Code != "MN" {
		t.Error("Expected saved state to be selected in the state list")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup()})

	msg := tea.WindowSizeMsg{Width: 120, Height: 40}
	updatedModel, _ := m.Update(msg)
	m = updatedModel.(Model)

	if m.width != 120 {
		t.Errorf("After WindowSizeMsg, width = %d, want 120", m.width)
	}

	if m.height != 40 {
		t.Errorf("After WindowSizeMsg, height = %d, want 40", m.height)
	}
}

func TestModel_CtrlC_Quits(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup()})

	msg := tea.KeyMsg{Type: tea.KeyCtrlC}
	_, cmd := m.Update(msg)

	if cmd == nil {
		t.Error("Expected Ctrl+C to return quit command")
	}
}

// TestModel_QTypesIntoZipInput verifies q is text while the ZIP input is focused
func TestModel_QTypesIntoZipInput(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup()})

	updatedModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updatedModel.(Model)

	if m.zipInput.Value() != "q" {
		t.Errorf("Expected ZIP input to be 'q', got '%s'", m.zipInput.Value())
	}
}

func TestModel_QQuitsFromLists(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup(), Mode: ModeState})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("Expected q to return quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected q to quit")
	}
}

// TestTextInputHandling verifies that text input works correctly
func TestTextInputHandling(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup()})

	if !m.zipInput.Focused() {
		t.Error("Expected ZIP input to be focused initially")
	}

	m = typeText(m, "02134")
	if m.zipInput.Value() != "02134" {
		t.Errorf("Expected ZIP input to be '02134', got '%s'", m.zipInput.Value())
	}

	// Test backspace
	updatedModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = updatedModel.(Model)

	if m.zipInput.Value() != "0213" {
		t.Errorf("Expected ZIP input to be '0213' after backspace, got '%s'", m.zipInput.Value())
	}
}

func TestModel_TabSwitchesMode(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup()})

	m, _ = press(m, tea.KeyTab)
	if m.mode != ModeState || m.focus != FocusStateList {
		t.Errorf("After tab, mode = %v focus = %v, want ModeState/FocusStateList", m.mode, m.focus)
	}
	if m.zipInput.Focused() {
		t.Error("Expected ZIP input to blur in state mode")
	}

	m, _ = press(m, tea.KeyTab)
	if m.mode != ModeZip || m.focus != FocusZipInput {
		t.Errorf("After second tab, mode = %v focus = %v, want ModeZip/FocusZipInput", m.mode, m.focus)
	}
	if !m.zipInput.Focused() {
		t.Error("Expected ZIP input to be focused again")
	}
}

func TestModel_EscReturnsToStates(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup(), Mode: ModeState})
	m.focus = FocusStationList

	m, _ = press(m, tea.KeyEsc)
	if m.focus != FocusStateList {
		t.Errorf("After esc, focus = %v, want FocusStateList", m.focus)
	}
}

// TestModel_RecheckWithoutStation verifies r does nothing before a station is chosen
func TestModel_RecheckWithoutStation(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup(), Mode: ModeState})

	updatedModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updatedModel.(Model)

	if cmd != nil {
		t.Error("Expected no command without a station")
	}
	if m.view.Loading {
		t.Error("Expected no loading without a station")
	}
}

func TestModel_StaleStationListDropped(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup(), Mode: ModeState})
	stale := m.tracker.Next()
	m.tracker.Next()

	updatedModel, _ := m.Update(stationsLoadedMsg{
		token:    stale,
		state:    "MN",
		stations: []models.Station{{Identifier: "KMSP", Name: "Minneapolis"}},
	})
	m = updatedModel.(Model)

	if len(m.stationList.Items()) != 0 {
		t.Error("Expected stale station list to be dropped")
	}
	if m.focus != FocusStateList {
		t.Errorf("focus = %v, want FocusStateList", m.focus)
	}
}

func TestModel_View_InitialLoading(t *testing.T) {
	m := NewModel(Options{Lookup: newMockLookup()})
	view := m.View()

	if view != "Loading..." {
		t.Errorf("View() before window size = %q, want 'Loading...'", view)
	}
}

func TestModel_View_Modes(t *testing.T) {
	tests := []struct {
		name  string
		focus Focus
	}{
		{"zip input", FocusZipInput},
		{"state list", FocusStateList},
		{"station list", FocusStationList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(Options{Lookup: newMockLookup()})
			m.focus = tt.focus
			m.width = 80
			m.height = 24

			view := m.View()
			if view == "" {
				t.Errorf("View() returned empty string for focus %v", tt.focus)
			}
		})
	}
}

func TestMode_Constants(t *testing.T) {
	if ModeZip != 0 {
		t.Errorf("ModeZip = %d, want 0", ModeZip)
	}
	if ModeState != 1 {
		t.Errorf("ModeState = %d, want 1", ModeState)
	}
}
