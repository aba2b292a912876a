package ui

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/isitfrozen/internal/models"
	"github.com/ngmaloney/isitfrozen/internal/pipeline"
	"github.com/ngmaloney/isitfrozen/internal/verdict"
)

// Mode selects how the user picks a location
type Mode int

const (
	ModeZip   Mode = iota // Type a ZIP code, the nearest station is used
	ModeState             // Pick a state, then one of its stations
)

// Focus represents which control receives key presses
type Focus int

const (
	FocusZipInput Focus = iota
	FocusStateList
	FocusStationList
)

const listHeight = 14

// Options configures a new Model
type Options struct {
	Lookup Lookup
	Mode   Mode

	// Initial selection, usually restored from saved preferences
	Zip     string
	State   string
	Station string

	TickInterval time.Duration
	Timeout      time.Duration
	Location     *time.Location // Time zone readings are shown in
	Logger       *slog.Logger
}

// Model represents the application's state
type Model struct {
	mode   Mode
	focus  Focus
	width  int
	height int

	// Controls
	zipInput    textinput.Model
	stateList   list.Model
	stationList list.Model
	spinner     spinner.Model

	// State picker
	selectedState   string
	stations        []models.Station
	loadingStations bool

	// Verdict pane
	view verdictView

	// Lookups
	lookup       Lookup
	tracker      *pipeline.Tracker
	startup      tea.Cmd
	tickInterval time.Duration
	timeout      time.Duration
	loc          *time.Location
	logger       *slog.Logger
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter a ZIP code (e.g. 10001)..."
	ti.CharLimit = 10
	ti.Width = 30

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if opts.TickInterval <= 0 {
		opts.TickInterval = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := Model{
		mode:         opts.Mode,
		zipInput:     ti,
		stateList:    createStateList(60, listHeight),
		stationList:  createStationList(nil, 60, listHeight),
		spinner:      s,
		lookup:       opts.Lookup,
		tracker:      &pipeline.Tracker{},
		tickInterval: opts.TickInterval,
		timeout:      opts.Timeout,
		loc:          opts.Location,
		logger:       opts.Logger,
	}

	switch opts.Mode {
	case ModeState:
		m.focus = FocusStateList
		if opts.State != "" {
			selectStateByCode(&m.stateList, opts.State)
			m.selectedState = opts.State
			m.loadingStations = true
			m.startup = tea.Batch(m.spinner.Tick,
				restoreStations(m.lookup, m.tracker.Next(), opts.State, opts.Station, m.timeout))
		}
	default:
		m.focus = FocusZipInput
		m.zipInput.Focus()
		if opts.Zip != "" {
			m.zipInput.SetValue(opts.Zip)
			m.startup = resolveZip(m.lookup, m.tracker.Next(), opts.Zip, m.timeout)
		}
	}

	return m
}

// Init starts the cursor blinking and re-runs any restored selection
func (m Model) Init() tea.Cmd {
	if m.startup != nil {
		return tea.Batch(textinput.Blink, m.startup)
	}
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := max(msg.Width-4, 20)
		m.stateList.SetSize(w, listHeight)
		m.stationList.SetSize(w, listHeight)
		return m, nil

	case zipResolvedMsg:
		if !m.tracker.IsCurrent(msg.token) {
			return m, nil
		}
		if msg.err != nil {
			return m.settle(), nil
		}
		return m, findStation(m.lookup, msg.token, msg.location, m.timeout)

	case stationsLoadedMsg:
		if !m.tracker.IsCurrent(msg.token) {
			return m, nil
		}
		m.loadingStations = false
		if msg.err != nil {
			return m.settle(), nil
		}
		m.selectedState = msg.state
		m.stations = msg.stations
		m.stationList = createStationList(msg.stations, max(m.width-4, 20), listHeight)
		m.focus = FocusStationList
		if msg.restore != "" {
			if station, ok := selectStationByID(&m.stationList, msg.restore); ok {
				return m.beginObservations(msg.token, station, "")
			}
			m.logger.Warn("saved station not found in state", "state", msg.state, "station", msg.restore)
		}
		return m.settle(), nil

	case stationFoundMsg:
		if !m.tracker.IsCurrent(msg.token) {
			return m, nil
		}
		if msg.err != nil {
			return m.settle(), nil
		}
		return m.beginObservations(msg.token, *msg.station, msg.location)

	case verdictMsg:
		if !m.tracker.IsCurrent(msg.token) {
			m.logger.Debug("dropping superseded result", "token", msg.token)
			return m, nil
		}
		m.view.Loading = false
		if msg.err != nil {
			// Verdict stays indeterminate
			return m, nil
		}
		m.applyResult(msg.result)
		return m, nil

	case tickMsg:
		if !m.tracker.IsCurrent(msg.token) || !m.view.Loading {
			return m, nil
		}
		m.view.Dots++
		return m, tick(msg.token, m.tickInterval)

	case spinner.TickMsg:
		if !m.loadingStations {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// beginObservations clears the verdict pane, starts the loading ellipsis and
// fetches observations for the station. location is empty for stations
// picked from a state list.
func (m Model) beginObservations(token pipeline.Token, station models.Station, location string) (tea.Model, tea.Cmd) {
	m.view = verdictView{
		Verdict:  models.VerdictUnknown,
		Loading:  true,
		Station:  station,
		Location: location,
	}
	return m, tea.Batch(
		tick(token, m.tickInterval),
		fetchVerdict(m.lookup, token, station.Identifier, m.timeout),
	)
}

// settle ends a lookup that stopped before reaching a verdict. A fetch it
// superseded will never report back, so its ellipsis stops here and the
// verdict stays indeterminate.
func (m Model) settle() Model {
	m.view.Loading = false
	return m
}

// applyResult copies a computed verdict into the view
func (m *Model) applyResult(result verdict.Result) {
	m.view.Verdict = result.Verdict
	m.view.Dots = 0
	m.view.NoData = result.Verdict == models.VerdictNoData
	m.view.Readings = verdict.FormatReadings(result.Readings, m.loc)
}

// filtering reports whether the focused list is capturing typed text
func (m Model) filtering() bool {
	switch m.focus {
	case FocusStateList:
		return m.stateList.FilterState() == list.Filtering
	case FocusStationList:
		return m.stationList.FilterState() == list.Filtering
	}
	return false
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.filtering() {
		return m.updateFocused(msg)
	}

	switch msg.Type {
	case tea.KeyTab:
		return m.switchMode()
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyEsc:
		if m.focus == FocusStationList {
			m.focus = FocusStateList
			return m, nil
		}
	}

	if m.focus != FocusZipInput {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			if m.view.Station.Identifier != "" {
				return m.beginObservations(m.tracker.Next(), m.view.Station, m.view.Location)
			}
			return m, nil
		}
	}

	return m.updateFocused(msg)
}

// submit acts on Enter for the focused control
func (m Model) submit() (tea.Model, tea.Cmd) {
	switch m.focus {
	case FocusZipInput:
		query := m.zipInput.Value()
		token := m.tracker.Next()
		return m, resolveZip(m.lookup, token, query, m.timeout)

	case FocusStateList:
		item, ok := m.stateList.SelectedItem().(stateItem)
		if !ok {
			return m, nil
		}
		m.selectedState = item.state.Code
		m.stations = nil
		m.loadingStations = true
		token := m.tracker.Next()
		return m, tea.Batch(m.spinner.Tick, selectState(m.lookup, token, item.state.Code, m.timeout))

	case FocusStationList:
		item, ok := m.stationList.SelectedItem().(stationItem)
		if !ok {
			return m, nil
		}
		token := m.tracker.Next()
		return m, selectStation(m.lookup, token, item.station, m.timeout)
	}
	return m, nil
}

// switchMode toggles between ZIP and state selection
func (m Model) switchMode() (tea.Model, tea.Cmd) {
	if m.mode == ModeZip {
		m.mode = ModeState
		m.zipInput.Blur()
		m.focus = FocusStateList
		if len(m.stations) > 0 {
			m.focus = FocusStationList
		}
		return m, nil
	}

	m.mode = ModeZip
	m.focus = FocusZipInput
	return m, m.zipInput.Focus()
}

// updateFocused forwards a message to the focused control
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case FocusZipInput:
		m.zipInput, cmd = m.zipInput.Update(msg)
	case FocusStateList:
		m.stateList, cmd = m.stateList.Update(msg)
	case FocusStationList:
		m.stationList, cmd = m.stationList.Update(msg)
	}
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections,
		titleStyle.Render("❄ Is It Frozen?"),
		mutedStyle.Render("Recent NWS temperature observations"),
		"",
		m.viewTabs(),
		"",
		m.viewSelector(),
		"",
		renderVerdict(m.view),
	)

	if line := renderStationLine(m.view); line != "" {
		sections = append(sections, line)
	}

	sections = append(sections,
		"",
		renderReadings(m.view),
		helpStyle.Render(m.helpText()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewTabs renders the mode switcher
func (m Model) viewTabs() string {
	zipTab, stateTab := tabStyle.Render("ZIP code"), tabStyle.Render("State")
	if m.mode == ModeZip {
		zipTab = activeTabStyle.Render("ZIP code")
	} else {
		stateTab = activeTabStyle.Render("State")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, zipTab, " ", stateTab)
}

// viewSelector renders the ZIP input or the state/station pickers
func (m Model) viewSelector() string {
	switch m.focus {
	case FocusZipInput:
		return searchBoxStyle.Render(m.zipInput.View())
	case FocusStateList:
		return m.stateList.View()
	}

	if m.loadingStations {
		return fmt.Sprintf("%s Loading stations for %s...", m.spinner.View(), m.selectedState)
	}
	return m.stationList.View()
}

// helpText returns the key hints for the focused control
func (m Model) helpText() string {
	switch m.focus {
	case FocusZipInput:
		return "Enter: Check • Tab: Pick by state • Ctrl+C: Quit"
	case FocusStateList:
		return "↑/↓: Navigate • Enter: Select state • /: Filter • Tab: ZIP code • Q: Quit"
	default:
		return "↑/↓: Navigate • Enter: Check station • Esc: States • R: Re-check • Tab: ZIP code • Q: Quit"
	}
}
