package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-swath/internal/config"
	"github.com/litescript/ls-swath/internal/coverage"
	"github.com/litescript/ls-swath/internal/engine"
)

// Styles for the controls panel
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	editStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("60"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// field identifies an editable settings row.
type field int

const (
	fieldSensor field = iota
	fieldWidth
	fieldInterval
	fieldThreshold
	fieldAntenna
	fieldSatAlt
	fieldCount
)

var fieldNames = [fieldCount]string{
	"Sensor",
	"Swath width (km)",
	"Label interval",
	"Label distance (km)",
	"Antenna angle (°)",
	"Satellite alt (km)",
}

// editTarget says what an in-progress text edit will change.
type editTarget int

const (
	editNone       editTarget = iota
	editValue                 // Setting or station antenna angle under the cursor
	editAltitude              // Station altitude under the cursor
	editNewStation            // New custom station, name:lat:lon[:alt_m]
)

// StatusMsg reports the outcome of an edit to the root model.
type StatusMsg struct {
	Text string
	Err  bool
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, Err: isErr}
	}
}

// ControlsModel edits display settings and the station list. Rows
// 0..fieldCount-1 are settings; the rest are stations in insertion order.
type ControlsModel struct {
	width  int
	height int

	eng      *engine.Engine
	settings *config.Settings
	sensors  *config.SensorTable

	cursor  int
	editing editTarget
	input   string

	scene  *engine.Scene
	events []engine.Event
}

// NewControlsModel creates a controls panel bound to eng.
func NewControlsModel(eng *engine.Engine, settings *config.Settings, sensors *config.SensorTable) ControlsModel {
	return ControlsModel{eng: eng, settings: settings, sensors: sensors}
}

// Init implements the Bubble Tea model interface.
func (m ControlsModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size.
func (m ControlsModel) SetSize(width, height int) ControlsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateScene updates the panel with the latest scene and events.
func (m ControlsModel) UpdateScene(scene *engine.Scene, events []engine.Event) ControlsModel {
	m.scene = scene
	m.events = events
	return m
}

// Editing reports whether a text edit is in progress.
func (m ControlsModel) Editing() bool {
	return m.editing != editNone
}

func (m ControlsModel) rowCount() int {
	return int(fieldCount) + len(m.eng.Stations())
}

// selectedStation returns the station under the cursor, if any.
func (m ControlsModel) selectedStation() (coverage.GroundStation, bool) {
	idx := m.cursor - int(fieldCount)
	stations := m.eng.Stations()
	if idx < 0 || idx >= len(stations) {
		return coverage.GroundStation{}, false
	}
	return stations[idx], true
}

// Update handles messages.
func (m ControlsModel) Update(msg tea.Msg) (ControlsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.Editing() {
		return m.updateEdit(key)
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = m.rowCount() - 1
	case "left", "h":
		if field(m.cursor) == fieldSensor {
			return m.cycleSensor(-1)
		}
	case "right", "l":
		if field(m.cursor) == fieldSensor {
			return m.cycleSensor(1)
		}
	case "enter":
		if field(m.cursor) == fieldSensor {
			return m, nil
		}
		m.editing = editValue
		m.input = m.currentValue()
	case "t":
		if st, ok := m.selectedStation(); ok {
			m.editing = editAltitude
			m.input = fmt.Sprintf("%g", st.AltitudeM)
		}
	case "n":
		m.editing = editNewStation
		m.input = ""
	case "a":
		return m.addCatalogStation()
	case "x", "delete":
		return m.removeSelected()
	}
	return m, nil
}

func (m ControlsModel) updateEdit(key tea.KeyMsg) (ControlsModel, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		target := m.editing
		m.editing = editNone
		switch target {
		case editAltitude:
			return m.commitAltitude(strings.TrimSpace(m.input))
		case editNewStation:
			return m.commitStation(strings.TrimSpace(m.input))
		}
		return m.commit(strings.TrimSpace(m.input))
	case tea.KeyEsc:
		m.editing = editNone
		m.input = ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(key.Runes)
	}
	return m, nil
}

// currentValue returns the text shown when an edit starts.
func (m ControlsModel) currentValue() string {
	if st, ok := m.selectedStation(); ok {
		return fmt.Sprintf("%.0f", st.AntennaAngle)
	}
	switch field(m.cursor) {
	case fieldWidth:
		return config.FormatSwathWidth(m.settings.SwathWidthKm())
	case fieldInterval:
		return fmt.Sprintf("%d", m.settings.LabelInterval())
	case fieldThreshold:
		return fmt.Sprintf("%g", m.settings.DistanceThresholdKm())
	case fieldAntenna:
		return fmt.Sprintf("%d", m.settings.AntennaAngle())
	case fieldSatAlt:
		return fmt.Sprintf("%g", m.settings.SatelliteAltKm())
	}
	return ""
}

// commit validates input for the row under the cursor. A rejected value
// leaves both settings and engine untouched.
func (m ControlsModel) commit(input string) (ControlsModel, tea.Cmd) {
	m.input = ""

	if st, ok := m.selectedStation(); ok {
		angle, err := config.ParseAntennaAngle(input)
		if err != nil {
			return m.reject(st.Name+" antenna angle", err)
		}
		if err := m.eng.UpdateStationElevation(st.Name, float64(angle)); err != nil {
			return m, statusCmd(err.Error(), true)
		}
		return m, statusCmd(fmt.Sprintf("%s antenna angle set to %d°", st.Name, angle), false)
	}

	f := field(m.cursor)
	var err error
	switch f {
	case fieldWidth:
		if err = m.settings.SetSwathWidth(input); err == nil {
			m.eng.SetSwathWidth(m.settings.SwathWidthKm())
		}
	case fieldInterval:
		if err = m.settings.SetLabelInterval(input); err == nil {
			m.eng.SetLabelInterval(m.settings.LabelInterval())
		}
	case fieldThreshold:
		if err = m.settings.SetDistanceThreshold(input); err == nil {
			m.eng.SetDistanceThreshold(m.settings.DistanceThresholdKm())
		}
	case fieldAntenna:
		err = m.settings.SetAntennaAngle(input)
	case fieldSatAlt:
		if err = m.settings.SetSatelliteAltitude(input); err == nil {
			m.eng.SetSatelliteAltitude(m.settings.SatelliteAltKm())
		}
	default:
		return m, nil
	}
	if err != nil {
		return m.reject(fieldNames[f], err)
	}
	return m, statusCmd(fmt.Sprintf("%s set to %s", fieldNames[f], m.currentValue()), false)
}

// commitAltitude validates a new altitude for the station under the cursor.
func (m ControlsModel) commitAltitude(input string) (ControlsModel, tea.Cmd) {
	m.input = ""

	st, ok := m.selectedStation()
	if !ok {
		return m, nil
	}
	alt, err := config.ParseStationAltitude(input)
	if err != nil {
		return m.reject(st.Name+" altitude", err)
	}
	if err := m.eng.UpdateStationAltitude(st.Name, alt); err != nil {
		return m, statusCmd(err.Error(), true)
	}
	return m, statusCmd(fmt.Sprintf("%s altitude set to %g m", st.Name, alt), false)
}

// commitStation parses a custom station and plots it with the current
// antenna angle.
func (m ControlsModel) commitStation(input string) (ControlsModel, tea.Cmd) {
	m.input = ""

	st, err := config.ParseCustomStation(input, m.settings.AntennaAngle())
	if err != nil {
		return m.reject("custom station", err)
	}
	if err := m.eng.AddStation(st); err != nil {
		return m, statusCmd(err.Error(), true)
	}
	m.cursor = m.rowCount() - 1
	return m, statusCmd("Added "+st.Name, false)
}

// reject records a failed validation on the engine and reports it.
func (m ControlsModel) reject(what string, err error) (ControlsModel, tea.Cmd) {
	m.eng.RecordRejected(what, err)
	return m, statusCmd(err.Error(), true)
}

// cycleSensor applies the previous or next sensor's swath width.
func (m ControlsModel) cycleSensor(dir int) (ControlsModel, tea.Cmd) {
	names := m.sensors.Names()
	if len(names) == 0 {
		return m, statusCmd("no sensor table loaded", true)
	}

	idx := -1
	for i, n := range names {
		if strings.EqualFold(n, m.settings.Sensor()) {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && dir < 0:
		idx = len(names) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + dir + len(names)) % len(names)
	}

	if err := m.settings.SetSensor(m.sensors, names[idx]); err != nil {
		return m.reject(fieldNames[fieldSensor], err)
	}
	m.eng.SetSwathWidth(m.settings.SwathWidthKm())
	return m, statusCmd(fmt.Sprintf("Sensor %s: swath %s km", names[idx], config.FormatSwathWidth(m.settings.SwathWidthKm())), false)
}

// addCatalogStation plots the first catalog station not yet shown.
func (m ControlsModel) addCatalogStation() (ControlsModel, tea.Cmd) {
	plotted := make(map[string]bool)
	for _, st := range m.eng.Stations() {
		plotted[st.Name] = true
	}

	for _, key := range coverage.CatalogNames() {
		info := coverage.KnownStations[key]
		if plotted[info.Name] {
			continue
		}
		st := coverage.FromCatalog(info, float64(m.settings.AntennaAngle()))
		if err := m.eng.AddStation(st); err != nil {
			return m, statusCmd(err.Error(), true)
		}
		return m, statusCmd("Added "+st.Name, false)
	}
	return m, statusCmd("All catalog stations are plotted", false)
}

func (m ControlsModel) removeSelected() (ControlsModel, tea.Cmd) {
	st, ok := m.selectedStation()
	if !ok {
		return m, nil
	}
	if err := m.eng.RemoveStation(st.Name); err != nil {
		return m, statusCmd(err.Error(), true)
	}
	if m.cursor >= m.rowCount() {
		m.cursor = m.rowCount() - 1
	}
	return m, statusCmd("Removed "+st.Name, false)
}

// View renders the controls panel.
func (m ControlsModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderSettings())
	b.WriteString("\n")
	b.WriteString(m.renderStations())
	b.WriteString("\n")
	b.WriteString(m.renderEvents())

	return b.String()
}

func (m ControlsModel) renderRow(row int, label, value string) string {
	if row == m.cursor && (m.editing == editValue || m.editing == editAltitude) {
		return "  " + fmt.Sprintf("%-22s ", label) + editStyle.Render(m.input+"▏")
	}
	line := fmt.Sprintf("%-22s %s", label, value)
	if row == m.cursor {
		return "  " + selectedRowStyle.Render(line)
	}
	return "  " + rowStyle.Render(line)
}

func (m ControlsModel) renderSettings() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Display Settings"))
	b.WriteString("\n")

	sensor := m.settings.Sensor()
	if sensor == "" {
		sensor = "(manual)"
	}
	values := [fieldCount]string{
		"◀ " + sensor + " ▶",
		config.FormatSwathWidth(m.settings.SwathWidthKm()),
		fmt.Sprintf("every %d samples", m.settings.LabelInterval()),
		fmt.Sprintf("%g", m.settings.DistanceThresholdKm()),
		fmt.Sprintf("%d (new stations)", m.settings.AntennaAngle()),
		fmt.Sprintf("%g", m.settings.SatelliteAltKm()),
	}
	for f := field(0); f < fieldCount; f++ {
		b.WriteString(m.renderRow(int(f), fieldNames[f], values[f]))
		b.WriteString("\n")
	}

	return b.String()
}

func (m ControlsModel) renderStations() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Ground Stations"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-22s %8s %9s %7s %5s %10s", "Station", "Lat", "Lon", "Alt", "Elev", "Radius")
	b.WriteString("  " + headerStyle.Render(header))
	b.WriteString("\n")

	if m.editing == editNewStation {
		b.WriteString("  " + fmt.Sprintf("%-22s ", "New (name:lat:lon[:alt])") + editStyle.Render(m.input+"▏"))
		b.WriteString("\n")
	}

	stations := m.eng.Stations()
	if len(stations) == 0 {
		b.WriteString(mutedStyle.Render("  No stations. Press a to add one from the catalog or n for a custom one."))
		b.WriteString("\n")
		return b.String()
	}

	radius := make(map[string]float64)
	if m.scene != nil {
		for _, c := range m.scene.Coverage {
			radius[c.Station.Name] = c.Circle.RadiusKm
		}
	}

	for i, st := range stations {
		var status string
		if err := m.eng.StationError(st.Name); err != nil {
			status = errorStyle.Render("omitted")
		} else if r, ok := radius[st.Name]; ok {
			status = okStyle.Render(fmt.Sprintf("%.0f km", r))
		} else {
			status = mutedStyle.Render("hidden")
		}

		value := fmt.Sprintf("%8.3f %9.3f %6.0fm %4.0f°", st.Lat, st.Lon, st.AltitudeM, st.AntennaAngle)
		b.WriteString(m.renderRow(int(fieldCount)+i, truncate(st.Name, 22), value))
		b.WriteString(" " + status)
		b.WriteString("\n")
	}

	return b.String()
}

func (m ControlsModel) renderEvents() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Recent Events"))
	b.WriteString("\n")

	if m.scene != nil && m.scene.TrackErr != nil {
		b.WriteString("  " + errorStyle.Render("Track: "+m.scene.TrackErr.Error()))
		b.WriteString("\n")
	}
	if len(m.events) == 0 {
		b.WriteString(mutedStyle.Render("  No events"))
		b.WriteString("\n")
		return b.String()
	}
	for _, ev := range m.events {
		line := fmt.Sprintf("  %s %-16s %s", ev.Timestamp.Format("15:04:05"), ev.Type, ev.Message)
		switch ev.Type {
		case engine.EventStationOmitted, engine.EventDegenerateTrack, engine.EventValidationRejected:
			b.WriteString(errorStyle.Render(line))
		default:
			b.WriteString(mutedStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
