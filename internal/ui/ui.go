// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-swath/internal/config"
	"github.com/litescript/ls-swath/internal/engine"
	"github.com/litescript/ls-swath/internal/logging"
	"github.com/litescript/ls-swath/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewControls ViewMode = iota
	ViewMap
)

const recentEvents = 5

// AnimTickMsg triggers fast animation updates.
type AnimTickMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	eng      *engine.Engine
	settings *config.Settings
	log      *logging.Logger

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	statusErr bool
	animTick  int // Animation tick for shimmer effects

	// Sub-models
	controls ControlsModel
	mapView  MapModel

	scene *engine.Scene
}

// New creates a new root UI model. settings must already be applied to eng.
func New(eng *engine.Engine, settings *config.Settings, sensors *config.SensorTable, log *logging.Logger) Model {
	if log == nil {
		log = logging.Discard()
	}
	m := Model{
		eng:      eng,
		settings: settings,
		log:      log.Named("ui"),
		viewMode: ViewControls,
		controls: NewControlsModel(eng, settings, sensors),
		mapView:  NewMapModel(),
	}
	m.refreshScene()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return animTickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.controls.Editing() && m.viewMode == ViewControls {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			cmds = append(cmds, m.updateActiveView(msg))
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewControls
		case "2", "m":
			m.viewMode = ViewMap
		case "tab":
			m.viewMode = (m.viewMode + 1) % 2

		case "g":
			m.toggle(func(v *engine.Visibility) *bool { return &v.Track }, "Track")
		case "s":
			m.toggle(func(v *engine.Visibility) *bool { return &v.Swath }, "Swath")
		case "c":
			m.toggle(func(v *engine.Visibility) *bool { return &v.Coverage }, "Coverage")
		case "r":
			m.eng.Recompute()
			m.setStatus("Recomputed all curves", false)

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo takes ~10 lines, tabs and footer ~4
		contentHeight := msg.Height - 15
		m.controls = m.controls.SetSize(msg.Width, contentHeight)
		m.mapView = m.mapView.SetSize(msg.Width, contentHeight)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case StatusMsg:
		m.setStatus(msg.Text, msg.Err)

	case ZoomChangedMsg:
		if err := m.eng.SetDisplayScale(msg.Scale); err != nil {
			m.setStatus(err.Error(), true)
		}

	case mapAnimTickMsg:
		// A fly-to keeps running while the map is not shown.
		var cmd tea.Cmd
		m.mapView, cmd = m.mapView.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	m.refreshScene()
	return m, tea.Batch(cmds...)
}

// toggle flips one visibility flag.
func (m *Model) toggle(flag func(*engine.Visibility) *bool, name string) {
	v := m.eng.Visibility()
	p := flag(&v)
	*p = !*p
	m.eng.SetVisibility(v)

	state := "hidden"
	if *p {
		state = "shown"
	}
	m.log.Debug("visibility %s %s", name, state)
	m.setStatus(name+" "+state, false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
	if isErr {
		m.log.Warn("%s", text)
	}
}

// refreshScene redraws through the engine and pushes the scene to views.
// A clean engine hands back its cached scene.
func (m *Model) refreshScene() {
	m.scene = m.eng.Redraw()
	m.controls = m.controls.UpdateScene(m.scene, m.eng.RecentEvents(recentEvents))
	m.mapView = m.mapView.UpdateScene(m.scene)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewControls:
		m.controls, cmd = m.controls.Update(msg)
	case ViewMap:
		m.mapView, cmd = m.mapView.Update(msg)
	}
	return cmd
}

// Scene returns the scene most recently drawn.
func (m Model) Scene() *engine.Scene {
	return m.scene
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewControls:
		content = m.controls.View()
	case ViewMap:
		content = m.mapView.View()
	}

	return m.renderLogo() + m.renderTabs() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗      ███████╗██╗    ██╗ █████╗ ████████╗██╗  ██╗`,
		`  ██║     ██╔════╝      ██╔════╝██║    ██║██╔══██╗╚══██╔══╝██║  ██║`,
		`  ██║     ███████╗█████╗███████╗██║ █╗ ██║███████║   ██║   ███████║`,
		`  ██║     ╚════██║╚════╝╚════██║██║███╗██║██╔══██║   ██║   ██╔══██║`,
		`  ███████╗███████║      ███████║╚███╔███╔╝██║  ██║   ██║   ██║  ██║`,
		`  ╚══════╝╚══════╝      ╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Orbit Swath · Ground Station Coverage"))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("  (c) 2025 litescript.net | v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient.
// Horizontal: teal -> blue -> violet; vertical: darker toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	if xRatio < 0.5 {
		// Teal (#14B8A6) to Blue (#3B82F6)
		t := xRatio / 0.5
		r = lerp(20, 59, t)
		g = lerp(184, 130, t)
		b = lerp(166, 246, t)
	} else {
		// Blue to Violet (#8B5CF6)
		t := (xRatio - 0.5) / 0.5
		r = lerp(59, 139, t)
		g = lerp(130, 92, t)
		b = 246
	}

	brightness := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return int(v)
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Controls", "[2] Map"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}

	vis := m.eng.Visibility()
	flags := fmt.Sprintf("[g]track %s  [s]swath %s  [c]coverage %s",
		onOff(vis.Track), onOff(vis.Swath), onOff(vis.Coverage))

	return "  " + strings.Join(parts, "  ") + "    " + dimStyle.Render(flags) + "\n"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	if m.scene == nil || (m.scene.Source == "" && len(m.eng.Stations()) == 0) {
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("No track or stations loaded")
	} else {
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" gen %d | %d curves | %s",
			m.scene.Generation, m.scene.Curves(), m.scene.Source))
	}

	var help string
	switch m.viewMode {
	case ViewMap:
		help = dimStyle.Render("+/-: zoom | arrows: pan | f: track | n: station | l: labels | 0: reset")
	default:
		help = dimStyle.Render("↑↓: select | enter: edit | ←→: sensor | t: altitude | a/n: add | x: remove | r: recompute")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help

	if m.statusMsg != "" {
		if m.statusErr {
			footer += "\n  " + errorStyle.Render(m.statusMsg)
		} else {
			footer += "\n  " + dimStyle.Render(m.statusMsg)
		}
	}

	return footer
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := abs(i - pos + 4)

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
