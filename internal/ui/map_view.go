package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-swath/internal/engine"
	"github.com/litescript/ls-swath/internal/geo"
)

const (
	minZoom = 1.0
	maxZoom = 32.0

	// Camera animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 16 * time.Millisecond

	// Glyphs
	glyphTrack     = '•'
	glyphSwath     = '░'
	glyphCoverage  = '·'
	glyphStation   = '▲'
	glyphGraticule = '┼'

	// Colors
	colorBackground = "236"
	colorGraticule  = "238"
	colorTrack      = "229" // bright gold
	colorSwath      = "135" // violet
	colorCoverage   = "#7CFC00"
	colorStation    = "46"
	colorLabel      = "#d0c8ff"
	colorProblem    = "#E84A27"
)

// LabelMode controls which labels the map draws.
type LabelMode int

const (
	LabelNone     LabelMode = iota // No labels
	LabelStations                  // Station names only
	LabelAll                       // Station names and time labels
)

// ZoomChangedMsg reports a new map zoom, used as the display scale.
type ZoomChangedMsg struct {
	Scale float64
}

// MapModel renders the scene on an equirectangular ground map.
type MapModel struct {
	width  int
	height int

	scene *engine.Scene

	// Camera (center of view)
	centerLat float64
	centerLon float64
	zoom      float64

	labelMode LabelMode
	focusIdx  int // Station the camera last flew to

	// Camera animation
	animating    bool
	animStart    time.Time
	animStartLat float64
	animStartLon float64
	animTargLat  float64
	animTargLon  float64
}

// mapAnimTickMsg is sent while the camera is moving.
type mapAnimTickMsg time.Time

func mapAnimTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return mapAnimTickMsg(t)
	})
}

// NewMapModel creates a map showing the whole earth.
func NewMapModel() MapModel {
	return MapModel{zoom: minZoom, labelMode: LabelAll}
}

// SetSize updates the viewport size.
func (m MapModel) SetSize(width, height int) MapModel {
	m.width = width
	m.height = height
	return m
}

// UpdateScene replaces the scene being drawn.
func (m MapModel) UpdateScene(scene *engine.Scene) MapModel {
	m.scene = scene
	return m
}

// Zoom returns the current zoom factor.
func (m MapModel) Zoom() float64 {
	return m.zoom
}

// Init implements tea.Model.
func (m MapModel) Init() tea.Cmd {
	return nil
}

// Update handles map navigation keys.
func (m MapModel) Update(msg tea.Msg) (MapModel, tea.Cmd) {
	if _, ok := msg.(mapAnimTickMsg); ok {
		if m.animating {
			return m.updateAnimation()
		}
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// Pan by a tenth of the visible span
	panLon := 36 / m.zoom
	panLat := 18 / m.zoom

	switch key.String() {
	case "+", "=":
		return m.setZoom(m.zoom * 2)
	case "-", "_":
		return m.setZoom(m.zoom / 2)
	case "left":
		m.centerLon = geo.NormalizeLon(m.centerLon - panLon)
	case "right":
		m.centerLon = geo.NormalizeLon(m.centerLon + panLon)
	case "up":
		m.centerLat = math.Min(90, m.centerLat+panLat)
	case "down":
		m.centerLat = math.Max(-90, m.centerLat-panLat)
	case "0":
		m.centerLat, m.centerLon = 0, 0
		return m.setZoom(minZoom)
	case "f":
		return m.centerOnTrack()
	case "n":
		return m.focusNextStation()
	case "l":
		m.labelMode = (m.labelMode + 1) % 3
	}
	return m, nil
}

func (m MapModel) setZoom(z float64) (MapModel, tea.Cmd) {
	z = math.Max(minZoom, math.Min(maxZoom, z))
	if z == m.zoom {
		return m, nil
	}
	m.zoom = z
	return m, func() tea.Msg { return ZoomChangedMsg{Scale: z} }
}

// centerOnTrack flies the camera to the middle track sample.
func (m MapModel) centerOnTrack() (MapModel, tea.Cmd) {
	if m.scene == nil || m.scene.Centerline.Empty() {
		return m, nil
	}
	pts := m.scene.Centerline.Points
	return m.flyTo(pts[len(pts)/2])
}

// focusNextStation flies the camera to the next labeled station.
func (m MapModel) focusNextStation() (MapModel, tea.Cmd) {
	if m.scene == nil || len(m.scene.StationLabels) == 0 {
		return m, nil
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.scene.StationLabels)
	return m.flyTo(m.scene.StationLabels[m.focusIdx].Point)
}

func (m MapModel) flyTo(p geo.Point) (MapModel, tea.Cmd) {
	m.animating = true
	m.animStart = time.Now()
	m.animStartLat = m.centerLat
	m.animStartLon = m.centerLon
	m.animTargLat = p.Lat
	m.animTargLon = p.Lon
	return m, mapAnimTick()
}

func (m MapModel) updateAnimation() (MapModel, tea.Cmd) {
	t := float64(time.Since(m.animStart)) / float64(animDuration)
	if t >= 1.0 {
		m.animating = false
		m.centerLat = m.animTargLat
		m.centerLon = m.animTargLon
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.centerLat = lerp(m.animStartLat, m.animTargLat, t)
	m.centerLon = geo.NormalizeLon(lerpLon(m.animStartLon, m.animTargLon, t))
	return m, mapAnimTick()
}

// View renders the map.
func (m MapModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Map view requires larger terminal"
	}

	viewHeight := m.height - 3

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCanvas(m.width, viewHeight))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m MapModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorLabel))

	var labelStr string
	switch m.labelMode {
	case LabelNone:
		labelStr = dimStyle.Render("Labels: off")
	case LabelStations:
		labelStr = accentStyle.Render("Labels: stations")
	case LabelAll:
		labelStr = accentStyle.Render("Labels: all")
	}

	camera := dimStyle.Render(fmt.Sprintf("Center %.1f°, %.1f° | Zoom ×%.0f", m.centerLat, m.centerLon, m.zoom))

	return fmt.Sprintf("%s | %s | %s", titleStyle.Render("Ground Map"), labelStr, camera)
}

func (m MapModel) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	problemStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorProblem))

	if m.scene == nil {
		return dimStyle.Render("No scene computed")
	}

	status := dimStyle.Render(fmt.Sprintf("%d curves | %d time labels | %d stations",
		m.scene.Curves(), len(m.scene.TimeLabels), len(m.scene.StationLabels)))
	if len(m.scene.Problems) > 0 {
		status += "  " + problemStyle.Render(fmt.Sprintf("%d coverage omitted", len(m.scene.Problems)))
	}
	return status
}

// canvas is a character grid with one color per cell.
type canvas struct {
	cells  [][]rune
	colors [][]lipgloss.Color
	width  int
	height int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{
		cells:  make([][]rune, height),
		colors: make([][]lipgloss.Color, height),
		width:  width,
		height: height,
	}
	for y := 0; y < height; y++ {
		c.cells[y] = make([]rune, width)
		c.colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			c.cells[y][x] = ' '
			c.colors[y][x] = colorBackground
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, color lipgloss.Color) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.cells[y][x] = r
	c.colors[y][x] = color
}

// text writes s starting at (x, y), clipped to the canvas.
func (c *canvas) text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, color)
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			style := lipgloss.NewStyle().Foreground(c.colors[y][x])
			b.WriteString(style.Render(string(c.cells[y][x])))
		}
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m MapModel) renderCanvas(width, height int) string {
	c := newCanvas(width, height)
	m.drawGraticule(c)

	if m.scene != nil {
		for _, cov := range m.scene.Coverage {
			m.drawCurve(c, cov.Circle.Boundary.Points, glyphCoverage, colorCoverage)
		}
		m.drawCurve(c, m.scene.Swath.Left.Points, glyphSwath, colorSwath)
		m.drawCurve(c, m.scene.Swath.Right.Points, glyphSwath, colorSwath)
		m.drawCurve(c, m.scene.Centerline.Points, glyphTrack, colorTrack)

		for _, l := range m.scene.StationLabels {
			x, y, ok := m.project(l.Point, width, height)
			if !ok {
				continue
			}
			c.set(x, y, glyphStation, colorStation)
			if m.labelMode != LabelNone {
				c.text(x+2, y, l.Text, colorLabel)
			}
		}

		if m.labelMode == LabelAll {
			for _, l := range m.scene.TimeLabels {
				if x, y, ok := m.project(l.Point, width, height); ok {
					c.text(x+1, y, l.Text, "60")
				}
			}
		}
	}

	return c.String()
}

// drawGraticule marks every 30° of latitude and longitude intersection.
func (m MapModel) drawGraticule(c *canvas) {
	for lat := -60.0; lat <= 60; lat += 30 {
		for lon := -180.0; lon < 180; lon += 30 {
			if x, y, ok := m.project(geo.Point{Lat: lat, Lon: lon}, c.width, c.height); ok {
				c.set(x, y, glyphGraticule, colorGraticule)
			}
		}
	}
}

// drawCurve rasterizes a polyline, filling the gap between consecutive
// points. Steps that wrap around the screen edge are not connected.
func (m MapModel) drawCurve(c *canvas, pts []geo.Point, r rune, color lipgloss.Color) {
	prevX, prevY, prevOK := 0, 0, false
	for _, p := range pts {
		x, y, ok := m.project(p, c.width, c.height)
		if ok && prevOK && abs(x-prevX) < c.width/2 {
			steps := max(abs(x-prevX), abs(y-prevY))
			for s := 1; s < steps; s++ {
				t := float64(s) / float64(steps)
				c.set(prevX+int(math.Round(float64(x-prevX)*t)), prevY+int(math.Round(float64(y-prevY)*t)), r, color)
			}
		}
		if ok {
			c.set(x, y, r, color)
		}
		prevX, prevY, prevOK = x, y, ok
	}
}

// project maps a point to canvas coordinates. The visible span is 360° of
// longitude and 180° of latitude divided by the zoom factor.
func (m MapModel) project(p geo.Point, width, height int) (int, int, bool) {
	lonSpan := 360 / m.zoom
	latSpan := 180 / m.zoom

	dLon := geo.NormalizeLon(p.Lon - m.centerLon)
	dLat := p.Lat - m.centerLat
	if dLon < -lonSpan/2 || dLon > lonSpan/2 || dLat < -latSpan/2 || dLat > latSpan/2 {
		return 0, 0, false
	}

	x := int(math.Round((dLon/lonSpan + 0.5) * float64(width-1)))
	y := int(math.Round((0.5 - dLat/latSpan) * float64(height-1)))
	return x, y, true
}

// lerpLon interpolates between longitudes across the shorter side of the globe.
func lerpLon(a, b, t float64) float64 {
	return a + geo.NormalizeLon(b-a)*t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
