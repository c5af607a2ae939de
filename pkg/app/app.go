// Package app implements the interactive terminal map client: a form
// for routing inputs, an ASCII map canvas, and the orchestration that
// keeps the displayed route consistent with the latest request while
// rapid input is debounced and stale completions are discarded.
package app

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/kass/go-route-map/pkg/debounce"
	"github.com/kass/go-route-map/pkg/geo"
	"github.com/kass/go-route-map/pkg/models"
	"github.com/kass/go-route-map/pkg/routestate"
)

// RouteService is the slice of the HTTP client the UI needs.
type RouteService interface {
	Route(ctx context.Context, req models.RouteRequest) (*models.RouteResult, error)
}

// padFraction is the relative margin kept around a fitted route.
const padFraction = 0.15

// focusArea enumerates the focusable controls, cycled with tab. The two
// marker areas make the arrow keys act as drag gestures on the
// corresponding map marker.
type focusArea int

const (
	focusPlace focusArea = iota
	focusOriginLat
	focusOriginLon
	focusDestLat
	focusDestLon
	focusAlgorithm
	focusWeight
	focusAvoid
	focusOriginMarker
	focusDestMarker
	focusCount
)

// textFieldCount is how many focus areas map onto textinput widgets.
const textFieldCount = 5

// computeMsg asks the update loop to dispatch a request using the
// then-current snapshot. It is posted by the debounce scheduler, so the
// snapshot is read fresh at fire time, not at schedule time.
type computeMsg struct{}

// routeDoneMsg carries a request completion back into the update loop
// together with the version captured at dispatch.
type routeDoneMsg struct {
	version uint64
	result  *models.RouteResult
	err     error
}

// Options wires a Model together.
type Options struct {
	Client      RouteService
	Store       *routestate.Store
	Scheduler   *debounce.Scheduler
	Logger      log.Logger
	SessionFile string
	Initial     models.RouteRequest
}

// Model is the bubbletea model for the interactive client. All mutable
// route state lives in the injected routestate.Store and is only
// touched from Update, so the version gate alone orders completions.
type Model struct {
	snapshot models.RouteRequest

	inputs  [textFieldCount]textinput.Model
	focus   focusArea
	spinner spinner.Model

	store  *routestate.Store
	client RouteService
	sched  *debounce.Scheduler
	logger log.Logger

	viewport  geo.Viewport
	vertexIdx *geo.VertexIndex
	fitted    *models.RouteResult

	sessionFile string
	width       int
	height      int

	// sender posts messages into the running program from the scheduler
	// goroutine; Run injects program.Send here. A pointer so every copy
	// of the model shares the wiring.
	sender *sender
}

type sender struct {
	fn func(tea.Msg)
}

// NewModel builds a Model from the given options. Zero-value options
// get working defaults so tests can construct models piecemeal.
func NewModel(opts Options) Model {
	if opts.Store == nil {
		opts.Store = routestate.New()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = debounce.New(300 * time.Millisecond)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Initial == (models.RouteRequest{}) {
		opts.Initial = models.DefaultRequest()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	m := Model{
		snapshot:    opts.Initial,
		spinner:     s,
		store:       opts.Store,
		client:      opts.Client,
		sched:       opts.Scheduler,
		logger:      opts.Logger,
		sessionFile: opts.SessionFile,
		width:       80,
		height:      24,
		sender:      &sender{},
	}

	placeholders := [textFieldCount]string{"place", "origin lat", "origin lon", "dest lat", "dest lon"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 64
		ti.Width = 26
		m.inputs[i] = ti
	}
	m.syncInputsFromSnapshot()
	m.inputs[focusPlace].Focus()

	return m
}

// syncInputsFromSnapshot mirrors the authoritative snapshot into the
// text widgets. Used at startup and after marker drags.
func (m *Model) syncInputsFromSnapshot() {
	m.inputs[focusPlace].SetValue(m.snapshot.Place)
	m.inputs[focusOriginLat].SetValue(FormatCoordinateComponent(m.snapshot.Origin.Lat))
	m.inputs[focusOriginLon].SetValue(FormatCoordinateComponent(m.snapshot.Origin.Lon))
	m.inputs[focusDestLat].SetValue(FormatCoordinateComponent(m.snapshot.Destination.Lat))
	m.inputs[focusDestLon].SetValue(FormatCoordinateComponent(m.snapshot.Destination.Lon))
}

// Snapshot returns the current authoritative request snapshot.
func (m Model) Snapshot() models.RouteRequest {
	return m.snapshot
}

func (m Model) Init() tea.Cmd {
	// Compute the initial route right away so the canvas is not empty.
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.dispatch())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case computeMsg:
		// Debounced trigger: the quiet interval elapsed.
		return m, m.dispatch()

	case routeDoneMsg:
		return m.applyCompletion(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keys to the form controller.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.sched.Cancel()
		if m.sessionFile != "" {
			if err := SaveSession(m.sessionFile, m.snapshot); err != nil {
				level.Warn(m.logger).Log("msg", "failed to save session", "err", err)
			}
		}
		return m, tea.Quit

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "enter":
		// Explicit action: bypass the timer and fire now, dropping any
		// pending debounced call so it cannot duplicate this request.
		m.sched.Cancel()
		return m, m.dispatch()
	}

	switch {
	case m.focus < textFieldCount:
		return m.updateTextField(msg)
	case m.focus == focusAlgorithm:
		if isToggleKey(msg) {
			m.snapshot.Algorithm = toggleAlgorithm(m.snapshot.Algorithm)
		}
		return m, nil
	case m.focus == focusWeight:
		if isToggleKey(msg) {
			m.snapshot.Weight = toggleWeight(m.snapshot.Weight)
		}
		return m, nil
	case m.focus == focusAvoid:
		if isToggleKey(msg) {
			m.snapshot.AvoidHighways = !m.snapshot.AvoidHighways
		}
		return m, nil
	case m.focus == focusOriginMarker || m.focus == focusDestMarker:
		return m.nudgeMarker(msg), nil
	}

	return m, nil
}

func isToggleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case " ", "space", "left", "right":
		return true
	}
	return false
}

func toggleAlgorithm(a models.Algorithm) models.Algorithm {
	if a == models.AlgorithmDijkstra {
		return models.AlgorithmAStar
	}
	return models.AlgorithmDijkstra
}

func toggleWeight(w models.Weight) models.Weight {
	if w == models.WeightDistance {
		return models.WeightTime
	}
	return models.WeightDistance
}

// cycleFocus moves focus by delta, wrapping around, and keeps the
// textinput focus flags in sync.
func (m Model) cycleFocus(delta int) Model {
	if m.focus < textFieldCount {
		m.inputs[m.focus].Blur()
	}
	m.focus = focusArea((int(m.focus) + delta + int(focusCount)) % int(focusCount))
	if m.focus < textFieldCount {
		m.inputs[m.focus].Focus()
	}
	return m
}

// updateTextField feeds a key into the focused text widget and applies
// the form-mapping rules: place edits update the snapshot silently;
// parseable coordinate edits update the snapshot and schedule a
// debounced request. Unparseable coordinate text leaves the snapshot
// alone until it parses again.
func (m Model) updateTextField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	value := m.inputs[m.focus].Value()

	switch m.focus {
	case focusPlace:
		m.snapshot.Place = value

	case focusOriginLat, focusOriginLon, focusDestLat, focusDestLon:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return m, cmd
		}
		if m.applyCoordinateField(m.focus, parsed) {
			m.scheduleCompute()
		}
	}

	return m, cmd
}

// applyCoordinateField writes one geographic component into the
// snapshot, reporting whether the value actually changed. Out-of-range
// values are accepted as entered; the server is authoritative and the
// request will surface its rejection.
func (m *Model) applyCoordinateField(f focusArea, v float64) bool {
	var target *float64
	switch f {
	case focusOriginLat:
		target = &m.snapshot.Origin.Lat
	case focusOriginLon:
		target = &m.snapshot.Origin.Lon
	case focusDestLat:
		target = &m.snapshot.Destination.Lat
	case focusDestLon:
		target = &m.snapshot.Destination.Lon
	default:
		return false
	}
	if *target == v {
		return false
	}
	*target = v
	return true
}

// nudgeMarker treats arrow keys as a drag gesture on the focused
// marker: one canvas cell of movement, rounded to six decimals, taking
// the debounced path. Each marker moves independently.
func (m Model) nudgeMarker(msg tea.KeyMsg) Model {
	dLat, dLon := m.viewport.CellSizeDegrees(m.canvasSize())

	var delta models.Coordinate
	switch msg.String() {
	case "up":
		delta.Lat = dLat
	case "down":
		delta.Lat = -dLat
	case "left":
		delta.Lon = -dLon
	case "right":
		delta.Lon = dLon
	default:
		return m
	}

	if m.focus == focusOriginMarker {
		m.snapshot.Origin = models.Coordinate{
			Lat: m.snapshot.Origin.Lat + delta.Lat,
			Lon: m.snapshot.Origin.Lon + delta.Lon,
		}.Round6()
	} else {
		m.snapshot.Destination = models.Coordinate{
			Lat: m.snapshot.Destination.Lat + delta.Lat,
			Lon: m.snapshot.Destination.Lon + delta.Lon,
		}.Round6()
	}

	m.syncInputsFromSnapshot()
	m.scheduleCompute()
	return m
}

// scheduleCompute arms the debounce scheduler. The callback only posts
// a message; the snapshot is read fresh when the message is handled.
func (m *Model) scheduleCompute() {
	s := m.sender
	m.sched.Schedule(func() {
		if s.fn != nil {
			s.fn(computeMsg{})
		}
	})
}

// dispatch captures a version and a snapshot, then runs the request off
// the update loop. The completion re-enters Update as a routeDoneMsg.
func (m Model) dispatch() tea.Cmd {
	if m.client == nil {
		return nil
	}

	snap := m.snapshot
	v := m.store.Begin()
	client := m.client
	logger := m.logger

	level.Debug(logger).Log("msg", "dispatching route request", "version", v,
		"origin_lat", snap.Origin.Lat, "origin_lon", snap.Origin.Lon,
		"dest_lat", snap.Destination.Lat, "dest_lon", snap.Destination.Lon)

	return func() tea.Msg {
		res, err := client.Route(context.Background(), snap)
		return routeDoneMsg{version: v, result: res, err: err}
	}
}

// applyCompletion pushes a completion through the version gate and, on
// an applied success, refits the viewport and rebuilds the vertex
// index. Stale completions change nothing.
func (m Model) applyCompletion(msg routeDoneMsg) Model {
	if msg.err != nil {
		if m.store.Fail(msg.version, msg.err) {
			level.Warn(m.logger).Log("msg", "route request failed", "version", msg.version, "err", msg.err)
		} else {
			level.Debug(m.logger).Log("msg", "stale failure discarded", "version", msg.version)
		}
		return m
	}

	if !m.store.Resolve(msg.version, msg.result) {
		level.Debug(m.logger).Log("msg", "stale result discarded", "version", msg.version)
		return m
	}

	m.refit()
	return m
}

// refit adjusts the viewport and vertex index when the identity of the
// displayed route changes. Empty geometry leaves the previous viewport
// in place.
func (m *Model) refit() {
	cur := m.store.Current()
	if cur == nil || cur == m.fitted {
		return
	}
	m.viewport.Fit(cur.Geometry, padFraction)
	m.vertexIdx = geo.NewVertexIndex(cur.Geometry)
	m.fitted = cur
}
