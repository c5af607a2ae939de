package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/go-route-map/pkg/debounce"
	"github.com/kass/go-route-map/pkg/models"
	"github.com/kass/go-route-map/pkg/routestate"
)

// fakeService returns queued results in call order.
type fakeService struct {
	mu      sync.Mutex
	calls   []models.RouteRequest
	results []*models.RouteResult
	errs    []error
}

func (f *fakeService) Route(_ context.Context, req models.RouteRequest) (*models.RouteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	i := len(f.calls) - 1

	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var res *models.RouteResult
	if i < len(f.results) {
		res = f.results[i]
	}
	if res == nil && err == nil {
		err = errors.New("fakeService: no scripted response")
	}
	return res, err
}

func sampleResult(nodes int) *models.RouteResult {
	return &models.RouteResult{
		Geometry: []models.Coordinate{
			{Lat: 40.742, Lon: -74.032},
			{Lat: 40.739, Lon: -74.030},
			{Lat: 40.735, Lon: -74.027},
		},
		DistanceMeters:  950.0,
		DurationSeconds: 180.0,
		NodeCount:       nodes,
		Algorithm:       models.AlgorithmDijkstra,
		Weight:          models.WeightDistance,
	}
}

func newTestModel(t *testing.T, svc RouteService) Model {
	t.Helper()
	return NewModel(Options{
		Client:    svc,
		Store:     routestate.New(),
		Scheduler: debounce.New(50 * time.Millisecond),
	})
}

// run a command and feed its message back through Update.
func complete(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		updated, _ := m.Update(key(k))
		m = updated.(Model)
	}
	return m
}

func TestSuccessfulRequestRendersSummary(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)

	m = complete(t, m, m.dispatch())

	require.NotNil(t, m.store.Current())
	assert.False(t, m.store.Loading())

	view := m.View()
	assert.Contains(t, view, "0.95 km")
	assert.Contains(t, view, "3.0 min")
	assert.Contains(t, view, "dijkstra")
	assert.Contains(t, view, "distance")
	assert.Contains(t, view, "false")
	assert.Contains(t, view, "42")
}

func TestFailureKeepsPreviousRouteVisible(t *testing.T) {
	svc := &fakeService{
		results: []*models.RouteResult{sampleResult(42), nil},
		errs:    []error{nil, errors.New("routing service returned status 500")},
	}
	m := newTestModel(t, svc)

	m = complete(t, m, m.dispatch())
	shown := m.store.Current()
	require.NotNil(t, shown)

	m = complete(t, m, m.dispatch())

	assert.Same(t, shown, m.store.Current(), "failed request must not clear the displayed route")
	assert.False(t, m.store.Loading())
	assert.NotEmpty(t, m.store.Err())

	view := m.View()
	assert.Contains(t, view, "0.95 km")
	assert.Contains(t, view, "status 500")
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	// The fake answers in call order: the newer request completes
	// first and gets resNewer, then the older one straggles in.
	resNewer := sampleResult(42)
	resOlder := sampleResult(10)
	svc := &fakeService{results: []*models.RouteResult{resNewer, resOlder}}
	m := newTestModel(t, svc)

	cmdOld := m.dispatch()
	cmdNew := m.dispatch()

	m = complete(t, m, cmdNew)
	require.Same(t, resNewer, m.store.Current())

	// The older completion arrives late and must change nothing.
	m = complete(t, m, cmdOld)
	assert.Same(t, resNewer, m.store.Current())
	assert.False(t, m.store.Loading())
	assert.Empty(t, m.store.Err())
}

func TestDispatchUsesSnapshotAtDispatchTime(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(1)}}
	m := newTestModel(t, svc)

	m.snapshot.Place = "Jersey City, New Jersey, USA"
	m = complete(t, m, m.dispatch())

	require.Len(t, svc.calls, 1)
	assert.Equal(t, "Jersey City, New Jersey, USA", svc.calls[0].Place)
}

func TestRefitOnlyOnRouteIdentityChange(t *testing.T) {
	res := sampleResult(42)
	svc := &fakeService{results: []*models.RouteResult{res, res}}
	m := newTestModel(t, svc)

	m = complete(t, m, m.dispatch())
	bounds1, ok := m.viewport.Bounds()
	require.True(t, ok)
	idx1 := m.vertexIdx

	// The same result object resolving again must not rebuild anything.
	m = complete(t, m, m.dispatch())
	bounds2, _ := m.viewport.Bounds()

	assert.Equal(t, bounds1, bounds2)
	assert.Same(t, idx1, m.vertexIdx)
}

func TestEmptyGeometryLeavesViewportUntouched(t *testing.T) {
	withRoute := sampleResult(42)
	empty := &models.RouteResult{}
	svc := &fakeService{results: []*models.RouteResult{withRoute, empty}}
	m := newTestModel(t, svc)

	m = complete(t, m, m.dispatch())
	before, ok := m.viewport.Bounds()
	require.True(t, ok)

	m = complete(t, m, m.dispatch())
	after, ok := m.viewport.Bounds()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestMarkerNudgeRoundsAndMirrorsIntoForm(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)
	m = complete(t, m, m.dispatch())

	origDest := m.snapshot.Destination

	// Focus the origin marker and nudge it north.
	m.focus = focusOriginMarker
	m = press(m, "up")

	assert.Equal(t, m.snapshot.Origin, m.snapshot.Origin.Round6(), "drag must apply six-decimal precision")
	assert.Greater(t, m.snapshot.Origin.Lat, 40.742)
	assert.Equal(t, origDest, m.snapshot.Destination, "dragging one marker must not move the other")
	assert.Equal(t, FormatCoordinateComponent(m.snapshot.Origin.Lat), m.inputs[focusOriginLat].Value())
}

func TestDragBurstCoalescesToOneRequest(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)

	msgs := make(chan tea.Msg, 16)
	m.sender.fn = func(msg tea.Msg) { msgs <- msg }

	m.focus = focusDestMarker
	m = press(m, "up", "up", "left", "left", "down")

	// Exactly one computeMsg fires after the quiet interval.
	select {
	case msg := <-msgs:
		assert.IsType(t, computeMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("debounced compute never fired")
	}

	select {
	case msg := <-msgs:
		t.Fatalf("burst produced a second message: %#v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEnterCancelsPendingDebounceAndFiresImmediately(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)

	msgs := make(chan tea.Msg, 16)
	m.sender.fn = func(msg tea.Msg) { msgs <- msg }

	// Arm a debounced call, then take the explicit path.
	m.focus = focusDestMarker
	m = press(m, "up")

	updated, cmd := m.Update(key("enter"))
	m = updated.(Model)
	require.NotNil(t, cmd, "enter must dispatch immediately")
	m = complete(t, m, cmd)
	require.NotNil(t, m.store.Current())

	// The canceled debounced call must not fire afterwards.
	select {
	case msg := <-msgs:
		t.Fatalf("pending debounced call fired after explicit action: %#v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTypedCoordinateEditSchedulesDebouncedRequest(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)

	msgs := make(chan tea.Msg, 16)
	m.sender.fn = func(msg tea.Msg) { msgs <- msg }

	// Move focus to the origin latitude field and append a digit.
	m = press(m, "tab")
	require.Equal(t, focusOriginLat, m.focus)
	before := m.snapshot.Origin.Lat
	m = press(m, "5")

	assert.NotEqual(t, before, m.snapshot.Origin.Lat, "parseable edit must update the snapshot")

	select {
	case msg := <-msgs:
		assert.IsType(t, computeMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("geographic edit did not schedule a request")
	}
}

func TestPlaceEditDoesNotAutoTrigger(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)

	msgs := make(chan tea.Msg, 16)
	m.sender.fn = func(msg tea.Msg) { msgs <- msg }

	require.Equal(t, focusPlace, m.focus)
	m = press(m, "x")

	assert.Contains(t, m.snapshot.Place, "x")

	select {
	case msg := <-msgs:
		t.Fatalf("place edit must not auto-trigger, got %#v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTogglesRequireExplicitAction(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)

	msgs := make(chan tea.Msg, 16)
	m.sender.fn = func(msg tea.Msg) { msgs <- msg }

	m.focus = focusAlgorithm
	m = press(m, " ")
	assert.Equal(t, models.AlgorithmAStar, m.snapshot.Algorithm)

	m.focus = focusAvoid
	m = press(m, " ")
	assert.True(t, m.snapshot.AvoidHighways)

	select {
	case msg := <-msgs:
		t.Fatalf("non-geographic edits must not auto-trigger, got %#v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestComputeMsgDispatchesWithFreshSnapshot(t *testing.T) {
	svc := &fakeService{results: []*models.RouteResult{sampleResult(42)}}
	m := newTestModel(t, svc)

	// Mutate the snapshot after scheduling would have happened; the
	// dispatch triggered by computeMsg must see the newest values.
	m.snapshot.Origin = models.Coordinate{Lat: 40.75, Lon: -74.04}

	updated, cmd := m.Update(computeMsg{})
	m = updated.(Model)
	m = complete(t, m, cmd)

	require.Len(t, svc.calls, 1)
	assert.Equal(t, models.Coordinate{Lat: 40.75, Lon: -74.04}, svc.calls[0].Origin)
}
