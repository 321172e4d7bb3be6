package state

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/randytsao24/heisenberg/internal/config"
	"github.com/randytsao24/heisenberg/internal/transit"
	"github.com/randytsao24/heisenberg/internal/weather"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testLines() []config.Line {
	return []config.Line{{
		Name:  "Red",
		Stops: []config.Stop{{Name: "A", ID: "10"}, {Name: "B", ID: "20"}},
	}}
}

func predictionsX() transit.Predictions {
	return transit.Predictions{Lines: []transit.LinePredictions{{
		Name: "Red",
		Stops: []transit.StopPredictions{
			{Name: "A", Countdowns: transit.CountdownList{2, 5}},
			{Name: "B"},
		},
	}}}
}

func forecastY() weather.Forecast {
	start := time.Date(2024, 5, 24, 17, 0, 0, 0, time.UTC)
	return weather.Forecast{Periods: []weather.Period{
		{Start: start, End: start.Add(time.Hour), Temperature: 84},
	}}
}

// recorder is a Renderer that keeps every state it is asked to draw
type recorder struct {
	mu     sync.Mutex
	states []State
	err    error
}

func (r *recorder) Render(s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
	return r.err
}

func TestModeNext(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{Weather, Transit},
		{Transit, Weather},
	}
	for _, tt := range tests {
		if got := tt.mode.Next(); got != tt.want {
			t.Errorf("%v.Next() = %v, want %v", tt.mode, got, tt.want)
		}
	}

	// Advancing len(Modes()) times returns to the start
	m := Weather
	for range Modes() {
		m = m.Next()
	}
	if m != Weather {
		t.Errorf("full cycle ended on %v", m)
	}
}

func TestNew(t *testing.T) {
	s := New(testLines())
	if s.Mode != Weather {
		t.Errorf("Mode = %v, want Weather", s.Mode)
	}
	if len(s.Transit.Lines) != 1 || len(s.Transit.Lines[0].Stops) != 2 {
		t.Fatalf("Transit = %+v, want config shape", s.Transit)
	}
	for _, stop := range s.Transit.Lines[0].Stops {
		if len(stop.Countdowns) != 0 {
			t.Errorf("%s has countdowns %v", stop.Name, stop.Countdowns)
		}
	}
	if _, err := s.Weather.Now(); !errors.Is(err, weather.ErrEmptyForecast) {
		t.Errorf("initial forecast Now err = %v", err)
	}
}

func TestApply(t *testing.T) {
	base := New(testLines())

	tests := []struct {
		name        string
		msg         Message
		wantRunning bool
		check       func(t *testing.T, s State)
	}{
		{"switch to transit", SwitchMode{Mode: Transit}, true, func(t *testing.T, s State) {
			if s.Mode != Transit {
				t.Errorf("Mode = %v", s.Mode)
			}
		}},
		{"switch to current mode", SwitchMode{Mode: Weather}, true, func(t *testing.T, s State) {
			if s.Mode != Weather {
				t.Errorf("Mode = %v", s.Mode)
			}
		}},
		{"advance", AdvanceMode{}, true, func(t *testing.T, s State) {
			if s.Mode != Transit {
				t.Errorf("Mode = %v", s.Mode)
			}
		}},
		{"transit update", TransitUpdated{Predictions: predictionsX()}, true, func(t *testing.T, s State) {
			if !reflect.DeepEqual(s.Transit, predictionsX()) {
				t.Errorf("Transit = %+v", s.Transit)
			}
		}},
		{"weather update", WeatherUpdated{Forecast: forecastY()}, true, func(t *testing.T, s State) {
			if !reflect.DeepEqual(s.Weather, forecastY()) {
				t.Errorf("Weather = %+v", s.Weather)
			}
		}},
		{"quit", Quit{}, false, func(t *testing.T, s State) {
			if !reflect.DeepEqual(s, base) {
				t.Errorf("quit changed state: %+v", s)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, running := Apply(base, tt.msg)
			if running != tt.wantRunning {
				t.Errorf("running = %v, want %v", running, tt.wantRunning)
			}
			tt.check(t, got)
		})
	}
}

func TestApplyTransitUpdatedIdempotent(t *testing.T) {
	msg := TransitUpdated{Predictions: predictionsX()}

	once, _ := Apply(New(testLines()), msg)
	twice, _ := Apply(once, msg)

	if !reflect.DeepEqual(once.Transit, twice.Transit) {
		t.Errorf("second apply changed transit:\n%+v\n%+v", once.Transit, twice.Transit)
	}
	if !reflect.DeepEqual(twice.Transit, predictionsX()) {
		t.Errorf("Transit = %+v", twice.Transit)
	}
}

func TestRunScenario(t *testing.T) {
	mb := NewMailbox()
	for _, msg := range []Message{
		TransitUpdated{Predictions: predictionsX()},
		WeatherUpdated{Forecast: forecastY()},
		AdvanceMode{},
		Quit{},
		// Never applied
		AdvanceMode{},
	} {
		if !mb.Send(msg) {
			t.Fatal("send failed before Run")
		}
	}

	r := &recorder{}
	final := Run(mb, r, New(testLines()), zap.NewNop().Sugar())

	if final.Mode != Transit {
		t.Errorf("Mode = %v, want Transit", final.Mode)
	}
	if !reflect.DeepEqual(final.Transit, predictionsX()) {
		t.Errorf("Transit = %+v", final.Transit)
	}
	if !reflect.DeepEqual(final.Weather, forecastY()) {
		t.Errorf("Weather = %+v", final.Weather)
	}

	// Initial render plus one per applied message
	if len(r.states) != 4 {
		t.Errorf("rendered %d times, want 4", len(r.states))
	}
	if r.states[0].Mode != Weather || len(r.states[0].Transit.Lines[0].Stops[0].Countdowns) != 0 {
		t.Errorf("first render was not the initial state: %+v", r.states[0])
	}

	if mb.Send(AdvanceMode{}) {
		t.Error("mailbox accepted a send after Run returned")
	}
}

func TestRunLogsRenderErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mb := NewMailbox()
	mb.Send(AdvanceMode{})
	mb.Send(Quit{})

	r := &recorder{err: errors.New("terminal gone")}
	final := Run(mb, r, New(testLines()), zap.New(core).Sugar())

	if final.Mode != Transit {
		t.Errorf("Mode = %v, want Transit", final.Mode)
	}
	if n := logs.FilterMessage("render failed").Len(); n != 2 {
		t.Errorf("got %d render diagnostics, want 2", n)
	}
}

func TestRunConcurrentProducers(t *testing.T) {
	const perProducer = 200
	mb := NewMailbox()

	var wg sync.WaitGroup
	for _, mode := range []Mode{Weather, Transit} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				mb.Send(SwitchMode{Mode: mode})
			}
		}()
	}
	go func() {
		wg.Wait()
		mb.Send(Quit{})
	}()

	r := &recorder{}
	done := make(chan State)
	go func() { done <- Run(mb, r, New(testLines()), zap.NewNop().Sugar()) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}

	if want := 1 + 2*perProducer; len(r.states) != want {
		t.Errorf("rendered %d times, want %d", len(r.states), want)
	}
}
