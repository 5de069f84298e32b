package metrics

import (
	"sync"
	"testing"
	"time"
)

func enable(t *testing.T) {
	t.Helper()
	prev := Enabled()
	SetEnabled(true)
	t.Cleanup(func() { SetEnabled(prev) })
}

func TestTimingMetric_Record(t *testing.T) {
	enable(t)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.Record(3 * time.Millisecond)

	s := m.Stats()
	if s.Count != 3 {
		t.Errorf("count = %d", s.Count)
	}
	if s.MinMs != 2 || s.MaxMs != 4 || s.AvgMs != 3 || s.TotalMs != 9 {
		t.Errorf("stats = %+v", s)
	}

	m.Reset()
	if m.Count() != 0 || m.MinNs() != 0 || m.MaxNs() != 0 {
		t.Error("reset should clear every field")
	}
}

func TestTimingMetric_Concurrent(t *testing.T) {
	enable(t)
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.Record(d)
		}(time.Duration(i) * time.Microsecond)
	}
	wg.Wait()

	if m.Count() != 50 {
		t.Errorf("count = %d", m.Count())
	}
	if m.MinNs() != 1000 || m.MaxNs() != 50000 {
		t.Errorf("min/max = %d/%d", m.MinNs(), m.MaxNs())
	}
}

func TestTimer_Disabled(t *testing.T) {
	prev := Enabled()
	SetEnabled(false)
	defer SetEnabled(prev)

	m := newTimingMetric("off")
	Timer(m)()
	if m.Count() != 0 {
		t.Error("disabled timer recorded")
	}
}

func TestTimerWithCallback(t *testing.T) {
	enable(t)

	m := newTimingMetric("cb")
	var got time.Duration
	TimerWithCallback(m, func(d time.Duration) { got = d })()
	if m.Count() != 1 || got < 0 {
		t.Errorf("count=%d d=%v", m.Count(), got)
	}
}

func TestAllTimingStats_OnlyRecorded(t *testing.T) {
	enable(t)
	ResetAll()
	defer ResetAll()

	RenderBoard.Record(time.Millisecond)
	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "render_board" {
		t.Errorf("stats = %+v", stats)
	}
	if len(AllTimingMetrics()) != 5 {
		t.Errorf("registered metrics = %d", len(AllTimingMetrics()))
	}
}
