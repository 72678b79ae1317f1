package tempo

import (
	"sync"
	"testing"

	"beatbox-service/internal/types"
)

func TestNewDefaults(t *testing.T) {
	s := New(0, types.Mode(9))
	if s.BPM() != DefaultBPM {
		t.Errorf("Expected default BPM %d, got %d", DefaultBPM, s.BPM())
	}
	if s.Mode() != types.ModeOff {
		t.Errorf("Expected ModeOff, got %v", s.Mode())
	}
}

func TestSetBPMRange(t *testing.T) {
	s := New(DefaultBPM, types.ModeRock)

	for v := -10; v <= 320; v++ {
		prev := s.BPM()
		accepted := s.SetBPM(v)
		got := s.BPM()

		if ValidBPM(v) {
			if !accepted || got != v {
				t.Fatalf("SetBPM(%d): accepted=%v got=%d, want %d", v, accepted, got, v)
			}
		} else {
			if accepted || got != prev {
				t.Fatalf("SetBPM(%d): accepted=%v got=%d, want previous %d", v, accepted, got, prev)
			}
		}
	}
}

func TestSetBPMBoundaries(t *testing.T) {
	tests := []struct {
		value int
		want  int
	}{
		{40, 40},
		{39, 40},
		{300, 300},
		{301, 300},
	}

	s := New(DefaultBPM, types.ModeOff)
	for _, tt := range tests {
		s.SetBPM(tt.value)
		if got := s.BPM(); got != tt.want {
			t.Errorf("SetBPM(%d) then BPM() = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestSetMode(t *testing.T) {
	s := New(DefaultBPM, types.ModeOff)

	for _, m := range []types.Mode{types.ModeRock, types.ModeCustom, types.ModeOff} {
		if !s.SetMode(m) {
			t.Errorf("SetMode(%v) rejected", m)
		}
		if s.Mode() != m {
			t.Errorf("Expected mode %v, got %v", m, s.Mode())
		}
	}

	s.SetMode(types.ModeCustom)
	for _, m := range []types.Mode{-1, 3, 42} {
		if s.SetMode(m) {
			t.Errorf("SetMode(%d) should be rejected", m)
		}
		if s.Mode() != types.ModeCustom {
			t.Errorf("Invalid SetMode(%d) changed state to %v", m, s.Mode())
		}
	}
}

func TestCycleMode(t *testing.T) {
	s := New(DefaultBPM, types.ModeOff)

	want := []types.Mode{types.ModeRock, types.ModeCustom, types.ModeOff, types.ModeRock}
	for i, w := range want {
		if got := s.CycleMode(); got != w {
			t.Errorf("cycle %d: got %v, want %v", i, got, w)
		}
	}
}

func TestConcurrentAccessNeverTorn(t *testing.T) {
	s := New(DefaultBPM, types.ModeRock)
	written := map[int]bool{DefaultBPM: true}
	for i := 0; i < 100; i++ {
		written[MinBPM+i*2] = true
	}

	var wg sync.WaitGroup
	errs := make(chan int, 200)

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			s.SetBPM(v)
		}(MinBPM + i*2)
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			if !written[snap.BPM] || snap.Mode != types.ModeRock {
				errs <- snap.BPM
			}
		}()
	}
	wg.Wait()
	close(errs)

	for v := range errs {
		t.Errorf("Observed value %d that was never written", v)
	}
	if !written[s.BPM()] {
		t.Errorf("Final BPM %d was never written", s.BPM())
	}
}
