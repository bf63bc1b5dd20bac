package autoclicker

import (
	"math"
	"testing"
	"time"
)

func TestJitterSampleStaysInRange(t *testing.T) {
	jitter := NewJitter(42)
	for _, rangeMS := range []int{1, 2, 5, 13, 100} {
		seenLow, seenHigh := false, false
		for i := 0; i < 5000; i++ {
			got := jitter.Sample(rangeMS)
			if got < -rangeMS || got > rangeMS {
				t.Fatalf("Sample(%d)=%d out of range", rangeMS, got)
			}
			seenLow = seenLow || got == -rangeMS
			seenHigh = seenHigh || got == rangeMS
		}
		if rangeMS <= 5 && (!seenLow || !seenHigh) {
			t.Fatalf("Sample(%d) never hit both bounds", rangeMS)
		}
	}
}

func TestJitterZeroRangeIsZero(t *testing.T) {
	jitter := NewJitter(7)
	for i := 0; i < 100; i++ {
		if got := jitter.Sample(0); got != 0 {
			t.Fatalf("Sample(0)=%d, want 0", got)
		}
		if got := jitter.Sample(-3); got != 0 {
			t.Fatalf("Sample(-3)=%d, want 0", got)
		}
	}
}

func TestPhaseDurationClampsNegative(t *testing.T) {
	tests := []struct {
		nominal, offset int
		want            time.Duration
	}{
		{nominal: 200, offset: 0, want: 200 * time.Millisecond},
		{nominal: 200, offset: -5, want: 195 * time.Millisecond},
		{nominal: 3, offset: -5, want: 0},
		{nominal: 0, offset: 4, want: 4 * time.Millisecond},
		{nominal: math.MaxInt/1000 + 1, offset: 0, want: MaxTimingMS * time.Millisecond},
		{nominal: math.MaxInt, offset: math.MaxInt, want: 2 * MaxTimingMS * time.Millisecond},
		{nominal: 10, offset: math.MinInt, want: 0},
	}
	for _, tc := range tests {
		if got := phaseDuration(tc.nominal, tc.offset); got != tc.want {
			t.Fatalf("phaseDuration(%d,%d)=%v, want %v", tc.nominal, tc.offset, got, tc.want)
		}
	}
}

func TestJitterHugeRangeIsCapped(t *testing.T) {
	jitter := NewJitter(3)
	for _, rangeMS := range []int{math.MaxInt, math.MaxInt/2 + 1, MaxTimingMS + 1} {
		for i := 0; i < 100; i++ {
			got := jitter.Sample(rangeMS)
			if got < -MaxTimingMS || got > MaxTimingMS {
				t.Fatalf("Sample(%d)=%d outside capped range", rangeMS, got)
			}
		}
	}
}
