package heli

import (
	"math"
	"testing"
)

func TestAllocator_RoundTrip(t *testing.T) {
	var alloc Allocator
	cases := [][3]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.3, -0.7, 0.2},
		{-1, 1, -1},
	}
	for _, v := range cases {
		got := alloc.Estimate(alloc.Allocate(v))
		for i := range v {
			if math.Abs(got[i]-v[i]) > 1e-12 {
				t.Errorf("round trip %v: axis %d got %v, want %v", v, i, got[i], v[i])
			}
		}
	}
}

func TestAllocator_Allocate(t *testing.T) {
	var alloc Allocator
	got := alloc.Allocate([3]float64{1, 2, 3})
	want := [4]float64{1 - 2, 2 - 3, 3, -1}
	if got != want {
		t.Errorf("allocate: got %v, want %v", got, want)
	}
}

func TestAllocator_ThrustEstimate(t *testing.T) {
	var alloc Allocator
	if got := alloc.ThrustEstimate([4]float64{0.4, 0.4, 0.4, 0.4}); !floatEquals(got, 0.4) {
		t.Errorf("uniform actuators: got %v, want 0.4", got)
	}
	if got := alloc.ThrustEstimate([4]float64{1, -1, 1, -1}); !floatEquals(got, 0) {
		t.Errorf("balanced actuators: got %v, want 0", got)
	}
}
