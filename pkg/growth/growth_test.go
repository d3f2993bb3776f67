package growth

import (
	"math"
	"testing"
	"time"
)

func daily(values ...float64) []Observation {
	base := time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]Observation, len(values))
	for i, v := range values {
		obs[i] = Observation{Date: base.AddDate(0, 0, i), Value: v}
	}
	return obs
}

func TestCenteredAverages(t *testing.T) {
	obs := daily(1, 2, 3, 4, 5)

	got := CenteredAverages(obs, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []float64{2, 3, 4}
	for i, g := range got {
		if g.Value != want[i] {
			t.Errorf("average[%d] = %v, want %v", i, g.Value, want[i])
		}
		if !g.Date.Equal(obs[i+1].Date) {
			t.Errorf("average[%d] dated %s, want %s", i, g.Date, obs[i+1].Date)
		}
	}
}

func TestCenteredAveragesEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		period  int
		wantLen int
	}{
		{"thirteen days smooth to seven", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, 7, 7},
		{"too short", []float64{1, 2, 3}, 7, 0},
		{"period one is the identity", []float64{5, 6, 7}, 1, 3},
		{"non-positive period", []float64{1, 2, 3}, 0, 0},
		{"empty input", nil, 7, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CenteredAverages(daily(tc.values...), tc.period)
			if len(got) != tc.wantLen {
				t.Errorf("len = %d, want %d", len(got), tc.wantLen)
			}
		})
	}
}

func TestNewSampleSkipsNonPositives(t *testing.T) {
	s := NewSample(daily(10, 0, -5, 20))
	if len(s.Log) != 2 {
		t.Fatalf("len(Log) = %d, want 2", len(s.Log))
	}
	if math.Abs(s.Log[0]-math.Log(10)) > 1e-12 || math.Abs(s.Log[1]-math.Log(20)) > 1e-12 {
		t.Errorf("Log = %v, want logs of 10 and 20", s.Log)
	}
	if !s.Increasing {
		t.Error("Increasing = false, want true (20 > 10)")
	}
}

func TestNewSampleIncreasingUsesRawValues(t *testing.T) {
	// Interior growth does not matter: the sequence ends lower than it
	// began.
	s := NewSample(daily(30, 40, 50, 10))
	if s.Increasing {
		t.Error("Increasing = true, want false (10 < 30)")
	}
	if s = NewSample(nil); s.Increasing || len(s.Log) != 0 {
		t.Errorf("empty sample = %+v, want zero value", s)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		sample      Sample
		sensitivity int
		wantAbove   int
		wantBelow   int
		wantExp     bool
	}{
		{
			// Perfectly even log increments of exactly 0.5: nothing sits
			// strictly above or below the mean.
			name:        "uniform increments",
			sample:      Sample{Log: []float64{0, 0.5, 1, 1.5, 2, 2.5, 3}, Increasing: true},
			sensitivity: 0,
			wantAbove:   0,
			wantBelow:   0,
			wantExp:     true,
		},
		{
			// Increments 1, 0.25, 0.25, 0.25, 0.25, 1 with mean 0.5: two
			// above, four below.
			name:        "unbalanced increments rejected",
			sample:      Sample{Log: []float64{0, 1, 1.25, 1.5, 1.75, 2, 3}, Increasing: true},
			sensitivity: 1,
			wantAbove:   2,
			wantBelow:   4,
			wantExp:     false,
		},
		{
			name:        "sensitivity relaxes the balance check",
			sample:      Sample{Log: []float64{0, 1, 1.25, 1.5, 1.75, 2, 3}, Increasing: true},
			sensitivity: 2,
			wantAbove:   2,
			wantBelow:   4,
			wantExp:     true,
		},
		{
			name:        "balanced but not increasing",
			sample:      Sample{Log: []float64{0, 0.5, 1, 1.5, 2, 2.5, 3}, Increasing: false},
			sensitivity: 1,
			wantAbove:   0,
			wantBelow:   0,
			wantExp:     false,
		},
		{
			// One increment compares against a default mean of zero and can
			// never classify as exponential.
			name:        "single increment",
			sample:      Sample{Log: []float64{0, 0.5}, Increasing: true},
			sensitivity: 5,
			wantAbove:   1,
			wantBelow:   0,
			wantExp:     false,
		},
		{
			name:        "too few points",
			sample:      Sample{Log: []float64{0.5}, Increasing: true},
			sensitivity: 5,
			wantAbove:   0,
			wantBelow:   0,
			wantExp:     false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.sample, tc.sensitivity)
			if got.Above != tc.wantAbove || got.Below != tc.wantBelow {
				t.Errorf("counts = above %d below %d, want above %d below %d",
					got.Above, got.Below, tc.wantAbove, tc.wantBelow)
			}
			if got.Exponential != tc.wantExp {
				t.Errorf("Exponential = %v, want %v", got.Exponential, tc.wantExp)
			}
		})
	}
}

func TestDetectDoublingSeries(t *testing.T) {
	// Doubling counts smooth to doubling averages; their log increments
	// stay balanced around the mean.
	got := Detect(daily(1, 2, 4, 8, 16), 3, 1)
	if !got.Exponential {
		t.Errorf("Detect on doubling series = %+v, want exponential", got)
	}
}

func TestDetectFlatSeries(t *testing.T) {
	got := Detect(daily(100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100), 7, 1)
	if got.Exponential {
		t.Error("flat series classified exponential")
	}
	if got.Above != 0 || got.Below != 0 {
		t.Errorf("counts = above %d below %d, want 0, 0", got.Above, got.Below)
	}
}

func TestDetectDecliningSeries(t *testing.T) {
	got := Detect(daily(64, 32, 16, 8, 4), 3, 5)
	if got.Exponential {
		t.Error("declining series classified exponential")
	}
}

func TestDetectInsufficientData(t *testing.T) {
	got := Detect(daily(1, 2, 4), 7, 1)
	if got.Exponential || got.Above != 0 || got.Below != 0 {
		t.Errorf("Detect on short series = %+v, want zero classification", got)
	}
}
