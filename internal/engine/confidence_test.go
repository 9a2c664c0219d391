package engine

import (
	"math"
	"testing"
)

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name        string
		ma50        float64
		ma200       float64
		ma50Slope   float64
		ma200Slope  float64
		ratioChange float64
		want        float64
	}{
		{
			name: "no signal at all",
			want: 0.0,
		},
		{
			name:        "moderate separation and slopes",
			ma50:        52000,
			ma200:       50000,
			ma50Slope:   0.1,
			ma200Slope:  0.1,
			ratioChange: 4.0,
			// clarity 0.04*5 = 0.2, slope conf 0.2*0.5 = 0.1, funding 0.5
			want: 0.4,
		},
		{
			name:        "everything saturated",
			ma50:        80000,
			ma200:       40000,
			ma50Slope:   2.0,
			ma200Slope:  2.0,
			ratioChange: 20.0,
			want:        1.0,
		},
		{
			name:       "trend only",
			ma50:       52000,
			ma200:      50000,
			ma50Slope:  0.5,
			ma200Slope: 0.5,
			// clarity 0.2 + slope conf 0.5 = 0.7, funding 0
			want: 0.35,
		},
		{
			name:        "funding only",
			ma50:        50000,
			ma200:       50000,
			ratioChange: -8.0,
			want:        0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceScore(tt.ma50, tt.ma200, tt.ma50Slope, tt.ma200Slope, tt.ratioChange)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ConfidenceScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfidenceScoreBounded(t *testing.T) {
	inputs := []float64{-1e9, -100, -1, 0, 0.5, 1, 100, 1e9}
	for _, ma50 := range inputs {
		for _, slope := range inputs {
			for _, ratio := range inputs {
				got := ConfidenceScore(ma50, 50000, slope, -slope, ratio)
				if got < 0 || got > 1 {
					t.Fatalf("ConfidenceScore(%v, 50000, %v, %v, %v) = %v, outside [0, 1]",
						ma50, slope, -slope, ratio, got)
				}
			}
		}
	}
}
