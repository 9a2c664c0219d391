package engine

import (
	"math"
	"testing"

	"github.com/Alias1177/bullbear/models"
)

func TestClassifyFundingFromHistory(t *testing.T) {
	tests := []struct {
		name         string
		stablecoin   []float64
		total        []float64
		wantBehavior models.FundingBehavior
	}{
		{
			name:         "both growing means fresh capital entering",
			stablecoin:   growthSeries(150e9, 0.5, 10),
			total:        growthSeries(2.0e12, 1.0, 10),
			wantBehavior: models.FundingOffensive,
		},
		{
			name:         "stables shrinking while total grows means rotation into risk",
			stablecoin:   growthSeries(160e9, -0.4, 10),
			total:        growthSeries(2.0e12, 0.8, 10),
			wantBehavior: models.FundingOffensive,
		},
		{
			name:         "stables growing while total shrinks means de-risking",
			stablecoin:   growthSeries(150e9, 0.6, 10),
			total:        growthSeries(2.2e12, -0.5, 10),
			wantBehavior: models.FundingDefensive,
		},
		{
			name:         "both shrinking means outright retreat",
			stablecoin:   growthSeries(160e9, -0.3, 10),
			total:        growthSeries(2.2e12, -0.7, 10),
			wantBehavior: models.FundingDefensive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			external := &models.CapHistory{Stablecoin: tt.stablecoin, Total: tt.total}
			current := tt.stablecoin[len(tt.stablecoin)-1]
			totalNow := tt.total[len(tt.total)-1]

			got := ClassifyFunding(current, totalNow, external, nil, nil)
			if got.Behavior != tt.wantBehavior {
				t.Errorf("Behavior = %s, want %s", got.Behavior, tt.wantBehavior)
			}
			if got.Source != FundingSourceHistory {
				t.Errorf("Source = %s, want %s", got.Source, FundingSourceHistory)
			}
		})
	}
}

func TestClassifyFundingRatioFallback(t *testing.T) {
	tests := []struct {
		name            string
		stablecoinCap   float64
		totalCap        float64
		wantBehavior    models.FundingBehavior
		wantRatioChange float64
	}{
		{
			name:            "low stablecoin share reads offensive",
			stablecoinCap:   100e9,
			totalCap:        2e12, // 5% share
			wantBehavior:    models.FundingOffensive,
			wantRatioChange: -3.0,
		},
		{
			name:            "high stablecoin share reads defensive",
			stablecoinCap:   200e9,
			totalCap:        2e12, // 10% share
			wantBehavior:    models.FundingDefensive,
			wantRatioChange: 2.0,
		},
		{
			name:            "share exactly at the threshold reads defensive",
			stablecoinCap:   160e9,
			totalCap:        2e12, // 8% share
			wantBehavior:    models.FundingDefensive,
			wantRatioChange: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFunding(tt.stablecoinCap, tt.totalCap, nil, nil, nil)
			if got.Behavior != tt.wantBehavior {
				t.Errorf("Behavior = %s, want %s", got.Behavior, tt.wantBehavior)
			}
			if got.Source != FundingSourceRatio {
				t.Errorf("Source = %s, want %s", got.Source, FundingSourceRatio)
			}
			if math.Abs(got.RatioChange-tt.wantRatioChange) > 1e-9 {
				t.Errorf("RatioChange = %v, want %v", got.RatioChange, tt.wantRatioChange)
			}
			if got.StablecoinChange != 0 {
				t.Errorf("StablecoinChange = %v, want 0 in ratio fallback", got.StablecoinChange)
			}
		})
	}
}

func TestClassifyFundingFlatHistoryFallsBackToRatio(t *testing.T) {
	flat := make([]float64, 10)
	for i := range flat {
		flat[i] = 2e12
	}
	flatStable := make([]float64, 10)
	for i := range flatStable {
		flatStable[i] = 100e9
	}

	external := &models.CapHistory{Stablecoin: flatStable, Total: flat}
	got := ClassifyFunding(100e9, 2e12, external, nil, nil)
	if got.Source != FundingSourceRatio {
		t.Errorf("Source = %s, want %s for a flat history", got.Source, FundingSourceRatio)
	}
	if got.Behavior != models.FundingOffensive {
		t.Errorf("Behavior = %s, want %s at a 5%% share", got.Behavior, models.FundingOffensive)
	}
}

func TestClassifyFundingFlatExternalFallsThroughToCache(t *testing.T) {
	flat := make([]float64, 10)
	flatStable := make([]float64, 10)
	for i := range flat {
		flat[i] = 2e12
		flatStable[i] = 100e9
	}
	external := &models.CapHistory{Stablecoin: flatStable, Total: flat}

	cacheStable := growthSeries(100e9, 0.4, 8)
	cacheTotal := growthSeries(2e12, -0.6, 8)

	got := ClassifyFunding(cacheStable[7], cacheTotal[7], external, cacheStable, cacheTotal)
	if got.Source != FundingSourceHistory {
		t.Fatalf("Source = %s, want %s: a flat external series must not mask a live cache", got.Source, FundingSourceHistory)
	}
	if got.Behavior != models.FundingDefensive {
		t.Errorf("Behavior = %s, want %s from the cache slopes", got.Behavior, models.FundingDefensive)
	}
	if got.StablecoinSlope <= 0 || got.TotalSlope >= 0 {
		t.Errorf("slopes = %v, %v, want the cache's rising stable / falling total", got.StablecoinSlope, got.TotalSlope)
	}
}

func TestClassifyFundingCacheFallback(t *testing.T) {
	cacheStable := growthSeries(150e9, -0.4, 8)
	cacheTotal := growthSeries(2.0e12, 0.8, 8)

	got := ClassifyFunding(cacheStable[7], cacheTotal[7], nil, cacheStable, cacheTotal)
	if got.Source != FundingSourceHistory {
		t.Fatalf("Source = %s, want %s from the cache", got.Source, FundingSourceHistory)
	}
	if got.Behavior != models.FundingOffensive {
		t.Errorf("Behavior = %s, want %s", got.Behavior, models.FundingOffensive)
	}
	if got.StablecoinChange >= 0 {
		t.Errorf("StablecoinChange = %v, want negative for a shrinking series", got.StablecoinChange)
	}
	if got.RatioChange >= 0 {
		t.Errorf("RatioChange = %v, want negative when stables shrink and total grows", got.RatioChange)
	}
}

func TestClassifyFundingShortExternalPrefersCache(t *testing.T) {
	short := &models.CapHistory{
		Stablecoin: growthSeries(150e9, 0.5, 4),
		Total:      growthSeries(2.0e12, -0.5, 4),
	}
	cacheStable := growthSeries(150e9, 0.5, 10)
	cacheTotal := growthSeries(2.0e12, 1.0, 10)

	got := ClassifyFunding(cacheStable[9], cacheTotal[9], short, cacheStable, cacheTotal)
	if got.Behavior != models.FundingOffensive {
		t.Errorf("Behavior = %s, want %s from the richer cache series", got.Behavior, models.FundingOffensive)
	}
}
