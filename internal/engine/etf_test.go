package engine

import (
	"testing"
	"time"

	"github.com/Alias1177/bullbear/models"
)

// flowHistory builds one record per value, oldest first, ending yesterday.
func flowHistory(flows ...float64) []models.EtfFlowRecord {
	records := make([]models.EtfFlowRecord, len(flows))
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, f := range flows {
		records[i] = models.EtfFlowRecord{Date: start.AddDate(0, 0, i), NetFlow: f}
	}
	return records
}

func repeatFlows(value float64, n int) []float64 {
	flows := make([]float64, n)
	for i := range flows {
		flows[i] = value
	}
	return flows
}

func TestAssessEtfFlowsUnavailable(t *testing.T) {
	got := AssessEtfFlows(models.EtfSnapshot{}, nil)
	if got.Status != EtfUnknown {
		t.Errorf("Status = %s, want %s", got.Status, EtfUnknown)
	}
	if got.Source != EtfSourceUnavailable {
		t.Errorf("Source = %s, want %s", got.Source, EtfSourceUnavailable)
	}
	if got.Flow14dSum != nil || got.FlowTrend != nil {
		t.Error("statistics must stay nil when no flow is available")
	}
}

func TestAssessEtfFlowsSingleDay(t *testing.T) {
	tests := []struct {
		name       string
		netFlow    float64
		wantStatus EtfStatus
	}{
		{"strong inflow", 50e6, EtfTailwind},
		{"strong outflow", -50e6, EtfHeadwind},
		{"flow inside the noise band", 5e6, EtfNeutral},
		{"negative flow inside the noise band", -3e6, EtfNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := models.EtfSnapshot{NetFlow: &tt.netFlow}
			got := AssessEtfFlows(snap, flowHistory(10e6, -5e6, 20e6))
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.Source != EtfSourceSingleDay {
				t.Errorf("Source = %s, want %s", got.Source, EtfSourceSingleDay)
			}
		})
	}
}

func TestAssessEtfFlowsSustainedInflows(t *testing.T) {
	// 16 of 20 days positive, the last week uniformly positive and stronger
	// than the week before.
	flows := append([]float64{-20e6, -15e6, -25e6, -10e6}, repeatFlows(80e6, 9)...)
	flows = append(flows, repeatFlows(120e6, 7)...)
	netFlow := 120e6
	got := AssessEtfFlows(models.EtfSnapshot{NetFlow: &netFlow}, flowHistory(flows...))

	if got.Status != EtfTailwind {
		t.Errorf("Status = %s, want %s", got.Status, EtfTailwind)
	}
	if got.Source != EtfSourceHistory {
		t.Errorf("Source = %s, want %s", got.Source, EtfSourceHistory)
	}
	if got.FlowPosRatio == nil || *got.FlowPosRatio != 0.8 {
		t.Errorf("FlowPosRatio = %v, want 0.8", got.FlowPosRatio)
	}
	if got.FlowTrend == nil || *got.FlowTrend != "up" {
		t.Errorf("FlowTrend = %v, want up", got.FlowTrend)
	}
}

func TestAssessEtfFlowsSustainedOutflows(t *testing.T) {
	flows := append([]float64{20e6, 15e6, 25e6, 10e6}, repeatFlows(-80e6, 9)...)
	flows = append(flows, repeatFlows(-120e6, 7)...)
	netFlow := -120e6
	got := AssessEtfFlows(models.EtfSnapshot{NetFlow: &netFlow}, flowHistory(flows...))

	if got.Status != EtfHeadwind {
		t.Errorf("Status = %s, want %s", got.Status, EtfHeadwind)
	}
	if got.FlowTrend == nil || *got.FlowTrend != "down" {
		t.Errorf("FlowTrend = %v, want down", got.FlowTrend)
	}
}

func TestAssessEtfFlowsNearZeroMean(t *testing.T) {
	// Alternating small flows: no sustained run, mean +$2M.
	flows := make([]float64, 0, 20)
	for i := 0; i < 10; i++ {
		flows = append(flows, 10e6, -6e6)
	}
	netFlow := -6e6
	got := AssessEtfFlows(models.EtfSnapshot{NetFlow: &netFlow}, flowHistory(flows...))

	if got.Status != EtfNeutral {
		t.Errorf("Status = %s, want %s for a near-zero mean", got.Status, EtfNeutral)
	}
}

func TestAssessEtfFlowsOutflowDeceleration(t *testing.T) {
	// Heavy outflows in the first half, recovering to a small fraction in the
	// second. The overall mean is still far from zero, so only the
	// deceleration branch can produce neutral here (the tie-break on today's
	// positive flow would otherwise say tailwind).
	flows := append(repeatFlows(-100e6, 10), -40e6, -40e6, -40e6)
	flows = append(flows, repeatFlows(5e6, 7)...)
	netFlow := 5e6
	got := AssessEtfFlows(models.EtfSnapshot{NetFlow: &netFlow}, flowHistory(flows...))

	if got.Status != EtfNeutral {
		t.Errorf("Status = %s, want %s for decelerating outflows", got.Status, EtfNeutral)
	}
}

func TestAssessEtfFlowsTieBreakOnToday(t *testing.T) {
	// Mixed large flows, mean well outside the noise band, no sustained run.
	flows := []float64{200e6, -150e6, 180e6, -160e6, 190e6, -150e6, 210e6, -140e6, 220e6, 100e6}

	inflow := 100e6
	got := AssessEtfFlows(models.EtfSnapshot{NetFlow: &inflow}, flowHistory(flows...))
	if got.Status != EtfTailwind {
		t.Errorf("Status = %s, want %s when today flows in", got.Status, EtfTailwind)
	}

	outflow := -100e6
	got = AssessEtfFlows(models.EtfSnapshot{NetFlow: &outflow}, flowHistory(flows...))
	if got.Status != EtfHeadwind {
		t.Errorf("Status = %s, want %s when today flows out", got.Status, EtfHeadwind)
	}
}

func TestAssessEtfFlowsStatistics(t *testing.T) {
	flows := repeatFlows(50e6, 14)
	netFlow := 50e6
	got := AssessEtfFlows(models.EtfSnapshot{NetFlow: &netFlow}, flowHistory(flows...))

	if got.Flow14dSum == nil || *got.Flow14dSum != 700e6 {
		t.Errorf("Flow14dSum = %v, want 700e6", got.Flow14dSum)
	}
	if got.FlowRecentAvg == nil || *got.FlowRecentAvg != 50e6 {
		t.Errorf("FlowRecentAvg = %v, want 50e6", got.FlowRecentAvg)
	}
	if got.FlowPrevAvg == nil || *got.FlowPrevAvg != 50e6 {
		t.Errorf("FlowPrevAvg = %v, want 50e6", got.FlowPrevAvg)
	}
	if got.FlowTrend == nil || *got.FlowTrend != "flat" {
		t.Errorf("FlowTrend = %v, want flat", got.FlowTrend)
	}
}
