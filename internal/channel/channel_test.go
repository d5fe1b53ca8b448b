package channel

import (
	"testing"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

func stepOnce(t *testing.T, m *Model, period int, condition float64, stream *seed.Stream) *market.PeriodState {
	t.Helper()
	state := &market.PeriodState{Period: period, MarketCondition: condition}
	if err := m.Step(state, stream); err != nil {
		t.Fatalf("Step(period=%d): %v", period, err)
	}
	return state
}

func TestConversionStaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SynergyUplift = 50 // force the upper clamp
	m := NewModel(cfg)
	stream := seed.NewManager(1).Stream(0, market.ModelChannel, 10000)

	for period := 0; period < 20; period++ {
		state := stepOnce(t, m, period, 1.0, stream)
		for id, conv := range state.ChannelConversion {
			if conv < 0 || conv > 1 {
				t.Fatalf("period %d channel %s: conversion %v outside [0,1]", period, id, conv)
			}
		}
	}
}

func TestSaturationDecreasesConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SynergyUplift = 1.0 // isolate saturation
	cfg.ReachJitter = 0
	m := NewModel(cfg)
	stream := seed.NewManager(1).Stream(0, market.ModelChannel, 10000)

	prev := -1.0
	for period := 0; period < 10; period++ {
		state := stepOnce(t, m, period, 1.0, stream)
		conv := state.ChannelConversion["paid"]
		if prev >= 0 && conv > prev {
			t.Fatalf("period %d: conversion rose from %v to %v despite growing exposure", period, prev, conv)
		}
		prev = conv
	}
}

func TestReproductionCapRecordsWarning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = []ChannelSpec{{ID: "viral", BaseReach: 100, BaseConversion: 0.1, Reproduction: 10}}
	cfg.ReproductionCap = 2.0
	m := NewModel(cfg)
	stream := seed.NewManager(1).Stream(0, market.ModelChannel, 100)

	state := stepOnce(t, m, 0, 1.0, stream)
	if state.RealismWarnings == 0 {
		t.Fatal("expected a realism warning for clamped reproduction number")
	}
}

func TestStepDeterministic(t *testing.T) {
	run := func() []float64 {
		m := NewModel(DefaultConfig())
		stream := seed.NewManager(99).Stream(4, market.ModelChannel, 10000)
		var out []float64
		for period := 0; period < 5; period++ {
			state := stepOnce(t, m, period, 1.0, stream)
			out = append(out, state.ChannelExposure["organic"], state.ChannelConversion["organic"])
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("value %d diverged between identical runs: %v vs %v", i, a[i], b[i])
		}
	}
}
