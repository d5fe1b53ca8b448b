// Package channel models multi-channel acquisition dynamics: conversion,
// branching-process virality, cross-channel synergy, and saturation fatigue.
package channel

// #region imports
import (
	"log"
	"math"

	"github.com/danielpatrickdp/market-validator/go-sim/internal/market"
	"github.com/danielpatrickdp/market-validator/go-sim/internal/seed"
)

// #endregion

// #region model

const modelVersion = "1.2.0"

// Model steps channel states one period at a time. One instance per
// iteration; cross-period state is private to the instance.
type Model struct {
	config Config
	states []*State
}

// NewModel creates a channel model with fresh per-channel state.
func NewModel(config Config) *Model {
	states := make([]*State, len(config.Channels))
	for i, spec := range config.Channels {
		states[i] = &State{
			ID:               spec.ID,
			ConversionRate:   spec.BaseConversion,
			Reproduction:     spec.Reproduction,
			LastActivePeriod: -1,
		}
	}
	return &Model{config: config, states: states}
}

// Name implements market.Model.
func (m *Model) Name() string { return market.ModelChannel }

// Version implements market.Model.
func (m *Model) Version() string { return modelVersion }

// #endregion

// #region step

// Step computes this period's exposure and effective conversion per channel.
// Conversion is clamped to [0,1] after all adjustments; virality beyond the
// reproduction cap is clamped and counted as a realism warning.
func (m *Model) Step(state *market.PeriodState, stream *seed.Stream) error {
	state.ChannelExposure = make(map[string]float64, len(m.states))
	state.ChannelConversion = make(map[string]float64, len(m.states))

	demand := state.MarketCondition * (1 - 0.5*state.CompetitorPressure)
	if demand < 0 {
		demand = 0
	}

	synergy := 1.0
	if m.activeWithinWindow(state.Period) >= 2 {
		synergy = m.config.SynergyUplift
	}

	for i, cs := range m.states {
		spec := m.config.Channels[i]

		// Reach with deterministic jitter, boosted by current adoption.
		jitter := 1 + m.config.ReachJitter*stream.NormFloat64()
		if jitter < 0 {
			jitter = 0
		}
		reach := spec.BaseReach * demand * jitter * (1 + state.AdoptionFraction)

		// Virality: expected secondary conversions form a branching process.
		r := cs.Reproduction
		if r > m.config.ReproductionCap {
			log.Printf("[CHAN] %s: reproduction %.2f clamped to cap %.2f", cs.ID, r, m.config.ReproductionCap)
			r = m.config.ReproductionCap
			state.RealismWarnings++
		}
		primary := reach * cs.ConversionRate
		reach += primary * r

		// Saturation: marginal conversion decays with cumulative exposure.
		sat := math.Exp(-cs.CumulativeExposure / m.config.SaturationScale)
		conv := clamp01(cs.ConversionRate * sat * synergy)

		cs.CumulativeExposure += reach
		cs.ConversionRate = conv
		if reach > 0 {
			cs.LastActivePeriod = state.Period
		}

		state.ChannelExposure[cs.ID] = reach
		state.ChannelConversion[cs.ID] = conv
	}

	return stream.Err()
}

// activeWithinWindow counts channels active inside the attribution window.
func (m *Model) activeWithinWindow(period int) int {
	n := 0
	for _, cs := range m.states {
		if cs.LastActivePeriod >= 0 && period-cs.LastActivePeriod <= m.config.AttributionWindow {
			n++
		}
	}
	return n
}

// clamp01 bounds v to [0,1]. Clamp, never wrap.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion
