package world

// Metrics are the four global world gauges, each always in [0,1].
type Metrics struct {
	WorldHealth     float64 `json:"world_health"`
	ChaosLevel      float64 `json:"chaos_level"`
	MagicLevel      float64 `json:"magic_level"`
	AllianceTension float64 `json:"alliance_tension"`
}

// DefaultMetrics returns the gauges of a freshly seeded world.
func DefaultMetrics() Metrics {
	return Metrics{
		WorldHealth:     0.7,
		ChaosLevel:      0.3,
		MagicLevel:      0.4,
		AllianceTension: 0.2,
	}
}

// Apply shifts each gauge by its named delta, clamping to [0,1]. Unknown
// names are ignored.
func (m *Metrics) Apply(deltas Deltas) {
	m.WorldHealth = clamp01(m.WorldHealth + deltas["world_health"])
	m.ChaosLevel = clamp01(m.ChaosLevel + deltas["chaos_level"])
	m.MagicLevel = clamp01(m.MagicLevel + deltas["magic_level"])
	m.AllianceTension = clamp01(m.AllianceTension + deltas["alliance_tension"])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
