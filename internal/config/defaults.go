package config

import (
	_ "embed"
)

//go:embed defaults/match.yaml
var defaultMatchYAML []byte

// DefaultMatchConfig returns the default match configuration.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Rules: RulesConfig{
			Stocks:           3,
			TimeLimitSeconds: 180,
		},
		Knockback: KnockbackConfig{
			UnitsPerKB:       0.35,
			SakuraiThreshold: 32,
			SakuraiAngle:     44,
			MaxDIDegrees:     18,
			HitstunPerKB:     0.4,
			DecayPerTick:     0.92,
			TradeScale:       1.0,
		},
		Shield: ShieldConfig{
			DecayPerTick: 0.15,
			RegenPerTick: 0.08,
		},
		CPU: CPUConfig{
			ReactionTicks: 12,
			Aggression:    0.6,
			AttackRange:   12,
		},
	}
}

// GetDefaultYAML returns the embedded default match YAML.
func GetDefaultYAML() []byte {
	return defaultMatchYAML
}
