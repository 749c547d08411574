// Package config provides YAML-based match configuration loading for the
// brawler platform.
package config

// MatchConfig contains all tunable parameters for a match: rules, the
// knockback model, shield behavior and the CPU opponent.
type MatchConfig struct {
	Rules     RulesConfig     `yaml:"rules"`
	Knockback KnockbackConfig `yaml:"knockback"`
	Shield    ShieldConfig    `yaml:"shield"`
	CPU       CPUConfig       `yaml:"cpu"`
}

// RulesConfig defines win conditions.
type RulesConfig struct {
	Stocks           int `yaml:"stocks"`
	TimeLimitSeconds int `yaml:"time_limit_seconds"` // 0 = no limit
}

// KnockbackConfig defines the launch model shared by every hit.
type KnockbackConfig struct {
	UnitsPerKB       float64 `yaml:"units_per_kb"`       // knockback value to launch speed
	SakuraiThreshold float64 `yaml:"sakurai_threshold"`  // below: grounded push, above: diagonal launch
	SakuraiAngle     float64 `yaml:"sakurai_angle"`      // degrees, used above the threshold
	MaxDIDegrees     float64 `yaml:"max_di_degrees"`     // trajectory shift a full stick deflection buys
	HitstunPerKB     float64 `yaml:"hitstun_per_kb"`     // fallback when a hit authors none
	DecayPerTick     float64 `yaml:"decay_per_tick"`     // horizontal launch-speed decay while airborne
	TradeScale       float64 `yaml:"trade_scale"`        // knockback multiplier on trades
}

// ShieldConfig defines shield drain and regeneration.
type ShieldConfig struct {
	DecayPerTick float64 `yaml:"decay_per_tick"` // integrity lost per tick while holding shield
	RegenPerTick float64 `yaml:"regen_per_tick"` // integrity regained per tick otherwise
}

// CPUConfig defines the built-in opponent used by play and simulate.
type CPUConfig struct {
	ReactionTicks int     `yaml:"reaction_ticks"` // ticks between decisions
	Aggression    float64 `yaml:"aggression"`     // 0..1, chance to attack when in range
	AttackRange   float64 `yaml:"attack_range"`   // horizontal distance to start swinging
}

// RespawnIntangibleTicks is how long a respawned fighter stays intangible.
const RespawnIntangibleTicks = 120

// LedgeIntangibleTicks is the intangibility granted on a ledge grab.
const LedgeIntangibleTicks = 30
