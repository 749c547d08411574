package core

// RuntimeConfig is the platform-level configuration handed to the match
// front-ends. Match rules (stocks, time limit, tuning) live in the config
// package; this only covers presentation and reproducibility concerns.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // Match seed; 0 means derive from current time
}

// DefaultRuntimeConfig returns a RuntimeConfig with sensible defaults.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0,
	}
}
