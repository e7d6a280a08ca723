package force

import "github.com/pkg/errors"

// Energy are the alpha levels the interaction controller reheats to.
type Energy struct {
	DragStart float64 `toml:"drag_start"`
	DragMove  float64 `toml:"drag_move"`
	Toggle    float64 `toml:"toggle"`
	DragEnd   float64 `toml:"drag_end"`
}

// Config holds the tuning of a simulation. Sizes and distances come from
// sizing.Forces; everything here is independent of graph size.
type Config struct {
	AlphaInitial    float64 `toml:"alpha_initial"`
	AlphaTarget     float64 `toml:"alpha_target"` // Floor that keeps the layout gently alive
	AlphaMin        float64 `toml:"alpha_min"`
	AlphaDecay      float64 `toml:"alpha_decay"`
	VelocityDecay   float64 `toml:"velocity_decay"`
	LinkStrength    float64 `toml:"link_strength"`
	LinkAmplified   float64 `toml:"link_amplified"`
	LinkReduced     float64 `toml:"link_reduced"`
	DistanceFactor  float64 `toml:"distance_factor"`
	CollideStrength float64 `toml:"collide_strength"`
	Seed            uint64  `toml:"seed"`
	Energy          Energy  `toml:"energy"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		AlphaInitial:    0.4,
		AlphaTarget:     0.05,
		AlphaMin:        0.001,
		AlphaDecay:      0.02,
		VelocityDecay:   0.2,
		LinkStrength:    0.8,
		LinkAmplified:   1.2,
		LinkReduced:     0.3,
		DistanceFactor:  50,
		CollideStrength: 1.0,
		Seed:            1,
		Energy: Energy{
			DragStart: 0.8,
			DragMove:  0.3,
			Toggle:    0.2,
			DragEnd:   0.1,
		},
	}
}

// Validate checks ranges and the ordering of the reheat energies.
func (c Config) Validate() error {
	switch {
	case c.AlphaDecay <= 0 || c.AlphaDecay >= 1:
		return errors.Errorf("alpha_decay must be in (0,1), got %v", c.AlphaDecay)
	case c.VelocityDecay < 0 || c.VelocityDecay >= 1:
		return errors.Errorf("velocity_decay must be in [0,1), got %v", c.VelocityDecay)
	case c.AlphaTarget < 0 || c.AlphaInitial < 0 || c.AlphaMin < 0:
		return errors.New("alpha values must not be negative")
	case c.LinkStrength < 0 || c.LinkAmplified < 0 || c.LinkReduced < 0:
		return errors.New("link strengths must not be negative")
	}
	e := c.Energy
	if !(e.DragStart > e.DragMove && e.DragMove > e.Toggle && e.Toggle > e.DragEnd) {
		return errors.Errorf("energy must satisfy drag_start > drag_move > toggle > drag_end, got %v > %v > %v > %v",
			e.DragStart, e.DragMove, e.Toggle, e.DragEnd)
	}
	return nil
}
