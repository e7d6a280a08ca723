package force

import "math"

// All forces read positions and velocities from the tick snapshot and add
// their contribution to dvx/dvy.

// minDistance2 keeps the charge force finite for nearly coincident nodes.
const minDistance2 = 1.0

// applyLinks pulls linked nodes toward their rest distance. The displacement
// is split by degree so hubs move less than leaves.
func (s *Simulation) applyLinks() {
	for i := range s.links {
		l := &s.links[i]
		if l.strength == 0 || l.source == l.target {
			continue
		}
		si, ti := l.source, l.target
		x := s.px[ti] + s.pvx[ti] - s.px[si] - s.pvx[si]
		y := s.py[ti] + s.pvy[ti] - s.py[si] - s.pvy[si]
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - l.distance) / d * s.alpha * l.strength
		x, y = x*k, y*k
		s.dvx[ti] -= x * l.bias
		s.dvy[ti] -= y * l.bias
		s.dvx[si] += x * (1 - l.bias)
		s.dvy[si] += y * (1 - l.bias)
	}
}

// applyCharge repels every pair of nodes within ChargeDistanceMax.
func (s *Simulation) applyCharge() {
	strength := s.params.ChargeStrength
	if strength == 0 {
		return
	}
	maxD2 := s.params.ChargeDistanceMax * s.params.ChargeDistanceMax
	n := len(s.nodes)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x := s.px[j] - s.px[i]
			y := s.py[j] - s.py[i]
			d2 := x*x + y*y
			if maxD2 > 0 && d2 >= maxD2 {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				d2 += x * x
			}
			if y == 0 {
				y = s.jiggle()
				d2 += y * y
			}
			if d2 < minDistance2 {
				d2 = math.Sqrt(minDistance2 * d2)
			}
			w := strength * s.alpha / d2
			s.dvx[i] += x * w
			s.dvy[i] += y * w
			s.dvx[j] -= x * w
			s.dvy[j] -= y * w
		}
	}
}

// applyCollide pushes apart nodes whose predicted positions overlap. It does
// not scale with alpha.
func (s *Simulation) applyCollide() {
	r := s.params.CollisionRadius
	strength := s.cfg.CollideStrength
	if r <= 0 || strength == 0 {
		return
	}
	rr := 2 * r
	n := len(s.nodes)
	for i := 0; i < n; i++ {
		xi, yi := s.px[i]+s.pvx[i], s.py[i]+s.pvy[i]
		for j := i + 1; j < n; j++ {
			x := xi - (s.px[j] + s.pvx[j])
			y := yi - (s.py[j] + s.pvy[j])
			d2 := x*x + y*y
			if d2 >= rr*rr {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				d2 += x * x
			}
			if y == 0 {
				y = s.jiggle()
				d2 += y * y
			}
			d := math.Sqrt(d2)
			k := (rr - d) / d * strength
			x, y = x*k, y*k
			// Equal radii split the correction evenly.
			s.dvx[i] += x * 0.5
			s.dvy[i] += y * 0.5
			s.dvx[j] -= x * 0.5
			s.dvy[j] -= y * 0.5
		}
	}
}
