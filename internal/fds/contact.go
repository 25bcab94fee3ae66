package fds

import "math"

// ContactLaw maps a penetration depth to a contact force magnitude. Laws are
// one-sided: a non-positive penetration yields zero force.
type ContactLaw interface {
	CollisionForce(penetration float64) float64
}

// PowerLaw is the barrier potential force K*pos(x)^(Alpha+1).
type PowerLaw struct {
	Stiffness float64
	Alpha     float64
}

func (l PowerLaw) CollisionForce(penetration float64) float64 {
	if penetration <= 0 {
		return 0
	}
	return l.Stiffness * math.Pow(penetration, l.Alpha+1)
}

// HertzLaw is the felt contact force K*pos(x)^Alpha used by mallets.
type HertzLaw struct {
	Stiffness float64
	Alpha     float64
}

func (l HertzLaw) CollisionForce(penetration float64) float64 {
	if penetration <= 0 {
		return 0
	}
	return l.Stiffness * math.Pow(penetration, l.Alpha)
}

// StackedLaw sums the forces of several laws.
type StackedLaw []ContactLaw

func (s StackedLaw) CollisionForce(penetration float64) float64 {
	var f float64
	for _, l := range s {
		f += l.CollisionForce(penetration)
	}
	return f
}
