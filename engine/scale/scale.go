package scale

import "math"

func clamp(t, min, max float64) float64 {
	min, max = math.Min(min, max), math.Max(min, max)
	return math.Max(math.Min(t, max), min)
}

// ClampFloat clamps v to the interval [min,max].
func ClampFloat(v, min, max float64) float64 {
	return clamp(v, min, max)
}

// Clamp returns a function that scales a number from the interval [rMin,rMax]
// to the interval [tMin,tMax], clamping results that fall outside it.
func Clamp(rMin, rMax, tMin, tMax float64) func(m float64) float64 {
	return func(m float64) float64 {
		if rMax == rMin {
			return tMin
		}
		t := tMin + (m-rMin)*(tMax-tMin)/(rMax-rMin)
		return clamp(t, tMin, tMax)
	}
}

// ToUnitClamp returns a function that scales a number from the interval [rMin,rMax]
// to the unit interval ([0,1]), if the result falls outside [0,1], it is clamped
// to 0 or 1.
func ToUnitClamp(rMin, rMax float64) func(m float64) float64 {
	return Clamp(rMin, rMax, 0, 1)
}

// FromUnitClamp returns a function that scales a number from the unit interval
// onto [tMin,tMax], clamping out-of-range input.
func FromUnitClamp(tMin, tMax float64) func(m float64) float64 {
	return Clamp(0, 1, tMin, tMax)
}
