package domain

import "math"

// UnitTolerance is the allowed deviation of a normalised vector's magnitude from 1.
const UnitTolerance = 0.01

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of v.
// A zero vector is returned unchanged (as a copy).
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	mag := Magnitude(v)
	if mag == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / mag)
	}
	return out
}

// IsUnit reports whether v has magnitude within UnitTolerance of 1.
func IsUnit(v []float32) bool {
	return math.Abs(Magnitude(v)-1) <= UnitTolerance
}

// Dot returns the inner product of a and b.
// Vectors of different length yield 0.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// CosineSimilarity returns the cosine of the angle between a and b in [-1, 1].
// Returns 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	magA, magB := Magnitude(a), Magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return Dot(a, b) / (magA * magB)
}
