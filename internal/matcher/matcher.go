// Package matcher scores how well a ride corridor serves a rider corridor.
package matcher

import "math"

// Policy holds the scoring weights and admission rule. Spatial similarity
// must keep the largest weight.
type Policy struct {
	SpatialWeight  float64
	TimeWeight     float64
	SeatWeight     float64
	AdmitThreshold float64
	TimeDecayHours float64
}

func DefaultPolicy() Policy {
	return Policy{
		SpatialWeight:  0.5,
		TimeWeight:     0.3,
		SeatWeight:     0.1,
		AdmitThreshold: 0.15,
		TimeDecayHours: 4,
	}
}

type Score struct {
	Similarity   float64 `json:"similarity"`
	TimeScore    float64 `json:"time_score"`
	SeatFraction float64 `json:"seat_fraction"`
	Composite    float64 `json:"score"`
	Admit        bool    `json:"-"`
}

type Matcher struct {
	policy Policy
}

func New(policy Policy) *Matcher {
	return &Matcher{policy: policy}
}

func (m *Matcher) Policy() Policy { return m.policy }

// Score compares the rider's corridor with a ride's corridor. The candidate
// is admitted only when the spatial similarity strictly exceeds the
// threshold, whatever its time and seat components.
func (m *Matcher) Score(rider, ride []string, timeDeltaHours, seatFraction float64) Score {
	sim := Jaccard(rider, ride)
	ts := TimeScore(timeDeltaHours, m.policy.TimeDecayHours)
	seats := clamp01(seatFraction)
	composite := m.policy.SpatialWeight*sim + m.policy.TimeWeight*ts + m.policy.SeatWeight*seats
	return Score{
		Similarity:   sim,
		TimeScore:    ts,
		SeatFraction: seats,
		Composite:    clamp01(composite),
		Admit:        sim > m.policy.AdmitThreshold,
	}
}

// Jaccard is |a ∩ b| / |a ∪ b| over the distinct cells, 0 when both are empty.
func Jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, c := range a {
		set[c] = true
	}
	inA := len(set)
	inter := 0
	seenB := make(map[string]struct{}, len(b))
	for _, c := range b {
		if _, dup := seenB[c]; dup {
			continue
		}
		seenB[c] = struct{}{}
		if set[c] {
			inter++
		}
	}
	union := inA + len(seenB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TimeScore decays linearly from 1 at no delay to 0 at decayHours.
func TimeScore(deltaHours, decayHours float64) float64 {
	if decayHours <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(deltaHours)/decayHours)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
