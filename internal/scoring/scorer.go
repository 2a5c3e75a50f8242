// Package scoring computes the deterministic numeric scores and
// classifications the base report is built from. Every function here is
// pure: identical inputs yield identical outputs, with no clock, randomness,
// or I/O.
//
// Failure policy: answers missing from a response set never fail a formula;
// each aggregate is computed over the ids actually present with the
// denominator adjusted accordingly, and zero when none are present. Only
// out-of-scale values are rejected.
package scoring

import (
	"fmt"
	"sort"

	"pairlens/internal/catalog"
	"pairlens/internal/model"
)

// Scale items are answered on a fixed 1-5 range.
const (
	scaleMin = 1
	scaleMax = 5
)

// Mindset margin: the classification only tips once the two means differ by
// more than this fixed band. Not a tunable parameter.
const mindsetMargin = 0.5

const (
	MindsetRomantic = "Romantic"
	MindsetResolute = "Resolute"
	MindsetBalanced = "Balanced"
)

// The maturity ramp caps at ceilingAge.
const maturityCeilingAge = 25

// numeric coerces a raw answer to a float. Non-numeric values (free text,
// word lists) are treated as absent for scale formulas.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// categoryValues returns the inversion-applied scale values present for cat,
// in ascending id order.
func categoryValues(set model.ResponseSet, cat string) ([]float64, error) {
	return presentValues(set, catalog.IDs(cat))
}

// categoryMean is the inversion-applied mean over the present ids in cat.
// Zero when no answers are present.
func categoryMean(set model.ResponseSet, cat string) (float64, error) {
	vals, err := categoryValues(set, cat)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), nil
}

// ramp maps a 1-5 value onto the 0-100 output scale.
func ramp(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return (v - scaleMin) / (scaleMax - scaleMin) * 100
}

// Mindset classifies one participant as Romantic, Resolute, or Balanced.
// The classification tips only when one mean exceeds the other by more than
// the fixed 0.5 band; a difference of exactly 0.5 stays Balanced.
func Mindset(set model.ResponseSet) (model.MindsetResult, error) {
	romantic, err := categoryMean(set, catalog.MindsetRomantic)
	if err != nil {
		return model.MindsetResult{}, err
	}
	resolute, err := categoryMean(set, catalog.MindsetResolute)
	if err != nil {
		return model.MindsetResult{}, err
	}

	classification := MindsetBalanced
	switch {
	case romantic-resolute > mindsetMargin:
		classification = MindsetRomantic
	case resolute-romantic > mindsetMargin:
		classification = MindsetResolute
	}

	return model.MindsetResult{
		Romantic:       romantic,
		Resolute:       resolute,
		Classification: classification,
	}, nil
}

// Wellbeing computes the three 0-10 sub-scores. Each is the
// inversion-applied mean of its five-item set scaled by the fixed x2
// multiplier, e.g. self_concept = (q41+q42+q43+q44+(6-q45))/5 * 2. With
// items missing the denominator shrinks to the present count.
func Wellbeing(set model.ResponseSet) (model.WellbeingScores, error) {
	var out model.WellbeingScores
	for _, sub := range []struct {
		cat  string
		dest *float64
	}{
		{catalog.WellbeingSelfConcept, &out.SelfConcept},
		{catalog.WellbeingLifeSatisfaction, &out.LifeSatisfaction},
		{catalog.WellbeingStress, &out.StressResilience},
	} {
		mean, err := categoryMean(set, sub.cat)
		if err != nil {
			return model.WellbeingScores{}, err
		}
		*sub.dest = mean * 2
	}
	return out, nil
}

// SocialSupport computes the 0-100 percentage per support source: the
// category mean scaled by the per-category constant from the catalog.
func SocialSupport(set model.ResponseSet) (model.SocialSupportScores, error) {
	var out model.SocialSupportScores
	for _, sub := range []struct {
		cat  string
		dest *float64
	}{
		{catalog.SocialFamily, &out.Family},
		{catalog.SocialFriends, &out.Friends},
		{catalog.SocialColleagues, &out.Colleagues},
	} {
		mean, err := categoryMean(set, sub.cat)
		if err != nil {
			return model.SocialSupportScores{}, err
		}
		*sub.dest = mean * catalog.SocialSupportWeight[sub.cat]
	}
	return out, nil
}

// Maturity maps age onto a 0-100 ramp: ages at or past the ceiling score the
// fixed maximum, younger ages score proportionally.
func Maturity(age int) float64 {
	if age >= maturityCeilingAge {
		return 100
	}
	if age <= 0 {
		return 0
	}
	return float64(age) / maturityCeilingAge * 100
}

// Dynamics positions one participant on the four 0-100 axes. Each axis
// aggregates its 10-id block with its own documented method; missing items
// shrink the denominator rather than failing.
func Dynamics(set model.ResponseSet) (model.DynamicsScores, error) {
	var out model.DynamicsScores

	// Problem-solving: plain mean of the block, ramped. The baseline axis.
	ps, err := categoryValues(set, catalog.DynamicsProblemSolving)
	if err != nil {
		return model.DynamicsScores{}, err
	}
	out.ProblemSolving = ramp(mean(ps))

	// Influencing: the first five items are direct, the last five inverted
	// (inversion applied by the catalog). The two half-block means are
	// weighted equally so uneven gaps cannot skew the axis toward one
	// phrasing direction.
	inf, err := halfBlockMean(set, catalog.DynamicsInfluencing)
	if err != nil {
		return model.DynamicsScores{}, err
	}
	out.Influencing = ramp(inf)

	// Change-tolerance: trimmed mean. The single lowest and highest answers
	// are dropped (when three or more are present) before averaging.
	ct, err := categoryValues(set, catalog.DynamicsChangeTolerance)
	if err != nil {
		return model.DynamicsScores{}, err
	}
	out.ChangeTolerance = ramp(trimmedMean(ct))

	// Decision style: positionally weighted mean. Odd block positions carry
	// weight 2, even positions weight 1; the odd items are the anchor
	// statements of each pair in the questionnaire.
	ds, err := positionalWeightedMean(set, catalog.DynamicsDecisionStyle)
	if err != nil {
		return model.DynamicsScores{}, err
	}
	out.DecisionStyle = ramp(ds)

	return out, nil
}

// MomentumSection aggregates both partners' answers per momentum axis onto
// the 0-100 scale. Momentum is a couple-level section: each axis mixes both
// response sets.
func MomentumSection(r1, r2 model.ResponseSet) (map[string]float64, error) {
	out := map[string]float64{}
	for label, cat := range map[string]string{
		"energy":    catalog.MomentumEnergy,
		"closeness": catalog.MomentumCloseness,
		"outlook":   catalog.MomentumOutlook,
	} {
		m, err := combinedMean(r1, r2, cat)
		if err != nil {
			return nil, err
		}
		out[label] = ramp(m)
	}
	return out, nil
}

// LoveSection aggregates both partners' answers per love axis onto the
// 0-100 scale, same shape as MomentumSection.
func LoveSection(r1, r2 model.ResponseSet) (map[string]float64, error) {
	out := map[string]float64{}
	for label, cat := range map[string]string{
		"expression": catalog.LoveExpression,
		"intimacy":   catalog.LoveIntimacy,
	} {
		m, err := combinedMean(r1, r2, cat)
		if err != nil {
			return nil, err
		}
		out[label] = ramp(m)
	}
	return out, nil
}

func combinedMean(r1, r2 model.ResponseSet, cat string) (float64, error) {
	v1, err := categoryValues(r1, cat)
	if err != nil {
		return 0, err
	}
	v2, err := categoryValues(r2, cat)
	if err != nil {
		return 0, err
	}
	return mean(append(v1, v2...)), nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func trimmedMean(vals []float64) float64 {
	if len(vals) < 3 {
		return mean(vals)
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return mean(sorted[1 : len(sorted)-1])
}

func halfBlockMean(set model.ResponseSet, cat string) (float64, error) {
	ids := catalog.IDs(cat)
	mid := len(ids) / 2
	first, err := presentValues(set, ids[:mid])
	if err != nil {
		return 0, err
	}
	second, err := presentValues(set, ids[mid:])
	if err != nil {
		return 0, err
	}
	switch {
	case len(first) == 0 && len(second) == 0:
		return 0, nil
	case len(first) == 0:
		return mean(second), nil
	case len(second) == 0:
		return mean(first), nil
	}
	return (mean(first) + mean(second)) / 2, nil
}

func positionalWeightedMean(set model.ResponseSet, cat string) (float64, error) {
	ids := catalog.IDs(cat)
	sum, weight := 0.0, 0.0
	for i, id := range ids {
		v, ok, err := presentValue(set, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		w := 1.0
		if i%2 == 0 {
			w = 2.0
		}
		sum += v * w
		weight += w
	}
	if weight == 0 {
		return 0, nil
	}
	return sum / weight, nil
}

func presentValues(set model.ResponseSet, ids []int) ([]float64, error) {
	var vals []float64
	for _, id := range ids {
		v, ok, err := presentValue(set, id)
		if err != nil {
			return nil, err
		}
		if ok {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

func presentValue(set model.ResponseSet, id int) (float64, bool, error) {
	q, ok := catalog.Get(id)
	if !ok {
		return 0, false, nil
	}
	raw, ok := set[id]
	if !ok {
		return 0, false, nil
	}
	f, ok := numeric(raw)
	if !ok {
		return 0, false, nil
	}
	if f < scaleMin || f > scaleMax {
		return 0, false, fmt.Errorf("question %d: value %v outside the %d-%d scale", id, raw, scaleMin, scaleMax)
	}
	if q.Inverted {
		f = 6 - f
	}
	return f, true, nil
}
