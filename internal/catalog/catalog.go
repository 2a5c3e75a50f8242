// Package catalog is the static registry mapping question ids to semantic
// categories. Pure data: scorers and generation passes select their inputs
// through it, and it records per question whether the item is phrased
// directly or inverted.
package catalog

import (
	"fmt"
	"sort"

	"pairlens/internal/model"
)

// Category names. Scoring formulas aggregate over these; each generation
// pass filters raw answers by its own category list.
const (
	MindsetRomantic = "mindset_romantic"
	MindsetResolute = "mindset_resolute"

	WellbeingSelfConcept      = "wellbeing_self_concept"
	WellbeingLifeSatisfaction = "wellbeing_life_satisfaction"
	WellbeingStress           = "wellbeing_stress_resilience"

	SocialFamily     = "social_family"
	SocialFriends    = "social_friends"
	SocialColleagues = "social_colleagues"

	MomentumEnergy    = "momentum_energy"
	MomentumCloseness = "momentum_closeness"
	MomentumOutlook   = "momentum_outlook"

	LoveExpression = "love_expression"
	LoveIntimacy   = "love_intimacy"

	DynamicsProblemSolving  = "dynamics_problem_solving"
	DynamicsInfluencing     = "dynamics_influencing"
	DynamicsChangeTolerance = "dynamics_change_tolerance"
	DynamicsDecisionStyle   = "dynamics_decision_style"

	Personality       = "personality"
	Values            = "values"
	Communication     = "communication"
	Conflict          = "conflict"
	SocialIntegration = "social_integration"
)

// SocialSupportWeight is the fixed multiplier applied to each category's 1-5
// mean to land on the 0-100 percentage scale. The constants differ per
// category to account for category size and weighting.
var SocialSupportWeight = map[string]float64{
	SocialFamily:     20,
	SocialFriends:    19,
	SocialColleagues: 18,
}

// span declares a consecutive block of question ids sharing the same
// category tags. Inverted lists the negatively-phrased ids within the block.
type span struct {
	from, to int
	cats     []string
	inverted []int
}

// The registry. Blocks follow the questionnaire's section layout; ids 1-20
// are demographic items with no scoring categories and are not listed.
var spans = []span{
	{from: 21, to: 28, cats: []string{MindsetRomantic, Personality}},
	{from: 31, to: 38, cats: []string{MindsetResolute, Personality}},

	// Wellbeing sub-scores: five items each, negatively-phrased items
	// inverted per the standard short-form instruments they mirror.
	{from: 41, to: 45, cats: []string{WellbeingSelfConcept}, inverted: []int{45}},
	{from: 46, to: 50, cats: []string{WellbeingLifeSatisfaction}, inverted: []int{48}},
	{from: 51, to: 55, cats: []string{WellbeingStress}, inverted: []int{51, 52, 53}},

	{from: 61, to: 66, cats: []string{SocialFamily, SocialIntegration}},
	{from: 67, to: 72, cats: []string{SocialFriends, SocialIntegration}},
	{from: 73, to: 78, cats: []string{SocialColleagues, SocialIntegration}},

	{from: 101, to: 104, cats: []string{MomentumEnergy}},
	{from: 105, to: 107, cats: []string{MomentumCloseness}, inverted: []int{106}},
	{from: 108, to: 110, cats: []string{MomentumOutlook}},

	{from: 151, to: 155, cats: []string{LoveExpression}},
	{from: 156, to: 160, cats: []string{LoveIntimacy}, inverted: []int{157}},

	{from: 171, to: 180, cats: []string{Values, Personality}},
	{from: 181, to: 190, cats: []string{Communication}},
	{from: 191, to: 200, cats: []string{Conflict}, inverted: []int{195, 196}},

	// Dynamics axes: fixed blocks of 10 consecutive ids each. Aggregation
	// methods are documented per axis in the scoring package:
	//   problem-solving  211-220  block mean ramped onto 0-100
	//   influencing      221-230  first five direct, last five inverted,
	//                             half-block means weighted equally
	//   change-tolerance 231-240  trimmed: single min and max dropped
	//   decision style   241-250  positional weights 2/1 alternating
	{from: 211, to: 220, cats: []string{DynamicsProblemSolving}},
	{from: 221, to: 230, cats: []string{DynamicsInfluencing}, inverted: []int{226, 227, 228, 229, 230}},
	{from: 231, to: 240, cats: []string{DynamicsChangeTolerance}},
	{from: 241, to: 250, cats: []string{DynamicsDecisionStyle}},
}

var (
	questions  map[int]model.Question
	byCategory map[string][]int
)

func init() {
	questions = make(map[int]model.Question)
	byCategory = make(map[string][]int)

	for _, s := range spans {
		inv := make(map[int]bool, len(s.inverted))
		for _, id := range s.inverted {
			inv[id] = true
		}
		for id := s.from; id <= s.to; id++ {
			if _, dup := questions[id]; dup {
				panic(fmt.Sprintf("catalog: duplicate question id %d", id))
			}
			questions[id] = model.Question{
				ID:         id,
				Categories: s.cats,
				Inverted:   inv[id],
			}
			for _, c := range s.cats {
				byCategory[c] = append(byCategory[c], id)
			}
		}
	}

	for _, ids := range byCategory {
		sort.Ints(ids)
	}
}

// Get returns the question descriptor for id.
func Get(id int) (model.Question, bool) {
	q, ok := questions[id]
	return q, ok
}

// IDs returns the ids tagged with cat in ascending order.
func IDs(cat string) []int {
	ids := byCategory[cat]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// ByCategory returns the question descriptors tagged with cat in ascending
// id order.
func ByCategory(cat string) []model.Question {
	ids := byCategory[cat]
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, questions[id])
	}
	return out
}

// Size returns the number of registered questions.
func Size() int {
	return len(questions)
}
