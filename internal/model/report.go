package model

import (
	"encoding/json"
	"time"
)

// Participant keys used by the per-person report sections.
const (
	Person1 = "person1"
	Person2 = "person2"
)

// MindsetResult classifies one participant's relationship mindset.
type MindsetResult struct {
	Romantic       float64 `json:"romantic"`
	Resolute       float64 `json:"resolute"`
	Classification string  `json:"classification"`
}

// WellbeingScores are the 0-10 wellbeing sub-scores for one participant.
type WellbeingScores struct {
	SelfConcept      float64 `json:"self_concept"`
	LifeSatisfaction float64 `json:"life_satisfaction"`
	StressResilience float64 `json:"stress_resilience"`
}

// SocialSupportScores are 0-100 percentages per support source.
type SocialSupportScores struct {
	Family     float64 `json:"family"`
	Friends    float64 `json:"friends"`
	Colleagues float64 `json:"colleagues"`
}

// DynamicsScores position one participant on the four 0-100 dynamics axes.
type DynamicsScores struct {
	ProblemSolving  float64 `json:"problem_solving"`
	Influencing     float64 `json:"influencing"`
	ChangeTolerance float64 `json:"change_tolerance"`
	DecisionStyle   float64 `json:"decision_style"`
}

// PersonInfo is the demographic slice of one participant carried in the
// couple section, plus the age-scaled maturity score.
type PersonInfo struct {
	Name               string  `json:"name"`
	Age                int     `json:"age"`
	Education          string  `json:"education,omitempty"`
	Religion           string  `json:"religion,omitempty"`
	RelationshipStatus string  `json:"relationship_status,omitempty"`
	Maturity           float64 `json:"maturity"`
}

// CoupleSection pairs both participants' demographic info.
type CoupleSection struct {
	Person1 PersonInfo `json:"person1"`
	Person2 PersonInfo `json:"person2"`
}

// BaseReport is the deterministic, non-generated portion of the final
// report, built solely from scoring formulas and profile data. It is built
// once per request and never mutated; generation passes produce fragments
// that are merged on top of it.
type BaseReport struct {
	Couple        CoupleSection                  `json:"couple"`
	Mindset       map[string]MindsetResult       `json:"mindset"`
	Momentum      map[string]float64             `json:"momentum"`
	Wellbeing     map[string]WellbeingScores     `json:"wellbeing"`
	SocialSupport map[string]SocialSupportScores `json:"social_support"`
	Dynamics      map[string]DynamicsScores      `json:"dynamics"`
	Love          map[string]float64             `json:"love"`
}

// ToMap converts the report to the generic key space the merge engine and
// prompt assembler operate on.
func (b BaseReport) ToMap() (map[string]any, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// PassFragment is the partial JSON object one generation pass returns. Its
// schema is pass-specific and only loosely constrained; extra or missing
// keys are tolerated.
type PassFragment map[string]any

// FinalReport is the merged report as persisted, keyed by a partnership
// identifier derived from the ordered user-id pair.
type FinalReport struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	PartnershipID string         `json:"partnershipId" bson:"partnershipId"`
	Report        map[string]any `json:"report" bson:"report"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
}

// GenerateReportRequest is the request body accepted by the report
// endpoint. Response maps arrive keyed by stringified question ids.
type GenerateReportRequest struct {
	Person1Responses map[string]any `json:"person1_responses"`
	Person2Responses map[string]any `json:"person2_responses"`
	User1ID          string         `json:"user1_id"`
	User2ID          string         `json:"user2_id"`
}
