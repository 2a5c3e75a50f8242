package service

import (
	"pairlens/internal/model"
	"pairlens/internal/scoring"
)

// BuildBaseReport runs every deterministic scoring section over both
// participants and assembles the composite the generation passes enrich.
// Total for well-typed inputs: every section is present even when the
// answers behind it are missing. Only out-of-scale values fail.
func BuildBaseReport(r1, r2 model.ResponseSet, p1, p2 model.Profile) (model.BaseReport, error) {
	var report model.BaseReport

	mindset1, err := scoring.Mindset(r1)
	if err != nil {
		return report, err
	}
	mindset2, err := scoring.Mindset(r2)
	if err != nil {
		return report, err
	}

	wellbeing1, err := scoring.Wellbeing(r1)
	if err != nil {
		return report, err
	}
	wellbeing2, err := scoring.Wellbeing(r2)
	if err != nil {
		return report, err
	}

	social1, err := scoring.SocialSupport(r1)
	if err != nil {
		return report, err
	}
	social2, err := scoring.SocialSupport(r2)
	if err != nil {
		return report, err
	}

	dynamics1, err := scoring.Dynamics(r1)
	if err != nil {
		return report, err
	}
	dynamics2, err := scoring.Dynamics(r2)
	if err != nil {
		return report, err
	}

	momentum, err := scoring.MomentumSection(r1, r2)
	if err != nil {
		return report, err
	}
	love, err := scoring.LoveSection(r1, r2)
	if err != nil {
		return report, err
	}

	report = model.BaseReport{
		Couple: model.CoupleSection{
			Person1: personInfo(p1),
			Person2: personInfo(p2),
		},
		Mindset: map[string]model.MindsetResult{
			model.Person1: mindset1,
			model.Person2: mindset2,
		},
		Momentum: momentum,
		Wellbeing: map[string]model.WellbeingScores{
			model.Person1: wellbeing1,
			model.Person2: wellbeing2,
		},
		SocialSupport: map[string]model.SocialSupportScores{
			model.Person1: social1,
			model.Person2: social2,
		},
		Dynamics: map[string]model.DynamicsScores{
			model.Person1: dynamics1,
			model.Person2: dynamics2,
		},
		Love: love,
	}

	return report, nil
}

func personInfo(p model.Profile) model.PersonInfo {
	return model.PersonInfo{
		Name:               p.Name,
		Age:                p.Age,
		Education:          p.Education,
		Religion:           p.Religion,
		RelationshipStatus: p.RelationshipStatus,
		Maturity:           scoring.Maturity(p.Age),
	}
}
