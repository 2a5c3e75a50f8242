package service

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pairlens/internal/catalog"
	"pairlens/internal/config"
	"pairlens/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Pass describes one generation pass: its thematic slice of the catalog and
// the provider model it runs on. The order of Passes is structural: each
// pass's prompt embeds the fragments of the passes before it.
type Pass struct {
	Name       string
	Model      string
	Categories []string
}

// Passes returns the three passes in their fixed order.
func Passes(models config.GeminiModels) []Pass {
	return []Pass{
		{
			Name:  "personality",
			Model: models.Personality,
			Categories: []string{
				catalog.Personality,
				catalog.Values,
				catalog.MindsetRomantic,
				catalog.MindsetResolute,
			},
		},
		{
			Name:  "wellbeing",
			Model: models.Wellbeing,
			Categories: []string{
				catalog.WellbeingSelfConcept,
				catalog.WellbeingLifeSatisfaction,
				catalog.WellbeingStress,
				catalog.MomentumEnergy,
				catalog.MomentumCloseness,
				catalog.MomentumOutlook,
			},
		},
		{
			Name:  "communication",
			Model: models.Communication,
			Categories: []string{
				catalog.Communication,
				catalog.Conflict,
				catalog.SocialIntegration,
				catalog.DynamicsProblemSolving,
				catalog.DynamicsInfluencing,
				catalog.DynamicsChangeTolerance,
				catalog.DynamicsDecisionStyle,
				catalog.LoveExpression,
				catalog.LoveIntimacy,
			},
		},
	}
}

// FilterResponses returns the subset of one participant's raw answers whose
// questions carry any of the pass's categories. This bounds prompt size and
// keeps answers from other thematic slices out of the pass.
func FilterResponses(set model.ResponseSet, categories []string) model.ResponseSet {
	return set.Subset(func(id int) bool {
		q, ok := catalog.Get(id)
		if !ok {
			return false
		}
		for _, c := range categories {
			if q.HasCategory(c) {
				return true
			}
		}
		return false
	})
}

// PromptContext carries everything a pass template can reference.
type PromptContext struct {
	Person1Name      string
	Person2Name      string
	Person1Responses model.ResponseSet
	Person2Responses model.ResponseSet
	BaseReport       map[string]any
	Fragments        []model.PassFragment // completed fragments, in pass order
}

// PromptAssembler substitutes named placeholders in a pass's template text
// with serialized context. Templates are plain text resources: embedded
// defaults, optionally overridden per pass from a template directory.
type PromptAssembler struct {
	templates map[string]string
}

// NewPromptAssembler loads the embedded templates, then applies overrides
// from templateDir when set (one <pass>.tmpl file per pass).
func NewPromptAssembler(templateDir string) (*PromptAssembler, error) {
	a := &PromptAssembler{templates: make(map[string]string)}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, e := range entries {
		data, err := templateFS.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded template %s: %w", e.Name(), err)
		}
		a.templates[strings.TrimSuffix(e.Name(), ".tmpl")] = string(data)
	}

	if templateDir != "" {
		for name := range a.templates {
			path := filepath.Join(templateDir, name+".tmpl")
			data, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read template override %s: %w", path, err)
			}
			a.templates[name] = string(data)
		}
	}

	return a, nil
}

// Assemble produces the full prompt for a pass by literal token
// replacement. Fragment tokens for passes that have not run yet resolve to
// an empty object; templates only reference fragments of earlier passes.
func (a *PromptAssembler) Assemble(passName string, pc PromptContext) (string, error) {
	tpl, ok := a.templates[passName]
	if !ok {
		return "", fmt.Errorf("no template for pass %q", passName)
	}

	replacements := []string{
		"{{PERSON1_NAME}}", pc.Person1Name,
		"{{PERSON2_NAME}}", pc.Person2Name,
		"{{PERSON1_RESPONSES}}", mustJSON(pc.Person1Responses),
		"{{PERSON2_RESPONSES}}", mustJSON(pc.Person2Responses),
		"{{BASE_REPORT}}", mustJSON(pc.BaseReport),
		"{{PASS1_FRAGMENT}}", fragmentJSON(pc.Fragments, 0),
		"{{PASS2_FRAGMENT}}", fragmentJSON(pc.Fragments, 1),
	}

	return strings.NewReplacer(replacements...).Replace(tpl), nil
}

func fragmentJSON(fragments []model.PassFragment, i int) string {
	if i >= len(fragments) {
		return "{}"
	}
	return mustJSON(fragments[i])
}

func mustJSON(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.Marshal(v)
	if err != nil {
		// All context values originate from decoded JSON or our own
		// structs; marshalling them back cannot fail.
		return "{}"
	}
	return string(data)
}
