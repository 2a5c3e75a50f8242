package model

// Question is an immutable descriptor for one survey item. Identifiers are
// unique across the whole catalog (1..360). A question belongs to zero or
// more named categories used by the scoring formulas and generation passes.
type Question struct {
	ID         int      `json:"id"`
	Categories []string `json:"categories"`

	// Inverted marks negatively-phrased scale items. Scorers fold these
	// back onto the direct scale as 6-q before aggregating.
	Inverted bool `json:"inverted"`
}

// HasCategory reports whether the question is tagged with cat.
func (q Question) HasCategory(cat string) bool {
	for _, c := range q.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
